package admin

import (
	"context"
	"sync"
	"time"

	"sitecms/internal/domain/entity"
	"sitecms/internal/service/auth"
	"sitecms/internal/usecase/content"
	"sitecms/internal/usecase/draft"
	"sitecms/internal/usecase/media"
)

/* ──────────────────────────────── auth ──────────────────────────────── */

type fakeAuth struct {
	mu           sync.Mutex
	session      *auth.Session
	signInErr    error
	listener     func(auth.Event)
	subscribes   int
	unsubscribes int
	signOuts     int
}

type fakeSub struct{ a *fakeAuth }

func (s fakeSub) Unsubscribe() {
	s.a.mu.Lock()
	s.a.unsubscribes++
	s.a.listener = nil
	s.a.mu.Unlock()
}

func (a *fakeAuth) SignIn(_ context.Context, email, _ string) (*auth.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.signInErr != nil {
		return nil, a.signInErr
	}
	a.session = &auth.Session{ID: "sid-1", Email: email, Role: auth.RoleEditor, ExpiresAt: time.Now().Add(time.Hour)}
	return a.session, nil
}

func (a *fakeAuth) SignOut(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.signOuts++
	a.session = nil
	return nil
}

func (a *fakeAuth) CurrentSession() *auth.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

func (a *fakeAuth) OnSessionChange(fn func(auth.Event)) auth.Subscription {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.subscribes++
	a.listener = fn
	return fakeSub{a}
}

func (a *fakeAuth) expire() {
	a.mu.Lock()
	fn := a.listener
	sess := a.session
	a.session = nil
	a.mu.Unlock()
	if fn != nil {
		fn(auth.Event{Type: auth.EventExpired, Session: sess})
	}
}

/* ──────────────────────────────── content ──────────────────────────────── */

type fakeContent struct {
	mu           sync.Mutex
	news         []*entity.NewsArticle
	partnerships []*entity.PartnershipEntry
	nextID       int64

	saveErr   error
	deleteErr error
	listErr   error

	lastNews        content.NewsInput
	lastPartnership content.PartnershipInput
	calls           map[string]int
}

func newFakeContent() *fakeContent {
	return &fakeContent{nextID: 100, calls: map[string]int{}}
}

func (f *fakeContent) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeContent) ListNews(context.Context) ([]*entity.NewsArticle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["ListNews"]++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]*entity.NewsArticle(nil), f.news...), nil
}

func (f *fakeContent) ListPartnerships(context.Context) ([]*entity.PartnershipEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["ListPartnerships"]++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]*entity.PartnershipEntry(nil), f.partnerships...), nil
}

func (f *fakeContent) CreateNews(_ context.Context, in content.NewsInput) (*entity.NewsArticle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreateNews"]++
	f.lastNews = in
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.nextID++
	n := &entity.NewsArticle{ID: f.nextID, Title: in.Title, Slug: "slug"}
	f.news = append([]*entity.NewsArticle{n}, f.news...)
	return n, nil
}

func (f *fakeContent) UpdateNews(_ context.Context, id int64, in content.NewsInput) (*entity.NewsArticle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["UpdateNews"]++
	f.lastNews = in
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	return &entity.NewsArticle{ID: id, Title: in.Title}, nil
}

func (f *fakeContent) CreatePartnership(_ context.Context, in content.PartnershipInput) (*entity.PartnershipEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreatePartnership"]++
	f.lastPartnership = in
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.nextID++
	p := &entity.PartnershipEntry{ID: f.nextID, Name: in.Name}
	f.partnerships = append(f.partnerships, p)
	return p, nil
}

func (f *fakeContent) UpdatePartnership(_ context.Context, id int64, in content.PartnershipInput) (*entity.PartnershipEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["UpdatePartnership"]++
	f.lastPartnership = in
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	return &entity.PartnershipEntry{ID: id, Name: in.Name}, nil
}

func (f *fakeContent) Delete(_ context.Context, kind entity.Kind, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["Delete"]++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	switch kind {
	case entity.KindNews:
		for i, n := range f.news {
			if n.ID == id {
				f.news = append(f.news[:i], f.news[i+1:]...)
				return nil
			}
		}
	case entity.KindPartnership:
		for i, p := range f.partnerships {
			if p.ID == id {
				f.partnerships = append(f.partnerships[:i], f.partnerships[i+1:]...)
				return nil
			}
		}
	}
	return entity.NewNotFoundError("delete")
}

/* ──────────────────────────────── media & drafts ──────────────────────────────── */

// fakeUploader blocks on release when it is non-nil.
type fakeUploader struct {
	mu      sync.Mutex
	started chan struct{}
	release chan struct{}
	err     error
	buckets []string
	n       int
}

func (u *fakeUploader) Upload(_ context.Context, f media.File, bucket string) (string, error) {
	u.mu.Lock()
	u.n++
	n := u.n
	u.buckets = append(u.buckets, bucket)
	u.mu.Unlock()

	if u.started != nil {
		u.started <- struct{}{}
	}
	if u.release != nil {
		<-u.release
	}
	if u.err != nil {
		return "", u.err
	}
	return "https://cdn.example.org/" + bucket + "/" + f.Name + "?" + string(rune('0'+n)), nil
}

type fakeDrafter struct {
	res     draft.Result
	err     error
	release chan struct{}
	kinds   []entity.Kind
}

func (d *fakeDrafter) Draft(_ context.Context, kind entity.Kind, _ string) (draft.Result, error) {
	d.kinds = append(d.kinds, kind)
	if d.release != nil {
		<-d.release
	}
	return d.res, d.err
}
