// Package admin holds the editor session state machine behind the admin API.
//
// A Controller is owned by one signed-in editor. Its state changes only
// through the transition methods below; Snapshot returns a copy that is safe
// to render. Remote calls run without the lock held, so an upload can finish
// while the editor keeps typing, and results that arrive after the draft was
// replaced are dropped.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"sitecms/internal/domain/entity"
	"sitecms/internal/service/auth"
	"sitecms/internal/usecase/content"
	"sitecms/internal/usecase/draft"
	"sitecms/internal/usecase/media"

	"golang.org/x/sync/errgroup"
)

// AuthClient is the per-editor auth capability.
type AuthClient interface {
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
	SignOut(ctx context.Context) error
	CurrentSession() *auth.Session
	OnSessionChange(fn func(auth.Event)) auth.Subscription
}

// ContentService is the record store used by the controller.
type ContentService interface {
	ListNews(ctx context.Context) ([]*entity.NewsArticle, error)
	ListPartnerships(ctx context.Context) ([]*entity.PartnershipEntry, error)
	CreateNews(ctx context.Context, in content.NewsInput) (*entity.NewsArticle, error)
	UpdateNews(ctx context.Context, id int64, in content.NewsInput) (*entity.NewsArticle, error)
	CreatePartnership(ctx context.Context, in content.PartnershipInput) (*entity.PartnershipEntry, error)
	UpdatePartnership(ctx context.Context, id int64, in content.PartnershipInput) (*entity.PartnershipEntry, error)
	Delete(ctx context.Context, kind entity.Kind, id int64) error
}

type Uploader interface {
	Upload(ctx context.Context, f media.File, bucket string) (string, error)
}

type Drafter interface {
	Draft(ctx context.Context, kind entity.Kind, prompt string) (draft.Result, error)
}

// Buckets maps image targets to object store buckets.
type Buckets struct {
	Covers string
	Logos  string
}

// Deps are the capabilities a controller works with.
type Deps struct {
	Auth     AuthClient
	Content  ContentService
	Uploader Uploader
	Drafts   Drafter
	Buckets  Buckets

	// SuccessDelay defaults to DefaultSuccessDelay.
	SuccessDelay time.Duration
	Logger       *slog.Logger
}

// ErrBusy is returned when the same kind of operation is already running.
var ErrBusy = errors.New("another operation is already in progress")

var errNotAuthenticated = &entity.AuthError{Message: "not signed in"}

var errNoDraft = &entity.ValidationError{Field: "draft", Message: "no record is being edited"}

type Controller struct {
	deps   Deps
	logger *slog.Logger

	mu         sync.Mutex
	state      State
	generation uint64 // bumped whenever the draft is replaced or dropped
	sub        auth.Subscription
	backTimer  *time.Timer
	onEnd      func()
}

func New(deps Deps) *Controller {
	if deps.SuccessDelay == 0 {
		deps.SuccessDelay = DefaultSuccessDelay
	}
	if deps.Buckets.Covers == "" {
		deps.Buckets.Covers = media.BucketCovers
	}
	if deps.Buckets.Logos == "" {
		deps.Buckets.Logos = media.BucketLogos
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		deps:   deps,
		logger: logger.With(slog.String("component", "admin")),
		state:  State{Auth: Unauthenticated},
	}
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// setOnEnd registers a callback run once the session ends by sign-out or expiry.
func (c *Controller) setOnEnd(fn func()) {
	c.mu.Lock()
	c.onEnd = fn
	c.mu.Unlock()
}

/* ──────────────────────────────── session ──────────────────────────────── */

// SignIn authenticates and loads both lists. On failure the controller is
// back to unauthenticated with a message set.
func (c *Controller) SignIn(ctx context.Context, email, password string) error {
	c.mu.Lock()
	switch c.state.Auth {
	case Loading:
		c.mu.Unlock()
		return ErrBusy
	case Authenticated:
		c.mu.Unlock()
		return nil
	}
	c.state.Auth = Loading
	c.state.Error = ""
	c.mu.Unlock()

	c.subscribe()

	sess, err := c.deps.Auth.SignIn(ctx, email, password)
	if err != nil {
		c.mu.Lock()
		c.state = State{Auth: Unauthenticated, Error: UserMessage(err)}
		c.mu.Unlock()
		c.logger.Info("sign-in rejected", slog.String("email", email), slog.Any("error", err))
		return err
	}

	c.enter(sess)
	_ = c.refreshLists(ctx)
	return nil
}

// Restore enters the authenticated state when the auth client already holds
// a live session. It reports whether it did.
func (c *Controller) Restore(ctx context.Context) bool {
	sess := c.deps.Auth.CurrentSession()
	if sess == nil {
		return false
	}
	c.subscribe()
	c.enter(sess)
	_ = c.refreshLists(ctx)
	return true
}

func (c *Controller) enter(sess *auth.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = State{
		Auth:  Authenticated,
		Email: sess.Email,
		Kind:  entity.KindNews,
		Mode:  ModeList,
	}
	c.generation++
}

func (c *Controller) subscribe() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sub != nil {
		return
	}
	c.sub = c.deps.Auth.OnSessionChange(c.handleSessionEvent)
}

func (c *Controller) handleSessionEvent(ev auth.Event) {
	if ev.Type != auth.EventExpired {
		return
	}
	c.mu.Lock()
	if c.state.Auth == Unauthenticated {
		c.mu.Unlock()
		return
	}
	c.stopBackTimerLocked()
	c.state = State{Auth: Unauthenticated, Error: msgSessionExpired}
	c.generation++
	onEnd := c.onEnd
	c.mu.Unlock()

	c.logger.Info("editor session expired")
	if onEnd != nil {
		onEnd()
	}
}

// SignOut clears all in-memory state and drops the auth subscription.
func (c *Controller) SignOut(ctx context.Context) error {
	c.mu.Lock()
	sub := c.sub
	c.sub = nil
	c.stopBackTimerLocked()
	c.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
	err := c.deps.Auth.SignOut(ctx)

	c.mu.Lock()
	c.state = State{Auth: Unauthenticated}
	c.generation++
	onEnd := c.onEnd
	c.mu.Unlock()

	if onEnd != nil {
		onEnd()
	}
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

/* ──────────────────────────────── navigation ──────────────────────────────── */

func (c *Controller) requireAuthLocked() error {
	if c.state.Auth != Authenticated {
		return errNotAuthenticated
	}
	return nil
}

// SelectKind switches tab and returns to the list.
func (c *Controller) SelectKind(kind entity.Kind) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireAuthLocked(); err != nil {
		return err
	}
	c.toListLocked()
	c.state.Kind = kind
	return nil
}

// StartCreate opens an empty form for kind.
func (c *Controller) StartCreate(kind entity.Kind) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireAuthLocked(); err != nil {
		return err
	}
	c.stopBackTimerLocked()
	c.state.Kind = kind
	c.state.Mode = ModeCreate
	c.state.Draft = newDraft(kind, len(c.state.Partnerships))
	c.state.Success = ""
	c.generation++
	return nil
}

// StartEdit opens the form for a record from the loaded list.
func (c *Controller) StartEdit(kind entity.Kind, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireAuthLocked(); err != nil {
		return err
	}

	var d *Draft
	switch kind {
	case entity.KindNews:
		for _, n := range c.state.News {
			if n.ID == id {
				d = draftFromNews(n)
				break
			}
		}
	case entity.KindPartnership:
		for _, p := range c.state.Partnerships {
			if p.ID == id {
				d = draftFromPartnership(p)
				break
			}
		}
	}
	if d == nil {
		err := entity.NewNotFoundError("edit")
		c.state.Error = UserMessage(err)
		return err
	}

	c.stopBackTimerLocked()
	c.state.Kind = kind
	c.state.Mode = ModeEdit
	c.state.Draft = d
	c.state.Success = ""
	c.generation++
	return nil
}

// EditDraft applies fn to the form. Kind and ID cannot be changed this way.
func (c *Controller) EditDraft(fn func(*Draft)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.state.Draft
	if d == nil {
		return errNoDraft
	}
	kind, id := d.Kind, d.ID
	fn(d)
	d.Kind, d.ID = kind, id
	return nil
}

// Cancel drops the form and returns to the list.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toListLocked()
}

func (c *Controller) DismissError() {
	c.mu.Lock()
	c.state.Error = ""
	c.mu.Unlock()
}

func (c *Controller) toListLocked() {
	c.stopBackTimerLocked()
	c.state.Mode = ModeList
	c.state.Draft = nil
	c.state.Success = ""
	c.generation++
}

func (c *Controller) stopBackTimerLocked() {
	if c.backTimer != nil {
		c.backTimer.Stop()
		c.backTimer = nil
	}
}

/* ──────────────────────────────── lists ──────────────────────────────── */

// refreshLists reloads both lists concurrently and replaces them together.
func (c *Controller) refreshLists(ctx context.Context) error {
	var (
		news     []*entity.NewsArticle
		partners []*entity.PartnershipEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		news, err = c.deps.Content.ListNews(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		partners, err = c.deps.Content.ListPartnerships(gctx)
		return err
	})
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Auth != Authenticated {
		return err
	}
	if err != nil {
		c.state.Error = UserMessage(err)
		c.logger.Error("list refresh failed", slog.Any("error", err))
		return err
	}
	c.state.News = news
	c.state.Partnerships = partners
	return nil
}

/* ──────────────────────────────── save & delete ──────────────────────────────── */

// Save validates the form, writes it, reloads the lists, shows a success
// banner and returns to the list after SuccessDelay. On failure the form
// stays open with the error message. Cancelling ctx does not abort the
// write once it has started.
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	if err := c.requireAuthLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.state.Draft == nil {
		c.mu.Unlock()
		return errNoDraft
	}
	if c.state.Saving {
		c.mu.Unlock()
		return ErrBusy
	}
	d := c.state.Draft.clone()
	gen := c.generation
	c.state.Error = ""

	if err := validateDraft(d); err != nil {
		c.state.Error = UserMessage(err)
		c.mu.Unlock()
		return err
	}
	c.state.Saving = true
	c.mu.Unlock()

	// Leaving the page must not abort a write already sent.
	ctx = context.WithoutCancel(ctx)
	id, err := c.write(ctx, d)
	if err != nil {
		c.mu.Lock()
		c.state.Saving = false
		c.state.Error = UserMessage(err)
		c.mu.Unlock()
		c.logger.Warn("save failed",
			slog.String("kind", d.Kind.String()),
			slog.Int64("id", d.ID),
			slog.Any("error", err))
		return err
	}

	_ = c.refreshLists(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Saving = false
	if gen != c.generation || c.state.Draft == nil {
		return nil
	}
	c.state.Draft.ID = id
	c.state.Mode = ModeEdit
	c.state.Success = successMessage(d.Kind)
	c.stopBackTimerLocked()
	c.backTimer = time.AfterFunc(c.deps.SuccessDelay, func() { c.backToList(gen) })
	return nil
}

func (c *Controller) backToList(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	c.backTimer = nil
	c.toListLocked()
}

func validateDraft(d *Draft) error {
	if d.Kind == entity.KindPartnership {
		if strings.TrimSpace(d.Name) == "" {
			return &entity.ValidationError{Field: "name", Message: "Name is required."}
		}
		return nil
	}
	if strings.TrimSpace(d.Title) == "" {
		return &entity.ValidationError{Field: "title", Message: "Title is required."}
	}
	return nil
}

func successMessage(kind entity.Kind) string {
	if kind == entity.KindPartnership {
		return "Partnership saved."
	}
	return "News saved."
}

func (c *Controller) write(ctx context.Context, d *Draft) (int64, error) {
	if d.Kind == entity.KindPartnership {
		order := d.DisplayOrder
		active := d.Active
		in := content.PartnershipInput{
			Name:         d.Name,
			Slug:         d.Slug,
			Description:  &d.Description,
			LogoURL:      &d.LogoURL,
			WebsiteURL:   &d.WebsiteURL,
			Category:     &d.Category,
			DisplayOrder: &order,
			Active:       &active,
		}
		var p *entity.PartnershipEntry
		var err error
		if d.ID == 0 {
			p, err = c.deps.Content.CreatePartnership(ctx, in)
		} else {
			p, err = c.deps.Content.UpdatePartnership(ctx, d.ID, in)
		}
		if err != nil {
			return 0, err
		}
		return p.ID, nil
	}

	in := content.NewsInput{
		Title:         d.Title,
		Slug:          d.Slug,
		Excerpt:       &d.Excerpt,
		Content:       &d.Content,
		CoverImageURL: &d.CoverImageURL,
		Gallery:       d.Gallery,
		Published:     d.Published,
	}
	var n *entity.NewsArticle
	var err error
	if d.ID == 0 {
		n, err = c.deps.Content.CreateNews(ctx, in)
	} else {
		n, err = c.deps.Content.UpdateNews(ctx, d.ID, in)
	}
	if err != nil {
		return 0, err
	}
	return n.ID, nil
}

// Delete asks confirm first and deletes only on true. The list is reloaded
// from the store after a successful delete; a failure leaves it untouched.
func (c *Controller) Delete(ctx context.Context, kind entity.Kind, id int64, confirm func(context.Context) bool) error {
	c.mu.Lock()
	if err := c.requireAuthLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	if confirm != nil && !confirm(ctx) {
		return nil
	}

	c.mu.Lock()
	if c.state.Deleting {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state.Deleting = true
	c.state.Error = ""
	c.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	err := c.deps.Content.Delete(ctx, kind, id)

	c.mu.Lock()
	c.state.Deleting = false
	if err != nil {
		c.state.Error = UserMessage(err)
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Error("delete failed",
			slog.String("kind", kind.String()),
			slog.Int64("id", id),
			slog.Any("error", err))
		return err
	}
	_ = c.refreshLists(ctx)
	return nil
}

/* ──────────────────────────────── uploads & AI ──────────────────────────────── */

// UploadImage stores f and writes its address into the draft field target
// names. A result for a draft that has since been replaced is dropped.
func (c *Controller) UploadImage(ctx context.Context, target ImageTarget, f media.File) (string, error) {
	c.mu.Lock()
	if c.state.Draft == nil {
		c.mu.Unlock()
		return "", errNoDraft
	}
	bucket, err := c.bucketFor(c.state.Draft.Kind, target)
	if err != nil {
		c.state.Error = UserMessage(err)
		c.mu.Unlock()
		return "", err
	}
	gen := c.generation
	c.state.Uploads++
	c.state.Error = ""
	c.mu.Unlock()

	url, err := c.deps.Uploader.Upload(context.WithoutCancel(ctx), f, bucket)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Uploads--
	stale := gen != c.generation || c.state.Draft == nil
	if err != nil {
		if !stale {
			c.state.Error = UserMessage(err)
		}
		return "", err
	}
	if stale {
		c.logger.Debug("discarding upload for replaced draft", slog.String("url", url))
		return url, nil
	}

	switch target {
	case TargetCover:
		c.state.Draft.CoverImageURL = url
	case TargetGallery:
		c.state.Draft.Gallery = append(c.state.Draft.Gallery, url)
	case TargetLogo:
		c.state.Draft.LogoURL = url
	}
	return url, nil
}

func (c *Controller) bucketFor(kind entity.Kind, target ImageTarget) (string, error) {
	switch {
	case kind == entity.KindNews && (target == TargetCover || target == TargetGallery):
		return c.deps.Buckets.Covers, nil
	case kind == entity.KindPartnership && target == TargetLogo:
		return c.deps.Buckets.Logos, nil
	}
	return "", &entity.ValidationError{
		Field:   "target",
		Message: fmt.Sprintf("%q images cannot be attached to a %s record", target, kind),
	}
}

// GenerateDraft fills the form from an AI draft for the current kind.
func (c *Controller) GenerateDraft(ctx context.Context, prompt string) error {
	c.mu.Lock()
	if c.state.Draft == nil {
		c.mu.Unlock()
		return errNoDraft
	}
	if c.state.Generating {
		c.mu.Unlock()
		return ErrBusy
	}
	kind := c.state.Draft.Kind
	gen := c.generation
	c.state.Generating = true
	c.state.Error = ""
	c.mu.Unlock()

	res, err := c.deps.Drafts.Draft(context.WithoutCancel(ctx), kind, prompt)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Generating = false
	if gen != c.generation || c.state.Draft == nil {
		return nil
	}
	if err != nil {
		c.state.Error = UserMessage(err)
		return err
	}

	d := c.state.Draft
	if kind == entity.KindPartnership {
		d.Name = res.Title
		d.Description = res.Description
		return nil
	}
	d.Title = res.Title
	d.Excerpt = res.Excerpt
	d.Content = res.Content
	return nil
}
