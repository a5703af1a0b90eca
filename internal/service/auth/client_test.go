package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"sitecms/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventLog struct {
	mu     sync.Mutex
	events []Event
	ch     chan Event
}

func newEventLog() *eventLog { return &eventLog{ch: make(chan Event, 8)} }

func (l *eventLog) record(ev Event) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
	l.ch <- ev
}

func (l *eventLog) types() []EventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]EventType, len(l.events))
	for i, e := range l.events {
		out[i] = e.Type
	}
	return out
}

func TestClient_SignInAndOut(t *testing.T) {
	svc := newTestService(t)
	c := NewClient(svc)
	log := newEventLog()
	c.OnSessionChange(log.record)

	assert.Nil(t, c.CurrentSession())

	sess, err := c.SignIn(context.Background(), "admin@example.org", "another long secret")
	require.NoError(t, err)
	require.NotNil(t, c.CurrentSession())
	assert.Equal(t, sess.ID, c.CurrentSession().ID)

	require.NoError(t, c.SignOut(context.Background()))
	assert.Nil(t, c.CurrentSession())
	assert.Equal(t, []EventType{EventSignedIn, EventSignedOut}, log.types())

	_, err = svc.Verify(sess.Token)
	assert.ErrorIs(t, err, entity.ErrSessionExpired)

	// signing out twice is harmless
	require.NoError(t, c.SignOut(context.Background()))
	assert.Len(t, log.types(), 2)
}

func TestClient_SingleSubscriber(t *testing.T) {
	svc := newTestService(t)
	c := NewClient(svc)

	first, second := newEventLog(), newEventLog()
	sub1 := c.OnSessionChange(first.record)
	c.OnSessionChange(second.record)

	_, err := c.SignIn(context.Background(), "admin@example.org", "another long secret")
	require.NoError(t, err)

	assert.Empty(t, first.types())
	assert.Equal(t, []EventType{EventSignedIn}, second.types())

	// unsubscribing a replaced subscription leaves the current one alone
	sub1.Unsubscribe()
	require.NoError(t, c.SignOut(context.Background()))
	assert.Equal(t, []EventType{EventSignedIn, EventSignedOut}, second.types())
}

func TestClient_Unsubscribe(t *testing.T) {
	svc := newTestService(t)
	c := NewClient(svc)
	log := newEventLog()
	sub := c.OnSessionChange(log.record)
	sub.Unsubscribe()
	sub.Unsubscribe()

	_, err := c.SignIn(context.Background(), "admin@example.org", "another long secret")
	require.NoError(t, err)
	assert.Empty(t, log.types())
}

func TestClient_ExpiryEvent(t *testing.T) {
	svc := NewService(NewAccountProvider([]Account{{Email: "e@example.org", Password: "pw"}}),
		Config{Secret: testSecret, TTL: 1500 * time.Millisecond})
	c := NewClient(svc)
	log := newEventLog()
	c.OnSessionChange(log.record)

	_, err := c.SignIn(context.Background(), "e@example.org", "pw")
	require.NoError(t, err)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-log.ch:
			if ev.Type != EventExpired {
				continue
			}
			assert.Nil(t, c.CurrentSession())
			return
		case <-deadline:
			t.Fatal("expected expiry event")
		}
	}
}

func TestNewClientFromToken(t *testing.T) {
	svc := newTestService(t)
	sess, err := svc.SignIn(context.Background(), "admin@example.org", "another long secret")
	require.NoError(t, err)

	c, err := NewClientFromToken(svc, sess.Token)
	require.NoError(t, err)
	require.NotNil(t, c.CurrentSession())
	assert.Equal(t, sess.ID, c.CurrentSession().ID)

	_, err = NewClientFromToken(svc, "garbage")
	assert.Error(t, err)
}
