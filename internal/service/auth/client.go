package auth

import (
	"context"
	"sync"
	"time"
)

// EventType describes a session change.
type EventType string

const (
	EventSignedIn  EventType = "signed_in"
	EventSignedOut EventType = "signed_out"
	EventExpired   EventType = "expired"
)

// Event is delivered to the client's subscriber.
type Event struct {
	Type    EventType
	Session *Session
}

// Subscription is returned by OnSessionChange.
type Subscription interface {
	Unsubscribe()
}

// Client holds one editor's session. It allows a single subscriber at a
// time; subscribing again replaces the previous listener.
type Client struct {
	svc *Service

	mu      sync.Mutex
	session *Session
	timer   *time.Timer
	sub     *subscription
}

// NewClient returns a signed-out client.
func NewClient(svc *Service) *Client {
	return &Client{svc: svc}
}

// NewClientFromToken returns a client already holding the session the
// token describes, for example after a server restart.
func NewClientFromToken(svc *Service, token string) (*Client, error) {
	sess, err := svc.Verify(token)
	if err != nil {
		return nil, err
	}
	c := &Client{svc: svc}
	c.setSession(sess)
	return c, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	sess, err := c.svc.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.setSession(sess)
	c.emit(Event{Type: EventSignedIn, Session: sess})
	return sess, nil
}

// SignOut revokes the current session. It is a no-op when signed out.
func (c *Client) SignOut(context.Context) error {
	c.mu.Lock()
	sess := c.session
	c.session = nil
	c.stopTimerLocked()
	c.mu.Unlock()

	if sess == nil {
		return nil
	}
	c.svc.Revoke(sess)
	c.emit(Event{Type: EventSignedOut, Session: sess})
	return nil
}

// CurrentSession returns the live session or nil.
func (c *Client) CurrentSession() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil || !c.svc.now().Before(c.session.ExpiresAt) {
		return nil
	}
	cp := *c.session
	return &cp
}

// OnSessionChange registers fn, replacing any earlier subscriber.
func (c *Client) OnSessionChange(fn func(Event)) Subscription {
	s := &subscription{client: c, fn: fn}
	c.mu.Lock()
	c.sub = s
	c.mu.Unlock()
	return s
}

func (c *Client) setSession(sess *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimerLocked()
	c.session = sess
	wait := sess.ExpiresAt.Sub(c.svc.now())
	if wait < 0 {
		wait = 0
	}
	c.timer = time.AfterFunc(wait, func() { c.expire(sess) })
}

func (c *Client) expire(sess *Session) {
	c.mu.Lock()
	if c.session != sess {
		c.mu.Unlock()
		return
	}
	c.session = nil
	c.timer = nil
	c.mu.Unlock()

	c.emit(Event{Type: EventExpired, Session: sess})
}

func (c *Client) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// emit calls the subscriber outside the lock.
func (c *Client) emit(ev Event) {
	c.mu.Lock()
	s := c.sub
	c.mu.Unlock()
	if s != nil {
		s.fn(ev)
	}
}

type subscription struct {
	client *Client
	fn     func(Event)
}

func (s *subscription) Unsubscribe() {
	c := s.client
	c.mu.Lock()
	if c.sub == s {
		c.sub = nil
	}
	c.mu.Unlock()
}
