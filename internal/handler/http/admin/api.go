package admin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"sitecms/internal/domain/entity"
	"sitecms/internal/handler/http/respond"
	"sitecms/internal/service/auth"
	adminuc "sitecms/internal/usecase/admin"
)

// DefaultMaxUploadMemory is how much of a multipart upload is buffered in
// memory before spilling to temporary files.
const DefaultMaxUploadMemory = 8 << 20

type ctxKey struct{}

// API serves the admin routes.
type API struct {
	Auth     *auth.Service
	Registry *adminuc.Registry

	// Deps is the template for new controllers; Auth is filled per session.
	Deps adminuc.Deps

	MaxUploadMemory int64
	Logger          *slog.Logger

	restoreMu sync.Mutex
}

func (a *API) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

func (a *API) newController(client adminuc.AuthClient) *adminuc.Controller {
	deps := a.Deps
	deps.Auth = client
	if deps.Logger == nil {
		deps.Logger = a.Logger
	}
	return adminuc.New(deps)
}

// Register mounts the admin routes on mux. Only sign-in is reachable
// without a bearer token.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /admin/session", a.signIn)

	mux.Handle("DELETE /admin/session", a.authed(a.signOut))
	mux.Handle("GET /admin/state", a.authed(a.state))
	mux.Handle("POST /admin/view", a.authed(a.view))
	mux.Handle("PUT /admin/draft", a.authed(a.editDraft))
	mux.Handle("POST /admin/draft/save", a.authed(a.save))
	mux.Handle("POST /admin/draft/cancel", a.authed(a.cancel))
	mux.Handle("POST /admin/draft/generate", a.authed(a.generate))
	mux.Handle("POST /admin/draft/images/{target}", a.authed(a.uploadImage))
	mux.Handle("DELETE /admin/records/{kind}/{id}", a.authed(a.deleteRecord))
	mux.Handle("POST /admin/error/dismiss", a.authed(a.dismissError))
}

// authed resolves the bearer token to the session's controller. A valid
// token without a live controller, as after a restart, gets a fresh one
// restored from the token.
func (a *API) authed(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			respond.Error(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		sess, err := a.Auth.Verify(token)
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, adminuc.UserMessage(err))
			return
		}

		ctrl, err := a.controllerFor(r.Context(), sess, token)
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, adminuc.UserMessage(err))
			return
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, ctrl)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *API) controllerFor(ctx context.Context, sess *auth.Session, token string) (*adminuc.Controller, error) {
	if c, ok := a.Registry.Get(sess.ID); ok {
		return c, nil
	}

	a.restoreMu.Lock()
	defer a.restoreMu.Unlock()
	if c, ok := a.Registry.Get(sess.ID); ok {
		return c, nil
	}

	client, err := auth.NewClientFromToken(a.Auth, token)
	if err != nil {
		return nil, err
	}
	c := a.newController(client)
	if !c.Restore(ctx) {
		return nil, &entity.AuthError{Message: "Your session has expired. Please sign in again.", Err: entity.ErrSessionExpired}
	}
	a.Registry.Add(sess.ID, c)
	a.logger().Info("editor session restored", slog.String("session_id", sess.ID))
	return c, nil
}

func controllerFrom(ctx context.Context) *adminuc.Controller {
	c, _ := ctx.Value(ctxKey{}).(*adminuc.Controller)
	return c
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// errorResponse carries the message plus the state the failure left behind.
type errorResponse struct {
	Error string    `json:"error"`
	Field string    `json:"field,omitempty"`
	State *StateDTO `json:"state,omitempty"`
}

// fail answers with the status for err and the controller's banner text.
func (a *API) fail(w http.ResponseWriter, r *http.Request, c *adminuc.Controller, err error) {
	code := respond.StatusFor(err)
	if errors.Is(err, adminuc.ErrBusy) {
		code = http.StatusConflict
	}

	body := errorResponse{Error: adminuc.UserMessage(err)}
	var ve *entity.ValidationError
	if errors.As(err, &ve) {
		body.Field = ve.Field
	}
	if c != nil {
		st := stateDTO(c.Snapshot())
		body.State = &st
		if st.Error != "" {
			body.Error = st.Error
		}
	}
	if code == http.StatusInternalServerError {
		a.logger().Error("admin request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", respond.SanitizeError(err)))
		body.Error = "internal server error"
	}
	respond.JSON(w, code, body)
}
