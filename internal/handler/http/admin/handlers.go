package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"sitecms/internal/domain/entity"
	"sitecms/internal/handler/http/respond"
	"sitecms/internal/service/auth"
	adminuc "sitecms/internal/usecase/admin"
	"sitecms/internal/usecase/media"
)

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &entity.ValidationError{Field: "body", Message: fmt.Sprintf("invalid JSON body: %v", err)}
	}
	return nil
}

func (a *API) respondState(w http.ResponseWriter, code int, c *adminuc.Controller) {
	respond.JSON(w, code, stateDTO(c.Snapshot()))
}

// signIn serves POST /admin/session.
func (a *API) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, nil, err)
		return
	}

	client := auth.NewClient(a.Auth)
	c := a.newController(client)
	if err := c.SignIn(r.Context(), req.Email, req.Password); err != nil {
		a.fail(w, r, c, err)
		return
	}

	sess := client.CurrentSession()
	if sess == nil {
		a.fail(w, r, c, &entity.AuthError{Err: entity.ErrSessionExpired})
		return
	}
	a.Registry.Add(sess.ID, c)
	respond.JSON(w, http.StatusCreated, signInResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		State:     stateDTO(c.Snapshot()),
	})
}

// signOut serves DELETE /admin/session.
func (a *API) signOut(w http.ResponseWriter, r *http.Request) {
	c := controllerFrom(r.Context())
	if err := c.SignOut(r.Context()); err != nil {
		a.logger().Warn("sign out failed", slog.Any("error", err))
	}
	w.WriteHeader(http.StatusNoContent)
}

// state serves GET /admin/state.
func (a *API) state(w http.ResponseWriter, r *http.Request) {
	a.respondState(w, http.StatusOK, controllerFrom(r.Context()))
}

// view serves POST /admin/view: switch tab, open a blank form or open a
// record for editing.
func (a *API) view(w http.ResponseWriter, r *http.Request) {
	c := controllerFrom(r.Context())
	var req viewRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, c, err)
		return
	}
	kind, err := entity.ParseKind(req.Kind)
	if err != nil {
		a.fail(w, r, c, err)
		return
	}

	switch adminuc.Mode(req.Mode) {
	case adminuc.ModeList, "":
		err = c.SelectKind(kind)
	case adminuc.ModeCreate:
		err = c.StartCreate(kind)
	case adminuc.ModeEdit:
		err = c.StartEdit(kind, req.ID)
	default:
		err = &entity.ValidationError{Field: "mode", Message: fmt.Sprintf("unknown mode %q", req.Mode)}
	}
	if err != nil {
		a.fail(w, r, c, err)
		return
	}
	a.respondState(w, http.StatusOK, c)
}

// editDraft serves PUT /admin/draft.
func (a *API) editDraft(w http.ResponseWriter, r *http.Request) {
	c := controllerFrom(r.Context())
	var patch DraftPatch
	if err := decode(r, &patch); err != nil {
		a.fail(w, r, c, err)
		return
	}
	if err := c.EditDraft(patch.Apply); err != nil {
		a.fail(w, r, c, err)
		return
	}
	a.respondState(w, http.StatusOK, c)
}

// save serves POST /admin/draft/save.
func (a *API) save(w http.ResponseWriter, r *http.Request) {
	c := controllerFrom(r.Context())
	if err := c.Save(r.Context()); err != nil {
		a.fail(w, r, c, err)
		return
	}
	a.respondState(w, http.StatusOK, c)
}

// cancel serves POST /admin/draft/cancel.
func (a *API) cancel(w http.ResponseWriter, r *http.Request) {
	c := controllerFrom(r.Context())
	c.Cancel()
	a.respondState(w, http.StatusOK, c)
}

// generate serves POST /admin/draft/generate.
func (a *API) generate(w http.ResponseWriter, r *http.Request) {
	c := controllerFrom(r.Context())
	var req generateRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, c, err)
		return
	}
	if err := c.GenerateDraft(r.Context(), req.Prompt); err != nil {
		a.fail(w, r, c, err)
		return
	}
	a.respondState(w, http.StatusOK, c)
}

type uploadResponse struct {
	URL   string   `json:"url"`
	State StateDTO `json:"state"`
}

// uploadImage serves POST /admin/draft/images/{target} with the image in
// the multipart field "file".
func (a *API) uploadImage(w http.ResponseWriter, r *http.Request) {
	c := controllerFrom(r.Context())
	target := adminuc.ImageTarget(r.PathValue("target"))

	maxMem := a.MaxUploadMemory
	if maxMem <= 0 {
		maxMem = DefaultMaxUploadMemory
	}
	if err := r.ParseMultipartForm(maxMem); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respond.Error(w, http.StatusRequestEntityTooLarge, "image exceeds the upload limit")
			return
		}
		a.fail(w, r, c, &entity.ValidationError{Field: "file", Message: "expected a multipart form with a file field"})
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	f, hdr, err := r.FormFile("file")
	if err != nil {
		a.fail(w, r, c, &entity.ValidationError{Field: "file", Message: "file is required"})
		return
	}
	defer f.Close()

	url, err := c.UploadImage(r.Context(), target, media.File{
		Name:        hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Size:        hdr.Size,
		Body:        f,
	})
	if err != nil {
		a.fail(w, r, c, err)
		return
	}
	respond.JSON(w, http.StatusCreated, uploadResponse{URL: url, State: stateDTO(c.Snapshot())})
}

type deleteResponse struct {
	Deleted bool     `json:"deleted"`
	State   StateDTO `json:"state"`
}

// deleteRecord serves DELETE /admin/records/{kind}/{id}. Nothing is deleted
// unless the query carries confirm=true.
func (a *API) deleteRecord(w http.ResponseWriter, r *http.Request) {
	c := controllerFrom(r.Context())
	kind, err := entity.ParseKind(r.PathValue("kind"))
	if err != nil {
		a.fail(w, r, c, err)
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		a.fail(w, r, c, &entity.ValidationError{Field: "id", Message: "id must be a positive integer"})
		return
	}

	confirmed := r.URL.Query().Get("confirm") == "true"
	asked := false
	err = c.Delete(r.Context(), kind, id, func(context.Context) bool {
		asked = true
		return confirmed
	})
	if err != nil {
		a.fail(w, r, c, err)
		return
	}
	respond.JSON(w, http.StatusOK, deleteResponse{
		Deleted: asked && confirmed,
		State:   stateDTO(c.Snapshot()),
	})
}

// dismissError serves POST /admin/error/dismiss.
func (a *API) dismissError(w http.ResponseWriter, r *http.Request) {
	c := controllerFrom(r.Context())
	c.DismissError()
	a.respondState(w, http.StatusOK, c)
}
