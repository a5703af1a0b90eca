package admin

import (
	"errors"

	"sitecms/internal/domain/entity"
)

const (
	msgInvalidCredentials = "Invalid email or password."
	msgSessionExpired     = "Your session has expired. Please sign in again."
)

// UserMessage turns an error into the banner text shown to the editor.
// Store and capability messages are passed through unchanged.
func UserMessage(err error) string {
	if errors.Is(err, entity.ErrInvalidCredentials) {
		return msgInvalidCredentials
	}

	var (
		ve *entity.ValidationError
		pe *entity.PersistenceError
		ue *entity.UploadError
		fe *entity.FormatError
		ae *entity.AuthError
		ce *entity.ConfigurationError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &pe):
		return pe.Message
	case errors.As(err, &ue):
		return ue.Message
	case errors.As(err, &fe):
		return fe.Error()
	case errors.As(err, &ae):
		return ae.Error()
	case errors.As(err, &ce):
		return ce.Error()
	}
	return err.Error()
}
