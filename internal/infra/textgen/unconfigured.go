package textgen

import (
	"context"

	"sitecms/internal/domain/entity"
)

// Unconfigured fails every call without contacting any provider.
type Unconfigured struct {
	setting string
	message string
}

func NewUnconfigured(setting, message string) *Unconfigured {
	return &Unconfigured{setting: setting, message: message}
}

func (u *Unconfigured) Generate(context.Context, Request) (string, error) {
	return "", &entity.ConfigurationError{Setting: u.setting, Message: u.message}
}
