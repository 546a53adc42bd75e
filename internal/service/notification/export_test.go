package notification

import (
	"github.com/rs/zerolog"

	"sbir-marketplace/internal/repository"
	"sbir-marketplace/internal/service/email"
)

// NewSynchronousService delivers on the calling goroutine.
func NewSynchronousService(profileRepo repository.ProfileRepository, emailSvc email.Service) Service {
	s := NewService(profileRepo, emailSvc, zerolog.Nop()).(*service)
	s.dispatch = func(fn func()) { fn() }
	return s
}
