package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"

	"sbir-marketplace/internal/config"
	"sbir-marketplace/internal/pkg/i18n"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type Service interface {
	// Enabled reports whether messages actually leave the process.
	Enabled() bool
	SendListingModerated(ctx context.Context, toEmail string, data ListingModeratedData) error
	SendChangeRequestProcessed(ctx context.Context, toEmail string, data ChangeRequestProcessedData) error
	SendChangeRequestSubmitted(ctx context.Context, toEmail string, data ChangeRequestSubmittedData) error
}

type ListingModeratedData struct {
	Name         string
	ListingTitle string
	Outcome      string
	Notes        string
	Link         string
}

type ChangeRequestProcessedData struct {
	Name         string
	ListingTitle string
	RequestType  string
	Status       string
	Notes        string
	Link         string
}

type ChangeRequestSubmittedData struct {
	Name          string
	RequesterName string
	ListingTitle  string
	RequestType   string
	Reason        string
	Link          string
}

// Sender is the slice of the Resend client this package needs.
type Sender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type service struct {
	sender Sender
	config *config.Config
	logger zerolog.Logger
}

func NewService(cfg *config.Config, logger zerolog.Logger) Service {
	var sender Sender
	if cfg.ResendAPIKey != "" {
		sender = resend.NewClient(cfg.ResendAPIKey).Emails
	}
	return NewServiceWithSender(sender, cfg, logger)
}

// NewServiceWithSender builds the service on an explicit sender. A nil sender
// renders messages and logs them instead of delivering.
func NewServiceWithSender(sender Sender, cfg *config.Config, logger zerolog.Logger) Service {
	return &service{
		sender: sender,
		config: cfg,
		logger: logger.With().Str("component", "email_service").Logger(),
	}
}

func (s *service) Enabled() bool {
	return s.sender != nil
}

func (s *service) sendEmail(toEmail, subject, templateName string, data interface{}) error {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	if s.sender == nil {
		s.logger.Debug().Str("to", toEmail).Str("subject", subject).Msg("email delivery disabled, message dropped")
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.t("SENDER_NAME"), s.config.FromEmail),
		To:      []string{toEmail},
		Html:    body.String(),
		Subject: subject,
	}

	if _, err := s.sender.Send(params); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *service) t(key string) string {
	return i18n.Translate(s.config.EmailLocale, key)
}

// label translates a status or request type code, keeping the code when no
// translation exists.
func (s *service) label(prefix, code string) string {
	key := prefix + strings.ToUpper(code)
	if translated := s.t(key); translated != key {
		return translated
	}
	return code
}

func (s *service) link(path string) string {
	return fmt.Sprintf("https://%s%s", s.config.Domain, path)
}

func (s *service) SendListingModerated(ctx context.Context, toEmail string, data ListingModeratedData) error {
	if data.Link == "" {
		data.Link = s.link("/my-listings")
	}
	data.Outcome = s.label("OUTCOME_", data.Outcome)
	subject := i18n.Translatef(s.config.EmailLocale, "SUBJECT_LISTING_MODERATED", data.ListingTitle, data.Outcome)
	return s.sendEmail(toEmail, subject, "listing_moderated.html", data)
}

func (s *service) SendChangeRequestProcessed(ctx context.Context, toEmail string, data ChangeRequestProcessedData) error {
	if data.Link == "" {
		data.Link = s.link("/my-listings")
	}
	data.RequestType = s.label("REQUEST_", data.RequestType)
	data.Status = s.label("OUTCOME_", data.Status)
	subject := i18n.Translatef(s.config.EmailLocale, "SUBJECT_CHANGE_REQUEST_PROCESSED", data.RequestType, data.ListingTitle, data.Status)
	return s.sendEmail(toEmail, subject, "change_request_processed.html", data)
}

func (s *service) SendChangeRequestSubmitted(ctx context.Context, toEmail string, data ChangeRequestSubmittedData) error {
	if data.Link == "" {
		data.Link = s.link("/admin/change-requests")
	}
	data.RequestType = s.label("REQUEST_", data.RequestType)
	subject := i18n.Translatef(s.config.EmailLocale, "SUBJECT_CHANGE_REQUEST_SUBMITTED", data.RequestType, data.ListingTitle)
	return s.sendEmail(toEmail, subject, "change_request_submitted.html", data)
}
