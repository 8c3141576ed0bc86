package service

import (
	"context"
	"html"
	"strings"

	"github.com/rs/zerolog"

	"github.com/estatehub/listing-api/internal/core/ports"
)

const defaultContactSubject = "Contact Form"

// ContactService renders contact-form submissions as HTML mail to the site
// operator. Submissions are not persisted.
type ContactService struct {
	mailer     ports.Mailer
	adminEmail string
	logger     zerolog.Logger
}

func NewContactService(mailer ports.Mailer, adminEmail string, logger zerolog.Logger) *ContactService {
	return &ContactService{mailer: mailer, adminEmail: adminEmail, logger: logger}
}

func (s *ContactService) Submit(ctx context.Context, input ports.ContactInput) error {
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		subject = defaultContactSubject
	}

	var b strings.Builder
	b.WriteString("<h2>New Contact Message</h2>")
	b.WriteString("<p><strong>Name:</strong> " + html.EscapeString(input.Name) + "</p>")
	b.WriteString("<p><strong>Email:</strong> " + html.EscapeString(input.Email) + "</p>")
	if input.Phone != "" {
		b.WriteString("<p><strong>Phone:</strong> " + html.EscapeString(input.Phone) + "</p>")
	}
	b.WriteString("<p><strong>Subject:</strong> " + html.EscapeString(subject) + "</p>")
	b.WriteString("<p><strong>Message:</strong></p>")
	b.WriteString("<p>" + strings.ReplaceAll(html.EscapeString(input.Message), "\n", "<br/>") + "</p>")

	if err := s.mailer.Send(ctx, s.adminEmail, subject, b.String()); err != nil {
		s.logger.Error().Err(err).Str("from", input.Email).Msg("failed to forward contact message")
		return err
	}
	s.logger.Info().Str("from", input.Email).Msg("contact message forwarded")
	return nil
}
