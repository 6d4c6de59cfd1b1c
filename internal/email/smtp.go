// Package email sends operational e-mail over SMTP.
package email

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"leadgen_backend/internal/leads/domain"
	"leadgen_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender delivers the hot-lead digest through an SMTP relay via go-mail.
type SMTPSender struct {
	host       string
	port       int
	username   string
	password   string
	fromName   string
	fromEmail  string
	recipients []string
}

// NewSMTPSender creates an SMTPSender from config. It returns nil when SMTP
// is not configured or there is nobody to send to.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	if !cfg.IsSMTPEnabled() || cfg.GetSMTPFromAddress() == "" || len(cfg.GetDigestRecipients()) == 0 {
		return nil
	}
	return &SMTPSender{
		host:       cfg.GetSMTPHost(),
		port:       cfg.GetSMTPPort(),
		username:   cfg.GetSMTPUsername(),
		password:   cfg.GetSMTPPassword(),
		fromName:   cfg.GetSMTPFromName(),
		fromEmail:  cfg.GetSMTPFromAddress(),
		recipients: cfg.GetDigestRecipients(),
	}
}

// SendHotLeadDigest mails the hot leads a saved search produced.
func (s *SMTPSender) SendHotLeadDigest(ctx context.Context, query string, leads []domain.NormalizedLead) error {
	if len(leads) == 0 {
		return nil
	}

	subject, content, err := buildHotLeadDigest(query, leads)
	if err != nil {
		return err
	}

	var errs []error
	for _, to := range s.recipients {
		if err := s.send(ctx, to, subject, content); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", to, err))
		}
	}
	return errors.Join(errs...)
}

func buildHotLeadDigest(query string, leads []domain.NormalizedLead) (string, string, error) {
	rows := make([]digestLeadRow, 0, len(leads))
	for _, lead := range leads {
		row := digestLeadRow{
			Name:    lead.BusinessName,
			City:    lead.City,
			Website: lead.Website,
			Contact: contactLine(lead),
		}
		if lead.Score != nil {
			row.Score = *lead.Score
		}
		if lead.Grade != nil {
			row.Grade = string(*lead.Grade)
		}
		rows = append(rows, row)
	}

	title := fmt.Sprintf(subjectHotLeadDigestFmt, len(leads), query)
	content, err := renderEmailTemplate("hot_lead_digest.html", hotLeadDigestEmailData{
		baseEmailData: baseEmailData{
			Title:      title,
			Heading:    "New hot leads",
			Subheading: "Saved search: " + query,
		},
		Leads: rows,
	})
	if err != nil {
		return "", "", err
	}
	return title, content, nil
}

func contactLine(lead domain.NormalizedLead) string {
	parts := make([]string, 0, 3)
	for _, v := range []string{lead.Email, lead.Phone, lead.SocialHandle} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " / ")
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15 * time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	}
	if s.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.username),
			gomail.WithPassword(s.password),
		)
	}

	client, err := gomail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}
