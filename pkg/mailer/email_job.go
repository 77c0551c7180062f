package mailer

import (
	"context"
	"errors"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Subject/Text/HTML are set directly, or Template + Data are rendered by the worker.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "verify_email", "second_factor_changed"
	Data     map[string]any `json:"data,omitempty"`
}

var ErrEmptyJob = errors.New("email job has no recipient")

// Deliver sends job through m, rendering its template first when one is named.
func Deliver(ctx context.Context, m Mailer, job EmailJob) error {
	if job.To == "" {
		return ErrEmptyJob
	}
	if job.Template != "" {
		return SendTemplate(ctx, m, job.To, job.Template, job.Data)
	}
	return m.Send(ctx, job.To, job.Subject, job.Text, job.HTML)
}
