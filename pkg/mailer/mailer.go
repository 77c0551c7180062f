// Package mailer delivers transactional email through one of several drivers.
package mailer

import (
	"context"
	"fmt"

	"github.com/oksasatya/igrotrend-auth/pkg/mailer/templates"
)

// Mailer sends one message. html is optional.
type Mailer interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// SendTemplate renders the named template with data and sends it through m.
func SendTemplate(ctx context.Context, m Mailer, to, name string, data any) error {
	subject, text, html, err := templates.Render(name, data)
	if err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return m.Send(ctx, to, subject, text, html)
}
