package mailer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogMailer writes emails to the log instead of sending them. The body is only
// logged when ShowBody is set, which callers restrict to development.
type LogMailer struct {
	Log      *logrus.Logger
	ShowBody bool
}

func NewLogMailer(log *logrus.Logger, showBody bool) *LogMailer {
	return &LogMailer{Log: log, ShowBody: showBody}
}

func (m *LogMailer) Send(_ context.Context, to, subject, text, _ string) error {
	entry := m.Log.WithFields(logrus.Fields{"to": to, "subject": subject})
	if m.ShowBody {
		entry = entry.WithField("body", text)
	}
	entry.Info("email not sent: no mail transport configured")
	return nil
}
