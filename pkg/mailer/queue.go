package mailer

import "context"

// Publisher puts a JSON message on a queue. *helpers.RabbitPublisher satisfies it.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueMailer hands messages to the email worker instead of sending inline.
type QueueMailer struct {
	pub Publisher
}

func NewQueueMailer(pub Publisher) *QueueMailer {
	return &QueueMailer{pub: pub}
}

func (q *QueueMailer) Send(ctx context.Context, to, subject, text, html string) error {
	return q.pub.PublishJSON(ctx, EmailJob{To: to, Subject: subject, Text: text, HTML: html})
}
