package templates

import (
	"time"
)

// Option pattern
type Option func(*EmailData)

func WithIP(ip string) Option { return func(d *EmailData) { d.IP = ip } }

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02.01.2006 15:04 MST")
	}
}

func WithExpiresAt(t time.Time, ttl time.Duration) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02.01.2006 15:04 MST")
		d.ExpiresInMinutes = int(ttl.Minutes())
	}
}

func newBase(appName, name, email string, opts ...Option) EmailData {
	d := EmailData{Name: name, Email: email, AppName: appName}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewVerifyEmailData(appName, name, email, code string, opts ...Option) EmailData {
	d := newBase(appName, name, email, opts...)
	d.Code = code
	return d
}

func NewSecondFactorChangedData(appName, name, email, factor string, enabled bool, opts ...Option) EmailData {
	d := newBase(appName, name, email, opts...)
	d.Factor = factor
	d.Enabled = enabled
	return d
}
