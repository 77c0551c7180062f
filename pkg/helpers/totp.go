package helpers

import (
	"bytes"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"image/png"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// TOTP generates and checks RFC 6238 codes.
type TOTP struct {
	Issuer string
	Period uint
	Skew   uint
}

func NewTOTP(issuer string) *TOTP {
	return &TOTP{Issuer: issuer, Period: 30, Skew: 1}
}

func (t *TOTP) validateOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    t.Period,
		Skew:      t.Skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// Generate creates a fresh shared secret for account.
func (t *TOTP) Generate(account string) (*otp.Key, error) {
	return totp.Generate(totp.GenerateOpts{
		Issuer:      t.Issuer,
		AccountName: account,
		Period:      t.Period,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
}

// Code returns the code for secret at time at.
func (t *TOTP) Code(secret string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, at, t.validateOpts())
}

// Match checks code against secret within the skew window around now and
// returns the matched time step.
func (t *TOTP) Match(secret, code string, now time.Time) (int64, bool) {
	code = strings.TrimSpace(code)
	if len(code) != otp.DigitsSix.Length() || secret == "" {
		return 0, false
	}
	period := int64(t.Period)
	base := now.Unix() / period
	for off := -int64(t.Skew); off <= int64(t.Skew); off++ {
		step := base + off
		if step < 0 {
			continue
		}
		want, err := t.Code(secret, time.Unix(step*period, 0))
		if err != nil {
			return 0, false
		}
		if subtle.ConstantTimeCompare([]byte(want), []byte(code)) == 1 {
			return step, true
		}
	}
	return 0, false
}

// QRDataURL renders key as a PNG data URL suitable for an <img> src.
func QRDataURL(key *otp.Key, size int) (string, error) {
	if key == nil {
		return "", errors.New("nil otp key")
	}
	img, err := key.Image(size, size)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
