package templates

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	htmpl "html/template"
	"reflect"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// Template names. Each has <name>.subject.tmpl, <name>.text.tmpl and <name>.html.tmpl.
const (
	VerifyEmail         = "verify_email"
	SecondFactorChanged = "second_factor_changed"
)

// EmailData defines standard fields for email templates.
type EmailData struct {
	Name    string
	Email   string
	AppName string

	// verification
	Code             string
	ExpiresAt        time.Time
	ExpiresAtText    string
	ExpiresInMinutes int

	// security notices
	Factor  string
	Enabled bool
	IP      string
	Time    string
	TimeAt  time.Time
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback, value any) any {
	if s, ok := value.(string); ok {
		if strings.TrimSpace(s) == "" {
			return fallback
		}
		return s
	}
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || rv.IsZero() {
		return fallback
	}
	return value
}

var (
	textSet = texttpl.Must(texttpl.New("").Funcs(texttpl.FuncMap{"default": defaultFn}).ParseFS(FS, "*.subject.tmpl", "*.text.tmpl"))
	htmlSet = htmpl.Must(htmpl.New("").Funcs(htmpl.FuncMap{"default": defaultFn}).ParseFS(FS, "*.html.tmpl"))
)

type executor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

func exec(set executor, file string, data any) (string, error) {
	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, file, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", file, err)
	}
	return buf.String(), nil
}

// Render produces subject, text and html bodies for the named template.
func Render(name string, data any) (subject, text, html string, err error) {
	if subject, err = exec(textSet, name+".subject.tmpl", data); err != nil {
		return "", "", "", err
	}
	if text, err = exec(textSet, name+".text.tmpl", data); err != nil {
		return "", "", "", err
	}
	if html, err = exec(htmlSet, name+".html.tmpl", data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
