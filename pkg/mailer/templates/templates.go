package templates

import (
	"bytes"
	"fmt"
	"html/template"
)

// Named email templates rendered by the email worker. Kept deliberately
// small; transactional mail only.
const (
	Welcome = "welcome"
)

var tmpl = template.Must(template.New("email").Parse(`
{{define "welcome"}}
<html>
  <body style="font-family: sans-serif; color: #222;">
    <h2>Welcome, {{.Username}}!</h2>
    <p>Your account is ready. Log in to write your first post or join a
    discussion in the comments.</p>
    <p>The blog team</p>
  </body>
</html>
{{end}}
`))

var subjects = map[string]string{
	Welcome: "Welcome to the blog",
}

// Render produces the subject and HTML body for a named template.
func Render(name string, data map[string]any) (subject, html string, err error) {
	subject, ok := subjects[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}
