package view

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// HomePage renders the landing page. userName is empty for visitors.
func HomePage(userName string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		html := `<h1>Organise your work</h1>`
		if userName == "" {
			html += `<p>Sign in with <code>taskctl login</code> or <code>POST /api/auth/login</code> to see your board.</p>`
		} else {
			html += `<p>Welcome back, ` + templ.EscapeString(userName) + `.</p><p><a href="/dashboard">Open your board</a></p>`
		}
		_, err := io.WriteString(w, html)
		return err
	})
	return layout("Home", userName, body)
}
