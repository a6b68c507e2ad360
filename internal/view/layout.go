// Package view renders the HTML shell of the task board. Components are
// plain templ.Component values so handlers can render full pages or patch
// single fragments over Datastar SSE.
package view

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

// layout wraps body in the document shell shared by every page.
func layout(title, userName string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1">`+
			`<title>`+templ.EscapeString(title)+` · Task Board</title>`+
			`<script type="module" src="`+datastarScript+`"></script>`+
			`</head><body><header><a href="/">Task Board</a>`); err != nil {
			return err
		}
		if userName != "" {
			if _, err := io.WriteString(w, `<nav><a href="/dashboard">Dashboard</a> <span>`+
				templ.EscapeString(userName)+`</span></nav>`); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</header><main>`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main><footer>Task Board</footer></body></html>`)
		return err
	})
}
