package handler

import (
	"net/http"

	"github.com/msomdec/task-board/internal/view"
)

// HandleHome renders the home page. Unknown paths fall through to 404.
func HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	userName := ""
	if user := UserFromContext(r.Context()); user != nil {
		userName = user.Name
	}
	view.HomePage(userName).Render(r.Context(), w)
}
