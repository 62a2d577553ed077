package handlers

import (
	"io"
	"net/http"
)

// WelcomeMessage is the body of GET /.
const WelcomeMessage = "Welcome to Simple REST API with Go"

// Home responds with the welcome text.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, WelcomeMessage)
}
