package middleware

import (
	"net/http"

	"github.com/go-chi/render"
)

// errorBody matches the web package's error responses.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message, code string) {
	render.Status(r, status)
	render.JSON(w, r, errorBody{Error: message, Message: message, Code: code})
}
