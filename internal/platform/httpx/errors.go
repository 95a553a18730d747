package httpx

import (
	"errors"
	"net/http"
)

// Rule maps a sentinel error to a problem response.
type Rule struct {
	Target error
	Status int
	Title  string
}

// ErrorMap is an ordered list of rules; the first match wins.
type ErrorMap []Rule

// Respond writes the problem for err. Unmatched errors become an opaque 500
// so internal details never leak.
func (m ErrorMap) Respond(w http.ResponseWriter, err error) {
	for _, rule := range m {
		if errors.Is(err, rule.Target) {
			Problem(w, rule.Status, rule.Title, err.Error())
			return
		}
	}
	Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
