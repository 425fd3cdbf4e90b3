// Package htmx recognizes requests issued by htmx so handlers can answer
// with a fragment instead of a full page.
package htmx

import (
	"net/http"
	"strings"
)

func IsRequest(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("HX-Request"), "true")
}

// WantsFragment reports whether the response should omit the page shell.
// Boosted navigation swaps the whole body and still needs the layout.
func WantsFragment(r *http.Request) bool {
	return IsRequest(r) && !strings.EqualFold(r.Header.Get("HX-Boosted"), "true")
}
