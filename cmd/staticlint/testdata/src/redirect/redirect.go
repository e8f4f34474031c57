package redirect

import (
	"net/http"
)

func viaHelper(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "https://example.com/a%20b", http.StatusFound) // want "http.Redirect cleans and re-encodes the target; set the Location header directly"
}

func asValue() func(http.ResponseWriter, *http.Request, string, int) {
	return http.Redirect // want "http.Redirect cleans and re-encodes the target; set the Location header directly"
}

func direct(w http.ResponseWriter) {
	w.Header().Set("Location", "https://example.com/a%20b")
	w.WriteHeader(http.StatusFound)
}

func handler() http.Handler {
	return http.RedirectHandler("https://example.com", http.StatusMovedPermanently) // want "http.RedirectHandler cleans and re-encodes the target; set the Location header directly"
}

// Redirect is a local function with the same name and is not reported.
func Redirect(w http.ResponseWriter) {
	direct(w)
}

func local(w http.ResponseWriter) {
	Redirect(w)
}
