package htmx

import "net/http"

// Redirect sends htmx requests an HX-Redirect with status 200 and everything
// else a 303 See Other, so form posts land on a GET.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	if IsHTMX(r) {
		w.Header().Set(HeaderHXRedirect, url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}
