package routes

import (
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/formdeck/formdeck/app"
	"github.com/formdeck/formdeck/httpx"
	"github.com/formdeck/formdeck/log"
)

var reRefreshToken = regexp.MustCompile(`(?i)^refresh\s+(.*)`)

// Login trades basic-auth credentials for a bearer token by rewriting
// the request into the password grant the bearer server expects.
func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "request.basic_auth")
			return
		}

		asGrantRequest(r, url.Values{
			"grant_type": {"password"},
			"username":   {user},
			"password":   {pass},
		})
		app.UserCredentials(w, r)
	}
}

// Refresh exchanges a "Refresh <token>" authorization header for a new
// token pair.
func Refresh(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match := reRefreshToken.FindStringSubmatch(r.Header.Get("authorization"))
		if len(match) == 0 {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "request.refresh_token")
			return
		}

		req, err := newGrantRequest(url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {match[1]},
		})
		if err != nil {
			httpx.LogInternalError(w, "refresh.new_request", err)
			return
		}

		resp := httpx.NewResponseBuffer()
		app.UserCredentials(resp, req)
		resp.Flush(w)
	}
}

// asGrantRequest rewrites r in place into the form-encoded grant
// request oauth.BearerServer.UserCredentials parses.
func asGrantRequest(r *http.Request, grant url.Values) {
	body := grant.Encode()
	r.Body = io.NopCloser(strings.NewReader(body))
	r.Header.Set("content-type", "application/x-www-form-urlencoded")
	r.Header.Set("content-length", strconv.Itoa(len(body)))
}

func newGrantRequest(grant url.Values) (*http.Request, error) {
	body := grant.Encode()
	req, err := http.NewRequest("POST", "/", strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("content-type", "application/x-www-form-urlencoded")
	req.Header.Set("content-length", strconv.Itoa(len(body)))
	return req, nil
}
