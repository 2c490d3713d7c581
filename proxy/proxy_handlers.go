package proxy

import (
	"net/http"
	"net/url"

	"github.com/AdguardTeam/golibs/log"
	"github.com/AdguardTeam/gomitmproxy"
	"github.com/AdguardTeam/gomitmproxy/proxyutil"
	"github.com/shackerd/urlrewrite"
)

// onRequest handles the outgoing HTTP requests.
func (s *Server) onRequest(sess *gomitmproxy.Session) (*http.Request, *http.Response) {
	r := sess.Request()

	if r.Method == http.MethodConnect {
		// Do nothing for CONNECT requests.
		return nil, nil
	}

	res, err := s.engine.Rewrite(r.URL.RequestURI())
	if err != nil {
		// Pass the request through untouched, the engine refused the URI,
		// not the rules.
		log.Error("urlrewrite: id=%s: %v", sess.ID(), err)

		return nil, nil
	}

	switch res.Kind {
	case urlrewrite.Forbidden:
		log.Debug("urlrewrite: id=%s: blocked: %s", sess.ID(), r.URL)

		return nil, newForbiddenResponse(r)
	case urlrewrite.Redirected:
		log.Debug("urlrewrite: id=%s: redirect %d: %s -> %s", sess.ID(), res.Status, r.URL, res.URI)

		return nil, newRedirectResponse(r, res.Status, res.URI)
	case urlrewrite.Rewritten:
		log.Debug("urlrewrite: id=%s: rewrite: %s -> %s", sess.ID(), r.URL.RequestURI(), res.URI)

		if err = rewriteRequestURL(r, res.URI); err != nil {
			log.Error("urlrewrite: id=%s: cannot apply %q: %v", sess.ID(), res.URI, err)
		}
	}

	return r, nil
}

// rewriteRequestURL replaces the path and query of the outgoing request
// with the rewritten URI.  The scheme and host are kept, unless the
// rewritten URI is absolute.
func rewriteRequestURL(r *http.Request, uri string) error {
	u, err := url.Parse(uri)
	if err != nil {
		return err
	}

	if u.IsAbs() {
		u.User = r.URL.User
		r.URL = u
		r.Host = u.Host

		return nil
	}

	r.URL.Path = u.Path
	r.URL.RawPath = ""
	r.URL.RawQuery = u.RawQuery

	return nil
}

// newForbiddenResponse creates a 403 response for a blocked request.
func newForbiddenResponse(r *http.Request) *http.Response {
	res := proxyutil.NewResponse(http.StatusForbidden, nil, r)
	res.Header.Set("Content-Type", "text/html")

	return res
}

// newRedirectResponse creates a redirect response with the specified
// status code and location.
func newRedirectResponse(r *http.Request, status int, location string) *http.Response {
	res := proxyutil.NewResponse(status, nil, r)
	res.Header.Set("Location", location)

	return res
}
