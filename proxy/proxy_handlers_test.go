package proxy

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewriteRequestURL_relative(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "http://example.org/file/a.txt?x=1", nil)

	err := rewriteRequestURL(r, "/tmp/a.txt?y=2")
	require.NoError(t, err)

	assert.Equal(t, "example.org", r.URL.Host)
	assert.Equal(t, "/tmp/a.txt", r.URL.Path)
	assert.Equal(t, "y=2", r.URL.RawQuery)
}

func TestRewriteRequestURL_absolute(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "http://example.org/old", nil)

	err := rewriteRequestURL(r, "https://mirror.example.net/new")
	require.NoError(t, err)

	assert.Equal(t, "https", r.URL.Scheme)
	assert.Equal(t, "mirror.example.net", r.URL.Host)
	assert.Equal(t, "mirror.example.net", r.Host)
	assert.Equal(t, "/new", r.URL.Path)
}

func TestNewForbiddenResponse(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "http://example.org/blocked/y", nil)
	res := newForbiddenResponse(r)

	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Equal(t, "text/html", res.Header.Get("Content-Type"))
}

func TestNewRedirectResponse(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "http://example.org/redirect/x", nil)
	res := newRedirectResponse(r, http.StatusMovedPermanently, "/location/x")

	assert.Equal(t, http.StatusMovedPermanently, res.StatusCode)
	assert.Equal(t, "/location/x", res.Header.Get("Location"))
}

func TestBuildEngine(t *testing.T) {
	t.Parallel()

	config := Config{
		RulesPaths: []string{"testdata/rewrite.conf"},
	}

	engine, err := buildEngine(config)
	require.NoError(t, err)

	assert.Equal(t, 3, engine.RulesCount)

	res, err := engine.Rewrite("/file/my/document.txt")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/my/document.txt", res.URI)
}
