package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageHTML(body string) string {
	return `<html><head><title>Test Page</title><script>var x=1;</script></head><body>` + body + `</body></html>`
}

func TestFetchText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pageHTML(strings.Repeat("Real content here. ", 20))))
	}))
	defer srv.Close()

	f := NewFetcher(Config{MinContentLen: 50})
	page, err := f.FetchText(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Test Page", page.Title)
	assert.Contains(t, page.Text, "Real content here.")
	assert.NotContains(t, page.Text, "var x=1", "script content must be stripped")
}

func TestFetchText_ThinPageRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pageHTML("tiny")))
	}))
	defer srv.Close()

	f := NewFetcher(Config{MinContentLen: 200})
	_, err := f.FetchText(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestFetchText_CaptchaBlocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pageHTML("please solve this CAPTCHA to continue " + strings.Repeat("x", 300))))
	}))
	defer srv.Close()

	f := NewFetcher(Config{MinContentLen: 50})
	_, err := f.FetchText(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked")
}

func TestFetchText_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(Config{})
	_, err := f.FetchText(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestFetchSite_SkipsFailedPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/", "/about":
			_, _ = w.Write([]byte(pageHTML(strings.Repeat("Company details. ", 20))))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher(Config{MinContentLen: 50})
	pages := f.FetchSite(context.Background(), srv.URL)
	assert.Len(t, pages, 2)
}

func TestStripHTML(t *testing.T) {
	text := stripHTML(`<div>Hello &amp; welcome</div><nav>menu</nav><p>world</p>`)
	assert.Contains(t, text, "Hello & welcome")
	assert.Contains(t, text, "world")
	assert.NotContains(t, text, "menu")
}
