package googleweb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serpPage = `<html><body>
<a href="/url?q=https%3A%2F%2Facme.com%2Fabout-us&amp;sa=U">link</a>
<a href="/url?q=https%3A%2F%2Fmaps.google.com%2Fplace&amp;sa=U">maps</a>
<a href="/url?q=https%3A%2F%2Fexample.com%2Facme-earnings-report.html&amp;sa=U">link</a>
<a href="/url?q=https%3A%2F%2Facme.com%2Fabout-us&amp;sa=U">duplicate</a>
</body></html>`

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "acme corp", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(serpPage))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	results, err := client.Search(context.Background(), "acme corp", 10)
	require.NoError(t, err)
	require.Len(t, results, 2, "google properties and duplicates are dropped")

	assert.Equal(t, "https://acme.com/about-us", results[0].URL)
	assert.Equal(t, "About Us", results[0].Title)
	assert.Equal(t, "https://example.com/acme-earnings-report.html", results[1].URL)
	assert.Equal(t, "Acme Earnings Report", results[1].Title)
}

func TestSearch_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.Search(context.Background(), "q", 5)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestSearch_SorryPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>redirecting to /sorry/index</html>`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.Search(context.Background(), "q", 5)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestTitleFromURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://acme.com/our-leadership-team", "Our Leadership Team"},
		{"https://acme.com/news/acme_wins_award.html", "Acme Wins Award"},
		{"https://acme.com/", "acme.com"},
	}
	for _, tt := range tests {
		u, err := url.Parse(tt.raw)
		require.NoError(t, err)
		assert.Equal(t, tt.want, TitleFromURL(u), tt.raw)
	}
}
