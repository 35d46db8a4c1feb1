package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/recipe", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/recipe", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "recipebox-test", r.Header.Get("User-Agent"))
		w.Write([]byte("<html>soup</html>"))
	})
	mux.HandleFunc("/locked", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte("subscribe"))
	})
	mux.HandleFunc("/big", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 2048)))
	})
	mux.HandleFunc("/img", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 'P', 'N', 'G'})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	srv := newServer(t)
	c := New(Settings{Timeout: 5 * time.Second, UserAgent: "recipebox-test", MaxBodyBytes: 1024})

	page, err := c.Fetch(context.Background(), srv.URL+"/old")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, page.Status)
	assert.Equal(t, srv.URL+"/old", page.URL)
	assert.Equal(t, srv.URL+"/recipe", page.FinalURL)
	assert.Equal(t, "<html>soup</html>", page.HTML)

	page, err = c.Fetch(context.Background(), srv.URL+"/locked")
	require.NoError(t, err)
	assert.Equal(t, http.StatusPaymentRequired, page.Status)

	_, err = c.Fetch(context.Background(), srv.URL+"/big")
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestFetchBytes(t *testing.T) {
	srv := newServer(t)
	c := New(Settings{})

	data, contentType, err := c.FetchBytes(context.Background(), srv.URL+"/img")
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	assert.Len(t, data, 4)

	_, _, err = c.FetchBytes(context.Background(), srv.URL+"/locked")
	assert.Error(t, err)
}
