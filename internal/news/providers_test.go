package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGNewsProvider_Fetch(t *testing.T) {
	var gotQuery map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"category": r.URL.Query().Get("category"),
			"lang":     r.URL.Query().Get("lang"),
			"country":  r.URL.Query().Get("country"),
			"apikey":   r.URL.Query().Get("apikey"),
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"totalArticles":1,"articles":[{"title":"Ekonomi tumbuh","url":"https://g/1","image":"http://img/1.jpg","publishedAt":"2026-04-01T00:00:00Z","source":{"name":"CNBC"}}]}`)
	}))
	defer ts.Close()

	p := NewGNewsProvider("gnews", "secret-key", ts.URL+"/api/v4/top-headlines", ts.Client())

	got, err := p.Fetch(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "general", gotQuery["category"])
	assert.Equal(t, "id", gotQuery["lang"])
	assert.Equal(t, "id", gotQuery["country"])
	assert.Equal(t, "secret-key", gotQuery["apikey"])
	assert.Equal(t, "https://img/1.jpg", got[0].Image)
	assert.Equal(t, "CNBC", got[0].Source)
	assert.Equal(t, "gnews", p.Name())

	_, err = p.Fetch(context.Background(), "sports")
	require.NoError(t, err)
	assert.Equal(t, "sports", gotQuery["category"])
}

func TestIndonesiaNewsProvider_Headers(t *testing.T) {
	var host, key string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host = r.Header.Get("x-rapidapi-host")
		key = r.Header.Get("x-rapidapi-key")
		fmt.Fprint(w, `{"data":[{"title":"Nasional","link":"https://i/1","thumbnail":"https://i/t.jpg","contentSnippet":"cuplikan"}]}`)
	}))
	defer ts.Close()

	p := NewIndonesiaNewsProvider("indonesia-news", "rapid-key", ts.URL+"/news/nasional", ts.Client())
	got, err := p.Fetch(context.Background(), "business")
	require.NoError(t, err)

	assert.Equal(t, "rapid-key", key)
	assert.Equal(t, ts.Listener.Addr().String(), host)
	require.Len(t, got, 1)
	assert.Equal(t, "https://i/t.jpg", got[0].Image)
	assert.Equal(t, "cuplikan", got[0].Description)
}

func TestMediastackProvider_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ms-key", r.URL.Query().Get("access_key"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		fmt.Fprint(w, `{"error":{"code":"usage_limit_reached","message":"limit"}}`)
	}))
	defer ts.Close()

	p := NewMediastackProvider("mediastack", "ms-key", ts.URL, ts.Client())
	_, err := p.Fetch(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage_limit_reached")
}

func TestProviders_StatusAndDecodeErrors(t *testing.T) {
	status := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"errors":["down"]}`)
	}))
	defer status.Close()

	malformed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": [`)
	}))
	defer malformed.Close()

	_, err := NewMediastackProvider("m", "k", status.URL, status.Client()).Fetch(context.Background(), "")
	var se *StatusError
	require.True(t, errors.As(err, &se), "err = %v", err)
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)

	_, err = NewIndonesiaNewsProvider("i", "k", malformed.URL, malformed.Client()).Fetch(context.Background(), "")
	var de *DecodeError
	assert.True(t, errors.As(err, &de), "err = %v", err)
}

func TestRSSProvider_Fetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, sampleRSS)
	}))
	defer ts.Close()

	p := NewRSSProvider("antara", ts.URL+"/rss", ts.Client())
	got, err := p.Fetch(context.Background(), "technology")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "antara", p.Name())
}

func TestRSSProvider_NotAFeed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>not a feed</body></html>")
	}))
	defer ts.Close()

	_, err := NewRSSProvider("x", ts.URL, ts.Client()).Fetch(context.Background(), "")
	var de *DecodeError
	assert.True(t, errors.As(err, &de), "err = %v", err)
}
