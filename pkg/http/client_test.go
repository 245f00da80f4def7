package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSONSendsQueryAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		assert.Equal(t, "k", r.Header.Get("x-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"price":1.5}`))
	}))
	defer srv.Close()

	var out struct {
		Price float64 `json:"price"`
	}
	err := NewClient().GetJSON(context.Background(), &Request{
		URL:     srv.URL,
		Headers: map[string]string{"x-api-key": "k"},
		Query:   url.Values{"ids": {"bitcoin"}},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1.5, out.Price)
}

func TestGetJSONNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	var out map[string]interface{}
	err := NewClient().GetJSON(context.Background(), &Request{URL: srv.URL}, &out)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.Equal(t, "slow down", se.Body)
}

func TestGetJSONMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"bitcoin":`))
	}))
	defer srv.Close()

	var out map[string]interface{}
	err := NewClient().GetJSON(context.Background(), &Request{URL: srv.URL}, &out)
	require.Error(t, err)

	var se *StatusError
	assert.False(t, errors.As(err, &se))
}
