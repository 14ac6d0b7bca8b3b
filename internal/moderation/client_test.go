package moderation

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCheck_PostsContentWithAPIKey(t *testing.T) {
	var (
		gotMethod string
		gotKey    string
		gotBody   string
		gotQuery  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotKey = r.Header.Get("apikey")
		gotQuery = r.URL.RawQuery
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(`{"censored_content":"what the ****"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/bad_words?censor_character=*", "secret", time.Second)
	cleaned, err := c.Check(context.Background(), "what the heck")

	require.NoError(t, err)
	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "secret", gotKey)
	require.Equal(t, "what the heck", gotBody)
	require.Equal(t, "censor_character=*", gotQuery)
	require.Equal(t, `{"censored_content":"what the ****"}`, cleaned)
}

func TestCheck_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"No API key found in request"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", time.Second).Check(context.Background(), "hi")

	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusUnauthorized, se.Code)
	require.Contains(t, se.Body, "No API key")
	require.Equal(t, "moderation service returned status 401", err.Error())
}

func TestCheck_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, "k", time.Second).Check(context.Background(), "hi")
	require.Error(t, err)
	require.Contains(t, err.Error(), "moderation request failed")
}

func TestCheck_HonoursContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient(srv.URL, "k", 5*time.Second).Check(ctx, "slow")
	require.Error(t, err)
	require.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("  ", "", 0)
	require.Equal(t, DefaultURL, c.url)
	require.Equal(t, 10*time.Second, c.rc.GetClient().Timeout)
	require.Equal(t, 0, c.rc.RetryCount)
}

func TestCheck_NoRetryOnServerError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "k", time.Second).Check(context.Background(), "hi")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusServiceUnavailable, se.Code)
	require.Equal(t, 1, calls)
}
