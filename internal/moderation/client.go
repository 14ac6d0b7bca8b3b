// Package moderation talks to the external bad-words service that screens
// question content before it is stored.
package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// DefaultURL is the apilayer bad-words endpoint with "*" as censor character.
const DefaultURL = "https://api.apilayer.com/bad_words?censor_character=*"

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

// Client posts raw content to the moderation endpoint. It never retries.
type Client struct {
	url    string
	apiKey string
	rc     *resty.Client
}

// NewClient builds a moderation client. An empty url falls back to
// DefaultURL; a non-positive timeout falls back to 10s.
func NewClient(url, apiKey string, timeout time.Duration) *Client {
	u := strings.TrimSpace(url)
	if u == "" {
		u = DefaultURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rc := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetResponseBodyLimit(maxBody).
		SetHeader("Content-Type", "text/plain; charset=utf-8").
		SetLogger(restyLogger{})
	return &Client{url: u, apiKey: apiKey, rc: rc}
}

// Check sends content as the request body and returns the service's response
// body, i.e. the censored text. Transport errors, non-2xx statuses and body
// read failures are all returned as errors.
func (c *Client) Check(ctx context.Context, content string) (string, error) {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeader("apikey", c.apiKey).
		SetBody(content).
		Post(c.url)
	if err != nil {
		return "", fmt.Errorf("moderation request failed: %w", err)
	}
	if !resp.IsSuccess() {
		body := resp.String()
		if len(body) > 4<<10 {
			body = body[:4<<10]
		}
		return "", &StatusError{Code: resp.StatusCode(), Body: body}
	}
	return resp.String(), nil
}

// StatusError reports a non-2xx answer from the moderation service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("moderation service returned status %d", e.Code)
}

// restyLogger sends resty's internal warnings to zerolog.
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) {
	log.Error().Str("component", "moderation").Msgf(format, v...)
}

func (restyLogger) Warnf(format string, v ...interface{}) {
	log.Warn().Str("component", "moderation").Msgf(format, v...)
}

func (restyLogger) Debugf(format string, v ...interface{}) {
	log.Debug().Str("component", "moderation").Msgf(format, v...)
}
