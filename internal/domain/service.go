package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/manol-dimitrov/strava-data-analyser/internal/observability"
)

const defaultTimeout = 10 * time.Second

var ErrNetwork = errors.New("activity feed: network failure")

// StatusError is a non-2xx answer from the feed.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("activity feed: status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Service fetches a single Activity from a fixed endpoint.
type Service struct {
	h      *retryablehttp.Client
	url    string
	logger *slog.Logger
}

func NewService(feedURL string, h *retryablehttp.Client, logger *slog.Logger) (*Service, error) {
	u, err := url.Parse(feedURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("activity feed: invalid url %q", feedURL)
	}
	if h == nil {
		h = retryablehttp.NewClient()
		h.RetryMax = 0
		h.HTTPClient.Timeout = defaultTimeout
		h.ErrorHandler = retryablehttp.PassthroughErrorHandler
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{h: h, url: feedURL, logger: logger}, nil
}

func (s *Service) GetActivity(ctx context.Context) (a *Activity, err error) {
	start := time.Now()
	defer func() {
		outcome := observability.OutcomeOK
		switch {
		case errors.Is(err, ErrNetwork):
			outcome = observability.OutcomeNetwork
		case err != nil:
			outcome = observability.OutcomeError
		}
		observability.RecordUpstream("activity_feed", outcome, time.Since(start))
	}()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.h.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		s.logger.Warn("activity feed request failed", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}
	var out Activity
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("activity feed: decode: %w", err)
	}
	return &out, nil
}
