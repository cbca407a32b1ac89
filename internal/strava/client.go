package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/manol-dimitrov/strava-data-analyser/internal/observability"
)

const maxErrorBody = 64 * 1024

// Client forwards read-only calls to the Strava REST API using the token
// supplied by its TokenSource.
type Client struct {
	h       *retryablehttp.Client
	source  TokenSource
	baseURL string
	loc     *time.Location
	logger  *slog.Logger
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

func WithHTTPClient(h *retryablehttp.Client) Option {
	return func(c *Client) {
		c.h = h
	}
}

// WithLocation sets the time zone used to turn calendar dates into epoch bounds.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) {
		c.loc = loc
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

func NewWithTokenSource(ts TokenSource, opts ...Option) *Client {
	c := &Client{source: ts, baseURL: DefaultAPIBaseURL, loc: time.Local}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.h == nil {
		c.h = NewHTTPClient(HTTPOptions{Logger: c.logger})
	}
	if c.loc == nil {
		c.loc = time.Local
	}
	return c
}

// GetActivity fetches one activity including all segment efforts.
func (c *Client) GetActivity(ctx context.Context, activityID int64) (*Activity, error) {
	q := url.Values{}
	q.Set("include_all_efforts", "true")
	var out Activity
	if err := c.get(ctx, "get_activity", fmt.Sprintf(activityPath, activityID), q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetAthlete(ctx context.Context, athleteID int64) (*Athlete, error) {
	var out Athlete
	if err := c.get(ctx, "get_athlete", fmt.Sprintf(athletePath, athleteID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAthleteActivities lists the authenticated athlete's activities between
// the start of `from` and the start of `to`. Only the first page of 100 items
// is requested; anything beyond it is not returned.
func (c *Client) ListAthleteActivities(ctx context.Context, from, to civil.Date) ([]Activity, error) {
	after, before := EpochBounds(from, to, c.loc)

	q := url.Values{}
	q.Set("after", strconv.FormatInt(after, 10))
	q.Set("before", strconv.FormatInt(before, 10))
	q.Set("page", strconv.Itoa(activitiesPage))
	q.Set("per_page", strconv.Itoa(activitiesPerPage))

	var out []Activity
	if err := c.get(ctx, "list_athlete_activities", athleteActivitiesPath, q, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Activity{}
	}
	if len(out) >= activitiesPerPage {
		observability.RecordFullActivityPage()
		c.logger.Debug("strava activity page is full, later activities are not fetched",
			"from", from.String(), "to", to.String(), "returned", len(out))
		out = out[:activitiesPerPage]
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, op, path string, q url.Values, out any) (err error) {
	start := time.Now()
	defer func() { observe(op, err, start) }()

	tok, err := c.source.Current(ctx)
	if err != nil {
		return err
	}

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("strava %s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.h.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return &networkError{op: op, err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeAPIError(op, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("strava %s: decode: %w", op, err)
	}
	return nil
}

func decodeAPIError(op string, resp *http.Response) *APIError {
	apiErr := &APIError{Op: op, StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil && len(body) > 0 {
		_ = json.Unmarshal(body, &apiErr.Fault)
	}
	return apiErr
}

func observe(op string, err error, start time.Time) {
	observability.RecordUpstream(op, outcomeOf(err), time.Since(start))
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeOK
	case errors.Is(err, ErrNotFound):
		return observability.OutcomeNotFound
	case errors.Is(err, ErrAuthentication):
		return observability.OutcomeAuthError
	case errors.Is(err, ErrNetwork):
		return observability.OutcomeNetwork
	default:
		return observability.OutcomeError
	}
}
