package strava

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"cloud.google.com/go/civil"
)

type fixedTokenSource struct {
	tok *Token
	err error
}

func (f fixedTokenSource) Current(ctx context.Context) (*Token, error) { return f.tok, f.err }

type fixtureTransport struct {
	status  int
	body    []byte
	err     error
	calls   int
	lastURL string
	sawAuth string
}

func (ft *fixtureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ft.calls++
	ft.lastURL = req.URL.String()
	ft.sawAuth = req.Header.Get("Authorization")
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	if ft.err != nil {
		return nil, ft.err
	}
	resp := &http.Response{
		StatusCode: ft.status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(ft.body)),
		Request:    req,
	}
	return resp, nil
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	p := filepath.Join("testdata", name)
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return b
}

func newTestClient(ft *fixtureTransport, opts ...Option) *Client {
	h := NewHTTPClient(HTTPOptions{})
	h.HTTPClient.Transport = ft
	ts := fixedTokenSource{tok: &Token{AccessToken: "a4b945687g", ExpiresAt: time.Now().Add(6 * time.Hour).Unix()}}
	opts = append([]Option{WithHTTPClient(h), WithBaseURL("https://strava.test/api/v3/")}, opts...)
	return NewWithTokenSource(ts, opts...)
}

func TestGetAthlete_Success(t *testing.T) {
	ft := &fixtureTransport{status: 200, body: readFixture(t, "athlete.json")}
	c := newTestClient(ft)

	a, err := c.GetAthlete(context.Background(), 4124)
	if err != nil {
		t.Fatalf("GetAthlete error: %v", err)
	}
	if a == nil || a.ID != 4124 || a.Firstname != "Manol" {
		t.Fatalf("unexpected athlete: %+v", a)
	}
	if ft.lastURL != "https://strava.test/api/v3/athletes/4124" {
		t.Fatalf("unexpected URL %q", ft.lastURL)
	}
	if ft.sawAuth != "Bearer a4b945687g" {
		t.Fatalf("expected bearer header, got %q", ft.sawAuth)
	}
}

func TestGetAthlete_NotFound(t *testing.T) {
	ft := &fixtureTransport{status: 404, body: readFixture(t, "fault_not_found.json")}
	c := newTestClient(ft)

	a, err := c.GetAthlete(context.Background(), 1)
	if a != nil {
		t.Fatalf("expected nil athlete, got %+v", a)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Fault.Message != "Record Not Found" || len(apiErr.Fault.Errors) != 1 {
		t.Fatalf("fault not decoded: %+v", apiErr.Fault)
	}
}

func TestGetActivity_IncludesAllEfforts(t *testing.T) {
	ft := &fixtureTransport{status: 200, body: readFixture(t, "activity.json")}
	c := newTestClient(ft)

	act, err := c.GetActivity(context.Background(), 449817383)
	if err != nil {
		t.Fatalf("GetActivity error: %v", err)
	}
	if act.ID != 449817383 || act.Type != "Ride" || act.Athlete.ID != 4124 {
		t.Fatalf("unexpected activity: %+v", act)
	}
	u, err := url.Parse(ft.lastURL)
	if err != nil {
		t.Fatalf("parse URL error: %v", err)
	}
	if u.Path != "/api/v3/activities/449817383" {
		t.Fatalf("unexpected path %q", u.Path)
	}
	if u.Query().Get("include_all_efforts") != "true" {
		t.Fatalf("expected include_all_efforts=true, got %q", u.RawQuery)
	}
}

func TestListAthleteActivities_Query(t *testing.T) {
	ft := &fixtureTransport{status: 200, body: readFixture(t, "activities.json")}
	c := newTestClient(ft, WithLocation(time.UTC))

	from := civil.Date{Year: 2015, Month: time.December, Day: 11}
	to := civil.Date{Year: 2015, Month: time.December, Day: 12}
	acts, err := c.ListAthleteActivities(context.Background(), from, to)
	if err != nil {
		t.Fatalf("ListAthleteActivities error: %v", err)
	}
	if len(acts) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(acts))
	}

	u, err := url.Parse(ft.lastURL)
	if err != nil {
		t.Fatalf("parse URL error: %v", err)
	}
	if u.Path != "/api/v3/athlete/activities" {
		t.Fatalf("unexpected path %q", u.Path)
	}
	want := map[string]string{
		"after":    "1449792000",
		"before":   "1449878400",
		"page":     "1",
		"per_page": "100",
	}
	for k, v := range want {
		if got := u.Query().Get(k); got != v {
			t.Fatalf("query %s = %q, want %q", k, got, v)
		}
	}
}

func TestListAthleteActivities_EmptyIsNonNil(t *testing.T) {
	for _, body := range []string{`[]`, `null`} {
		ft := &fixtureTransport{status: 200, body: []byte(body)}
		c := newTestClient(ft)

		d := civil.Date{Year: 2015, Month: time.December, Day: 11}
		acts, err := c.ListAthleteActivities(context.Background(), d, d.AddDays(1))
		if err != nil {
			t.Fatalf("body %s: unexpected error: %v", body, err)
		}
		if acts == nil || len(acts) != 0 {
			t.Fatalf("body %s: expected empty non-nil slice, got %#v", body, acts)
		}
	}
}

func TestListAthleteActivities_CapsAtOnePage(t *testing.T) {
	page := make([]map[string]any, 150)
	for i := range page {
		page[i] = map[string]any{"id": i + 1, "name": "run", "type": "Run"}
	}
	body, err := json.Marshal(page)
	if err != nil {
		t.Fatal(err)
	}
	ft := &fixtureTransport{status: 200, body: body}
	c := newTestClient(ft)

	d := civil.Date{Year: 2015, Month: time.December, Day: 11}
	acts, err := c.ListAthleteActivities(context.Background(), d, d.AddDays(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(acts) != 100 {
		t.Fatalf("expected 100 activities, got %d", len(acts))
	}
	if ft.calls != 1 {
		t.Fatalf("expected a single request, got %d", ft.calls)
	}
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", 401, string(readFixture(t, "fault_unauthorized.json")), ErrAuthentication},
		{"forbidden", 403, `{"message":"Forbidden"}`, ErrAuthentication},
		{"server error", 500, `{"error":"boom"}`, ErrNetwork},
		{"bad gateway", 502, ``, ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fixtureTransport{status: tt.status, body: []byte(tt.body)}
			c := newTestClient(ft)
			_, err := c.GetActivity(context.Background(), 7)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if errors.Is(err, ErrNotFound) {
				t.Fatalf("status %d must not match ErrNotFound", tt.status)
			}
		})
	}
}

func TestClient_TransportFailureIsNetworkError(t *testing.T) {
	ft := &fixtureTransport{err: errors.New("connection reset by peer")}
	c := newTestClient(ft)

	_, err := c.GetAthlete(context.Background(), 4124)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection reset by peer") {
		t.Fatalf("expected cause in message, got %q", err.Error())
	}
}

func TestClient_TokenSourceFailureSkipsRequest(t *testing.T) {
	ft := &fixtureTransport{status: 200, body: readFixture(t, "athlete.json")}
	h := NewHTTPClient(HTTPOptions{})
	h.HTTPClient.Transport = ft
	ts := fixedTokenSource{err: &AuthenticationError{Reason: ReasonInvalidCode}}
	c := NewWithTokenSource(ts, WithHTTPClient(h))

	_, err := c.GetAthlete(context.Background(), 4124)
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
	if ft.calls != 0 {
		t.Fatalf("expected no API request, got %d", ft.calls)
	}
}

func TestClient_HonoursCancellation(t *testing.T) {
	ft := &fixtureTransport{status: 200, body: readFixture(t, "athlete.json")}
	c := newTestClient(ft)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.GetAthlete(ctx, 4124)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
}

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{&APIError{StatusCode: 404}, "not_found"},
		{&APIError{StatusCode: 401}, "auth_error"},
		{&networkError{op: "x", err: errors.New("eof")}, "network_error"},
		{&AuthenticationError{Reason: ReasonTransport, Err: &networkError{op: "x", err: errors.New("eof")}}, "auth_error"},
		{errors.New("decode"), "error"},
	}
	for _, tt := range tests {
		if got := outcomeOf(tt.err); got != tt.want {
			t.Errorf("outcomeOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestNewHTTPClient_Defaults(t *testing.T) {
	h := NewHTTPClient(HTTPOptions{})
	if h.HTTPClient.Timeout != DefaultTimeout {
		t.Fatalf("timeout = %s, want %s", h.HTTPClient.Timeout, DefaultTimeout)
	}
	if h.RetryMax != 0 {
		t.Fatalf("RetryMax = %d, want 0", h.RetryMax)
	}
	if h.ErrorHandler == nil {
		t.Fatal("expected an error handler that passes responses through")
	}

	h = NewHTTPClient(HTTPOptions{Timeout: -time.Second, RetryMax: -3})
	if h.HTTPClient.Timeout != DefaultTimeout || h.RetryMax != 0 {
		t.Fatalf("negative options not clamped: timeout %s, retries %d", h.HTTPClient.Timeout, h.RetryMax)
	}
}

func TestClient_TimeoutIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	h := NewHTTPClient(HTTPOptions{Timeout: 50 * time.Millisecond})
	c := NewWithTokenSource(fixedTokenSource{tok: &Token{AccessToken: "x"}}, WithHTTPClient(h), WithBaseURL(srv.URL))

	begin := time.Now()
	_, err := c.GetAthlete(context.Background(), 4124)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if elapsed := time.Since(begin); elapsed > time.Second {
		t.Fatalf("request took %s, timeout not applied", elapsed)
	}
}

func TestClient_RetriesThenReturnsUpstreamStatus(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"message":"Service Unavailable"}`))
	}))
	defer srv.Close()

	h := NewHTTPClient(HTTPOptions{RetryMax: 1})
	h.RetryWaitMin = time.Millisecond
	h.RetryWaitMax = 10 * time.Millisecond
	c := NewWithTokenSource(fixedTokenSource{tok: &Token{AccessToken: "x"}}, WithHTTPClient(h), WithBaseURL(srv.URL))

	_, err := c.GetActivity(context.Background(), 7)
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Fatalf("expected 2 attempts, got %d", n)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected *APIError with status 503, got %v", err)
	}
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}
