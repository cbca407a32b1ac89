package strava

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"

	"github.com/manol-dimitrov/strava-data-analyser/internal/observability"
)

type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"` // unix seconds
	TokenType    string `json:"token_type"`
	AthleteID    int64  `json:"athlete_id,omitempty"`
}

// Exchanger trades an authorization code for an access token. Every call to
// Exchange performs exactly one request against the token endpoint.
type Exchanger struct {
	creds    Credentials
	tokenURL string
	conf     *oauth2.Config
	h        *retryablehttp.Client
	logger   *slog.Logger
}

type ExchangerOption func(*Exchanger)

func WithTokenURL(u string) ExchangerOption {
	return func(e *Exchanger) {
		e.tokenURL = u
	}
}

func WithExchangeHTTPClient(h *retryablehttp.Client) ExchangerOption {
	return func(e *Exchanger) {
		e.h = h
	}
}

func WithExchangeLogger(l *slog.Logger) ExchangerOption {
	return func(e *Exchanger) {
		e.logger = l
	}
}

func NewExchanger(creds Credentials, opts ...ExchangerOption) (*Exchanger, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	e := &Exchanger{creds: creds, tokenURL: DefaultTokenURL}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.h == nil {
		e.h = NewHTTPClient(HTTPOptions{Logger: e.logger})
	}
	// Strava expects client_id/client_secret as form params, never basic auth.
	e.conf = &oauth2.Config{
		ClientID:     strconv.Itoa(creds.ClientID),
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  e.tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	return e, nil
}

// Exchange posts grant_type=authorization_code to the token endpoint.
func (e *Exchanger) Exchange(ctx context.Context) (*Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, e.h.StandardClient())

	start := time.Now()
	ot, err := e.conf.Exchange(ctx, e.creds.AuthorizationCode)
	if err != nil {
		aerr := classifyExchangeError(err)
		observe("token_exchange", aerr, start)
		e.logger.Error("strava token exchange failed", "client_id", e.creds.ClientID, "reason", aerr.Reason, "err", aerr.Err)
		return nil, aerr
	}
	tok := tokenFromOAuth(ot)
	observe("token_exchange", nil, start)
	observability.RecordTokenExchanged(time.Now())
	e.logger.Info("strava token exchanged", "client_id", e.creds.ClientID, "athlete_id", tok.AthleteID, "expires_at", tok.ExpiresAt)
	return tok, nil
}

// Text of the error x/oauth2 returns for a 200 without access_token.
const missingAccessTokenMsg = "server response missing access_token"

func classifyExchangeError(err error) *AuthenticationError {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		apiErr := &APIError{Op: "token exchange"}
		if rerr.Response != nil {
			apiErr.StatusCode = rerr.Response.StatusCode
		}
		_ = json.Unmarshal(rerr.Body, &apiErr.Fault)
		return &AuthenticationError{Reason: rejectionReason(apiErr.Fault), Err: apiErr}
	}
	// x/oauth2 rejects a response without access_token before returning a
	// token, and only as an untyped error, so its message is the only signal.
	if strings.Contains(err.Error(), missingAccessTokenMsg) {
		return &AuthenticationError{Reason: ReasonMissingToken, Err: err}
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return &AuthenticationError{Reason: ReasonTransport, Err: &networkError{op: "token exchange", err: err}}
	}
	return &AuthenticationError{Reason: ReasonRejected, Err: err}
}

func rejectionReason(f Fault) string {
	for _, d := range f.Errors {
		switch {
		case d.Resource == "Application":
			return ReasonInvalidCredentials
		case d.Resource == "RequestToken" || d.Resource == "AuthorizationCode" || d.Field == "code":
			return ReasonInvalidCode
		}
	}
	return ReasonRejected
}

func tokenFromOAuth(ot *oauth2.Token) *Token {
	t := &Token{
		AccessToken:  ot.AccessToken,
		RefreshToken: ot.RefreshToken,
		TokenType:    ot.TokenType,
	}
	if v, ok := ot.Extra("expires_at").(float64); ok {
		t.ExpiresAt = int64(v)
	}
	if t.ExpiresAt == 0 && !ot.Expiry.IsZero() {
		t.ExpiresAt = ot.Expiry.Unix()
	}
	if a, ok := ot.Extra("athlete").(map[string]any); ok {
		if id, ok := a["id"].(float64); ok {
			t.AthleteID = int64(id)
		}
	}
	return t
}
