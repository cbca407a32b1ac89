package strava

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// TokenSource supplies the bearer token attached to API calls.
type TokenSource interface {
	Current(ctx context.Context) (*Token, error)
}

type TokenExchanger interface {
	Exchange(ctx context.Context) (*Token, error)
}

// Session memoizes a single token exchange for the lifetime of the process.
// The token is never refreshed. Failed exchanges are not remembered, so the
// next Current call tries again. Invalidate forces a fresh exchange.
//
// Concurrent callers share one in-flight exchange, which runs under the
// context of the caller that started it. Every caller stops waiting when its
// own context is done.
type Session struct {
	exchanger TokenExchanger
	group     singleflight.Group

	mu  sync.Mutex
	tok *Token
}

func NewSession(ex TokenExchanger) *Session {
	return &Session{exchanger: ex}
}

func (s *Session) Current(ctx context.Context) (*Token, error) {
	if tok := s.cached(); tok != nil {
		return tok, nil
	}

	ch := s.group.DoChan("token", func() (any, error) {
		if tok := s.cached(); tok != nil {
			return tok, nil
		}
		tok, err := s.exchanger.Exchange(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.tok = tok
		s.mu.Unlock()
		return tok, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		cp := *r.Val.(*Token) // hand out copies so callers cannot mutate the memoized token
		return &cp, nil
	}
}

func (s *Session) cached() *Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tok == nil {
		return nil
	}
	cp := *s.tok
	return &cp
}

// Invalidate drops the memoized token. Strava authorization codes are single
// use, so re-exchanging the same code normally fails with ErrAuthentication.
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.tok = nil
	s.mu.Unlock()
}
