// Copyright (C) 2025 TaskGym AI (dev@taskgym.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package extensions defines the pluggable authentication surface of
// the environment service.
//
// Local single-user deployments run with NopAuthProvider and need no
// auth infrastructure. Shared training clusters swap in
// StaticTokenAuthProvider (or their own implementation) without
// touching the transport layer.
package extensions

import (
	"context"
	"crypto/subtle"
	"errors"
)

// ErrUnauthorized is returned when authentication fails. Custom
// implementations should wrap this error with additional context.
var ErrUnauthorized = errors.New("unauthorized")

// AuthInfo contains identity information returned after successful
// authentication.
type AuthInfo struct {
	// UserID is the unique identifier for the authenticated caller.
	// Must never be empty.
	UserID string

	// Roles contains the caller's role memberships.
	// Common roles: "admin", "agent", "viewer"
	Roles []string
}

// HasRole checks if the caller has a specific role.
func (a *AuthInfo) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AuthProvider validates authentication tokens and returns caller
// identity.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type AuthProvider interface {
	// Validate checks if the token is valid and returns the caller's
	// identity. Returns ErrUnauthorized (or a wrap of it) when the
	// token is rejected.
	Validate(ctx context.Context, token string) (*AuthInfo, error)
}

// NopAuthProvider is the default provider for local deployments.
//
// It always returns a valid local user with admin privileges, so an
// agent on the same machine needs no authentication setup. Any token,
// including the empty string, authenticates.
//
// Thread-safe: this implementation has no mutable state.
type NopAuthProvider struct{}

// Validate always returns a valid local user with admin privileges.
func (p *NopAuthProvider) Validate(_ context.Context, _ string) (*AuthInfo, error) {
	return &AuthInfo{
		UserID: "local-user",
		Roles:  []string{"admin"},
	}, nil
}

// StaticTokenAuthProvider authenticates callers against a single
// pre-shared bearer token. Suitable for shared training clusters where
// one token gates all agents.
//
// Thread-safe: this implementation has no mutable state.
type StaticTokenAuthProvider struct {
	// Token is the expected bearer token. Must not be empty.
	Token string
}

// Validate accepts exactly the configured token. Comparison is
// constant-time.
func (p *StaticTokenAuthProvider) Validate(_ context.Context, token string) (*AuthInfo, error) {
	if p.Token == "" {
		return nil, errors.New("static token provider misconfigured: empty token")
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(p.Token)) != 1 {
		return nil, ErrUnauthorized
	}
	return &AuthInfo{
		UserID: "agent",
		Roles:  []string{"agent"},
	}, nil
}

// Compile-time interface compliance checks.
var (
	_ AuthProvider = (*NopAuthProvider)(nil)
	_ AuthProvider = (*StaticTokenAuthProvider)(nil)
)
