// Copyright (C) 2025 TaskGym AI (dev@taskgym.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package middleware provides HTTP middleware for the environment
// service.
//
// # Authentication Flow
//
// The auth middleware extracts a bearer token from the Authorization
// header, validates it using the configured AuthProvider, and stores
// the resulting AuthInfo in the Gin context for downstream handlers.
//
// With NopAuthProvider (the default), all requests authenticate as
// "local-user" with admin privileges, so a local agent needs no token.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/taskgym-ai/taskgym/pkg/extensions"
)

// authInfoKey is the context key for storing AuthInfo.
const authInfoKey = "taskgym_auth_info"

// SetAuthInfo stores the authenticated caller info in the Gin context.
// Called by AuthMiddleware after successful authentication.
func SetAuthInfo(c *gin.Context, info *extensions.AuthInfo) {
	c.Set(authInfoKey, info)
}

// GetAuthInfo retrieves the authenticated caller info from the Gin
// context. Returns nil if the request was not authenticated.
func GetAuthInfo(c *gin.Context) *extensions.AuthInfo {
	if info, exists := c.Get(authInfoKey); exists {
		if authInfo, ok := info.(*extensions.AuthInfo); ok {
			return authInfo
		}
	}
	return nil
}

// AuthMiddleware creates a Gin middleware that authenticates requests.
//
// # Description
//
// Extracts the bearer token from the Authorization header, validates
// it with the provided AuthProvider, and stores the resulting AuthInfo
// in the context. A missing or malformed header yields an empty token;
// NopAuthProvider accepts that, token-based providers reject it with
// 401.
//
// # Thread Safety
//
// Thread-safe. The returned middleware can be used concurrently.
func AuthMiddleware(provider extensions.AuthProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)

		authInfo, err := provider.Validate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, extensions.ErrUnauthorized) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "unauthorized",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication failed",
			})
			return
		}

		SetAuthInfo(c, authInfo)
		c.Next()
	}
}

// extractBearerToken parses the Authorization header expecting the
// format "Bearer <token>". Returns empty string if the header is
// missing or malformed. The "Bearer" prefix is case-insensitive per
// RFC 7235.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
