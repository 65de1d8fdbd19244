// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MKhiriev/drawer-sync/internal/adapter"
	"github.com/MKhiriev/drawer-sync/internal/logger"
	"github.com/MKhiriev/drawer-sync/internal/utils"
	"github.com/MKhiriev/drawer-sync/models"
)

const refreshKey = "refresh"

type tokenManager struct {
	adapter      adapter.AuthorityAdapter
	refreshToken string
	buffer       time.Duration
	now          func() time.Time

	group singleflight.Group

	mu    sync.RWMutex
	token models.Token

	logger *logger.Logger
}

// NewTokenManager creates a TokenManager. accessToken is an optional initial
// token; when it cannot be parsed it is ignored and the first Token call
// refreshes.
func NewTokenManager(authority adapter.AuthorityAdapter, accessToken, refreshToken string, buffer time.Duration, log *logger.Logger) TokenManager {
	m := &tokenManager{
		adapter:      authority,
		refreshToken: refreshToken,
		buffer:       buffer,
		now:          time.Now,
		logger:       log.WithComponent("tokens"),
	}

	if accessToken != "" {
		token, err := utils.ParseToken(accessToken)
		if err != nil {
			m.logger.Warn().Err(err).Msg("ignoring malformed initial access token")
		} else {
			m.token = token
			authority.SetToken(token.SignedString)
		}
	}

	return m
}

func (m *tokenManager) Token(ctx context.Context) (string, error) {
	m.mu.RLock()
	current := m.token
	m.mu.RUnlock()

	if !current.ExpiresWithin(m.now(), m.buffer) {
		return current.SignedString, nil
	}

	v, err, shared := m.group.Do(refreshKey, func() (any, error) {
		return m.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	if shared {
		m.logger.Debug().Msg("joined in-flight token refresh")
	}

	return v.(models.Token).SignedString, nil
}

func (m *tokenManager) refresh(ctx context.Context) (models.Token, error) {
	if m.refreshToken == "" {
		return models.Token{}, ErrNoCredential
	}

	m.logger.Debug().Msg("refreshing room token")
	token, err := m.adapter.RefreshToken(ctx, m.refreshToken)
	if err != nil {
		m.logger.Err(err).Msg("error refreshing room token")
		return models.Token{}, fmt.Errorf("refresh room token: %w", mapAdapterError(err))
	}

	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	m.adapter.SetToken(token.SignedString)

	m.logger.Info().Time("expires_at", token.ExpiresAt).Msg("room token refreshed")
	return token, nil
}

func (m *tokenManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = models.Token{}
}
