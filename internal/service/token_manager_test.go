// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/drawer-sync/internal/adapter"
	"github.com/MKhiriev/drawer-sync/internal/logger"
	"github.com/MKhiriev/drawer-sync/internal/mock"
	"github.com/MKhiriev/drawer-sync/models"
)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(expiresAt)}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("authority-key"))
	require.NoError(t, err)
	return signed
}

func TestTokenManager_ValidInitialTokenNeedsNoRefresh(t *testing.T) {
	ctrl := gomock.NewController(t)
	authority := mock.NewMockAuthorityAdapter(ctrl)

	initial := signedToken(t, time.Now().Add(time.Hour))
	authority.EXPECT().SetToken(initial)

	tm := NewTokenManager(authority, initial, "refresh", time.Minute, logger.Nop())

	got, err := tm.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, initial, got)
}

func TestTokenManager_RefreshesInsideExpiryBuffer(t *testing.T) {
	ctrl := gomock.NewController(t)
	authority := mock.NewMockAuthorityAdapter(ctrl)

	initial := signedToken(t, time.Now().Add(30*time.Second))
	fresh := models.Token{SignedString: "fresh", ExpiresAt: time.Now().Add(time.Hour)}

	gomock.InOrder(
		authority.EXPECT().SetToken(initial),
		authority.EXPECT().RefreshToken(gomock.Any(), "refresh").Return(fresh, nil),
		authority.EXPECT().SetToken("fresh"),
	)

	tm := NewTokenManager(authority, initial, "refresh", time.Minute, logger.Nop())

	got, err := tm.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}

func TestTokenManager_MalformedInitialTokenIsIgnored(t *testing.T) {
	ctrl := gomock.NewController(t)
	authority := mock.NewMockAuthorityAdapter(ctrl)
	authority.EXPECT().RefreshToken(gomock.Any(), "refresh").Return(models.Token{SignedString: "fresh"}, nil)
	authority.EXPECT().SetToken("fresh")

	tm := NewTokenManager(authority, "garbage", "refresh", time.Minute, logger.Nop())

	got, err := tm.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}

func TestTokenManager_NoCredential(t *testing.T) {
	ctrl := gomock.NewController(t)
	authority := mock.NewMockAuthorityAdapter(ctrl)

	tm := NewTokenManager(authority, "", "", time.Minute, logger.Nop())

	_, err := tm.Token(context.Background())
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestTokenManager_RefreshRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	authority := mock.NewMockAuthorityAdapter(ctrl)
	authority.EXPECT().RefreshToken(gomock.Any(), "revoked").Return(models.Token{}, adapter.ErrUnauthorized)

	tm := NewTokenManager(authority, "", "revoked", time.Minute, logger.Nop())

	_, err := tm.Token(context.Background())
	assert.ErrorIs(t, err, ErrTokenIsExpired)
	assert.ErrorIs(t, err, adapter.ErrUnauthorized)
}

func TestTokenManager_ConcurrentCallersShareOneRefresh(t *testing.T) {
	ctrl := gomock.NewController(t)
	authority := mock.NewMockAuthorityAdapter(ctrl)

	release := make(chan struct{})
	authority.EXPECT().
		RefreshToken(gomock.Any(), "refresh").
		DoAndReturn(func(context.Context, string) (models.Token, error) {
			<-release
			return models.Token{SignedString: "fresh", ExpiresAt: time.Now().Add(time.Hour)}, nil
		}).
		Times(1)
	authority.EXPECT().SetToken("fresh").Times(1)

	tm := NewTokenManager(authority, "", "refresh", time.Minute, logger.Nop())

	const callers = 10
	var wg sync.WaitGroup
	results := make([]string, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := tm.Token(context.Background())
			assert.NoError(t, err)
			results[i] = token
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, "fresh", got)
	}
}

func TestTokenManager_InvalidateForcesRefresh(t *testing.T) {
	ctrl := gomock.NewController(t)
	authority := mock.NewMockAuthorityAdapter(ctrl)

	initial := signedToken(t, time.Now().Add(time.Hour))
	authority.EXPECT().SetToken(initial)
	authority.EXPECT().RefreshToken(gomock.Any(), "refresh").Return(models.Token{SignedString: "fresh"}, nil)
	authority.EXPECT().SetToken("fresh")

	tm := NewTokenManager(authority, initial, "refresh", time.Minute, logger.Nop())
	tm.Invalidate()

	got, err := tm.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}
