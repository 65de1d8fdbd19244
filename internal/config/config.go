// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// drawer-sync client. It aggregates all sub-configurations and is populated
// by merging values from environment variables, command-line flags, and an
// optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
//   - envDefault: value used when the variable is unset.
type StructuredConfig struct {
	// App holds the session identity: who the local user is and which room
	// to join.
	App App `envPrefix:"APP_"`

	// Adapter holds the authority endpoints used by the REST adapter and the
	// room channel.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Storage holds the local SQLite settings for the offline queue and
	// conflict log.
	Storage Storage `envPrefix:"STORAGE_"`

	// Sync holds reconnect, token refresh and replay settings.
	Sync Sync `envPrefix:"SYNC_"`

	// Presence holds the peer presence mesh settings.
	Presence Presence `envPrefix:"PRESENCE_"`

	// Workers holds configuration for background worker processes.
	Workers Workers `envPrefix:"WORKERS_"`

	// Status holds the local status HTTP server settings.
	Status Status `envPrefix:"STATUS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App identifies the local session. Credential management lives outside this
// client; the tokens below are handed over by whatever performed the login.
type App struct {
	// Env: APP_USER_ID
	UserID string `env:"USER_ID"`

	// Env: APP_DISPLAY_NAME
	DisplayName string `env:"DISPLAY_NAME"`

	// RoomID is the room joined at startup.
	// Env: APP_ROOM_ID
	RoomID string `env:"ROOM_ID"`

	// AccessToken is an optional initial room token. When empty, one is
	// obtained through the refresh endpoint before the first connect.
	// Env: APP_ACCESS_TOKEN
	AccessToken string `env:"ACCESS_TOKEN"`

	// RefreshToken is the long-lived credential exchanged for room tokens.
	// Env: APP_REFRESH_TOKEN
	RefreshToken string `env:"REFRESH_TOKEN"`

	// Version is the semantic version string of the running client.
	// Env: APP_VERSION
	Version string `env:"VERSION"`

	// Headless skips the terminal conflict view; the client then runs until
	// it receives a stop signal.
	// Env: APP_HEADLESS
	Headless bool `env:"HEADLESS"`
}

// Adapter holds the authority endpoints.
type Adapter struct {
	// HTTPAddress is the base URL of the REST mutation endpoints
	// (e.g. "https://authority.example.com").
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// WSAddress is the base URL of the room channel endpoint
	// (e.g. "wss://authority.example.com"). Derived from HTTPAddress
	// when empty.
	// Env: ADAPTER_WS_ADDRESS
	WSAddress string `env:"WS_ADDRESS"`

	// RequestTimeout bounds every outbound REST call.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
}

// Storage groups the configuration for all storage backends used by the
// client.
type Storage struct {
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the local SQLite database.
type DB struct {
	// DSN is the SQLite file path (e.g. "./drawer-sync.db").
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Sync holds settings of the room channel and the offline queue.
type Sync struct {
	// Env: SYNC_RECONNECT_BASE_DELAY
	ReconnectBaseDelay time.Duration `env:"RECONNECT_BASE_DELAY" envDefault:"1s"`

	// Env: SYNC_RECONNECT_MAX_DELAY
	ReconnectMaxDelay time.Duration `env:"RECONNECT_MAX_DELAY" envDefault:"30s"`

	// Env: SYNC_RECONNECT_MAX_ATTEMPTS
	ReconnectMaxAttempts int `env:"RECONNECT_MAX_ATTEMPTS" envDefault:"10"`

	// TokenExpiryBuffer is how long before expiry a token is refreshed.
	// Env: SYNC_TOKEN_EXPIRY_BUFFER
	TokenExpiryBuffer time.Duration `env:"TOKEN_EXPIRY_BUFFER" envDefault:"60s"`

	// OnlineWaitTimeout bounds the wait for the channel to connect before a
	// drain starts.
	// Env: SYNC_ONLINE_WAIT_TIMEOUT
	OnlineWaitTimeout time.Duration `env:"ONLINE_WAIT_TIMEOUT" envDefault:"10s"`

	// MaxRetries is the replay retry ceiling of a pending operation.
	// Env: SYNC_MAX_RETRIES
	MaxRetries int `env:"MAX_RETRIES" envDefault:"3"`

	// DedupCacheSize is the number of recent inbound frame ids remembered.
	// Env: SYNC_DEDUP_CACHE_SIZE
	DedupCacheSize int `env:"DEDUP_CACHE_SIZE" envDefault:"1024"`
}

// Presence holds peer presence mesh settings.
type Presence struct {
	// ICEServers are STUN/TURN URLs.
	// Env: PRESENCE_ICE_SERVERS (comma separated)
	ICEServers []string `env:"ICE_SERVERS" envSeparator:","`

	// BroadcastRate is the maximum number of presence payloads per second.
	// Env: PRESENCE_BROADCAST_RATE
	BroadcastRate float64 `env:"BROADCAST_RATE" envDefault:"20"`

	// TouchPrimary disables presence broadcasting on touch-first devices.
	// Env: PRESENCE_TOUCH_PRIMARY
	TouchPrimary bool `env:"TOUCH_PRIMARY"`

	// Env: PRESENCE_RECONNECT_BASE_DELAY
	ReconnectBaseDelay time.Duration `env:"RECONNECT_BASE_DELAY" envDefault:"1s"`

	// Env: PRESENCE_RECONNECT_MAX_DELAY
	ReconnectMaxDelay time.Duration `env:"RECONNECT_MAX_DELAY" envDefault:"15s"`

	// Env: PRESENCE_RECONNECT_MAX_ATTEMPTS
	ReconnectMaxAttempts int `env:"RECONNECT_MAX_ATTEMPTS" envDefault:"5"`

	// CursorTTL removes cursors that stopped updating.
	// Env: PRESENCE_CURSOR_TTL
	CursorTTL time.Duration `env:"CURSOR_TTL" envDefault:"30s"`
}

// Workers holds configuration for background worker processes.
type Workers struct {
	// SyncInterval is how often the drain job retries pending operations
	// while online.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL" envDefault:"30s"`
}

// Status holds the local status server settings.
type Status struct {
	// Address is the listen address of the status server, in "host:port"
	// format. Empty disables the server.
	// Env: STATUS_ADDRESS
	Address string `env:"ADDRESS"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (last source wins for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
