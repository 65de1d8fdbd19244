// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "strings"

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Only values that are invalid regardless of the runtime view are rejected
// here; completeness is checked by [ClientConfig.validate].
func (cfg *StructuredConfig) validate() error {
	if cfg.Sync.ReconnectBaseDelay < 0 || cfg.Sync.ReconnectMaxDelay < 0 || cfg.Sync.MaxRetries < 0 {
		return ErrInvalidSyncConfigs
	}
	if cfg.Presence.BroadcastRate < 0 {
		return ErrInvalidPresenceConfigs
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.WSAddress == "" || cfg.Adapter.RequestTimeout == 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Workers.SyncInterval == 0 {
		return ErrInvalidWorkerConfigs
	}

	if cfg.App.UserID == "" || cfg.App.RoomID == "" {
		return ErrInvalidAppConfigs
	}

	if cfg.App.AccessToken == "" && cfg.App.RefreshToken == "" {
		return ErrInvalidAppConfigs
	}

	if cfg.Sync.ReconnectBaseDelay <= 0 || cfg.Sync.ReconnectMaxDelay < cfg.Sync.ReconnectBaseDelay {
		return ErrInvalidSyncConfigs
	}

	if cfg.Presence.ReconnectBaseDelay <= 0 || cfg.Presence.ReconnectMaxDelay < cfg.Presence.ReconnectBaseDelay {
		return ErrInvalidPresenceConfigs
	}

	return nil
}
