package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] for JSON files. Durations
// are accepted either as strings ("30s") or as nanosecond numbers.
type StructuredJSONConfig struct {
	App struct {
		UserID       string `json:"user_id"`
		DisplayName  string `json:"display_name"`
		RoomID       string `json:"room_id"`
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		Version      string `json:"version"`
		Headless     bool   `json:"headless"`
	} `json:"app,omitempty"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address"`
		WSAddress      string   `json:"ws_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"adapter,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Sync struct {
		ReconnectBaseDelay   Duration `json:"reconnect_base_delay"`
		ReconnectMaxDelay    Duration `json:"reconnect_max_delay"`
		ReconnectMaxAttempts int      `json:"reconnect_max_attempts"`
		TokenExpiryBuffer    Duration `json:"token_expiry_buffer"`
		OnlineWaitTimeout    Duration `json:"online_wait_timeout"`
		MaxRetries           int      `json:"max_retries"`
		DedupCacheSize       int      `json:"dedup_cache_size"`
	} `json:"sync,omitempty"`

	Presence struct {
		ICEServers           []string `json:"ice_servers"`
		BroadcastRate        float64  `json:"broadcast_rate"`
		TouchPrimary         bool     `json:"touch_primary"`
		ReconnectBaseDelay   Duration `json:"reconnect_base_delay"`
		ReconnectMaxDelay    Duration `json:"reconnect_max_delay"`
		ReconnectMaxAttempts int      `json:"reconnect_max_attempts"`
		CursorTTL            Duration `json:"cursor_ttl"`
	} `json:"presence,omitempty"`

	Workers struct {
		SyncInterval Duration `json:"sync_interval"`
	} `json:"workers,omitempty"`

	Status struct {
		Address string `json:"address"`
	} `json:"status,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			UserID:       jsonCfg.App.UserID,
			DisplayName:  jsonCfg.App.DisplayName,
			RoomID:       jsonCfg.App.RoomID,
			AccessToken:  jsonCfg.App.AccessToken,
			RefreshToken: jsonCfg.App.RefreshToken,
			Version:      jsonCfg.App.Version,
			Headless:     jsonCfg.App.Headless,
		},
		Adapter: Adapter{
			HTTPAddress:    jsonCfg.Adapter.HTTPAddress,
			WSAddress:      jsonCfg.Adapter.WSAddress,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
		},
		Sync: Sync{
			ReconnectBaseDelay:   time.Duration(jsonCfg.Sync.ReconnectBaseDelay),
			ReconnectMaxDelay:    time.Duration(jsonCfg.Sync.ReconnectMaxDelay),
			ReconnectMaxAttempts: jsonCfg.Sync.ReconnectMaxAttempts,
			TokenExpiryBuffer:    time.Duration(jsonCfg.Sync.TokenExpiryBuffer),
			OnlineWaitTimeout:    time.Duration(jsonCfg.Sync.OnlineWaitTimeout),
			MaxRetries:           jsonCfg.Sync.MaxRetries,
			DedupCacheSize:       jsonCfg.Sync.DedupCacheSize,
		},
		Presence: Presence{
			ICEServers:           jsonCfg.Presence.ICEServers,
			BroadcastRate:        jsonCfg.Presence.BroadcastRate,
			TouchPrimary:         jsonCfg.Presence.TouchPrimary,
			ReconnectBaseDelay:   time.Duration(jsonCfg.Presence.ReconnectBaseDelay),
			ReconnectMaxDelay:    time.Duration(jsonCfg.Presence.ReconnectMaxDelay),
			ReconnectMaxAttempts: jsonCfg.Presence.ReconnectMaxAttempts,
			CursorTTL:            time.Duration(jsonCfg.Presence.CursorTTL),
		},
		Workers: Workers{
			SyncInterval: time.Duration(jsonCfg.Workers.SyncInterval),
		},
		Status: Status{
			Address: jsonCfg.Status.Address,
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
