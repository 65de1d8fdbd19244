package config

import (
	"fmt"
	"strings"
)

// ClientConfig is the validated runtime view assembled from
// [StructuredConfig]. Derived values (such as the channel address) are
// resolved here so downstream packages never have to.
type ClientConfig struct {
	// App contains the session identity.
	App App
	// Adapter contains authority addresses and timeouts.
	Adapter Adapter
	// Storage contains local storage settings.
	Storage Storage
	// Sync contains room channel and offline queue settings.
	Sync Sync
	// Presence contains peer mesh settings.
	Presence Presence
	// Workers contains background job settings.
	Workers Workers
	// Status contains the local status server settings.
	Status Status
}

// GetClientConfig builds and validates the client config from the merged
// structured configuration.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	return NewClientConfig(cfg)
}

// NewClientConfig maps cfg onto a [ClientConfig], resolves derived values and
// validates the result.
func NewClientConfig(cfg *StructuredConfig) (*ClientConfig, error) {
	clientCfg := &ClientConfig{
		App:      cfg.App,
		Adapter:  cfg.Adapter,
		Storage:  cfg.Storage,
		Sync:     cfg.Sync,
		Presence: cfg.Presence,
		Workers:  cfg.Workers,
		Status:   cfg.Status,
	}

	if clientCfg.Adapter.WSAddress == "" {
		clientCfg.Adapter.WSAddress = websocketAddress(clientCfg.Adapter.HTTPAddress)
	}

	return clientCfg, clientCfg.validate()
}

// websocketAddress swaps the http(s) scheme of address for ws(s).
func websocketAddress(address string) string {
	switch {
	case strings.HasPrefix(address, "https://"):
		return "wss://" + strings.TrimPrefix(address, "https://")
	case strings.HasPrefix(address, "http://"):
		return "ws://" + strings.TrimPrefix(address, "http://")
	default:
		return address
	}
}
