package config

import (
	"errors"
	"flag"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses the process command line.
//
// Flags:
//
//	-a authority base URL (REST)
//	-ws authority room channel base URL
//	-d local database DSN
//	-c/-config json file path with configs
//	-room room to join at startup
//	-user local user id
//	-name local display name
//	-refresh-token credential exchanged for room tokens
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-sync-interval drain job interval
//	-status status server address in format [host]:[port]
//	-touch disable presence broadcasting (touch-primary device)
//	-headless run without the terminal conflict view
func ParseFlags() (*StructuredConfig, error) {
	return parseFlags(os.Args[1:])
}

func parseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("drawer-sync", flag.ContinueOnError)

	var statusAddress NetAddress
	var authorityAddress string
	var wsAddress string
	var databaseDSN string
	var jsonConfigPath string
	var roomID string
	var userID string
	var displayName string
	var refreshToken string
	var requestTimeout time.Duration
	var syncInterval time.Duration
	var touchPrimary bool
	var headless bool

	fs.StringVar(&authorityAddress, "a", "", "Authority base URL")
	fs.StringVar(&wsAddress, "ws", "", "Authority room channel base URL")
	fs.StringVar(&databaseDSN, "d", "", "Local database DSN")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&roomID, "room", "", "Room to join")
	fs.StringVar(&userID, "user", "", "Local user id")
	fs.StringVar(&displayName, "name", "", "Local display name")
	fs.StringVar(&refreshToken, "refresh-token", "", "Refresh credential")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.DurationVar(&syncInterval, "sync-interval", 0, "Pending operations drain interval")
	fs.Var(&statusAddress, "status", "Status server address host:port")
	fs.BoolVar(&touchPrimary, "touch", false, "Touch-primary device (no presence broadcast)")
	fs.BoolVar(&headless, "headless", false, "Run without the terminal conflict view")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return &StructuredConfig{
		App: App{
			UserID:       userID,
			DisplayName:  displayName,
			RoomID:       roomID,
			RefreshToken: refreshToken,
			Headless:     headless,
		},
		Adapter: Adapter{
			HTTPAddress:    authorityAddress,
			WSAddress:      wsAddress,
			RequestTimeout: requestTimeout,
		},
		Storage: Storage{
			DB: DB{DSN: databaseDSN},
		},
		Presence: Presence{
			TouchPrimary: touchPrimary,
		},
		Workers: Workers{
			SyncInterval: syncInterval,
		},
		Status: Status{
			Address: statusAddress.String(),
		},
		JSONFilePath: jsonConfigPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" && host != "" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
