package config

import (
	"errors"
	"flag"
	"net"
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

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-d database DSN
//	-c/-config json file path with configs
//	-db-queue-size database command queue size
//	-db-connect-retries database connection attempts
//	-db-retry-interval pause between connection attempts (e.g., "2s")
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-frontend-url public frontend base URL
//	-smtp-host SMTP relay host
//	-smtp-port SMTP relay port
//	-smtp-from sender address for outgoing mail
func ParseFlags() *StructuredConfig {
	var serverAddress NetAddress
	var databaseDSN string
	var jsonConfigPath string
	var dbQueueSize int
	var dbConnectRetries uint64
	var dbRetryInterval time.Duration
	var requestTimeout time.Duration
	var frontendURL string
	var smtpHost string
	var smtpPort int
	var smtpFrom string

	flag.Var(&serverAddress, "a", "Net address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.IntVar(&dbQueueSize, "db-queue-size", 0, "Database command queue size")
	flag.Uint64Var(&dbConnectRetries, "db-connect-retries", 0, "Database connection attempts")
	flag.DurationVar(&dbRetryInterval, "db-retry-interval", 0, "Pause between connection attempts (e.g., 2s)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.StringVar(&frontendURL, "frontend-url", "", "Public frontend base URL")
	flag.StringVar(&smtpHost, "smtp-host", "", "SMTP relay host")
	flag.IntVar(&smtpPort, "smtp-port", 0, "SMTP relay port")
	flag.StringVar(&smtpFrom, "smtp-from", "", "Sender address for outgoing mail")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			FrontendURL: frontendURL,
		},
		Storage: Storage{
			DB: DB{
				DSN:            databaseDSN,
				ConnectRetries: dbConnectRetries,
				RetryInterval:  dbRetryInterval,
				QueueSize:      dbQueueSize,
			},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		SMTP: SMTP{
			Host: smtpHost,
			Port: smtpPort,
			From: smtpFrom,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns the empty string.
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

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
