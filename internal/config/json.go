package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	App struct {
		FrontendURL string   `json:"frontend_url"`
		CORSOrigins []string `json:"cors_origins"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN            string   `json:"dsn"`
			ConnectRetries uint64   `json:"connect_retries"`
			RetryInterval  Duration `json:"retry_interval"`
			QueueSize      int      `json:"queue_size"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	SMTP struct {
		Host       string   `json:"host"`
		Port       int      `json:"port"`
		Username   string   `json:"username"`
		Password   string   `json:"password"`
		From       string   `json:"from"`
		SendPeriod Duration `json:"send_period"`
		QueueSize  int      `json:"queue_size"`
	} `json:"smtp,omitempty"`
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
			FrontendURL: jsonCfg.App.FrontendURL,
			CORSOrigins: jsonCfg.App.CORSOrigins,
		},
		Storage: Storage{
			DB: DB{
				DSN:            jsonCfg.Storage.DB.DSN,
				ConnectRetries: jsonCfg.Storage.DB.ConnectRetries,
				RetryInterval:  time.Duration(jsonCfg.Storage.DB.RetryInterval),
				QueueSize:      jsonCfg.Storage.DB.QueueSize,
			},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		SMTP: SMTP{
			Host:       jsonCfg.SMTP.Host,
			Port:       jsonCfg.SMTP.Port,
			Username:   jsonCfg.SMTP.Username,
			Password:   jsonCfg.SMTP.Password,
			From:       jsonCfg.SMTP.From,
			SendPeriod: time.Duration(jsonCfg.SMTP.SendPeriod),
			QueueSize:  jsonCfg.SMTP.QueueSize,
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
