package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type AppConfig struct {
	EnginePath         string
	UseMockEngine      bool
	EngineOptionsFile  string
	HandshakeTimeoutMs int
	DefaultThinkMs     int

	APIAddr string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		HandshakeTimeoutMs: 5000,
		DefaultThinkMs:     1000,
		APIAddr:            ":8700",
	}

	cfg.EnginePath = strings.TrimSpace(os.Getenv("ENGINE_PATH"))
	cfg.EngineOptionsFile = strings.TrimSpace(os.Getenv("ENGINE_OPTIONS_FILE"))

	if v := strings.TrimSpace(os.Getenv("ENGINE_USE_MOCK")); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			cfg.UseMockEngine = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("ENGINE_HANDSHAKE_TIMEOUT_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HandshakeTimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("ENGINE_DEFAULT_THINK_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DefaultThinkMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("API_ADDR")); v != "" {
		cfg.APIAddr = v
	}

	if cfg.EnginePath == "" && !cfg.UseMockEngine {
		return nil, errors.New("ENGINE_PATH is required unless ENGINE_USE_MOCK=true")
	}

	return cfg, nil
}
