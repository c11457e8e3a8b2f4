package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds configuration read from LIVETRACE_* environment variables.
type EnvConfig struct {
	TraceID    string `env:"LIVETRACE_TRACE_ID"`
	ParentID   string `env:"LIVETRACE_PARENT_ID"`
	Attributes string `env:"LIVETRACE_ATTRIBUTES"`
	// Tool renders the report and replay phases.
	Tool string `env:"LIVETRACE_TOOL" envDefault:"uftrace"`
	// TmpDir is where the session trace store is allocated.
	TmpDir   string `env:"LIVETRACE_TMPDIR"`
	LibPath  string `env:"LIVETRACE_LIB_PATH"`
	LogLevel string `env:"LIVETRACE_LOG_LEVEL"`
}

// ParseEnvConfig parses LIVETRACE_* variables from the environment.
func ParseEnvConfig() (*EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment config: %w", err)
	}
	return &cfg, nil
}

// StoreRoot returns the directory the trace store is created under.
func (c *EnvConfig) StoreRoot() string {
	if c.TmpDir != "" {
		return c.TmpDir
	}
	return os.TempDir()
}
