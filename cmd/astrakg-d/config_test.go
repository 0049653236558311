package main

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_QueryTimeoutValidation(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		envVars     map[string]string
		expectError bool
		errorSubstr string
	}{
		{
			name:        "valid timeout from flag",
			args:        []string{"-query-timeout", "2s"},
			expectError: false,
		},
		{
			name:        "zero timeout disables the bound",
			args:        []string{"-query-timeout", "0s"},
			expectError: false,
		},
		{
			name:        "negative timeout from flag",
			args:        []string{"-query-timeout", "-2s"},
			expectError: true,
			errorSubstr: "query timeout cannot be negative",
		},
		{
			name:        "valid timeout from env",
			envVars:     map[string]string{"ASTRAKG_QUERY_TIMEOUT": "2s"},
			expectError: false,
		},
		{
			name:        "invalid timeout format from flag",
			args:        []string{"-query-timeout", "invalid"},
			expectError: true,
			errorSubstr: "invalid query timeout",
		},
		{
			name:        "invalid timeout format from env",
			envVars:     map[string]string{"ASTRAKG_QUERY_TIMEOUT": "invalid"},
			expectError: true,
			errorSubstr: "invalid ASTRAKG_QUERY_TIMEOUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				os.Setenv(k, v)
				defer os.Unsetenv(k)
			}

			cfg, err := LoadConfig(tt.args)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error containing %q, got nil", tt.errorSubstr)
				} else if !strings.Contains(err.Error(), tt.errorSubstr) {
					t.Errorf("expected error containing %q, got %q", tt.errorSubstr, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				} else if cfg.QueryTimeout < 0 {
					t.Errorf("expected non-negative query timeout, got %v", cfg.QueryTimeout)
				}
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig([]string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.QueryTimeout != 5*time.Second {
		t.Errorf("expected default query timeout of 5s, got %v", cfg.QueryTimeout)
	}
	if cfg.Addr != "127.0.0.1:8091" {
		t.Errorf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("expected caching disabled by default, got %q", cfg.RedisAddr)
	}
	if !strings.HasSuffix(cfg.DBPath, "astrakg.db") {
		t.Errorf("unexpected default db path %q", cfg.DBPath)
	}
}

func TestLoadConfig_AddrFromPort(t *testing.T) {
	os.Setenv("ASTRAKG_PORT", "9001")
	defer os.Unsetenv("ASTRAKG_PORT")

	cfg, err := LoadConfig([]string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9001" {
		t.Errorf("expected addr from port env, got %q", cfg.Addr)
	}
}
