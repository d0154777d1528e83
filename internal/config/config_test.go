//nolint:gosec,gofumpt // G301,G306: Test files use standard permissions; formatting is acceptable
package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nullreceiver/srp6a/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	storeDir := filepath.Join(tmpDir, "var", "lib", "srp6a")
	require.NoError(t, os.MkdirAll(storeDir, 0755))

	configYAML := `
service:
  session_ttl: "30m"

listen:
  address: ""
  port: 8443

verifier:
  group_id: "2048"
  hash: "sha256"
  store_dir: "` + storeDir + `"

logging:
  level: "info"
  format: "json"
`

	configFile := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(configYAML), 0644))

	cfg, err := config.Load(configFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "30m", cfg.Service.SessionTTL)
	assert.Equal(t, 8443, cfg.Listen.Port)
	assert.Equal(t, "2048", cfg.Verifier.GroupID)
	assert.Equal(t, "sha256", cfg.Verifier.Hash)
	assert.Equal(t, storeDir, cfg.Verifier.StoreDir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("invalid: [yaml"), 0644))

	cfg, err := config.Load(configFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := config.Load("/nonexistent/config.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestGetSessionTTL(t *testing.T) {
	tests := []struct {
		name        string
		ttl         string
		expectError bool
		expected    time.Duration
	}{
		{
			name:        "valid 30 minutes",
			ttl:         "30m",
			expectError: false,
			expected:    30 * time.Minute,
		},
		{
			name:        "valid 1 hour",
			ttl:         "1h",
			expectError: false,
			expected:    1 * time.Hour,
		},
		{
			name:        "minimum 5 minutes",
			ttl:         "5m",
			expectError: false,
			expected:    5 * time.Minute,
		},
		{
			name:        "below minimum",
			ttl:         "2m",
			expectError: true,
		},
		{
			name:        "invalid format",
			ttl:         "invalid",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				Service: config.ServiceSettings{
					SessionTTL: tt.ttl,
				},
			}

			duration, err := cfg.GetSessionTTL()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, duration)
			}
		})
	}
}

func TestVerifierStorePath(t *testing.T) {
	cfg := &config.Config{
		Verifier: config.VerifierSettings{
			StoreDir: "/var/lib/srp6a",
		},
	}

	assert.Equal(t, "/var/lib/srp6a/verifiers.json", cfg.VerifierStorePath())
}

func TestListenAddr(t *testing.T) {
	cfg := &config.Config{
		Listen: config.ListenSettings{
			Address: "127.0.0.1",
			Port:    8443,
		},
	}

	assert.Equal(t, "127.0.0.1:8443", cfg.ListenAddr())
}

func TestConfig_Validate_MissingFields(t *testing.T) {
	tests := []struct {
		name        string
		yamlContent string
		expectedErr string
	}{
		{
			name: "missing session_ttl",
			yamlContent: `
listen:
  port: 8443
verifier:
  group_id: "2048"
  hash: "sha256"
`,
			expectedErr: "session_ttl is required",
		},
		{
			name: "missing group_id",
			yamlContent: `
service:
  session_ttl: "30m"
listen:
  port: 8443
verifier:
  hash: "sha256"
`,
			expectedErr: "group_id is required",
		},
		{
			name: "missing hash",
			yamlContent: `
service:
  session_ttl: "30m"
listen:
  port: 8443
verifier:
  group_id: "2048"
`,
			expectedErr: "hash is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configFile := filepath.Join(tmpDir, "config.yaml")
			require.NoError(t, os.WriteFile(configFile, []byte(tt.yamlContent), 0644))

			cfg, err := config.Load(configFile)
			assert.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.expectedErr)
		})
	}
}

func TestConfig_Validate_InvalidPort(t *testing.T) {
	configYAML := `
service:
  session_ttl: "30m"
listen:
  port: 99999
verifier:
  group_id: "2048"
  hash: "sha256"
`

	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(configYAML), 0644))

	cfg, err := config.Load(configFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "port must be between 1 and 65535")
}

func TestValidate_InvalidGroup(t *testing.T) {
	cfg := &config.Config{
		Service:  config.ServiceSettings{SessionTTL: "30m"},
		Listen:   config.ListenSettings{Port: 8443},
		Verifier: config.VerifierSettings{GroupID: "999", Hash: "sha256"},
		Logging:  config.LoggingSettings{Level: "info", Format: "json"},
	}

	err := config.Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "group_id must be one of")
}

func TestValidate_InvalidHash(t *testing.T) {
	cfg := &config.Config{
		Service:  config.ServiceSettings{SessionTTL: "30m"},
		Listen:   config.ListenSettings{Port: 8443},
		Verifier: config.VerifierSettings{GroupID: "2048", Hash: "md5"},
		Logging:  config.LoggingSettings{Level: "info", Format: "json"},
	}

	err := config.Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "hash must be one of")
}

func TestValidate_InvalidLogging(t *testing.T) {
	cfg := &config.Config{
		Service:  config.ServiceSettings{SessionTTL: "30m"},
		Listen:   config.ListenSettings{Port: 8443},
		Verifier: config.VerifierSettings{GroupID: "2048", Hash: "sha256"},
		Logging:  config.LoggingSettings{Level: "verbose", Format: "json"},
	}

	err := config.Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level must be one of")
}
