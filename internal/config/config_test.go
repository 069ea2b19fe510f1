package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
	}{
		{
			name: "valid config",
			envVars: map[string]string{
				"PACK_BASE_URL": "https://packs.example.com/v1",
				"MODELS_PATH":   "/data/models",
				"SERVER_PORT":   "9090",
				"LOG_LEVEL":     "debug",
			},
			wantErr: false,
		},
		{
			name:    "defaults applied",
			envVars: map[string]string{},
			wantErr: false,
		},
		{
			name: "invalid log level",
			envVars: map[string]string{
				"LOG_LEVEL": "verbose",
			},
			wantErr: true,
		},
		{
			name: "relative models path",
			envVars: map[string]string{
				"MODELS_PATH": "models",
			},
			wantErr: true,
		},
		{
			name: "non-http base URL",
			envVars: map[string]string{
				"PACK_BASE_URL": "ftp://packs.example.com",
			},
			wantErr: true,
		},
		{
			name: "zero idle timeout",
			envVars: map[string]string{
				"DOWNLOAD_IDLE_TIMEOUT": "0s",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for key, value := range tt.envVars {
				os.Setenv(key, value)
			}

			cfg, err := Load()

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			require.NotEmpty(t, cfg.PackBaseURL)
			require.NotEmpty(t, cfg.ServerPort)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "https://packs.voicelang.app/v1", cfg.PackBaseURL)
	require.Equal(t, "/data/models", cfg.ModelsPath)
	require.Equal(t, "langpack.db", cfg.DatabasePath)
	require.Equal(t, "8080", cfg.ServerPort)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, 30*time.Second, cfg.IdleTimeout)
	require.Equal(t, 30*time.Second, cfg.ScanInterval)
	require.False(t, cfg.RequireUnmetered)
}

func TestValidate_CleansModelsPath(t *testing.T) {
	cfg := &Config{
		PackBaseURL:  "https://packs.example.com",
		ModelsPath:   "/data//models/",
		LogLevel:     "info",
		IdleTimeout:  time.Second,
		ScanInterval: time.Second,
	}
	require.NoError(t, cfg.Validate())
	require.Equal(t, "/data/models", cfg.ModelsPath)
}
