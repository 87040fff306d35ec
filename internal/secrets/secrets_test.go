// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		want    map[string]string
		wantErr bool
	}{
		{
			name: "reads keys and unquotes values",
			setup: func(t *testing.T) string {
				return writeEnv(t,
					"# local credentials\n"+
						"NCBI_EMAIL=alice@example.org\n"+
						"NCBI_API_KEY=\"ncbi-key-123\"\n"+
						"SILICONFLOW_API_KEY=sk-abc\n")
			},
			want: map[string]string{
				"NCBI_EMAIL":          "alice@example.org",
				"NCBI_API_KEY":        "ncbi-key-123",
				"SILICONFLOW_API_KEY": "sk-abc",
			},
		},
		{
			name: "returns empty map for missing file",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist.env")
			},
			want: map[string]string{},
		},
		{
			name: "drops empty values",
			setup: func(t *testing.T) string {
				return writeEnv(t,
					"NCBI_EMAIL=alice@example.org\n"+
						"NCBI_API_KEY=\n"+
						"SILICONFLOW_API_KEY=\"   \"\n")
			},
			want: map[string]string{
				"NCBI_EMAIL": "alice@example.org",
			},
		},
		{
			name: "returns empty map for empty file",
			setup: func(t *testing.T) string {
				return writeEnv(t, "")
			},
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveEnvironmentWins(t *testing.T) {
	t.Setenv(EnvEmail, "env@example.org")

	fromFile := map[string]string{EnvEmail: "file@example.org"}
	assert.Equal(t, "env@example.org", Resolve(EnvEmail, fromFile))
}

func TestResolveFallsBackToFile(t *testing.T) {
	t.Setenv(EnvNCBIKey, "")

	fromFile := map[string]string{EnvNCBIKey: "ncbi-from-file"}
	assert.Equal(t, "ncbi-from-file", Resolve(EnvNCBIKey, fromFile))
}

func TestResolveMissingEverywhere(t *testing.T) {
	t.Setenv(EnvSiliconFlowKey, "")

	assert.Equal(t, "", Resolve(EnvSiliconFlowKey, nil))
}

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
