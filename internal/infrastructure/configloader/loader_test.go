package configloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"portal_wallet/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	t.Setenv(APIKeyEnv, "")

	cfg, err := Parse([]byte("portal:\n  variant: celo\n"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "https://api.portalhq.io", cfg.Portal.APIBaseURL)
	assert.Equal(t, "https://api.portalhq.io/rpc/v1", cfg.Portal.GatewayBaseURL)
	assert.Equal(t, "testnet", cfg.Portal.DefaultTarget)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout())
	assert.Equal(t, time.Minute, cfg.SignTimeout())
	assert.Equal(t, 3, cfg.RpcClient.MaxRetries)

	variant, err := cfg.VariantDefinition()
	require.NoError(t, err)
	assert.Equal(t, entity.CeloVariant.Name, variant.Name)
}

func TestParseEnvOverridesAPIKey(t *testing.T) {
	t.Setenv(APIKeyEnv, "from-env")

	cfg, err := Parse([]byte("portal:\n  apiKey: from-file\n"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Portal.APIKey)
}

func TestParseRejectsBadVariant(t *testing.T) {
	_, err := Parse([]byte("portal:\n  variant: dogecoin\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("portal:\n  variant: solana\n  defaultTarget: alfajores\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9090\"\nportal:\n  variant: solana\n  defaultTarget: devnet\n  apiBaseURL: http://localhost:1234/\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "http://localhost:1234", cfg.Portal.APIBaseURL)

	_, err = Load(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}
