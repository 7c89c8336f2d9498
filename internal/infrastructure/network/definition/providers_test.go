package networkdefinition

import (
	"testing"

	"portal_wallet/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookupsArePure(t *testing.T) {
	r := NewChainRegistry("https://api.portalhq.io/rpc/v1/")
	targets := []entity.ChainTarget{entity.SolanaMainnet, entity.SolanaDevnet, entity.CeloMainnet, entity.CeloAlfajores}

	for _, target := range targets {
		t.Run(target.String(), func(t *testing.T) {
			p1, err := r.ResolveChainPath(target)
			require.NoError(t, err)
			p2, err := r.ResolveChainPath(target)
			require.NoError(t, err)
			assert.Equal(t, p1, p2)
			assert.Equal(t, target.String(), p1)

			w1, err := r.ResolveWireChainID(target)
			require.NoError(t, err)
			w2, err := r.ResolveWireChainID(target)
			require.NoError(t, err)
			assert.Equal(t, w1, w2)
		})
	}
}

func TestRegistryValues(t *testing.T) {
	r := NewChainRegistry("https://api.portalhq.io/rpc/v1")

	tests := []struct {
		target  entity.ChainTarget
		path    string
		chainID string
		testnet bool
		gateway string
	}{
		{entity.SolanaMainnet, "solana-mainnet", "solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp", false, "https://api.portalhq.io/rpc/v1/solana/5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp"},
		{entity.SolanaDevnet, "solana-devnet", "solana:EtWTRABZaYq6iMfeYKouRu166VU2xqa1", true, "https://api.portalhq.io/rpc/v1/solana/EtWTRABZaYq6iMfeYKouRu166VU2xqa1"},
		{entity.CeloMainnet, "celo-mainnet", "eip155:42220", false, "https://api.portalhq.io/rpc/v1/eip155/42220"},
		{entity.CeloAlfajores, "celo-alfajores", "eip155:44787", true, "https://api.portalhq.io/rpc/v1/eip155/44787"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			def, err := r.Resolve(tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.path, def.Identifier)
			assert.Equal(t, tt.chainID, def.ChainID)
			assert.Equal(t, tt.gateway, def.GatewayURL)

			isTest, err := r.IsTestNetwork(tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.testnet, isTest)

			byID, ok := r.ByChainID(tt.chainID)
			require.True(t, ok)
			assert.Equal(t, tt.target, byID.Target)

			byName, ok := r.ByIdentifier(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.target, byName.Target)
		})
	}
}

func TestRegistryUnknownTarget(t *testing.T) {
	r := NewChainRegistry("https://gw")

	_, err := r.ResolveChainPath(entity.ChainTargetUnknown)
	assert.ErrorIs(t, err, entity.ErrUnknownChainTarget)
	_, err = r.ResolveWireChainID(entity.ChainTarget(99))
	assert.ErrorIs(t, err, entity.ErrUnknownChainTarget)
	_, err = r.IsTestNetwork(entity.ChainTarget(99))
	assert.ErrorIs(t, err, entity.ErrUnknownChainTarget)

	_, ok := r.ByChainID("eip155:1")
	assert.False(t, ok)
}

func TestGatewayConfigIsACopy(t *testing.T) {
	r := NewChainRegistry("https://gw")

	gw := r.GatewayConfig()
	assert.Len(t, gw, 4)
	gw["eip155:42220"] = "tampered"

	assert.Equal(t, "https://gw/eip155/42220", r.GatewayConfig()["eip155:42220"])
}

func TestAllIsOrdered(t *testing.T) {
	all := NewChainRegistry("https://gw").All()
	require.Len(t, all, 4)
	assert.Equal(t, entity.SolanaMainnet, all[0].Target)
	assert.Equal(t, entity.CeloAlfajores, all[3].Target)
}

func TestValidateAddress(t *testing.T) {
	r := NewChainRegistry("https://gw")

	assert.NoError(t, r.ValidateAddress(entity.CeloAlfajores, "0x52908400098527886E0F7030069857D2E4169EE7"))
	assert.ErrorIs(t, r.ValidateAddress(entity.CeloAlfajores, "0xABC"), entity.ErrInvalidAddress)

	assert.NoError(t, r.ValidateAddress(entity.SolanaDevnet, "11111111111111111111111111111111"))
	assert.ErrorIs(t, r.ValidateAddress(entity.SolanaDevnet, "not-base58-0OIl"), entity.ErrInvalidAddress)

	assert.ErrorIs(t, r.ValidateAddress(entity.ChainTargetUnknown, "x"), entity.ErrUnknownChainTarget)
}
