package balancecache

import (
	"testing"
	"time"

	"portal_wallet/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheLastWriteWins(t *testing.T) {
	c := New(time.Minute, time.Minute)

	first := &entity.AssetBalances{NativeBalance: entity.AssetBalance{Balance: "1"}}
	second := &entity.AssetBalances{NativeBalance: entity.AssetBalance{Balance: "2"}}

	c.Store("0xAbC", entity.CeloAlfajores, first)
	c.Store("0xabc", entity.CeloAlfajores, second)

	got, ok := c.Load("0xABC", entity.CeloAlfajores)
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestCacheSeparatesTargets(t *testing.T) {
	c := New(time.Minute, time.Minute)
	c.Store("addr", entity.SolanaDevnet, &entity.AssetBalances{})

	_, ok := c.Load("addr", entity.SolanaMainnet)
	assert.False(t, ok)

	c.Store("addr", entity.SolanaMainnet, nil)
	_, ok = c.Load("addr", entity.SolanaMainnet)
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	c := New(20*time.Millisecond, time.Hour)
	c.Store("addr", entity.SolanaDevnet, &entity.AssetBalances{})

	time.Sleep(40 * time.Millisecond)
	_, ok := c.Load("addr", entity.SolanaDevnet)
	assert.False(t, ok)
}
