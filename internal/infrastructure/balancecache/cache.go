package balancecache

import (
	"fmt"
	"strings"
	"time"

	"portal_wallet/internal/app/port"
	"portal_wallet/internal/domain/entity"

	"github.com/patrickmn/go-cache"
)

// Cache keeps the last completed balance snapshot per address and chain.
// Keys have the form "<target>_<address>"; later writes replace earlier ones.
// Hex addresses are case-folded, base58 addresses are not.
type Cache struct {
	snapshots *cache.Cache
}

var _ port.BalanceCache = (*Cache)(nil)

// New creates a cache whose entries expire after ttl.
func New(ttl, cleanupInterval time.Duration) *Cache {
	return &Cache{snapshots: cache.New(ttl, cleanupInterval)}
}

func key(address string, target entity.ChainTarget) string {
	if strings.HasPrefix(address, "0x") || strings.HasPrefix(address, "0X") {
		address = strings.ToLower(address)
	}
	return fmt.Sprintf("%s_%s", target, address)
}

// Store saves balances for address on target.
func (c *Cache) Store(address string, target entity.ChainTarget, balances *entity.AssetBalances) {
	if balances == nil {
		return
	}
	c.snapshots.SetDefault(key(address, target), balances)
}

// Load returns the cached snapshot, if any.
func (c *Cache) Load(address string, target entity.ChainTarget) (*entity.AssetBalances, bool) {
	v, ok := c.snapshots.Get(key(address, target))
	if !ok {
		return nil, false
	}
	balances, ok := v.(*entity.AssetBalances)
	return balances, ok
}
