package entity

import (
	"strconv"
	"strings"
)

// AssetMetadata carries chain-specific identifiers of an asset.
type AssetMetadata struct {
	Mint         string `json:"mint,omitempty"`
	TokenAddress string `json:"tokenAddress,omitempty"`
}

// AssetBalance is one asset's balance as reported by the provider.
type AssetBalance struct {
	Balance    string        `json:"balance"`
	Decimals   int           `json:"decimals"`
	Name       string        `json:"name"`
	RawBalance string        `json:"rawBalance"`
	Symbol     string        `json:"symbol"`
	Metadata   AssetMetadata `json:"metadata"`
}

// Float parses the human-readable balance. Unparseable values read as zero.
func (b AssetBalance) Float() float64 {
	v, err := strconv.ParseFloat(b.Balance, 64)
	if err != nil {
		return 0
	}
	return v
}

// AssetBalances is a point-in-time snapshot of a wallet on one chain.
type AssetBalances struct {
	NativeBalance AssetBalance   `json:"nativeBalance"`
	TokenBalances []AssetBalance `json:"tokenBalances"`
}

// Token returns the first token balance with the given symbol (case-insensitive).
func (a *AssetBalances) Token(symbol string) (AssetBalance, bool) {
	for _, tb := range a.TokenBalances {
		if strings.EqualFold(tb.Symbol, symbol) {
			return tb, true
		}
	}
	return AssetBalance{}, false
}

// BalanceSummary is the symbol->amount view the wallet screen renders.
type BalanceSummary struct {
	Target  string             `json:"chain"`
	Address string             `json:"address"`
	Native  string             `json:"nativeSymbol"`
	Amounts map[string]float64 `json:"amounts"`
}
