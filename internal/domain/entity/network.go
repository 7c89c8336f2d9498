package entity

// NetworkDefinition holds the static description of one chain target.
type NetworkDefinition struct {
	Target           ChainTarget `json:"-" yaml:"-"`
	Identifier       string      `json:"identifier" yaml:"identifier"` // REST path segment, e.g. "solana-devnet"
	Name             string      `json:"name" yaml:"name"`
	ChainID          string      `json:"chainId" yaml:"chainId"` // wire chain id, e.g. "eip155:44787"
	Family           ChainFamily `json:"family" yaml:"family"`
	NativeSymbol     string      `json:"nativeSymbol" yaml:"nativeSymbol"`
	Decimals         int32       `json:"decimals" yaml:"decimals"`
	GatewayURL       string      `json:"gatewayUrl" yaml:"gatewayUrl"`
	BlockExplorerURL string      `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
	IsTestnet        bool        `json:"isTestnet" yaml:"isTestnet"`
}
