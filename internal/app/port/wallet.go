package port

import (
	"context"

	"portal_wallet/internal/domain/entity"
)

// SDKConfig is bound into a WalletSDK when a session is created.
type SDKConfig struct {
	APIKey        string
	GatewayConfig map[string]string
	AutoApprove   bool
	BackupMethods []entity.BackupMethod
}

// WalletSDK is the externally owned wallet-provider handle. Key generation,
// share storage, backup cryptography and signing all happen behind it.
type WalletSDK interface {
	CreateWallet(ctx context.Context) (entity.Addresses, error)
	BackupWallet(ctx context.Context, method entity.BackupMethod, password string) error
	RecoverWallet(ctx context.Context, method entity.BackupMethod, password string) (entity.Addresses, error)
	// Request signs and/or broadcasts through the provider. The result is the transaction hash.
	Request(ctx context.Context, method string, params []any, chainID string) (string, error)
	GetClientDescriptor(ctx context.Context) (*entity.ClientDescriptor, error)
	APIKey() string
}

// SDKFactory constructs a WalletSDK for the given configuration.
type SDKFactory func(cfg SDKConfig) (WalletSDK, error)

// AssetsAPI is the provider's REST surface for balances, transfers and funding.
type AssetsAPI interface {
	GetAssets(ctx context.Context, apiKey, chainPath string) (*entity.AssetBalances, error)
	BuildTransaction(ctx context.Context, apiKey, chainPath string, req entity.TransferRequest) (*entity.BuildTransactionResult, error)
	FundTestnetAsset(ctx context.Context, apiKey string, req entity.FundingRequest) (*entity.FundingResult, error)
}

// BalanceCache keeps the most recently completed balance snapshot per address and chain.
type BalanceCache interface {
	Store(address string, target entity.ChainTarget, balances *entity.AssetBalances)
	Load(address string, target entity.ChainTarget) (*entity.AssetBalances, bool)
}
