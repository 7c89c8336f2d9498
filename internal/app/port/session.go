package port

import (
	"context"

	"portal_wallet/internal/domain/entity"
)

// SessionHandle is the process-wide wallet session bound to one API key.
type SessionHandle interface {
	APIKey() string
	SDK() WalletSDK
	// Gateways returns a copy of the wire chain id -> RPC URL map bound into the SDK.
	Gateways() map[string]string
}

// WalletSessionClient is everything the UI layer may ask of the wallet.
type WalletSessionClient interface {
	InitSession(apiKey string) (SessionHandle, error)
	HasSession() bool

	WalletExists(ctx context.Context) (bool, error)
	IsBackedUp(ctx context.Context) (bool, error)
	AvailableRecoveryMethods(ctx context.Context) ([]entity.BackupMethod, error)
	WalletAddress(ctx context.Context) (string, error)

	CreateWallet(ctx context.Context) (string, error)
	BackupWallet(ctx context.Context, method entity.BackupMethod, pin string) error
	RecoverWallet(ctx context.Context, method entity.BackupMethod, pin string) (string, error)

	FetchBalances(ctx context.Context, address string, target entity.ChainTarget) (*entity.AssetBalances, error)
	LastBalances(address string, target entity.ChainTarget) (*entity.AssetBalances, bool)
	BuildAndSubmitTransfer(ctx context.Context, target entity.ChainTarget, recipient, tokenSymbol string, amount float64) (string, error)
	SendPYUSD(ctx context.Context, target entity.ChainTarget, recipient string, amount float64) (string, error)
	FundTestWallet(ctx context.Context, chainID, amount, tokenSymbol string) (string, error)
	TransactionStatus(ctx context.Context, target entity.ChainTarget, txHash string) (entity.TxStatus, error)

	Variant() entity.Variant
}

// BalanceSummaryService turns raw snapshots into what the wallet screen displays.
type BalanceSummaryService interface {
	Summary(ctx context.Context, address string, target entity.ChainTarget) (*entity.BalanceSummary, error)
	SnapshotAll(ctx context.Context, address string) ([]entity.BalanceSummary, error)
}
