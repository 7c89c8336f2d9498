package port

import (
	"context"

	"portal_wallet/internal/domain/entity"
)

// ChainRegistry resolves chain targets to their static network definitions.
// All methods are pure lookups.
type ChainRegistry interface {
	Resolve(target entity.ChainTarget) (entity.NetworkDefinition, error)
	ResolveChainPath(target entity.ChainTarget) (string, error)
	ResolveWireChainID(target entity.ChainTarget) (string, error)
	IsTestNetwork(target entity.ChainTarget) (bool, error)

	// ByChainID finds a definition by its wire chain id ("eip155:44787").
	ByChainID(chainID string) (entity.NetworkDefinition, bool)
	// ByIdentifier finds a definition by its REST path segment ("celo-alfajores").
	ByIdentifier(identifier string) (entity.NetworkDefinition, bool)
	All() []entity.NetworkDefinition

	// GatewayConfig returns a fresh wire chain id -> RPC URL map for every target.
	GatewayConfig() map[string]string
	ValidateAddress(target entity.ChainTarget, address string) error
}

// TransactionStatusClient reads the settlement state of a transaction from a chain gateway.
type TransactionStatusClient interface {
	TransactionStatus(ctx context.Context, txHash string) (entity.TxStatus, error)
	Definition() entity.NetworkDefinition
}

// GatewayClientProvider hands out status clients, one per network.
type GatewayClientProvider interface {
	GetClient(ctx context.Context, def entity.NetworkDefinition, apiKey string) (TransactionStatusClient, error)
}
