package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"portal_wallet/internal/app/port"
	"portal_wallet/internal/domain/entity"
	applog "portal_wallet/internal/pkg/logger"
)

const (
	defaultProviderConnectionTimeout = 10 * time.Second
)

// gatewayClientProvider implements port.GatewayClientProvider.
type gatewayClientProvider struct {
	clients           map[string]port.TransactionStatusClient
	mu                sync.Mutex
	logger            port.Logger
	connectionTimeout time.Duration
	rpcCallTimeout    time.Duration
}

// NewGatewayClientProvider creates a provider that caches one status client per network and API key.
func NewGatewayClientProvider(rpcCallTimeout time.Duration, logger port.Logger) port.GatewayClientProvider {
	if logger == nil {
		logger = applog.Nop()
	}
	return &gatewayClientProvider{
		clients:           make(map[string]port.TransactionStatusClient),
		logger:            logger,
		connectionTimeout: defaultProviderConnectionTimeout,
		rpcCallTimeout:    rpcCallTimeout,
	}
}

// GetClient retrieves a status client for the given network definition.
// Clients are cached to avoid reconnecting repeatedly.
func (p *gatewayClientProvider) GetClient(ctx context.Context, netDef entity.NetworkDefinition, apiKey string) (port.TransactionStatusClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	clientKey := netDef.ChainID + "|" + apiKey
	if client, exists := p.clients[clientKey]; exists {
		p.logger.Debug("Returning cached gateway client", "network", netDef.Name)
		return client, nil
	}

	p.logger.Info("Creating new gateway client", "network", netDef.Name, "gateway", netDef.GatewayURL)

	var (
		newClient port.TransactionStatusClient
		err       error
	)
	switch netDef.Family {
	case entity.FamilyEVM:
		newClient, err = NewEVMClient(ctx, netDef, apiKey, p.connectionTimeout, p.rpcCallTimeout)
	case entity.FamilySolana:
		newClient, err = NewSolanaClient(netDef, apiKey, p.rpcCallTimeout)
	default:
		err = fmt.Errorf("%w: unsupported chain family %q", entity.ErrNotImplemented, netDef.Family)
	}
	if err != nil {
		p.logger.Error("Failed to create gateway client", "network", netDef.Name, "error", err)
		return nil, fmt.Errorf("failed to create gateway client for %s: %w", netDef.Name, err)
	}

	p.clients[clientKey] = newClient
	return newClient, nil
}
