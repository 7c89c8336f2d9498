package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portal_wallet/internal/app/port"
	"portal_wallet/internal/domain/entity"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// EVMClient implements port.TransactionStatusClient for EVM-compatible chains.
type EVMClient struct {
	ethClient      *ethclient.Client
	netDef         entity.NetworkDefinition
	rpcCallTimeout time.Duration
}

var _ port.TransactionStatusClient = (*EVMClient)(nil)

// NewEVMClient dials the network's gateway, authenticating with apiKey.
func NewEVMClient(
	ctx context.Context,
	netDef entity.NetworkDefinition,
	apiKey string,
	connectionTimeout, rpcCallTimeout time.Duration,
) (*EVMClient, error) {
	if netDef.GatewayURL == "" {
		return nil, fmt.Errorf("no gateway url for network %s", netDef.Name)
	}
	dialCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	rpcClient, err := rpc.DialOptions(dialCtx, netDef.GatewayURL, rpc.WithHeader("Authorization", "Bearer "+apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to gateway %s: %w", netDef.GatewayURL, err)
	}
	return &EVMClient{ethClient: ethclient.NewClient(rpcClient), netDef: netDef, rpcCallTimeout: rpcCallTimeout}, nil
}

// Definition returns the network this client talks to.
func (c *EVMClient) Definition() entity.NetworkDefinition { return c.netDef }

// TransactionStatus looks up the receipt of txHash. A missing receipt means the
// transaction is not mined yet.
func (c *EVMClient) TransactionStatus(ctx context.Context, txHash string) (entity.TxStatus, error) {
	raw, err := hexutil.Decode(txHash)
	if err != nil || len(raw) != common.HashLength {
		return entity.TxStatusUnknown, fmt.Errorf("%w: %q", entity.ErrInvalidTxHash, txHash)
	}

	callCtx, cancel := withTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	receipt, err := c.ethClient.TransactionReceipt(callCtx, common.BytesToHash(raw))
	if errors.Is(err, ethereum.NotFound) {
		return entity.TxStatusPending, nil
	}
	if err != nil {
		return entity.TxStatusUnknown, classify(fmt.Sprintf("receipt %s on %s", txHash, c.netDef.Name), err)
	}
	if receipt.Status == types.ReceiptStatusSuccessful {
		return entity.TxStatusConfirmed, nil
	}
	return entity.TxStatusFailed, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func classify(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", entity.ErrTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %w", entity.ErrNetwork, op, err)
}
