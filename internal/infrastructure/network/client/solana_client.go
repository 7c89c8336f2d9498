package client

import (
	"context"
	"fmt"
	"time"

	"portal_wallet/internal/app/port"
	"portal_wallet/internal/domain/entity"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// SolanaClient implements port.TransactionStatusClient for Solana clusters.
type SolanaClient struct {
	rpcClient      *rpc.Client
	netDef         entity.NetworkDefinition
	rpcCallTimeout time.Duration
}

var _ port.TransactionStatusClient = (*SolanaClient)(nil)

// NewSolanaClient creates a client for the network's gateway. No connection is made up front.
func NewSolanaClient(netDef entity.NetworkDefinition, apiKey string, rpcCallTimeout time.Duration) (*SolanaClient, error) {
	if netDef.GatewayURL == "" {
		return nil, fmt.Errorf("no gateway url for network %s", netDef.Name)
	}
	rpcClient := rpc.NewWithHeaders(netDef.GatewayURL, map[string]string{
		"Authorization": "Bearer " + apiKey,
	})
	return &SolanaClient{rpcClient: rpcClient, netDef: netDef, rpcCallTimeout: rpcCallTimeout}, nil
}

// Definition returns the network this client talks to.
func (c *SolanaClient) Definition() entity.NetworkDefinition { return c.netDef }

// TransactionStatus reads the signature status. Confirmed and finalized
// signatures count as confirmed; unseen ones are still pending.
func (c *SolanaClient) TransactionStatus(ctx context.Context, txHash string) (entity.TxStatus, error) {
	sig, err := solana.SignatureFromBase58(txHash)
	if err != nil {
		return entity.TxStatusUnknown, fmt.Errorf("%w: signature %q: %v", entity.ErrInvalidTxHash, txHash, err)
	}

	callCtx, cancel := withTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	out, err := c.rpcClient.GetSignatureStatuses(callCtx, true, sig)
	if err != nil {
		return entity.TxStatusUnknown, classify(fmt.Sprintf("signature %s on %s", txHash, c.netDef.Name), err)
	}
	if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
		return entity.TxStatusPending, nil
	}

	status := out.Value[0]
	if status.Err != nil {
		return entity.TxStatusFailed, nil
	}
	switch status.ConfirmationStatus {
	case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
		return entity.TxStatusConfirmed, nil
	default:
		return entity.TxStatusPending, nil
	}
}
