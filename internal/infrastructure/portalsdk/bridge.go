package portalsdk

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"portal_wallet/internal/app/port"
	"portal_wallet/internal/domain/entity"
	applog "portal_wallet/internal/pkg/logger"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	clientDescriptorPath = "/api/v3/clients/me"
	rpcPath              = "/v1/rpc"
	generatePath         = "/v1/wallet/generate"
	backupPath           = "/v1/wallet/backup"
	recoverPath          = "/v1/wallet/recover"
)

// Options locates the provider API and the signer bridge.
type Options struct {
	APIBaseURL string
	BridgeURL  string
	Timeout    time.Duration
	// MaxRetries applies to descriptor reads only. Bridge calls are never retried.
	MaxRetries int
}

// Bridge is a port.WalletSDK that forwards wallet operations to a signer
// bridge process holding the key shares, and reads the client descriptor
// from the provider API.
type Bridge struct {
	cfg    port.SDKConfig
	api    *resty.Client
	bridge *resty.Client
	logger port.Logger
}

var _ port.WalletSDK = (*Bridge)(nil)

// NewFactory returns a port.SDKFactory producing bridges with opts.
func NewFactory(opts Options, logger port.Logger) port.SDKFactory {
	return func(cfg port.SDKConfig) (port.WalletSDK, error) {
		return New(opts, cfg, logger)
	}
}

// New creates a bridge bound to cfg.
func New(opts Options, cfg port.SDKConfig, logger port.Logger) (*Bridge, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("portal sdk: api key is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = applog.Nop()
	}

	gateways := make(map[string]string, len(cfg.GatewayConfig))
	for chainID, url := range cfg.GatewayConfig {
		gateways[chainID] = url
	}
	cfg.GatewayConfig = gateways

	api := resty.New().
		SetBaseURL(strings.TrimRight(opts.APIBaseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetHeader("Accept", "application/json").
		SetTimeout(opts.Timeout).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal).
		SetRetryCount(opts.MaxRetries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	bridge := resty.New().
		SetBaseURL(strings.TrimRight(opts.BridgeURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(opts.Timeout).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)

	return &Bridge{cfg: cfg, api: api, bridge: bridge, logger: logger.With("component", "PortalSDKBridge")}, nil
}

// APIKey returns the key this handle was created with.
func (b *Bridge) APIKey() string { return b.cfg.APIKey }

// GetClientDescriptor reads the client's wallets and share pairs from the provider.
func (b *Bridge) GetClientDescriptor(ctx context.Context) (*entity.ClientDescriptor, error) {
	var descriptor entity.ClientDescriptor
	resp, err := b.api.R().
		SetContext(ctx).
		SetResult(&descriptor).
		Get(clientDescriptorPath)
	if err != nil {
		return nil, wrapTransport("get client descriptor", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: %w", entity.ErrNetwork, &entity.ProviderError{
			Endpoint:   "client_descriptor",
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		})
	}
	b.logger.Debug("Fetched client descriptor", "client_id", descriptor.ID, "wallets", len(descriptor.Wallets))
	return &descriptor, nil
}

type rpcRequest struct {
	JSONRPC     string `json:"jsonrpc"`
	ID          string `json:"id"`
	Method      string `json:"method"`
	Params      []any  `json:"params"`
	ChainID     string `json:"chainId"`
	GatewayURL  string `json:"gatewayUrl"`
	AutoApprove bool   `json:"autoApprove"`
}

// RPCError is an error object returned by the signer bridge.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("signer rpc error (code %d): %s", e.Code, e.Message)
}

type rpcResponse struct {
	ID     string              `json:"id"`
	Result jsoniter.RawMessage `json:"result"`
	Error  *RPCError           `json:"error"`
}

// Request sends a signer RPC call for chainID through the bridge.
func (b *Bridge) Request(ctx context.Context, method string, params []any, chainID string) (string, error) {
	gateway, ok := b.cfg.GatewayConfig[chainID]
	if !ok {
		return "", fmt.Errorf("no gateway configured for chain %s", chainID)
	}

	body := rpcRequest{
		JSONRPC:     "2.0",
		ID:          uuid.New().String(),
		Method:      method,
		Params:      params,
		ChainID:     chainID,
		GatewayURL:  gateway,
		AutoApprove: b.cfg.AutoApprove,
	}
	var out rpcResponse
	resp, err := b.bridge.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&out).
		Post(rpcPath)
	if err != nil {
		return "", wrapTransport(method, err)
	}
	if out.Error != nil {
		return "", out.Error
	}
	if resp.IsError() {
		return "", fmt.Errorf("signer bridge %s failed with status %d: %s", method, resp.StatusCode(), resp.String())
	}

	var hash string
	if err := json.Unmarshal(out.Result, &hash); err != nil || hash == "" {
		return "", fmt.Errorf("signer bridge %s returned no transaction hash: %s", method, string(out.Result))
	}
	b.logger.Info("Signer request completed", "method", method, "chain_id", chainID, "request_id", body.ID)
	return hash, nil
}

type walletResponse struct {
	Addresses entity.Addresses `json:"addresses"`
}

type backupRequest struct {
	Method      entity.BackupMethod   `json:"method"`
	Password    string                `json:"password,omitempty"`
	Gateways    map[string]string     `json:"gatewayConfig"`
	BackupTypes []entity.BackupMethod `json:"backupMethods,omitempty"`
}

// CreateWallet asks the bridge to run key generation and returns the new addresses.
func (b *Bridge) CreateWallet(ctx context.Context) (entity.Addresses, error) {
	var out walletResponse
	if err := b.postWallet(ctx, generatePath, backupRequest{Gateways: b.cfg.GatewayConfig}, &out); err != nil {
		return nil, err
	}
	return out.Addresses, nil
}

// BackupWallet asks the bridge to create a backup share stored with method.
func (b *Bridge) BackupWallet(ctx context.Context, method entity.BackupMethod, password string) error {
	return b.postWallet(ctx, backupPath, backupRequest{
		Method:      method,
		Password:    password,
		Gateways:    b.cfg.GatewayConfig,
		BackupTypes: b.cfg.BackupMethods,
	}, nil)
}

// RecoverWallet asks the bridge to restore signing shares from a backup.
func (b *Bridge) RecoverWallet(ctx context.Context, method entity.BackupMethod, password string) (entity.Addresses, error) {
	var out walletResponse
	if err := b.postWallet(ctx, recoverPath, backupRequest{
		Method:   method,
		Password: password,
		Gateways: b.cfg.GatewayConfig,
	}, &out); err != nil {
		return nil, err
	}
	return out.Addresses, nil
}

func (b *Bridge) postWallet(ctx context.Context, path string, body backupRequest, out *walletResponse) error {
	req := b.bridge.R().SetContext(ctx).SetBody(body)
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Post(path)
	if err != nil {
		return wrapTransport(path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("signer bridge %s failed with status %d: %s", path, resp.StatusCode(), resp.String())
	}
	return nil
}

func wrapTransport(op string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %s: %w", entity.ErrTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %w", entity.ErrNetwork, op, err)
}
