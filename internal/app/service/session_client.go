package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"portal_wallet/internal/app/port"
	"portal_wallet/internal/domain/entity"
	applog "portal_wallet/internal/pkg/logger"
	"portal_wallet/internal/pkg/metrics"
	"portal_wallet/internal/pkg/utils"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const pinLength = 4

// Session is the wallet session bound to one API key.
type Session struct {
	apiKey   string
	sdk      port.WalletSDK
	gateways map[string]string
}

var _ port.SessionHandle = (*Session)(nil)

func (s *Session) APIKey() string      { return s.apiKey }
func (s *Session) SDK() port.WalletSDK { return s.sdk }

// Gateways returns a copy of the gateway map bound into the SDK.
func (s *Session) Gateways() map[string]string {
	out := make(map[string]string, len(s.gateways))
	for k, v := range s.gateways {
		out[k] = v
	}
	return out
}

// SessionClientOptions tunes a SessionClient.
type SessionClientOptions struct {
	Variant entity.Variant
	// SignTimeout bounds the signer call of a transfer. Zero means the caller's context only.
	SignTimeout    time.Duration
	DisableFunding bool
}

// SessionClient implements port.WalletSessionClient.
type SessionClient struct {
	registry      port.ChainRegistry
	assets        port.AssetsAPI
	sdkFactory    port.SDKFactory
	statusClients port.GatewayClientProvider
	cache         port.BalanceCache
	logger        port.Logger
	opts          SessionClientOptions

	mu      sync.RWMutex
	session *Session
}

var _ port.WalletSessionClient = (*SessionClient)(nil)

// NewSessionClient creates a client with no session. statusClients and cache may be nil.
func NewSessionClient(
	registry port.ChainRegistry,
	assets port.AssetsAPI,
	sdkFactory port.SDKFactory,
	statusClients port.GatewayClientProvider,
	cache port.BalanceCache,
	logger port.Logger,
	opts SessionClientOptions,
) *SessionClient {
	if logger == nil {
		logger = applog.Nop()
	}
	if opts.Variant.Name == "" {
		opts.Variant = entity.SolanaVariant
	}
	return &SessionClient{
		registry:      registry,
		assets:        assets,
		sdkFactory:    sdkFactory,
		statusClients: statusClients,
		cache:         cache,
		logger:        logger,
		opts:          opts,
	}
}

// Variant returns the product variant the client operates on.
func (c *SessionClient) Variant() entity.Variant { return c.opts.Variant }

// InitSession returns the session for apiKey, creating it on first use or when the key changes.
func (c *SessionClient) InitSession(apiKey string) (port.SessionHandle, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return nil, entity.ErrMissingAPIKey
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil && c.session.apiKey == key {
		return c.session, nil
	}

	gateways := c.registry.GatewayConfig()
	sdk, err := c.sdkFactory(port.SDKConfig{
		APIKey:        key,
		GatewayConfig: gateways,
		AutoApprove:   true,
		BackupMethods: []entity.BackupMethod{entity.BackupMethodPassword},
	})
	if err != nil {
		return nil, fmt.Errorf("create wallet sdk: %w", err)
	}

	replaced := c.session != nil
	c.session = &Session{
		apiKey:   key,
		sdk:      sdk,
		gateways: gateways,
	}
	metrics.SessionsCreated.Inc()
	c.logger.Info("Wallet session initialized", "gateways", len(gateways), "replaced", replaced)
	return c.session, nil
}

// HasSession reports whether InitSession has succeeded.
func (c *SessionClient) HasSession() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session != nil
}

func (c *SessionClient) current() (*Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil, entity.ErrSessionNotInitialized
	}
	return c.session, nil
}

func (c *SessionClient) descriptor(ctx context.Context) (*entity.ClientDescriptor, error) {
	sess, err := c.current()
	if err != nil {
		return nil, err
	}
	d, err := sess.SDK().GetClientDescriptor(ctx)
	if err != nil {
		return nil, fmt.Errorf("get client descriptor: %w", err)
	}
	if d == nil {
		return &entity.ClientDescriptor{}, nil
	}
	return d, nil
}

// completedShares walks every wallet of curve and returns its completed pairs, in order.
func completedShares(
	wallets []entity.WalletRecord,
	curve entity.Curve,
	pairs func(entity.WalletRecord) []entity.SharePair,
) []entity.SharePair {
	out := make([]entity.SharePair, 0)
	for _, w := range wallets {
		if !strings.EqualFold(string(w.Curve), string(curve)) {
			continue
		}
		for _, p := range pairs(w) {
			if isCompleted(p.Status) {
				out = append(out, p)
			}
		}
	}
	return out
}

func isCompleted(status entity.SharePairStatus) bool {
	switch status {
	case entity.SharePairStatusCompleted:
		return true
	case entity.SharePairStatusPending, entity.SharePairStatusIncomplete:
		return false
	default:
		// unknown statuses never match
		return false
	}
}

func signingShares(w entity.WalletRecord) []entity.SharePair { return w.SigningSharePairs }
func backupShares(w entity.WalletRecord) []entity.SharePair  { return w.BackupSharePairs }

// WalletExists reports whether a wallet of the variant's curve has a completed signing share.
func (c *SessionClient) WalletExists(ctx context.Context) (bool, error) {
	d, err := c.descriptor(ctx)
	if err != nil {
		return false, err
	}
	return len(completedShares(d.Wallets, c.opts.Variant.Curve, signingShares)) > 0, nil
}

// IsBackedUp reports whether a wallet of the variant's curve has a completed backup share.
func (c *SessionClient) IsBackedUp(ctx context.Context) (bool, error) {
	d, err := c.descriptor(ctx)
	if err != nil {
		return false, err
	}
	return len(completedShares(d.Wallets, c.opts.Variant.Curve, backupShares)) > 0, nil
}

// AvailableRecoveryMethods lists the backup method of every completed backup share.
// Duplicates are kept; the result is never nil.
func (c *SessionClient) AvailableRecoveryMethods(ctx context.Context) ([]entity.BackupMethod, error) {
	d, err := c.descriptor(ctx)
	if err != nil {
		return nil, err
	}
	shares := completedShares(d.Wallets, c.opts.Variant.Curve, backupShares)
	methods := make([]entity.BackupMethod, 0, len(shares))
	for _, s := range shares {
		methods = append(methods, s.BackupMethod)
	}
	return methods, nil
}

// WalletAddress returns the wallet's address in the variant's namespace.
func (c *SessionClient) WalletAddress(ctx context.Context) (string, error) {
	d, err := c.descriptor(ctx)
	if err != nil {
		return "", err
	}
	addr := entity.AddressesFromDescriptor(d)[c.opts.Variant.Family]
	if addr == "" {
		return "", fmt.Errorf("%w: no %s address on client %s", entity.ErrAddressUnresolved, c.opts.Variant.Family, d.ID)
	}
	return addr, nil
}

// CreateWallet runs key generation through the SDK and returns the variant's address.
func (c *SessionClient) CreateWallet(ctx context.Context) (string, error) {
	sess, err := c.current()
	if err != nil {
		return "", err
	}
	addrs, err := sess.SDK().CreateWallet(ctx)
	if err != nil {
		return "", fmt.Errorf("create wallet: %w", err)
	}
	return c.addressFrom(addrs)
}

// BackupWallet stores a backup share with method. Password backups take a 4-digit PIN.
func (c *SessionClient) BackupWallet(ctx context.Context, method entity.BackupMethod, pin string) error {
	if err := validatePin(method, pin); err != nil {
		return err
	}
	sess, err := c.current()
	if err != nil {
		return err
	}
	if err := sess.SDK().BackupWallet(ctx, method, pin); err != nil {
		return fmt.Errorf("backup wallet with %s: %w", method, err)
	}
	c.logger.Info("Wallet backed up", "method", method)
	return nil
}

// RecoverWallet restores signing shares from a backup and returns the variant's address.
func (c *SessionClient) RecoverWallet(ctx context.Context, method entity.BackupMethod, pin string) (string, error) {
	if err := validatePin(method, pin); err != nil {
		return "", err
	}
	sess, err := c.current()
	if err != nil {
		return "", err
	}
	addrs, err := sess.SDK().RecoverWallet(ctx, method, pin)
	if err != nil {
		return "", fmt.Errorf("recover wallet with %s: %w", method, err)
	}
	c.logger.Info("Wallet recovered", "method", method)
	return c.addressFrom(addrs)
}

func (c *SessionClient) addressFrom(addrs entity.Addresses) (string, error) {
	addr := addrs[c.opts.Variant.Family]
	if addr == "" {
		return "", fmt.Errorf("%w: sdk returned no %s address", entity.ErrAddressUnresolved, c.opts.Variant.Family)
	}
	return addr, nil
}

func validatePin(method entity.BackupMethod, pin string) error {
	if method != entity.BackupMethodPassword {
		return nil
	}
	if len(pin) != pinLength {
		return fmt.Errorf("%w: must be %d digits", entity.ErrInvalidPin, pinLength)
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: must be %d digits", entity.ErrInvalidPin, pinLength)
		}
	}
	return nil
}

// FetchBalances queries the provider for the address's holdings on target and caches the snapshot.
func (c *SessionClient) FetchBalances(ctx context.Context, address string, target entity.ChainTarget) (*entity.AssetBalances, error) {
	sess, err := c.current()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(address) == "" {
		return nil, entity.ErrAddressUnresolved
	}
	if err := c.checkTarget(target); err != nil {
		return nil, err
	}
	path, err := c.registry.ResolveChainPath(target)
	if err != nil {
		return nil, err
	}

	balances, err := c.assets.GetAssets(ctx, sess.apiKey, path)
	if err != nil {
		c.logger.Warn("Failed to fetch balances", "chain", path, "address", address, "error", err)
		return nil, err
	}
	if c.cache != nil {
		c.cache.Store(address, target, balances)
	}
	c.logger.Debug("Fetched balances", "chain", path, "address", address, "tokens", len(balances.TokenBalances))
	return balances, nil
}

// LastBalances returns the most recent snapshot fetched for address on target.
func (c *SessionClient) LastBalances(address string, target entity.ChainTarget) (*entity.AssetBalances, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Load(address, target)
}

// BuildAndSubmitTransfer has the provider build a transfer and signs and broadcasts it
// through the SDK. The hash is returned unchanged. Nothing here is retried.
func (c *SessionClient) BuildAndSubmitTransfer(
	ctx context.Context,
	target entity.ChainTarget,
	recipient, tokenSymbol string,
	amount float64,
) (string, error) {
	amountStr, err := utils.FormatAmount(amount)
	if err != nil {
		return "", err
	}
	sess, err := c.current()
	if err != nil {
		return "", err
	}
	def, err := c.resolve(target)
	if err != nil {
		return "", err
	}

	built, err := c.assets.BuildTransaction(ctx, sess.apiKey, def.Identifier, entity.TransferRequest{
		Amount: amountStr,
		To:     recipient,
		Token:  tokenSymbol,
	})
	if err != nil {
		return "", err
	}

	params, err := submitParams(def.Family, built.Transaction)
	if err != nil {
		return "", err
	}
	method := def.Family.SendTransactionMethod()

	signCtx := ctx
	if c.opts.SignTimeout > 0 {
		var cancel context.CancelFunc
		signCtx, cancel = context.WithTimeout(ctx, c.opts.SignTimeout)
		defer cancel()
	}

	hash, err := sess.SDK().Request(signCtx, method, params, def.ChainID)
	metrics.SignerRequests.WithLabelValues(method, metrics.Outcome(err)).Inc()
	if err != nil {
		if errors.Is(err, entity.ErrTimeout) || errors.Is(signCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s on %s: %v", entity.ErrTimeout, method, def.ChainID, err)
		}
		// Submit failures must not unwrap to ErrNetwork.
		return "", fmt.Errorf("%w: %s on %s: %v", entity.ErrSubmit, method, def.ChainID, err)
	}
	if hash == "" {
		return "", fmt.Errorf("%w: %s on %s returned an empty hash", entity.ErrSubmit, method, def.ChainID)
	}

	c.logger.Info("Transfer submitted", "chain", def.Identifier, "token", tokenSymbol, "amount", amountStr, "hash", hash)
	return hash, nil
}

// checkTarget rejects targets outside the client's variant.
func (c *SessionClient) checkTarget(target entity.ChainTarget) error {
	if !c.opts.Variant.Supports(target) {
		return fmt.Errorf("%w: %s is not part of the %s variant", entity.ErrUnknownChainTarget, target, c.opts.Variant.Name)
	}
	return nil
}

func (c *SessionClient) resolve(target entity.ChainTarget) (entity.NetworkDefinition, error) {
	if err := c.checkTarget(target); err != nil {
		return entity.NetworkDefinition{}, err
	}
	return c.registry.Resolve(target)
}

// submitParams shapes the built transaction for the family's send method:
// a JSON object for EVM chains, a serialized string for Solana.
func submitParams(family entity.ChainFamily, raw []byte) ([]any, error) {
	switch family {
	case entity.FamilyEVM:
		var tx map[string]any
		if err := json.Unmarshal(raw, &tx); err != nil || len(tx) == 0 {
			return nil, fmt.Errorf("%w: expected a transaction object for %s", entity.ErrBuild, family)
		}
		return []any{tx}, nil
	case entity.FamilySolana:
		var tx string
		if err := json.Unmarshal(raw, &tx); err != nil || tx == "" {
			return nil, fmt.Errorf("%w: expected a serialized transaction for %s", entity.ErrBuild, family)
		}
		return []any{tx}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported chain family %q", entity.ErrBuild, family)
	}
}

// SendPYUSD is not available; use BuildAndSubmitTransfer with the PYUSD symbol.
func (c *SessionClient) SendPYUSD(_ context.Context, target entity.ChainTarget, _ string, _ float64) (string, error) {
	return "", fmt.Errorf("%w: dedicated PYUSD send on %s", entity.ErrNotImplemented, target)
}

// FundTestWallet asks the provider to send test tokens on a test network. Never retried.
func (c *SessionClient) FundTestWallet(ctx context.Context, chainID, amount, tokenSymbol string) (string, error) {
	if c.opts.DisableFunding {
		return "", fmt.Errorf("%w: funding is disabled", entity.ErrFundingUnavailable)
	}
	sess, err := c.current()
	if err != nil {
		return "", err
	}
	def, ok := c.registry.ByChainID(chainID)
	if !ok {
		return "", fmt.Errorf("%w: chain id %q", entity.ErrUnknownChainTarget, chainID)
	}
	if err := c.checkTarget(def.Target); err != nil {
		return "", err
	}
	if !def.IsTestnet {
		return "", fmt.Errorf("%w: %s is not a test network", entity.ErrFundingUnavailable, def.Identifier)
	}
	if _, err := utils.ParseAmount(amount); err != nil {
		return "", err
	}

	res, err := c.assets.FundTestnetAsset(ctx, sess.apiKey, entity.FundingRequest{
		ChainID: chainID,
		Amount:  amount,
		Token:   tokenSymbol,
	})
	if err != nil {
		return "", err
	}
	c.logger.Info("Test wallet funded", "chain", def.Identifier, "token", tokenSymbol, "amount", amount, "hash", res.Data.TxHash)
	return res.Data.TxHash, nil
}

// TransactionStatus asks the target's gateway how a submitted transaction settled.
func (c *SessionClient) TransactionStatus(ctx context.Context, target entity.ChainTarget, txHash string) (entity.TxStatus, error) {
	sess, err := c.current()
	if err != nil {
		return entity.TxStatusUnknown, err
	}
	if c.statusClients == nil {
		return entity.TxStatusUnknown, fmt.Errorf("%w: no gateway status clients configured", entity.ErrNotImplemented)
	}
	if strings.TrimSpace(txHash) == "" {
		return entity.TxStatusUnknown, fmt.Errorf("%w: hash is required", entity.ErrInvalidTxHash)
	}
	def, err := c.resolve(target)
	if err != nil {
		return entity.TxStatusUnknown, err
	}
	client, err := c.statusClients.GetClient(ctx, def, sess.apiKey)
	if err != nil {
		return entity.TxStatusUnknown, err
	}
	return client.TransactionStatus(ctx, txHash)
}
