package restapi

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"portal_wallet/internal/app/port"
	"portal_wallet/internal/app/service"
	"portal_wallet/internal/domain/entity"
	applog "portal_wallet/internal/pkg/logger"
	"portal_wallet/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	defaultFundAmount = "0.01"
	defaultFundToken  = entity.NativeTokenSymbol
)

// WalletHandler serves the wallet API on top of the session client.
type WalletHandler struct {
	client    port.WalletSessionClient
	summaries port.BalanceSummaryService
	registry  port.ChainRegistry
	logger    port.Logger

	// defaultTarget is used when a transfer names no chain.
	defaultTarget entity.ChainTarget
}

// HandlerOption customizes a WalletHandler.
type HandlerOption func(*WalletHandler)

// WithDefaultTarget sets the chain used by transfers that omit one.
func WithDefaultTarget(target entity.ChainTarget) HandlerOption {
	return func(h *WalletHandler) { h.defaultTarget = target }
}

// NewWalletHandler creates a new instance of WalletHandler. Transfers default to the variant's test network.
func NewWalletHandler(
	client port.WalletSessionClient,
	summaries port.BalanceSummaryService,
	registry port.ChainRegistry,
	logger port.Logger,
	opts ...HandlerOption,
) *WalletHandler {
	if logger == nil {
		logger = applog.Nop()
	}
	h := &WalletHandler{
		client:        client,
		summaries:     summaries,
		registry:      registry,
		logger:        logger,
		defaultTarget: client.Variant().Testnet,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// InitSessionRequest carries the provider API key.
type InitSessionRequest struct {
	APIKey string `json:"apiKey"`
}

// SessionResponse describes the active session.
type SessionResponse struct {
	Initialized bool     `json:"initialized"`
	Variant     string   `json:"variant"`
	Chains      []string `json:"chains"`
}

// InitSession handles POST /session.
func (h *WalletHandler) InitSession(c *gin.Context) {
	var req InitSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.abortWithError(c, fmt.Errorf("%w: %v", entity.ErrMissingAPIKey, err))
		return
	}
	session, err := h.client.InitSession(req.APIKey)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	chains := make([]string, 0, len(session.Gateways()))
	for chainID := range session.Gateways() {
		chains = append(chains, chainID)
	}
	sort.Strings(chains)
	c.JSON(http.StatusOK, SessionResponse{
		Initialized: true,
		Variant:     h.client.Variant().Name,
		Chains:      chains,
	})
}

// ListChains handles GET /chains.
func (h *WalletHandler) ListChains(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"chains": h.registry.All()})
}

// WalletStatusResponse is what the home screen needs to pick its flow.
type WalletStatusResponse struct {
	Exists          bool                  `json:"exists"`
	BackedUp        bool                  `json:"backedUp"`
	RecoveryMethods []entity.BackupMethod `json:"recoveryMethods"`
}

// WalletStatus handles GET /wallet/status.
func (h *WalletHandler) WalletStatus(c *gin.Context) {
	ctx := c.Request.Context()

	exists, err := h.client.WalletExists(ctx)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	backedUp, err := h.client.IsBackedUp(ctx)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	methods, err := h.client.AvailableRecoveryMethods(ctx)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, WalletStatusResponse{Exists: exists, BackedUp: backedUp, RecoveryMethods: methods})
}

// WalletAddress handles GET /wallet/address/:chain.
func (h *WalletHandler) WalletAddress(c *gin.Context) {
	target, err := h.client.Variant().Target(c.Param("chain"))
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	address, err := h.client.WalletAddress(c.Request.Context())
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chain": target.String(), "address": address})
}

// CreateWallet handles POST /wallet.
func (h *WalletHandler) CreateWallet(c *gin.Context) {
	address, err := h.client.CreateWallet(c.Request.Context())
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"address": address})
}

// BackupRequest selects a backup method. PIN is required for password backups.
type BackupRequest struct {
	Method entity.BackupMethod `json:"method"`
	PIN    string              `json:"pin"`
}

func (r *BackupRequest) normalize() {
	if r.Method == "" {
		r.Method = entity.BackupMethodPassword
	}
}

// BackupWallet handles POST /wallet/backup.
func (h *WalletHandler) BackupWallet(c *gin.Context) {
	var req BackupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.abortWithError(c, fmt.Errorf("%w: %v", entity.ErrInvalidPin, err))
		return
	}
	req.normalize()
	if err := h.client.BackupWallet(c.Request.Context(), req.Method, req.PIN); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"backedUp": true, "method": req.Method})
}

// RecoverWallet handles POST /wallet/recover.
func (h *WalletHandler) RecoverWallet(c *gin.Context) {
	var req BackupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.abortWithError(c, fmt.Errorf("%w: %v", entity.ErrInvalidPin, err))
		return
	}
	req.normalize()
	address, err := h.client.RecoverWallet(c.Request.Context(), req.Method, req.PIN)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": address})
}

// BalancesResponse is one chain's snapshot plus the tracked-symbol view.
type BalancesResponse struct {
	Chain    string                 `json:"chain"`
	Address  string                 `json:"address"`
	Cached   bool                   `json:"cached"`
	Balances *entity.AssetBalances  `json:"balances"`
	Summary  *entity.BalanceSummary `json:"summary"`
}

// resolveAddress uses ?address= when present, otherwise the session wallet's address.
func (h *WalletHandler) resolveAddress(c *gin.Context) (string, error) {
	if address := strings.TrimSpace(c.Query("address")); address != "" {
		return address, nil
	}
	return h.client.WalletAddress(c.Request.Context())
}

// GetBalances handles GET /balances/:chain. With ?cached=true the last snapshot is served.
func (h *WalletHandler) GetBalances(c *gin.Context) {
	target, err := h.client.Variant().Target(c.Param("chain"))
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	def, err := h.registry.Resolve(target)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	address, err := h.resolveAddress(c)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	resp := BalancesResponse{Chain: def.Identifier, Address: address}
	if c.Query("cached") == "true" {
		balances, ok := h.client.LastBalances(address, target)
		if !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, APIError{Error: "no balances fetched yet for " + address})
			return
		}
		resp.Cached = true
		resp.Balances = balances
	} else {
		balances, err := h.client.FetchBalances(c.Request.Context(), address, target)
		if err != nil {
			h.abortWithError(c, err)
			return
		}
		resp.Balances = balances
	}
	resp.Summary = service.Summarize(def, address, resp.Balances, h.client.Variant().TrackedTokens)
	c.JSON(http.StatusOK, resp)
}

// SnapshotAll handles GET /balances: every target of the variant, fetched concurrently.
func (h *WalletHandler) SnapshotAll(c *gin.Context) {
	address, err := h.resolveAddress(c)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	summaries, err := h.summaries.SnapshotAll(c.Request.Context(), address)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": address, "summaries": summaries})
}

// TransferRequest is a send from the wallet screen.
type TransferRequest struct {
	Chain  string  `json:"chain"`
	To     string  `json:"to"`
	Token  string  `json:"token"`
	Amount float64 `json:"amount"`
}

func (h *WalletHandler) bindTransfer(c *gin.Context) (TransferRequest, entity.ChainTarget, bool) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.abortWithError(c, fmt.Errorf("%w: %v", entity.ErrInvalidAmount, err))
		return req, entity.ChainTargetUnknown, false
	}
	target := h.defaultTarget
	if req.Chain != "" {
		var err error
		if target, err = h.client.Variant().Target(req.Chain); err != nil {
			h.abortWithError(c, err)
			return req, entity.ChainTargetUnknown, false
		}
	}
	if err := h.registry.ValidateAddress(target, req.To); err != nil {
		h.abortWithError(c, err)
		return req, entity.ChainTargetUnknown, false
	}
	return req, target, true
}

// CreateTransfer handles POST /transfers.
func (h *WalletHandler) CreateTransfer(c *gin.Context) {
	req, target, ok := h.bindTransfer(c)
	if !ok {
		return
	}
	hash, err := h.client.BuildAndSubmitTransfer(c.Request.Context(), target, req.To, req.Token, req.Amount)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	amount, _ := utils.FormatAmount(req.Amount)
	c.JSON(http.StatusOK, entity.TransferReceipt{
		Chain:       target.String(),
		Hash:        hash,
		Token:       req.Token,
		Amount:      amount,
		To:          req.To,
		SubmittedAt: time.Now().UTC(),
	})
}

// SendPYUSD handles POST /transfers/pyusd.
func (h *WalletHandler) SendPYUSD(c *gin.Context) {
	req, target, ok := h.bindTransfer(c)
	if !ok {
		return
	}
	hash, err := h.client.SendPYUSD(c.Request.Context(), target, req.To, req.Amount)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hash": hash})
}

// TransferStatus handles GET /transfers/:chain/:hash.
func (h *WalletHandler) TransferStatus(c *gin.Context) {
	target, err := h.client.Variant().Target(c.Param("chain"))
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	status, err := h.client.TransactionStatus(c.Request.Context(), target, c.Param("hash"))
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chain": target.String(), "hash": c.Param("hash"), "status": status})
}

// FundRequest asks for test tokens. Empty fields fall back to the variant's
// test network, 0.01 and the native token.
type FundRequest struct {
	ChainID string `json:"chainId"`
	Amount  string `json:"amount"`
	Token   string `json:"token"`
}

// FundTestWallet handles POST /fund.
func (h *WalletHandler) FundTestWallet(c *gin.Context) {
	var req FundRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.abortWithError(c, fmt.Errorf("%w: %v", entity.ErrInvalidAmount, err))
			return
		}
	}
	if req.ChainID == "" {
		chainID, err := h.registry.ResolveWireChainID(h.client.Variant().Testnet)
		if err != nil {
			h.abortWithError(c, err)
			return
		}
		req.ChainID = chainID
	}
	if req.Amount == "" {
		req.Amount = defaultFundAmount
	}
	if req.Token == "" {
		req.Token = defaultFundToken
	}

	hash, err := h.client.FundTestWallet(c.Request.Context(), req.ChainID, req.Amount, req.Token)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chainId": req.ChainID, "amount": req.Amount, "token": req.Token, "hash": hash})
}
