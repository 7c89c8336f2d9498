package portalapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"portal_wallet/internal/app/port"
	"portal_wallet/internal/domain/entity"
	"portal_wallet/internal/pkg/metrics"
	"portal_wallet/internal/pkg/utils"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	assetsPathFmt           = "/api/v3/clients/me/chains/%s/assets"
	buildTransactionPathFmt = "/api/v3/clients/me/chains/%s/assets/send/build-transaction"
	fundPath                = "/api/v3/clients/me/fund"

	endpointAssets = "assets"
	endpointBuild  = "build_transaction"
	endpointFund   = "fund"
)

// Options configures the provider client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RateLimit  float64
	Burst      int
	MaxRetries int
	RetryDelay time.Duration
}

// Client talks to the wallet provider's REST API.
type Client struct {
	client     *fasthttp.Client
	baseURL    string
	timeout    time.Duration
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

var _ port.AssetsAPI = (*Client)(nil)

// NewClient creates a provider client. Zero-valued options get conservative defaults.
func NewClient(opts Options, logger *zap.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		client:     &fasthttp.Client{Name: "portal_wallet"},
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		timeout:    opts.Timeout,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimit), opts.Burst),
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		logger:     logger.Named("PortalAPIClient"),
	}
}

type assetsPayload struct {
	NativeBalance *entity.AssetBalance  `json:"nativeBalance"`
	TokenBalances []entity.AssetBalance `json:"tokenBalances"`
}

// GetAssets fetches native and token balances of the client on chainPath.
func (c *Client) GetAssets(ctx context.Context, apiKey, chainPath string) (balances *entity.AssetBalances, err error) {
	started := time.Now()
	defer func() { metrics.ObserveProvider(endpointAssets, started, err) }()

	requestURL := c.baseURL + fmt.Sprintf(assetsPathFmt, chainPath)
	rawBody, err := c.doWithRetry(ctx, fasthttp.MethodGet, endpointAssets, requestURL, apiKey, nil, true)
	if err != nil {
		return nil, err
	}

	var payload assetsPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		c.logger.Error("Failed to unmarshal assets response",
			zap.String("url", requestURL),
			zap.ByteString("responseBody", rawBody),
			zap.Error(err))
		return nil, fmt.Errorf("%w: failed to parse assets response from %s: %w", entity.ErrNetwork, requestURL, err)
	}
	if payload.NativeBalance == nil {
		c.logger.Error("Assets response has no nativeBalance", zap.String("url", requestURL), zap.ByteString("responseBody", rawBody))
		return nil, fmt.Errorf("%w: assets response from %s is missing nativeBalance", entity.ErrNetwork, requestURL)
	}

	tokens := payload.TokenBalances
	if tokens == nil {
		tokens = []entity.AssetBalance{}
	}
	fillBalance(payload.NativeBalance)
	for i := range tokens {
		fillBalance(&tokens[i])
	}
	c.logger.Debug("Fetched assets", zap.String("chain", chainPath), zap.Int("tokenCount", len(tokens)))
	return &entity.AssetBalances{NativeBalance: *payload.NativeBalance, TokenBalances: tokens}, nil
}

// fillBalance derives the display balance from rawBalance when the provider omits it.
func fillBalance(b *entity.AssetBalance) {
	if b.Balance != "" || b.RawBalance == "" {
		return
	}
	if formatted, err := utils.FormatRawBalance(b.RawBalance, b.Decimals); err == nil {
		b.Balance = formatted
	}
}

// BuildTransaction asks the provider to build an unsigned transfer transaction.
func (c *Client) BuildTransaction(ctx context.Context, apiKey, chainPath string, req entity.TransferRequest) (result *entity.BuildTransactionResult, err error) {
	started := time.Now()
	defer func() { metrics.ObserveProvider(endpointBuild, started, err) }()

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal transfer request: %w", entity.ErrBuild, err)
	}

	requestURL := c.baseURL + fmt.Sprintf(buildTransactionPathFmt, chainPath)
	rawBody, err := c.doWithRetry(ctx, fasthttp.MethodPost, endpointBuild, requestURL, apiKey, reqBody, true)
	if err != nil {
		var perr *entity.ProviderError
		if errors.As(err, &perr) && !perr.Retryable() {
			// The provider refused to build this transfer; nothing was sent.
			return nil, fmt.Errorf("%w: %w", entity.ErrBuild, perr)
		}
		return nil, err
	}

	var built entity.BuildTransactionResult
	if err := json.Unmarshal(rawBody, &built); err != nil {
		c.logger.Error("Failed to unmarshal build-transaction response",
			zap.String("url", requestURL),
			zap.ByteString("responseBody", rawBody),
			zap.Error(err))
		return nil, fmt.Errorf("%w: failed to parse build-transaction response: %w", entity.ErrBuild, err)
	}
	if isEmptyJSON(built.Transaction) {
		c.logger.Error("Build-transaction response has no transaction", zap.String("url", requestURL), zap.ByteString("responseBody", rawBody))
		return nil, fmt.Errorf("%w: build-transaction response from %s has no transaction", entity.ErrBuild, requestURL)
	}
	return &built, nil
}

// FundTestnetAsset requests provider-funded test tokens. Not retried.
func (c *Client) FundTestnetAsset(ctx context.Context, apiKey string, req entity.FundingRequest) (result *entity.FundingResult, err error) {
	started := time.Now()
	defer func() { metrics.ObserveProvider(endpointFund, started, err) }()

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal funding request: %w", err)
	}

	requestURL := c.baseURL + fundPath
	rawBody, err := c.doWithRetry(ctx, fasthttp.MethodPost, endpointFund, requestURL, apiKey, reqBody, false)
	if err != nil {
		var perr *entity.ProviderError
		if errors.As(err, &perr) {
			switch perr.StatusCode {
			case http.StatusNotFound, http.StatusMethodNotAllowed, http.StatusNotImplemented, http.StatusForbidden:
				return nil, fmt.Errorf("%w: %w", entity.ErrFundingUnavailable, perr)
			}
		}
		return nil, err
	}

	var funded entity.FundingResult
	if err := json.Unmarshal(rawBody, &funded); err != nil {
		return nil, fmt.Errorf("%w: failed to parse funding response: %w", entity.ErrNetwork, err)
	}
	if funded.Data.TxHash == "" {
		return nil, fmt.Errorf("%w: provider returned no funding transaction", entity.ErrFundingUnavailable)
	}
	return &funded, nil
}

func (c *Client) doWithRetry(ctx context.Context, method, endpoint, requestURL, apiKey string, body []byte, retry bool) ([]byte, error) {
	attempts := 1
	if retry {
		attempts += c.maxRetries
	}

	for attempt := 1; ; attempt++ {
		rawBody, err := c.do(ctx, method, endpoint, requestURL, apiKey, body)
		if err == nil {
			return rawBody, nil
		}
		if attempt >= attempts || !isRetryable(err) {
			return nil, err
		}

		wait := c.retryDelay * time.Duration(attempt)
		c.logger.Warn("Provider request failed, retrying",
			zap.String("endpoint", endpoint),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, classifyTransportError(ctx.Err())
		case <-time.After(wait):
		}
	}
}

func (c *Client) do(ctx context.Context, method, endpoint, requestURL, apiKey string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, classifyTransportError(err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(body)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	c.logger.Debug("Requesting wallet provider", zap.String("method", method), zap.String("url", requestURL))

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		c.logger.Error("Failed to execute request to wallet provider", zap.String("url", requestURL), zap.Error(err))
		return nil, classifyTransportError(err)
	}

	// resp is released on return, so the body must be copied out.
	rawBody := bytes.Clone(resp.Body())
	if status := resp.StatusCode(); status < 200 || status >= 300 {
		c.logger.Error("Wallet provider request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", status),
			zap.ByteString("responseBody", rawBody))
		return nil, fmt.Errorf("%w: %w", entity.ErrNetwork, &entity.ProviderError{
			Endpoint:   endpoint,
			StatusCode: status,
			Body:       string(rawBody),
		})
	}
	return rawBody, nil
}

func classifyTransportError(err error) error {
	if errors.Is(err, fasthttp.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", entity.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", entity.ErrNetwork, err)
}

func isRetryable(err error) bool {
	if errors.Is(err, entity.ErrTimeout) || errors.Is(err, context.Canceled) {
		return false
	}
	var perr *entity.ProviderError
	if errors.As(err, &perr) {
		return perr.Retryable()
	}
	return errors.Is(err, entity.ErrNetwork)
}

func isEmptyJSON(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`)) || bytes.Equal(trimmed, []byte("{}"))
}
