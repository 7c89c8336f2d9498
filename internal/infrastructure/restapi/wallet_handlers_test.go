package restapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"portal_wallet/internal/app/port"
	"portal_wallet/internal/domain/entity"
	networkdefinition "portal_wallet/internal/infrastructure/network/definition"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSession struct{ gateways map[string]string }

func (s stubSession) APIKey() string {
	return "key"
}

func (s stubSession) SDK() port.WalletSDK {
	return nil
}

func (s stubSession) Gateways() map[string]string {
	return s.gateways
}

// stubClient returns canned answers and records what it was asked.
type stubClient struct {
	variant  entity.Variant
	err      error
	exists   bool
	backedUp bool
	methods  []entity.BackupMethod
	address  string
	balances *entity.AssetBalances
	hash     string
	status   entity.TxStatus
	cached   bool

	transfers []string
	funded    []entity.FundingRequest
}

func (s *stubClient) InitSession(apiKey string) (port.SessionHandle, error) {
	if apiKey == "" {
		return nil, entity.ErrMissingAPIKey
	}
	return stubSession{gateways: map[string]string{"eip155:44787": "g1", "eip155:42220": "g2"}}, nil
}

func (s *stubClient) HasSession() bool {
	return true
}

func (s *stubClient) WalletExists(context.Context) (bool, error) {
	return s.exists, s.err
}

func (s *stubClient) IsBackedUp(context.Context) (bool, error) {
	return s.backedUp, s.err
}

func (s *stubClient) AvailableRecoveryMethods(context.Context) ([]entity.BackupMethod, error) {
	return s.methods, s.err
}

func (s *stubClient) WalletAddress(context.Context) (string, error) {
	return s.address, s.err
}

func (s *stubClient) CreateWallet(context.Context) (string, error) {
	return s.address, s.err
}

func (s *stubClient) BackupWallet(_ context.Context, _ entity.BackupMethod, pin string) error {
	if len(pin) != 4 {
		return entity.ErrInvalidPin
	}
	return s.err
}

func (s *stubClient) RecoverWallet(context.Context, entity.BackupMethod, string) (string, error) {
	return s.address, s.err
}

func (s *stubClient) FetchBalances(context.Context, string, entity.ChainTarget) (*entity.AssetBalances, error) {
	return s.balances, s.err
}

func (s *stubClient) LastBalances(string, entity.ChainTarget) (*entity.AssetBalances, bool) {
	return s.balances, s.cached
}

func (s *stubClient) BuildAndSubmitTransfer(_ context.Context, target entity.ChainTarget, recipient, token string, _ float64) (string, error) {
	s.transfers = append(s.transfers, target.String()+"/"+recipient+"/"+token)
	return s.hash, s.err
}

func (s *stubClient) SendPYUSD(context.Context, entity.ChainTarget, string, float64) (string, error) {
	return "", entity.ErrNotImplemented
}

func (s *stubClient) FundTestWallet(_ context.Context, chainID, amount, token string) (string, error) {
	s.funded = append(s.funded, entity.FundingRequest{ChainID: chainID, Amount: amount, Token: token})
	return s.hash, s.err
}

func (s *stubClient) TransactionStatus(context.Context, entity.ChainTarget, string) (entity.TxStatus, error) {
	return s.status, s.err
}

func (s *stubClient) Variant() entity.Variant {
	return s.variant
}

type stubSummaries struct {
	summaries []entity.BalanceSummary
	err       error
}

func (s stubSummaries) Summary(context.Context, string, entity.ChainTarget) (*entity.BalanceSummary, error) {
	return nil, s.err
}

func (s stubSummaries) SnapshotAll(context.Context, string) ([]entity.BalanceSummary, error) {
	return s.summaries, s.err
}

func newTestRouter(client *stubClient, summaries stubSummaries) *gin.Engine {
	gin.SetMode(gin.TestMode)
	registry := networkdefinition.NewChainRegistry("https://gw")
	return SetupRouter(NewWalletHandler(client, summaries, registry, nil), RouterOptions{})
}

func perform(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{entity.ErrInvalidAmount, http.StatusBadRequest},
		{entity.ErrInvalidPin, http.StatusBadRequest},
		{entity.ErrInvalidAddress, http.StatusBadRequest},
		{entity.ErrInvalidTxHash, http.StatusBadRequest},
		{entity.ErrUnknownChainTarget, http.StatusBadRequest},
		{entity.ErrSessionNotInitialized, http.StatusConflict},
		{entity.ErrAddressUnresolved, http.StatusNotFound},
		{entity.ErrNotImplemented, http.StatusNotImplemented},
		{entity.ErrFundingUnavailable, http.StatusNotImplemented},
		{entity.ErrNetwork, http.StatusBadGateway},
		{entity.ErrBuild, http.StatusBadGateway},
		{entity.ErrSubmit, http.StatusBadGateway},
		{entity.ErrTimeout, http.StatusGatewayTimeout},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestInitSession(t *testing.T) {
	r := newTestRouter(&stubClient{variant: entity.CeloVariant}, stubSummaries{})

	w, body := perform(t, r, http.MethodPost, "/api/v1/session", `{"apiKey":"abc"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["initialized"])
	assert.Equal(t, "celo", body["variant"])
	assert.Equal(t, []any{"eip155:42220", "eip155:44787"}, body["chains"])

	w, _ = perform(t, r, http.MethodPost, "/api/v1/session", `{"apiKey":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWalletStatus(t *testing.T) {
	client := &stubClient{
		variant:  entity.SolanaVariant,
		exists:   true,
		backedUp: true,
		methods:  []entity.BackupMethod{entity.BackupMethodPassword, entity.BackupMethodPassword},
	}
	r := newTestRouter(client, stubSummaries{})

	w, body := perform(t, r, http.MethodGet, "/api/v1/wallet/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["exists"])
	assert.Equal(t, []any{"password", "password"}, body["recoveryMethods"])

	client.err = entity.ErrSessionNotInitialized
	w, body = perform(t, r, http.MethodGet, "/api/v1/wallet/status", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, body["error"], "not initialized")
}

func TestBackupWallet_PinValidation(t *testing.T) {
	r := newTestRouter(&stubClient{variant: entity.SolanaVariant}, stubSummaries{})

	w, _ := perform(t, r, http.MethodPost, "/api/v1/wallet/backup", `{"pin":"12"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body := perform(t, r, http.MethodPost, "/api/v1/wallet/backup", `{"pin":"1234"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "password", body["method"])
}

func TestGetBalances(t *testing.T) {
	client := &stubClient{
		variant: entity.CeloVariant,
		address: "0x1111111111111111111111111111111111111111",
		balances: &entity.AssetBalances{
			NativeBalance: entity.AssetBalance{Balance: "1.5", Symbol: "CELO"},
			TokenBalances: []entity.AssetBalance{{Balance: "2", Symbol: "CUSD"}},
		},
	}
	r := newTestRouter(client, stubSummaries{})

	w, body := perform(t, r, http.MethodGet, "/api/v1/balances/alfajores", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "celo-alfajores", body["chain"])
	assert.Equal(t, client.address, body["address"])
	summary := body["summary"].(map[string]any)
	assert.Equal(t, map[string]any{"CELO": 1.5, "CUSD": 2.0, "USDC": 0.0, "USDT": 0.0}, summary["amounts"])

	w, _ = perform(t, r, http.MethodGet, "/api/v1/balances/alfajores?cached=true&address=0xabc", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = perform(t, r, http.MethodGet, "/api/v1/balances/devnet", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	client.err = entity.ErrTimeout
	w, _ = perform(t, r, http.MethodGet, "/api/v1/balances/mainnet?address=0xabc", "")
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestSnapshotAll(t *testing.T) {
	summaries := stubSummaries{summaries: []entity.BalanceSummary{
		{Target: "solana-mainnet", Address: "Sol1111", Native: "SOL", Amounts: map[string]float64{"SOL": 1}},
		{Target: "solana-devnet", Address: "Sol1111", Native: "SOL", Amounts: map[string]float64{"SOL": 2}},
	}}
	r := newTestRouter(&stubClient{variant: entity.SolanaVariant}, summaries)

	w, body := perform(t, r, http.MethodGet, "/api/v1/balances?address=Sol1111", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["summaries"], 2)
}

func TestCreateTransfer(t *testing.T) {
	client := &stubClient{variant: entity.CeloVariant, hash: "0xhash"}
	r := newTestRouter(client, stubSummaries{})

	w, body := perform(t, r, http.MethodPost, "/api/v1/transfers",
		`{"chain":"alfajores","to":"0x1111111111111111111111111111111111111111","token":"CUSD","amount":1.5}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0xhash", body["hash"])
	assert.Equal(t, "1.5", body["amount"])
	assert.Equal(t, []string{"celo-alfajores/0x1111111111111111111111111111111111111111/CUSD"}, client.transfers)

	w, _ = perform(t, r, http.MethodPost, "/api/v1/transfers", `{"chain":"alfajores","to":"not-an-address","token":"CUSD","amount":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, client.transfers, 1)

	client.err = entity.ErrSubmit
	w, _ = perform(t, r, http.MethodPost, "/api/v1/transfers",
		`{"chain":"mainnet","to":"0x1111111111111111111111111111111111111111","token":"CUSD","amount":1}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestSendPYUSD_NotImplemented(t *testing.T) {
	r := newTestRouter(&stubClient{variant: entity.SolanaVariant}, stubSummaries{})

	w, _ := perform(t, r, http.MethodPost, "/api/v1/transfers/pyusd",
		`{"chain":"devnet","to":"9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin","amount":1}`)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestTransferStatus(t *testing.T) {
	r := newTestRouter(&stubClient{variant: entity.CeloVariant, status: entity.TxStatusConfirmed}, stubSummaries{})

	w, body := perform(t, r, http.MethodGet, "/api/v1/transfers/alfajores/0xhash", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "confirmed", body["status"])
}

func TestFundTestWallet_Defaults(t *testing.T) {
	client := &stubClient{variant: entity.SolanaVariant, hash: "5fund"}
	r := newTestRouter(client, stubSummaries{})

	w, body := perform(t, r, http.MethodPost, "/api/v1/fund", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5fund", body["hash"])
	require.Len(t, client.funded, 1)
	assert.Equal(t, entity.FundingRequest{
		ChainID: "solana:EtWTRABZaYq6iMfeYKouRu166VU2xqa1",
		Amount:  "0.01",
		Token:   "NATIVE",
	}, client.funded[0])

	client.err = entity.ErrFundingUnavailable
	w, _ = perform(t, r, http.MethodPost, "/api/v1/fund", `{"chainId":"eip155:42220"}`)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestListChains(t *testing.T) {
	r := newTestRouter(&stubClient{variant: entity.CeloVariant}, stubSummaries{})

	w, body := perform(t, r, http.MethodGet, "/api/v1/chains", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["chains"], 4)
}
