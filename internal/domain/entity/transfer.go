package entity

import (
	"encoding/json"
	"time"
)

// TransferRequest is the body sent to the build-transaction endpoint.
// Field order matters for the wire form: amount, to, token.
type TransferRequest struct {
	Amount string `json:"amount"`
	To     string `json:"to"`
	Token  string `json:"token"`
}

// TransferMetadata describes the transfer the provider built.
type TransferMetadata struct {
	Amount        string `json:"amount,omitempty"`
	FromAddress   string `json:"fromAddress,omitempty"`
	ToAddress     string `json:"toAddress,omitempty"`
	TokenAddress  string `json:"tokenAddress,omitempty"`
	TokenDecimals int    `json:"tokenDecimals,omitempty"`
	TokenSymbol   string `json:"tokenSymbol,omitempty"`
	RawAmount     string `json:"rawAmount,omitempty"`
}

// BuildTransactionResult is the unsigned payload returned by the provider.
// Transaction is an object for EVM chains and a base64 string for Solana.
type BuildTransactionResult struct {
	Transaction json.RawMessage  `json:"transaction"`
	Metadata    TransferMetadata `json:"metadata"`
}

// FundingRequest asks the provider for test tokens.
type FundingRequest struct {
	ChainID string `json:"chainId"`
	Amount  string `json:"amount"`
	Token   string `json:"token"`
}

// FundingResult is the provider's answer to a funding request.
type FundingResult struct {
	Data struct {
		TxHash string `json:"txHash"`
	} `json:"data"`
	Metadata struct {
		Amount  string `json:"amount,omitempty"`
		ChainID string `json:"chainId,omitempty"`
		Token   string `json:"token,omitempty"`
	} `json:"metadata"`
}

// TxStatus is the settlement state of a submitted transaction.
type TxStatus string

const (
	TxStatusPending   TxStatus = "pending"
	TxStatusConfirmed TxStatus = "confirmed"
	TxStatusFailed    TxStatus = "failed"
	TxStatusUnknown   TxStatus = "unknown"
)

// TransferReceipt is what a completed send returns to callers of the HTTP API.
type TransferReceipt struct {
	Chain       string    `json:"chain"`
	Hash        string    `json:"hash"`
	Token       string    `json:"token"`
	Amount      string    `json:"amount"`
	To          string    `json:"to"`
	SubmittedAt time.Time `json:"submittedAt"`
}
