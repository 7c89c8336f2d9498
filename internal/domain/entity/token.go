package entity

// Token symbols understood by the provider's build-transaction endpoint.
const (
	NativeTokenSymbol = "NATIVE"
	SOLTokenSymbol    = "SOL"
	CELOTokenSymbol   = "CELO"
	CUSDTokenSymbol   = "CUSD"
	USDCTokenSymbol   = "USDC"
	USDTTokenSymbol   = "USDT"
	PYUSDTokenSymbol  = "PYUSD"
)
