package entity

import (
	"fmt"
	"strings"
)

// ChainTarget identifies a logical network the wallet can operate on.
type ChainTarget int

const (
	ChainTargetUnknown ChainTarget = iota
	SolanaMainnet
	SolanaDevnet
	CeloMainnet
	CeloAlfajores
)

var chainTargetNames = map[ChainTarget]string{
	SolanaMainnet: "solana-mainnet",
	SolanaDevnet:  "solana-devnet",
	CeloMainnet:   "celo-mainnet",
	CeloAlfajores: "celo-alfajores",
}

// String returns the identifier of the target, which is also its REST path segment.
func (t ChainTarget) String() string {
	if name, ok := chainTargetNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ChainTarget(%d)", int(t))
}

// ParseChainTarget accepts a full identifier such as "solana-devnet".
func ParseChainTarget(s string) (ChainTarget, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for target, name := range chainTargetNames {
		if name == needle {
			return target, nil
		}
	}
	return ChainTargetUnknown, fmt.Errorf("%w: %q", ErrUnknownChainTarget, s)
}

// ChainFamily groups chains that share an RPC dialect.
type ChainFamily string

const (
	FamilySolana ChainFamily = "solana"
	FamilyEVM    ChainFamily = "eip155"
)

// SendTransactionMethod is the signer RPC method used to sign and broadcast on this family.
func (f ChainFamily) SendTransactionMethod() string {
	switch f {
	case FamilySolana:
		return "sol_signAndSendTransaction"
	case FamilyEVM:
		return "eth_sendTransaction"
	default:
		return ""
	}
}

// Curve is the elliptic-curve family a wallet record belongs to.
type Curve string

const (
	CurveED25519   Curve = "ED25519"
	CurveSECP256K1 Curve = "SECP256K1"
)

// Variant is a product flavour: one chain family, one curve, two targets.
type Variant struct {
	Name    string
	Family  ChainFamily
	Curve   Curve
	Mainnet ChainTarget
	Testnet ChainTarget
	// TestnetAlias is how the UI names the test target ("devnet", "alfajores").
	TestnetAlias string
	// TrackedTokens are the symbols the wallet screen shows next to the native balance.
	TrackedTokens []string
}

var (
	SolanaVariant = Variant{
		Name:          "solana",
		Family:        FamilySolana,
		Curve:         CurveED25519,
		Mainnet:       SolanaMainnet,
		Testnet:       SolanaDevnet,
		TestnetAlias:  "devnet",
		TrackedTokens: []string{PYUSDTokenSymbol, USDCTokenSymbol},
	}
	CeloVariant = Variant{
		Name:          "celo",
		Family:        FamilyEVM,
		Curve:         CurveSECP256K1,
		Mainnet:       CeloMainnet,
		Testnet:       CeloAlfajores,
		TestnetAlias:  "alfajores",
		TrackedTokens: []string{CUSDTokenSymbol, USDCTokenSymbol, USDTTokenSymbol},
	}
)

// ParseVariant returns the variant named s.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case SolanaVariant.Name:
		return SolanaVariant, nil
	case CeloVariant.Name:
		return CeloVariant, nil
	default:
		return Variant{}, fmt.Errorf("unknown product variant %q", s)
	}
}

// Targets returns the mainnet and test targets, in that order.
func (v Variant) Targets() []ChainTarget {
	return []ChainTarget{v.Mainnet, v.Testnet}
}

// Supports reports whether target is one of the variant's two targets.
func (v Variant) Supports(target ChainTarget) bool {
	return target != ChainTargetUnknown && (target == v.Mainnet || target == v.Testnet)
}

// Target resolves one of the variant's symbolic names ("mainnet", "testnet",
// or the test alias) or a full identifier belonging to the variant.
func (v Variant) Target(name string) (ChainTarget, error) {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "mainnet":
		return v.Mainnet, nil
	case "testnet", v.TestnetAlias:
		return v.Testnet, nil
	default:
		target, err := ParseChainTarget(n)
		if err != nil {
			return ChainTargetUnknown, err
		}
		if !v.Supports(target) {
			return ChainTargetUnknown, fmt.Errorf("%w: %s is not part of the %s variant", ErrUnknownChainTarget, target, v.Name)
		}
		return target, nil
	}
}
