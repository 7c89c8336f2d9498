package networkdefinition

import (
	"fmt"
	"sort"
	"strings"

	"portal_wallet/internal/app/port"
	"portal_wallet/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
)

// Genesis hashes and chain ids of the supported networks.
const (
	solanaMainnetGenesis = "5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp"
	solanaDevnetGenesis  = "EtWTRABZaYq6iMfeYKouRu166VU2xqa1"
	celoMainnetChainID   = "42220"
	celoAlfajoresChainID = "44787"
)

// Predefined network definitions. GatewayURL is filled in by NewChainRegistry.
var ( //nolint:gochecknoglobals // Global for definitions
	SolanaMainnet = entity.NetworkDefinition{
		Target:           entity.SolanaMainnet,
		Identifier:       "solana-mainnet",
		Name:             "Solana Mainnet",
		ChainID:          "solana:" + solanaMainnetGenesis,
		Family:           entity.FamilySolana,
		NativeSymbol:     entity.SOLTokenSymbol,
		Decimals:         9,
		BlockExplorerURL: "https://explorer.solana.com",
	}
	SolanaDevnet = entity.NetworkDefinition{
		Target:           entity.SolanaDevnet,
		Identifier:       "solana-devnet",
		Name:             "Solana Devnet",
		ChainID:          "solana:" + solanaDevnetGenesis,
		Family:           entity.FamilySolana,
		NativeSymbol:     entity.SOLTokenSymbol,
		Decimals:         9,
		BlockExplorerURL: "https://explorer.solana.com/?cluster=devnet",
		IsTestnet:        true,
	}
	CeloMainnet = entity.NetworkDefinition{
		Target:           entity.CeloMainnet,
		Identifier:       "celo-mainnet",
		Name:             "Celo Mainnet",
		ChainID:          "eip155:" + celoMainnetChainID,
		Family:           entity.FamilyEVM,
		NativeSymbol:     entity.CELOTokenSymbol,
		Decimals:         18,
		BlockExplorerURL: "https://celoscan.io",
	}
	CeloAlfajores = entity.NetworkDefinition{
		Target:           entity.CeloAlfajores,
		Identifier:       "celo-alfajores",
		Name:             "Celo Alfajores",
		ChainID:          "eip155:" + celoAlfajoresChainID,
		Family:           entity.FamilyEVM,
		NativeSymbol:     entity.CELOTokenSymbol,
		Decimals:         18,
		BlockExplorerURL: "https://alfajores.celoscan.io",
		IsTestnet:        true,
	}
)

// ChainRegistry is the immutable lookup table of supported networks.
type ChainRegistry struct {
	byTarget map[entity.ChainTarget]entity.NetworkDefinition
}

var _ port.ChainRegistry = (*ChainRegistry)(nil)

// NewChainRegistry builds the registry, deriving each gateway URL from
// gatewayBaseURL as <base>/<namespace>/<reference>.
func NewChainRegistry(gatewayBaseURL string) *ChainRegistry {
	base := strings.TrimRight(gatewayBaseURL, "/")
	defs := []entity.NetworkDefinition{SolanaMainnet, SolanaDevnet, CeloMainnet, CeloAlfajores}

	r := &ChainRegistry{byTarget: make(map[entity.ChainTarget]entity.NetworkDefinition, len(defs))}
	for _, def := range defs {
		namespace, reference, _ := strings.Cut(def.ChainID, ":")
		def.GatewayURL = fmt.Sprintf("%s/%s/%s", base, namespace, reference)
		r.byTarget[def.Target] = def
	}
	return r
}

// Resolve returns the full definition of target.
func (r *ChainRegistry) Resolve(target entity.ChainTarget) (entity.NetworkDefinition, error) {
	def, ok := r.byTarget[target]
	if !ok {
		return entity.NetworkDefinition{}, fmt.Errorf("%w: %s", entity.ErrUnknownChainTarget, target)
	}
	return def, nil
}

// ResolveChainPath returns the REST path segment, e.g. "solana-devnet".
func (r *ChainRegistry) ResolveChainPath(target entity.ChainTarget) (string, error) {
	def, err := r.Resolve(target)
	if err != nil {
		return "", err
	}
	return def.Identifier, nil
}

// ResolveWireChainID returns the chain id used by the signer, e.g. "eip155:44787".
func (r *ChainRegistry) ResolveWireChainID(target entity.ChainTarget) (string, error) {
	def, err := r.Resolve(target)
	if err != nil {
		return "", err
	}
	return def.ChainID, nil
}

// IsTestNetwork reports whether target is a test network.
func (r *ChainRegistry) IsTestNetwork(target entity.ChainTarget) (bool, error) {
	def, err := r.Resolve(target)
	if err != nil {
		return false, err
	}
	return def.IsTestnet, nil
}

// ByChainID returns the definition whose wire chain id equals chainID.
func (r *ChainRegistry) ByChainID(chainID string) (entity.NetworkDefinition, bool) {
	for _, def := range r.byTarget {
		if def.ChainID == chainID {
			return def, true
		}
	}
	return entity.NetworkDefinition{}, false
}

// ByIdentifier returns the definition with the given identifier (case-insensitive).
func (r *ChainRegistry) ByIdentifier(identifier string) (entity.NetworkDefinition, bool) {
	for _, def := range r.byTarget {
		if strings.EqualFold(def.Identifier, identifier) {
			return def, true
		}
	}
	return entity.NetworkDefinition{}, false
}

// All returns every definition ordered by target.
func (r *ChainRegistry) All() []entity.NetworkDefinition {
	out := make([]entity.NetworkDefinition, 0, len(r.byTarget))
	for _, def := range r.byTarget {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Target < out[j].Target })
	return out
}

// GatewayConfig returns a new map of wire chain id -> gateway URL.
func (r *ChainRegistry) GatewayConfig() map[string]string {
	out := make(map[string]string, len(r.byTarget))
	for _, def := range r.byTarget {
		out[def.ChainID] = def.GatewayURL
	}
	return out
}

// ValidateAddress checks that address is well formed for target's chain family.
func (r *ChainRegistry) ValidateAddress(target entity.ChainTarget, address string) error {
	def, err := r.Resolve(target)
	if err != nil {
		return err
	}
	switch def.Family {
	case entity.FamilyEVM:
		if !common.IsHexAddress(address) {
			return fmt.Errorf("%w: %q is not a hex address", entity.ErrInvalidAddress, address)
		}
	case entity.FamilySolana:
		if _, err := solana.PublicKeyFromBase58(address); err != nil {
			return fmt.Errorf("%w: %q is not a base58 public key: %v", entity.ErrInvalidAddress, address, err)
		}
	default:
		return fmt.Errorf("%w: no address rules for family %s", entity.ErrInvalidAddress, def.Family)
	}
	return nil
}
