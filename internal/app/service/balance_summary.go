package service

import (
	"context"
	"fmt"

	"portal_wallet/internal/app/port"
	"portal_wallet/internal/domain/entity"
	applog "portal_wallet/internal/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// BalanceSummaryServiceImpl implements port.BalanceSummaryService.
type BalanceSummaryServiceImpl struct {
	client                port.WalletSessionClient
	registry              port.ChainRegistry
	logger                port.Logger
	maxConcurrentRoutines int
}

// NewBalanceSummaryService creates a new instance of BalanceSummaryServiceImpl.
func NewBalanceSummaryService(
	client port.WalletSessionClient,
	registry port.ChainRegistry,
	l port.Logger,
	maxRoutines int,
) port.BalanceSummaryService {
	if maxRoutines <= 0 {
		maxRoutines = 1
	}
	if l == nil {
		l = applog.Nop()
	}
	return &BalanceSummaryServiceImpl{
		client:                client,
		registry:              registry,
		logger:                l,
		maxConcurrentRoutines: maxRoutines,
	}
}

// Summary fetches fresh balances for address on target and reduces them to
// the native asset plus the variant's tracked tokens. Missing tokens read as zero.
func (s *BalanceSummaryServiceImpl) Summary(ctx context.Context, address string, target entity.ChainTarget) (*entity.BalanceSummary, error) {
	def, err := s.registry.Resolve(target)
	if err != nil {
		return nil, err
	}
	balances, err := s.client.FetchBalances(ctx, address, target)
	if err != nil {
		return nil, err
	}
	summary := Summarize(def, address, balances, s.client.Variant().TrackedTokens)
	s.logger.Debug("Built balance summary", "chain", def.Identifier, "address", address, "symbols", len(summary.Amounts))
	return summary, nil
}

// SnapshotAll summarizes address on both of the variant's targets concurrently.
// Results follow Variant.Targets order; the first failure cancels the rest.
func (s *BalanceSummaryServiceImpl) SnapshotAll(ctx context.Context, address string) ([]entity.BalanceSummary, error) {
	targets := s.client.Variant().Targets()
	results := make([]entity.BalanceSummary, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrentRoutines)
	for i, target := range targets {
		g.Go(func() error {
			summary, err := s.Summary(gctx, address, target)
			if err != nil {
				return fmt.Errorf("snapshot %s: %w", target, err)
			}
			results[i] = *summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("Balance snapshot failed", "address", address, "error", err)
		return nil, err
	}
	return results, nil
}

// Summarize builds the symbol->amount view from a snapshot.
func Summarize(def entity.NetworkDefinition, address string, balances *entity.AssetBalances, tracked []string) *entity.BalanceSummary {
	amounts := make(map[string]float64, len(tracked)+1)
	native := def.NativeSymbol
	if balances == nil {
		balances = &entity.AssetBalances{}
	}
	amounts[native] = balances.NativeBalance.Float()
	for _, symbol := range tracked {
		if tb, ok := balances.Token(symbol); ok {
			amounts[symbol] = tb.Float()
		} else {
			amounts[symbol] = 0
		}
	}
	return &entity.BalanceSummary{
		Target:  def.Identifier,
		Address: address,
		Native:  native,
		Amounts: amounts,
	}
}
