// Package exchange wires credentials to execution capabilities.
package exchange

import (
	"context"
	"time"

	"nexus-trading-bot/internal/exchange/binance"
	"nexus-trading-bot/internal/exchange/execobs"
	"nexus-trading-bot/internal/exchange/paper"
	"nexus-trading-bot/internal/interfaces"
	"nexus-trading-bot/internal/types"
)

// Provider resolves an account's credentials and hands back the
// matching execution capability. Credentials are verified in paper mode
// too: an account without keys is skipped regardless of mode, so
// flipping to LIVE never changes which accounts trade.
type Provider struct {
	resolver interfaces.CredentialResolver
	paper    bool

	baseURL      string
	timeout      time.Duration
	paperBalance float64
}

var _ interfaces.ExecutionProvider = (*Provider)(nil)

func NewProvider(resolver interfaces.CredentialResolver, paperMode bool, baseURL string, timeout time.Duration, paperBalance float64) *Provider {
	return &Provider{
		resolver:     resolver,
		paper:        paperMode,
		baseURL:      baseURL,
		timeout:      timeout,
		paperBalance: paperBalance,
	}
}

func (p *Provider) ForAccount(ctx context.Context, account types.Account) (interfaces.Execution, error) {
	creds, err := p.resolver.Resolve(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	if p.paper {
		return execobs.Wrap(paper.New(p.paperBalance)), nil
	}
	return execobs.Wrap(binance.NewTrading(p.baseURL, p.timeout, creds)), nil
}
