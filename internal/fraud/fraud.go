// Package fraud scores transfer attempts against an ordered set of
// independent rules. Rules do not short-circuit and do not depend on each
// other, so adding or removing one never requires reasoning about order.
package fraud

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Decision is the outcome of a fraud evaluation.
type Decision string

const (
	Allow Decision = "ALLOW"
	Block Decision = "BLOCK"
)

// BlockThreshold is the aggregate risk score at which a transfer is blocked.
const BlockThreshold = 70

// Context is the ephemeral per-attempt input to an evaluation. It is built
// fresh for every attempt and never persisted.
type Context struct {
	FromWalletID  uint
	ToWalletID    uint
	UserID        uint
	Amount        decimal.Decimal
	Time          time.Time
	SenderBalance decimal.Decimal // pre-transfer balance of the payer
}

// Result is the ephemeral output of an evaluation.
type Result struct {
	RiskScore      int
	Decision       Decision
	TriggeredRules []string
}

// Rule is one independent risk signal.
type Rule interface {
	Name() string
	Triggered(ctx context.Context, fc Context) (bool, error)
	RiskPoints() int
}

// Engine evaluates every rule, sums the points of the triggered ones and
// blocks at BlockThreshold.
type Engine struct {
	rules []Rule
}

// NewEngine builds an engine over an explicit rule set.
func NewEngine(rules ...Rule) *Engine {
	return &Engine{rules: rules}
}

// Evaluate runs every rule against fc. A rule error aborts the evaluation;
// the caller must treat that as fatal for the attempt rather than score the
// transfer with partial information.
func (e *Engine) Evaluate(ctx context.Context, fc Context) (Result, error) {
	score := 0
	var triggered []string

	for _, rule := range e.rules {
		hit, err := rule.Triggered(ctx, fc)
		if err != nil {
			return Result{}, fmt.Errorf("fraud rule %s: %w", rule.Name(), err)
		}
		if hit {
			score += rule.RiskPoints()
			triggered = append(triggered, rule.Name())
		}
	}

	decision := Allow
	if score >= BlockThreshold {
		decision = Block
	}

	return Result{RiskScore: score, Decision: decision, TriggeredRules: triggered}, nil
}
