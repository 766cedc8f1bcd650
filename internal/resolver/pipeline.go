package resolver

import (
	"fmt"

	"github.com/Veraticus/sapflow/internal/model"
)

// Strategy is one named resolution tier.
type Strategy struct {
	Resolve func(c *Catalog, imp model.Imputation) Resolution
	Tier    model.Tier
}

// Options tunes the default strategies.
type Options struct {
	PlaceholderOperation string
	AreaRules            AreaRules
}

// DefaultOptions returns the production options.
func DefaultOptions() Options {
	return Options{
		PlaceholderOperation: model.PlaceholderOperation,
		AreaRules:            DefaultAreaRules(),
	}
}

// DefaultStrategies returns the tiers in production order:
// GG, exact, proximity, minimum complexity, catch-all.
func DefaultStrategies(opts Options) []Strategy {
	if opts.PlaceholderOperation == "" {
		opts.PlaceholderOperation = model.PlaceholderOperation
	}
	return []Strategy{
		{Tier: model.TierGeneralExpense, Resolve: MatchGeneralExpense},
		{Tier: model.TierExact, Resolve: MatchExact},
		{Tier: model.TierProximity, Resolve: func(c *Catalog, imp model.Imputation) Resolution {
			return ResolveProximity(c, opts.AreaRules, imp)
		}},
		{Tier: model.TierMinComplexity, Resolve: ResolveMinComplexity},
		{Tier: model.TierCatchAll, Resolve: func(c *Catalog, imp model.Imputation) Resolution {
			return ResolveCatchAll(c, opts.PlaceholderOperation, imp)
		}},
	}
}

// Pipeline runs strategies in order until one matches.
type Pipeline struct {
	catalog    *Catalog
	strategies []Strategy
}

// NewPipeline creates a pipeline over a catalog snapshot.
func NewPipeline(catalog *Catalog, strategies []Strategy) (*Pipeline, error) {
	seen := make(map[model.Tier]bool, len(strategies))
	for _, s := range strategies {
		if s.Resolve == nil {
			return nil, fmt.Errorf("strategy %q has no resolve function", s.Tier)
		}
		if seen[s.Tier] {
			return nil, fmt.Errorf("strategy %q registered twice", s.Tier)
		}
		seen[s.Tier] = true
	}
	return &Pipeline{catalog: catalog, strategies: strategies}, nil
}

// Tiers lists the strategy names in execution order.
func (p *Pipeline) Tiers() []model.Tier {
	tiers := make([]model.Tier, len(p.strategies))
	for i, s := range p.strategies {
		tiers[i] = s.Tier
	}
	return tiers
}

// Resolve runs the tiers for one imputation. A miss that names a Route skips
// forward to that tier; routes never go backwards.
func (p *Pipeline) Resolve(imp model.Imputation) Outcome {
	var (
		out   Outcome
		route model.Tier
	)

	for _, s := range p.strategies {
		if route != "" && s.Tier != route {
			continue
		}
		route = ""

		res := s.Resolve(p.catalog, imp)
		out.Trail = append(out.Trail, res.Notes...)
		if res.Matched {
			out.Resolution = res
			return out
		}
		route = res.Route
	}

	return out
}
