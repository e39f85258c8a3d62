package main

import "github.com/shopspring/decimal"

// CIRule is the payout schedule of one critical illness tier.
// Fractions apply to the slot's total CI sum assured; recovery bonuses are fixed amounts.
type CIRule struct {
	Tier             CITier
	Severe           decimal.Decimal
	Intermediate     decimal.Decimal
	Early            decimal.Decimal
	DiabetesRecovery int64
	CancerRecovery   int64
}

var ciRules = map[CITier]CIRule{
	Tier36: {
		Tier:         Tier36,
		Severe:       decimal.NewFromInt(1),
		Intermediate: decimal.Zero,
		Early:        decimal.Zero,
	},
	Tier77: {
		Tier:             Tier77,
		Severe:           decimal.NewFromInt(1),
		Intermediate:     decimal.NewFromInt(1),
		Early:            decimal.Zero,
		DiabetesRecovery: 20000,
		CancerRecovery:   10000,
	},
	Tier157: {
		Tier:             Tier157,
		Severe:           decimal.NewFromInt(1),
		Intermediate:     decimal.NewFromInt(1),
		Early:            decimal.RequireFromString("0.5"),
		DiabetesRecovery: 30000,
		CancerRecovery:   20000,
	},
}

// CIRuleFor returns the rule for a tier. Unknown tiers fall back to tier 36.
func CIRuleFor(tier CITier) CIRule {
	if rule, ok := ciRules[tier]; ok {
		return rule
	}
	return ciRules[Tier36]
}

// CITiers returns all tiers from narrowest to broadest cover
func CITiers() []CITier {
	return []CITier{Tier36, Tier77, Tier157}
}
