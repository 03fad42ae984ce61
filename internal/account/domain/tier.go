package domain

import "strings"

// tierBySlug maps catalog plan slugs to account tiers. Exact matches win over
// the substring fallback so a slug like "entreprise-legacy" cannot be
// misclassified by fuzzy matching.
var tierBySlug = map[string]PlanTier{
	"free":              PlanTierFree,
	"free-monthly":      PlanTierFree,
	"pro":               PlanTierPro,
	"pro-monthly":       PlanTierPro,
	"pro-annual":        PlanTierPro,
	"enterprise":        PlanTierEnterprise,
	"enterprise-annual": PlanTierEnterprise,
}

// TierForSlug resolves the coarse tier for a catalog plan slug. Unknown slugs
// fall back to substring matching with PRO as the default, mirroring how
// accounts were classified historically.
func TierForSlug(slug string) PlanTier {
	normalized := strings.ToLower(strings.TrimSpace(slug))
	if tier, ok := tierBySlug[normalized]; ok {
		return tier
	}

	switch {
	case strings.Contains(normalized, "enterprise"):
		return PlanTierEnterprise
	case strings.Contains(normalized, "free"):
		return PlanTierFree
	default:
		return PlanTierPro
	}
}
