package assignment

import "strings"

// Explicit category labels mapped to tiers. Legacy upstream labels are kept
// alongside the canonical ones to tolerate data published by older clients.
var categoryTiers = map[string]Tier{
	"progress":     TierProgress,
	"core-method":  TierMethodology,
	"methodology":  TierMethodology,
	"growth":       TierGrowth,
	"personalized": TierPersonalized,

	// legacy aliases
	"basics":      TierProgress,
	"curriculum":  TierProgress,
	"core":        TierMethodology,
	"extra":       TierPersonalized,
	"custom-meal": TierPersonalized,
}

// keywordRule is one step of the ordered fallback heuristic applied to the
// task title when the explicit category is absent or unrecognized.
type keywordRule struct {
	keywords []string
	tier     Tier
}

var fallbackRules = []keywordRule{
	{keywords: []string{"correction", "self-check", "recitation", "dictation"}, tier: TierMethodology},
	{keywords: []string{"reading", "chore", "exercise", "journal"}, tier: TierGrowth},
}

// ClassifyTask maps a task definition to a tier. The explicit category label
// wins; otherwise the fallback keyword rules run in order against the title
// and unmatched definitions default to TierGrowth. The second return reports
// whether the fallback (rather than the explicit category) decided, so
// callers can log mislabeled upstream data instead of hiding it.
func ClassifyTask(def TaskDef) (Tier, bool) {
	if tier, ok := categoryTiers[strings.ToLower(strings.TrimSpace(def.Category))]; ok {
		return tier, false
	}

	title := strings.ToLower(def.Title)
	for _, rule := range fallbackRules {
		for _, kw := range rule.keywords {
			if strings.Contains(title, kw) {
				return rule.tier, true
			}
		}
	}
	return TierGrowth, true
}
