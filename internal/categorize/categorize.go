// Package categorize assigns a spending category to a transaction
// description using an ordered list of keyword rules. Matching is
// lowercase substring containment, first rule wins, and descriptions
// that match nothing fall back to Other.
package categorize

import (
	"strings"

	"finboard/internal/core"
)

// Rule maps a keyword list to one category. Rules are evaluated in
// slice order; the first rule with a matching keyword decides.
type Rule struct {
	Category core.Category `yaml:"category"`
	Keywords []string      `yaml:"keywords"`
}

// Categorizer holds an ordered rule set. The zero value is not usable;
// construct with New or Default.
type Categorizer struct {
	rules []Rule
}

// Default returns a categorizer with the built-in rule table.
func Default() *Categorizer {
	return &Categorizer{rules: DefaultRules()}
}

// New returns a categorizer over the given rules. Keywords are
// lowercased once up front so Categorize stays allocation-free.
func New(rules []Rule) *Categorizer {
	normalized := make([]Rule, len(rules))
	for i, r := range rules {
		kws := make([]string, len(r.Keywords))
		for j, kw := range r.Keywords {
			kws[j] = strings.ToLower(kw)
		}
		normalized[i] = Rule{Category: r.Category, Keywords: kws}
	}
	return &Categorizer{rules: normalized}
}

// DefaultRules returns the built-in rule table in priority order.
func DefaultRules() []Rule {
	return []Rule{
		{core.CategoryFoodGroceries, []string{"grocery", "supermarket", "food", "snacks"}},
		{core.CategoryEatingOut, []string{"restaurant", "cafe", "dining", "takeout", "delivery"}},
		{core.CategoryUtilities, []string{"electricity", "water", "gas", "internet", "phone", "wifi"}},
		{core.CategoryTransportation, []string{"uber", "lyft", "taxi", "metro", "bus", "train", "subway"}},
		{core.CategoryFinancialAid, []string{"scholarship", "grant", "loan", "financial aid", "stipend"}},
		{core.CategoryIncome, []string{"salary", "paycheck", "deposit", "part-time", "internship"}},
		{core.CategoryHousing, []string{"rent", "dorm", "housing"}},
		{core.CategoryEntertainment, []string{"movie", "theatre", "concert", "entertainment", "spotify", "netflix"}},
		{core.CategoryHealthcare, []string{"doctor", "hospital", "pharmacy", "health center"}},
		{core.CategoryEducationSupplies, []string{"textbook", "course materials", "school supplies", "library"}},
		{core.CategoryTuitionFees, []string{"tuition", "fees", "lab fee"}},
		{core.CategoryCampusActivities, []string{"club", "society", "membership", "gym"}},
	}
}

// Categorize maps a description to exactly one category. It is total:
// any input, including the empty string, yields a category.
//
// Matching is plain substring containment, not word-boundary matching,
// so "wifi" matches inside "wifiextra". That mirrors the legacy rule
// set and keeps the function deterministic and cheap.
func (c *Categorizer) Categorize(description string) core.Category {
	desc := strings.ToLower(description)
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(desc, kw) {
				return rule.Category
			}
		}
	}
	return core.CategoryOther
}

var boilerplate = []string{"transaction - ", "payment to ", "payment from "}

// Clean strips leading boilerplate phrases, lowercases and trims a raw
// description. The cleaned text is what gets stored on the record and
// what categorization runs against.
func Clean(description string) string {
	cleaned := strings.ToLower(description)
	for _, prefix := range boilerplate {
		cleaned = strings.ReplaceAll(cleaned, prefix, "")
	}
	return strings.TrimSpace(cleaned)
}
