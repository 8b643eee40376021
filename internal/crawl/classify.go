package crawl

import "strings"

// rule refines one (category, sub_category) pair into a more specific
// sub-category when its predicate matches. Rules are tried in order; the
// first match wins.
type rule struct {
	match  func(name string, types []string) bool
	result string
}

type ruleKey struct {
	category    string
	subCategory string
}

// Classifier refines coarse sub-categories using name and type heuristics.
// When no rule matches, the input sub-category is returned unchanged.
type Classifier struct {
	rules map[ruleKey][]rule
}

// NewClassifier builds the classifier rule table.
func NewClassifier() *Classifier {
	nameContains := func(parts ...string) func(string, []string) bool {
		return func(name string, _ []string) bool {
			for _, p := range parts {
				if strings.Contains(name, p) {
					return true
				}
			}
			return false
		}
	}
	always := func(string, []string) bool { return true }

	return &Classifier{
		rules: map[ruleKey][]rule{
			{"Competitor", "Clinic_General"}: {
				{match: nameContains("grooming", "salon"), result: "Clinic+Grooming"},
				{match: nameContains("24"), result: "Emergency_Hospital"},
				{match: typeIs("veterinary_care"), result: "Clinic_Only"},
				{match: always, result: "Clinic_Only"},
			},
			{"Competitor", "Emergency_Hospital"}: {
				// Without a 24-hour signal in the name, demote to a plain clinic.
				{match: func(name string, _ []string) bool { return !strings.Contains(name, "24") }, result: "Clinic_Only"},
			},
			{"Customer", "Pet_Owner_Retail"}: {
				{match: func(name string, types []string) bool {
					return typeIs("pet_store")(name, types) && strings.Contains(name, "pet")
				}, result: "Pet_Store"},
			},
		},
	}
}

func typeIs(want string) func(string, []string) bool {
	return func(_ string, types []string) bool {
		return hasType(types, want)
	}
}

// Refine returns the refined sub-category for a place. The result is always
// either a value from the rule table or the input sub-category itself.
func (c *Classifier) Refine(name string, types []string, category, subCategory string) string {
	nameLower := Normalize(name)
	for _, r := range c.rules[ruleKey{category, subCategory}] {
		if r.match(nameLower, types) {
			return r.result
		}
	}
	return subCategory
}
