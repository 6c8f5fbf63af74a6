package checks

import (
	"context"
	"errors"
	"strings"

	"github.com/codypharm/pharma-sidekick/fda"
)

// crossReactions maps documented allergy classes to related drugs that
// may trigger the same reaction.
var crossReactions = map[string][]string{
	"penicillin":    {"amoxicillin", "ampicillin", "penicillin"},
	"sulfa":         {"sulfamethoxazole", "trimethoprim", "sulfasalazine"},
	"cephalosporin": {"cephalexin", "cefazolin", "ceftriaxone"},
}

// AllergyArgs are the inputs to the allergy check.
type AllergyArgs struct {
	DrugName  string   `json:"drug_name" desc:"Drug being dispensed" required:"true"`
	Allergies []string `json:"patient_allergies" desc:"Patient's documented allergies" required:"true"`
}

// AllergyResult reports whether an allergy match was found.
type AllergyResult struct {
	HasAllergy     bool   `json:"has_allergy"`
	AllergyType    string `json:"allergy_type,omitempty"`
	Allergen       string `json:"allergen,omitempty"`
	DrugChecked    string `json:"drug_checked"`
	Recommendation string `json:"recommendation"`
}

// CheckAllergy checks the drug against the patient's documented
// allergies, both direct matches and known cross-reactivity classes.
func (c *Checks) CheckAllergy(ctx context.Context, args AllergyArgs) (string, error) {
	drugLower := strings.ToLower(args.DrugName)

	genericLower := ""
	if label, err := c.drugInfo.DrugLabel(ctx, args.DrugName); err == nil {
		genericLower = strings.ToLower(label.GenericName)
	} else if !errors.Is(err, fda.ErrNotFound) {
		return "", err
	}

	for _, allergy := range args.Allergies {
		allergyLower := strings.ToLower(strings.TrimSpace(allergy))
		if allergyLower == "" {
			continue
		}

		if allergyLower == drugLower || (genericLower != "" && allergyLower == genericLower) {
			return marshalResult(AllergyResult{
				HasAllergy:     true,
				AllergyType:    "direct",
				Allergen:       allergy,
				DrugChecked:    args.DrugName,
				Recommendation: "CRITICAL: DO NOT DISPENSE. Patient has documented allergy. Contact prescriber immediately.",
			})
		}

		for class, related := range crossReactions {
			if !strings.Contains(allergyLower, class) {
				continue
			}
			for _, r := range related {
				if strings.Contains(drugLower, r) || (genericLower != "" && strings.Contains(genericLower, r)) {
					return marshalResult(AllergyResult{
						HasAllergy:     true,
						AllergyType:    "cross-reactivity",
						Allergen:       allergy,
						DrugChecked:    args.DrugName,
						Recommendation: "MAJOR: Possible cross-reactivity with " + allergy + " allergy. Verify with prescriber.",
					})
				}
			}
		}
	}

	return marshalResult(AllergyResult{
		HasAllergy:     false,
		DrugChecked:    args.DrugName,
		Recommendation: "No allergy detected. Safe to proceed.",
	})
}
