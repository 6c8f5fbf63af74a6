package checks

import (
	"context"
	"fmt"
	"strings"
)

// InteractionArgs are the inputs to the drug interaction check.
type InteractionArgs struct {
	Drug1 string `json:"drug1" desc:"First drug" required:"true"`
	Drug2 string `json:"drug2" desc:"Second drug" required:"true"`
}

// InteractionResult reports a possible interaction between two drugs.
type InteractionResult struct {
	HasInteraction bool   `json:"has_interaction"`
	Severity       string `json:"severity,omitempty"`
	Description    string `json:"description,omitempty"`
	Recommendation string `json:"recommendation"`
}

// CheckInteraction searches drug1's label interaction section for
// mentions of drug2 and grades severity by the surrounding language.
func (c *Checks) CheckInteraction(ctx context.Context, args InteractionArgs) (string, error) {
	label, err := c.label(ctx, args.Drug1)
	if err != nil {
		return "", err
	}
	if label == nil || label.DrugInteractions == "" {
		return marshalResult(InteractionResult{
			Recommendation: "Unable to verify - check additional resources",
		})
	}

	interactions := strings.ToLower(label.DrugInteractions)
	drug2Lower := strings.ToLower(args.Drug2)

	if !strings.Contains(interactions, drug2Lower) {
		return marshalResult(InteractionResult{
			Recommendation: fmt.Sprintf("No interaction found in %s label for %s", args.Drug1, args.Drug2),
		})
	}

	severity := "moderate"
	if containsAny(interactions, []string{"contraindicated", "avoid", "serious", "severe"}) {
		severity = "major"
	}

	description := relevantSentences(interactions, []string{drug2Lower}, 2)
	if description == "" {
		if len(interactions) > 500 {
			interactions = interactions[:500]
		}
		description = interactions
	}

	return marshalResult(InteractionResult{
		HasInteraction: true,
		Severity:       severity,
		Description:    description,
		Recommendation: fmt.Sprintf("Review interaction between %s and %s. Consider alternative or enhanced monitoring.",
			args.Drug1, args.Drug2),
	})
}

// ContraindicationArgs are the inputs to the contraindication check.
type ContraindicationArgs struct {
	DrugName         string `json:"drug_name" desc:"Drug being dispensed" required:"true"`
	PatientCondition string `json:"patient_condition" desc:"Patient condition to check against the label" required:"true"`
}

// ContraindicationResult reports whether the drug is contraindicated
// for the condition.
type ContraindicationResult struct {
	IsContraindicated *bool  `json:"is_contraindicated"`
	Reason            string `json:"reason,omitempty"`
	Recommendation    string `json:"recommendation"`
}

// CheckContraindication searches the contraindications and warnings
// sections for the patient's condition.
func (c *Checks) CheckContraindication(ctx context.Context, args ContraindicationArgs) (string, error) {
	label, err := c.label(ctx, args.DrugName)
	if err != nil {
		return "", err
	}
	if label == nil {
		return marshalResult(ContraindicationResult{
			Reason:         "Drug information not found",
			Recommendation: "Verify with additional resources",
		})
	}

	contraindications := strings.ToLower(label.Contraindications)
	warnings := strings.ToLower(label.Warnings)
	condition := strings.ToLower(args.PatientCondition)

	searchText := contraindications + " " + warnings

	if !strings.Contains(searchText, condition) {
		notCI := false
		return marshalResult(ContraindicationResult{
			IsContraindicated: &notCI,
			Reason:            fmt.Sprintf("No contraindication found for %s", args.PatientCondition),
			Recommendation:    "Safe to proceed",
		})
	}

	isCI := strings.Contains(searchText, "contraindicated") && strings.Contains(contraindications, condition)

	reason := relevantSentences(searchText, []string{condition}, 2)
	if reason == "" {
		reason = fmt.Sprintf("Concern found regarding %s", args.PatientCondition)
	}

	recommendation := "Exercise caution - review with pharmacist"
	if isCI {
		recommendation = "DO NOT DISPENSE - Contact prescriber"
	}

	return marshalResult(ContraindicationResult{
		IsContraindicated: &isCI,
		Reason:            reason,
		Recommendation:    recommendation,
	})
}
