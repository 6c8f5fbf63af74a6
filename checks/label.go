package checks

import (
	"context"
)

// LabelArgs are the inputs to the drug label lookup.
type LabelArgs struct {
	DrugName string `json:"drug_name" desc:"Brand or generic drug name" required:"true"`
}

// LabelResult holds the label sections returned to the model.
type LabelResult struct {
	Found             bool   `json:"found"`
	DrugName          string `json:"drug_name,omitempty"`
	GenericName       string `json:"generic_name,omitempty"`
	Indications       string `json:"indications,omitempty"`
	Contraindications string `json:"contraindications,omitempty"`
	Warnings          string `json:"warnings,omitempty"`
	AdverseReactions  string `json:"adverse_reactions,omitempty"`
	DrugInteractions  string `json:"drug_interactions,omitempty"`
	DosageInfo        string `json:"dosage_info,omitempty"`
	PregnancyInfo     string `json:"pregnancy_info,omitempty"`
	PediatricUse      string `json:"pediatric_use,omitempty"`
	GeriatricUse      string `json:"geriatric_use,omitempty"`
	Note              string `json:"note,omitempty"`
}

// DrugLabelInfo returns the FDA label sections for a drug, or a
// not-found note when openFDA has no record.
func (c *Checks) DrugLabelInfo(ctx context.Context, args LabelArgs) (string, error) {
	label, err := c.label(ctx, args.DrugName)
	if err != nil {
		return "", err
	}
	if label == nil {
		return marshalResult(LabelResult{
			Note: "No FDA label found for " + args.DrugName,
		})
	}

	return marshalResult(LabelResult{
		Found:             true,
		DrugName:          label.BrandName,
		GenericName:       label.GenericName,
		Indications:       label.Indications,
		Contraindications: label.Contraindications,
		Warnings:          label.Warnings,
		AdverseReactions:  label.AdverseReactions,
		DrugInteractions:  label.DrugInteractions,
		DosageInfo:        label.DosageAndAdministration,
		PregnancyInfo:     label.Pregnancy,
		PediatricUse:      label.PediatricUse,
		GeriatricUse:      label.GeriatricUse,
	})
}
