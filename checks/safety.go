package checks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/codypharm/pharma-sidekick/fda"
)

// label fetches the drug label, mapping a missing record to a nil
// label so callers can report the gap instead of failing the check.
func (c *Checks) label(ctx context.Context, drug string) (*fda.Label, error) {
	label, err := c.drugInfo.DrugLabel(ctx, drug)
	if errors.Is(err, fda.ErrNotFound) {
		return nil, nil
	}
	return label, err
}

// relevantSentences returns up to max sentences from text that contain
// any of the given keywords.
func relevantSentences(text string, keywords []string, max int) string {
	var relevant []string
	for _, s := range strings.Split(text, ".") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		for _, kw := range keywords {
			if strings.Contains(s, kw) {
				relevant = append(relevant, s)
				break
			}
		}
		if len(relevant) == max {
			break
		}
	}
	return strings.Join(relevant, ". ")
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// PregnancyArgs are the inputs to the pregnancy safety check.
type PregnancyArgs struct {
	DrugName  string `json:"drug_name" desc:"Drug being dispensed" required:"true"`
	Trimester int    `json:"trimester" desc:"Current trimester (1-3), if known"`
}

// PregnancyResult reports pregnancy safety findings.
type PregnancyResult struct {
	PregnancyCategory string `json:"pregnancy_category,omitempty"`
	IsSafe            *bool  `json:"is_safe"`
	Risks             string `json:"risks,omitempty"`
	Recommendation    string `json:"recommendation"`
	TrimesterNote     string `json:"trimester_note,omitempty"`
}

// CheckPregnancySafety inspects the label's pregnancy section for a
// letter category and contraindication language. IsSafe is nil when
// the label is ambiguous or missing.
func (c *Checks) CheckPregnancySafety(ctx context.Context, args PregnancyArgs) (string, error) {
	label, err := c.label(ctx, args.DrugName)
	if err != nil {
		return "", err
	}
	if label == nil || label.Pregnancy == "" {
		return marshalResult(PregnancyResult{
			Risks:          "Pregnancy information not available in FDA label",
			Recommendation: "Consult additional resources (Lexicomp, Micromedex)",
		})
	}

	text := strings.ToLower(label.Pregnancy)

	var category string
	for _, cat := range []string{"x", "d", "c", "b", "a"} {
		if strings.Contains(text, "category "+cat) {
			category = strings.ToUpper(cat)
			break
		}
	}

	safe := true
	var isSafe *bool
	switch {
	case containsAny(text, []string{"contraindicated", "category x", "not recommended", "avoid"}):
		safe = false
		isSafe = &safe
	case containsAny(text, []string{"risk", "category d", "adverse"}):
		isSafe = nil
	default:
		isSafe = &safe
	}

	sentences := strings.SplitN(text, ".", 4)
	if len(sentences) > 3 {
		sentences = sentences[:3]
	}
	risks := strings.TrimSpace(strings.Join(sentences, "."))

	recommendation := "Safe to use"
	if isSafe == nil {
		recommendation = "Risk present - Review with prescriber. Consider risk-benefit ratio."
	} else if !*isSafe {
		recommendation = "CONTRAINDICATED - Do not dispense. Contact prescriber immediately."
	}

	result := PregnancyResult{
		PregnancyCategory: category,
		IsSafe:            isSafe,
		Risks:             risks,
		Recommendation:    recommendation,
	}
	if args.Trimester > 0 {
		result.TrimesterNote = fmt.Sprintf("Information applies to trimester %d", args.Trimester)
	}
	return marshalResult(result)
}

// RenalArgs are the inputs to the renal dosing check.
type RenalArgs struct {
	DrugName            string  `json:"drug_name" desc:"Drug being dispensed" required:"true"`
	CreatinineClearance float64 `json:"creatinine_clearance" desc:"Patient creatinine clearance in mL/min" required:"true"`
}

// RenalResult reports whether renal dose adjustment is needed.
type RenalResult struct {
	RequiresAdjustment  *bool   `json:"requires_adjustment"`
	Severity            string  `json:"severity,omitempty"`
	Guidance            string  `json:"guidance,omitempty"`
	CreatinineClearance float64 `json:"creatinine_clearance,omitempty"`
	Recommendation      string  `json:"recommendation"`
}

var renalKeywords = []string{"renal", "kidney", "creatinine clearance", "renal impairment", "renal insufficiency"}

// CheckRenalDosing searches the label's dosage and warnings sections
// for renal adjustment language and grades severity by CrCl.
func (c *Checks) CheckRenalDosing(ctx context.Context, args RenalArgs) (string, error) {
	label, err := c.label(ctx, args.DrugName)
	if err != nil {
		return "", err
	}
	if label == nil {
		return marshalResult(RenalResult{
			Guidance:       "Drug information not found",
			Recommendation: "Consult renal dosing reference",
		})
	}

	searchText := strings.ToLower(label.DosageAndAdministration) + " " + strings.ToLower(label.Warnings)

	if !containsAny(searchText, renalKeywords) {
		noAdjust := false
		return marshalResult(RenalResult{
			RequiresAdjustment: &noAdjust,
			Guidance:           "No renal dosing information in label",
			Recommendation:     "Consider consulting additional renal dosing resources",
		})
	}

	severity := "moderate"
	switch {
	case args.CreatinineClearance < 15:
		severity = "critical"
	case args.CreatinineClearance < 30:
		severity = "severe"
	}

	adjust := true
	return marshalResult(RenalResult{
		RequiresAdjustment:  &adjust,
		Severity:            severity,
		Guidance:            relevantSentences(searchText, renalKeywords, 3),
		CreatinineClearance: args.CreatinineClearance,
		Recommendation: fmt.Sprintf("Renal dose adjustment required (CrCl: %g mL/min). Verify appropriate dose.",
			args.CreatinineClearance),
	})
}

// PediatricArgs are the inputs to the pediatric dosing check.
type PediatricArgs struct {
	DrugName   string  `json:"drug_name" desc:"Drug being dispensed" required:"true"`
	PatientAge int     `json:"patient_age" desc:"Patient age in years" required:"true"`
	WeightKg   float64 `json:"weight_kg" desc:"Patient weight in kilograms, if known"`
}

// PediatricResult reports pediatric dosing findings.
type PediatricResult struct {
	ApprovedForAge *bool  `json:"approved_for_age"`
	PatientAge     int    `json:"patient_age,omitempty"`
	DosingInfo     string `json:"dosing_info,omitempty"`
	WeightBased    *bool  `json:"weight_based"`
	Recommendation string `json:"recommendation"`
}

// CheckPediatricDosing inspects pediatric_use and dosage sections for
// approval language and weight-based dosing.
func (c *Checks) CheckPediatricDosing(ctx context.Context, args PediatricArgs) (string, error) {
	label, err := c.label(ctx, args.DrugName)
	if err != nil {
		return "", err
	}
	if label == nil {
		return marshalResult(PediatricResult{
			DosingInfo:     "Drug information not found",
			Recommendation: "Verify pediatric dosing with reference",
		})
	}

	pediatricInfo := strings.ToLower(label.PediatricUse)
	dosageInfo := strings.ToLower(label.DosageAndAdministration)

	if pediatricInfo == "" && dosageInfo == "" {
		return marshalResult(PediatricResult{
			DosingInfo:     "No pediatric information in FDA label",
			Recommendation: "Verify pediatric use is appropriate.",
		})
	}

	approved := !containsAny(pediatricInfo, []string{"not established", "not recommended", "contraindicated", "not approved"})
	weightBased := strings.Contains(dosageInfo, "mg/kg") || strings.Contains(dosageInfo, "weight")

	dosingInfo := relevantSentences(pediatricInfo+" "+dosageInfo, []string{"pediatric", "child", "mg/kg"}, 3)
	if dosingInfo == "" {
		dosingInfo = "See full label for pediatric dosing"
	}

	recommendation := "Verify dose is appropriate for age and weight"
	if !approved {
		recommendation = "NOT APPROVED for pediatric use. Contact prescriber."
	} else if weightBased && args.WeightKg > 0 {
		recommendation = fmt.Sprintf("Weight-based dosing required (patient: %g kg). Calculate mg/kg dose.", args.WeightKg)
	}

	return marshalResult(PediatricResult{
		ApprovedForAge: &approved,
		PatientAge:     args.PatientAge,
		DosingInfo:     dosingInfo,
		WeightBased:    &weightBased,
		Recommendation: recommendation,
	})
}

// GeriatricArgs are the inputs to the geriatric considerations check.
type GeriatricArgs struct {
	DrugName   string `json:"drug_name" desc:"Drug being dispensed" required:"true"`
	PatientAge int    `json:"patient_age" desc:"Patient age in years" required:"true"`
}

// GeriatricResult reports geriatric prescribing findings.
type GeriatricResult struct {
	RequiresAdjustment *bool  `json:"requires_adjustment"`
	BeersCriteria      *bool  `json:"beers_criteria"`
	PatientAge         int    `json:"patient_age,omitempty"`
	Considerations     string `json:"considerations,omitempty"`
	Recommendation     string `json:"recommendation"`
}

// beersDrugs is a simplified list of medications flagged by the Beers
// Criteria as potentially inappropriate in older adults.
var beersDrugs = []string{
	"diphenhydramine", "diazepam", "promethazine", "hydroxyzine",
	"amitriptyline", "cyclobenzaprine", "indomethacin",
}

// CheckGeriatric screens for geriatric dose adjustment language and
// Beers Criteria membership.
func (c *Checks) CheckGeriatric(ctx context.Context, args GeriatricArgs) (string, error) {
	label, err := c.label(ctx, args.DrugName)
	if err != nil {
		return "", err
	}
	if label == nil {
		return marshalResult(GeriatricResult{
			Considerations: "Drug information not found",
			Recommendation: "Verify geriatric appropriateness",
		})
	}

	searchText := strings.ToLower(label.GeriatricUse) + " " + strings.ToLower(label.Warnings)

	requiresAdjustment := containsAny(searchText, []string{"lower dose", "reduce", "adjust", "start low"})

	generic := strings.ToLower(label.GenericName)
	if generic == "" {
		generic = strings.ToLower(args.DrugName)
	}
	onBeers := containsAny(generic, beersDrugs)

	considerations := relevantSentences(searchText, []string{"elderly", "geriatric", "older"}, 3)
	if considerations == "" {
		considerations = "See label for geriatric considerations"
	}

	recommendation := "Standard dosing appropriate"
	if onBeers {
		recommendation = "HIGH RISK in elderly (Beers Criteria). Consider alternative therapy."
	} else if requiresAdjustment {
		recommendation = "Dose adjustment recommended for elderly. Start with lower dose."
	}

	return marshalResult(GeriatricResult{
		RequiresAdjustment: &requiresAdjustment,
		BeersCriteria:      &onBeers,
		PatientAge:         args.PatientAge,
		Considerations:     considerations,
		Recommendation:     recommendation,
	})
}
