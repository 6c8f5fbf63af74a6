package checks

import (
	"encoding/json"

	"github.com/codypharm/pharma-sidekick/fda"
	"github.com/codypharm/pharma-sidekick/tool"
)

// Checks bundles the clinical validation handlers around a drug
// information source.
type Checks struct {
	drugInfo fda.DrugInfoSource
}

// New creates the clinical check set backed by the given source.
func New(drugInfo fda.DrugInfoSource) *Checks {
	return &Checks{drugInfo: drugInfo}
}

// NewRegistry builds a capability registry with the full clinical
// check catalogue registered.
func NewRegistry(drugInfo fda.DrugInfoSource) *tool.Registry {
	c := New(drugInfo)
	return tool.NewRegistry().Add(c.Registrations()...)
}

// Registrations returns every clinical capability ready to register.
func (c *Checks) Registrations() []tool.Registration {
	return []tool.Registration{
		tool.Func("check_drug_allergy",
			"Check if the patient is allergic to the medication, including cross-reactivity between drug classes. Use this first, before any other validation.",
			c.CheckAllergy),
		tool.Func("check_drug_recall",
			"Check if the drug or a specific lot has an active FDA recall.",
			c.CheckRecall),
		tool.Func("check_pregnancy_safety",
			"Check if the drug is safe during pregnancy. Use for any pregnant patient.",
			c.CheckPregnancySafety),
		tool.Func("check_renal_dosing",
			"Check if renal dose adjustment is needed. Use when the patient has CrCl below 60 mL/min.",
			c.CheckRenalDosing),
		tool.Func("check_pediatric_dosing",
			"Check if pediatric dosing is appropriate. Use for patients under 18 years old.",
			c.CheckPediatricDosing),
		tool.Func("check_geriatric_considerations",
			"Check for special considerations in elderly patients. Use for patients 65 years or older.",
			c.CheckGeriatric),
		tool.Func("check_drug_interaction",
			"Check if two drugs have a known interaction.",
			c.CheckInteraction),
		tool.Func("check_contraindication",
			"Check if the drug is contraindicated for a specific patient condition.",
			c.CheckContraindication),
		tool.Func("check_duplicate_therapy",
			"Check a medication list for duplicate therapy.",
			c.CheckDuplicateTherapy),
		tool.Func("calculate_daily_dose",
			"Calculate the total daily dose from a single dose amount and a frequency such as BID or q8h.",
			c.CalculateDailyDose),
		tool.Func("get_drug_label_info",
			"Get FDA drug label information: indications, contraindications, warnings, interactions, and dosing.",
			c.DrugLabelInfo),
		tool.Func(AssessmentToolName,
			"Record the final clinical assessment once all relevant checks are complete. This ends the validation.",
			c.FinalAssessment),
	}
}

func marshalResult(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
