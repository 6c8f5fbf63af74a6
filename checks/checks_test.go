package checks

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codypharm/pharma-sidekick/fda"
)

// stubDrugInfo serves canned labels and recalls keyed by drug name.
type stubDrugInfo struct {
	labels  map[string]*fda.Label
	recalls map[string][]fda.Recall
}

func (s *stubDrugInfo) DrugLabel(_ context.Context, drug string) (*fda.Label, error) {
	if label, ok := s.labels[drug]; ok {
		return label, nil
	}
	return nil, fda.ErrNotFound
}

func (s *stubDrugInfo) Recalls(_ context.Context, drug, lot string) ([]fda.Recall, error) {
	recalls := s.recalls[drug]
	if lot == "" {
		return recalls, nil
	}
	var matched []fda.Recall
	for _, r := range recalls {
		if strings.Contains(r.LotNumbers, lot) {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

func newTestChecks() *Checks {
	return New(&stubDrugInfo{
		labels: map[string]*fda.Label{
			"Amoxil": {
				BrandName:         "Amoxil",
				GenericName:       "Amoxicillin",
				Contraindications: "hypersensitivity to penicillins.",
				Pregnancy:         "Pregnancy Category B. No fetal harm observed in animal studies.",
				PediatricUse:      "safety established in pediatric patients 3 months and older.",
				DosageAndAdministration: "adults: 500 mg every 8 hours. " +
					"pediatric patients: 25 mg/kg/day in divided doses.",
			},
			"Lisinopril": {
				GenericName: "Lisinopril",
				Pregnancy:   "Category D. Avoid use. Can cause fetal harm when administered to a pregnant woman.",
				Warnings:    "fetal toxicity. reduce dose in patients with renal impairment.",
				DosageAndAdministration: "initial dose 10 mg once daily. " +
					"for patients with creatinine clearance below 30 mL/min reduce initial dose.",
			},
			"Benadryl": {
				GenericName:  "Diphenhydramine",
				GeriatricUse: "elderly patients may be more sensitive. start low and reduce dose.",
			},
			"Warfarin": {
				GenericName:      "Warfarin",
				DrugInteractions: "aspirin increases bleeding risk. avoid concurrent use. monitor inr closely.",
			},
			"Metformin": {
				GenericName:       "Metformin",
				Contraindications: "contraindicated in severe renal failure.",
				Warnings:          "lactic acidosis risk in renal failure.",
			},
		},
		recalls: map[string][]fda.Recall{
			"Valsartan": {
				{Status: "Ongoing", Classification: "Class II", Reason: "NDMA contamination", LotNumbers: "Lot #VAL-2018-07"},
				{Status: "Terminated", Classification: "Class III", Reason: "labeling"},
			},
			"Losartan": {
				{Status: "Terminated", Classification: "Class III", Reason: "packaging"},
			},
		},
	})
}

func decode[T any](t *testing.T, raw string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestCheckAllergy(t *testing.T) {
	c := newTestChecks()
	ctx := context.Background()

	t.Run("direct match", func(t *testing.T) {
		raw, err := c.CheckAllergy(ctx, AllergyArgs{
			DrugName:  "Amoxil",
			Allergies: []string{"amoxicillin"},
		})
		require.NoError(t, err)

		result := decode[AllergyResult](t, raw)
		assert.True(t, result.HasAllergy)
		assert.Equal(t, "direct", result.AllergyType)
		assert.Contains(t, result.Recommendation, "DO NOT DISPENSE")
	})

	t.Run("cross reactivity", func(t *testing.T) {
		raw, err := c.CheckAllergy(ctx, AllergyArgs{
			DrugName:  "Amoxil",
			Allergies: []string{"penicillin"},
		})
		require.NoError(t, err)

		result := decode[AllergyResult](t, raw)
		assert.True(t, result.HasAllergy)
		assert.Equal(t, "cross-reactivity", result.AllergyType)
		assert.Equal(t, "penicillin", result.Allergen)
	})

	t.Run("sulfa class matches trimethoprim", func(t *testing.T) {
		raw, err := c.CheckAllergy(ctx, AllergyArgs{
			DrugName:  "Trimethoprim",
			Allergies: []string{"sulfa drugs"},
		})
		require.NoError(t, err)

		result := decode[AllergyResult](t, raw)
		assert.True(t, result.HasAllergy)
		assert.Equal(t, "cross-reactivity", result.AllergyType)
	})

	t.Run("no allergy", func(t *testing.T) {
		raw, err := c.CheckAllergy(ctx, AllergyArgs{
			DrugName:  "Amoxil",
			Allergies: []string{"latex", "shellfish"},
		})
		require.NoError(t, err)

		result := decode[AllergyResult](t, raw)
		assert.False(t, result.HasAllergy)
		assert.Contains(t, result.Recommendation, "Safe to proceed")
	})
}

func TestCheckRecall(t *testing.T) {
	c := newTestChecks()
	ctx := context.Background()

	t.Run("active recall", func(t *testing.T) {
		raw, err := c.CheckRecall(ctx, RecallArgs{DrugName: "Valsartan"})
		require.NoError(t, err)

		result := decode[RecallResult](t, raw)
		assert.True(t, result.HasRecall)
		require.Len(t, result.ActiveRecalls, 1)
		assert.Equal(t, "NDMA contamination", result.ActiveRecalls[0].Reason)
		assert.Contains(t, result.Recommendation, "DO NOT DISPENSE")
	})

	t.Run("lot-specific recall", func(t *testing.T) {
		raw, err := c.CheckRecall(ctx, RecallArgs{DrugName: "Valsartan", LotNumber: "VAL-2018-07"})
		require.NoError(t, err)

		result := decode[RecallResult](t, raw)
		assert.True(t, result.HasRecall)
		require.Len(t, result.ActiveRecalls, 1)
		assert.Equal(t, "Lot #VAL-2018-07", result.ActiveRecalls[0].LotNumbers)
	})

	t.Run("unaffected lot", func(t *testing.T) {
		raw, err := c.CheckRecall(ctx, RecallArgs{DrugName: "Valsartan", LotNumber: "VAL-2026-01"})
		require.NoError(t, err)

		result := decode[RecallResult](t, raw)
		assert.False(t, result.HasRecall)
		assert.Contains(t, result.Recommendation, "No active recalls")
	})

	t.Run("only resolved recalls", func(t *testing.T) {
		raw, err := c.CheckRecall(ctx, RecallArgs{DrugName: "Losartan"})
		require.NoError(t, err)

		result := decode[RecallResult](t, raw)
		assert.False(t, result.HasRecall)
		assert.Equal(t, 1, result.PastRecalls)
	})

	t.Run("no recalls", func(t *testing.T) {
		raw, err := c.CheckRecall(ctx, RecallArgs{DrugName: "Amoxil"})
		require.NoError(t, err)

		result := decode[RecallResult](t, raw)
		assert.False(t, result.HasRecall)
		assert.Equal(t, "No active recalls found.", result.Recommendation)
	})
}

func TestCheckPregnancySafety(t *testing.T) {
	c := newTestChecks()
	ctx := context.Background()

	t.Run("category D is unsafe", func(t *testing.T) {
		raw, err := c.CheckPregnancySafety(ctx, PregnancyArgs{DrugName: "Lisinopril", Trimester: 1})
		require.NoError(t, err)

		result := decode[PregnancyResult](t, raw)
		assert.Equal(t, "D", result.PregnancyCategory)
		require.NotNil(t, result.IsSafe)
		assert.False(t, *result.IsSafe)
		assert.Contains(t, result.Recommendation, "CONTRAINDICATED")
		assert.Contains(t, result.TrimesterNote, "trimester 1")
	})

	t.Run("category B is safe", func(t *testing.T) {
		raw, err := c.CheckPregnancySafety(ctx, PregnancyArgs{DrugName: "Amoxil"})
		require.NoError(t, err)

		result := decode[PregnancyResult](t, raw)
		assert.Equal(t, "B", result.PregnancyCategory)
		require.NotNil(t, result.IsSafe)
		assert.True(t, *result.IsSafe)
	})

	t.Run("missing label", func(t *testing.T) {
		raw, err := c.CheckPregnancySafety(ctx, PregnancyArgs{DrugName: "Unknowncillin"})
		require.NoError(t, err)

		result := decode[PregnancyResult](t, raw)
		assert.Nil(t, result.IsSafe)
		assert.Contains(t, result.Risks, "not available")
	})
}

func TestCheckRenalDosing(t *testing.T) {
	c := newTestChecks()
	ctx := context.Background()

	t.Run("adjustment required", func(t *testing.T) {
		raw, err := c.CheckRenalDosing(ctx, RenalArgs{DrugName: "Lisinopril", CreatinineClearance: 25})
		require.NoError(t, err)

		result := decode[RenalResult](t, raw)
		require.NotNil(t, result.RequiresAdjustment)
		assert.True(t, *result.RequiresAdjustment)
		assert.Equal(t, "severe", result.Severity)
		assert.Contains(t, result.Guidance, "creatinine clearance")
	})

	t.Run("critical severity below 15", func(t *testing.T) {
		raw, err := c.CheckRenalDosing(ctx, RenalArgs{DrugName: "Lisinopril", CreatinineClearance: 10})
		require.NoError(t, err)

		result := decode[RenalResult](t, raw)
		assert.Equal(t, "critical", result.Severity)
	})

	t.Run("no renal language in label", func(t *testing.T) {
		raw, err := c.CheckRenalDosing(ctx, RenalArgs{DrugName: "Amoxil", CreatinineClearance: 45})
		require.NoError(t, err)

		result := decode[RenalResult](t, raw)
		require.NotNil(t, result.RequiresAdjustment)
		assert.False(t, *result.RequiresAdjustment)
	})
}

func TestCheckPediatricDosing(t *testing.T) {
	c := newTestChecks()
	ctx := context.Background()

	t.Run("weight based dosing", func(t *testing.T) {
		raw, err := c.CheckPediatricDosing(ctx, PediatricArgs{
			DrugName: "Amoxil", PatientAge: 6, WeightKg: 20,
		})
		require.NoError(t, err)

		result := decode[PediatricResult](t, raw)
		require.NotNil(t, result.ApprovedForAge)
		assert.True(t, *result.ApprovedForAge)
		require.NotNil(t, result.WeightBased)
		assert.True(t, *result.WeightBased)
		assert.Contains(t, result.Recommendation, "20 kg")
	})

	t.Run("missing label", func(t *testing.T) {
		raw, err := c.CheckPediatricDosing(ctx, PediatricArgs{DrugName: "Unknowncillin", PatientAge: 6})
		require.NoError(t, err)

		result := decode[PediatricResult](t, raw)
		assert.Nil(t, result.ApprovedForAge)
	})
}

func TestCheckGeriatric(t *testing.T) {
	c := newTestChecks()
	ctx := context.Background()

	t.Run("beers criteria drug", func(t *testing.T) {
		raw, err := c.CheckGeriatric(ctx, GeriatricArgs{DrugName: "Benadryl", PatientAge: 78})
		require.NoError(t, err)

		result := decode[GeriatricResult](t, raw)
		require.NotNil(t, result.BeersCriteria)
		assert.True(t, *result.BeersCriteria)
		assert.Contains(t, result.Recommendation, "HIGH RISK")
	})

	t.Run("adjustment language without beers", func(t *testing.T) {
		raw, err := c.CheckGeriatric(ctx, GeriatricArgs{DrugName: "Lisinopril", PatientAge: 70})
		require.NoError(t, err)

		result := decode[GeriatricResult](t, raw)
		require.NotNil(t, result.BeersCriteria)
		assert.False(t, *result.BeersCriteria)
		require.NotNil(t, result.RequiresAdjustment)
		assert.True(t, *result.RequiresAdjustment)
	})
}

func TestCheckInteraction(t *testing.T) {
	c := newTestChecks()
	ctx := context.Background()

	t.Run("major interaction", func(t *testing.T) {
		raw, err := c.CheckInteraction(ctx, InteractionArgs{Drug1: "Warfarin", Drug2: "Aspirin"})
		require.NoError(t, err)

		result := decode[InteractionResult](t, raw)
		assert.True(t, result.HasInteraction)
		assert.Equal(t, "major", result.Severity)
		assert.Contains(t, result.Description, "aspirin")
	})

	t.Run("no interaction", func(t *testing.T) {
		raw, err := c.CheckInteraction(ctx, InteractionArgs{Drug1: "Warfarin", Drug2: "Omeprazole"})
		require.NoError(t, err)

		result := decode[InteractionResult](t, raw)
		assert.False(t, result.HasInteraction)
	})

	t.Run("no interaction section", func(t *testing.T) {
		raw, err := c.CheckInteraction(ctx, InteractionArgs{Drug1: "Amoxil", Drug2: "Aspirin"})
		require.NoError(t, err)

		result := decode[InteractionResult](t, raw)
		assert.False(t, result.HasInteraction)
		assert.Contains(t, result.Recommendation, "Unable to verify")
	})
}

func TestCheckContraindication(t *testing.T) {
	c := newTestChecks()
	ctx := context.Background()

	t.Run("contraindicated condition", func(t *testing.T) {
		raw, err := c.CheckContraindication(ctx, ContraindicationArgs{
			DrugName: "Metformin", PatientCondition: "renal failure",
		})
		require.NoError(t, err)

		result := decode[ContraindicationResult](t, raw)
		require.NotNil(t, result.IsContraindicated)
		assert.True(t, *result.IsContraindicated)
		assert.Contains(t, result.Recommendation, "DO NOT DISPENSE")
	})

	t.Run("condition not in label", func(t *testing.T) {
		raw, err := c.CheckContraindication(ctx, ContraindicationArgs{
			DrugName: "Metformin", PatientCondition: "asthma",
		})
		require.NoError(t, err)

		result := decode[ContraindicationResult](t, raw)
		require.NotNil(t, result.IsContraindicated)
		assert.False(t, *result.IsContraindicated)
	})
}

func TestCheckDuplicateTherapy(t *testing.T) {
	c := newTestChecks()
	ctx := context.Background()

	t.Run("generic overlap", func(t *testing.T) {
		raw, err := c.CheckDuplicateTherapy(ctx, DuplicateTherapyArgs{
			Medications: []Medication{
				{DrugName: "Tylenol", GenericName: "acetaminophen"},
				{DrugName: "Percocet", GenericName: "acetaminophen"},
			},
		})
		require.NoError(t, err)

		result := decode[DuplicateTherapyResult](t, raw)
		require.Len(t, result.Duplicates, 1)
		assert.Contains(t, result.Duplicates[0].Issue, "acetaminophen")
	})

	t.Run("exact duplicate", func(t *testing.T) {
		raw, err := c.CheckDuplicateTherapy(ctx, DuplicateTherapyArgs{
			Medications: []Medication{
				{DrugName: "Lisinopril"},
				{DrugName: "lisinopril"},
			},
		})
		require.NoError(t, err)

		result := decode[DuplicateTherapyResult](t, raw)
		require.Len(t, result.Duplicates, 1)
		assert.Equal(t, "Exact duplicate medication", result.Duplicates[0].Issue)
	})

	t.Run("no duplicates", func(t *testing.T) {
		raw, err := c.CheckDuplicateTherapy(ctx, DuplicateTherapyArgs{
			Medications: []Medication{
				{DrugName: "Lisinopril", GenericName: "lisinopril"},
				{DrugName: "Metformin", GenericName: "metformin"},
			},
		})
		require.NoError(t, err)

		result := decode[DuplicateTherapyResult](t, raw)
		assert.Empty(t, result.Duplicates)
	})
}

func TestCalculateDailyDose(t *testing.T) {
	c := newTestChecks()
	ctx := context.Background()

	cases := []struct {
		dose      string
		frequency string
		wantDaily float64
		wantDoses int
	}{
		{"500mg", "TID", 1500, 3},
		{"250 mg", "bid", 500, 2},
		{"10mg", "once daily", 10, 1},
		{"1.5mg", "q12h", 3, 2},
		{"100mg", "q4h", 600, 6},
	}
	for _, tc := range cases {
		t.Run(tc.dose+" "+tc.frequency, func(t *testing.T) {
			raw, err := c.CalculateDailyDose(ctx, DailyDoseArgs{
				DosePerAdministration: tc.dose,
				Frequency:             tc.frequency,
			})
			require.NoError(t, err)

			result := decode[DailyDoseResult](t, raw)
			require.NotNil(t, result.DailyDoseMg)
			assert.Equal(t, tc.wantDaily, *result.DailyDoseMg)
			assert.Equal(t, tc.wantDoses, result.DosesPerDay)
		})
	}

	t.Run("warns on high frequency", func(t *testing.T) {
		raw, err := c.CalculateDailyDose(ctx, DailyDoseArgs{
			DosePerAdministration: "50mg", Frequency: "q3h",
		})
		require.NoError(t, err)

		result := decode[DailyDoseResult](t, raw)
		assert.Equal(t, 8, result.DosesPerDay)
		assert.Contains(t, result.Warning, "Unusually high frequency")
	})

	t.Run("unparseable frequency", func(t *testing.T) {
		raw, err := c.CalculateDailyDose(ctx, DailyDoseArgs{
			DosePerAdministration: "50mg", Frequency: "whenever",
		})
		require.NoError(t, err)

		result := decode[DailyDoseResult](t, raw)
		assert.Nil(t, result.DailyDoseMg)
		assert.Contains(t, result.Warning, "Unable to parse frequency")
	})

	t.Run("unparseable dose", func(t *testing.T) {
		raw, err := c.CalculateDailyDose(ctx, DailyDoseArgs{
			DosePerAdministration: "one tablet", Frequency: "bid",
		})
		require.NoError(t, err)

		result := decode[DailyDoseResult](t, raw)
		assert.Nil(t, result.DailyDoseMg)
		assert.Contains(t, result.Warning, "Unable to parse dose")
	})
}

func TestFinalAssessment(t *testing.T) {
	c := newTestChecks()

	raw, err := c.FinalAssessment(context.Background(), AssessmentArgs{
		Decision:        "Do Not Dispense",
		Reasoning:       "Documented penicillin allergy with cross-reactivity.",
		Recommendations: "Contact prescriber for alternative antibiotic.",
		UserInputNeeded: false,
	})
	require.NoError(t, err)

	result := decode[AssessmentResult](t, raw)
	assert.True(t, result.Recorded)
	assert.Equal(t, "Do Not Dispense", result.Decision)
}

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry(&stubDrugInfo{})

	assert.Equal(t, 12, registry.Len())
	assert.Contains(t, registry.Names(), AssessmentToolName)
	assert.Contains(t, registry.Names(), "check_drug_allergy")

	tl, ok := registry.GetTool(AssessmentToolName)
	require.True(t, ok)
	assert.Contains(t, string(tl.Parameters), "decision")
}
