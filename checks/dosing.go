package checks

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Medication identifies one entry on a medication list.
type Medication struct {
	DrugName    string `json:"drug_name" desc:"Brand or prescribed name" required:"true"`
	GenericName string `json:"generic_name" desc:"Generic name, if known"`
}

// DuplicateTherapyArgs are the inputs to the duplicate therapy check.
type DuplicateTherapyArgs struct {
	Medications []Medication `json:"medications" desc:"Full medication list to screen" required:"true"`
}

// DuplicateIssue describes one duplicate therapy finding.
type DuplicateIssue struct {
	Drug1          string `json:"drug1"`
	Drug2          string `json:"drug2"`
	Issue          string `json:"issue"`
	Recommendation string `json:"recommendation"`
}

// DuplicateTherapyResult lists every duplicate found.
type DuplicateTherapyResult struct {
	Duplicates []DuplicateIssue `json:"duplicates"`
}

// CheckDuplicateTherapy screens a medication list for exact name
// duplicates and distinct products sharing a generic ingredient.
func (c *Checks) CheckDuplicateTherapy(_ context.Context, args DuplicateTherapyArgs) (string, error) {
	duplicates := []DuplicateIssue{}
	genericSeen := make(map[string]Medication)

	for i, med := range args.Medications {
		drugLower := strings.ToLower(med.DrugName)

		if generic := strings.ToLower(med.GenericName); generic != "" {
			if prior, ok := genericSeen[generic]; ok {
				duplicates = append(duplicates, DuplicateIssue{
					Drug1:          prior.DrugName,
					Drug2:          med.DrugName,
					Issue:          fmt.Sprintf("Duplicate therapy: Both contain %s", generic),
					Recommendation: "MAJOR: Remove duplicate or verify both intended by prescriber.",
				})
			} else {
				genericSeen[generic] = med
			}
		}

		for _, other := range args.Medications[i+1:] {
			if drugLower == strings.ToLower(other.DrugName) {
				duplicates = append(duplicates, DuplicateIssue{
					Drug1:          med.DrugName,
					Drug2:          other.DrugName,
					Issue:          "Exact duplicate medication",
					Recommendation: "CRITICAL: Remove duplicate entry.",
				})
			}
		}
	}

	return marshalResult(DuplicateTherapyResult{Duplicates: duplicates})
}

// DailyDoseArgs are the inputs to the daily dose calculation.
type DailyDoseArgs struct {
	DosePerAdministration string `json:"dose_per_administration" desc:"Single dose amount, e.g. 500mg" required:"true"`
	Frequency             string `json:"frequency" desc:"Dosing frequency, e.g. BID, q8h, twice daily" required:"true"`
}

// DailyDoseResult reports the computed daily dose.
type DailyDoseResult struct {
	DailyDoseMg             *float64 `json:"daily_dose_mg"`
	DosePerAdministrationMg float64  `json:"dose_per_administration_mg,omitempty"`
	DosesPerDay             int      `json:"doses_per_day,omitempty"`
	FrequencyParsed         string   `json:"frequency_parsed,omitempty"`
	Warning                 string   `json:"warning,omitempty"`
}

// frequencyMap translates common sig abbreviations to doses per day.
var frequencyMap = map[string]int{
	"qd": 1, "daily": 1, "once daily": 1, "once a day": 1,
	"bid": 2, "twice daily": 2, "twice a day": 2, "q12h": 2,
	"tid": 3, "three times daily": 3, "q8h": 3,
	"qid": 4, "four times daily": 4, "q6h": 4,
	"q4h": 6, "q3h": 8, "q2h": 12,
	"qhs": 1, "at bedtime": 1, "hs": 1,
}

var doseAmountPattern = regexp.MustCompile(`(\d+\.?\d*)`)

// CalculateDailyDose computes the total daily dose from the dose per
// administration and a frequency abbreviation.
func (c *Checks) CalculateDailyDose(_ context.Context, args DailyDoseArgs) (string, error) {
	freq := strings.ToLower(strings.TrimSpace(args.Frequency))
	dosesPerDay, ok := frequencyMap[freq]
	if !ok {
		return marshalResult(DailyDoseResult{
			Warning: fmt.Sprintf("Unable to parse frequency: %s", args.Frequency),
		})
	}

	match := doseAmountPattern.FindString(args.DosePerAdministration)
	if match == "" {
		return marshalResult(DailyDoseResult{
			DosesPerDay:     dosesPerDay,
			FrequencyParsed: freq,
			Warning:         fmt.Sprintf("Unable to parse dose: %s", args.DosePerAdministration),
		})
	}

	doseMg, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return marshalResult(DailyDoseResult{
			DosesPerDay:     dosesPerDay,
			FrequencyParsed: freq,
			Warning:         fmt.Sprintf("Unable to parse dose: %s", args.DosePerAdministration),
		})
	}

	dailyDose := doseMg * float64(dosesPerDay)

	var warning string
	if dosesPerDay > 6 {
		warning = fmt.Sprintf("Unusually high frequency: %d times per day. Verify with prescriber.", dosesPerDay)
	}

	return marshalResult(DailyDoseResult{
		DailyDoseMg:             &dailyDose,
		DosePerAdministrationMg: doseMg,
		DosesPerDay:             dosesPerDay,
		FrequencyParsed:         freq,
		Warning:                 warning,
	})
}
