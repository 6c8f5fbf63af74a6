package main

import (
	"fmt"
	"strings"
)

// Prescription captures the structured intake form for a clinical
// validation request.
type Prescription struct {
	// Patient
	Age         *int     `json:"age,omitempty"`
	WeightKg    *float64 `json:"weight_kg,omitempty"`
	Gender      string   `json:"gender,omitempty"`
	IsPregnant  bool     `json:"is_pregnant,omitempty"`
	RenalStatus string   `json:"renal_status,omitempty"`
	Allergies   string   `json:"allergies,omitempty"`
	OtherMeds   string   `json:"concurrent_medications,omitempty"`

	// Order
	DrugName     string `json:"drug_name"`
	StrengthDose string `json:"strength_dose,omitempty"`
	Route        string `json:"route,omitempty"`
	Frequency    string `json:"frequency,omitempty"`
	DurationDays *int   `json:"duration_days,omitempty"`
	Indication   string `json:"indication,omitempty"`
}

// BuildMessage renders the prescription as a readable validation
// request. Fields left blank or set to "none"/"normal" are omitted.
func (p Prescription) BuildMessage() (string, error) {
	if strings.TrimSpace(p.DrugName) == "" {
		return "", fmt.Errorf("drug name is required")
	}

	lines := []string{"Please perform full clinical validation of this prescription."}

	var patient []string
	if p.Age != nil {
		patient = append(patient, fmt.Sprintf("%d years old", *p.Age))
	}
	if p.WeightKg != nil {
		patient = append(patient, fmt.Sprintf("%g kg", *p.WeightKg))
	}
	if p.Gender != "" {
		patient = append(patient, strings.ToLower(p.Gender))
	}
	if p.IsPregnant {
		patient = append(patient, "pregnant")
	}
	if len(patient) > 0 {
		lines = append(lines, "Patient: "+strings.Join(patient, ", ")+".")
	}

	if v := strings.TrimSpace(p.RenalStatus); v != "" && !strings.EqualFold(v, "normal") {
		lines = append(lines, "Renal function: "+v)
	}
	if v := strings.TrimSpace(p.Allergies); v != "" && !strings.EqualFold(v, "none") {
		lines = append(lines, "Allergies: "+v)
	}
	if v := strings.TrimSpace(p.OtherMeds); v != "" && !strings.EqualFold(v, "none") {
		lines = append(lines, "Concurrent medications: "+v)
	}

	lines = append(lines, "", "Prescription:")
	lines = append(lines, "- Drug: "+strings.TrimSpace(p.DrugName))
	if v := strings.TrimSpace(p.StrengthDose); v != "" {
		lines = append(lines, "- Dose / strength: "+v)
	}
	if v := strings.TrimSpace(p.Route); v != "" {
		lines = append(lines, "- Route: "+v)
	}
	if v := strings.TrimSpace(p.Frequency); v != "" {
		lines = append(lines, "- Frequency: "+v)
	}
	if p.DurationDays != nil {
		plural := "s"
		if *p.DurationDays == 1 {
			plural = ""
		}
		lines = append(lines, fmt.Sprintf("- Duration: %d day%s", *p.DurationDays, plural))
	}
	if v := strings.TrimSpace(p.Indication); v != "" {
		lines = append(lines, "- Indication: "+v)
	}

	lines = append(lines,
		"",
		"Please run all appropriate checks:",
		"- allergies & cross-reactivity",
		"- drug-drug interactions",
		"- duplicate therapy",
		"- dosing (weight / age / renal / hepatic / geriatric / pediatric)",
		"- pregnancy / lactation safety (if applicable)",
		"- recent recalls / shortages",
		"",
		"Then give a clear Dispense / Do Not Dispense decision with structured reasoning and pharmacist recommendations.",
	)

	return strings.Join(lines, "\n"), nil
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

// Examples are canned test prescriptions for exercising the loop.
var Examples = map[string]Prescription{
	"pediatric": {
		Age: intPtr(4), WeightKg: floatPtr(18.5), Gender: "Male",
		RenalStatus: "Normal", Allergies: "None known", OtherMeds: "None",
		DrugName: "Amoxicillin", StrengthDose: "250 mg / 5 mL suspension",
		Route: "oral", Frequency: "8-hourly", DurationDays: intPtr(7),
		Indication: "acute otitis media",
	},
	"geriatric-renal": {
		Age: intPtr(81), WeightKg: floatPtr(58), Gender: "Female",
		RenalStatus: "eGFR 34 mL/min/1.73m2", Allergies: "ACE-inhibitor angioedema",
		OtherMeds: "Amlodipine 5 mg daily, Paracetamol PRN",
		DrugName:  "Ibuprofen", StrengthDose: "400 mg tablet",
		Route: "oral", Frequency: "8-hourly PRN",
		Indication: "osteoarthritis pain",
	},
	"pregnancy": {
		Age: intPtr(28), WeightKg: floatPtr(74), Gender: "Female", IsPregnant: true,
		RenalStatus: "Normal", Allergies: "NKDA",
		OtherMeds: "Folic acid 800 mcg daily, Levothyroxine 100 mcg daily",
		DrugName:  "Metoclopramide", StrengthDose: "10 mg tablet",
		Route: "oral", Frequency: "8-hourly PRN", DurationDays: intPtr(3),
		Indication: "hyperemesis",
	},
	"allergy": {
		Age: intPtr(53), WeightKg: floatPtr(92), Gender: "Male",
		RenalStatus: "Normal", Allergies: "Penicillin - anaphylaxis 1998",
		OtherMeds: "Atorvastatin 40 mg nocte, Metformin XR 1 g BD",
		DrugName:  "Cefalexin", StrengthDose: "500 mg capsule",
		Route: "oral", Frequency: "6-hourly", DurationDays: intPtr(7),
		Indication: "cellulitis",
	},
}
