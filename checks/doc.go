// Package checks implements the clinical validation capabilities for
// prescription review: allergy screening, recall lookup, pregnancy and
// renal safety, pediatric and geriatric dosing, drug interactions,
// contraindications, duplicate therapy, and daily dose calculation.
//
// Each check is registered as a typed tool handler and returns a JSON
// document with a recommendation field the model can reason over.
// Checks that depend on FDA labeling degrade gracefully when no label
// exists: they report the gap in the result rather than failing.
//
// The final_clinical_assessment capability is special: it packages the
// model's verdict and never performs I/O, so it cannot fail.
package checks
