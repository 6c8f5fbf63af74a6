// Package tool provides the capability registry for the sidekick loop.
//
// A capability is a named, schema-described operation the Worker may request.
// The registry is populated once at startup and handed to the loop, which
// binds the definitions to every reasoning call and dispatches requested
// calls by name:
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("check_drug_allergy", "Check patient allergies against a drug", allergyHandler),
//	    tool.Func("check_drug_recall", "Check FDA recalls for a drug", recallHandler),
//	)
//
// Handler errors never escape Execute: they come back as error-flagged
// ToolResults so the model can react to the failure as data.
package tool
