package checks

import (
	"context"
	"fmt"
)

// RecallArgs are the inputs to the recall check.
type RecallArgs struct {
	DrugName  string `json:"drug_name" desc:"Drug to look up in FDA enforcement reports" required:"true"`
	LotNumber string `json:"lot_number" desc:"Specific lot number to check, if known"`
}

// RecallInfo describes a single active recall.
type RecallInfo struct {
	Reason         string `json:"reason,omitempty"`
	Classification string `json:"classification,omitempty"`
	Date           string `json:"date,omitempty"`
	LotNumbers     string `json:"lot_numbers,omitempty"`
	Status         string `json:"status"`
}

// RecallResult reports recall status for a drug.
type RecallResult struct {
	HasRecall      bool         `json:"has_recall"`
	ActiveRecalls  []RecallInfo `json:"active_recalls"`
	RecallCount    int          `json:"recall_count,omitempty"`
	PastRecalls    int          `json:"past_recalls,omitempty"`
	Recommendation string       `json:"recommendation"`
}

// CheckRecall looks up FDA enforcement reports for the drug and flags
// any recall still in ongoing or pending status.
func (c *Checks) CheckRecall(ctx context.Context, args RecallArgs) (string, error) {
	recalls, err := c.drugInfo.Recalls(ctx, args.DrugName, args.LotNumber)
	if err != nil {
		return "", fmt.Errorf("recall lookup for %s: %w", args.DrugName, err)
	}

	if len(recalls) == 0 {
		return marshalResult(RecallResult{
			ActiveRecalls:  []RecallInfo{},
			Recommendation: "No active recalls found.",
		})
	}

	var active []RecallInfo
	for _, r := range recalls {
		if !r.Active() {
			continue
		}
		active = append(active, RecallInfo{
			Reason:         r.Reason,
			Classification: r.Classification,
			Date:           r.RecallInitiated,
			LotNumbers:     r.LotNumbers,
			Status:         r.Status,
		})
	}

	if len(active) > 0 {
		return marshalResult(RecallResult{
			HasRecall:      true,
			ActiveRecalls:  active,
			RecallCount:    len(active),
			Recommendation: "CRITICAL: Active recall found. DO NOT DISPENSE. Quarantine product and notify supervisor.",
		})
	}

	return marshalResult(RecallResult{
		ActiveRecalls:  []RecallInfo{},
		PastRecalls:    len(recalls),
		Recommendation: fmt.Sprintf("No active recalls. %d resolved recalls in history.", len(recalls)),
	})
}
