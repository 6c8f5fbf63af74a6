// Package fda provides a client for the openFDA drug APIs.
//
// The client queries two openFDA endpoints: drug labeling
// (label.json) for prescribing information and enforcement reports
// (enforcement.json) for recall status. Label lookups try the brand
// name first and fall back to the generic name.
//
// Transient failures (rate limits, server errors) are surfaced as
// categorized errors so callers can retry them with the retry package.
package fda
