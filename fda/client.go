package fda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	ai "github.com/codypharm/pharma-sidekick"
	"github.com/codypharm/pharma-sidekick/retry"
)

// DefaultBaseURL is the openFDA API root.
const DefaultBaseURL = "https://api.fda.gov"

// ErrNotFound indicates openFDA has no records for the queried drug.
var ErrNotFound = errors.New("fda: no records found")

// LabelSource supplies drug labeling information.
type LabelSource interface {
	DrugLabel(ctx context.Context, drug string) (*Label, error)
}

// RecallSource supplies drug recall reports. A non-empty lot narrows
// the search to enforcement reports naming that lot.
type RecallSource interface {
	Recalls(ctx context.Context, drug, lot string) ([]Recall, error)
}

// DrugInfoSource combines label and recall lookups.
type DrugInfoSource interface {
	LabelSource
	RecallSource
}

// Label holds the prescribing information sections extracted from an
// openFDA drug labeling record.
type Label struct {
	BrandName               string `json:"brand_name,omitempty"`
	GenericName             string `json:"generic_name,omitempty"`
	Indications             string `json:"indications,omitempty"`
	Contraindications       string `json:"contraindications,omitempty"`
	Warnings                string `json:"warnings,omitempty"`
	AdverseReactions        string `json:"adverse_reactions,omitempty"`
	DrugInteractions        string `json:"drug_interactions,omitempty"`
	DosageAndAdministration string `json:"dosage_and_administration,omitempty"`
	Pregnancy               string `json:"pregnancy,omitempty"`
	PediatricUse            string `json:"pediatric_use,omitempty"`
	GeriatricUse            string `json:"geriatric_use,omitempty"`
}

// Recall is a single enforcement report for a drug product.
type Recall struct {
	Status             string `json:"status"`
	Classification     string `json:"classification,omitempty"`
	Reason             string `json:"reason,omitempty"`
	ProductDescription string `json:"product_description,omitempty"`
	RecallInitiated    string `json:"recall_initiated,omitempty"`
	LotNumbers         string `json:"lot_numbers,omitempty"`
}

// Active reports whether the recall is still in effect.
func (r Recall) Active() bool {
	switch strings.ToLower(r.Status) {
	case "ongoing", "pending":
		return true
	}
	return false
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL overrides the API root, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithAPIKey attaches an openFDA API key to each request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithRetryConfig sets the retry policy for transient failures.
func WithRetryConfig(cfg retry.Config) Option {
	return func(c *Client) { c.retryConfig = cfg }
}

// Client queries the openFDA drug APIs.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	retryConfig retry.Config
}

// NewClient creates an openFDA client with default settings.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		baseURL:     DefaultBaseURL,
		retryConfig: retry.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type labelResponse struct {
	Results []labelRecord `json:"results"`
}

type labelRecord struct {
	IndicationsAndUsage     []string `json:"indications_and_usage"`
	Contraindications       []string `json:"contraindications"`
	Warnings                []string `json:"warnings"`
	WarningsAndCautions     []string `json:"warnings_and_cautions"`
	AdverseReactions        []string `json:"adverse_reactions"`
	DrugInteractions        []string `json:"drug_interactions"`
	DosageAndAdministration []string `json:"dosage_and_administration"`
	Pregnancy               []string `json:"pregnancy"`
	PediatricUse            []string `json:"pediatric_use"`
	GeriatricUse            []string `json:"geriatric_use"`
	OpenFDA                 struct {
		BrandName   []string `json:"brand_name"`
		GenericName []string `json:"generic_name"`
	} `json:"openfda"`
}

// DrugLabel fetches the labeling record for a drug. It searches by
// brand name first, then by generic name. Returns ErrNotFound when
// neither search matches.
func (c *Client) DrugLabel(ctx context.Context, drug string) (*Label, error) {
	drug = strings.TrimSpace(drug)
	if drug == "" {
		return nil, ai.ErrEmptyInput
	}

	for _, field := range []string{"openfda.brand_name", "openfda.generic_name"} {
		rec, err := c.fetchLabel(ctx, field, drug)
		if err == nil {
			return rec.toLabel(), nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}

func (c *Client) fetchLabel(ctx context.Context, field, drug string) (*labelRecord, error) {
	q := url.Values{}
	q.Set("search", fmt.Sprintf(`%s:%q`, field, drug))
	q.Set("limit", "1")

	var resp labelResponse
	if err := c.get(ctx, "/drug/label.json", q, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, ErrNotFound
	}
	return &resp.Results[0], nil
}

func (r *labelRecord) toLabel() *Label {
	l := &Label{
		Indications:             joinSections(r.IndicationsAndUsage),
		Contraindications:       joinSections(r.Contraindications),
		AdverseReactions:        joinSections(r.AdverseReactions),
		DrugInteractions:        joinSections(r.DrugInteractions),
		DosageAndAdministration: joinSections(r.DosageAndAdministration),
		Pregnancy:               joinSections(r.Pregnancy),
		PediatricUse:            joinSections(r.PediatricUse),
		GeriatricUse:            joinSections(r.GeriatricUse),
	}
	l.Warnings = joinSections(r.Warnings)
	if l.Warnings == "" {
		l.Warnings = joinSections(r.WarningsAndCautions)
	}
	if len(r.OpenFDA.BrandName) > 0 {
		l.BrandName = r.OpenFDA.BrandName[0]
	}
	if len(r.OpenFDA.GenericName) > 0 {
		l.GenericName = r.OpenFDA.GenericName[0]
	}
	return l
}

func joinSections(sections []string) string {
	var parts []string
	for _, s := range sections {
		s = strings.TrimSpace(s)
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

type enforcementResponse struct {
	Results []enforcementRecord `json:"results"`
}

type enforcementRecord struct {
	Status               string `json:"status"`
	Classification       string `json:"classification"`
	ReasonForRecall      string `json:"reason_for_recall"`
	ProductDescription   string `json:"product_description"`
	RecallInitiationDate string `json:"recall_initiation_date"`
	CodeInfo             string `json:"code_info"`
}

// Recalls fetches enforcement reports mentioning the drug. A non-empty
// lot restricts the search to reports whose code_info names that lot.
// Returns an empty slice when no reports exist.
func (c *Client) Recalls(ctx context.Context, drug, lot string) ([]Recall, error) {
	drug = strings.TrimSpace(drug)
	if drug == "" {
		return nil, ai.ErrEmptyInput
	}

	search := fmt.Sprintf(`product_description:%q`, drug)
	if lot = strings.TrimSpace(lot); lot != "" {
		search += fmt.Sprintf(` AND code_info:%q`, lot)
	}

	q := url.Values{}
	q.Set("search", search)
	q.Set("limit", "10")

	var resp enforcementResponse
	if err := c.get(ctx, "/drug/enforcement.json", q, &resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	recalls := make([]Recall, 0, len(resp.Results))
	for _, rec := range resp.Results {
		recalls = append(recalls, Recall{
			Status:             rec.Status,
			Classification:     rec.Classification,
			Reason:             rec.ReasonForRecall,
			ProductDescription: rec.ProductDescription,
			RecallInitiated:    rec.RecallInitiationDate,
			LotNumbers:         rec.CodeInfo,
		})
	}
	return recalls, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if c.apiKey != "" {
		query.Set("api_key", c.apiKey)
	}
	endpoint := c.baseURL + path + "?" + query.Encode()

	body, err := retry.Do(ctx, c.retryConfig, func() ([]byte, error) {
		return c.fetch(ctx, endpoint)
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return ai.NewPermanentError(fmt.Sprintf("fda: decode %s response", path), 0, err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, ai.NewPermanentError("fda: build request", 0, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ai.NewTransientError("fda: request failed", 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, ai.NewTransientError("fda: read response", resp.StatusCode, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		delay := retryAfter(resp.Header.Get("Retry-After"))
		return nil, ai.NewTransientErrorWithRetry("fda: rate limited", resp.StatusCode, delay, nil)
	case resp.StatusCode >= 500:
		return nil, ai.NewTransientError(fmt.Sprintf("fda: server error %d", resp.StatusCode), resp.StatusCode, nil)
	default:
		return nil, ai.NewPermanentError(fmt.Sprintf("fda: unexpected status %d", resp.StatusCode), resp.StatusCode, nil)
	}
}

func retryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
