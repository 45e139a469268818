package ai

import (
	"context"
	"time"

	"julianmorley.ca/con-plar/storefront/pkg/models"
	"julianmorley.ca/con-plar/storefront/pkg/store"
)

// Report is the envelope returned by every AI report
type Report struct {
	Status      string     `json:"status"`
	Data        ReportData `json:"data"`
	GeneratedAt time.Time  `json:"generated_at"`
	AIEnabled   bool       `json:"ai_enabled"`
}

type ReportData struct {
	RawData    interface{} `json:"raw_data"`
	AIInsights string      `json:"ai_insights,omitempty"`
	Summary    string      `json:"summary"`
	Error      string      `json:"error,omitempty"`
}

// SalesData is the raw input of the sales report.
type SalesData struct {
	ByStatus    []store.StatusSummary `json:"by_status"`
	TopProducts []store.ProductSales  `json:"top_products"`
}

// SalesReport adds insights to order statistics. An LLM failure is reported
// inside the report, never as an error.
func (r *Reporter) SalesReport(ctx context.Context, byStatus []store.StatusSummary, top []store.ProductSales) *Report {
	data := SalesData{ByStatus: byStatus, TopProducts: top}
	return r.generate(ctx, data, SalesReportSystemPrompt, formatSalesDataPrompt(data), "sales")
}

// ContactDigest summarises recent contact messages.
func (r *Reporter) ContactDigest(ctx context.Context, contacts []models.Contact) *Report {
	if contacts == nil {
		contacts = []models.Contact{}
	}
	return r.generate(ctx, contacts, ContactDigestSystemPrompt, formatContactDigestPrompt(contacts, len(contacts)), "contact")
}

func (r *Reporter) generate(ctx context.Context, raw interface{}, systemPrompt, userPrompt, kind string) *Report {
	report := &Report{
		Status:      "success",
		GeneratedAt: time.Now(),
		AIEnabled:   r.Enabled(),
		Data: ReportData{
			RawData: raw,
			Summary: "Raw " + kind + " data (AI insights unavailable)",
		},
	}
	if !r.Enabled() {
		return report
	}

	insights, err := r.generateCompletion(ctx, systemPrompt, userPrompt)
	if err != nil {
		report.Data.Error = "AI analysis failed: " + err.Error()
		return report
	}
	report.Data.AIInsights = insights
	report.Data.Summary = "AI-generated " + kind + " insights and recommendations"
	return report
}
