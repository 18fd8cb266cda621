package ai

import (
	"context"
	"time"

	"github.com/shopa-beauty/storefront-api/pkg/models"
)

// ReceiptReport is the receipt endpoint payload: the computed breakdown plus
// an optional generated note.
type ReceiptReport struct {
	Receipt     models.Receipt     `json:"receipt"`
	Items       []models.OrderItem `json:"items"`
	AISummary   string             `json:"ai_summary,omitempty"`
	Error       string             `json:"error,omitempty"`
	GeneratedAt time.Time          `json:"generated_at"`
	AIEnabled   bool               `json:"ai_enabled"`
}

// GenerateReceiptReport never fails: a disabled or failing AI service leaves
// the summary empty and records the reason.
func (c *Client) GenerateReceiptReport(ctx context.Context, order *models.Order, receipt models.Receipt) *ReceiptReport {
	report := &ReceiptReport{
		Receipt:     receipt,
		Items:       order.Items,
		GeneratedAt: time.Now().UTC(),
		AIEnabled:   c.IsEnabled(),
	}
	if report.Items == nil {
		report.Items = []models.OrderItem{}
	}

	if !c.IsEnabled() {
		return report
	}

	summary, err := c.generateCompletion(ctx, ReceiptSummarySystemPrompt, formatReceiptForAI(order, receipt))
	if err != nil {
		report.Error = "AI summary failed: " + err.Error()
		return report
	}
	report.AISummary = summary
	return report
}
