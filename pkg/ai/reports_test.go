package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/openai/openai-go/v2/option"

	"github.com/shopa-beauty/storefront-api/pkg/models"
)

func testOrder() (*models.Order, models.Receipt) {
	order := &models.Order{
		ID:              3,
		Total:           32.5,
		ShippingAddress: "1 Main St, Springfield, IL 62701",
		CreatedAt:       time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Items: []models.OrderItem{
			{ProductTitle: "Lipstick", LineTotal: 20, Quantity: 2},
			{ProductTitle: "Blush", LineTotal: 5, Quantity: 1},
		},
	}
	return order, models.Receipt{OrderID: 3, Subtotal: 25, Shipping: 5, Tax: 2.5, Total: 32.5, Items: 3}
}

func TestGenerateReceiptReportDisabled(t *testing.T) {
	var c *Client
	order, receipt := testOrder()

	report := c.GenerateReceiptReport(context.Background(), order, receipt)
	if report.AIEnabled || report.AISummary != "" || report.Error != "" {
		t.Fatalf("report = %+v", report)
	}
	if report.Receipt != receipt || len(report.Items) != 2 {
		t.Fatalf("receipt not carried: %+v", report)
	}
}

func TestGenerateReceiptReportSummary(t *testing.T) {
	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.Unmarshal(body, &req)
		if len(req.Messages) == 2 {
			prompt = req.Messages[1].Content
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"m",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Thanks for your order!"}}]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "", option.WithMaxRetries(0))
	order, receipt := testOrder()

	report := c.GenerateReceiptReport(context.Background(), order, receipt)
	if !report.AIEnabled {
		t.Fatal("expected AI enabled")
	}
	if report.AISummary != "Thanks for your order!" {
		t.Fatalf("summary = %q (error %q)", report.AISummary, report.Error)
	}
	for _, want := range []string{"Lipstick x2: $20.00", "Total: $32.50"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestGenerateReceiptReportUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "", option.WithMaxRetries(0))
	order, receipt := testOrder()

	report := c.GenerateReceiptReport(context.Background(), order, receipt)
	if report.AISummary != "" || report.Error == "" {
		t.Fatalf("report = %+v", report)
	}
}
