package ai

import (
	"fmt"
	"strings"

	"github.com/shopa-beauty/storefront-api/pkg/models"
)

const ReceiptSummarySystemPrompt = `You are a friendly customer service assistant for an online beauty store.
Write a short order confirmation note for the customer based on the order data.
Mention what was bought and the total charged, including shipping and tax.
Do not invent products, prices, or delivery dates.
Keep it to 2-3 sentences.`

// formatReceiptForAI renders the order as plain lines for the model.
func formatReceiptForAI(order *models.Order, receipt models.Receipt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order #%d placed %s\n", order.ID, order.CreatedAt.Format("January 2, 2006"))
	fmt.Fprintf(&b, "Shipping to: %s\n", order.ShippingAddress)
	b.WriteString("Items:\n")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "- %s x%d: $%.2f\n", item.ProductTitle, item.Quantity, item.LineTotal)
	}
	fmt.Fprintf(&b, "Subtotal: $%.2f\nShipping: $%.2f\nTax: $%.2f\nTotal: $%.2f\n",
		receipt.Subtotal, receipt.Shipping, receipt.Tax, receipt.Total)
	return b.String()
}
