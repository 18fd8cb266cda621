// Package notify sends order confirmation e-mails through Postmark.
package notify

import (
	"context"
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/keighl/postmark"

	"github.com/shopa-beauty/storefront-api/pkg/models"
	"github.com/shopa-beauty/storefront-api/pkg/shop"
)

// SendTimeout bounds one Postmark API call.
const SendTimeout = 5 * time.Second

type emailSender interface {
	SendEmail(email postmark.Email) (postmark.EmailResponse, error)
}

// EmailService handles sending emails using Postmark
type EmailService struct {
	client emailSender
	from   string
}

// NewEmailService returns nil when no server token is configured.
func NewEmailService(serverToken, sender string) *EmailService {
	if serverToken == "" || sender == "" {
		log.Println("Order e-mails disabled - POSTMARK_SERVER_TOKEN or EMAIL_SENDER not provided")
		return nil
	}
	return newEmailService(postmark.NewClient(serverToken, ""), sender, SendTimeout)
}

func newEmailService(client *postmark.Client, sender string, timeout time.Duration) *EmailService {
	client.HTTPClient = &http.Client{Timeout: timeout}
	return &EmailService{client: client, from: sender}
}

func (es *EmailService) SendEmail(toEmail, subject, htmlBody, textBody string) error {
	_, err := es.client.SendEmail(postmark.Email{
		From:     es.from,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: textBody,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// OrderPlaced implements shop.OrderListener.
func (es *EmailService) OrderPlaced(ctx context.Context, user *models.User, order *models.Order) error {
	if user == nil || user.Email == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	subject := fmt.Sprintf("Order #%d confirmation", order.ID)
	return es.SendEmail(user.Email, subject, orderHTML(user, order), orderText(user, order))
}

func orderText(user *models.User, order *models.Order) string {
	receipt := shop.Receipt(order)

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nThank you for your purchase! Order #%d has been placed.\n\n", user.Username, order.ID)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "  %d x %s  $%.2f\n", item.Quantity, item.ProductTitle, item.LineTotal)
	}
	fmt.Fprintf(&b, "\nSubtotal: $%.2f\nShipping: $%.2f\nTax: $%.2f\nTotal: $%.2f\n",
		receipt.Subtotal, receipt.Shipping, receipt.Tax, receipt.Total)
	fmt.Fprintf(&b, "\nShipping to: %s\n", order.ShippingAddress)
	return b.String()
}

func orderHTML(user *models.User, order *models.Order) string {
	receipt := shop.Receipt(order)

	var rows strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&rows, "<tr><td>%d</td><td>%s</td><td>$%.2f</td></tr>",
			item.Quantity, html.EscapeString(item.ProductTitle), item.LineTotal)
	}

	return fmt.Sprintf(
		"<strong>Hi %s,</strong><br><br>Thank you for your purchase! Your order (ID: %d) has been placed successfully.<br><br>"+
			"<table>%s</table><br>"+
			"Subtotal: $%.2f<br>Shipping: $%.2f<br>Tax: $%.2f<br>Total Amount: <strong>$%.2f</strong><br><br>"+
			"Shipping to: %s",
		html.EscapeString(user.Username),
		order.ID,
		rows.String(),
		receipt.Subtotal, receipt.Shipping, receipt.Tax, receipt.Total,
		html.EscapeString(order.ShippingAddress),
	)
}
