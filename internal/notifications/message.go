package notifications

import (
	"fmt"
	"strings"

	"github.com/angelmondragon/luxehome-backend/pkg/db/models"
)

const separator = "━━━━━━━━━━━━━━━"

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"_", `\_`,
	"*", `\*`,
	"`", "\\`",
	"[", `\[`,
)

// FormatOrderMessage renders the staff chat summary of a placed order.
// Customer-supplied text is escaped for Telegram's legacy Markdown.
func FormatOrderMessage(order *models.Order, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🛒 *New Order #%s*\n", order.ID)
	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "👤 *Customer:* %s\n", escape(order.FullName))
	fmt.Fprintf(&b, "📞 *Phone:* %s\n", escape(order.Phone))
	fmt.Fprintf(&b, "🏠 *Address:* %s, %s\n", escape(order.Address), escape(order.City))
	b.WriteString(separator + "\n")
	b.WriteString("📦 *Items:*\n")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "  - %s x%d = %s%s\n", escape(item.ProductName), item.Quantity, currency, item.Subtotal().StringFixed(2))
	}
	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "💰 *Total:* %s%s\n", currency, order.TotalPrice.StringFixed(2))
	b.WriteString("💳 *Payment:* Cash on Delivery\n")
	if note := strings.TrimSpace(order.Note); note != "" {
		fmt.Fprintf(&b, "📝 *Note:* %s\n", escape(note))
	}
	return b.String()
}

func escape(s string) string {
	return markdownEscaper.Replace(s)
}
