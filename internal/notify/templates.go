package notify

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"
)

const signature = "Best regards,\nThe NOON Opticals Team"

type Item struct {
	Name     string
	Quantity int
	Price    int64
}

// OrderDetails carries what the order emails show. Empty fields print N/A.
type OrderDetails struct {
	OrderID        string
	Date           string
	Products       string
	Items          []Item
	Amount         int64
	Address        string
	PaymentMethod  string
	TrackingNumber string
	Carrier        string
}

var funcs = template.FuncMap{
	"rupees": rupees,
	"orNA": func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "N/A"
		}
		return s
	},
}

var templates = template.Must(template.New("emails").Funcs(funcs).Parse(`
{{define "header"}}Hello {{.Name}},
{{end}}

{{define "orderBlock"}}📦 ORDER DETAILS
━━━━━━━━━━━━━━━━
Order ID: {{.Order.OrderID}}
Products: {{orNA .Order.Products}}
Amount: {{rupees .Order.Amount}}{{end}}

{{define "welcome"}}{{template "header" .}}
Welcome to NOON Opticals! We're thrilled to have you as part of our family.

Thank you for creating your account with us. You can now:
✓ Browse our premium eyewear collection
✓ Save your favorite frames
✓ Track your orders
{{if .SiteURL}}
Visit us: {{.SiteURL}}
{{end}}
If you have any questions, feel free to reach out to us.{{end}}

{{define "placed"}}{{template "header" .}}
Thank you for your order at NOON Opticals!

📦 ORDER DETAILS
━━━━━━━━━━━━━━━━
Order ID: {{.Order.OrderID}}
Date: {{.Order.Date}}

ITEMS:
{{range .Order.Items}}• {{.Name}} (Qty: {{.Quantity}}) - {{rupees .Price}}
{{end}}
💰 Total: {{rupees .Order.Amount}}

📍 Shipping Address:
{{if .Order.Address}}{{.Order.Address}}{{else}}Will be confirmed on WhatsApp{{end}}

💳 Payment: {{if .Order.PaymentMethod}}{{.Order.PaymentMethod}}{{else}}Cash on Delivery{{end}}

We'll notify you when your order ships.{{end}}

{{define "confirmed"}}{{template "header" .}}
Great news! Your order has been confirmed by our team! 🎉

{{template "orderBlock" .}}

Your order is now being processed and will be shipped soon.
We'll send you another email once it's on its way!

Thank you for shopping with us!{{end}}

{{define "processing"}}{{template "header" .}}
Your order is now being processed! 📦

{{template "orderBlock" .}}

Our team is preparing your eyewear with care.
We'll notify you once it ships!

Thank you for your patience!{{end}}

{{define "shipped"}}{{template "header" .}}
Exciting news! Your order has been shipped! 🎉

📦 SHIPPING DETAILS
━━━━━━━━━━━━━━━━━━
Order ID: {{.Order.OrderID}}
Products: {{orNA .Order.Products}}
Amount: {{rupees .Order.Amount}}
{{if .Order.TrackingNumber}}Tracking Number: {{.Order.TrackingNumber}}
{{end}}{{if .Order.Carrier}}Carrier: {{.Order.Carrier}}
{{end}}Estimated Delivery: 3-5 business days

Your package is on its way to you!

Thank you for shopping with us!{{end}}

{{define "delivered"}}{{template "header" .}}
Your order has been delivered! 📦✅

📦 ORDER DETAILS
━━━━━━━━━━━━━━━━
Order ID: {{.Order.OrderID}}
Products: {{orNA .Order.Products}}

We hope you love your new eyewear!

If you have any questions or concerns about your order,
please don't hesitate to reach out to us.

We'd love to hear your feedback!
Consider leaving a review on our website.

Thank you for choosing NOON Opticals!{{end}}

{{define "paid"}}{{template "header" .}}
Thank you! We have received your payment. ✅

📦 ORDER DETAILS
━━━━━━━━━━━━━━━━
Order ID: {{.Order.OrderID}}
Amount Paid: {{rupees .Order.Amount}}
Payment Status: Paid ✓

Your order will be processed and shipped soon!

Thank you for shopping with us!{{end}}

{{define "custom"}}{{template "header" .}}
{{.Body}}{{end}}
`))

type view struct {
	Name    string
	SiteURL string
	Order   OrderDetails
	Body    string
}

func render(name string, v view) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, v); err != nil {
		return "", fmt.Errorf("render %s email: %w", name, err)
	}
	return strings.TrimSpace(buf.String()) + "\n\n" + signature, nil
}

// displayName falls back to the local part of the address.
func displayName(name, email string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}

// rupees formats an amount with Indian digit grouping, e.g. ₹1,25,000.
func rupees(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		return "₹" + sign + digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	groups = append([]string{head}, groups...)
	return "₹" + sign + strings.Join(groups, ",") + "," + tail
}
