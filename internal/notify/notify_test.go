package notify

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/domain"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Discard()
	os.Exit(m.Run())
}

type recorder struct {
	mu   sync.Mutex
	sent []Message
}

func (r *recorder) Send(_ context.Context, msg Message) Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return Result{Success: true}
}

func (r *recorder) messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.sent...)
}

func TestNameFallsBackToEmailLocalPart(t *testing.T) {
	rec := &recorder{}
	n := New(rec)

	res := n.OrderShipped(context.Background(), "kiran.k@email.com", "", OrderDetails{OrderID: "ORD-2025-004", Amount: 3499, TrackingNumber: "TRK1"})
	require.True(t, res.Success)

	msgs := rec.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "kiran.k", msgs[0].ToName)
	assert.Equal(t, "Your Order is On Its Way! 🚚 - ORD-2025-004", msgs[0].Subject)
	assert.Contains(t, msgs[0].Body, "Hello kiran.k,")
	assert.Contains(t, msgs[0].Body, "Tracking Number: TRK1")
	assert.NotContains(t, msgs[0].Body, "Carrier:")
	assert.Contains(t, msgs[0].Body, "Products: N/A")
}

func TestEveryTemplateEndsWithSignature(t *testing.T) {
	rec := &recorder{}
	n := New(rec, WithSiteURL("https://noonopticals.in"))
	ctx := context.Background()
	d := OrderDetails{OrderID: "ORD-2025-001", Products: "Neon Vision", Amount: 125000}

	n.Welcome(ctx, "a@email.com", "Asha")
	n.OrderPlaced(ctx, "a@email.com", "Asha", d)
	n.OrderConfirmed(ctx, "a@email.com", "Asha", d)
	n.OrderProcessing(ctx, "a@email.com", "Asha", d)
	n.OrderShipped(ctx, "a@email.com", "Asha", d)
	n.OrderDelivered(ctx, "a@email.com", "Asha", d)
	n.PaymentReceived(ctx, "a@email.com", "Asha", d)
	n.Custom(ctx, "a@email.com", "Asha", "Store hours", "We open at 10.")

	msgs := rec.messages()
	require.Len(t, msgs, 8)
	for _, m := range msgs {
		assert.True(t, len(m.Body) > len(signature))
		assert.Equal(t, signature, m.Body[len(m.Body)-len(signature):], m.Subject)
		assert.Contains(t, m.Body, "Hello Asha,")
	}
	assert.Contains(t, msgs[0].Body, "Visit us: https://noonopticals.in")
	assert.Contains(t, msgs[1].Body, "Cash on Delivery")
	assert.Contains(t, msgs[2].Body, "Amount: ₹1,25,000")
	assert.Contains(t, msgs[7].Body, "We open at 10.")
}

func TestMissingRecipientIsNotSent(t *testing.T) {
	rec := &recorder{}
	n := New(rec)

	res := n.Welcome(context.Background(), " ", "Nobody")
	assert.Equal(t, Result{Error: "no email"}, res)
	assert.Empty(t, rec.messages())
}

func TestNoopReportsNotConfigured(t *testing.T) {
	n := New(nil)
	res := n.Welcome(context.Background(), "a@email.com", "A")
	assert.Equal(t, Result{Error: "not configured"}, res)
}

func TestOrderChangedPicksTemplates(t *testing.T) {
	rec := &recorder{}
	n := New(rec)

	base := domain.Order{
		ID:       "ORD-2025-002",
		Customer: domain.OrderCustomer{Name: "Priya", Email: "priya@email.com"},
		Lines:    []domain.OrderLine{{Name: "Classic Aviator", Quantity: 1, Price: 3899}},
		Amount:   3899,
		Status:   domain.OrderPending,
		Payment:  domain.PaymentPending,
	}

	confirmed := base
	confirmed.Status = domain.OrderProcessing
	confirmed.Payment = domain.PaymentPaid
	n.OrderChanged(base, confirmed)

	shipped := confirmed
	shipped.Status = domain.OrderShipped
	n.OrderChanged(confirmed, shipped)

	n.OrderChanged(shipped, shipped)
	n.Wait()

	subjects := map[string]bool{}
	for _, m := range rec.messages() {
		subjects[m.Subject] = true
	}
	assert.Equal(t, map[string]bool{
		"Payment Received - ORD-2025-002 💳":             true,
		"Order Confirmed - ORD-2025-002 ✅":              true,
		"Your Order is On Its Way! 🚚 - ORD-2025-002": true,
	}, subjects)
}

func TestRupees(t *testing.T) {
	cases := map[int64]string{
		0:        "₹0",
		999:      "₹999",
		3499:     "₹3,499",
		42500:    "₹42,500",
		125000:   "₹1,25,000",
		12345678: "₹1,23,45,678",
	}
	for in, want := range cases {
		assert.Equal(t, want, rupees(in))
	}
}

func TestDetailsOf(t *testing.T) {
	d := DetailsOf(domain.Order{
		ID: "ORD-2025-003",
		Lines: []domain.OrderLine{
			{Name: "Neon Vision", Quantity: 2, Price: 3499},
			{Name: "Retro Round", Quantity: 1, Price: 2999},
		},
		Amount: 9997,
	})
	assert.Equal(t, "Neon Vision, Retro Round", d.Products)
	assert.Len(t, d.Items, 2)
}
