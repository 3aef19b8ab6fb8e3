// Package notify sends customer emails for account and order events.
package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/domain"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/logger"
)

type Message struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

// Result reports the outcome of one send. Failures are values, not errors.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type Sender interface {
	Send(ctx context.Context, msg Message) Result
}

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromName    string
	FromAddress string
}

type SMTPSender struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.FromName == "" {
		cfg.FromName = "NOON Opticals"
	}
	return &SMTPSender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) Result {
	if strings.TrimSpace(msg.To) == "" {
		return Result{Error: "no email"}
	}
	if err := ctx.Err(); err != nil {
		return Result{Error: err.Error()}
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.FromAddress, s.cfg.FromName)
	m.SetAddressHeader("To", msg.To, msg.ToName)
	m.SetHeader("Reply-To", s.cfg.FromAddress)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return Result{Error: err.Error()}
	}
	return Result{Success: true}
}

// Noop is used when no mail server is configured.
type Noop struct{}

func (Noop) Send(context.Context, Message) Result {
	return Result{Error: "not configured"}
}

type Option func(*Notifier)

// WithSiteURL sets the link printed in the welcome email.
func WithSiteURL(url string) Option {
	return func(n *Notifier) { n.siteURL = url }
}

func WithSendTimeout(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.timeout = d
		}
	}
}

type Notifier struct {
	sender  Sender
	siteURL string
	timeout time.Duration
	log     *logrus.Entry
	wg      sync.WaitGroup
}

func New(sender Sender, opts ...Option) *Notifier {
	if sender == nil {
		sender = Noop{}
	}
	n := &Notifier{
		sender:  sender,
		timeout: 30 * time.Second,
		log:     logger.Get("notify"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Notifier) Welcome(ctx context.Context, email, name string) Result {
	return n.send(ctx, "welcome", email, name, "Welcome to NOON Opticals! 🎉", view{SiteURL: n.siteURL})
}

func (n *Notifier) OrderPlaced(ctx context.Context, email, name string, d OrderDetails) Result {
	return n.send(ctx, "placed", email, name, fmt.Sprintf("Order Confirmed - %s 🛍️", d.OrderID), view{Order: d})
}

func (n *Notifier) OrderConfirmed(ctx context.Context, email, name string, d OrderDetails) Result {
	return n.send(ctx, "confirmed", email, name, fmt.Sprintf("Order Confirmed - %s ✅", d.OrderID), view{Order: d})
}

func (n *Notifier) OrderProcessing(ctx context.Context, email, name string, d OrderDetails) Result {
	return n.send(ctx, "processing", email, name, fmt.Sprintf("Order Being Processed - %s ⚙️", d.OrderID), view{Order: d})
}

func (n *Notifier) OrderShipped(ctx context.Context, email, name string, d OrderDetails) Result {
	return n.send(ctx, "shipped", email, name, fmt.Sprintf("Your Order is On Its Way! 🚚 - %s", d.OrderID), view{Order: d})
}

func (n *Notifier) OrderDelivered(ctx context.Context, email, name string, d OrderDetails) Result {
	return n.send(ctx, "delivered", email, name, fmt.Sprintf("Order Delivered! 🎉 - %s", d.OrderID), view{Order: d})
}

func (n *Notifier) PaymentReceived(ctx context.Context, email, name string, d OrderDetails) Result {
	return n.send(ctx, "paid", email, name, fmt.Sprintf("Payment Received - %s 💳", d.OrderID), view{Order: d})
}

func (n *Notifier) Custom(ctx context.Context, email, name, subject, body string) Result {
	return n.send(ctx, "custom", email, name, subject, view{Body: body})
}

func (n *Notifier) send(ctx context.Context, tmpl, email, name, subject string, v view) Result {
	if strings.TrimSpace(email) == "" {
		return Result{Error: "no email"}
	}
	v.Name = displayName(name, email)
	body, err := render(tmpl, v)
	if err != nil {
		n.log.WithError(err).Error("email not rendered")
		return Result{Error: err.Error()}
	}

	res := n.sender.Send(ctx, Message{To: email, ToName: v.Name, Subject: subject, Body: body})
	entry := n.log.WithFields(logrus.Fields{"template": tmpl, "to": email})
	if res.Success {
		entry.Info("email sent")
	} else {
		entry.WithField("error", res.Error).Warn("email not sent")
	}
	return res
}

// Go runs fn in the background with its own timeout. Wait blocks until every
// background send has finished.
func (n *Notifier) Go(fn func(ctx context.Context) Result) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		fn(ctx)
	}()
}

func (n *Notifier) Wait() {
	n.wg.Wait()
}

// OrderChanged queues the email matching an admin change to an order: a
// payment marked paid, or a move to processing, shipped or delivered.
func (n *Notifier) OrderChanged(before, after domain.Order) {
	email, name := after.Customer.Email, after.Customer.Name
	if email == "" {
		return
	}
	d := DetailsOf(after)

	if before.Payment != domain.PaymentPaid && after.Payment == domain.PaymentPaid {
		n.Go(func(ctx context.Context) Result { return n.PaymentReceived(ctx, email, name, d) })
	}
	if before.Status == after.Status {
		return
	}
	switch after.Status {
	case domain.OrderProcessing:
		if before.Status == domain.OrderPending {
			n.Go(func(ctx context.Context) Result { return n.OrderConfirmed(ctx, email, name, d) })
			return
		}
		n.Go(func(ctx context.Context) Result { return n.OrderProcessing(ctx, email, name, d) })
	case domain.OrderShipped:
		n.Go(func(ctx context.Context) Result { return n.OrderShipped(ctx, email, name, d) })
	case domain.OrderDelivered:
		n.Go(func(ctx context.Context) Result { return n.OrderDelivered(ctx, email, name, d) })
	}
}

// OrderPlacedAsync sends the checkout confirmation in the background.
func (n *Notifier) OrderPlacedAsync(order domain.Order) {
	if order.Customer.Email == "" {
		return
	}
	d := DetailsOf(order)
	n.Go(func(ctx context.Context) Result {
		return n.OrderPlaced(ctx, order.Customer.Email, order.Customer.Name, d)
	})
}

func (n *Notifier) WelcomeAsync(email, name string) {
	n.Go(func(ctx context.Context) Result { return n.Welcome(ctx, email, name) })
}

func DetailsOf(o domain.Order) OrderDetails {
	d := OrderDetails{
		OrderID: o.ID,
		Date:    o.Date,
		Amount:  o.Amount,
		Address: o.Address,
	}
	names := make([]string, 0, len(o.Lines))
	for _, line := range o.Lines {
		names = append(names, line.Name)
		d.Items = append(d.Items, Item{Name: line.Name, Quantity: line.Quantity, Price: line.Price})
	}
	d.Products = strings.Join(names, ", ")
	return d
}
