package store

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/domain"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/localstore"
)

var (
	orderIDPattern       = regexp.MustCompile(`^ORD-(\d{4})-(\d+)$`)
	legacyOrderIDPattern = regexp.MustCompile(`^ORD-(\d{10,})$`)
)

// PlacedOrder is an order together with the records it changed.
type PlacedOrder struct {
	Order    domain.Order
	Products []domain.Product
	Customer *domain.Customer
}

func (r *Repository) Orders(ctx context.Context) []domain.Order {
	return load[domain.Order](ctx, r.local, localstore.Orders)
}

func (r *Repository) SaveOrders(ctx context.Context, orders []domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(ctx, localstore.Orders, orders)
}

func (r *Repository) OrderByID(ctx context.Context, id string) (domain.Order, error) {
	orders := r.Orders(ctx)
	idx := indexOf(orders, func(o domain.Order) bool { return o.ID == id })
	if idx < 0 {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return orders[idx], nil
}

// AddOrder records a new order, newest first, then decrements stock for each
// line and rolls the amount up into the matching customer. Lines for catalogue
// products are priced from the catalogue; other lines keep what was sent.
func (r *Repository) AddOrder(ctx context.Context, in domain.NewOrder) (PlacedOrder, error) {
	if err := r.check(in); err != nil {
		return PlacedOrder{}, err
	}
	if in.Payment == "" {
		in.Payment = domain.PaymentPending
	}
	if !in.Payment.Valid() {
		return PlacedOrder{}, fmt.Errorf("%w: payment %q", ErrInvalidEntity, in.Payment)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.timestamp()
	orders := r.Orders(ctx)
	products := r.Products(ctx)

	lines := make([]domain.OrderLine, len(in.Lines))
	var amount int64
	for i, line := range in.Lines {
		if idx := indexOf(products, func(p domain.Product) bool { return p.ID == line.ProductID }); idx >= 0 {
			line.Name = products[idx].Name
			line.Price = products[idx].Price
		}
		lines[i] = line
		amount += line.Price * int64(line.Quantity)
	}

	customer := in.Customer
	if customer.Initials == "" {
		customer.Initials = initials(customer.Name)
	}

	order := domain.Order{
		ID:        nextOrderID(orders, r.now().Year()),
		Date:      r.today(),
		Customer:  customer,
		Lines:     lines,
		Amount:    amount,
		Payment:   in.Payment,
		Status:    domain.OrderPending,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.save(ctx, localstore.Orders, append([]domain.Order{order}, orders...)); err != nil {
		return PlacedOrder{}, err
	}
	r.logActivity(ctx, "New order placed: "+order.ID, map[string]any{"orderId": order.ID, "amount": order.Amount})

	placed := PlacedOrder{Order: order}
	for _, line := range lines {
		if p, ok := adjustStock(products, line.ProductID, -line.Quantity, now); ok {
			placed.Products = append(placed.Products, p)
		}
	}
	if len(placed.Products) > 0 {
		if err := r.saveProducts(ctx, products); err != nil {
			r.log.WithError(err).WithField("order", order.ID).Warn("stock not decremented")
			placed.Products = nil
		}
	}

	if c, ok, err := r.recordPurchase(ctx, customer.Email, amount); err != nil {
		r.log.WithError(err).WithField("order", order.ID).Warn("customer rollup not saved")
	} else if ok {
		placed.Customer = &c
	}

	return placed, nil
}

func (r *Repository) UpdateOrder(ctx context.Context, id string, patch domain.OrderPatch) (domain.Order, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return domain.Order{}, fmt.Errorf("%w: status %q", ErrInvalidEntity, *patch.Status)
	}
	if patch.Payment != nil && !patch.Payment.Valid() {
		return domain.Order{}, fmt.Errorf("%w: payment %q", ErrInvalidEntity, *patch.Payment)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	orders := r.Orders(ctx)
	idx := indexOf(orders, func(o domain.Order) bool { return o.ID == id })
	if idx < 0 {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}

	updated := orders[idx]
	label := "updated"
	if patch.Status != nil {
		updated.Status = *patch.Status
		label = string(*patch.Status)
	}
	if patch.Payment != nil {
		updated.Payment = *patch.Payment
	}
	updated.UpdatedAt = r.timestamp()
	orders[idx] = updated

	if err := r.save(ctx, localstore.Orders, orders); err != nil {
		return domain.Order{}, err
	}
	r.logActivity(ctx, fmt.Sprintf("Updated order %s status to %s", id, label), map[string]any{"orderId": id})
	return updated, nil
}

func (r *Repository) DeleteOrder(ctx context.Context, id string) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders := r.Orders(ctx)
	idx := indexOf(orders, func(o domain.Order) bool { return o.ID == id })
	if idx < 0 {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	removed := orders[idx]

	if err := r.save(ctx, localstore.Orders, slices.Delete(orders, idx, idx+1)); err != nil {
		return domain.Order{}, err
	}
	r.logActivity(ctx, "Deleted order: "+id, map[string]any{"orderId": id})
	return removed, nil
}

// MigrateLegacyOrderIDs rewrites ORD-<epoch-ms> ids into ORD-<year>-<seq>,
// oldest first, and returns the old to new mapping.
func (r *Repository) MigrateLegacyOrderIDs(ctx context.Context) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders := r.Orders(ctx)
	renamed := map[string]string{}
	for i := len(orders) - 1; i >= 0; i-- {
		m := legacyOrderIDPattern.FindStringSubmatch(orders[i].ID)
		if m == nil {
			continue
		}
		ms, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		newID := nextOrderID(orders, time.UnixMilli(ms).UTC().Year())
		renamed[orders[i].ID] = newID
		orders[i].ID = newID
	}
	if len(renamed) == 0 {
		return renamed, nil
	}

	if err := r.save(ctx, localstore.Orders, orders); err != nil {
		return nil, err
	}
	r.logActivity(ctx, fmt.Sprintf("Migrated %d legacy order ids", len(renamed)), map[string]any{"count": len(renamed)})
	return renamed, nil
}

// nextOrderID continues after the highest sequence used in year, so removing
// an earlier order cannot make two orders share an id.
func nextOrderID(orders []domain.Order, year int) string {
	highest := 0
	for _, o := range orders {
		m := orderIDPattern.FindStringSubmatch(o.ID)
		if m == nil || m[1] != strconv.Itoa(year) {
			continue
		}
		if seq, err := strconv.Atoi(m[2]); err == nil && seq > highest {
			highest = seq
		}
	}
	return fmt.Sprintf("ORD-%d-%03d", year, highest+1)
}

func initials(name string) string {
	var out []rune
	for _, part := range strings.Fields(name) {
		out = append(out, []rune(strings.ToUpper(part))[0])
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}
