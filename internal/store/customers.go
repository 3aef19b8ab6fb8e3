package store

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/domain"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/localstore"
)

func (r *Repository) Customers(ctx context.Context) []domain.Customer {
	return load[domain.Customer](ctx, r.local, localstore.Customers)
}

func (r *Repository) SaveCustomers(ctx context.Context, customers []domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(ctx, localstore.Customers, customers)
}

func (r *Repository) CustomerByID(ctx context.Context, id domain.DocID) (domain.Customer, error) {
	customers := r.Customers(ctx)
	idx := indexOf(customers, func(c domain.Customer) bool { return c.ID == id })
	if idx < 0 {
		return domain.Customer{}, fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	return customers[idx], nil
}

// AddCustomer registers a customer with zeroed counters joining today.
func (r *Repository) AddCustomer(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	customer.Name = strings.TrimSpace(customer.Name)
	customer.Email = strings.TrimSpace(customer.Email)
	if err := r.check(customer); err != nil {
		return domain.Customer{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	customers := r.Customers(ctx)
	customer.ID = nextID(customers, func(c domain.Customer) domain.DocID { return c.ID })
	customer.Orders = 0
	customer.Spent = 0
	customer.Status = domain.CustomerActive
	customer.JoinDate = r.today()

	if err := r.save(ctx, localstore.Customers, append(customers, customer)); err != nil {
		return domain.Customer{}, err
	}
	r.logActivity(ctx, "New customer registered: "+customer.Name, map[string]any{"customerId": customer.ID.String()})
	return customer, nil
}

func (r *Repository) UpdateCustomer(ctx context.Context, id domain.DocID, patch domain.CustomerPatch) (domain.Customer, error) {
	if err := r.check(patch); err != nil {
		return domain.Customer{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	customers := r.Customers(ctx)
	idx := indexOf(customers, func(c domain.Customer) bool { return c.ID == id })
	if idx < 0 {
		return domain.Customer{}, fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}

	updated := customers[idx]
	if patch.Name != nil {
		updated.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		updated.Email = strings.TrimSpace(*patch.Email)
	}
	if patch.Phone != nil {
		updated.Phone = *patch.Phone
	}
	if patch.Status != nil {
		updated.Status = *patch.Status
	}
	if updated.Name == "" {
		return domain.Customer{}, fmt.Errorf("%w: customer name is required", ErrInvalidEntity)
	}
	customers[idx] = updated

	if err := r.save(ctx, localstore.Customers, customers); err != nil {
		return domain.Customer{}, err
	}
	return updated, nil
}

func (r *Repository) DeleteCustomer(ctx context.Context, id domain.DocID) (domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	customers := r.Customers(ctx)
	idx := indexOf(customers, func(c domain.Customer) bool { return c.ID == id })
	if idx < 0 {
		return domain.Customer{}, fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	removed := customers[idx]

	if err := r.save(ctx, localstore.Customers, slices.Delete(customers, idx, idx+1)); err != nil {
		return domain.Customer{}, err
	}
	r.logActivity(ctx, "Deleted customer: "+removed.Name, map[string]any{"customerId": id.String()})
	return removed, nil
}

// RecordPurchase adds one order and amount to the customer with the given
// email. It reports false, without creating anyone, when no customer matches.
func (r *Repository) RecordPurchase(ctx context.Context, email string, amount int64) (domain.Customer, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recordPurchase(ctx, email, amount)
}

func (r *Repository) recordPurchase(ctx context.Context, email string, amount int64) (domain.Customer, bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.Customer{}, false, nil
	}

	customers := r.Customers(ctx)
	idx := indexOf(customers, func(c domain.Customer) bool { return strings.EqualFold(c.Email, email) })
	if idx < 0 {
		return domain.Customer{}, false, nil
	}

	c := &customers[idx]
	c.Orders++
	c.Spent += amount
	if c.Spent >= r.vipSpend || (r.vipOrders > 0 && c.Orders >= r.vipOrders) {
		c.Status = domain.CustomerVIP
	}

	if err := r.save(ctx, localstore.Customers, customers); err != nil {
		return domain.Customer{}, false, err
	}
	return *c, true, nil
}
