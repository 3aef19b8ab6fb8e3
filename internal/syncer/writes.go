package syncer

import (
	"context"
	"strconv"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/domain"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/remote"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/store"
)

func (c *Coordinator) AddProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	created, err := c.repo.AddProduct(ctx, p)
	if err != nil {
		return domain.Product{}, err
	}
	c.write(ctx, remote.Products, domain.SyncAdd, created.ID.String(), created, false)
	c.mirrorActivity(ctx)
	return created, nil
}

func (c *Coordinator) UpdateProduct(ctx context.Context, id domain.DocID, patch domain.ProductPatch) (domain.Product, error) {
	updated, err := c.repo.UpdateProduct(ctx, id, patch)
	if err != nil {
		return domain.Product{}, err
	}
	c.write(ctx, remote.Products, domain.SyncUpdate, updated.ID.String(), updated, true)
	c.mirrorActivity(ctx)
	return updated, nil
}

func (c *Coordinator) DeleteProduct(ctx context.Context, id domain.DocID) (domain.Product, error) {
	removed, err := c.repo.DeleteProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	c.write(ctx, remote.Products, domain.SyncDelete, id.String(), nil, false)
	c.mirrorActivity(ctx)
	return removed, nil
}

func (c *Coordinator) AdjustStock(ctx context.Context, id domain.DocID, delta int) (domain.Product, error) {
	p, err := c.repo.AdjustStock(ctx, id, delta)
	if err != nil {
		return domain.Product{}, err
	}
	c.write(ctx, remote.Products, domain.SyncUpdate, p.ID.String(), p, true)
	return p, nil
}

// AddOrder places the order and mirrors the order, every product whose stock
// changed and the rolled-up customer.
func (c *Coordinator) AddOrder(ctx context.Context, in domain.NewOrder) (store.PlacedOrder, error) {
	placed, err := c.repo.AddOrder(ctx, in)
	if err != nil {
		return store.PlacedOrder{}, err
	}
	c.write(ctx, remote.Orders, domain.SyncAdd, placed.Order.ID, placed.Order, false)
	for _, p := range placed.Products {
		c.write(ctx, remote.Products, domain.SyncUpdate, p.ID.String(), p, true)
	}
	if placed.Customer != nil {
		c.write(ctx, remote.Customers, domain.SyncUpdate, placed.Customer.ID.String(), *placed.Customer, true)
	}
	c.mirrorActivity(ctx)
	return placed, nil
}

func (c *Coordinator) UpdateOrder(ctx context.Context, id string, patch domain.OrderPatch) (domain.Order, error) {
	updated, err := c.repo.UpdateOrder(ctx, id, patch)
	if err != nil {
		return domain.Order{}, err
	}
	c.write(ctx, remote.Orders, domain.SyncUpdate, updated.ID, updated, true)
	c.mirrorActivity(ctx)
	return updated, nil
}

func (c *Coordinator) DeleteOrder(ctx context.Context, id string) (domain.Order, error) {
	removed, err := c.repo.DeleteOrder(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	c.write(ctx, remote.Orders, domain.SyncDelete, id, nil, false)
	c.mirrorActivity(ctx)
	return removed, nil
}

// MigrateLegacyOrderIDs renames legacy orders locally and moves their remote
// documents to the new keys.
func (c *Coordinator) MigrateLegacyOrderIDs(ctx context.Context) (map[string]string, error) {
	renamed, err := c.repo.MigrateLegacyOrderIDs(ctx)
	if err != nil || len(renamed) == 0 {
		return renamed, err
	}
	for oldID, newID := range renamed {
		order, err := c.repo.OrderByID(ctx, newID)
		if err != nil {
			continue
		}
		c.write(ctx, remote.Orders, domain.SyncAdd, newID, order, false)
		c.write(ctx, remote.Orders, domain.SyncDelete, oldID, nil, false)
	}
	c.mirrorActivity(ctx)
	return renamed, nil
}

func (c *Coordinator) AddCustomer(ctx context.Context, cu domain.Customer) (domain.Customer, error) {
	created, err := c.repo.AddCustomer(ctx, cu)
	if err != nil {
		return domain.Customer{}, err
	}
	c.write(ctx, remote.Customers, domain.SyncAdd, created.ID.String(), created, false)
	c.mirrorActivity(ctx)
	return created, nil
}

func (c *Coordinator) UpdateCustomer(ctx context.Context, id domain.DocID, patch domain.CustomerPatch) (domain.Customer, error) {
	updated, err := c.repo.UpdateCustomer(ctx, id, patch)
	if err != nil {
		return domain.Customer{}, err
	}
	c.write(ctx, remote.Customers, domain.SyncUpdate, updated.ID.String(), updated, true)
	c.mirrorActivity(ctx)
	return updated, nil
}

func (c *Coordinator) DeleteCustomer(ctx context.Context, id domain.DocID) (domain.Customer, error) {
	removed, err := c.repo.DeleteCustomer(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}
	c.write(ctx, remote.Customers, domain.SyncDelete, id.String(), nil, false)
	c.mirrorActivity(ctx)
	return removed, nil
}

func (c *Coordinator) AddAppointment(ctx context.Context, a domain.Appointment) (domain.Appointment, error) {
	created, err := c.repo.AddAppointment(ctx, a)
	if err != nil {
		return domain.Appointment{}, err
	}
	c.write(ctx, remote.Appointments, domain.SyncAdd, created.ID.String(), created, false)
	c.mirrorActivity(ctx)
	return created, nil
}

func (c *Coordinator) UpdateAppointment(ctx context.Context, id domain.DocID, patch domain.AppointmentPatch) (domain.Appointment, error) {
	updated, err := c.repo.UpdateAppointment(ctx, id, patch)
	if err != nil {
		return domain.Appointment{}, err
	}
	c.write(ctx, remote.Appointments, domain.SyncUpdate, updated.ID.String(), updated, true)
	c.mirrorActivity(ctx)
	return updated, nil
}

func (c *Coordinator) SetAppointmentStatus(ctx context.Context, id domain.DocID, status domain.AppointmentStatus) (domain.Appointment, error) {
	updated, err := c.repo.SetAppointmentStatus(ctx, id, status)
	if err != nil {
		return domain.Appointment{}, err
	}
	c.write(ctx, remote.Appointments, domain.SyncUpdate, updated.ID.String(), map[string]any{"status": updated.Status}, true)
	c.mirrorActivity(ctx)
	return updated, nil
}

func (c *Coordinator) DeleteAppointment(ctx context.Context, id domain.DocID) (domain.Appointment, error) {
	removed, err := c.repo.DeleteAppointment(ctx, id)
	if err != nil {
		return domain.Appointment{}, err
	}
	c.write(ctx, remote.Appointments, domain.SyncDelete, id.String(), nil, false)
	c.mirrorActivity(ctx)
	return removed, nil
}

func (c *Coordinator) AddToCart(ctx context.Context, userID string, productID domain.DocID, quantity int) ([]domain.CartLine, error) {
	cart, err := c.repo.AddToCart(ctx, userID, productID, quantity)
	if err != nil {
		return nil, err
	}
	c.writeItems(ctx, remote.Cart, userID, cart)
	return cart, nil
}

func (c *Coordinator) UpdateCartQuantity(ctx context.Context, userID string, productID domain.DocID, quantity int) ([]domain.CartLine, error) {
	cart, err := c.repo.UpdateCartQuantity(ctx, userID, productID, quantity)
	if err != nil {
		return nil, err
	}
	c.writeItems(ctx, remote.Cart, userID, cart)
	return cart, nil
}

func (c *Coordinator) RemoveFromCart(ctx context.Context, userID string, productID domain.DocID) ([]domain.CartLine, error) {
	cart, err := c.repo.RemoveFromCart(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	c.writeItems(ctx, remote.Cart, userID, cart)
	return cart, nil
}

func (c *Coordinator) ClearCart(ctx context.Context, userID string) error {
	if err := c.repo.ClearCart(ctx, userID); err != nil {
		return err
	}
	c.writeItems(ctx, remote.Cart, userID, []domain.CartLine{})
	return nil
}

func (c *Coordinator) ToggleWishlist(ctx context.Context, userID string, productID domain.DocID) ([]domain.DocID, bool, error) {
	list, added, err := c.repo.ToggleWishlist(ctx, userID, productID)
	if err != nil {
		return nil, false, err
	}
	c.writeItems(ctx, remote.Wishlist, userID, list)
	return list, added, nil
}

// SaveUserProfile upserts the user locally and merges it into the remote
// users document keyed by the sanitized email.
func (c *Coordinator) SaveUserProfile(ctx context.Context, user domain.LocalUser) (domain.LocalUser, bool, error) {
	saved, created, err := c.repo.SaveUser(ctx, user)
	if err != nil {
		return domain.LocalUser{}, false, err
	}
	c.write(ctx, remote.Users, domain.SyncUpdate, remote.UserDocID(saved.Email), saved, true)
	if created {
		c.mirrorActivity(ctx)
	}
	return saved, created, nil
}

func (c *Coordinator) LogActivity(ctx context.Context, action string, details map[string]any) domain.ActivityEntry {
	entry := c.repo.LogActivity(ctx, action, details)
	c.write(ctx, remote.ActivityLog, domain.SyncAdd, strconv.FormatInt(entry.ID, 10), entry, false)
	return entry
}

// Reset restores the local defaults only; push them with SyncToRemote.
func (c *Coordinator) Reset(ctx context.Context) error {
	return c.repo.Reset(ctx)
}

// writeItems mirrors a signed-in user's cart or wishlist. The guest lists
// stay local.
func (c *Coordinator) writeItems(ctx context.Context, collection, userID string, items any) {
	if userID == "" {
		return
	}
	c.write(ctx, collection, domain.SyncUpdate, userID, map[string]any{
		"items":     items,
		"updatedAt": c.now().UTC(),
	}, false)
}

// mirrorActivity copies the newest activity entry to the remote log. It is
// best effort and never queued.
func (c *Coordinator) mirrorActivity(ctx context.Context) {
	if !c.remote.Available(ctx) {
		return
	}
	latest := c.repo.ActivityLog(ctx, 1)
	if len(latest) == 0 {
		return
	}
	data, err := toData(latest[0])
	if err != nil {
		return
	}
	rctx, cancel := c.withTimeout(ctx)
	defer cancel()
	if err := c.remote.Set(rctx, remote.ActivityLog, strconv.FormatInt(latest[0].ID, 10), data, false); err != nil {
		c.log.WithError(err).Debug("activity entry not mirrored")
	}
}
