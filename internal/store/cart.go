package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/domain"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/localstore"
)

// Cart returns the cart for userID; an empty userID is the shared guest cart.
func (r *Repository) Cart(ctx context.Context, userID string) []domain.CartLine {
	return load[domain.CartLine](ctx, r.local, localstore.Cart(userID))
}

func (r *Repository) SaveCart(ctx context.Context, userID string, lines []domain.CartLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(ctx, localstore.Cart(userID), lines)
}

// AddToCart adds quantity of a product, merging with an existing line.
func (r *Repository) AddToCart(ctx context.Context, userID string, productID domain.DocID, quantity int) ([]domain.CartLine, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidEntity)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	products := r.Products(ctx)
	pidx := indexOf(products, func(p domain.Product) bool { return p.ID == productID })
	if pidx < 0 {
		return nil, fmt.Errorf("product %s: %w", productID, ErrNotFound)
	}
	product := products[pidx]

	cart := r.Cart(ctx, userID)
	if idx := indexOf(cart, func(l domain.CartLine) bool { return l.ProductID == productID }); idx >= 0 {
		cart[idx].Quantity += quantity
	} else {
		cart = append(cart, domain.CartLine{
			ProductID: productID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.Image,
			Quantity:  quantity,
		})
	}

	if err := r.save(ctx, localstore.Cart(userID), cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateCartQuantity sets a line's quantity; zero or less removes the line.
// Products not in the cart leave it unchanged.
func (r *Repository) UpdateCartQuantity(ctx context.Context, userID string, productID domain.DocID, quantity int) ([]domain.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart := r.Cart(ctx, userID)
	idx := indexOf(cart, func(l domain.CartLine) bool { return l.ProductID == productID })
	if idx < 0 {
		return cart, nil
	}
	if quantity <= 0 {
		cart = slices.Delete(cart, idx, idx+1)
	} else {
		cart[idx].Quantity = quantity
	}

	if err := r.save(ctx, localstore.Cart(userID), cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *Repository) RemoveFromCart(ctx context.Context, userID string, productID domain.DocID) ([]domain.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart := slices.DeleteFunc(r.Cart(ctx, userID), func(l domain.CartLine) bool { return l.ProductID == productID })
	if err := r.save(ctx, localstore.Cart(userID), cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *Repository) ClearCart(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(ctx, localstore.Cart(userID), []domain.CartLine{})
}

func (r *Repository) CartTotal(ctx context.Context, userID string) int64 {
	var total int64
	for _, line := range r.Cart(ctx, userID) {
		total += line.Price * int64(line.Quantity)
	}
	return total
}

func (r *Repository) CartCount(ctx context.Context, userID string) int {
	count := 0
	for _, line := range r.Cart(ctx, userID) {
		count += line.Quantity
	}
	return count
}

func (r *Repository) Wishlist(ctx context.Context, userID string) []domain.DocID {
	return load[domain.DocID](ctx, r.local, localstore.Wishlist(userID))
}

func (r *Repository) SaveWishlist(ctx context.Context, userID string, ids []domain.DocID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(ctx, localstore.Wishlist(userID), ids)
}

// ToggleWishlist adds the product when absent and removes it when present.
// It reports whether the product is now on the list.
func (r *Repository) ToggleWishlist(ctx context.Context, userID string, productID domain.DocID) ([]domain.DocID, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.Wishlist(ctx, userID)
	added := false
	if idx := slices.Index(list, productID); idx >= 0 {
		list = slices.Delete(list, idx, idx+1)
	} else {
		list = append(list, productID)
		added = true
	}

	if err := r.save(ctx, localstore.Wishlist(userID), list); err != nil {
		return nil, false, err
	}
	return list, added, nil
}

func (r *Repository) InWishlist(ctx context.Context, userID string, productID domain.DocID) bool {
	return slices.Contains(r.Wishlist(ctx, userID), productID)
}
