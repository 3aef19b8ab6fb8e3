package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/domain"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/localstore"
)

func (r *Repository) Products(ctx context.Context) []domain.Product {
	return load[domain.Product](ctx, r.local, localstore.Products)
}

// SaveProducts overwrites the catalogue. inStock is recomputed from stock.
func (r *Repository) SaveProducts(ctx context.Context, products []domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveProducts(ctx, products)
}

func (r *Repository) saveProducts(ctx context.Context, products []domain.Product) error {
	for i := range products {
		if products[i].Stock < 0 {
			products[i].Stock = 0
		}
		products[i].InStock = products[i].Stock > 0
	}
	return r.save(ctx, localstore.Products, products)
}

func (r *Repository) ProductByID(ctx context.Context, id domain.DocID) (domain.Product, error) {
	products := r.Products(ctx)
	idx := indexOf(products, func(p domain.Product) bool { return p.ID == id })
	if idx < 0 {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return products[idx], nil
}

func (r *Repository) AddProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	product.Name = strings.TrimSpace(product.Name)
	if err := r.check(product); err != nil {
		return domain.Product{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	products := r.Products(ctx)
	now := r.timestamp()
	product.ID = nextID(products, func(p domain.Product) domain.DocID { return p.ID })
	product.InStock = product.Stock > 0
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := r.saveProducts(ctx, append(products, product)); err != nil {
		return domain.Product{}, err
	}
	r.logActivity(ctx, "Added new product: "+product.Name, map[string]any{"productId": product.ID.String()})
	return product, nil
}

func (r *Repository) UpdateProduct(ctx context.Context, id domain.DocID, patch domain.ProductPatch) (domain.Product, error) {
	if err := r.check(patch); err != nil {
		return domain.Product{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	products := r.Products(ctx)
	idx := indexOf(products, func(p domain.Product) bool { return p.ID == id })
	if idx < 0 {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}

	updated := products[idx]
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return domain.Product{}, fmt.Errorf("%w: product name is required", ErrInvalidEntity)
		}
		updated.Name = name
	}
	if patch.Category != nil {
		updated.Category = *patch.Category
	}
	if patch.Brand != nil {
		updated.Brand = *patch.Brand
	}
	if patch.Price != nil {
		updated.Price = *patch.Price
	}
	if patch.OldPrice != nil {
		updated.OldPrice = *patch.OldPrice
	}
	if patch.Image != nil {
		updated.Image = *patch.Image
	}
	if patch.Discount != nil {
		updated.Discount = *patch.Discount
	}
	if patch.Tags != nil {
		updated.Tags = *patch.Tags
	}
	if patch.Stock != nil {
		updated.Stock = *patch.Stock
	}
	if patch.Rating != nil {
		updated.Rating = *patch.Rating
	}
	if patch.ReviewCount != nil {
		updated.ReviewCount = *patch.ReviewCount
	}
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	updated.InStock = updated.Stock > 0
	updated.UpdatedAt = r.timestamp()
	products[idx] = updated

	if err := r.saveProducts(ctx, products); err != nil {
		return domain.Product{}, err
	}
	r.logActivity(ctx, "Updated product: "+updated.Name, map[string]any{"productId": id.String()})
	return updated, nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id domain.DocID) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	products := r.Products(ctx)
	idx := indexOf(products, func(p domain.Product) bool { return p.ID == id })
	if idx < 0 {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	removed := products[idx]

	if err := r.saveProducts(ctx, append(products[:idx], products[idx+1:]...)); err != nil {
		return domain.Product{}, err
	}
	r.logActivity(ctx, "Deleted product: "+removed.Name, map[string]any{"productId": id.String()})
	return removed, nil
}

// AdjustStock adds delta to the product's stock, clamping at zero.
func (r *Repository) AdjustStock(ctx context.Context, id domain.DocID, delta int) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	products := r.Products(ctx)
	product, ok := adjustStock(products, id, delta, r.timestamp())
	if !ok {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if err := r.saveProducts(ctx, products); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

func adjustStock(products []domain.Product, id domain.DocID, delta int, at time.Time) (domain.Product, bool) {
	idx := indexOf(products, func(p domain.Product) bool { return p.ID == id })
	if idx < 0 {
		return domain.Product{}, false
	}
	p := &products[idx]
	p.Stock = max(0, p.Stock+delta)
	p.InStock = p.Stock > 0
	p.UpdatedAt = at
	return *p, true
}
