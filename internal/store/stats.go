package store

import (
	"context"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/domain"
)

const lowStockThreshold = 10

func (r *Repository) DashboardStats(ctx context.Context) domain.DashboardStats {
	products := r.Products(ctx)
	orders := r.Orders(ctx)
	today := r.today()

	stats := domain.DashboardStats{
		TotalProducts:  len(products),
		TotalOrders:    len(orders),
		TotalCustomers: len(r.Customers(ctx)),
	}
	for _, o := range orders {
		if o.Payment == domain.PaymentPaid {
			stats.TotalRevenue += o.Amount
		}
		if o.Status == domain.OrderPending || o.Status == domain.OrderProcessing {
			stats.PendingOrders++
		}
	}
	for _, p := range products {
		switch {
		case p.Stock == 0:
			stats.OutOfStock++
		case p.Stock < lowStockThreshold:
			stats.LowStockProducts++
		}
	}
	for _, a := range r.Appointments(ctx) {
		if a.Date == today {
			stats.TodayAppointments++
		}
	}
	return stats
}
