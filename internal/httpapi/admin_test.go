package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/domain"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/remote"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/store"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/syncer"
)

func TestAdminProductLifecycle(t *testing.T) {
	env := newTestEnv(t)
	api := env.api
	token := loginAsAdmin(t, api)

	rec := do(t, api, http.MethodPost, "/api/v1/admin/products", map[string]any{
		"name":     "Frost Lite",
		"category": "Reading",
		"brand":    "noon",
		"price":    1999,
		"stock":    4,
	}, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var created struct {
		Product domain.Product `json:"product"`
	}
	decodeBody(t, rec, &created)
	if n, _ := created.Product.ID.Int(); n != 13 {
		t.Fatalf("expected id 13, got %v", created.Product.ID)
	}
	if _, ok, _ := env.remote.Get(context.Background(), remote.Products, "13"); !ok {
		t.Fatalf("expected product to be mirrored remotely")
	}

	rec = do(t, api, http.MethodPost, "/api/v1/admin/products/13/stock", map[string]any{"delta": -4}, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("stock: expected 200, got %d", rec.Code)
	}
	decodeBody(t, rec, &created)
	if created.Product.Stock != 0 || created.Product.InStock {
		t.Fatalf("expected product out of stock, got %+v", created.Product)
	}

	rec = do(t, api, http.MethodPatch, "/api/v1/admin/products/13", map[string]any{"price": -1}, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("patch: expected 400 for negative price, got %d", rec.Code)
	}

	rec = do(t, api, http.MethodDelete, "/api/v1/admin/products/13", nil, token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	rec = do(t, api, http.MethodDelete, "/api/v1/admin/products/13", nil, token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rec.Code)
	}
}

func TestAdminOrderUpdateEmailsCustomer(t *testing.T) {
	env := newTestEnv(t)
	api := env.api
	token := loginAsAdmin(t, api)

	rec := do(t, api, http.MethodPatch, "/api/v1/admin/orders/ORD-2024-003", map[string]any{
		"status":  "processing",
		"payment": "paid",
	}, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var body struct {
		Order domain.Order `json:"order"`
	}
	decodeBody(t, rec, &body)
	if body.Order.Status != domain.OrderProcessing || body.Order.Payment != domain.PaymentPaid {
		t.Fatalf("unexpected order %+v", body.Order)
	}

	env.notifier.Wait()
	got := map[string]bool{}
	for _, s := range env.mail.subjects() {
		got[s] = true
	}
	if !got["Payment Received - ORD-2024-003 💳"] || !got["Order Confirmed - ORD-2024-003 ✅"] || len(got) != 2 {
		t.Fatalf("unexpected emails %v", got)
	}

	rec = do(t, api, http.MethodPatch, "/api/v1/admin/orders/ORD-2099-001", map[string]any{"status": "shipped"}, token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown order, got %d", rec.Code)
	}
}

func TestAdminAppointmentStatusIsForwardOnly(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)

	rec := do(t, api, http.MethodPost, "/api/v1/admin/appointments/2/status", map[string]any{"status": "confirmed"}, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = do(t, api, http.MethodPost, "/api/v1/admin/appointments/1/status", map[string]any{"status": "pending"}, token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for backwards transition, got %d", rec.Code)
	}

	rec = do(t, api, http.MethodPost, "/api/v1/admin/appointments/1/status", map[string]any{"status": "cancelled"}, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
	}
}

func TestAdminActivityRecordsActor(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)

	rec := do(t, api, http.MethodPost, "/api/v1/admin/customers", map[string]any{"name": "Kavya Nair", "email": "kavya@email.com"}, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = do(t, api, http.MethodGet, "/api/v1/admin/activity?limit=1", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Activity []domain.ActivityEntry `json:"activity"`
	}
	decodeBody(t, rec, &body)
	if len(body.Activity) != 1 {
		t.Fatalf("expected one entry, got %d", len(body.Activity))
	}
	if body.Activity[0].UserID != "admin" {
		t.Fatalf("expected actor admin, got %q", body.Activity[0].UserID)
	}
}

func TestAdminActivityReadsConfiguredRetention(t *testing.T) {
	env := newTestEnv(t, store.WithActivityLimit(100))
	api := env.api
	ctx := context.Background()
	for i := 0; i < 80; i++ {
		api.repo.LogActivity(ctx, fmt.Sprintf("entry %d", i), nil)
	}
	token := loginAsAdmin(t, api)

	rec := do(t, api, http.MethodGet, "/api/v1/admin/activity?limit=100", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Activity []domain.ActivityEntry `json:"activity"`
	}
	decodeBody(t, rec, &body)
	if len(body.Activity) != 80 {
		t.Fatalf("expected all 80 retained entries, got %d", len(body.Activity))
	}
}

func TestAdminStats(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)

	rec := do(t, api, http.MethodGet, "/api/v1/admin/stats", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stats domain.DashboardStats
	decodeBody(t, rec, &stats)
	if stats.TotalProducts != 12 || stats.TotalOrders != 6 || stats.TotalCustomers != 5 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.OutOfStock != 1 {
		t.Fatalf("expected one product out of stock, got %d", stats.OutOfStock)
	}
}

func TestAdminSyncEndpoints(t *testing.T) {
	env := newTestEnv(t)
	api := env.api
	token := loginAsAdmin(t, api)

	rec := do(t, api, http.MethodPost, "/api/v1/admin/sync/to", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("sync to: expected 200, got %d", rec.Code)
	}
	var report syncer.SyncReport
	decodeBody(t, rec, &report)
	if report.Collections[remote.Products] != 12 {
		t.Fatalf("expected 12 products pushed, got %v", report.Collections)
	}

	rec = do(t, api, http.MethodPost, "/api/v1/admin/sync/refresh/products", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d", rec.Code)
	}
	rec = do(t, api, http.MethodPost, "/api/v1/admin/sync/refresh/settings", nil, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("refresh: expected 400 for unsynced collection, got %d", rec.Code)
	}

	env.remote.SetAvailable(false)
	rec = do(t, api, http.MethodGet, "/api/v1/admin/sync/status", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: expected 200, got %d", rec.Code)
	}
	var status domain.SyncStatus
	decodeBody(t, rec, &status)
	if status.RemoteAvailable || status.LastSync == nil {
		t.Fatalf("unexpected status %+v", status)
	}

	rec = do(t, api, http.MethodPost, "/api/v1/admin/sync/from", nil, token)
	decodeBody(t, rec, &report)
	if !report.Skipped {
		t.Fatalf("expected sync to be skipped while offline, got %+v", report)
	}

	rec = do(t, api, http.MethodPost, "/api/v1/admin/sync/retry-failed", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("retry failed: expected 200, got %d", rec.Code)
	}
}

func TestAdminResetRestoresDefaults(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)

	do(t, api, http.MethodDelete, "/api/v1/admin/products/1", nil, token)
	rec := do(t, api, http.MethodPost, "/api/v1/admin/reset", nil, token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if n := len(api.repo.Products(context.Background())); n != 12 {
		t.Fatalf("expected 12 products after reset, got %d", n)
	}
}

func TestAdminChangePassword(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)

	rec := do(t, api, http.MethodPost, "/api/v1/admin/password", map[string]string{"current": "nope", "new": "brand-new-pass"}, token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong current password, got %d", rec.Code)
	}
	rec = do(t, api, http.MethodPost, "/api/v1/admin/password", map[string]string{"current": "admin123", "new": "brand-new-pass"}, token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = do(t, api, http.MethodPost, "/api/v1/auth/login", domain.LoginRequest{Username: "admin", Password: "brand-new-pass"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login with new password: expected 200, got %d", rec.Code)
	}
}

func TestAdminCustomEmail(t *testing.T) {
	env := newTestEnv(t)
	api := env.api
	token := loginAsAdmin(t, api)

	rec := do(t, api, http.MethodPost, "/api/v1/admin/emails", map[string]string{
		"email":   "rahul@email.com",
		"subject": "Your frames are ready",
		"message": "Please visit the store to collect them.",
	}, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if subjects := env.mail.subjects(); len(subjects) != 1 || subjects[0] != "Your frames are ready" {
		t.Fatalf("unexpected emails %v", subjects)
	}
}
