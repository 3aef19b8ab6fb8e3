package httpapi

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/domain"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/remote"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/store"
)

type stockRequest struct {
	Delta int `json:"delta" validate:"ne=0"`
}

type statusRequest struct {
	Status domain.AppointmentStatus `json:"status" validate:"required,oneof=pending scheduled confirmed"`
}

type passwordRequest struct {
	Current string `json:"current" validate:"required"`
	New     string `json:"new" validate:"required,min=8"`
}

type emailRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Name    string `json:"name,omitempty"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}

var refreshable = []string{remote.Products, remote.Orders, remote.Customers, remote.Appointments, remote.Users}

func docID(r *http.Request) domain.DocID {
	return domain.ParseDocID(chi.URLParam(r, "id"))
}

func (a *API) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := a.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	actor, _ := store.ActorFromContext(r.Context())
	if err := a.auth.ChangePassword(r.Context(), actor.Username, req.Current, req.New); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errInvalidCredentials) {
			status = http.StatusUnauthorized
		}
		writeError(w, status, err)
		return
	}
	a.sync.LogActivity(r.Context(), "Changed admin password", nil)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.repo.DashboardStats(r.Context()))
}

func (a *API) handleActivity(w http.ResponseWriter, r *http.Request) {
	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 10, a.repo.ActivityLimit())
	if wantsRefresh(r) {
		a.sync.RefreshActivity(r.Context(), limit)
	}
	writeJSON(w, http.StatusOK, map[string]any{"activity": a.repo.ActivityLog(r.Context(), limit)})
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if wantsRefresh(r) {
		a.sync.Refresh(r.Context(), remote.Users)
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": a.repo.Users(r.Context())})
}

func (a *API) handleAdminUserProfile(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		writeError(w, http.StatusBadRequest, errors.New("email is required"))
		return
	}
	a.writeProfile(w, r, email)
}

func (a *API) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := a.sync.Reset(r.Context()); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleSendEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := a.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res := a.notifier.Custom(r.Context(), req.Email, req.Name, req.Subject, req.Message)
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.Product
	if err := a.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	product, err := a.sync.AddProduct(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"product": product})
}

func (a *API) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductPatch
	if err := a.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	product, err := a.sync.UpdateProduct(r.Context(), docID(r), req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (a *API) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if _, err := a.sync.DeleteProduct(r.Context(), docID(r)); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleAdjustStock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := a.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	product, err := a.sync.AdjustStock(r.Context(), docID(r), req.Delta)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (a *API) handleListOrders(w http.ResponseWriter, r *http.Request) {
	if wantsRefresh(r) {
		a.sync.Refresh(r.Context(), remote.Orders)
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": a.repo.Orders(r.Context())})
}

func (a *API) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := a.repo.OrderByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

// handleUpdateOrder changes status or payment and emails the customer about
// the change.
func (a *API) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.OrderPatch
	if err := a.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id := chi.URLParam(r, "id")
	before, err := a.repo.OrderByID(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	after, err := a.sync.UpdateOrder(r.Context(), id, req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	a.notifier.OrderChanged(before, after)
	writeJSON(w, http.StatusOK, map[string]any{"order": after})
}

func (a *API) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	if _, err := a.sync.DeleteOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleMigrateOrderIDs(w http.ResponseWriter, r *http.Request) {
	renamed, err := a.sync.MigrateLegacyOrderIDs(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"renamed": renamed})
}

func (a *API) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	if wantsRefresh(r) {
		a.sync.Refresh(r.Context(), remote.Customers)
	}
	writeJSON(w, http.StatusOK, map[string]any{"customers": a.repo.Customers(r.Context())})
}

func (a *API) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req domain.Customer
	if err := a.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	customer, err := a.sync.AddCustomer(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"customer": customer})
}

func (a *API) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req domain.CustomerPatch
	if err := a.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	customer, err := a.sync.UpdateCustomer(r.Context(), docID(r), req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer": customer})
}

func (a *API) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if _, err := a.sync.DeleteCustomer(r.Context(), docID(r)); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	if wantsRefresh(r) {
		a.sync.Refresh(r.Context(), remote.Appointments)
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": a.repo.Appointments(r.Context())})
}

func (a *API) handleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req domain.Appointment
	if err := a.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	appt, err := a.sync.AddAppointment(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"appointment": appt})
}

func (a *API) handleUpdateAppointment(w http.ResponseWriter, r *http.Request) {
	var req domain.AppointmentPatch
	if err := a.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	appt, err := a.sync.UpdateAppointment(r.Context(), docID(r), req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointment": appt})
}

func (a *API) handleAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := a.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	appt, err := a.sync.SetAppointmentStatus(r.Context(), docID(r), req.Status)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointment": appt})
}

func (a *API) handleDeleteAppointment(w http.ResponseWriter, r *http.Request) {
	if _, err := a.sync.DeleteAppointment(r.Context(), docID(r)); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.sync.Status(r.Context()))
}

func (a *API) handleSyncQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"queue": a.sync.Queue(r.Context())})
}

func (a *API) handleSyncFailed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"failed": a.sync.FailedEntries(r.Context())})
}

func (a *API) handleSyncFrom(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.sync.SyncFromRemote(r.Context()))
}

func (a *API) handleSyncTo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.sync.SyncToRemote(r.Context()))
}

func (a *API) handleSyncDrain(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.sync.Drain(r.Context()))
}

func (a *API) handleRetryFailed(w http.ResponseWriter, r *http.Request) {
	n, err := a.sync.RetryFailed(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requeued": n})
}

func (a *API) handleRefreshCollection(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	if !slices.Contains(refreshable, collection) {
		writeError(w, http.StatusBadRequest, errors.New("collection is not synced"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"collection": collection, "changed": a.sync.Refresh(r.Context(), collection)})
}
