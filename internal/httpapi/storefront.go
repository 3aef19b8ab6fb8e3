package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/domain"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/remote"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/store"
)

type cartItemRequest struct {
	ProductID domain.DocID `json:"productId"`
	Quantity  int          `json:"quantity" validate:"gt=0"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type checkoutRequest struct {
	domain.NewOrder
	ClearCart bool `json:"clearCart,omitempty"`
}

// shopper returns the signed-in shopper set by the auth middleware.
func shopper(r *http.Request) (domain.Actor, bool) {
	actor, ok := store.ActorFromContext(r.Context())
	if !ok || actor.Role != roleCustomer {
		return domain.Actor{}, false
	}
	return actor, true
}

// userID keys the shopper's cart and wishlist. An empty value is the guest
// list.
func userID(r *http.Request) string {
	actor, ok := shopper(r)
	if !ok {
		return ""
	}
	return remote.UserDocID(actor.Username)
}

func wantsRefresh(r *http.Request) bool {
	return r.URL.Query().Get("refresh") == "true"
}

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	if wantsRefresh(r) {
		a.sync.Refresh(r.Context(), remote.Products)
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": a.repo.Products(r.Context())})
}

func (a *API) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := a.repo.ProductByID(r.Context(), domain.ParseDocID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (a *API) writeCart(w http.ResponseWriter, r *http.Request, status int, lines []domain.CartLine) {
	user := userID(r)
	writeJSON(w, status, map[string]any{
		"items": lines,
		"total": a.repo.CartTotal(r.Context(), user),
		"count": a.repo.CartCount(r.Context(), user),
	})
}

func (a *API) handleCart(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if wantsRefresh(r) {
		a.sync.RefreshCart(r.Context(), user)
	}
	a.writeCart(w, r, http.StatusOK, a.repo.Cart(r.Context(), user))
}

func (a *API) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := a.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.ProductID.IsZero() {
		writeError(w, http.StatusBadRequest, errors.New("productId is required"))
		return
	}

	lines, err := a.sync.AddToCart(r.Context(), userID(r), req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	a.writeCart(w, r, http.StatusOK, lines)
}

func (a *API) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	productID := domain.ParseDocID(chi.URLParam(r, "productID"))
	lines, err := a.sync.UpdateCartQuantity(r.Context(), userID(r), productID, req.Quantity)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	a.writeCart(w, r, http.StatusOK, lines)
}

func (a *API) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	productID := domain.ParseDocID(chi.URLParam(r, "productID"))
	lines, err := a.sync.RemoveFromCart(r.Context(), userID(r), productID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	a.writeCart(w, r, http.StatusOK, lines)
}

func (a *API) handleClearCart(w http.ResponseWriter, r *http.Request) {
	if err := a.sync.ClearCart(r.Context(), userID(r)); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleWishlist(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if wantsRefresh(r) {
		a.sync.RefreshWishlist(r.Context(), user)
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": a.repo.Wishlist(r.Context(), user)})
}

func (a *API) handleToggleWishlist(w http.ResponseWriter, r *http.Request) {
	productID := domain.ParseDocID(chi.URLParam(r, "productID"))
	if productID.IsZero() {
		writeError(w, http.StatusBadRequest, errors.New("product id is required"))
		return
	}

	list, added, err := a.sync.ToggleWishlist(r.Context(), userID(r), productID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": list, "added": added})
}

// handleCheckout places an order from the storefront and emails the
// confirmation in the background. Lines are priced from the catalogue; a
// signed-in shopper always orders under their own email.
func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := a.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx := r.Context()
	if actor, ok := shopper(r); ok {
		req.Customer.Email = actor.Username
	} else {
		ctx = store.WithActor(ctx, domain.Actor{Username: req.Customer.Email, Role: roleCustomer})
	}

	for i, line := range req.Lines {
		product, err := a.repo.ProductByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusBadRequest, fmt.Errorf("product %s is not in the catalogue", line.ProductID))
				return
			}
			writeError(w, statusFor(err), err)
			return
		}
		req.Lines[i].Name = product.Name
		req.Lines[i].Price = product.Price
	}

	placed, err := a.sync.AddOrder(ctx, req.NewOrder)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if req.ClearCart {
		if err := a.sync.ClearCart(ctx, userID(r)); err != nil {
			a.log.WithError(err).Warn("cart not cleared after checkout")
		}
	}

	a.notifier.OrderPlacedAsync(placed.Order)
	writeJSON(w, http.StatusCreated, map[string]any{"order": placed.Order})
}

func (a *API) handleBookAppointment(w http.ResponseWriter, r *http.Request) {
	var req domain.Appointment
	if err := a.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req.ID = domain.DocID{}
	req.Status = ""

	appt, err := a.sync.AddAppointment(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"appointment": appt})
}

// handleSaveUser updates the signed-in shopper's profile. The email always
// comes from the token.
func (a *API) handleSaveUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := shopper(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, errors.New("sign in required"))
		return
	}

	var req domain.LocalUser
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req.Email = actor.Username
	if err := a.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	user, created, err := a.sync.SaveUserProfile(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		a.notifier.WelcomeAsync(user.Email, user.DisplayName)
	}
	writeJSON(w, status, map[string]any{"user": user, "created": created})
}

func (a *API) handleUserProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := shopper(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, errors.New("sign in required"))
		return
	}
	a.writeProfile(w, r, actor.Username)
}

func (a *API) writeProfile(w http.ResponseWriter, r *http.Request, email string) {
	user, ok := a.sync.UserProfile(r.Context(), email)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("user not found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}
