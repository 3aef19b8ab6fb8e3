// Package httpapi exposes the storefront and admin panel operations over
// HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/domain"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/logger"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/notify"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/store"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/syncer"
)

type API struct {
	sync          *syncer.Coordinator
	repo          *store.Repository
	auth          *AuthManager
	notifier      *notify.Notifier
	validate      *validator.Validate
	allowedOrigin string
	loginLimiter  *attemptLimiter
	signupLimiter *attemptLimiter
	log           *logrus.Entry
}

func New(sc *syncer.Coordinator, auth *AuthManager, notifier *notify.Notifier, allowedOrigin string) *API {
	if notifier == nil {
		notifier = notify.New(nil)
	}
	return &API{
		sync:          sc,
		repo:          sc.Repository(),
		auth:          auth,
		notifier:      notifier,
		validate:      validator.New(),
		allowedOrigin: allowedOrigin,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
		signupLimiter: newAttemptLimiter(10, time.Minute),
		log:           logger.Get("http"),
	}
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	l.entries[key] = append(kept, now)
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, a.withMiddleware)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, errors.New("route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeMethodNotAllowed(w)
	})

	r.Get("/healthz", a.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", a.handleLogin)
		r.Post("/auth/register", a.handleRegister)

		r.Get("/products", a.handleListProducts)
		r.Get("/products/{id}", a.handleGetProduct)

		r.Post("/appointments", a.handleBookAppointment)

		r.Group(func(r chi.Router) {
			r.Use(a.shopperScope)

			r.Get("/cart", a.handleCart)
			r.Post("/cart/items", a.handleAddToCart)
			r.Patch("/cart/items/{productID}", a.handleUpdateCartItem)
			r.Delete("/cart/items/{productID}", a.handleRemoveCartItem)
			r.Delete("/cart", a.handleClearCart)

			r.Get("/wishlist", a.handleWishlist)
			r.Post("/wishlist/{productID}/toggle", a.handleToggleWishlist)

			r.Post("/checkout", a.handleCheckout)
		})

		r.Group(func(r chi.Router) {
			r.Use(a.requireAuth(roleCustomer))

			r.Post("/users", a.handleSaveUser)
			r.Get("/users/profile", a.handleUserProfile)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(a.requireAuth(roleAdmin))

			r.Get("/users", a.handleListUsers)
			r.Get("/users/profile", a.handleAdminUserProfile)

			r.Post("/password", a.handleChangePassword)
			r.Get("/stats", a.handleStats)
			r.Get("/activity", a.handleActivity)
			r.Post("/reset", a.handleReset)
			r.Post("/emails", a.handleSendEmail)

			r.Post("/products", a.handleCreateProduct)
			r.Patch("/products/{id}", a.handleUpdateProduct)
			r.Delete("/products/{id}", a.handleDeleteProduct)
			r.Post("/products/{id}/stock", a.handleAdjustStock)

			r.Get("/orders", a.handleListOrders)
			r.Post("/orders/migrate-ids", a.handleMigrateOrderIDs)
			r.Get("/orders/{id}", a.handleGetOrder)
			r.Patch("/orders/{id}", a.handleUpdateOrder)
			r.Delete("/orders/{id}", a.handleDeleteOrder)

			r.Get("/customers", a.handleListCustomers)
			r.Post("/customers", a.handleCreateCustomer)
			r.Patch("/customers/{id}", a.handleUpdateCustomer)
			r.Delete("/customers/{id}", a.handleDeleteCustomer)

			r.Get("/appointments", a.handleListAppointments)
			r.Post("/appointments", a.handleCreateAppointment)
			r.Patch("/appointments/{id}", a.handleUpdateAppointment)
			r.Post("/appointments/{id}/status", a.handleAppointmentStatus)
			r.Delete("/appointments/{id}", a.handleDeleteAppointment)

			r.Route("/sync", func(r chi.Router) {
				r.Get("/status", a.handleSyncStatus)
				r.Get("/queue", a.handleSyncQueue)
				r.Get("/failed", a.handleSyncFailed)
				r.Post("/from", a.handleSyncFrom)
				r.Post("/to", a.handleSyncTo)
				r.Post("/drain", a.handleSyncDrain)
				r.Post("/retry-failed", a.handleRetryFailed)
				r.Post("/refresh/{collection}", a.handleRefreshCollection)
			})
		})
	})

	return r
}

func (a *API) requireAuth(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorization := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
				writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
				return
			}

			token := strings.TrimSpace(authorization[len("Bearer "):])
			actor, err := a.auth.ParseToken(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, err)
				return
			}

			if len(roles) > 0 && !isRoleAllowed(actor.Role, roles) {
				writeError(w, http.StatusForbidden, errors.New("forbidden role"))
				return
			}

			next.ServeHTTP(w, r.WithContext(store.WithActor(r.Context(), actor)))
		})
	}
}

// shopperScope lets guests through to the shared guest cart and wishlist.
// A bearer token, when sent, must belong to a shopper; the personal lists
// are only reachable that way.
func (a *API) shopperScope(next http.Handler) http.Handler {
	signedIn := a.requireAuth(roleCustomer)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(r.Header.Get("Authorization")) != "" {
			signedIn.ServeHTTP(w, r)
			return
		}
		if r.URL.Query().Has("user") {
			writeError(w, http.StatusUnauthorized, errors.New("sign in to use a personal cart or wishlist"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isRoleAllowed(role string, allowed []string) bool {
	for _, allow := range allowed {
		if role == allow {
			return true
		}
	}
	return false
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":     true,
		"remote": a.sync.RemoteAvailable(r.Context()),
		"at":     time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !a.loginLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if err := a.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRegister opens a shopper account, stores the profile and sends the
// welcome email.
func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !a.signupLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many sign-up attempts"))
		return
	}

	var req domain.RegisterRequest
	if err := a.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Register(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, errAccountExists):
		writeError(w, http.StatusConflict, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	ctx := store.WithActor(r.Context(), domain.Actor{Username: resp.Username, Role: roleCustomer})
	user, created, err := a.sync.SaveUserProfile(ctx, domain.LocalUser{
		Email:       resp.Username,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		Address:     req.Address,
		Provider:    "password",
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if created {
		a.notifier.WelcomeAsync(user.Email, user.DisplayName)
	}
	writeJSON(w, http.StatusCreated, map[string]any{"auth": resp, "user": user})
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if (r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut) && strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		startedAt := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		a.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(startedAt).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("request")
	})
}

// decode reads a JSON body into dest and runs its validation tags.
func (a *API) decode(r *http.Request, dest any) error {
	if err := decodeJSON(r, dest); err != nil {
		return err
	}
	return a.validate.Struct(dest)
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func parsePositiveLimit(raw string, fallback int, max int) int {
	limit := fallback
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if parsed, err := strconv.Atoi(trimmed); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}

// statusFor maps repository errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrInvalidTransition):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func writeError(w http.ResponseWriter, status int, err error) {
	// 5xx details stay in the log.
	msg := err.Error()
	if status >= 500 {
		logger.Get("http").WithError(err).WithField("status", status).Error("internal error")
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
