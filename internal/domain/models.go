package domain

import "time"

type Product struct {
	ID          DocID     `json:"id"`
	Name        string    `json:"name" validate:"required"`
	Category    string    `json:"category"`
	Brand       string    `json:"brand"`
	Price       int64     `json:"price" validate:"gte=0"`
	OldPrice    int64     `json:"oldPrice,omitempty" validate:"gte=0"`
	Image       string    `json:"img,omitempty"`
	Discount    int       `json:"discount,omitempty" validate:"gte=0,lte=100"`
	Tags        []string  `json:"tags,omitempty"`
	InStock     bool      `json:"inStock"`
	Stock       int       `json:"stock" validate:"gte=0"`
	Rating      float64   `json:"rating,omitempty" validate:"gte=0,lte=5"`
	ReviewCount int       `json:"reviewCount,omitempty" validate:"gte=0"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

type ProductPatch struct {
	Name        *string   `json:"name,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Brand       *string   `json:"brand,omitempty"`
	Price       *int64    `json:"price,omitempty" validate:"omitempty,gte=0"`
	OldPrice    *int64    `json:"oldPrice,omitempty" validate:"omitempty,gte=0"`
	Image       *string   `json:"img,omitempty"`
	Discount    *int      `json:"discount,omitempty" validate:"omitempty,gte=0,lte=100"`
	Tags        *[]string `json:"tags,omitempty"`
	Stock       *int      `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Rating      *float64  `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	ReviewCount *int      `json:"reviewCount,omitempty" validate:"omitempty,gte=0"`
	Description *string   `json:"description,omitempty"`
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

func (p PaymentStatus) Valid() bool {
	return p == PaymentPending || p == PaymentPaid
}

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered:
		return true
	}
	return false
}

type OrderCustomer struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone,omitempty"`
	Initials string `json:"initials,omitempty"`
}

type OrderLine struct {
	ProductID DocID  `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
	Price     int64  `json:"price" validate:"gte=0"`
}

type Order struct {
	ID        string        `json:"id"`
	Date      string        `json:"date"`
	Customer  OrderCustomer `json:"customer"`
	Lines     []OrderLine   `json:"products"`
	Amount    int64         `json:"amount"`
	Payment   PaymentStatus `json:"payment"`
	Status    OrderStatus   `json:"status"`
	Address   string        `json:"address,omitempty"`
	CreatedAt time.Time     `json:"createdAt,omitzero"`
	UpdatedAt time.Time     `json:"updatedAt,omitzero"`
}

type NewOrder struct {
	Customer OrderCustomer `json:"customer"`
	Lines    []OrderLine   `json:"products" validate:"required,min=1,dive"`
	Payment  PaymentStatus `json:"payment,omitempty"`
	Address  string        `json:"address,omitempty"`
}

type OrderPatch struct {
	Status  *OrderStatus   `json:"status,omitempty"`
	Payment *PaymentStatus `json:"payment,omitempty"`
}

type CustomerStatus string

const (
	CustomerActive CustomerStatus = "active"
	CustomerVIP    CustomerStatus = "vip"
)

type Customer struct {
	ID       DocID          `json:"id"`
	Name     string         `json:"name" validate:"required"`
	Email    string         `json:"email" validate:"omitempty,email"`
	Phone    string         `json:"phone,omitempty"`
	Orders   int            `json:"orders"`
	Spent    int64          `json:"spent"`
	Status   CustomerStatus `json:"status"`
	JoinDate string         `json:"joinDate"`
}

type CustomerPatch struct {
	Name   *string         `json:"name,omitempty"`
	Email  *string         `json:"email,omitempty" validate:"omitempty,email"`
	Phone  *string         `json:"phone,omitempty"`
	Status *CustomerStatus `json:"status,omitempty" validate:"omitempty,oneof=active vip"`
}

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentConfirmed AppointmentStatus = "confirmed"
)

// Rank orders appointment statuses; transitions only move forward.
func (s AppointmentStatus) Rank() int {
	switch s {
	case AppointmentPending:
		return 0
	case AppointmentScheduled:
		return 1
	case AppointmentConfirmed:
		return 2
	}
	return -1
}

type Appointment struct {
	ID        DocID             `json:"id"`
	Date      string            `json:"date" validate:"required"`
	Time      string            `json:"time" validate:"required"`
	Duration  string            `json:"duration,omitempty"`
	Type      string            `json:"type" validate:"required"`
	Customer  string            `json:"customer" validate:"required"`
	Phone     string            `json:"phone,omitempty"`
	Email     string            `json:"email,omitempty" validate:"omitempty,email"`
	Status    AppointmentStatus `json:"status"`
	Notes     string            `json:"notes"`
	CreatedAt time.Time         `json:"createdAt,omitzero"`
}

type AppointmentPatch struct {
	Date     *string `json:"date,omitempty"`
	Time     *string `json:"time,omitempty"`
	Duration *string `json:"duration,omitempty"`
	Type     *string `json:"type,omitempty"`
	Customer *string `json:"customer,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Notes    *string `json:"notes,omitempty"`
}

type CartLine struct {
	ProductID DocID  `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Image     string `json:"img,omitempty"`
	Quantity  int    `json:"quantity"`
}

type ActivityEntry struct {
	ID        int64          `json:"id"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	UserID    string         `json:"userId"`
}

type LocalUser struct {
	ID          string    `json:"id,omitempty"`
	UID         string    `json:"uid,omitempty"`
	Email       string    `json:"email" validate:"required,email"`
	DisplayName string    `json:"displayName,omitempty"`
	PhotoURL    string    `json:"photoURL,omitempty"`
	Provider    string    `json:"provider,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

type DashboardStats struct {
	TotalProducts     int   `json:"totalProducts"`
	TotalOrders       int   `json:"totalOrders"`
	TotalCustomers    int   `json:"totalCustomers"`
	TotalRevenue      int64 `json:"totalRevenue"`
	PendingOrders     int   `json:"pendingOrders"`
	LowStockProducts  int   `json:"lowStockProducts"`
	OutOfStock        int   `json:"outOfStock"`
	TodayAppointments int   `json:"todayAppointments"`
}

type SyncAction string

const (
	SyncAdd    SyncAction = "add"
	SyncUpdate SyncAction = "update"
	SyncDelete SyncAction = "delete"
)

// QueueEntry is a remote write that failed and waits for a retry.
type QueueEntry struct {
	ID            string         `json:"id"`
	Collection    string         `json:"collection"`
	Action        SyncAction     `json:"action"`
	DocID         string         `json:"docId"`
	Data          map[string]any `json:"data,omitempty"`
	Merge         bool           `json:"merge,omitempty"`
	EnqueuedAt    time.Time      `json:"enqueuedAt"`
	Attempts      int            `json:"attempts"`
	NextAttemptAt time.Time      `json:"nextAttemptAt,omitzero"`
	LastError     string         `json:"lastError,omitempty"`
}

type SyncStatus struct {
	RemoteAvailable bool       `json:"remoteAvailable"`
	LastSync        *time.Time `json:"lastSync,omitempty"`
	Queued          int        `json:"queued"`
	Failed          int        `json:"failed"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest opens a shopper account. The profile fields seed the
// stored user record.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"displayName,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Role        string    `json:"role"`
	Username    string    `json:"username"`
}

type AdminAccount struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Actor struct {
	Username string
	Role     string
}
