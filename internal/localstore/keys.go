package localstore

import "strings"

// Key names one value in the local namespace. Keys can only be obtained from
// this package so callers never build storage names by hand.
type Key struct {
	name string
}

func (k Key) String() string {
	return k.name
}

var (
	Products         = Key{"products"}
	Orders           = Key{"orders"}
	Customers        = Key{"customers"}
	Appointments     = Key{"appointments"}
	ActivityLog      = Key{"activityLog"}
	LocalUsers       = Key{"localUsers"}
	LastSync         = Key{"lastSync"}
	SyncQueue        = Key{"syncQueue"}
	SyncFailed       = Key{"syncFailed"}
	AdminCredentials = Key{"adminCredentials"}
)

// Cart returns the cart key, scoped to userID when one is given.
func Cart(userID string) Key {
	return scoped("cart", userID)
}

// Wishlist returns the wishlist key, scoped to userID when one is given.
func Wishlist(userID string) Key {
	return scoped("wishlist", userID)
}

func scoped(base, userID string) Key {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Key{base}
	}
	return Key{base + "_" + userID}
}
