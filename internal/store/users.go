package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/domain"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/localstore"
)

func (r *Repository) Users(ctx context.Context) []domain.LocalUser {
	return load[domain.LocalUser](ctx, r.local, localstore.LocalUsers)
}

func (r *Repository) SaveUsers(ctx context.Context, users []domain.LocalUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(ctx, localstore.LocalUsers, users)
}

func (r *Repository) UserByEmail(ctx context.Context, email string) (domain.LocalUser, error) {
	users := r.Users(ctx)
	idx := indexOf(users, func(u domain.LocalUser) bool { return strings.EqualFold(u.Email, strings.TrimSpace(email)) })
	if idx < 0 {
		return domain.LocalUser{}, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	return users[idx], nil
}

// SaveUser inserts or updates the user with the same email. Empty fields in
// user keep the stored values. It reports whether a new user was created.
func (r *Repository) SaveUser(ctx context.Context, user domain.LocalUser) (domain.LocalUser, bool, error) {
	user.Email = strings.TrimSpace(user.Email)
	if err := r.check(user); err != nil {
		return domain.LocalUser{}, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.timestamp()
	users := r.Users(ctx)
	idx := indexOf(users, func(u domain.LocalUser) bool { return strings.EqualFold(u.Email, user.Email) })
	if idx < 0 {
		user.CreatedAt = now
		user.UpdatedAt = now
		if err := r.save(ctx, localstore.LocalUsers, append(users, user)); err != nil {
			return domain.LocalUser{}, false, err
		}
		r.logActivity(ctx, "New user registered: "+user.Email, map[string]any{"email": user.Email})
		return user, true, nil
	}

	merged := users[idx]
	for _, field := range []struct {
		dst *string
		src string
	}{
		{&merged.ID, user.ID},
		{&merged.UID, user.UID},
		{&merged.DisplayName, user.DisplayName},
		{&merged.PhotoURL, user.PhotoURL},
		{&merged.Provider, user.Provider},
		{&merged.Phone, user.Phone},
		{&merged.Address, user.Address},
	} {
		if field.src != "" {
			*field.dst = field.src
		}
	}
	merged.UpdatedAt = now
	users[idx] = merged

	if err := r.save(ctx, localstore.LocalUsers, users); err != nil {
		return domain.LocalUser{}, false, err
	}
	return merged, false, nil
}
