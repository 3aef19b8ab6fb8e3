package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/domain"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/localstore"
)

func (r *Repository) Appointments(ctx context.Context) []domain.Appointment {
	return load[domain.Appointment](ctx, r.local, localstore.Appointments)
}

func (r *Repository) SaveAppointments(ctx context.Context, appointments []domain.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(ctx, localstore.Appointments, appointments)
}

func (r *Repository) AppointmentByID(ctx context.Context, id domain.DocID) (domain.Appointment, error) {
	appointments := r.Appointments(ctx)
	idx := indexOf(appointments, func(a domain.Appointment) bool { return a.ID == id })
	if idx < 0 {
		return domain.Appointment{}, fmt.Errorf("appointment %s: %w", id, ErrNotFound)
	}
	return appointments[idx], nil
}

// AddAppointment books an appointment. Bookings without a status start as
// scheduled.
func (r *Repository) AddAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	if appt.Status == "" {
		appt.Status = domain.AppointmentScheduled
	}
	if appt.Status.Rank() < 0 {
		return domain.Appointment{}, fmt.Errorf("%w: status %q", ErrInvalidEntity, appt.Status)
	}
	if err := r.check(appt); err != nil {
		return domain.Appointment{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	appointments := r.Appointments(ctx)
	appt.ID = nextID(appointments, func(a domain.Appointment) domain.DocID { return a.ID })
	appt.CreatedAt = r.timestamp()

	if err := r.save(ctx, localstore.Appointments, append(appointments, appt)); err != nil {
		return domain.Appointment{}, err
	}
	r.logActivity(ctx, fmt.Sprintf("New appointment booked: %s with %s", appt.Type, appt.Customer), map[string]any{"appointmentId": appt.ID.String()})
	return appt, nil
}

func (r *Repository) UpdateAppointment(ctx context.Context, id domain.DocID, patch domain.AppointmentPatch) (domain.Appointment, error) {
	if err := r.check(patch); err != nil {
		return domain.Appointment{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	appointments := r.Appointments(ctx)
	idx := indexOf(appointments, func(a domain.Appointment) bool { return a.ID == id })
	if idx < 0 {
		return domain.Appointment{}, fmt.Errorf("appointment %s: %w", id, ErrNotFound)
	}

	updated := appointments[idx]
	for _, field := range []struct {
		dst *string
		src *string
	}{
		{&updated.Date, patch.Date},
		{&updated.Time, patch.Time},
		{&updated.Duration, patch.Duration},
		{&updated.Type, patch.Type},
		{&updated.Customer, patch.Customer},
		{&updated.Phone, patch.Phone},
		{&updated.Email, patch.Email},
		{&updated.Notes, patch.Notes},
	} {
		if field.src != nil {
			*field.dst = *field.src
		}
	}
	if err := r.check(updated); err != nil {
		return domain.Appointment{}, err
	}
	appointments[idx] = updated

	if err := r.save(ctx, localstore.Appointments, appointments); err != nil {
		return domain.Appointment{}, err
	}
	r.logActivity(ctx, "Updated appointment for "+updated.Customer, map[string]any{"appointmentId": id.String()})
	return updated, nil
}

// SetAppointmentStatus moves an appointment forward through
// pending, scheduled and confirmed. Setting the current status is a no-op.
func (r *Repository) SetAppointmentStatus(ctx context.Context, id domain.DocID, status domain.AppointmentStatus) (domain.Appointment, error) {
	if status.Rank() < 0 {
		return domain.Appointment{}, fmt.Errorf("%w: status %q", ErrInvalidEntity, status)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	appointments := r.Appointments(ctx)
	idx := indexOf(appointments, func(a domain.Appointment) bool { return a.ID == id })
	if idx < 0 {
		return domain.Appointment{}, fmt.Errorf("appointment %s: %w", id, ErrNotFound)
	}

	current := appointments[idx].Status
	if current == status {
		return appointments[idx], nil
	}
	if status.Rank() < current.Rank() {
		return domain.Appointment{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current, status)
	}
	appointments[idx].Status = status

	if err := r.save(ctx, localstore.Appointments, appointments); err != nil {
		return domain.Appointment{}, err
	}
	r.logActivity(ctx, fmt.Sprintf("Appointment for %s marked %s", appointments[idx].Customer, status), map[string]any{"appointmentId": id.String()})
	return appointments[idx], nil
}

func (r *Repository) DeleteAppointment(ctx context.Context, id domain.DocID) (domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appointments := r.Appointments(ctx)
	idx := indexOf(appointments, func(a domain.Appointment) bool { return a.ID == id })
	if idx < 0 {
		return domain.Appointment{}, fmt.Errorf("appointment %s: %w", id, ErrNotFound)
	}
	removed := appointments[idx]

	if err := r.save(ctx, localstore.Appointments, slices.Delete(appointments, idx, idx+1)); err != nil {
		return domain.Appointment{}, err
	}
	r.logActivity(ctx, "Cancelled appointment for "+removed.Customer, map[string]any{"appointmentId": id.String()})
	return removed, nil
}
