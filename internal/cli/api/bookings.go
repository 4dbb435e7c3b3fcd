package api

import (
	"context"
	"net/http"

	"github.com/yndnr/hyperlocal-go/internal/core/domain"
)

const pathBookings = "/api/bookings"

// Bookings covers booking operations.
type Bookings struct {
	doer    Doer
	session UserIDSource
}

type bookingPayload struct {
	domain.BookingRequest
	User domain.UserRef `json:"user"`
}

// List returns all bookings visible to the caller.
func (b *Bookings) List(ctx context.Context) ([]domain.Booking, error) {
	var out []domain.Booking
	if err := b.doer.Do(ctx, http.MethodGet, pathBookings, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one booking.
func (b *Bookings) Get(ctx context.Context, id int64) (*domain.Booking, error) {
	var out domain.Booking
	if err := b.doer.Do(ctx, http.MethodGet, itemPath(pathBookings, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create books a provider for the signed-in user.
func (b *Bookings) Create(ctx context.Context, req domain.BookingRequest) (*domain.Booking, error) {
	me, err := currentUser(b.session)
	if err != nil {
		return nil, err
	}
	var out domain.Booking
	if err := b.doer.Do(ctx, http.MethodPost, pathBookings, bookingPayload{BookingRequest: req, User: me}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Cancel deletes a booking.
func (b *Bookings) Cancel(ctx context.Context, id int64) error {
	return b.doer.Do(ctx, http.MethodDelete, itemPath(pathBookings, id), nil, nil)
}
