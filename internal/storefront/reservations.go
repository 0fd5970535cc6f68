package storefront

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/marcus/storefront/internal/models"
)

// AddReservation turns a visitor request into a pending reservation, caches
// it under a temporary id and returns that id.
func (s *Store) AddReservation(ctx context.Context, req models.ReservationRequest) (string, error) {
	r := models.Reservation{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Date:      req.Date,
		Time:      req.Time,
		Guests:    req.Guests,
		Notes:     req.Notes,
		Status:    models.StatusPending,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
	}
	if err := models.ValidateReservation(r); err != nil {
		return "", err
	}

	s.mu.Lock()
	r.ID = s.nextTempID()
	s.reservations = append(s.reservations, r)
	s.changed()
	s.mu.Unlock()

	tempID := r.ID
	s.background(ctx, Write{
		Op: OpCreate, Entity: EntityReservation, ID: tempID,
		Undo: func() { s.removeReservation(tempID) },
	}, func(ctx context.Context) error {
		id, err := s.remote.AddReservation(ctx, r)
		if err != nil {
			s.mu.Lock()
			delete(s.deletedTemp, tempID)
			s.mu.Unlock()
			return err
		}
		s.confirmReservation(ctx, tempID, id, r)
		return nil
	})
	return tempID, nil
}

func (s *Store) confirmReservation(ctx context.Context, tempID, id string, sent models.Reservation) {
	s.mu.Lock()
	i := s.reservationIndex(tempID)
	if i < 0 {
		deleted := s.takeDeletedTemp(tempID)
		s.mu.Unlock()
		if !deleted {
			// Dropped by a reload; the remote copy is the one to keep.
			s.log.Debug("created entry no longer cached", "entity", EntityReservation, "temp", tempID, "id", id)
			s.adoptReservation(id, sent)
			return
		}
		if err := s.remote.DeleteReservation(ctx, id); err != nil {
			s.log.Warn("remote write failed", "op", OpDelete, "entity", EntityReservation, "id", id, "err", err)
		}
		return
	}
	s.reservations[i].ID = id
	current := s.reservations[i]
	s.changed()
	s.mu.Unlock()

	sent.ID = id
	if current != sent {
		if err := s.remote.UpdateReservation(ctx, id, fullReservationPatch(current)); err != nil {
			s.log.Warn("remote write failed", "op", OpUpdate, "entity", EntityReservation, "id", id, "err", err)
		}
	}
}

// UpdateReservation merges patch into the cached reservation. A status
// change must be an allowed transition.
func (s *Store) UpdateReservation(ctx context.Context, id string, patch models.ReservationPatch) error {
	if patch.Status != nil {
		st := models.NormalizeStatus(string(*patch.Status))
		patch.Status = &st
	}

	s.mu.Lock()
	i := s.reservationIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("reservation %s: %w", id, ErrNotFound)
	}
	prev := s.reservations[i]
	next := patch.Apply(prev)
	next.ID = id
	if err := models.ValidateReservation(next); err != nil {
		s.mu.Unlock()
		return err
	}
	from := prev.Status
	if from == "" {
		from = models.StatusPending
	}
	if next.Status != "" && !from.CanTransition(next.Status) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, from, next.Status)
	}
	s.reservations[i] = next
	s.changed()
	s.mu.Unlock()

	if IsTempID(id) {
		return nil
	}
	s.background(ctx, Write{
		Op: OpUpdate, Entity: EntityReservation, ID: id,
		Undo: func() { s.restoreReservation(next, prev) },
	}, func(ctx context.Context) error {
		return s.remote.UpdateReservation(ctx, id, patch)
	})
	return nil
}

// SetReservationStatus moves a reservation to status.
func (s *Store) SetReservationStatus(ctx context.Context, id string, status models.ReservationStatus) error {
	return s.UpdateReservation(ctx, id, models.ReservationPatch{Status: &status})
}

// ConfirmReservation moves a pending reservation to confirmed.
func (s *Store) ConfirmReservation(ctx context.Context, id string) error {
	return s.SetReservationStatus(ctx, id, models.StatusConfirmed)
}

// CancelReservation moves a pending or confirmed reservation to cancelled.
func (s *Store) CancelReservation(ctx context.Context, id string) error {
	return s.SetReservationStatus(ctx, id, models.StatusCancelled)
}

// DeleteReservation removes a reservation from the cache and, when
// connected, from the remote in the background.
func (s *Store) DeleteReservation(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.reservationIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("reservation %s: %w", id, ErrNotFound)
	}
	prev := s.reservations[i]
	s.reservations = slices.Delete(s.reservations, i, i+1)
	if IsTempID(id) {
		s.deletedTemp[id] = struct{}{}
	}
	s.changed()
	s.mu.Unlock()

	if IsTempID(id) {
		return nil
	}
	s.background(ctx, Write{
		Op: OpDelete, Entity: EntityReservation, ID: id,
		Undo: func() { s.reinsertReservation(i, prev) },
	}, func(ctx context.Context) error {
		return s.remote.DeleteReservation(ctx, id)
	})
	return nil
}

func (s *Store) removeReservation(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.reservationIndex(id); i >= 0 {
		s.reservations = slices.Delete(s.reservations, i, i+1)
		s.changed()
	}
}

func (s *Store) restoreReservation(applied, prev models.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.reservationIndex(prev.ID); i >= 0 && s.reservations[i] == applied {
		s.reservations[i] = prev
		s.changed()
	}
}

func (s *Store) reinsertReservation(at int, prev models.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reservationIndex(prev.ID) >= 0 {
		return
	}
	s.reservations = slices.Insert(s.reservations, min(at, len(s.reservations)), prev)
	s.changed()
}

func fullReservationPatch(r models.Reservation) models.ReservationPatch {
	return models.ReservationPatch{
		Name:   &r.Name,
		Email:  &r.Email,
		Phone:  &r.Phone,
		Date:   &r.Date,
		Time:   &r.Time,
		Guests: &r.Guests,
		Notes:  &r.Notes,
		Status: &r.Status,
	}
}

// adoptReservation caches a confirmed create that a reload dropped, unless the
// reload already fetched it.
func (s *Store) adoptReservation(id string, r models.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reservationIndex(id) >= 0 {
		return
	}
	r.ID = id
	s.reservations = append(s.reservations, r)
	s.changed()
}
