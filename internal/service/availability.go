package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/venably/venably/internal/adapter/otel"
	"github.com/venably/venably/internal/domain"
	"github.com/venably/venably/internal/domain/booking"
	"github.com/venably/venably/internal/port/database"
)

// checkConcurrency caps parallel candidate loads per availability request.
const checkConcurrency = 8

// AvailabilityService answers read-only "would this slot collide" questions.
// Results are a snapshot: only the write path's transaction makes the answer
// authoritative.
type AvailabilityService struct {
	store database.Store
}

// NewAvailabilityService creates a new AvailabilityService.
func NewAvailabilityService(store database.Store) *AvailabilityService {
	return &AvailabilityService{store: store}
}

// CheckRequest asks whether a slot is free on one or more spaces.
type CheckRequest struct {
	SpaceIDs  []string `json:"space_ids"`
	EventDate string   `json:"event_date"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	// ExcludeBookingID leaves one booking out of the candidate set, for
	// "would moving this booking collide" checks.
	ExcludeBookingID string `json:"exclude_booking_id,omitempty"`
}

// SpaceResult is the availability verdict for one space.
type SpaceResult struct {
	SpaceID   string             `json:"space_id"`
	Available bool               `json:"available"`
	Conflicts []booking.Conflict `json:"conflicts,omitempty"`
}

// Check evaluates the requested slot against every listed space, fanning the
// per-space candidate loads out concurrently. A space is available when no
// blocking conflict overlaps; advisory conflicts are reported either way.
func (s *AvailabilityService) Check(ctx context.Context, tenantID string, req CheckRequest) ([]SpaceResult, error) {
	if tenantID == "" {
		return nil, domain.ErrTenantRequired
	}
	if len(req.SpaceIDs) == 0 {
		return nil, fmt.Errorf("%w: space_ids is required", domain.ErrValidation)
	}

	ctx, span := otel.StartCheckSpan(ctx, tenantID, len(req.SpaceIDs))
	defer span.End()

	results := make([]SpaceResult, len(req.SpaceIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(checkConcurrency)
	for i, spaceID := range req.SpaceIDs {
		slot, err := booking.ParseSlot(spaceID, req.EventDate, req.StartTime, req.EndTime)
		if err != nil {
			return nil, err
		}
		if slot.SpaceID == "" {
			return nil, fmt.Errorf("%w: space_ids must not contain empty IDs", domain.ErrValidation)
		}
		g.Go(func() error {
			candidates, err := s.store.LoadCandidates(gctx, tenantID, slot.SpaceID, slot.EventDate)
			if err != nil {
				return fmt.Errorf("space %s: %w", slot.SpaceID, err)
			}
			conflicts := booking.FindConflicts(candidates, slot, req.ExcludeBookingID)
			results[i] = SpaceResult{
				SpaceID:   slot.SpaceID,
				Available: !booking.HasBlocking(conflicts),
				Conflicts: conflicts,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
