package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	errs "fintrack/internal/errors"
	"fintrack/internal/model"
	"fintrack/internal/repository"
)

// TrackerUpdate is the allow-listed set of mutable tracker fields.
type TrackerUpdate struct {
	Name        *string
	Description *string
}

// TrackerService manages a user's trackers. Every operation checks
// ownership; another user's tracker reads as not found.
type TrackerService interface {
	List(ctx context.Context, userID uint) ([]model.Tracker, error)
	Create(ctx context.Context, userID uint, name, description string) (*model.Tracker, error)
	Get(ctx context.Context, userID uint, trackerID uuid.UUID) (*model.Tracker, error)
	Update(ctx context.Context, userID uint, trackerID uuid.UUID, update TrackerUpdate) (*model.Tracker, error)
	Delete(ctx context.Context, userID uint, trackerID uuid.UUID) error
}

type trackerService struct {
	trackers repository.TrackerRepository
}

// NewTrackerService builds a TrackerService.
func NewTrackerService(trackers repository.TrackerRepository) TrackerService {
	return &trackerService{trackers: trackers}
}

func (s *trackerService) List(ctx context.Context, userID uint) ([]model.Tracker, error) {
	trackers, err := s.trackers.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list trackers: %w", err)
	}
	return trackers, nil
}

func (s *trackerService) Create(ctx context.Context, userID uint, name, description string) (*model.Tracker, error) {
	tracker := &model.Tracker{
		UserID:      userID,
		Name:        name,
		Description: description,
	}
	if err := s.trackers.Create(ctx, tracker); err != nil {
		return nil, fmt.Errorf("create tracker: %w", err)
	}
	return tracker, nil
}

func (s *trackerService) Get(ctx context.Context, userID uint, trackerID uuid.UUID) (*model.Tracker, error) {
	return s.owned(ctx, userID, trackerID)
}

func (s *trackerService) Update(ctx context.Context, userID uint, trackerID uuid.UUID, update TrackerUpdate) (*model.Tracker, error) {
	if _, err := s.owned(ctx, userID, trackerID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if len(fields) > 0 {
		if err := s.trackers.UpdateFields(ctx, trackerID, fields); err != nil {
			return nil, fmt.Errorf("update tracker: %w", err)
		}
	}

	tracker, err := s.trackers.FindByID(ctx, trackerID)
	if err != nil {
		return nil, fmt.Errorf("reload tracker: %w", err)
	}
	return tracker, nil
}

func (s *trackerService) Delete(ctx context.Context, userID uint, trackerID uuid.UUID) error {
	if _, err := s.owned(ctx, userID, trackerID); err != nil {
		return err
	}
	if err := s.trackers.Delete(ctx, trackerID); err != nil {
		return fmt.Errorf("delete tracker: %w", err)
	}
	return nil
}

// owned loads the tracker and verifies the caller owns it. Missing and
// foreign trackers are indistinguishable to the caller.
func (s *trackerService) owned(ctx context.Context, userID uint, trackerID uuid.UUID) (*model.Tracker, error) {
	tracker, err := s.trackers.FindByID(ctx, trackerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTrackerNotFound
		}
		return nil, fmt.Errorf("load tracker: %w", err)
	}
	if tracker.UserID != userID {
		return nil, errs.ErrTrackerNotFound
	}
	return tracker, nil
}
