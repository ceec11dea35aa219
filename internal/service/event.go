package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/opencampus-id/guestbook-api/internal/domain"
	"github.com/opencampus-id/guestbook-api/internal/repository"
)

var ErrEventSlugExists = repository.ErrEventSlugExists

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	Update(ctx context.Context, event domain.Event) (domain.Event, error)
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (domain.Event, error)
	FindBySlug(ctx context.Context, slug string) (domain.Event, error)
	FindAll(ctx context.Context, limit, offset int) ([]domain.Event, int64, error)
	FindUpcoming(ctx context.Context, limit int) ([]domain.Event, error)
	FindPast(ctx context.Context, limit int) ([]domain.Event, error)
	Stats(ctx context.Context, eventID uint) (domain.EventStats, error)
}

type EventAttendanceCounter interface {
	Count(ctx context.Context) (int64, error)
}

type EventInstitutionCounter interface {
	Count(ctx context.Context) (int64, error)
}

type EventService struct {
	repo             EventRepository
	attendanceCounts EventAttendanceCounter
	institutionCount EventInstitutionCounter
}

func NewEventService(repo EventRepository, attendanceCounts EventAttendanceCounter, institutionCount EventInstitutionCounter) *EventService {
	return &EventService{
		repo:             repo,
		attendanceCounts: attendanceCounts,
		institutionCount: institutionCount,
	}
}

func (s *EventService) GetEvents(ctx context.Context, page, pageSize int) ([]domain.Event, int64, error) {
	offset := (page - 1) * pageSize
	events, total, err := s.repo.FindAll(ctx, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return events, total, nil
}

func (s *EventService) GetUpcomingEvents(ctx context.Context, limit int) ([]domain.Event, error) {
	events, err := s.repo.FindUpcoming(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindUpcoming -> %w", err)
	}

	return events, nil
}

func (s *EventService) GetPastEvents(ctx context.Context, limit int) ([]domain.Event, error) {
	events, err := s.repo.FindPast(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindPast -> %w", err)
	}

	return events, nil
}

// GetEvent returns the event with its attendance aggregates, the shape the
// event detail page renders.
func (s *EventService) GetEvent(ctx context.Context, id uint) (domain.EventWithStats, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.EventWithStats{}, ErrEventNotFound
		}

		return domain.EventWithStats{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	stats, err := s.repo.Stats(ctx, id)
	if err != nil {
		return domain.EventWithStats{}, fmt.Errorf("s.repo.Stats -> %w", err)
	}

	return domain.EventWithStats{Event: event, EventStats: stats}, nil
}

func (s *EventService) GetEventBySlug(ctx context.Context, slug string) (domain.Event, error) {
	event, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.Event{}, ErrEventNotFound
		}

		return domain.Event{}, fmt.Errorf("s.repo.FindBySlug -> %w", err)
	}

	return event, nil
}

func (s *EventService) CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	if err := s.checkSlugAvailable(ctx, event.Slug, 0); err != nil {
		return domain.Event{}, err
	}

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		if errors.Is(err, repository.ErrEventSlugExists) {
			return domain.Event{}, ErrEventSlugExists
		}

		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *EventService) UpdateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	existing, err := s.repo.FindByID(ctx, event.ID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.Event{}, ErrEventNotFound
		}

		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if event.Slug != existing.Slug {
		if err = s.checkSlugAvailable(ctx, event.Slug, event.ID); err != nil {
			return domain.Event{}, err
		}
	}

	updated, err := s.repo.Update(ctx, event)
	if err != nil {
		if errors.Is(err, repository.ErrEventSlugExists) {
			return domain.Event{}, ErrEventSlugExists
		}

		return domain.Event{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return ErrEventNotFound
		}

		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

func (s *EventService) GetSystemStats(ctx context.Context) (domain.SystemStats, error) {
	_, totalEvents, err := s.repo.FindAll(ctx, 1, 0)
	if err != nil {
		return domain.SystemStats{}, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	totalAttendees, err := s.attendanceCounts.Count(ctx)
	if err != nil {
		return domain.SystemStats{}, fmt.Errorf("s.attendanceCounts.Count -> %w", err)
	}

	totalInstitutions, err := s.institutionCount.Count(ctx)
	if err != nil {
		return domain.SystemStats{}, fmt.Errorf("s.institutionCount.Count -> %w", err)
	}

	return domain.SystemStats{
		TotalEvents:       totalEvents,
		TotalAttendees:    totalAttendees,
		TotalInstitutions: totalInstitutions,
	}, nil
}

func (s *EventService) checkSlugAvailable(ctx context.Context, slug string, selfID uint) error {
	existing, err := s.repo.FindBySlug(ctx, slug)
	if err == nil {
		if existing.ID == selfID {
			return nil
		}
		return ErrEventSlugExists
	}
	if !errors.Is(err, repository.ErrEventNotFound) {
		return fmt.Errorf("s.repo.FindBySlug -> %w", err)
	}

	return nil
}
