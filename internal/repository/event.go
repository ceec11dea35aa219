package repository

import (
	"context"
	"fmt"

	"github.com/opencampus-id/guestbook-api/internal/domain"
	"github.com/opencampus-id/guestbook-api/internal/repository/dao"
)

var (
	ErrEventNotFound   = dao.ErrEventNotFound
	ErrEventSlugExists = dao.ErrEventSlugExists
)

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	Update(ctx context.Context, event dao.Event) (dao.Event, error)
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (dao.Event, error)
	FindBySlug(ctx context.Context, slug string) (dao.Event, error)
	FindAll(ctx context.Context, limit, offset int) ([]dao.Event, error)
	Count(ctx context.Context) (int64, error)
	FindUpcoming(ctx context.Context, limit int) ([]dao.Event, error)
	FindPast(ctx context.Context, limit int) ([]dao.Event, error)
	Stats(ctx context.Context, eventID uint) (dao.EventStatsRow, error)
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *EventRepository) Update(ctx context.Context, event domain.Event) (domain.Event, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *EventRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (domain.Event, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *EventRepository) FindBySlug(ctx context.Context, slug string) (domain.Event, error) {
	found, err := r.dao.FindBySlug(ctx, slug)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindBySlug -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *EventRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.Event, int64, error) {
	found, err := r.dao.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	total, err := r.dao.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.Count -> %w", err)
	}

	return r.daoToDomainAll(found), total, nil
}

func (r *EventRepository) FindUpcoming(ctx context.Context, limit int) ([]domain.Event, error) {
	found, err := r.dao.FindUpcoming(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindUpcoming -> %w", err)
	}

	return r.daoToDomainAll(found), nil
}

func (r *EventRepository) FindPast(ctx context.Context, limit int) ([]domain.Event, error) {
	found, err := r.dao.FindPast(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindPast -> %w", err)
	}

	return r.daoToDomainAll(found), nil
}

func (r *EventRepository) Stats(ctx context.Context, eventID uint) (domain.EventStats, error) {
	row, err := r.dao.Stats(ctx, eventID)
	if err != nil {
		return domain.EventStats{}, fmt.Errorf("r.dao.Stats -> %w", err)
	}

	return domain.EventStats{
		TotalAttendees:    row.TotalAttendees,
		TotalInstitutions: row.TotalInstitutions,
		TotalRepresented:  row.TotalRepresented,
	}, nil
}

func (r *EventRepository) domainToDao(e domain.Event) dao.Event {
	return dao.Event{
		ID:          e.ID,
		Name:        e.Name,
		Slug:        e.Slug,
		Description: e.Description,
		Date:        e.Date,
		Location:    e.Location,
	}
}

func (r *EventRepository) daoToDomain(e dao.Event) domain.Event {
	return domain.Event{
		ID:          e.ID,
		Name:        e.Name,
		Slug:        e.Slug,
		Description: e.Description,
		Date:        e.Date,
		Location:    e.Location,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func (r *EventRepository) daoToDomainAll(events []dao.Event) []domain.Event {
	converted := make([]domain.Event, 0, len(events))
	for _, e := range events {
		converted = append(converted, r.daoToDomain(e))
	}

	return converted
}
