package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrEventSlugExists = errors.New("event slug already exists")
)

type Event struct {
	ID uint `gorm:"primaryKey"`

	Name        string `gorm:"not null"`
	Slug        string `gorm:"unique;not null"`
	Description string
	Date        time.Time `gorm:"not null;index"`
	Location    string

	// Deleting an event takes its attendance records with it.
	Attendances []Attendance `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// EventStatsRow carries the attendance aggregates joined onto an event.
type EventStatsRow struct {
	TotalAttendees    int64
	TotalInstitutions int64
	TotalRepresented  int64
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).Create(&event)
	if result.Error != nil {
		if isSlugViolation(result.Error) {
			return Event{}, ErrEventSlugExists
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) Update(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).Model(&Event{ID: event.ID}).
		Select("name", "slug", "description", "date", "location").
		Updates(map[string]any{
			"name":        event.Name,
			"slug":        event.Slug,
			"description": event.Description,
			"date":        event.Date,
			"location":    event.Location,
		})
	if result.Error != nil {
		if isSlugViolation(result.Error) {
			return Event{}, ErrEventSlugExists
		}

		return Event{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Event{}, ErrEventNotFound
	}

	return d.FindByID(ctx, event.ID)
}

func (d *EventDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Select("Attendances").Delete(&Event{ID: id})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

func (d *EventDAO) FindByID(ctx context.Context, id uint) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindBySlug(ctx context.Context, slug string) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).First(&event, "slug = ?", slug)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindAll(ctx context.Context, limit, offset int) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Order("date DESC").
		Limit(limit).
		Offset(offset).
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

func (d *EventDAO) Count(ctx context.Context) (int64, error) {
	var total int64

	result := d.db.WithContext(ctx).Model(&Event{}).Count(&total)
	if result.Error != nil {
		return 0, result.Error
	}

	return total, nil
}

func (d *EventDAO) FindUpcoming(ctx context.Context, limit int) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Where("date >= NOW()").
		Order("date ASC").
		Limit(limit).
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

func (d *EventDAO) FindPast(ctx context.Context, limit int) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Where("date < NOW()").
		Order("date DESC").
		Limit(limit).
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

func (d *EventDAO) Stats(ctx context.Context, eventID uint) (EventStatsRow, error) {
	var row EventStatsRow

	result := d.db.WithContext(ctx).Model(&Attendance{}).
		Select("COUNT(*) AS total_attendees, COUNT(DISTINCT institution) AS total_institutions, COALESCE(SUM(representative_count), 0) AS total_represented").
		Where("event_id = ?", eventID).
		Scan(&row)
	if result.Error != nil {
		return EventStatsRow{}, result.Error
	}

	return row, nil
}

func isSlugViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.UniqueViolation &&
		strings.Contains(pgErr.Message, `unique constraint "uni_events_slug"`)
}
