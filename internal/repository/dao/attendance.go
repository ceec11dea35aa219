package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrAttendanceNotFound = errors.New("attendance record not found")

// Attendance rows are append-only. There is no UpdatedAt because records
// are never mutated after the check-in is written.
type Attendance struct {
	ID uint `gorm:"primaryKey"`

	EventID uint  `gorm:"not null;index"`
	Event   Event `gorm:"foreignKey:EventID"`

	GuestName   string `gorm:"not null"`
	Institution string `gorm:"not null"`
	// Snapshot of the managed institution the free-text name matched at
	// submission time. Nil when the guest typed an unmanaged institution.
	InstitutionID *uint `gorm:"index"`

	Position string
	Phone    string
	Email    string

	RepresentativeCount int       `gorm:"not null;default:1"`
	Category            string    `gorm:"not null;default:guest"`
	ArrivalTime         time.Time `gorm:"not null;index"`

	CreatedAt time.Time `gorm:"not null"`
}

// AttendanceRow is an attendance record joined with its event's name and
// slug, the shape handed to displays and exports.
type AttendanceRow struct {
	ID                  uint
	EventID             uint
	GuestName           string
	Institution         string
	InstitutionID       *uint
	Position            string
	Phone               string
	Email               string
	RepresentativeCount int
	Category            string
	ArrivalTime         time.Time
	CreatedAt           time.Time
	EventName           string
	EventSlug           string
	EventDate           time.Time
	EventLocation       string
}

// AttendanceFilter narrows per-event listings and exports.
type AttendanceFilter struct {
	Institution string
	Search      string
}

// AttendanceSearchFilter narrows the global operator search.
type AttendanceSearchFilter struct {
	Query       string
	EventID     uint
	Institution string
	Category    string
	StartDate   *time.Time
	EndDate     *time.Time
}

type StatsRow struct {
	TotalAttendees   int64
	TotalInstitution int64
	TotalRepresented int64
	AvgRepresented   float64
	FirstArrival     *time.Time
	LastArrival      *time.Time
}

type InstitutionBreakdownRow struct {
	Institution      string
	AttendeeCount    int64
	TotalRepresented int64
}

type CategoryBreakdownRow struct {
	Category         string
	AttendeeCount    int64
	TotalRepresented int64
}

type AttendanceDAO struct {
	db *gorm.DB
}

func NewAttendanceDAO(db *gorm.DB) *AttendanceDAO {
	return &AttendanceDAO{
		db: db,
	}
}

func (d *AttendanceDAO) Insert(ctx context.Context, attendance Attendance) (Attendance, error) {
	result := d.db.WithContext(ctx).Create(&attendance)
	if result.Error != nil {
		return Attendance{}, result.Error
	}

	return attendance, nil
}

func (d *AttendanceDAO) FindByID(ctx context.Context, id uint) (AttendanceRow, error) {
	var row AttendanceRow

	result := d.joined(ctx).
		Where("attendances.id = ?", id).
		Scan(&row)
	if result.Error != nil {
		return AttendanceRow{}, result.Error
	}
	if result.RowsAffected == 0 || row.ID == 0 {
		return AttendanceRow{}, ErrAttendanceNotFound
	}

	return row, nil
}

// CountDuplicate matches on the normalized (event, guest name, institution)
// triple. Comparison is trimmed and case-insensitive so that re-typing the
// same name with different casing does not slip past the duplicate guard.
func (d *AttendanceDAO) CountDuplicate(ctx context.Context, eventID uint, guestName, institution string) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Attendance{}).
		Where("event_id = ?", eventID).
		Where("LOWER(TRIM(guest_name)) = LOWER(TRIM(?))", guestName).
		Where("LOWER(TRIM(institution)) = LOWER(TRIM(?))", institution).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

func (d *AttendanceDAO) FindByEventID(ctx context.Context, eventID uint, filter AttendanceFilter, limit, offset int) ([]AttendanceRow, int64, error) {
	query := d.db.WithContext(ctx).Model(&Attendance{}).
		Where("attendances.event_id = ?", eventID)
	query = applyFilter(query, filter)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []AttendanceRow
	result := query.
		Select("attendances.*, events.name AS event_name, events.slug AS event_slug, events.date AS event_date, events.location AS event_location").
		Joins("JOIN events ON events.id = attendances.event_id").
		Order("attendances.created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return rows, total, nil
}

func (d *AttendanceDAO) Stats(ctx context.Context, eventID uint) (StatsRow, error) {
	var row StatsRow

	result := d.db.WithContext(ctx).Model(&Attendance{}).
		Select(`COUNT(*) AS total_attendees,
			COUNT(DISTINCT institution) AS total_institution,
			COALESCE(SUM(representative_count), 0) AS total_represented,
			COALESCE(AVG(representative_count), 0) AS avg_represented,
			MIN(arrival_time) AS first_arrival,
			MAX(arrival_time) AS last_arrival`).
		Where("event_id = ?", eventID).
		Scan(&row)
	if result.Error != nil {
		return StatsRow{}, result.Error
	}

	return row, nil
}

func (d *AttendanceDAO) ByInstitution(ctx context.Context, eventID uint) ([]InstitutionBreakdownRow, error) {
	var rows []InstitutionBreakdownRow

	result := d.db.WithContext(ctx).Model(&Attendance{}).
		Select("institution, COUNT(*) AS attendee_count, COALESCE(SUM(representative_count), 0) AS total_represented").
		Where("event_id = ?", eventID).
		Group("institution").
		Order("institution").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}

func (d *AttendanceDAO) ByCategory(ctx context.Context, eventID uint) ([]CategoryBreakdownRow, error) {
	var rows []CategoryBreakdownRow

	result := d.db.WithContext(ctx).Model(&Attendance{}).
		Select("category, COUNT(*) AS attendee_count, COALESCE(SUM(representative_count), 0) AS total_represented").
		Where("event_id = ?", eventID).
		Group("category").
		Order("attendee_count DESC").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}

// ExportForEvent returns the joined rows in arrival order for CSV export.
func (d *AttendanceDAO) ExportForEvent(ctx context.Context, eventID uint, filter AttendanceFilter) ([]AttendanceRow, error) {
	query := d.joined(ctx).Where("attendances.event_id = ?", eventID)
	query = applyFilter(query, filter)

	var rows []AttendanceRow
	result := query.Order("attendances.arrival_time ASC").Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}

func (d *AttendanceDAO) Search(ctx context.Context, filter AttendanceSearchFilter, limit, offset int) ([]AttendanceRow, int64, error) {
	query := d.db.WithContext(ctx).Model(&Attendance{})

	if filter.Query != "" {
		term := "%" + filter.Query + "%"
		query = query.Where("attendances.guest_name ILIKE ? OR attendances.institution ILIKE ?", term, term)
	}
	if filter.EventID != 0 {
		query = query.Where("attendances.event_id = ?", filter.EventID)
	}
	if filter.Institution != "" {
		query = query.Where("attendances.institution = ?", filter.Institution)
	}
	if filter.Category != "" {
		query = query.Where("attendances.category = ?", filter.Category)
	}
	if filter.StartDate != nil {
		query = query.Where("attendances.arrival_time >= ?", filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("attendances.arrival_time <= ?", filter.EndDate)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []AttendanceRow
	result := query.
		Select("attendances.*, events.name AS event_name, events.slug AS event_slug, events.date AS event_date, events.location AS event_location").
		Joins("JOIN events ON events.id = attendances.event_id").
		Order("attendances.arrival_time DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return rows, total, nil
}

func (d *AttendanceDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Attendance{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAttendanceNotFound
	}

	return nil
}

func (d *AttendanceDAO) CountByInstitutionID(ctx context.Context, institutionID uint) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Attendance{}).
		Where("institution_id = ?", institutionID).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

func (d *AttendanceDAO) Count(ctx context.Context) (int64, error) {
	var total int64

	result := d.db.WithContext(ctx).Model(&Attendance{}).Count(&total)
	if result.Error != nil {
		return 0, result.Error
	}

	return total, nil
}

func (d *AttendanceDAO) joined(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx).Model(&Attendance{}).
		Select("attendances.*, events.name AS event_name, events.slug AS event_slug, events.date AS event_date, events.location AS event_location").
		Joins("JOIN events ON events.id = attendances.event_id")
}

func applyFilter(query *gorm.DB, filter AttendanceFilter) *gorm.DB {
	if filter.Institution != "" {
		query = query.Where("attendances.institution = ?", filter.Institution)
	}
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		query = query.Where("attendances.guest_name ILIKE ? OR attendances.institution ILIKE ?", term, term)
	}

	return query
}
