package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/opencampus-id/guestbook-api/internal/domain"
	"github.com/opencampus-id/guestbook-api/internal/repository/dao"
)

var ErrAttendanceNotFound = dao.ErrAttendanceNotFound

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

type AttendanceDAO interface {
	Insert(ctx context.Context, attendance dao.Attendance) (dao.Attendance, error)
	FindByID(ctx context.Context, id uint) (dao.AttendanceRow, error)
	CountDuplicate(ctx context.Context, eventID uint, guestName, institution string) (int64, error)
	FindByEventID(ctx context.Context, eventID uint, filter dao.AttendanceFilter, limit, offset int) ([]dao.AttendanceRow, int64, error)
	Stats(ctx context.Context, eventID uint) (dao.StatsRow, error)
	ByInstitution(ctx context.Context, eventID uint) ([]dao.InstitutionBreakdownRow, error)
	ByCategory(ctx context.Context, eventID uint) ([]dao.CategoryBreakdownRow, error)
	ExportForEvent(ctx context.Context, eventID uint, filter dao.AttendanceFilter) ([]dao.AttendanceRow, error)
	Search(ctx context.Context, filter dao.AttendanceSearchFilter, limit, offset int) ([]dao.AttendanceRow, int64, error)
	Delete(ctx context.Context, id uint) error
	CountByInstitutionID(ctx context.Context, institutionID uint) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type AttendanceRepository struct {
	dao AttendanceDAO
}

func NewAttendanceRepository(dao AttendanceDAO) *AttendanceRepository {
	return &AttendanceRepository{
		dao: dao,
	}
}

func (r *AttendanceRepository) Create(ctx context.Context, record domain.AttendanceRecord) (domain.AttendanceRecord, error) {
	created, err := r.dao.Insert(ctx, dao.Attendance{
		EventID:             record.EventID,
		GuestName:           record.GuestName,
		Institution:         record.Institution,
		InstitutionID:       record.InstitutionID,
		Position:            record.Position,
		Phone:               record.Phone,
		Email:               record.Email,
		RepresentativeCount: record.RepresentativeCount,
		Category:            record.Category,
		ArrivalTime:         record.ArrivalTime,
	})
	if err != nil {
		return domain.AttendanceRecord{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	record.ID = created.ID
	record.CreatedAt = created.CreatedAt

	return record, nil
}

func (r *AttendanceRepository) FindByID(ctx context.Context, id uint) (domain.AttendanceRecord, error) {
	row, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.AttendanceRecord{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.rowToDomain(row), nil
}

func (r *AttendanceRepository) IsDuplicate(ctx context.Context, eventID uint, guestName, institution string) (bool, error) {
	count, err := r.dao.CountDuplicate(ctx, eventID, guestName, institution)
	if err != nil {
		return false, fmt.Errorf("r.dao.CountDuplicate -> %w", err)
	}

	return count > 0, nil
}

func (r *AttendanceRepository) FindByEventID(ctx context.Context, eventID uint, filter AttendanceFilter, limit, offset int) ([]domain.AttendanceRecord, int64, error) {
	rows, total, err := r.dao.FindByEventID(ctx, eventID, dao.AttendanceFilter(filter), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.FindByEventID -> %w", err)
	}

	return r.rowsToDomain(rows), total, nil
}

func (r *AttendanceRepository) Stats(ctx context.Context, eventID uint) (domain.AttendanceStats, error) {
	row, err := r.dao.Stats(ctx, eventID)
	if err != nil {
		return domain.AttendanceStats{}, fmt.Errorf("r.dao.Stats -> %w", err)
	}

	return domain.AttendanceStats{
		TotalAttendees:   row.TotalAttendees,
		TotalInstitution: row.TotalInstitution,
		TotalRepresented: row.TotalRepresented,
		AvgRepresented:   row.AvgRepresented,
		FirstArrival:     row.FirstArrival,
		LastArrival:      row.LastArrival,
	}, nil
}

func (r *AttendanceRepository) ByInstitution(ctx context.Context, eventID uint) ([]domain.InstitutionBreakdown, error) {
	rows, err := r.dao.ByInstitution(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ByInstitution -> %w", err)
	}

	breakdown := make([]domain.InstitutionBreakdown, 0, len(rows))
	for _, row := range rows {
		breakdown = append(breakdown, domain.InstitutionBreakdown{
			Institution:      row.Institution,
			AttendeeCount:    row.AttendeeCount,
			TotalRepresented: row.TotalRepresented,
		})
	}

	return breakdown, nil
}

func (r *AttendanceRepository) ByCategory(ctx context.Context, eventID uint) ([]domain.CategoryBreakdown, error) {
	rows, err := r.dao.ByCategory(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ByCategory -> %w", err)
	}

	breakdown := make([]domain.CategoryBreakdown, 0, len(rows))
	for _, row := range rows {
		breakdown = append(breakdown, domain.CategoryBreakdown{
			Category:         row.Category,
			AttendeeCount:    row.AttendeeCount,
			TotalRepresented: row.TotalRepresented,
		})
	}

	return breakdown, nil
}

func (r *AttendanceRepository) ExportForEvent(ctx context.Context, eventID uint, filter AttendanceFilter) ([]domain.AttendanceRecord, error) {
	rows, err := r.dao.ExportForEvent(ctx, eventID, dao.AttendanceFilter(filter))
	if err != nil {
		return nil, fmt.Errorf("r.dao.ExportForEvent -> %w", err)
	}

	return r.rowsToDomain(rows), nil
}

func (r *AttendanceRepository) Search(ctx context.Context, filter AttendanceSearchFilter, limit, offset int) ([]domain.AttendanceRecord, int64, error) {
	rows, total, err := r.dao.Search(ctx, dao.AttendanceSearchFilter(filter), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.Search -> %w", err)
	}

	return r.rowsToDomain(rows), total, nil
}

func (r *AttendanceRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *AttendanceRepository) CountByInstitutionID(ctx context.Context, institutionID uint) (int64, error) {
	count, err := r.dao.CountByInstitutionID(ctx, institutionID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountByInstitutionID -> %w", err)
	}

	return count, nil
}

func (r *AttendanceRepository) Count(ctx context.Context) (int64, error) {
	total, err := r.dao.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("r.dao.Count -> %w", err)
	}

	return total, nil
}

func (r *AttendanceRepository) rowToDomain(row dao.AttendanceRow) domain.AttendanceRecord {
	return domain.AttendanceRecord{
		ID:                  row.ID,
		EventID:             row.EventID,
		GuestName:           row.GuestName,
		Institution:         row.Institution,
		InstitutionID:       row.InstitutionID,
		Position:            row.Position,
		Phone:               row.Phone,
		Email:               row.Email,
		RepresentativeCount: row.RepresentativeCount,
		Category:            row.Category,
		ArrivalTime:         row.ArrivalTime,
		EventName:           row.EventName,
		EventSlug:           row.EventSlug,
		CreatedAt:           row.CreatedAt,
	}
}

func (r *AttendanceRepository) rowsToDomain(rows []dao.AttendanceRow) []domain.AttendanceRecord {
	records := make([]domain.AttendanceRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, r.rowToDomain(row))
	}

	return records
}
