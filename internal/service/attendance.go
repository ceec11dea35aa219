package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/opencampus-id/guestbook-api/internal/broker"
	"github.com/opencampus-id/guestbook-api/internal/domain"
	"github.com/opencampus-id/guestbook-api/internal/repository"
)

var (
	ErrEventNotFound       = repository.ErrEventNotFound
	ErrAttendanceNotFound  = repository.ErrAttendanceNotFound
	ErrDuplicateAttendance = errors.New("this person has already registered for this event")
	ErrInvalidSubmission   = errors.New("invalid attendance submission")
)

type AttendanceRepository interface {
	Create(ctx context.Context, record domain.AttendanceRecord) (domain.AttendanceRecord, error)
	FindByID(ctx context.Context, id uint) (domain.AttendanceRecord, error)
	IsDuplicate(ctx context.Context, eventID uint, guestName, institution string) (bool, error)
	FindByEventID(ctx context.Context, eventID uint, filter repository.AttendanceFilter, limit, offset int) ([]domain.AttendanceRecord, int64, error)
	Stats(ctx context.Context, eventID uint) (domain.AttendanceStats, error)
	ByInstitution(ctx context.Context, eventID uint) ([]domain.InstitutionBreakdown, error)
	ByCategory(ctx context.Context, eventID uint) ([]domain.CategoryBreakdown, error)
	ExportForEvent(ctx context.Context, eventID uint, filter repository.AttendanceFilter) ([]domain.AttendanceRecord, error)
	Search(ctx context.Context, filter repository.AttendanceSearchFilter, limit, offset int) ([]domain.AttendanceRecord, int64, error)
	Delete(ctx context.Context, id uint) error
}

type AttendanceEventRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Event, error)
	FindBySlug(ctx context.Context, slug string) (domain.Event, error)
}

type AttendanceInstitutionRepository interface {
	FindByName(ctx context.Context, name string) (domain.Institution, error)
}

// Broadcaster is the room broker as the attendance writer sees it: one
// fire-and-forget fan-out per successful check-in.
type Broadcaster interface {
	Broadcast(eventID uint, n broker.Notification)
}

type AttendanceService struct {
	repo            AttendanceRepository
	eventRepo       AttendanceEventRepository
	institutionRepo AttendanceInstitutionRepository
	broadcaster     Broadcaster
}

func NewAttendanceService(
	repo AttendanceRepository,
	eventRepo AttendanceEventRepository,
	institutionRepo AttendanceInstitutionRepository,
	broadcaster Broadcaster,
) *AttendanceService {
	return &AttendanceService{
		repo:            repo,
		eventRepo:       eventRepo,
		institutionRepo: institutionRepo,
		broadcaster:     broadcaster,
	}
}

// SubmitAttendance resolves the slug, rejects duplicates, persists the
// check-in with defaults applied and notifies the event's room. Broadcast
// delivery is independent of the write: a room with no displays is not an
// error.
func (s *AttendanceService) SubmitAttendance(ctx context.Context, eventSlug string, submission domain.AttendanceSubmission) (domain.AttendanceRecord, error) {
	submission.GuestName = strings.TrimSpace(submission.GuestName)
	submission.Institution = strings.TrimSpace(submission.Institution)

	if submission.GuestName == "" || submission.Institution == "" {
		return domain.AttendanceRecord{}, ErrInvalidSubmission
	}
	if submission.RepresentativeCount < 0 || submission.RepresentativeCount > 100 {
		return domain.AttendanceRecord{}, ErrInvalidSubmission
	}

	event, err := s.eventRepo.FindBySlug(ctx, eventSlug)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.AttendanceRecord{}, ErrEventNotFound
		}

		return domain.AttendanceRecord{}, fmt.Errorf("s.eventRepo.FindBySlug -> %w", err)
	}

	duplicate, err := s.repo.IsDuplicate(ctx, event.ID, submission.GuestName, submission.Institution)
	if err != nil {
		return domain.AttendanceRecord{}, fmt.Errorf("s.repo.IsDuplicate -> %w", err)
	}
	if duplicate {
		return domain.AttendanceRecord{}, ErrDuplicateAttendance
	}

	record := domain.AttendanceRecord{
		EventID:             event.ID,
		GuestName:           submission.GuestName,
		Institution:         submission.Institution,
		Position:            strings.TrimSpace(submission.Position),
		Phone:               strings.TrimSpace(submission.Phone),
		Email:               strings.TrimSpace(submission.Email),
		RepresentativeCount: submission.RepresentativeCount,
		Category:            submission.Category,
		ArrivalTime:         time.Now(),
	}
	if record.RepresentativeCount == 0 {
		record.RepresentativeCount = 1
	}
	if record.Category == "" {
		record.Category = domain.CategoryGuest
	}

	// Snapshot the managed institution when the typed name matches one,
	// so delete-protection survives later renames.
	institution, err := s.institutionRepo.FindByName(ctx, submission.Institution)
	if err == nil {
		record.InstitutionID = &institution.ID
	} else if !errors.Is(err, repository.ErrInstitutionNotFound) {
		return domain.AttendanceRecord{}, fmt.Errorf("s.institutionRepo.FindByName -> %w", err)
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return domain.AttendanceRecord{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	created.EventName = event.Name
	created.EventSlug = event.Slug

	s.broadcaster.Broadcast(event.ID, broker.Notification{
		ID:          created.ID,
		GuestName:   created.GuestName,
		Institution: created.Institution,
		Position:    created.Position,
		Category:    created.Category,
		ArrivalTime: created.ArrivalTime,
		EventName:   event.Name,
		EventSlug:   event.Slug,
	})

	return created, nil
}

func (s *AttendanceService) GetEventAttendance(ctx context.Context, eventID uint, filter repository.AttendanceFilter, page, pageSize int) (domain.Event, []domain.AttendanceRecord, int64, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.Event{}, nil, 0, ErrEventNotFound
		}

		return domain.Event{}, nil, 0, fmt.Errorf("s.eventRepo.FindByID -> %w", err)
	}

	offset := (page - 1) * pageSize
	records, total, err := s.repo.FindByEventID(ctx, eventID, filter, pageSize, offset)
	if err != nil {
		return domain.Event{}, nil, 0, fmt.Errorf("s.repo.FindByEventID -> %w", err)
	}

	return event, records, total, nil
}

// GetEventAttendanceBySlug is the unauthenticated variant used by live
// displays to load their backlog.
func (s *AttendanceService) GetEventAttendanceBySlug(ctx context.Context, slug string, filter repository.AttendanceFilter, page, pageSize int) (domain.Event, []domain.AttendanceRecord, int64, error) {
	event, err := s.eventRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.Event{}, nil, 0, ErrEventNotFound
		}

		return domain.Event{}, nil, 0, fmt.Errorf("s.eventRepo.FindBySlug -> %w", err)
	}

	offset := (page - 1) * pageSize
	records, total, err := s.repo.FindByEventID(ctx, event.ID, filter, pageSize, offset)
	if err != nil {
		return domain.Event{}, nil, 0, fmt.Errorf("s.repo.FindByEventID -> %w", err)
	}

	return event, records, total, nil
}

func (s *AttendanceService) GetEventAttendanceStats(ctx context.Context, eventID uint) (domain.Event, domain.AttendanceStats, []domain.InstitutionBreakdown, []domain.CategoryBreakdown, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.Event{}, domain.AttendanceStats{}, nil, nil, ErrEventNotFound
		}

		return domain.Event{}, domain.AttendanceStats{}, nil, nil, fmt.Errorf("s.eventRepo.FindByID -> %w", err)
	}

	stats, err := s.repo.Stats(ctx, eventID)
	if err != nil {
		return domain.Event{}, domain.AttendanceStats{}, nil, nil, fmt.Errorf("s.repo.Stats -> %w", err)
	}

	byInstitution, err := s.repo.ByInstitution(ctx, eventID)
	if err != nil {
		return domain.Event{}, domain.AttendanceStats{}, nil, nil, fmt.Errorf("s.repo.ByInstitution -> %w", err)
	}

	byCategory, err := s.repo.ByCategory(ctx, eventID)
	if err != nil {
		return domain.Event{}, domain.AttendanceStats{}, nil, nil, fmt.Errorf("s.repo.ByCategory -> %w", err)
	}

	return event, stats, byInstitution, byCategory, nil
}

// ExportEventAttendanceCSV renders the event's check-ins as CSV, in
// arrival order, and suggests a download filename.
func (s *AttendanceService) ExportEventAttendanceCSV(ctx context.Context, eventID uint, filter repository.AttendanceFilter) ([]byte, string, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, "", ErrEventNotFound
		}

		return nil, "", fmt.Errorf("s.eventRepo.FindByID -> %w", err)
	}

	records, err := s.repo.ExportForEvent(ctx, eventID, filter)
	if err != nil {
		return nil, "", fmt.Errorf("s.repo.ExportForEvent -> %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"Guest Name", "Institution", "Position", "Phone", "Email",
		"Representative Count", "Category", "Arrival Time",
		"Event Name", "Event Date", "Event Location",
	}
	if err = w.Write(header); err != nil {
		return nil, "", fmt.Errorf("w.Write -> %w", err)
	}

	for _, record := range records {
		row := []string{
			record.GuestName,
			record.Institution,
			record.Position,
			record.Phone,
			record.Email,
			fmt.Sprintf("%d", record.RepresentativeCount),
			record.Category,
			record.ArrivalTime.Format(time.RFC3339),
			event.Name,
			event.Date.Format(time.RFC3339),
			event.Location,
		}
		if err = w.Write(row); err != nil {
			return nil, "", fmt.Errorf("w.Write -> %w", err)
		}
	}

	w.Flush()
	if err = w.Error(); err != nil {
		return nil, "", fmt.Errorf("w.Error -> %w", err)
	}

	filename := fmt.Sprintf("attendance-%v-%v.csv", event.Slug, time.Now().Format("2006-01-02"))

	return buf.Bytes(), filename, nil
}

func (s *AttendanceService) SearchAttendance(ctx context.Context, filter repository.AttendanceSearchFilter, page, pageSize int) ([]domain.AttendanceRecord, int64, error) {
	offset := (page - 1) * pageSize
	records, total, err := s.repo.Search(ctx, filter, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("s.repo.Search -> %w", err)
	}

	return records, total, nil
}

func (s *AttendanceService) DeleteAttendance(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrAttendanceNotFound) {
			return ErrAttendanceNotFound
		}

		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}
