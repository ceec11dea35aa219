package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencampus-id/guestbook-api/internal/broker"
	"github.com/opencampus-id/guestbook-api/internal/domain"
	"github.com/opencampus-id/guestbook-api/internal/repository"
)

type mockAttendanceRepo struct {
	AttendanceRepository

	createFn    func(ctx context.Context, record domain.AttendanceRecord) (domain.AttendanceRecord, error)
	duplicateFn func(ctx context.Context, eventID uint, guestName, institution string) (bool, error)
	findByIDFn  func(ctx context.Context, id uint) (domain.AttendanceRecord, error)
	deleteFn    func(ctx context.Context, id uint) error
	exportFn    func(ctx context.Context, eventID uint, filter repository.AttendanceFilter) ([]domain.AttendanceRecord, error)

	created []domain.AttendanceRecord
}

func (m *mockAttendanceRepo) Create(ctx context.Context, record domain.AttendanceRecord) (domain.AttendanceRecord, error) {
	created, err := m.createFn(ctx, record)
	if err == nil {
		m.created = append(m.created, created)
	}

	return created, err
}

func (m *mockAttendanceRepo) IsDuplicate(ctx context.Context, eventID uint, guestName, institution string) (bool, error) {
	return m.duplicateFn(ctx, eventID, guestName, institution)
}

func (m *mockAttendanceRepo) FindByID(ctx context.Context, id uint) (domain.AttendanceRecord, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockAttendanceRepo) Delete(ctx context.Context, id uint) error {
	return m.deleteFn(ctx, id)
}

func (m *mockAttendanceRepo) ExportForEvent(ctx context.Context, eventID uint, filter repository.AttendanceFilter) ([]domain.AttendanceRecord, error) {
	return m.exportFn(ctx, eventID, filter)
}

type mockEventRepo struct {
	findByIDFn   func(ctx context.Context, id uint) (domain.Event, error)
	findBySlugFn func(ctx context.Context, slug string) (domain.Event, error)
}

func (m *mockEventRepo) FindByID(ctx context.Context, id uint) (domain.Event, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockEventRepo) FindBySlug(ctx context.Context, slug string) (domain.Event, error) {
	return m.findBySlugFn(ctx, slug)
}

type mockInstitutionRepo struct {
	findByNameFn func(ctx context.Context, name string) (domain.Institution, error)
}

func (m *mockInstitutionRepo) FindByName(ctx context.Context, name string) (domain.Institution, error) {
	return m.findByNameFn(ctx, name)
}

type mockBroadcaster struct {
	notifications []broker.Notification
	eventIDs      []uint
}

func (m *mockBroadcaster) Broadcast(eventID uint, n broker.Notification) {
	m.eventIDs = append(m.eventIDs, eventID)
	m.notifications = append(m.notifications, n)
}

func openHouse() domain.Event {
	return domain.Event{
		ID:       7,
		Name:     "Campus Open House 2026",
		Slug:     "open-house-2026",
		Date:     time.Date(2026, 9, 12, 8, 0, 0, 0, time.UTC),
		Location: "Main Auditorium",
	}
}

func TestSubmitAttendance(t *testing.T) {
	newService := func(repo *mockAttendanceRepo, institutions *mockInstitutionRepo, b *mockBroadcaster) *AttendanceService {
		events := &mockEventRepo{
			findBySlugFn: func(ctx context.Context, slug string) (domain.Event, error) {
				if slug == "open-house-2026" {
					return openHouse(), nil
				}
				return domain.Event{}, repository.ErrEventNotFound
			},
		}

		return NewAttendanceService(repo, events, institutions, b)
	}

	noInstitutions := &mockInstitutionRepo{
		findByNameFn: func(ctx context.Context, name string) (domain.Institution, error) {
			return domain.Institution{}, repository.ErrInstitutionNotFound
		},
	}

	t.Run("applies defaults and broadcasts exactly once", func(t *testing.T) {
		repo := &mockAttendanceRepo{
			createFn: func(ctx context.Context, record domain.AttendanceRecord) (domain.AttendanceRecord, error) {
				record.ID = 101
				return record, nil
			},
			duplicateFn: func(ctx context.Context, eventID uint, guestName, institution string) (bool, error) {
				return false, nil
			},
		}
		b := &mockBroadcaster{}
		svc := newService(repo, noInstitutions, b)

		created, err := svc.SubmitAttendance(context.Background(), "open-house-2026", domain.AttendanceSubmission{
			GuestName:   "  Budi Santoso  ",
			Institution: "SMA Negeri 1",
		})

		require.NoError(t, err)
		assert.Equal(t, uint(101), created.ID)
		assert.Equal(t, "Budi Santoso", created.GuestName)
		assert.Equal(t, 1, created.RepresentativeCount)
		assert.Equal(t, domain.CategoryGuest, created.Category)
		assert.Equal(t, "Campus Open House 2026", created.EventName)
		assert.Nil(t, created.InstitutionID)
		assert.False(t, created.ArrivalTime.IsZero())

		require.Len(t, b.notifications, 1)
		assert.Equal(t, []uint{7}, b.eventIDs)
		assert.Equal(t, uint(101), b.notifications[0].ID)
		assert.Equal(t, "Budi Santoso", b.notifications[0].GuestName)
		assert.Equal(t, "open-house-2026", b.notifications[0].EventSlug)
	})

	t.Run("snapshots the managed institution ID", func(t *testing.T) {
		repo := &mockAttendanceRepo{
			createFn: func(ctx context.Context, record domain.AttendanceRecord) (domain.AttendanceRecord, error) {
				record.ID = 102
				return record, nil
			},
			duplicateFn: func(ctx context.Context, eventID uint, guestName, institution string) (bool, error) {
				return false, nil
			},
		}
		institutions := &mockInstitutionRepo{
			findByNameFn: func(ctx context.Context, name string) (domain.Institution, error) {
				return domain.Institution{ID: 42, Name: name}, nil
			},
		}
		svc := newService(repo, institutions, &mockBroadcaster{})

		created, err := svc.SubmitAttendance(context.Background(), "open-house-2026", domain.AttendanceSubmission{
			GuestName:   "Siti Rahma",
			Institution: "Universitas Indonesia",
		})

		require.NoError(t, err)
		require.NotNil(t, created.InstitutionID)
		assert.Equal(t, uint(42), *created.InstitutionID)
	})

	t.Run("rejects duplicates without writing or broadcasting", func(t *testing.T) {
		repo := &mockAttendanceRepo{
			createFn: func(ctx context.Context, record domain.AttendanceRecord) (domain.AttendanceRecord, error) {
				t.Fatal("Create should not be called for a duplicate")
				return domain.AttendanceRecord{}, nil
			},
			duplicateFn: func(ctx context.Context, eventID uint, guestName, institution string) (bool, error) {
				return true, nil
			},
		}
		b := &mockBroadcaster{}
		svc := newService(repo, noInstitutions, b)

		_, err := svc.SubmitAttendance(context.Background(), "open-house-2026", domain.AttendanceSubmission{
			GuestName:   "Budi Santoso",
			Institution: "SMA Negeri 1",
		})

		assert.ErrorIs(t, err, ErrDuplicateAttendance)
		assert.Empty(t, repo.created)
		assert.Empty(t, b.notifications)
	})

	t.Run("unknown slug", func(t *testing.T) {
		repo := &mockAttendanceRepo{
			duplicateFn: func(ctx context.Context, eventID uint, guestName, institution string) (bool, error) {
				return false, nil
			},
		}
		svc := newService(repo, noInstitutions, &mockBroadcaster{})

		_, err := svc.SubmitAttendance(context.Background(), "no-such-event", domain.AttendanceSubmission{
			GuestName:   "Budi Santoso",
			Institution: "SMA Negeri 1",
		})

		assert.ErrorIs(t, err, ErrEventNotFound)
	})

	t.Run("rejects blank required fields", func(t *testing.T) {
		svc := newService(&mockAttendanceRepo{}, noInstitutions, &mockBroadcaster{})

		_, err := svc.SubmitAttendance(context.Background(), "open-house-2026", domain.AttendanceSubmission{
			GuestName:   "   ",
			Institution: "SMA Negeri 1",
		})

		assert.ErrorIs(t, err, ErrInvalidSubmission)
	})

	t.Run("rejects out-of-range representative count", func(t *testing.T) {
		svc := newService(&mockAttendanceRepo{}, noInstitutions, &mockBroadcaster{})

		_, err := svc.SubmitAttendance(context.Background(), "open-house-2026", domain.AttendanceSubmission{
			GuestName:           "Budi Santoso",
			Institution:         "SMA Negeri 1",
			RepresentativeCount: 101,
		})

		assert.ErrorIs(t, err, ErrInvalidSubmission)
	})
}

func TestDeleteAttendance(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		repo := &mockAttendanceRepo{
			findByIDFn: func(ctx context.Context, id uint) (domain.AttendanceRecord, error) {
				return domain.AttendanceRecord{}, repository.ErrAttendanceNotFound
			},
		}
		svc := NewAttendanceService(repo, &mockEventRepo{}, &mockInstitutionRepo{}, &mockBroadcaster{})

		err := svc.DeleteAttendance(context.Background(), 999)

		assert.ErrorIs(t, err, ErrAttendanceNotFound)
	})

	t.Run("deletes existing record", func(t *testing.T) {
		var deleted uint
		repo := &mockAttendanceRepo{
			findByIDFn: func(ctx context.Context, id uint) (domain.AttendanceRecord, error) {
				return domain.AttendanceRecord{ID: id}, nil
			},
			deleteFn: func(ctx context.Context, id uint) error {
				deleted = id
				return nil
			},
		}
		svc := NewAttendanceService(repo, &mockEventRepo{}, &mockInstitutionRepo{}, &mockBroadcaster{})

		err := svc.DeleteAttendance(context.Background(), 55)

		require.NoError(t, err)
		assert.Equal(t, uint(55), deleted)
	})
}

func TestExportEventAttendanceCSV(t *testing.T) {
	events := &mockEventRepo{
		findByIDFn: func(ctx context.Context, id uint) (domain.Event, error) {
			return openHouse(), nil
		},
	}
	repo := &mockAttendanceRepo{
		exportFn: func(ctx context.Context, eventID uint, filter repository.AttendanceFilter) ([]domain.AttendanceRecord, error) {
			return []domain.AttendanceRecord{
				{
					GuestName:           "Budi Santoso",
					Institution:         "SMA Negeri 1",
					RepresentativeCount: 2,
					Category:            domain.CategoryGuest,
					ArrivalTime:         time.Date(2026, 9, 12, 8, 30, 0, 0, time.UTC),
				},
				{
					GuestName:           "Siti Rahma",
					Institution:         "Universitas Indonesia",
					RepresentativeCount: 1,
					Category:            domain.CategorySpeaker,
					ArrivalTime:         time.Date(2026, 9, 12, 8, 45, 0, 0, time.UTC),
				},
			}, nil
		},
	}
	svc := NewAttendanceService(repo, events, &mockInstitutionRepo{}, &mockBroadcaster{})

	data, filename, err := svc.ExportEventAttendanceCSV(context.Background(), 7, repository.AttendanceFilter{})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "attendance-open-house-2026-"))
	assert.True(t, strings.HasSuffix(filename, ".csv"))

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Guest Name")
	assert.Contains(t, lines[1], "Budi Santoso")
	assert.Contains(t, lines[2], "Siti Rahma")
}

func TestGetEventAttendance(t *testing.T) {
	t.Run("event not found", func(t *testing.T) {
		events := &mockEventRepo{
			findByIDFn: func(ctx context.Context, id uint) (domain.Event, error) {
				return domain.Event{}, repository.ErrEventNotFound
			},
		}
		svc := NewAttendanceService(&mockAttendanceRepo{}, events, &mockInstitutionRepo{}, &mockBroadcaster{})

		_, _, _, err := svc.GetEventAttendance(context.Background(), 999, repository.AttendanceFilter{}, 1, 20)

		assert.ErrorIs(t, err, ErrEventNotFound)
	})
}

func TestSubmitAttendance_InstitutionLookupError(t *testing.T) {
	events := &mockEventRepo{
		findBySlugFn: func(ctx context.Context, slug string) (domain.Event, error) {
			return openHouse(), nil
		},
	}
	repo := &mockAttendanceRepo{
		duplicateFn: func(ctx context.Context, eventID uint, guestName, institution string) (bool, error) {
			return false, nil
		},
	}
	institutions := &mockInstitutionRepo{
		findByNameFn: func(ctx context.Context, name string) (domain.Institution, error) {
			return domain.Institution{}, errors.New("connection refused")
		},
	}
	b := &mockBroadcaster{}
	svc := NewAttendanceService(repo, events, institutions, b)

	_, err := svc.SubmitAttendance(context.Background(), "open-house-2026", domain.AttendanceSubmission{
		GuestName:   "Budi Santoso",
		Institution: "SMA Negeri 1",
	})

	require.Error(t, err)
	assert.Empty(t, b.notifications)
}
