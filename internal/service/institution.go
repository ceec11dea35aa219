package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/opencampus-id/guestbook-api/internal/domain"
	"github.com/opencampus-id/guestbook-api/internal/repository"
)

var (
	ErrInstitutionNotFound   = repository.ErrInstitutionNotFound
	ErrInstitutionNameExists = repository.ErrInstitutionNameExists
	ErrInstitutionInUse      = errors.New("cannot delete institution that is being used in attendance records")
)

type InstitutionRepository interface {
	Create(ctx context.Context, institution domain.Institution) (domain.Institution, error)
	Update(ctx context.Context, institution domain.Institution) (domain.Institution, error)
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (domain.Institution, error)
	FindAll(ctx context.Context) ([]domain.Institution, error)
}

type InstitutionAttendanceRepository interface {
	CountByInstitutionID(ctx context.Context, institutionID uint) (int64, error)
}

type InstitutionService struct {
	repo           InstitutionRepository
	attendanceRepo InstitutionAttendanceRepository
}

func NewInstitutionService(repo InstitutionRepository, attendanceRepo InstitutionAttendanceRepository) *InstitutionService {
	return &InstitutionService{
		repo:           repo,
		attendanceRepo: attendanceRepo,
	}
}

func (s *InstitutionService) GetInstitutions(ctx context.Context) ([]domain.Institution, error) {
	institutions, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return institutions, nil
}

func (s *InstitutionService) GetInstitution(ctx context.Context, id uint) (domain.Institution, error) {
	institution, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrInstitutionNotFound) {
			return domain.Institution{}, ErrInstitutionNotFound
		}

		return domain.Institution{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return institution, nil
}

func (s *InstitutionService) CreateInstitution(ctx context.Context, institution domain.Institution) (domain.Institution, error) {
	created, err := s.repo.Create(ctx, institution)
	if err != nil {
		if errors.Is(err, repository.ErrInstitutionNameExists) {
			return domain.Institution{}, ErrInstitutionNameExists
		}

		return domain.Institution{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *InstitutionService) UpdateInstitution(ctx context.Context, institution domain.Institution) (domain.Institution, error) {
	updated, err := s.repo.Update(ctx, institution)
	if err != nil {
		if errors.Is(err, repository.ErrInstitutionNotFound) {
			return domain.Institution{}, ErrInstitutionNotFound
		}
		if errors.Is(err, repository.ErrInstitutionNameExists) {
			return domain.Institution{}, ErrInstitutionNameExists
		}

		return domain.Institution{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// DeleteInstitution refuses while any attendance record still references
// the institution. The reference is the id snapshot captured at check-in,
// so renaming the institution does not orphan the protection.
func (s *InstitutionService) DeleteInstitution(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrInstitutionNotFound) {
			return ErrInstitutionNotFound
		}

		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	inUse, err := s.attendanceRepo.CountByInstitutionID(ctx, id)
	if err != nil {
		return fmt.Errorf("s.attendanceRepo.CountByInstitutionID -> %w", err)
	}
	if inUse > 0 {
		return ErrInstitutionInUse
	}

	if err = s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}
