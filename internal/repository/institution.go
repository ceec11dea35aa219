package repository

import (
	"context"
	"fmt"

	"github.com/opencampus-id/guestbook-api/internal/domain"
	"github.com/opencampus-id/guestbook-api/internal/repository/dao"
)

var (
	ErrInstitutionNotFound   = dao.ErrInstitutionNotFound
	ErrInstitutionNameExists = dao.ErrInstitutionNameExists
)

type InstitutionDAO interface {
	Insert(ctx context.Context, institution dao.Institution) (dao.Institution, error)
	Update(ctx context.Context, institution dao.Institution) (dao.Institution, error)
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (dao.Institution, error)
	FindByName(ctx context.Context, name string) (dao.Institution, error)
	FindAll(ctx context.Context) ([]dao.Institution, error)
	Count(ctx context.Context) (int64, error)
}

type InstitutionRepository struct {
	dao InstitutionDAO
}

func NewInstitutionRepository(dao InstitutionDAO) *InstitutionRepository {
	return &InstitutionRepository{
		dao: dao,
	}
}

func (r *InstitutionRepository) Create(ctx context.Context, institution domain.Institution) (domain.Institution, error) {
	created, err := r.dao.Insert(ctx, dao.Institution{
		Name: institution.Name,
		Type: institution.Type,
	})
	if err != nil {
		return domain.Institution{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *InstitutionRepository) Update(ctx context.Context, institution domain.Institution) (domain.Institution, error) {
	updated, err := r.dao.Update(ctx, dao.Institution{
		ID:   institution.ID,
		Name: institution.Name,
		Type: institution.Type,
	})
	if err != nil {
		return domain.Institution{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *InstitutionRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *InstitutionRepository) FindByID(ctx context.Context, id uint) (domain.Institution, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Institution{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *InstitutionRepository) FindByName(ctx context.Context, name string) (domain.Institution, error) {
	found, err := r.dao.FindByName(ctx, name)
	if err != nil {
		return domain.Institution{}, fmt.Errorf("r.dao.FindByName -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *InstitutionRepository) FindAll(ctx context.Context) ([]domain.Institution, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	institutions := make([]domain.Institution, 0, len(found))
	for _, i := range found {
		institutions = append(institutions, r.daoToDomain(i))
	}

	return institutions, nil
}

func (r *InstitutionRepository) Count(ctx context.Context) (int64, error) {
	total, err := r.dao.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("r.dao.Count -> %w", err)
	}

	return total, nil
}

func (r *InstitutionRepository) daoToDomain(i dao.Institution) domain.Institution {
	return domain.Institution{
		ID:        i.ID,
		Name:      i.Name,
		Type:      i.Type,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}
