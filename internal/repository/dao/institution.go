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
	ErrInstitutionNotFound   = errors.New("institution not found")
	ErrInstitutionNameExists = errors.New("institution already exists")
)

type Institution struct {
	ID uint `gorm:"primaryKey"`

	Name string `gorm:"unique;not null"`
	Type string `gorm:"not null"` // "university", "school", "government", "company", or "other"

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type InstitutionDAO struct {
	db *gorm.DB
}

func NewInstitutionDAO(db *gorm.DB) *InstitutionDAO {
	return &InstitutionDAO{
		db: db,
	}
}

func (d *InstitutionDAO) Insert(ctx context.Context, institution Institution) (Institution, error) {
	result := d.db.WithContext(ctx).Create(&institution)
	if result.Error != nil {
		if isInstitutionNameViolation(result.Error) {
			return Institution{}, ErrInstitutionNameExists
		}

		return Institution{}, result.Error
	}

	return institution, nil
}

func (d *InstitutionDAO) Update(ctx context.Context, institution Institution) (Institution, error) {
	result := d.db.WithContext(ctx).Model(&Institution{ID: institution.ID}).
		Updates(map[string]any{
			"name": institution.Name,
			"type": institution.Type,
		})
	if result.Error != nil {
		if isInstitutionNameViolation(result.Error) {
			return Institution{}, ErrInstitutionNameExists
		}

		return Institution{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Institution{}, ErrInstitutionNotFound
	}

	return d.FindByID(ctx, institution.ID)
}

func (d *InstitutionDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Institution{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInstitutionNotFound
	}

	return nil
}

func (d *InstitutionDAO) FindByID(ctx context.Context, id uint) (Institution, error) {
	var institution Institution

	result := d.db.WithContext(ctx).First(&institution, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Institution{}, ErrInstitutionNotFound
		}

		return Institution{}, result.Error
	}

	return institution, nil
}

// FindByName matches on the normalized name, so a guest typing
// "universitas dumai" still snapshots the managed institution.
func (d *InstitutionDAO) FindByName(ctx context.Context, name string) (Institution, error) {
	var institution Institution

	result := d.db.WithContext(ctx).
		First(&institution, "LOWER(TRIM(name)) = LOWER(TRIM(?))", name)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Institution{}, ErrInstitutionNotFound
		}

		return Institution{}, result.Error
	}

	return institution, nil
}

func (d *InstitutionDAO) FindAll(ctx context.Context) ([]Institution, error) {
	var institutions []Institution

	result := d.db.WithContext(ctx).
		Order("type, name").
		Find(&institutions)
	if result.Error != nil {
		return nil, result.Error
	}

	return institutions, nil
}

func (d *InstitutionDAO) Count(ctx context.Context) (int64, error) {
	var total int64

	result := d.db.WithContext(ctx).Model(&Institution{}).Count(&total)
	if result.Error != nil {
		return 0, result.Error
	}

	return total, nil
}

func isInstitutionNameViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.UniqueViolation &&
		strings.Contains(pgErr.Message, `unique constraint "uni_institutions_name"`)
}
