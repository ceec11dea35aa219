package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencampus-id/guestbook-api/internal/domain"
	"github.com/opencampus-id/guestbook-api/internal/repository"
)

type mockInstitutionStore struct {
	InstitutionRepository

	institutions map[uint]domain.Institution
	deleted      []uint
}

func (m *mockInstitutionStore) FindByID(ctx context.Context, id uint) (domain.Institution, error) {
	institution, ok := m.institutions[id]
	if !ok {
		return domain.Institution{}, repository.ErrInstitutionNotFound
	}

	return institution, nil
}

func (m *mockInstitutionStore) Delete(ctx context.Context, id uint) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type mockInstitutionUsage struct {
	counts map[uint]int64
}

func (m *mockInstitutionUsage) CountByInstitutionID(ctx context.Context, institutionID uint) (int64, error) {
	return m.counts[institutionID], nil
}

func TestDeleteInstitution(t *testing.T) {
	store := &mockInstitutionStore{
		institutions: map[uint]domain.Institution{
			1: {ID: 1, Name: "Universitas Indonesia", Type: domain.InstitutionUniversity},
			2: {ID: 2, Name: "SMA Negeri 1", Type: domain.InstitutionSchool},
		},
	}
	usage := &mockInstitutionUsage{counts: map[uint]int64{1: 3}}
	svc := NewInstitutionService(store, usage)

	t.Run("refused while referenced by attendance records", func(t *testing.T) {
		err := svc.DeleteInstitution(context.Background(), 1)

		assert.ErrorIs(t, err, ErrInstitutionInUse)
		assert.Empty(t, store.deleted)
	})

	t.Run("unreferenced institution is deleted", func(t *testing.T) {
		err := svc.DeleteInstitution(context.Background(), 2)

		require.NoError(t, err)
		assert.Equal(t, []uint{2}, store.deleted)
	})

	t.Run("unknown institution", func(t *testing.T) {
		err := svc.DeleteInstitution(context.Background(), 999)

		assert.ErrorIs(t, err, ErrInstitutionNotFound)
	})
}
