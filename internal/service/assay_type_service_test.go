package service

import (
	"context"
	"testing"

	"study-tracker-be/internal/dto"
	"study-tracker-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssayTypeCreate(t *testing.T) {
	f := newFixture(t)
	svc := NewAssayTypeService(f.factory)

	res, err := svc.Create(context.Background(), &dto.CreateAssayTypeRequest{
		Name: "Histology",
		Fields: []dto.AssayTypeFieldRequest{
			{Name: "slides", Type: "INTEGER", Required: true},
			{Name: "stain", DisplayName: "Stain", Type: "STRING"},
		},
		RequiredFields: []string{"protocol", "Protocol"},
		Tasks:          []string{"Section", "Stain", "Scan"},
	})
	require.NoError(t, err)
	assert.Equal(t, "slides", res.Fields[0].DisplayName)
	assert.Equal(t, []string{"protocol"}, res.RequiredFields)
	assert.Equal(t, []string{"Section", "Stain", "Scan"}, res.Tasks)

	shown, err := svc.Show(context.Background(), res.Id)
	require.NoError(t, err)
	assert.Equal(t, res.Fields, shown.Fields)

	_, err = svc.Create(context.Background(), &dto.CreateAssayTypeRequest{Name: "HISTOLOGY"})
	assert.ErrorIs(t, err, entity.ErrDuplicate)
}

func TestAssayTypeCreateRejectsBadFields(t *testing.T) {
	f := newFixture(t)
	svc := NewAssayTypeService(f.factory)

	_, err := svc.Create(context.Background(), &dto.CreateAssayTypeRequest{
		Name:   "Flow",
		Fields: []dto.AssayTypeFieldRequest{{Name: "cells", Type: "INTEGER"}, {Name: "Cells", Type: "FLOAT"}},
	})
	assert.ErrorIs(t, err, entity.ErrValidation)

	_, err = svc.Create(context.Background(), &dto.CreateAssayTypeRequest{
		Name:   "Flow",
		Fields: []dto.AssayTypeFieldRequest{{Name: "cells", Type: "BLOB"}},
	})
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestCollaboratorCreate(t *testing.T) {
	f := newFixture(t)
	svc := NewCollaboratorService(f.factory)

	res, err := svc.Create(context.Background(), &dto.CreateCollaboratorRequest{Name: "Acme Bio", CodePrefix: "acm"})
	require.NoError(t, err)
	assert.Equal(t, "ACM", res.CodePrefix)
	assert.Equal(t, "Acme Bio", res.Label)

	_, err = svc.Create(context.Background(), &dto.CreateCollaboratorRequest{Name: "acme bio", CodePrefix: "ACB"})
	assert.ErrorIs(t, err, entity.ErrDuplicate)

	all, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
