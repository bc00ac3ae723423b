package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venditio/crm-api/internal/repository"
)

func TestGenerateDealNumber(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNumberSequenceService(repository.NewNumberSequenceRepository(db), testLogger())
	ctx := context.Background()

	date := time.Now().Format("060102")

	first, err := svc.GenerateDealNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("OPP-%s-0001", date), first)

	second, err := svc.GenerateDealNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("OPP-%s-0002", date), second)

	current, err := svc.GetCurrentValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, current)
}

func TestGetCurrentValueWithoutSequence(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNumberSequenceService(repository.NewNumberSequenceRepository(db), testLogger())

	current, err := svc.GetCurrentValue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, current)
}
