package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ak/nutriplan/internal/domain/engine"
	"github.com/ak/nutriplan/internal/domain/models"
	"github.com/ak/nutriplan/internal/infrastructure/config"
	"github.com/ak/nutriplan/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(config.LoggingConfig{Level: "error", Format: "console", Output: "stdout"})
	require.NoError(t, err)
	return log
}

// fakeSubstitutionRepo serves canned mappings keyed by source food id.
type fakeSubstitutionRepo struct {
	bySource map[int64][]*models.SubstitutionMapping
	err      error
}

func (f *fakeSubstitutionRepo) Create(ctx context.Context, m *models.SubstitutionMapping) error {
	return nil
}

func (f *fakeSubstitutionRepo) Delete(ctx context.Context, sourceFoodID, targetFoodID int64) error {
	return nil
}

func (f *fakeSubstitutionRepo) ListBySourceFood(ctx context.Context, sourceFoodID int64) ([]*models.SubstitutionMapping, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.bySource[sourceFoodID], nil
}

func (f *fakeSubstitutionRepo) List(ctx context.Context, page, limit int) ([]*models.SubstitutionMapping, int64, error) {
	return nil, 0, nil
}

func int64Ptr(v int64) *int64 { return &v }

func resolverCatalog() engine.FoodIndex {
	return engine.NewFoodIndex([]*models.Food{
		{ID: 1, Name: "Cow Milk", SensitivityIDs: []int64{3}},
		{ID: 2, Name: "Oat Milk"},
		{ID: 4, Name: "Soy Milk", SensitivityIDs: []int64{9}},
	})
}

func TestResolveNonBlockingConflict(t *testing.T) {
	resolver := NewSubstitutionResolver(&fakeSubstitutionRepo{}, testLogger(t))

	profile := &models.RestrictionProfile{PreferredFoodIDs: models.NewIDSet(1)}
	res := resolver.Resolve(context.Background(), &models.Food{ID: 1, Name: "Cow Milk"}, profile, resolverCatalog())

	assert.False(t, res.HasConflict)
	assert.False(t, res.RequiresReview)
	assert.Equal(t, engine.ConflictPreferred, res.Conflict.Type)
	assert.Empty(t, res.Substitutions)
}

func TestResolvePicksAutomaticSubstitution(t *testing.T) {
	repo := &fakeSubstitutionRepo{bySource: map[int64][]*models.SubstitutionMapping{
		1: {
			{SourceFoodID: 1, TargetFoodID: 2, ConfidenceScore: 92, IsAutomatic: true},
			{SourceFoodID: 1, TargetFoodID: 4, ConfidenceScore: 70, IsAutomatic: true},
		},
	}}
	resolver := NewSubstitutionResolver(repo, testLogger(t))

	profile := &models.RestrictionProfile{SensitivityIDs: models.NewIDSet(3)}
	res := resolver.Resolve(context.Background(), &models.Food{ID: 1, Name: "Cow Milk", SensitivityIDs: []int64{3}}, profile, resolverCatalog())

	assert.True(t, res.HasConflict)
	assert.False(t, res.RequiresReview)
	require.NotNil(t, res.AutoSubstitution)
	assert.Equal(t, int64(2), res.AutoSubstitution.TargetFoodID)
	assert.Len(t, res.Substitutions, 2)
}

func TestResolveLowConfidenceRequiresReview(t *testing.T) {
	repo := &fakeSubstitutionRepo{bySource: map[int64][]*models.SubstitutionMapping{
		1: {
			{SourceFoodID: 1, TargetFoodID: 2, ConfidenceScore: 80, IsAutomatic: true},
			{SourceFoodID: 1, TargetFoodID: 2, ConfidenceScore: 95, IsAutomatic: false},
		},
	}}
	resolver := NewSubstitutionResolver(repo, testLogger(t))

	profile := &models.RestrictionProfile{SensitivityIDs: models.NewIDSet(3)}
	res := resolver.Resolve(context.Background(), &models.Food{ID: 1, Name: "Cow Milk", SensitivityIDs: []int64{3}}, profile, resolverCatalog())

	// Candidates exist, but none qualifies for automatic application:
	// one is below the confidence threshold, the other is manual-only.
	assert.True(t, res.HasConflict)
	assert.True(t, res.RequiresReview)
	assert.Nil(t, res.AutoSubstitution)
	assert.Len(t, res.Substitutions, 2)
}

func TestResolveSafetyFilterRejectsConflictingTargets(t *testing.T) {
	repo := &fakeSubstitutionRepo{bySource: map[int64][]*models.SubstitutionMapping{
		1: {
			// Soy milk conflicts with the client's soy sensitivity.
			{SourceFoodID: 1, TargetFoodID: 4, ConfidenceScore: 95, IsAutomatic: true},
			// Food 99 does not exist in the catalog.
			{SourceFoodID: 1, TargetFoodID: 99, ConfidenceScore: 95, IsAutomatic: true},
			{SourceFoodID: 1, TargetFoodID: 2, ConfidenceScore: 90, IsAutomatic: true},
		},
	}}
	resolver := NewSubstitutionResolver(repo, testLogger(t))

	profile := &models.RestrictionProfile{SensitivityIDs: models.NewIDSet(3, 9)}
	res := resolver.Resolve(context.Background(), &models.Food{ID: 1, Name: "Cow Milk", SensitivityIDs: []int64{3}}, profile, resolverCatalog())

	require.Len(t, res.Substitutions, 1)
	assert.Equal(t, int64(2), res.Substitutions[0].TargetFoodID)
	require.NotNil(t, res.AutoSubstitution)
	assert.Equal(t, int64(2), res.AutoSubstitution.TargetFoodID)
}

func TestResolveContextScopedMappings(t *testing.T) {
	repo := &fakeSubstitutionRepo{bySource: map[int64][]*models.SubstitutionMapping{
		1: {
			// Scoped to a different sensitivity: does not apply.
			{SourceFoodID: 1, TargetFoodID: 2, ConfidenceScore: 95, IsAutomatic: true,
				ApplicableContexts: []models.ConflictContext{{SensitivityID: int64Ptr(99)}}},
			// Scoped to the conflicting sensitivity: applies.
			{SourceFoodID: 1, TargetFoodID: 2, ConfidenceScore: 90, IsAutomatic: true,
				ApplicableContexts: []models.ConflictContext{{SensitivityID: int64Ptr(3)}}},
		},
	}}
	resolver := NewSubstitutionResolver(repo, testLogger(t))

	profile := &models.RestrictionProfile{SensitivityIDs: models.NewIDSet(3)}
	res := resolver.Resolve(context.Background(), &models.Food{ID: 1, Name: "Cow Milk", SensitivityIDs: []int64{3}}, profile, resolverCatalog())

	require.Len(t, res.Substitutions, 1)
	assert.Equal(t, 90, res.Substitutions[0].ConfidenceScore)
}

func TestResolveScopedMappingNeverMatchesPreferenceConflicts(t *testing.T) {
	repo := &fakeSubstitutionRepo{bySource: map[int64][]*models.SubstitutionMapping{
		1: {
			{SourceFoodID: 1, TargetFoodID: 2, ConfidenceScore: 95, IsAutomatic: true,
				ApplicableContexts: []models.ConflictContext{{SensitivityID: int64Ptr(3)}}},
		},
	}}
	resolver := NewSubstitutionResolver(repo, testLogger(t))

	// The conflict is a non-preference, not a sensitivity, so the scoped
	// mapping is out of context.
	profile := &models.RestrictionProfile{NonPreferredFoodIDs: models.NewIDSet(1)}
	res := resolver.Resolve(context.Background(), &models.Food{ID: 1, Name: "Cow Milk"}, profile, resolverCatalog())

	assert.True(t, res.HasConflict)
	assert.Empty(t, res.Substitutions)
	assert.True(t, res.RequiresReview)
}

func TestResolveLookupFailureRoutesToReview(t *testing.T) {
	repo := &fakeSubstitutionRepo{err: errors.New("connection reset")}
	resolver := NewSubstitutionResolver(repo, testLogger(t))

	profile := &models.RestrictionProfile{SensitivityIDs: models.NewIDSet(3)}
	res := resolver.Resolve(context.Background(), &models.Food{ID: 1, Name: "Cow Milk", SensitivityIDs: []int64{3}}, profile, resolverCatalog())

	// The conflict is never resolved silently on a failed lookup.
	assert.True(t, res.HasConflict)
	assert.True(t, res.RequiresReview)
	assert.Nil(t, res.AutoSubstitution)
	assert.Empty(t, res.Substitutions)
}
