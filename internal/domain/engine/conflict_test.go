package engine

import (
	"testing"

	"github.com/ak/nutriplan/internal/domain/models"
	"github.com/stretchr/testify/assert"
)

func TestClassifyPrecedence(t *testing.T) {
	salmon := &models.Food{
		ID:             10,
		Name:           "Salmon",
		SensitivityIDs: []int64{3},
		ConditionLinks: []models.ConditionLink{
			{ConditionID: 7, Relation: models.RelationAvoid},
			{ConditionID: 8, Relation: models.RelationRecommend},
		},
	}

	tests := []struct {
		name     string
		profile  *models.RestrictionProfile
		wantType ConflictType
		wantRef  int64
	}{
		{
			name: "preferred wins over everything",
			profile: &models.RestrictionProfile{
				PreferredFoodIDs:             models.NewIDSet(10),
				NonPreferredFoodIDs:          models.NewIDSet(10),
				IndividualRestrictionFoodIDs: models.NewIDSet(10),
				SensitivityIDs:               models.NewIDSet(3),
				ConditionIDs:                 models.NewIDSet(7, 8),
			},
			wantType: ConflictPreferred,
		},
		{
			name: "non-preferred wins over sensitivity",
			profile: &models.RestrictionProfile{
				NonPreferredFoodIDs: models.NewIDSet(10),
				SensitivityIDs:      models.NewIDSet(3),
			},
			wantType: ConflictNonPreferred,
		},
		{
			name: "individual restriction wins over sensitivity",
			profile: &models.RestrictionProfile{
				IndividualRestrictionFoodIDs: models.NewIDSet(10),
				SensitivityIDs:               models.NewIDSet(3),
			},
			wantType: ConflictIndividualRestriction,
		},
		{
			name: "sensitivity wins over condition avoid",
			profile: &models.RestrictionProfile{
				SensitivityIDs: models.NewIDSet(3),
				ConditionIDs:   models.NewIDSet(7),
			},
			wantType: ConflictSensitivity,
			wantRef:  3,
		},
		{
			name: "condition avoid wins over condition recommend",
			profile: &models.RestrictionProfile{
				ConditionIDs: models.NewIDSet(7, 8),
			},
			wantType: ConflictConditionAvoid,
			wantRef:  7,
		},
		{
			name: "condition recommend stands alone",
			profile: &models.RestrictionProfile{
				ConditionIDs: models.NewIDSet(8),
			},
			wantType: ConflictConditionRecommend,
			wantRef:  8,
		},
		{
			name:     "no overlap classifies as none",
			profile:  &models.RestrictionProfile{ConditionIDs: models.NewIDSet(99)},
			wantType: ConflictNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(salmon, tt.profile)
			assert.Equal(t, tt.wantType, result.Type)
			assert.Equal(t, tt.wantRef, result.RefID)
			if tt.wantType != ConflictNone {
				assert.NotEmpty(t, result.Reason)
			}
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	food := &models.Food{ID: 5, Name: "Eggs", SensitivityIDs: []int64{1}}
	profile := &models.RestrictionProfile{
		NonPreferredFoodIDs: models.NewIDSet(5),
		SensitivityIDs:      models.NewIDSet(1),
	}

	first := Classify(food, profile)
	second := Classify(food, profile)
	assert.Equal(t, first, second)
	assert.Equal(t, ConflictNonPreferred, first.Type)
}

func TestClassifyNilInputs(t *testing.T) {
	profile := &models.RestrictionProfile{PreferredFoodIDs: models.NewIDSet(1)}

	assert.Equal(t, ConflictNone, Classify(nil, profile).Type)
	assert.Equal(t, ConflictNone, Classify(&models.Food{ID: 1}, nil).Type)

	// Empty profile never conflicts.
	empty := &models.RestrictionProfile{}
	food := &models.Food{
		ID:             1,
		SensitivityIDs: []int64{2},
		ConditionLinks: []models.ConditionLink{{ConditionID: 3, Relation: models.RelationAvoid}},
	}
	assert.Equal(t, ConflictNone, Classify(food, empty).Type)
}

func TestConflictTypeBlocking(t *testing.T) {
	assert.False(t, ConflictNone.Blocking())
	assert.False(t, ConflictPreferred.Blocking())
	assert.False(t, ConflictConditionRecommend.Blocking())

	assert.True(t, ConflictNonPreferred.Blocking())
	assert.True(t, ConflictIndividualRestriction.Blocking())
	assert.True(t, ConflictSensitivity.Blocking())
	assert.True(t, ConflictConditionAvoid.Blocking())
}
