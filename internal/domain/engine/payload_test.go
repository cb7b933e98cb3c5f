package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceMealID(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    int
		wantErr bool
	}{
		{name: "int", input: 3, want: 3},
		{name: "int32", input: int32(4), want: 4},
		{name: "int64", input: int64(5), want: 5},
		{name: "integral float", input: float64(2), want: 2},
		{name: "numeric string", input: "7", want: 7},
		{name: "padded numeric string", input: " 8 ", want: 8},
		{name: "fractional float", input: 2.5, wantErr: true},
		{name: "zero", input: 0, wantErr: true},
		{name: "negative", input: -1, wantErr: true},
		{name: "non-numeric string", input: "breakfast", wantErr: true},
		{name: "nil", input: nil, wantErr: true},
		{name: "bool", input: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoerceMealID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidMealID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func float64Ptr(v float64) *float64 { return &v }

func validBuildInput() BuildInput {
	return BuildInput{
		TemplateID:        42,
		UserID:            "client-1",
		TDEE:              2200,
		MacroDistribution: MacroSplit{Protein: 30, Carbs: 40, Fat: 30},
		MealTargets: []MealTarget{
			{MealID: 1, ProteinPct: float64Ptr(40), CarbsPct: float64Ptr(40), FatPct: float64Ptr(40)},
			{MealID: "2", ProteinPct: float64Ptr(60), CarbsPct: float64Ptr(60), FatPct: float64Ptr(60)},
		},
		RecipesByMeal: map[int][]RecipePayload{
			1: {{RecipeID: 10, Ingredients: []IngredientPayload{{FoodID: 1, Grams: 150}}}},
			2: {{RecipeID: 11, Ingredients: []IngredientPayload{{FoodID: 2, Grams: 85}}}},
		},
		StartDate: "2026-09-01",
		EndDate:   "2026-09-28",
	}
}

func TestBuildBalancingRequest(t *testing.T) {
	req, err := BuildBalancingRequest(validBuildInput())
	require.NoError(t, err)

	assert.Equal(t, "client-1", req.UserID)
	assert.Equal(t, int64(42), req.TemplateID)
	require.Len(t, req.Meals, 2)

	// The string meal id was coerced and its recipes attached.
	assert.Equal(t, 2, req.Meals[1].DayMealID)
	require.Len(t, req.Meals[1].Recipes, 1)
	assert.Equal(t, int64(11), req.Meals[1].Recipes[0].RecipeID)
}

func TestBuildBalancingRequestInvalidMealIDAborts(t *testing.T) {
	in := validBuildInput()
	in.MealTargets = append(in.MealTargets, MealTarget{MealID: "lunch"})

	req, err := BuildBalancingRequest(in)
	assert.Nil(t, req)
	assert.ErrorIs(t, err, ErrInvalidMealID)
}

func TestBuildBalancingRequestMissingPctsDefaultToZero(t *testing.T) {
	in := validBuildInput()
	in.MealTargets = []MealTarget{{MealID: 1}}

	req, err := BuildBalancingRequest(in)
	require.NoError(t, err)
	require.Len(t, req.Meals, 1)
	assert.Zero(t, req.Meals[0].ProteinPct)
	assert.Zero(t, req.Meals[0].CarbsPct)
	assert.Zero(t, req.Meals[0].FatPct)
}

func validRequest() *BalancingRequest {
	return &BalancingRequest{
		UserID:            "client-1",
		TemplateID:        42,
		TDEE:              2200,
		MacroDistribution: MacroSplit{Protein: 30, Carbs: 40, Fat: 30},
		Meals: []MealPayload{
			{
				DayMealID: 1,
				Recipes: []RecipePayload{
					{RecipeID: 10, Ingredients: []IngredientPayload{{FoodID: 1, Grams: 150}}},
				},
				ProteinPct: 40, CarbsPct: 40, FatPct: 40,
			},
		},
		StartDate: "2026-09-01",
		EndDate:   "2026-09-28",
	}
}

func TestValidateBalancingRequestAccepts(t *testing.T) {
	result := ValidateBalancingRequest(validRequest())
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestValidateBalancingRequestEmptyMeals(t *testing.T) {
	req := validRequest()
	req.Meals = nil

	result := ValidateBalancingRequest(req)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "Invalid meals: must be a non-empty array.")
}

func TestValidateBalancingRequestNegativeGrams(t *testing.T) {
	req := validRequest()
	req.Meals[0].Recipes[0].Ingredients[0].Grams = -5

	result := ValidateBalancingRequest(req)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors,
		"Invalid meals[0].recipes[0].ingredients[0].grams: must be a finite number greater than 0.")
}

func TestValidateBalancingRequestCollectsEveryViolation(t *testing.T) {
	req := validRequest()
	req.UserID = ""
	req.TDEE = math.NaN()
	req.Meals[0].DayMealID = 0
	req.Meals[0].Recipes[0].RecipeID = -1
	req.Meals[0].Recipes[0].Ingredients[0].FoodID = 0
	req.Meals[0].Recipes[0].Ingredients[0].Grams = math.Inf(1)

	result := ValidateBalancingRequest(req)
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{
		"Invalid userId: must be a non-empty string.",
		"Invalid tdee: must be a finite number.",
		"Invalid meals[0].dayMealId: must be a positive integer.",
		"Invalid meals[0].recipes[0].recipeId: must be a positive integer.",
		"Invalid meals[0].recipes[0].ingredients[0].foodId: must be a positive integer.",
		"Invalid meals[0].recipes[0].ingredients[0].grams: must be a finite number greater than 0.",
	}, result.Errors)
}

func TestValidateBalancingRequestNilPayload(t *testing.T) {
	result := ValidateBalancingRequest(nil)
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{"Invalid payload: must be present."}, result.Errors)
}
