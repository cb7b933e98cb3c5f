package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeMealTargets(t *testing.T) {
	// 2000 kcal at 30/40/30: 150g protein, 200g carbs, 67g fat daily.
	targets := ComputeMealTargets(2000, MacroSplit{Protein: 30, Carbs: 40, Fat: 30}, []MealShare{
		{DayMealID: 1, ProteinPct: 40, CarbsPct: 40, FatPct: 40},
		{DayMealID: 2, ProteinPct: 60, CarbsPct: 60, FatPct: 60},
	})
	require.Len(t, targets, 2)

	assert.Equal(t, 1, targets[0].DayMealID)
	assert.Equal(t, 60, targets[0].ProteinG)
	assert.Equal(t, 80, targets[0].CarbsG)
	assert.Equal(t, 27, targets[0].FatG) // round(67 * 0.4)
	assert.Equal(t, 60*4+80*4+27*9, targets[0].Calories)

	assert.Equal(t, 90, targets[1].ProteinG)
	assert.Equal(t, 120, targets[1].CarbsG)
	assert.Equal(t, 40, targets[1].FatG) // round(67 * 0.6)
}

func TestComputeMealTargetsRoundsDailyGramsFirst(t *testing.T) {
	// Daily grams are rounded before the meal share is applied.
	targets := ComputeMealTargets(1777, MacroSplit{Protein: 35, Carbs: 35, Fat: 30}, []MealShare{
		{DayMealID: 1, ProteinPct: 33, CarbsPct: 33, FatPct: 33},
	})
	require.Len(t, targets, 1)

	// Daily protein: round(1777*0.35/4) = round(155.49) = 155.
	// Meal protein: round(155*0.33) = round(51.15) = 51.
	assert.Equal(t, 51, targets[0].ProteinG)
}

func TestComputeMealTargetsEmptyMeals(t *testing.T) {
	targets := ComputeMealTargets(2000, MacroSplit{Protein: 30, Carbs: 40, Fat: 30}, nil)
	assert.Empty(t, targets)
}
