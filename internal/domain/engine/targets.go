package engine

import (
	"math"

	"github.com/ak/nutriplan/internal/domain/models"
)

// MealShare is one meal's share of the daily macro budget.
type MealShare struct {
	DayMealID  int
	ProteinPct float64
	CarbsPct   float64
	FatPct     float64
}

// ComputeMealTargets derives per-meal gram targets from the daily
// calorie budget, the macro distribution and each meal's percentages.
// Grams are rounded twice, first at the daily level and again at the
// meal level, and meal calories are derived from the rounded grams
// rather than taken as input.
func ComputeMealTargets(dailyCalories float64, dist MacroSplit, meals []MealShare) []models.MealMacroTarget {
	dailyProteinG := roundInt(dailyCalories * dist.Protein / 100 / CaloriesPerGramProtein)
	dailyCarbsG := roundInt(dailyCalories * dist.Carbs / 100 / CaloriesPerGramCarbs)
	dailyFatG := roundInt(dailyCalories * dist.Fat / 100 / CaloriesPerGramFat)

	targets := make([]models.MealMacroTarget, 0, len(meals))
	for _, meal := range meals {
		proteinG := roundInt(float64(dailyProteinG) * meal.ProteinPct / 100)
		carbsG := roundInt(float64(dailyCarbsG) * meal.CarbsPct / 100)
		fatG := roundInt(float64(dailyFatG) * meal.FatPct / 100)

		targets = append(targets, models.MealMacroTarget{
			DayMealID: meal.DayMealID,
			ProteinG:  proteinG,
			CarbsG:    carbsG,
			FatG:      fatG,
			Calories:  proteinG*CaloriesPerGramProtein + carbsG*CaloriesPerGramCarbs + fatG*CaloriesPerGramFat,
		})
	}
	return targets
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
