package engine

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// BalancingRequest is the wire contract of the external macro-balancing
// computation service. Field names are fixed by that service.
type BalancingRequest struct {
	UserID            string        `json:"user_id"`
	TemplateID        int64         `json:"template_id"`
	TDEE              float64       `json:"tdee"`
	MacroDistribution MacroSplit    `json:"macro_distribution"`
	Meals             []MealPayload `json:"meals"`
	StartDate         string        `json:"start_date"`
	EndDate           string        `json:"end_date"`
}

// MacroSplit is the percentage split of daily calories.
type MacroSplit struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

// MealPayload is one meal slot of the request.
type MealPayload struct {
	DayMealID  int             `json:"day_meal_id"`
	Recipes    []RecipePayload `json:"recipes"`
	ProteinPct float64         `json:"protein_pct"`
	CarbsPct   float64         `json:"carbs_pct"`
	FatPct     float64         `json:"fat_pct"`
}

// RecipePayload is one recipe attached to a meal slot.
type RecipePayload struct {
	SourceRowID *int64              `json:"source_row_id,omitempty"`
	RecipeID    int64               `json:"recipe_id"`
	Ingredients []IngredientPayload `json:"ingredients"`
}

// IngredientPayload is one ingredient of a recipe, in grams.
type IngredientPayload struct {
	FoodID int64   `json:"food_id"`
	Grams  float64 `json:"grams"`
}

// ErrInvalidMealID marks a meal target whose id cannot be coerced to a
// positive integer. Construction aborts; a meal is never silently dropped.
var ErrInvalidMealID = errors.New("invalid meal id")

// MealTarget is the builder's per-meal input: the loosely typed meal id
// and the macro percentages for that slot.
type MealTarget struct {
	MealID     any
	ProteinPct *float64
	CarbsPct   *float64
	FatPct     *float64
}

// BuildInput carries everything needed to assemble a BalancingRequest.
type BuildInput struct {
	TemplateID        int64
	UserID            string
	TDEE              float64
	MacroDistribution MacroSplit
	MealTargets       []MealTarget
	RecipesByMeal     map[int][]RecipePayload
	StartDate         string
	EndDate           string
}

// CoerceMealID turns a loosely typed meal id into a positive integer.
func CoerceMealID(v any) (int, error) {
	switch id := v.(type) {
	case int:
		if id > 0 {
			return id, nil
		}
	case int32:
		if id > 0 {
			return int(id), nil
		}
	case int64:
		if id > 0 {
			return int(id), nil
		}
	case float64:
		if id > 0 && id == math.Trunc(id) {
			return int(id), nil
		}
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(id))
		if err == nil && n > 0 {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: %v", ErrInvalidMealID, v)
}

// BuildBalancingRequest assembles the request from resolved meal targets
// and their grouped recipes. An unresolvable meal id is a hard error.
// Missing macro percentages default to 0.
func BuildBalancingRequest(in BuildInput) (*BalancingRequest, error) {
	meals := make([]MealPayload, 0, len(in.MealTargets))
	for _, target := range in.MealTargets {
		mealID, err := CoerceMealID(target.MealID)
		if err != nil {
			return nil, err
		}

		meals = append(meals, MealPayload{
			DayMealID:  mealID,
			Recipes:    in.RecipesByMeal[mealID],
			ProteinPct: pctOrZero(target.ProteinPct),
			CarbsPct:   pctOrZero(target.CarbsPct),
			FatPct:     pctOrZero(target.FatPct),
		})
	}

	return &BalancingRequest{
		UserID:            in.UserID,
		TemplateID:        in.TemplateID,
		TDEE:              in.TDEE,
		MacroDistribution: in.MacroDistribution,
		Meals:             meals,
		StartDate:         in.StartDate,
		EndDate:           in.EndDate,
	}, nil
}

func pctOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// ValidationResult collects every violation found in a payload; the
// first message doubles as the user-facing summary.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors,omitempty"`
}

// ValidateBalancingRequest checks the full contract and returns every
// violation, not just the first. The input is never mutated.
func ValidateBalancingRequest(req *BalancingRequest) ValidationResult {
	var errs []string

	if req == nil {
		return ValidationResult{Errors: []string{"Invalid payload: must be present."}}
	}

	if req.UserID == "" {
		errs = append(errs, "Invalid userId: must be a non-empty string.")
	}
	if !isFinite(req.TDEE) {
		errs = append(errs, "Invalid tdee: must be a finite number.")
	}
	if !isFinite(req.MacroDistribution.Protein) {
		errs = append(errs, "Invalid macroDistribution.protein: must be a finite number.")
	}
	if !isFinite(req.MacroDistribution.Carbs) {
		errs = append(errs, "Invalid macroDistribution.carbs: must be a finite number.")
	}
	if !isFinite(req.MacroDistribution.Fat) {
		errs = append(errs, "Invalid macroDistribution.fat: must be a finite number.")
	}

	if len(req.Meals) == 0 {
		errs = append(errs, "Invalid meals: must be a non-empty array.")
	}

	for i, meal := range req.Meals {
		if meal.DayMealID <= 0 {
			errs = append(errs, fmt.Sprintf("Invalid meals[%d].dayMealId: must be a positive integer.", i))
		}
		if len(meal.Recipes) == 0 {
			errs = append(errs, fmt.Sprintf("Invalid meals[%d].recipes: must be a non-empty array.", i))
		}
		for j, recipe := range meal.Recipes {
			if recipe.RecipeID <= 0 {
				errs = append(errs, fmt.Sprintf("Invalid meals[%d].recipes[%d].recipeId: must be a positive integer.", i, j))
			}
			if len(recipe.Ingredients) == 0 {
				errs = append(errs, fmt.Sprintf("Invalid meals[%d].recipes[%d].ingredients: must be a non-empty array.", i, j))
			}
			for k, ing := range recipe.Ingredients {
				if ing.FoodID <= 0 {
					errs = append(errs, fmt.Sprintf("Invalid meals[%d].recipes[%d].ingredients[%d].foodId: must be a positive integer.", i, j, k))
				}
				if !isFinite(ing.Grams) || ing.Grams <= 0 {
					errs = append(errs, fmt.Sprintf("Invalid meals[%d].recipes[%d].ingredients[%d].grams: must be a finite number greater than 0.", i, j, k))
				}
			}
		}
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
