package engine

import (
	"fmt"
	"strings"

	"github.com/ak/nutriplan/internal/domain/models"
)

// Calories per gram of each macro
const (
	CaloriesPerGramProtein = 4
	CaloriesPerGramCarbs   = 4
	CaloriesPerGramFat     = 9
)

// MacroTotals aggregates an ingredient list. All fields are >= 0 and
// calories are always derived from the macros, never read from food data.
type MacroTotals struct {
	Calories float64 `json:"calories"`
	Proteins float64 `json:"proteins"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

// FoodIndex is the food catalog pre-indexed for aggregation and
// substitution safety checks. Platform and user-created foods share the
// index under distinct keys.
type FoodIndex map[string]*models.Food

// NewFoodIndex builds an index over a catalog snapshot.
func NewFoodIndex(foods []*models.Food) FoodIndex {
	idx := make(FoodIndex, len(foods))
	for _, f := range foods {
		if f == nil {
			continue
		}
		idx[f.CatalogKey()] = f
	}
	return idx
}

// Lookup resolves a food by id. Returns nil when absent.
func (idx FoodIndex) Lookup(id int64, userCreated bool) *models.Food {
	return idx[models.FoodKey(id, userCreated)]
}

// resolveFood prefers the ingredient's embedded food detail and falls
// back to the catalog.
func resolveFood(ing models.Ingredient, catalog FoodIndex) *models.Food {
	if ing.Food != nil {
		return ing.Food
	}
	return catalog.Lookup(ing.FoodID, ing.IsUserCreated)
}

// Aggregate computes total macros for an ingredient list. Ingredients
// with quantity <= 0 or an unresolvable food contribute nothing. Mass
// quantities are grams against per-100g macros; count quantities are
// whole units against per-unit macros.
func Aggregate(ingredients []models.Ingredient, catalog FoodIndex) MacroTotals {
	var totals MacroTotals

	for _, ing := range ingredients {
		if ing.Quantity <= 0 {
			continue
		}
		food := resolveFood(ing, catalog)
		if food == nil {
			continue
		}

		ratio := ing.Quantity
		if unit(ing, food) != models.FoodUnitCount {
			ratio = ing.Quantity / 100
		}

		totals.Proteins += food.ProteinPer100 * ratio
		totals.Carbs += food.CarbsPer100 * ratio
		totals.Fats += food.FatPer100 * ratio
	}

	totals.Proteins = clampNonNegative(totals.Proteins)
	totals.Carbs = clampNonNegative(totals.Carbs)
	totals.Fats = clampNonNegative(totals.Fats)
	totals.Calories = totals.Proteins*CaloriesPerGramProtein +
		totals.Carbs*CaloriesPerGramCarbs +
		totals.Fats*CaloriesPerGramFat

	return totals
}

// AggregateCached memoizes Aggregate through the given cache. The cache
// is keyed by the ingredient list alone, so callers must own one cache
// per catalog snapshot; sharing a cache across catalogs would serve
// stale totals. A nil cache degrades to a plain Aggregate call.
func AggregateCached(ingredients []models.Ingredient, catalog FoodIndex, cache *MacroCache) MacroTotals {
	if cache == nil {
		return Aggregate(ingredients, catalog)
	}

	key := canonicalKey(ingredients)
	if totals, ok := cache.Get(key); ok {
		return totals
	}

	totals := Aggregate(ingredients, catalog)
	cache.Put(key, totals)
	return totals
}

func unit(ing models.Ingredient, food *models.Food) models.FoodUnit {
	if ing.Unit != "" {
		return ing.Unit
	}
	return food.Unit
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// canonicalKey serializes an ingredient list deterministically.
// Identical lists always produce identical keys; nothing ambient ever
// leaks into the key. Embedded food detail takes part in the key because
// aggregation prefers it over the catalog: two lists that differ only in
// embedded macros must never share an entry.
func canonicalKey(ingredients []models.Ingredient) string {
	var b strings.Builder
	for _, ing := range ingredients {
		fmt.Fprintf(&b, "%d|%t:%g:%s", ing.FoodID, ing.IsUserCreated, ing.Quantity, ing.Unit)
		if f := ing.Food; f != nil {
			fmt.Fprintf(&b, "[%d|%t:%g/%g/%g:%s]",
				f.ID, f.IsUserCreated, f.ProteinPer100, f.CarbsPer100, f.FatPer100, f.Unit)
		}
		b.WriteByte(';')
	}
	return b.String()
}
