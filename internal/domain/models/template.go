package models

import (
	"time"
)

// Ingredient is the canonical ingredient shape the engine operates on.
// Raw template rows are normalized into this type at the ingress boundary;
// core logic never sees any other shape.
type Ingredient struct {
	FoodID        int64    `bson:"food_id" json:"food_id"`
	IsUserCreated bool     `bson:"is_user_created,omitempty" json:"is_user_created,omitempty"`
	Food          *Food    `bson:"food,omitempty" json:"food,omitempty"` // nested detail, when loaded
	Quantity      float64  `bson:"quantity" json:"quantity"`
	Unit          FoodUnit `bson:"unit" json:"unit"`
}

// RawIngredient covers every ingredient shape found in imported template
// rows: the food may arrive embedded (platform or user-created) or as a
// bare id, and the quantity may be spelled grams or quantity.
type RawIngredient struct {
	Food              *Food    `bson:"food,omitempty"`
	UserCreatedFood   *Food    `bson:"user_created_food,omitempty"`
	FoodID            *int64   `bson:"food_id,omitempty"`
	UserCreatedFoodID *int64   `bson:"user_created_food_id,omitempty"`
	Grams             *float64 `bson:"grams,omitempty"`
	Quantity          *float64 `bson:"quantity,omitempty"`
	Unit              string   `bson:"unit,omitempty"`
}

// Normalize maps a raw row into the canonical Ingredient. The second
// return is false when no food reference is present at all.
func (r RawIngredient) Normalize() (Ingredient, bool) {
	ing := Ingredient{}

	switch {
	case r.Food != nil:
		ing.Food = r.Food
		ing.FoodID = r.Food.ID
		ing.IsUserCreated = r.Food.IsUserCreated
	case r.UserCreatedFood != nil:
		ing.Food = r.UserCreatedFood
		ing.FoodID = r.UserCreatedFood.ID
		ing.IsUserCreated = true
	case r.FoodID != nil:
		ing.FoodID = *r.FoodID
	case r.UserCreatedFoodID != nil:
		ing.FoodID = *r.UserCreatedFoodID
		ing.IsUserCreated = true
	default:
		return Ingredient{}, false
	}

	switch {
	case r.Grams != nil:
		ing.Quantity = *r.Grams
	case r.Quantity != nil:
		ing.Quantity = *r.Quantity
	}

	if r.Unit != "" {
		ing.Unit = NormalizeUnit(r.Unit)
	} else if ing.Food != nil {
		ing.Unit = ing.Food.Unit
	} else {
		ing.Unit = FoodUnitMass
	}

	return ing, true
}

// TemplateRecipe is a recipe row inside a template meal.
type TemplateRecipe struct {
	SourceRowID *int64       `bson:"source_row_id,omitempty" json:"source_row_id,omitempty"`
	RecipeID    int64        `bson:"recipe_id" json:"recipe_id"`
	Name        string       `bson:"name" json:"name"`
	Ingredients []Ingredient `bson:"ingredients" json:"ingredients"`
}

// Clone returns a deep copy. Substitutions are applied to copies only;
// the template's recipes are never mutated.
func (r TemplateRecipe) Clone() TemplateRecipe {
	out := r
	out.Ingredients = make([]Ingredient, len(r.Ingredients))
	copy(out.Ingredients, r.Ingredients)
	return out
}

// TemplateMeal is one meal slot of a template day. The meal id arrives
// loosely typed from imported rows and is coerced when the balancing
// payload is built.
type TemplateMeal struct {
	DayMealID  any              `bson:"day_meal_id" json:"day_meal_id"`
	Name       string           `bson:"name,omitempty" json:"name,omitempty"`
	ProteinPct float64          `bson:"protein_pct" json:"protein_pct"`
	CarbsPct   float64          `bson:"carbs_pct" json:"carbs_pct"`
	FatPct     float64          `bson:"fat_pct" json:"fat_pct"`
	Recipes    []TemplateRecipe `bson:"recipes" json:"recipes"`
}

// MacroDistribution is the percentage split of daily calories.
type MacroDistribution struct {
	Protein float64 `bson:"protein" json:"protein"`
	Carbs   float64 `bson:"carbs" json:"carbs"`
	Fat     float64 `bson:"fat" json:"fat"`
}

// PlanTemplate is a coach-authored diet plan template.
type PlanTemplate struct {
	ID                int64             `bson:"_id" json:"id"`
	Name              string            `bson:"name" json:"name"`
	Description       string            `bson:"description,omitempty" json:"description,omitempty"`
	TDEE              float64           `bson:"tdee,omitempty" json:"tdee,omitempty"`
	MacroDistribution MacroDistribution `bson:"macro_distribution" json:"macro_distribution"`
	Meals             []TemplateMeal    `bson:"meals" json:"meals"`
	CreatedBy         string            `bson:"created_by,omitempty" json:"created_by,omitempty"`
	CreatedAt         time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `bson:"updated_at" json:"updated_at"`
}
