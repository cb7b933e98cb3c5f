package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanStatus tracks the lifecycle of a personalized plan record.
type PlanStatus string

const (
	PlanStatusActive   PlanStatus = "active"
	PlanStatusArchived PlanStatus = "archived"
)

// SubstitutionAudit records one automatic ingredient replacement made
// while personalizing a template for a client.
type SubstitutionAudit struct {
	RecipeID       int64  `bson:"recipe_id" json:"recipe_id"`
	RecipeName     string `bson:"recipe_name" json:"recipe_name"`
	SourceFoodName string `bson:"source_food_name" json:"source_food_name"`
	TargetFoodName string `bson:"target_food_name" json:"target_food_name"`
}

// MealMacroTarget is the per-meal gram/calorie target derived from the
// daily calorie budget, the macro distribution and the meal percentages.
type MealMacroTarget struct {
	DayMealID int `bson:"day_meal_id" json:"day_meal_id"`
	ProteinG  int `bson:"protein_g" json:"protein_g"`
	CarbsG    int `bson:"carbs_g" json:"carbs_g"`
	FatG      int `bson:"fat_g" json:"fat_g"`
	Calories  int `bson:"calories" json:"calories"`
}

// Plan is the persisted record of a successful assignment.
type Plan struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	PlanID            int64               `bson:"plan_id" json:"plan_id"` // id returned by the balancing service
	UserID            string              `bson:"user_id" json:"user_id"`
	TemplateID        int64               `bson:"template_id" json:"template_id"`
	TDEE              float64             `bson:"tdee" json:"tdee"`
	MacroDistribution MacroDistribution   `bson:"macro_distribution" json:"macro_distribution"`
	MealTargets       []MealMacroTarget   `bson:"meal_targets,omitempty" json:"meal_targets,omitempty"`
	Substitutions     []SubstitutionAudit `bson:"substitutions,omitempty" json:"substitutions,omitempty"`
	StartDate         time.Time           `bson:"start_date" json:"start_date"`
	EndDate           time.Time           `bson:"end_date" json:"end_date"`
	Status            PlanStatus          `bson:"status" json:"status"`
	CreatedAt         time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time           `bson:"updated_at" json:"updated_at"`
}
