package repositories

import (
	"github.com/ak/nutriplan/internal/domain/repositories"
	"github.com/ak/nutriplan/internal/infrastructure/database"
)

// Provider holds all repository instances
type Provider struct {
	Food         repositories.FoodRepository
	Preference   repositories.PreferenceRepository
	Template     repositories.TemplateRepository
	Substitution repositories.SubstitutionRepository
	Plan         repositories.PlanRepository
}

// NewProvider creates a new repository provider
func NewProvider(db *database.MongoDB) *Provider {
	return &Provider{
		Food:         NewFoodRepository(db),
		Preference:   NewPreferenceRepository(db),
		Template:     NewTemplateRepository(db),
		Substitution: NewSubstitutionRepository(db),
		Plan:         NewPlanRepository(db),
	}
}
