package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ak/nutriplan/internal/domain/engine"
	"github.com/ak/nutriplan/internal/domain/models"
	"github.com/ak/nutriplan/internal/domain/repositories"
)

// TemplateService handles plan template business logic
type TemplateService interface {
	Create(ctx context.Context, req CreateTemplateRequest) (*models.PlanTemplate, error)
	GetByID(ctx context.Context, id int64) (*models.PlanTemplate, error)
	Update(ctx context.Context, id int64, req UpdateTemplateRequest) (*models.PlanTemplate, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page, limit int) ([]*models.PlanTemplate, int64, error)
	ValidateTemplate(template *models.PlanTemplate) error
}

type CreateTemplateRequest struct {
	ID                int64                    `json:"id" binding:"required"`
	Name              string                   `json:"name" binding:"required"`
	Description       string                   `json:"description"`
	TDEE              float64                  `json:"tdee"`
	MacroDistribution models.MacroDistribution `json:"macro_distribution"`
	Meals             []models.TemplateMeal    `json:"meals"`
	CreatedBy         string                   `json:"created_by"`
}

type UpdateTemplateRequest struct {
	Name              string                    `json:"name"`
	Description       string                    `json:"description"`
	TDEE              *float64                  `json:"tdee"`
	MacroDistribution *models.MacroDistribution `json:"macro_distribution"`
	Meals             []models.TemplateMeal     `json:"meals"`
}

type templateService struct {
	templateRepo repositories.TemplateRepository
}

// NewTemplateService creates a new template service
func NewTemplateService(templateRepo repositories.TemplateRepository) TemplateService {
	return &templateService{templateRepo: templateRepo}
}

func (s *templateService) Create(ctx context.Context, req CreateTemplateRequest) (*models.PlanTemplate, error) {
	template := &models.PlanTemplate{
		ID:                req.ID,
		Name:              req.Name,
		Description:       req.Description,
		TDEE:              req.TDEE,
		MacroDistribution: req.MacroDistribution,
		Meals:             req.Meals,
		CreatedBy:         req.CreatedBy,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}

	if err := s.ValidateTemplate(template); err != nil {
		return nil, err
	}

	if err := s.templateRepo.Create(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return template, nil
}

func (s *templateService) GetByID(ctx context.Context, id int64) (*models.PlanTemplate, error) {
	return s.templateRepo.GetByID(ctx, id)
}

func (s *templateService) Update(ctx context.Context, id int64, req UpdateTemplateRequest) (*models.PlanTemplate, error) {
	template, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, fmt.Errorf("template not found")
	}

	if req.Name != "" {
		template.Name = req.Name
	}
	if req.Description != "" {
		template.Description = req.Description
	}
	if req.TDEE != nil {
		template.TDEE = *req.TDEE
	}
	if req.MacroDistribution != nil {
		template.MacroDistribution = *req.MacroDistribution
	}
	if req.Meals != nil {
		template.Meals = req.Meals
	}
	template.UpdatedAt = time.Now()

	if err := s.ValidateTemplate(template); err != nil {
		return nil, err
	}

	if err := s.templateRepo.Update(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

func (s *templateService) Delete(ctx context.Context, id int64) error {
	template, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if template == nil {
		return fmt.Errorf("template not found")
	}
	return s.templateRepo.Delete(ctx, id)
}

func (s *templateService) List(ctx context.Context, page, limit int) ([]*models.PlanTemplate, int64, error) {
	return s.templateRepo.List(ctx, page, limit)
}

func (s *templateService) ValidateTemplate(template *models.PlanTemplate) error {
	if template.ID <= 0 {
		return fmt.Errorf("template id must be positive")
	}
	if template.Name == "" {
		return fmt.Errorf("template name is required")
	}
	if len(template.Meals) == 0 {
		return fmt.Errorf("template must have at least one meal")
	}

	seen := make(map[int]bool)
	for i, meal := range template.Meals {
		mealID, err := engine.CoerceMealID(meal.DayMealID)
		if err != nil {
			return fmt.Errorf("meal %d: %w", i, err)
		}
		if seen[mealID] {
			return fmt.Errorf("duplicate meal id: %d", mealID)
		}
		seen[mealID] = true

		if len(meal.Recipes) == 0 {
			return fmt.Errorf("meal %d must have at least one recipe", mealID)
		}
		for _, recipe := range meal.Recipes {
			if recipe.RecipeID <= 0 {
				return fmt.Errorf("meal %d has a recipe without a positive id", mealID)
			}
			if len(recipe.Ingredients) == 0 {
				return fmt.Errorf("recipe %d must have at least one ingredient", recipe.RecipeID)
			}
		}

		for _, pct := range []float64{meal.ProteinPct, meal.CarbsPct, meal.FatPct} {
			if pct < 0 || pct > 100 {
				return fmt.Errorf("meal %d has a macro percentage outside 0..100", mealID)
			}
		}
	}
	return nil
}
