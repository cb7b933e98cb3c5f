package repositories

import (
	"context"

	"github.com/ak/nutriplan/internal/domain/models"
)

// FoodRepository defines operations for food catalog data access
type FoodRepository interface {
	Create(ctx context.Context, food *models.Food) error
	GetByID(ctx context.Context, id int64, userCreated bool) (*models.Food, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*models.Food, error)
	Update(ctx context.Context, food *models.Food) error
	Delete(ctx context.Context, id int64, userCreated bool) error // Soft delete (set is_active=false)
	List(ctx context.Context, activeOnly bool, page, limit int) ([]*models.Food, int64, error)
	ListAll(ctx context.Context) ([]*models.Food, error) // Full catalog snapshot for the engine
}

// PreferenceRepository defines operations for client preference data access
type PreferenceRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.ClientPreferences, error)
	Upsert(ctx context.Context, prefs *models.ClientPreferences) error
}

// TemplateRepository defines operations for plan template data access
type TemplateRepository interface {
	Create(ctx context.Context, template *models.PlanTemplate) error
	GetByID(ctx context.Context, id int64) (*models.PlanTemplate, error)
	Update(ctx context.Context, template *models.PlanTemplate) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page, limit int) ([]*models.PlanTemplate, int64, error)
}

// SubstitutionRepository defines operations for substitution mapping data access
type SubstitutionRepository interface {
	Create(ctx context.Context, mapping *models.SubstitutionMapping) error
	Delete(ctx context.Context, sourceFoodID, targetFoodID int64) error
	// ListBySourceFood returns mappings ordered by descending confidence score.
	ListBySourceFood(ctx context.Context, sourceFoodID int64) ([]*models.SubstitutionMapping, error)
	List(ctx context.Context, page, limit int) ([]*models.SubstitutionMapping, int64, error)
}

// PlanRepository defines operations for personalized plan data access
type PlanRepository interface {
	Create(ctx context.Context, plan *models.Plan) error
	GetByPlanID(ctx context.Context, planID int64) (*models.Plan, error)
	ListByUser(ctx context.Context, userID string, page, limit int) ([]*models.Plan, int64, error)
}
