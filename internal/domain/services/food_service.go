package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ak/nutriplan/internal/domain/models"
	"github.com/ak/nutriplan/internal/domain/repositories"
)

// FoodService handles food catalog business logic
type FoodService interface {
	Create(ctx context.Context, req CreateFoodRequest) (*models.Food, error)
	GetByID(ctx context.Context, id int64, userCreated bool) (*models.Food, error)
	Update(ctx context.Context, id int64, userCreated bool, req UpdateFoodRequest) (*models.Food, error)
	Delete(ctx context.Context, id int64, userCreated bool) error
	List(ctx context.Context, activeOnly bool, page, limit int) ([]*models.Food, int64, error)
	ValidateFood(food *models.Food) error
}

type CreateFoodRequest struct {
	ID             int64              `json:"id" binding:"required"`
	Name           string             `json:"name" binding:"required"`
	Unit           string             `json:"unit"`
	ProteinPer100  float64            `json:"protein_per_100"`
	CarbsPer100    float64            `json:"carbs_per_100"`
	FatPer100      float64            `json:"fat_per_100"`
	SensitivityIDs []int64            `json:"sensitivity_ids"`
	ConditionLinks []RawConditionLink `json:"condition_links"`
	IsUserCreated  bool               `json:"is_user_created"`
	OwnerID        string             `json:"owner_id"`
}

type UpdateFoodRequest struct {
	Name           string             `json:"name"`
	Unit           string             `json:"unit"`
	ProteinPer100  *float64           `json:"protein_per_100"`
	CarbsPer100    *float64           `json:"carbs_per_100"`
	FatPer100      *float64           `json:"fat_per_100"`
	SensitivityIDs []int64            `json:"sensitivity_ids"`
	ConditionLinks []RawConditionLink `json:"condition_links"`
}

// RawConditionLink carries an unnormalized relation string from the API
// or an import; it is mapped to the canonical enum before anything else
// touches it.
type RawConditionLink struct {
	ConditionID int64  `json:"condition_id" binding:"required"`
	Relation    string `json:"relation" binding:"required"`
}

type foodService struct {
	foodRepo repositories.FoodRepository
}

// NewFoodService creates a new food service
func NewFoodService(foodRepo repositories.FoodRepository) FoodService {
	return &foodService{foodRepo: foodRepo}
}

func normalizeConditionLinks(raw []RawConditionLink) ([]models.ConditionLink, error) {
	links := make([]models.ConditionLink, 0, len(raw))
	for _, link := range raw {
		relation, ok := models.NormalizeRelation(link.Relation)
		if !ok {
			return nil, fmt.Errorf("unknown condition relation: %q", link.Relation)
		}
		links = append(links, models.ConditionLink{ConditionID: link.ConditionID, Relation: relation})
	}
	return links, nil
}

func (s *foodService) Create(ctx context.Context, req CreateFoodRequest) (*models.Food, error) {
	links, err := normalizeConditionLinks(req.ConditionLinks)
	if err != nil {
		return nil, err
	}

	food := &models.Food{
		ID:             req.ID,
		Name:           req.Name,
		Unit:           models.NormalizeUnit(req.Unit),
		ProteinPer100:  req.ProteinPer100,
		CarbsPer100:    req.CarbsPer100,
		FatPer100:      req.FatPer100,
		SensitivityIDs: req.SensitivityIDs,
		ConditionLinks: links,
		IsUserCreated:  req.IsUserCreated,
		OwnerID:        req.OwnerID,
		IsActive:       true,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := s.ValidateFood(food); err != nil {
		return nil, err
	}

	if err := s.foodRepo.Create(ctx, food); err != nil {
		return nil, fmt.Errorf("failed to create food: %w", err)
	}
	return food, nil
}

func (s *foodService) GetByID(ctx context.Context, id int64, userCreated bool) (*models.Food, error) {
	return s.foodRepo.GetByID(ctx, id, userCreated)
}

func (s *foodService) Update(ctx context.Context, id int64, userCreated bool, req UpdateFoodRequest) (*models.Food, error) {
	food, err := s.foodRepo.GetByID(ctx, id, userCreated)
	if err != nil {
		return nil, err
	}
	if food == nil {
		return nil, fmt.Errorf("food not found")
	}

	if req.Name != "" {
		food.Name = req.Name
	}
	if req.Unit != "" {
		food.Unit = models.NormalizeUnit(req.Unit)
	}
	if req.ProteinPer100 != nil {
		food.ProteinPer100 = *req.ProteinPer100
	}
	if req.CarbsPer100 != nil {
		food.CarbsPer100 = *req.CarbsPer100
	}
	if req.FatPer100 != nil {
		food.FatPer100 = *req.FatPer100
	}
	if req.SensitivityIDs != nil {
		food.SensitivityIDs = req.SensitivityIDs
	}
	if req.ConditionLinks != nil {
		links, err := normalizeConditionLinks(req.ConditionLinks)
		if err != nil {
			return nil, err
		}
		food.ConditionLinks = links
	}
	food.UpdatedAt = time.Now()

	if err := s.ValidateFood(food); err != nil {
		return nil, err
	}

	if err := s.foodRepo.Update(ctx, food); err != nil {
		return nil, err
	}
	return food, nil
}

func (s *foodService) Delete(ctx context.Context, id int64, userCreated bool) error {
	food, err := s.foodRepo.GetByID(ctx, id, userCreated)
	if err != nil {
		return err
	}
	if food == nil {
		return fmt.Errorf("food not found")
	}
	return s.foodRepo.Delete(ctx, id, userCreated)
}

func (s *foodService) List(ctx context.Context, activeOnly bool, page, limit int) ([]*models.Food, int64, error) {
	return s.foodRepo.List(ctx, activeOnly, page, limit)
}

func (s *foodService) ValidateFood(food *models.Food) error {
	if food.ID <= 0 {
		return fmt.Errorf("food id must be positive")
	}
	if food.Name == "" {
		return fmt.Errorf("food name is required")
	}
	if food.ProteinPer100 < 0 || food.CarbsPer100 < 0 || food.FatPer100 < 0 {
		return fmt.Errorf("macro values must not be negative")
	}
	for _, link := range food.ConditionLinks {
		if link.Relation != models.RelationAvoid && link.Relation != models.RelationRecommend {
			return fmt.Errorf("condition link has unnormalized relation: %q", link.Relation)
		}
	}
	return nil
}
