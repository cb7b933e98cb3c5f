package services

import (
	"context"

	"github.com/ak/nutriplan/internal/domain/engine"
	"github.com/ak/nutriplan/internal/domain/models"
	"github.com/ak/nutriplan/internal/domain/repositories"
	"github.com/ak/nutriplan/internal/pkg/logger"
	"go.uber.org/zap"
)

// AutoSubstitutionConfidenceThreshold is the minimum confidence score a
// mapping needs to be applied without manual review.
const AutoSubstitutionConfidenceThreshold = 85

// Resolution is the outcome of analyzing one food against one profile.
// When a blocking conflict has no acceptable automatic substitution,
// RequiresReview is set and the caller surfaces it for manual handling.
type Resolution struct {
	HasConflict      bool                          `json:"has_conflict"`
	Conflict         engine.ConflictResult         `json:"conflict,omitempty"`
	Substitutions    []*models.SubstitutionMapping `json:"substitutions,omitempty"`
	AutoSubstitution *models.SubstitutionMapping   `json:"auto_substitution,omitempty"`
	RequiresReview   bool                          `json:"requires_review"`
}

// SubstitutionResolver finds safe replacement foods for conflicting ingredients
type SubstitutionResolver interface {
	Resolve(ctx context.Context, food *models.Food, profile *models.RestrictionProfile, catalog engine.FoodIndex) Resolution
}

type substitutionResolver struct {
	mappings repositories.SubstitutionRepository
	logger   *logger.Logger
}

// NewSubstitutionResolver creates a new substitution resolver
func NewSubstitutionResolver(mappings repositories.SubstitutionRepository, log *logger.Logger) SubstitutionResolver {
	return &substitutionResolver{
		mappings: mappings,
		logger:   log.WithComponent("substitution_resolver"),
	}
}

// Resolve classifies the food and, for blocking conflicts, assembles the
// safety-filtered substitution candidates. A failed mapping lookup never
// resolves a conflict silently: the food stays conflicting and is routed
// to manual review with no candidates.
func (r *substitutionResolver) Resolve(ctx context.Context, food *models.Food, profile *models.RestrictionProfile, catalog engine.FoodIndex) Resolution {
	conflict := engine.Classify(food, profile)
	if !conflict.Type.Blocking() {
		return Resolution{HasConflict: false, Conflict: conflict}
	}

	res := Resolution{HasConflict: true, Conflict: conflict}

	mappings, err := r.mappings.ListBySourceFood(ctx, food.ID)
	if err != nil {
		r.logger.Warn("Substitution mapping lookup failed, routing to manual review",
			zap.Int64("food_id", food.ID),
			zap.Error(err))
		res.RequiresReview = true
		return res
	}

	// Mappings arrive ordered by descending confidence; order is preserved
	// so the first qualifying candidate is also the most confident one.
	for _, mapping := range mappings {
		if !contextApplies(mapping, conflict) {
			continue
		}

		// Safety filter: a target that would itself conflict is never
		// offered, even for manual review.
		target := catalog.Lookup(mapping.TargetFoodID, false)
		if target == nil {
			continue
		}
		if engine.Classify(target, profile).Type.Blocking() {
			continue
		}

		res.Substitutions = append(res.Substitutions, mapping)
		if res.AutoSubstitution == nil && mapping.IsAutomatic && mapping.ConfidenceScore >= AutoSubstitutionConfidenceThreshold {
			res.AutoSubstitution = mapping
		}
	}

	if res.AutoSubstitution == nil {
		res.RequiresReview = true
	}
	return res
}

// contextApplies checks whether a mapping is scoped to the conflict that
// was found. Context-free mappings apply to any conflict on the source
// food; scoped mappings only to the matching sensitivity or
// (condition, relation) pair.
func contextApplies(mapping *models.SubstitutionMapping, conflict engine.ConflictResult) bool {
	if len(mapping.ApplicableContexts) == 0 {
		return true
	}
	for _, cc := range mapping.ApplicableContexts {
		switch conflict.Type {
		case engine.ConflictSensitivity:
			if cc.SensitivityID != nil && *cc.SensitivityID == conflict.RefID {
				return true
			}
		case engine.ConflictConditionAvoid:
			if cc.ConditionID != nil && *cc.ConditionID == conflict.RefID && cc.Relation == models.RelationAvoid {
				return true
			}
		}
	}
	return false
}
