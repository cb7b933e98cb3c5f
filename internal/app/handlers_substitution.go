package app

import (
	"net/http"
	"time"

	"github.com/ak/nutriplan/internal/domain/models"
	"github.com/gin-gonic/gin"
)

type CreateSubstitutionRequest struct {
	SourceFoodID       int64                    `json:"source_food_id" binding:"required"`
	TargetFoodID       int64                    `json:"target_food_id" binding:"required"`
	ConfidenceScore    int                      `json:"confidence_score"`
	IsAutomatic        bool                     `json:"is_automatic"`
	ApplicableContexts []models.ConflictContext `json:"applicable_contexts"`
	CreatedBy          string                   `json:"created_by"`
}

func (a *Application) listSubstitutions(c *gin.Context) {
	page, limit := getPagination(c)

	mappings, total, err := a.repos.Substitution.List(c.Request.Context(), page, limit)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list substitutions")
		return
	}

	paginatedResponse(c, mappings, page, limit, total)
}

func (a *Application) createSubstitution(c *gin.Context) {
	var req CreateSubstitutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	if req.SourceFoodID == req.TargetFoodID {
		errorResponse(c, http.StatusBadRequest, "INVALID_INPUT", "A food cannot substitute itself")
		return
	}
	if req.ConfidenceScore < 0 || req.ConfidenceScore > 100 {
		errorResponse(c, http.StatusBadRequest, "INVALID_INPUT", "confidence_score must be between 0 and 100")
		return
	}

	mapping := &models.SubstitutionMapping{
		SourceFoodID:       req.SourceFoodID,
		TargetFoodID:       req.TargetFoodID,
		ConfidenceScore:    req.ConfidenceScore,
		IsAutomatic:        req.IsAutomatic,
		ApplicableContexts: req.ApplicableContexts,
		CreatedBy:          req.CreatedBy,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
	if !mapping.NormalizeContexts() {
		errorResponse(c, http.StatusBadRequest, "INVALID_INPUT", "applicable_contexts contains an unknown relation")
		return
	}

	if err := a.repos.Substitution.Create(c.Request.Context(), mapping); err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create substitution")
		return
	}

	createdResponse(c, mapping)
}

func (a *Application) listSubstitutionsBySource(c *gin.Context) {
	foodID, ok := getInt64Param(c, "food_id")
	if !ok {
		return
	}

	mappings, err := a.repos.Substitution.ListBySourceFood(c.Request.Context(), foodID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list substitutions")
		return
	}

	successResponse(c, mappings)
}

func (a *Application) deleteSubstitution(c *gin.Context) {
	sourceID, ok := getInt64Param(c, "source_id")
	if !ok {
		return
	}
	targetID, ok := getInt64Param(c, "target_id")
	if !ok {
		return
	}

	if err := a.repos.Substitution.Delete(c.Request.Context(), sourceID, targetID); err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete substitution")
		return
	}

	successResponse(c, gin.H{"deleted": true})
}
