package app

import (
	"net/http"
	"strconv"

	"github.com/ak/nutriplan/internal/domain/services"
	apperrors "github.com/ak/nutriplan/internal/pkg/errors"
	"github.com/gin-gonic/gin"
)

// userCreatedFlag reads the query flag that distinguishes the shared
// catalog from a coach's own food entries.
func userCreatedFlag(c *gin.Context) bool {
	flag, _ := strconv.ParseBool(c.DefaultQuery("user_created", "false"))
	return flag
}

func (a *Application) listFoods(c *gin.Context) {
	page, limit := getPagination(c)
	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("active_only", "true"))

	foods, total, err := a.foodService.List(c.Request.Context(), activeOnly, page, limit)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list foods")
		return
	}

	paginatedResponse(c, foods, page, limit, total)
}

func (a *Application) createFood(c *gin.Context) {
	var req services.CreateFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	// Reject a duplicate catalog key up front
	existing, _ := a.foodService.GetByID(c.Request.Context(), req.ID, req.IsUserCreated)
	if existing != nil {
		apiError(c, apperrors.AlreadyExists("food"))
		return
	}

	food, err := a.foodService.Create(c.Request.Context(), req)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	createdResponse(c, food)
}

func (a *Application) getFood(c *gin.Context) {
	id, ok := getInt64Param(c, "id")
	if !ok {
		return
	}

	food, err := a.foodService.GetByID(c.Request.Context(), id, userCreatedFlag(c))
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to get food")
		return
	}
	if food == nil {
		apiError(c, apperrors.NotFound("food"))
		return
	}

	successResponse(c, food)
}

func (a *Application) updateFood(c *gin.Context) {
	id, ok := getInt64Param(c, "id")
	if !ok {
		return
	}

	var req services.UpdateFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	food, err := a.foodService.Update(c.Request.Context(), id, userCreatedFlag(c), req)
	if err != nil {
		if err.Error() == "food not found" {
			apiError(c, apperrors.NotFound("food"))
			return
		}
		errorResponse(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	successResponse(c, food)
}

func (a *Application) deleteFood(c *gin.Context) {
	id, ok := getInt64Param(c, "id")
	if !ok {
		return
	}

	if err := a.foodService.Delete(c.Request.Context(), id, userCreatedFlag(c)); err != nil {
		if err.Error() == "food not found" {
			apiError(c, apperrors.NotFound("food"))
			return
		}
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete food")
		return
	}

	successResponse(c, gin.H{"deleted": true})
}
