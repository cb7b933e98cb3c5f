package app

import (
	"net/http"

	"github.com/ak/nutriplan/internal/domain/engine"
	"github.com/ak/nutriplan/internal/domain/services"
	apperrors "github.com/ak/nutriplan/internal/pkg/errors"
	"github.com/gin-gonic/gin"
)

func (a *Application) listTemplates(c *gin.Context) {
	page, limit := getPagination(c)

	templates, total, err := a.templateService.List(c.Request.Context(), page, limit)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list templates")
		return
	}

	paginatedResponse(c, templates, page, limit, total)
}

func (a *Application) createTemplate(c *gin.Context) {
	var req services.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	existing, _ := a.templateService.GetByID(c.Request.Context(), req.ID)
	if existing != nil {
		apiError(c, apperrors.AlreadyExists("template"))
		return
	}

	template, err := a.templateService.Create(c.Request.Context(), req)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	createdResponse(c, template)
}

func (a *Application) getTemplate(c *gin.Context) {
	id, ok := getInt64Param(c, "id")
	if !ok {
		return
	}

	template, err := a.templateService.GetByID(c.Request.Context(), id)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to get template")
		return
	}
	if template == nil {
		apiError(c, apperrors.NotFound("template"))
		return
	}

	successResponse(c, template)
}

func (a *Application) updateTemplate(c *gin.Context) {
	id, ok := getInt64Param(c, "id")
	if !ok {
		return
	}

	var req services.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	template, err := a.templateService.Update(c.Request.Context(), id, req)
	if err != nil {
		if err.Error() == "template not found" {
			apiError(c, apperrors.NotFound("template"))
			return
		}
		errorResponse(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	successResponse(c, template)
}

func (a *Application) deleteTemplate(c *gin.Context) {
	id, ok := getInt64Param(c, "id")
	if !ok {
		return
	}

	if err := a.templateService.Delete(c.Request.Context(), id); err != nil {
		if err.Error() == "template not found" {
			apiError(c, apperrors.NotFound("template"))
			return
		}
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete template")
		return
	}

	successResponse(c, gin.H{"deleted": true})
}

// previewTemplateMacros aggregates each meal of a stored template
// against the current food catalog without touching any client data.
func (a *Application) previewTemplateMacros(c *gin.Context) {
	id, ok := getInt64Param(c, "id")
	if !ok {
		return
	}

	template, err := a.templateService.GetByID(c.Request.Context(), id)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to get template")
		return
	}
	if template == nil {
		apiError(c, apperrors.NotFound("template"))
		return
	}

	foods, err := a.repos.Food.ListAll(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load food catalog")
		return
	}

	catalog := engine.NewFoodIndex(foods)
	cache := engine.NewMacroCache(0)

	summaries := make([]services.MealMacroSummary, 0, len(template.Meals))
	for _, meal := range template.Meals {
		mealID, err := engine.CoerceMealID(meal.DayMealID)
		if err != nil {
			errorResponse(c, http.StatusUnprocessableEntity, "INVALID_TEMPLATE", err.Error())
			return
		}
		summary := services.MealMacroSummary{DayMealID: mealID}
		for _, recipe := range meal.Recipes {
			totals := engine.AggregateCached(recipe.Ingredients, catalog, cache)
			summary.Totals.Calories += totals.Calories
			summary.Totals.Proteins += totals.Proteins
			summary.Totals.Carbs += totals.Carbs
			summary.Totals.Fats += totals.Fats
		}
		summaries = append(summaries, summary)
	}

	successResponse(c, summaries)
}
