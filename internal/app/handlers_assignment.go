package app

import (
	"net/http"
	"time"

	"github.com/ak/nutriplan/internal/domain/models"
	"github.com/ak/nutriplan/internal/domain/services"
	"github.com/gin-gonic/gin"
)

type CreateAssignmentRequest struct {
	TemplateID        int64                     `json:"template_id" binding:"required"`
	UserID            string                    `json:"user_id" binding:"required"`
	TDEE              float64                   `json:"tdee"`
	MacroDistribution *models.MacroDistribution `json:"macro_distribution"`
	StartDate         string                    `json:"start_date"`
	EndDate           string                    `json:"end_date"`
}

// createAssignment runs the full personalization pipeline. The outcome
// body always carries a success flag; a processing failure is a valid
// outcome, not a transport error.
func (a *Application) createAssignment(c *gin.Context) {
	var req CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	startDate, endDate, err := parsePlanDates(req.StartDate, req.EndDate)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	result := a.assignmentService.Assign(c.Request.Context(), services.AssignRequest{
		TemplateID:        req.TemplateID,
		UserID:            req.UserID,
		TDEE:              req.TDEE,
		MacroDistribution: req.MacroDistribution,
		StartDate:         startDate,
		EndDate:           endDate,
	})

	c.JSON(http.StatusOK, result)
}

func parsePlanDates(start, end string) (time.Time, time.Time, error) {
	now := time.Now()
	startDate := now
	endDate := now.AddDate(0, 0, 28)

	var err error
	if start != "" {
		if startDate, err = time.Parse("2006-01-02", start); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if end != "" {
		if endDate, err = time.Parse("2006-01-02", end); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return startDate, endDate, nil
}

func (a *Application) listPlans(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		errorResponse(c, http.StatusBadRequest, "MISSING_PARAM", "user_id is required")
		return
	}

	page, limit := getPagination(c)

	plans, total, err := a.repos.Plan.ListByUser(c.Request.Context(), userID, page, limit)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list plans")
		return
	}

	paginatedResponse(c, plans, page, limit, total)
}

func (a *Application) getPlan(c *gin.Context) {
	planID, ok := getInt64Param(c, "plan_id")
	if !ok {
		return
	}

	plan, err := a.repos.Plan.GetByPlanID(c.Request.Context(), planID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to get plan")
		return
	}
	if plan == nil {
		errorResponse(c, http.StatusNotFound, "NOT_FOUND", "Plan not found")
		return
	}

	successResponse(c, plan)
}
