package app

import (
	"net/http"
	"time"

	"github.com/ak/nutriplan/internal/domain/models"
	"github.com/ak/nutriplan/internal/domain/services"
	apperrors "github.com/ak/nutriplan/internal/pkg/errors"
	"github.com/gin-gonic/gin"
)

type UpsertPreferencesRequest struct {
	PreferredFoodIDs    []int64 `json:"preferred_food_ids"`
	NonPreferredFoodIDs []int64 `json:"non_preferred_food_ids"`
	RestrictedFoodIDs   []int64 `json:"restricted_food_ids"`
	SensitivityIDs      []int64 `json:"sensitivity_ids"`
	ConditionIDs        []int64 `json:"condition_ids"`
}

func (a *Application) createClient(c *gin.Context) {
	if a.identityService == nil {
		errorResponse(c, http.StatusServiceUnavailable, "IAM_UNAVAILABLE", "Identity provider is not configured")
		return
	}

	var req services.CreateClientUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	userID, err := a.identityService.CreateClientUser(c.Request.Context(), req)
	if err != nil {
		apiError(c, apperrors.KeycloakError(err))
		return
	}

	createdResponse(c, gin.H{"user_id": userID})
}

func (a *Application) getClientPreferences(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		errorResponse(c, http.StatusBadRequest, "INVALID_ID", "client id is required")
		return
	}

	prefs, err := a.repos.Preference.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to get preferences")
		return
	}
	if prefs == nil {
		// A client without stored preferences has an empty profile,
		// not a missing one.
		prefs = &models.ClientPreferences{UserID: userID}
	}

	successResponse(c, prefs)
}

func (a *Application) upsertClientPreferences(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		errorResponse(c, http.StatusBadRequest, "INVALID_ID", "client id is required")
		return
	}

	var req UpsertPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	prefs := &models.ClientPreferences{
		UserID:              userID,
		PreferredFoodIDs:    req.PreferredFoodIDs,
		NonPreferredFoodIDs: req.NonPreferredFoodIDs,
		RestrictedFoodIDs:   req.RestrictedFoodIDs,
		SensitivityIDs:      req.SensitivityIDs,
		ConditionIDs:        req.ConditionIDs,
		UpdatedAt:           time.Now(),
	}

	if err := a.repos.Preference.Upsert(c.Request.Context(), prefs); err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save preferences")
		return
	}

	successResponse(c, prefs)
}
