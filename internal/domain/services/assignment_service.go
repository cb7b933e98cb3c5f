package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ak/nutriplan/internal/domain/engine"
	"github.com/ak/nutriplan/internal/domain/models"
	"github.com/ak/nutriplan/internal/domain/repositories"
	"github.com/ak/nutriplan/internal/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BalanceResult is the external balancing service's answer.
type BalanceResult struct {
	Success   bool   `json:"success"`
	NewPlanID int64  `json:"new_plan_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BalancerClient dispatches a validated request to the external
// macro-balancing computation.
type BalancerClient interface {
	Invoke(ctx context.Context, req *engine.BalancingRequest) (*BalanceResult, error)
}

// AssignRequest asks for a template to be personalized for a client.
// TDEE and macro distribution override the template defaults when set.
type AssignRequest struct {
	TemplateID        int64
	UserID            string
	TDEE              float64
	MacroDistribution *models.MacroDistribution
	StartDate         time.Time
	EndDate           time.Time
}

// MealMacroSummary reports the aggregated macros of one resolved meal.
type MealMacroSummary struct {
	DayMealID int                `json:"day_meal_id"`
	Totals    engine.MacroTotals `json:"totals"`
}

// AssignmentResult is the uniform outcome of an assignment attempt.
// Failures at any stage land here; the orchestrator never panics or
// leaks collaborator errors in any other shape.
type AssignmentResult struct {
	Success          bool                       `json:"success"`
	PlanID           int64                      `json:"plan_id,omitempty"`
	Error            string                     `json:"error,omitempty"`
	ValidationErrors []string                   `json:"validation_errors,omitempty"`
	Substitutions    []models.SubstitutionAudit `json:"substitutions,omitempty"`
	Conflicts        map[string][]string        `json:"conflicts,omitempty"` // restriction reason -> affected recipes
	MealTargets      []models.MealMacroTarget   `json:"meal_targets,omitempty"`
	MealMacros       []MealMacroSummary         `json:"meal_macros,omitempty"`
}

// AssignmentService turns a template plus a client into a personalized,
// conflict-resolved, macro-targeted plan.
type AssignmentService interface {
	Assign(ctx context.Context, req AssignRequest) *AssignmentResult
}

type assignmentService struct {
	prefs     repositories.PreferenceRepository
	templates repositories.TemplateRepository
	foods     repositories.FoodRepository
	plans     repositories.PlanRepository
	resolver  SubstitutionResolver
	balancer  BalancerClient
	logger    *logger.Logger
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(
	prefs repositories.PreferenceRepository,
	templates repositories.TemplateRepository,
	foods repositories.FoodRepository,
	plans repositories.PlanRepository,
	resolver SubstitutionResolver,
	balancer BalancerClient,
	log *logger.Logger,
) AssignmentService {
	return &assignmentService{
		prefs:     prefs,
		templates: templates,
		foods:     foods,
		plans:     plans,
		resolver:  resolver,
		balancer:  balancer,
		logger:    log.WithComponent("assignment"),
	}
}

func (s *assignmentService) Assign(ctx context.Context, req AssignRequest) *AssignmentResult {
	log := s.logger.WithAssignment(uuid.NewString()).WithUser(req.UserID).WithTemplate(req.TemplateID)
	log.Info("Assignment started")

	// Loading: restriction profile, template and catalog are three
	// independent reads, joined before anything else proceeds.
	var (
		prefs    *models.ClientPreferences
		template *models.PlanTemplate
		catalog  []*models.Food

		prefsErr, templateErr, catalogErr error
	)
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		prefs, prefsErr = s.prefs.GetByUserID(ctx, req.UserID)
	}()
	go func() {
		defer wg.Done()
		template, templateErr = s.templates.GetByID(ctx, req.TemplateID)
	}()
	go func() {
		defer wg.Done()
		catalog, catalogErr = s.foods.ListAll(ctx)
	}()
	wg.Wait()

	if prefsErr != nil {
		return s.failed(log, fmt.Sprintf("failed to load restriction profile: %v", prefsErr))
	}
	if templateErr != nil {
		return s.failed(log, fmt.Sprintf("failed to load plan template: %v", templateErr))
	}
	if catalogErr != nil {
		return s.failed(log, fmt.Sprintf("failed to load food catalog: %v", catalogErr))
	}
	if template == nil {
		return s.failed(log, "plan template not found")
	}

	profile := prefs.RestrictionProfile()
	index := engine.NewFoodIndex(catalog)

	// Resolving: analyze each distinct food once, no matter how many
	// recipes reference it.
	distinct := distinctFoods(template.Meals, index)
	resolutions := s.resolveAll(ctx, distinct, profile, index)

	// Apply automatic substitutions to copies of the template recipes.
	resolvedMeals, audits := applySubstitutions(template.Meals, resolutions, index)
	log.Info("Substitutions resolved",
		zap.Int("distinct_foods", len(distinct)),
		zap.Int("auto_substitutions", len(audits)))

	// Remaining conflicts are recomputed over the resolved recipe set and
	// grouped for manual review.
	conflicts := conflictMap(resolvedMeals, profile, index)

	// BuildingPayload
	tdee := req.TDEE
	if tdee == 0 {
		tdee = template.TDEE
	}
	dist := template.MacroDistribution
	if req.MacroDistribution != nil {
		dist = *req.MacroDistribution
	}
	split := engine.MacroSplit{Protein: dist.Protein, Carbs: dist.Carbs, Fat: dist.Fat}

	mealTargets := make([]engine.MealTarget, 0, len(resolvedMeals))
	shares := make([]engine.MealShare, 0, len(resolvedMeals))
	recipesByMeal := make(map[int][]engine.RecipePayload, len(resolvedMeals))
	for _, meal := range resolvedMeals {
		mealID, err := engine.CoerceMealID(meal.DayMealID)
		if err != nil {
			return s.failed(log, err.Error())
		}
		proteinPct, carbsPct, fatPct := meal.ProteinPct, meal.CarbsPct, meal.FatPct
		mealTargets = append(mealTargets, engine.MealTarget{
			MealID:     meal.DayMealID,
			ProteinPct: &proteinPct,
			CarbsPct:   &carbsPct,
			FatPct:     &fatPct,
		})
		shares = append(shares, engine.MealShare{
			DayMealID:  mealID,
			ProteinPct: proteinPct,
			CarbsPct:   carbsPct,
			FatPct:     fatPct,
		})
		recipesByMeal[mealID] = append(recipesByMeal[mealID], recipePayloads(meal.Recipes)...)
	}

	targets := engine.ComputeMealTargets(tdee, split, shares)
	mealMacros := aggregateMeals(resolvedMeals, index)

	payload, err := engine.BuildBalancingRequest(engine.BuildInput{
		TemplateID:        template.ID,
		UserID:            req.UserID,
		TDEE:              tdee,
		MacroDistribution: split,
		MealTargets:       mealTargets,
		RecipesByMeal:     recipesByMeal,
		StartDate:         req.StartDate.Format("2006-01-02"),
		EndDate:           req.EndDate.Format("2006-01-02"),
	})
	if err != nil {
		return s.failed(log, err.Error())
	}

	// Validating: everything wrong is collected; nothing invalid is dispatched.
	validation := engine.ValidateBalancingRequest(payload)
	if !validation.IsValid {
		result := s.failed(log, validation.Errors[0])
		result.ValidationErrors = validation.Errors
		return result
	}

	// Dispatching: a single attempt, no retry.
	outcome, err := s.balancer.Invoke(ctx, payload)
	if err != nil {
		return s.failed(log, fmt.Sprintf("balancing service dispatch failed: %v", err))
	}
	if !outcome.Success {
		return s.failed(log, outcome.Error)
	}

	plan := &models.Plan{
		PlanID:            outcome.NewPlanID,
		UserID:            req.UserID,
		TemplateID:        template.ID,
		TDEE:              tdee,
		MacroDistribution: dist,
		MealTargets:       targets,
		Substitutions:     audits,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		Status:            models.PlanStatusActive,
	}
	if err := s.plans.Create(ctx, plan); err != nil {
		// The external service already created the plan; the local record
		// is bookkeeping and must not fail the assignment.
		log.Warn("Failed to persist plan record", zap.Error(err))
	}

	log.Info("Assignment succeeded", zap.Int64("plan_id", outcome.NewPlanID))
	return &AssignmentResult{
		Success:       true,
		PlanID:        outcome.NewPlanID,
		Substitutions: audits,
		Conflicts:     conflicts,
		MealTargets:   targets,
		MealMacros:    mealMacros,
	}
}

func (s *assignmentService) failed(log *logger.Logger, msg string) *AssignmentResult {
	log.Warn("Assignment failed", zap.String("reason", msg))
	return &AssignmentResult{Success: false, Error: msg}
}

// resolveAll runs the resolver once per distinct food, concurrently, and
// joins before returning. The distinct map doubles as the per-run memo:
// a food referenced by five recipes triggers one lookup.
func (s *assignmentService) resolveAll(ctx context.Context, foods map[string]*models.Food, profile *models.RestrictionProfile, catalog engine.FoodIndex) map[string]Resolution {
	results := make(map[string]Resolution, len(foods))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for key, food := range foods {
		wg.Add(1)
		go func(key string, food *models.Food) {
			defer wg.Done()
			res := s.resolver.Resolve(ctx, food, profile, catalog)
			mu.Lock()
			results[key] = res
			mu.Unlock()
		}(key, food)
	}
	wg.Wait()
	return results
}

// distinctFoods collects every resolvable food referenced by the
// template, keyed by catalog key.
func distinctFoods(meals []models.TemplateMeal, catalog engine.FoodIndex) map[string]*models.Food {
	foods := make(map[string]*models.Food)
	for _, meal := range meals {
		for _, recipe := range meal.Recipes {
			for _, ing := range recipe.Ingredients {
				food := ing.Food
				if food == nil {
					food = catalog.Lookup(ing.FoodID, ing.IsUserCreated)
				}
				if food == nil {
					continue
				}
				foods[food.CatalogKey()] = food
			}
		}
	}
	return foods
}

// applySubstitutions returns a resolved copy of the meals with every
// automatic substitution applied, plus the audit trail. Source recipes
// are never mutated.
func applySubstitutions(meals []models.TemplateMeal, resolutions map[string]Resolution, catalog engine.FoodIndex) ([]models.TemplateMeal, []models.SubstitutionAudit) {
	resolved := make([]models.TemplateMeal, len(meals))
	var audits []models.SubstitutionAudit

	for i, meal := range meals {
		out := meal
		out.Recipes = make([]models.TemplateRecipe, len(meal.Recipes))
		for j, recipe := range meal.Recipes {
			clone := recipe.Clone()
			for k, ing := range clone.Ingredients {
				food := ing.Food
				if food == nil {
					food = catalog.Lookup(ing.FoodID, ing.IsUserCreated)
				}
				if food == nil {
					continue
				}
				res, ok := resolutions[food.CatalogKey()]
				if !ok || res.AutoSubstitution == nil {
					continue
				}
				target := catalog.Lookup(res.AutoSubstitution.TargetFoodID, false)
				if target == nil {
					continue
				}
				clone.Ingredients[k].FoodID = target.ID
				clone.Ingredients[k].IsUserCreated = target.IsUserCreated
				clone.Ingredients[k].Food = target
				audits = append(audits, models.SubstitutionAudit{
					RecipeID:       recipe.RecipeID,
					RecipeName:     recipe.Name,
					SourceFoodName: food.Name,
					TargetFoodName: target.Name,
				})
			}
			out.Recipes[j] = clone
		}
		resolved[i] = out
	}
	return resolved, audits
}

// conflictMap groups the blocking conflicts remaining after substitution
// by restriction reason, listing each affected recipe once.
func conflictMap(meals []models.TemplateMeal, profile *models.RestrictionProfile, catalog engine.FoodIndex) map[string][]string {
	conflicts := make(map[string][]string)
	seen := make(map[string]map[string]bool)

	for _, meal := range meals {
		for _, recipe := range meal.Recipes {
			for _, ing := range recipe.Ingredients {
				food := ing.Food
				if food == nil {
					food = catalog.Lookup(ing.FoodID, ing.IsUserCreated)
				}
				result := engine.Classify(food, profile)
				if !result.Type.Blocking() {
					continue
				}
				if seen[result.Reason] == nil {
					seen[result.Reason] = make(map[string]bool)
				}
				if seen[result.Reason][recipe.Name] {
					continue
				}
				seen[result.Reason][recipe.Name] = true
				conflicts[result.Reason] = append(conflicts[result.Reason], recipe.Name)
			}
		}
	}
	return conflicts
}

// recipePayloads maps resolved recipes into the wire shape.
func recipePayloads(recipes []models.TemplateRecipe) []engine.RecipePayload {
	out := make([]engine.RecipePayload, 0, len(recipes))
	for _, recipe := range recipes {
		ingredients := make([]engine.IngredientPayload, 0, len(recipe.Ingredients))
		for _, ing := range recipe.Ingredients {
			ingredients = append(ingredients, engine.IngredientPayload{
				FoodID: ing.FoodID,
				Grams:  ing.Quantity,
			})
		}
		out = append(out, engine.RecipePayload{
			SourceRowID: recipe.SourceRowID,
			RecipeID:    recipe.RecipeID,
			Ingredients: ingredients,
		})
	}
	return out
}

// aggregateMeals reports per-meal macro totals over the resolved recipe
// set. The memo cache pays off when the same recipe appears in several
// meal slots.
func aggregateMeals(meals []models.TemplateMeal, catalog engine.FoodIndex) []MealMacroSummary {
	cache := engine.NewMacroCache(engine.DefaultMacroCacheCapacity)
	summaries := make([]MealMacroSummary, 0, len(meals))

	for _, meal := range meals {
		mealID, err := engine.CoerceMealID(meal.DayMealID)
		if err != nil {
			continue
		}
		var totals engine.MacroTotals
		for _, recipe := range meal.Recipes {
			t := engine.AggregateCached(recipe.Ingredients, catalog, cache)
			totals.Calories += t.Calories
			totals.Proteins += t.Proteins
			totals.Carbs += t.Carbs
			totals.Fats += t.Fats
		}
		summaries = append(summaries, MealMacroSummary{DayMealID: mealID, Totals: totals})
	}
	return summaries
}
