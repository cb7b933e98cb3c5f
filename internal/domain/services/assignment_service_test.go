package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ak/nutriplan/internal/domain/engine"
	"github.com/ak/nutriplan/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePreferenceRepo struct {
	prefs *models.ClientPreferences
	err   error
}

func (f *fakePreferenceRepo) GetByUserID(ctx context.Context, userID string) (*models.ClientPreferences, error) {
	return f.prefs, f.err
}

func (f *fakePreferenceRepo) Upsert(ctx context.Context, prefs *models.ClientPreferences) error {
	return nil
}

type fakeTemplateRepo struct {
	template *models.PlanTemplate
	err      error
}

func (f *fakeTemplateRepo) Create(ctx context.Context, t *models.PlanTemplate) error { return nil }
func (f *fakeTemplateRepo) GetByID(ctx context.Context, id int64) (*models.PlanTemplate, error) {
	return f.template, f.err
}
func (f *fakeTemplateRepo) Update(ctx context.Context, t *models.PlanTemplate) error { return nil }
func (f *fakeTemplateRepo) Delete(ctx context.Context, id int64) error               { return nil }
func (f *fakeTemplateRepo) List(ctx context.Context, page, limit int) ([]*models.PlanTemplate, int64, error) {
	return nil, 0, nil
}

type fakeFoodRepo struct {
	catalog []*models.Food
	err     error
}

func (f *fakeFoodRepo) Create(ctx context.Context, food *models.Food) error { return nil }
func (f *fakeFoodRepo) GetByID(ctx context.Context, id int64, userCreated bool) (*models.Food, error) {
	return nil, nil
}
func (f *fakeFoodRepo) GetByIDs(ctx context.Context, ids []int64) ([]*models.Food, error) {
	return nil, nil
}
func (f *fakeFoodRepo) Update(ctx context.Context, food *models.Food) error          { return nil }
func (f *fakeFoodRepo) Delete(ctx context.Context, id int64, userCreated bool) error { return nil }
func (f *fakeFoodRepo) List(ctx context.Context, activeOnly bool, page, limit int) ([]*models.Food, int64, error) {
	return nil, 0, nil
}
func (f *fakeFoodRepo) ListAll(ctx context.Context) ([]*models.Food, error) {
	return f.catalog, f.err
}

type fakePlanRepo struct {
	created *models.Plan
	err     error
}

func (f *fakePlanRepo) Create(ctx context.Context, plan *models.Plan) error {
	f.created = plan
	return f.err
}
func (f *fakePlanRepo) GetByPlanID(ctx context.Context, planID int64) (*models.Plan, error) {
	return nil, nil
}
func (f *fakePlanRepo) ListByUser(ctx context.Context, userID string, page, limit int) ([]*models.Plan, int64, error) {
	return nil, 0, nil
}

type fakeBalancer struct {
	request *engine.BalancingRequest
	result  *BalanceResult
	err     error
}

func (f *fakeBalancer) Invoke(ctx context.Context, req *engine.BalancingRequest) (*BalanceResult, error) {
	f.request = req
	return f.result, f.err
}

func assignmentCatalog() []*models.Food {
	return []*models.Food{
		{ID: 1, Name: "Cow Milk", Unit: models.FoodUnitMass, ProteinPer100: 3.4, CarbsPer100: 5, FatPer100: 3.6, SensitivityIDs: []int64{3}},
		{ID: 2, Name: "Oat Milk", Unit: models.FoodUnitMass, ProteinPer100: 1, CarbsPer100: 7, FatPer100: 1.5},
		{ID: 5, Name: "Chicken Breast", Unit: models.FoodUnitMass, ProteinPer100: 20, FatPer100: 5},
	}
}

func assignmentTemplate() *models.PlanTemplate {
	return &models.PlanTemplate{
		ID:                42,
		Name:              "Cutting block",
		TDEE:              2000,
		MacroDistribution: models.MacroDistribution{Protein: 30, Carbs: 40, Fat: 30},
		Meals: []models.TemplateMeal{
			{
				DayMealID: 1, Name: "Breakfast",
				ProteinPct: 40, CarbsPct: 40, FatPct: 40,
				Recipes: []models.TemplateRecipe{
					{RecipeID: 10, Name: "Porridge", Ingredients: []models.Ingredient{
						{FoodID: 1, Quantity: 200},
					}},
				},
			},
			{
				DayMealID: "2", Name: "Lunch",
				ProteinPct: 60, CarbsPct: 60, FatPct: 60,
				Recipes: []models.TemplateRecipe{
					{RecipeID: 11, Name: "Grilled chicken", Ingredients: []models.Ingredient{
						{FoodID: 5, Quantity: 150},
					}},
				},
			},
		},
	}
}

func newTestAssignmentService(t *testing.T, templates *fakeTemplateRepo, prefs *fakePreferenceRepo, foods *fakeFoodRepo, plans *fakePlanRepo, subs *fakeSubstitutionRepo, balancer *fakeBalancer) AssignmentService {
	t.Helper()
	log := testLogger(t)
	resolver := NewSubstitutionResolver(subs, log)
	return NewAssignmentService(prefs, templates, foods, plans, resolver, balancer, log)
}

func assignReq() AssignRequest {
	return AssignRequest{
		TemplateID: 42,
		UserID:     "client-1",
		StartDate:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 9, 28, 0, 0, 0, 0, time.UTC),
	}
}

func TestAssignAppliesAutomaticSubstitution(t *testing.T) {
	prefs := &fakePreferenceRepo{prefs: &models.ClientPreferences{
		UserID:         "client-1",
		SensitivityIDs: []int64{3},
	}}
	subs := &fakeSubstitutionRepo{bySource: map[int64][]*models.SubstitutionMapping{
		1: {{SourceFoodID: 1, TargetFoodID: 2, ConfidenceScore: 92, IsAutomatic: true}},
	}}
	plans := &fakePlanRepo{}
	balancer := &fakeBalancer{result: &BalanceResult{Success: true, NewPlanID: 777}}

	svc := newTestAssignmentService(t,
		&fakeTemplateRepo{template: assignmentTemplate()},
		prefs,
		&fakeFoodRepo{catalog: assignmentCatalog()},
		plans, subs, balancer)

	result := svc.Assign(context.Background(), assignReq())

	require.True(t, result.Success, "assignment should succeed: %s", result.Error)
	assert.Equal(t, int64(777), result.PlanID)

	// The conflicting milk was swapped and audited.
	require.Len(t, result.Substitutions, 1)
	assert.Equal(t, "Porridge", result.Substitutions[0].RecipeName)
	assert.Equal(t, "Cow Milk", result.Substitutions[0].SourceFoodName)
	assert.Equal(t, "Oat Milk", result.Substitutions[0].TargetFoodName)
	assert.Empty(t, result.Conflicts)

	// The dispatched payload carries the substituted food id.
	require.NotNil(t, balancer.request)
	require.Len(t, balancer.request.Meals, 2)
	assert.Equal(t, int64(2), balancer.request.Meals[0].Recipes[0].Ingredients[0].FoodID)
	assert.Equal(t, "2026-09-01", balancer.request.StartDate)

	// The plan record was persisted with the externally issued id.
	require.NotNil(t, plans.created)
	assert.Equal(t, int64(777), plans.created.PlanID)
	assert.Equal(t, models.PlanStatusActive, plans.created.Status)
	assert.Len(t, plans.created.MealTargets, 2)
}

func TestAssignComputesMealTargets(t *testing.T) {
	balancer := &fakeBalancer{result: &BalanceResult{Success: true, NewPlanID: 1}}
	svc := newTestAssignmentService(t,
		&fakeTemplateRepo{template: assignmentTemplate()},
		&fakePreferenceRepo{},
		&fakeFoodRepo{catalog: assignmentCatalog()},
		&fakePlanRepo{}, &fakeSubstitutionRepo{}, balancer)

	result := svc.Assign(context.Background(), assignReq())
	require.True(t, result.Success, result.Error)

	// 2000 kcal at 30/40/30: 150g protein, 200g carbs, 67g fat daily.
	require.Len(t, result.MealTargets, 2)
	assert.Equal(t, 60, result.MealTargets[0].ProteinG)
	assert.Equal(t, 80, result.MealTargets[0].CarbsG)
	assert.Equal(t, 27, result.MealTargets[0].FatG)

	require.Len(t, result.MealMacros, 2)
	// 150g of chicken at 20g protein per 100g.
	assert.InDelta(t, 30.0, result.MealMacros[1].Totals.Proteins, 1e-9)
}

func TestAssignReportsUnresolvedConflicts(t *testing.T) {
	prefs := &fakePreferenceRepo{prefs: &models.ClientPreferences{
		UserID:         "client-1",
		SensitivityIDs: []int64{3},
	}}
	// No substitution mappings: the conflict stays and is reported.
	balancer := &fakeBalancer{result: &BalanceResult{Success: true, NewPlanID: 5}}
	svc := newTestAssignmentService(t,
		&fakeTemplateRepo{template: assignmentTemplate()},
		prefs,
		&fakeFoodRepo{catalog: assignmentCatalog()},
		&fakePlanRepo{}, &fakeSubstitutionRepo{}, balancer)

	result := svc.Assign(context.Background(), assignReq())
	require.True(t, result.Success, result.Error)
	assert.Empty(t, result.Substitutions)

	recipes, ok := result.Conflicts["Cow Milk is linked to sensitivity 3"]
	require.True(t, ok, "expected the sensitivity conflict to be reported: %v", result.Conflicts)
	assert.Equal(t, []string{"Porridge"}, recipes)
}

func TestAssignTemplateNotFound(t *testing.T) {
	svc := newTestAssignmentService(t,
		&fakeTemplateRepo{},
		&fakePreferenceRepo{},
		&fakeFoodRepo{catalog: assignmentCatalog()},
		&fakePlanRepo{}, &fakeSubstitutionRepo{}, &fakeBalancer{})

	result := svc.Assign(context.Background(), assignReq())
	assert.False(t, result.Success)
	assert.Equal(t, "plan template not found", result.Error)
}

func TestAssignValidationFailureIsNotDispatched(t *testing.T) {
	template := assignmentTemplate()
	template.Meals[0].Recipes[0].Ingredients = nil

	balancer := &fakeBalancer{result: &BalanceResult{Success: true}}
	svc := newTestAssignmentService(t,
		&fakeTemplateRepo{template: template},
		&fakePreferenceRepo{},
		&fakeFoodRepo{catalog: assignmentCatalog()},
		&fakePlanRepo{}, &fakeSubstitutionRepo{}, balancer)

	result := svc.Assign(context.Background(), assignReq())

	assert.False(t, result.Success)
	assert.Contains(t, result.ValidationErrors,
		"Invalid meals[0].recipes[0].ingredients: must be a non-empty array.")
	assert.Equal(t, result.ValidationErrors[0], result.Error)
	assert.Nil(t, balancer.request, "invalid payloads must never be dispatched")
}

func TestAssignDispatchFailure(t *testing.T) {
	plans := &fakePlanRepo{}
	balancer := &fakeBalancer{err: errors.New("connection refused")}
	svc := newTestAssignmentService(t,
		&fakeTemplateRepo{template: assignmentTemplate()},
		&fakePreferenceRepo{},
		&fakeFoodRepo{catalog: assignmentCatalog()},
		plans, &fakeSubstitutionRepo{}, balancer)

	result := svc.Assign(context.Background(), assignReq())

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "balancing service dispatch failed")
	assert.Nil(t, plans.created)
}

func TestAssignBalancerRejection(t *testing.T) {
	balancer := &fakeBalancer{result: &BalanceResult{Success: false, Error: "no feasible solution"}}
	svc := newTestAssignmentService(t,
		&fakeTemplateRepo{template: assignmentTemplate()},
		&fakePreferenceRepo{},
		&fakeFoodRepo{catalog: assignmentCatalog()},
		&fakePlanRepo{}, &fakeSubstitutionRepo{}, balancer)

	result := svc.Assign(context.Background(), assignReq())

	assert.False(t, result.Success)
	assert.Equal(t, "no feasible solution", result.Error)
}

func TestAssignOverridesTemplateEnergyBudget(t *testing.T) {
	balancer := &fakeBalancer{result: &BalanceResult{Success: true, NewPlanID: 9}}
	svc := newTestAssignmentService(t,
		&fakeTemplateRepo{template: assignmentTemplate()},
		&fakePreferenceRepo{},
		&fakeFoodRepo{catalog: assignmentCatalog()},
		&fakePlanRepo{}, &fakeSubstitutionRepo{}, balancer)

	req := assignReq()
	req.TDEE = 2400
	req.MacroDistribution = &models.MacroDistribution{Protein: 40, Carbs: 30, Fat: 30}

	result := svc.Assign(context.Background(), req)
	require.True(t, result.Success, result.Error)

	require.NotNil(t, balancer.request)
	assert.Equal(t, 2400.0, balancer.request.TDEE)
	assert.Equal(t, 40.0, balancer.request.MacroDistribution.Protein)

	// Daily protein: round(2400*0.40/4) = 240; breakfast 40% -> 96.
	assert.Equal(t, 96, result.MealTargets[0].ProteinG)
}

func TestAssignPlanPersistenceFailureDoesNotFailAssignment(t *testing.T) {
	plans := &fakePlanRepo{err: errors.New("duplicate key")}
	balancer := &fakeBalancer{result: &BalanceResult{Success: true, NewPlanID: 3}}
	svc := newTestAssignmentService(t,
		&fakeTemplateRepo{template: assignmentTemplate()},
		&fakePreferenceRepo{},
		&fakeFoodRepo{catalog: assignmentCatalog()},
		plans, &fakeSubstitutionRepo{}, balancer)

	result := svc.Assign(context.Background(), assignReq())
	assert.True(t, result.Success, result.Error)
	assert.Equal(t, int64(3), result.PlanID)
}
