package repositories

import (
	"context"
	"time"

	"github.com/ak/nutriplan/internal/domain/models"
	"github.com/ak/nutriplan/internal/domain/repositories"
	"github.com/ak/nutriplan/internal/infrastructure/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type templateRepository struct {
	collection *mongo.Collection
}

func NewTemplateRepository(db *database.MongoDB) repositories.TemplateRepository {
	return &templateRepository{
		collection: db.Collection(database.CollectionPlanTemplates),
	}
}

// rawTemplateRecipe mirrors the stored recipe rows, which may carry any
// of the historical ingredient shapes. Normalization happens here, at
// the ingress boundary; the rest of the code only sees canonical types.
type rawTemplateRecipe struct {
	SourceRowID *int64                 `bson:"source_row_id,omitempty"`
	RecipeID    int64                  `bson:"recipe_id"`
	Name        string                 `bson:"name"`
	Ingredients []models.RawIngredient `bson:"ingredients"`
}

type rawTemplateMeal struct {
	DayMealID  any                 `bson:"day_meal_id"`
	Name       string              `bson:"name,omitempty"`
	ProteinPct float64             `bson:"protein_pct"`
	CarbsPct   float64             `bson:"carbs_pct"`
	FatPct     float64             `bson:"fat_pct"`
	Recipes    []rawTemplateRecipe `bson:"recipes"`
}

type rawPlanTemplate struct {
	ID                int64                    `bson:"_id"`
	Name              string                   `bson:"name"`
	Description       string                   `bson:"description,omitempty"`
	TDEE              float64                  `bson:"tdee,omitempty"`
	MacroDistribution models.MacroDistribution `bson:"macro_distribution"`
	Meals             []rawTemplateMeal        `bson:"meals"`
	CreatedBy         string                   `bson:"created_by,omitempty"`
	CreatedAt         time.Time                `bson:"created_at"`
	UpdatedAt         time.Time                `bson:"updated_at"`
}

func (raw *rawPlanTemplate) normalize() *models.PlanTemplate {
	template := &models.PlanTemplate{
		ID:                raw.ID,
		Name:              raw.Name,
		Description:       raw.Description,
		TDEE:              raw.TDEE,
		MacroDistribution: raw.MacroDistribution,
		CreatedBy:         raw.CreatedBy,
		CreatedAt:         raw.CreatedAt,
		UpdatedAt:         raw.UpdatedAt,
	}

	template.Meals = make([]models.TemplateMeal, 0, len(raw.Meals))
	for _, rawMeal := range raw.Meals {
		meal := models.TemplateMeal{
			DayMealID:  rawMeal.DayMealID,
			Name:       rawMeal.Name,
			ProteinPct: rawMeal.ProteinPct,
			CarbsPct:   rawMeal.CarbsPct,
			FatPct:     rawMeal.FatPct,
		}
		for _, rawRecipe := range rawMeal.Recipes {
			recipe := models.TemplateRecipe{
				SourceRowID: rawRecipe.SourceRowID,
				RecipeID:    rawRecipe.RecipeID,
				Name:        rawRecipe.Name,
			}
			for _, rawIng := range rawRecipe.Ingredients {
				if ing, ok := rawIng.Normalize(); ok {
					recipe.Ingredients = append(recipe.Ingredients, ing)
				}
			}
			meal.Recipes = append(meal.Recipes, recipe)
		}
		template.Meals = append(template.Meals, meal)
	}

	return template
}

func (r *templateRepository) Create(ctx context.Context, template *models.PlanTemplate) error {
	template.CreatedAt = time.Now()
	template.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, template)
	return err
}

func (r *templateRepository) GetByID(ctx context.Context, id int64) (*models.PlanTemplate, error) {
	var raw rawPlanTemplate
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return raw.normalize(), nil
}

func (r *templateRepository) Update(ctx context.Context, template *models.PlanTemplate) error {
	template.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": template.ID}, template)
	return err
}

func (r *templateRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *templateRepository) List(ctx context.Context, page, limit int) ([]*models.PlanTemplate, int64, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	skip := (page - 1) * limit

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var raws []*rawPlanTemplate
	if err := cursor.All(ctx, &raws); err != nil {
		return nil, 0, err
	}

	templates := make([]*models.PlanTemplate, 0, len(raws))
	for _, raw := range raws {
		templates = append(templates, raw.normalize())
	}
	return templates, total, nil
}
