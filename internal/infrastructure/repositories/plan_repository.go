package repositories

import (
	"context"
	"time"

	"github.com/ak/nutriplan/internal/domain/models"
	"github.com/ak/nutriplan/internal/domain/repositories"
	"github.com/ak/nutriplan/internal/infrastructure/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type planRepository struct {
	collection *mongo.Collection
}

func NewPlanRepository(db *database.MongoDB) repositories.PlanRepository {
	return &planRepository{
		collection: db.Collection(database.CollectionPlans),
	}
}

func (r *planRepository) Create(ctx context.Context, plan *models.Plan) error {
	plan.CreatedAt = time.Now()
	plan.UpdatedAt = time.Now()
	if plan.Status == "" {
		plan.Status = models.PlanStatusActive
	}

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return err
	}
	plan.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *planRepository) GetByPlanID(ctx context.Context, planID int64) (*models.Plan, error) {
	var plan models.Plan
	err := r.collection.FindOne(ctx, bson.M{"plan_id": planID}).Decode(&plan)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (r *planRepository) ListByUser(ctx context.Context, userID string, page, limit int) ([]*models.Plan, int64, error) {
	query := bson.M{"user_id": userID}

	total, err := r.collection.CountDocuments(ctx, query)
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
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var plans []*models.Plan
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, 0, err
	}
	return plans, total, nil
}
