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

type foodRepository struct {
	collection *mongo.Collection
}

func NewFoodRepository(db *database.MongoDB) repositories.FoodRepository {
	return &foodRepository{
		collection: db.Collection(database.CollectionFoods),
	}
}

func (r *foodRepository) Create(ctx context.Context, food *models.Food) error {
	food.CreatedAt = time.Now()
	food.UpdatedAt = time.Now()
	food.IsActive = true

	result, err := r.collection.InsertOne(ctx, food)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		food.DocID = oid
	}
	return nil
}

func (r *foodRepository) GetByID(ctx context.Context, id int64, userCreated bool) (*models.Food, error) {
	var food models.Food
	err := r.collection.FindOne(ctx, bson.M{"food_id": id, "is_user_created": userCreated}).Decode(&food)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &food, nil
}

func (r *foodRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.Food, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"food_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var foods []*models.Food
	if err := cursor.All(ctx, &foods); err != nil {
		return nil, err
	}
	return foods, nil
}

func (r *foodRepository) Update(ctx context.Context, food *models.Food) error {
	food.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"food_id": food.ID, "is_user_created": food.IsUserCreated}, food)
	return err
}

func (r *foodRepository) Delete(ctx context.Context, id int64, userCreated bool) error {
	// Soft delete; foods referenced by existing plans must stay resolvable
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"food_id": id, "is_user_created": userCreated},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}},
	)
	return err
}

func (r *foodRepository) List(ctx context.Context, activeOnly bool, page, limit int) ([]*models.Food, int64, error) {
	query := bson.M{}
	if activeOnly {
		query["is_active"] = true
	}

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
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var foods []*models.Food
	if err := cursor.All(ctx, &foods); err != nil {
		return nil, 0, err
	}

	return foods, total, nil
}

func (r *foodRepository) ListAll(ctx context.Context) ([]*models.Food, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var foods []*models.Food
	if err := cursor.All(ctx, &foods); err != nil {
		return nil, err
	}
	return foods, nil
}
