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

type substitutionRepository struct {
	collection *mongo.Collection
}

func NewSubstitutionRepository(db *database.MongoDB) repositories.SubstitutionRepository {
	return &substitutionRepository{
		collection: db.Collection(database.CollectionSubstitutionMappings),
	}
}

func (r *substitutionRepository) Create(ctx context.Context, mapping *models.SubstitutionMapping) error {
	mapping.CreatedAt = time.Now()
	mapping.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, mapping)
	if err != nil {
		return err
	}
	mapping.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *substitutionRepository) Delete(ctx context.Context, sourceFoodID, targetFoodID int64) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{
		"source_food_id": sourceFoodID,
		"target_food_id": targetFoodID,
	})
	return err
}

// ListBySourceFood returns every mapping for a source food, most
// confident first. The resolver relies on this ordering.
func (r *substitutionRepository) ListBySourceFood(ctx context.Context, sourceFoodID int64) ([]*models.SubstitutionMapping, error) {
	opts := options.Find().SetSort(bson.D{{Key: "confidence_score", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"source_food_id": sourceFoodID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var mappings []*models.SubstitutionMapping
	if err := cursor.All(ctx, &mappings); err != nil {
		return nil, err
	}
	normalizeMappings(mappings)
	return mappings, nil
}

// normalizeMappings canonicalizes context relations on documents written
// before relation strings were normalized at the ingress boundary. A
// relation that cannot be interpreted is left raw and never matches.
func normalizeMappings(mappings []*models.SubstitutionMapping) {
	for _, m := range mappings {
		m.NormalizeContexts()
	}
}

func (r *substitutionRepository) List(ctx context.Context, page, limit int) ([]*models.SubstitutionMapping, int64, error) {
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
		SetSort(bson.D{{Key: "source_food_id", Value: 1}, {Key: "confidence_score", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var mappings []*models.SubstitutionMapping
	if err := cursor.All(ctx, &mappings); err != nil {
		return nil, 0, err
	}
	normalizeMappings(mappings)
	return mappings, total, nil
}
