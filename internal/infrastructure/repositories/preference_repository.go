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

type preferenceRepository struct {
	collection *mongo.Collection
}

func NewPreferenceRepository(db *database.MongoDB) repositories.PreferenceRepository {
	return &preferenceRepository{
		collection: db.Collection(database.CollectionClientPreferences),
	}
}

func (r *preferenceRepository) GetByUserID(ctx context.Context, userID string) (*models.ClientPreferences, error) {
	var prefs models.ClientPreferences
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&prefs)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// A client without stored preferences has an empty profile
			return nil, nil
		}
		return nil, err
	}
	return &prefs, nil
}

func (r *preferenceRepository) Upsert(ctx context.Context, prefs *models.ClientPreferences) error {
	prefs.UpdatedAt = time.Now()
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"user_id": prefs.UserID}, prefs, opts)
	return err
}
