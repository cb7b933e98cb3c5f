package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConflictContext narrows a substitution mapping to a specific
// sensitivity or (condition, relation) pair. A mapping with no
// contexts applies to any conflict on its source food.
type ConflictContext struct {
	SensitivityID *int64   `bson:"sensitivity_id,omitempty" json:"sensitivity_id,omitempty"`
	ConditionID   *int64   `bson:"condition_id,omitempty" json:"condition_id,omitempty"`
	Relation      Relation `bson:"relation,omitempty" json:"relation,omitempty"`
}

// SubstitutionMapping is an admin-curated rule saying the target food
// may replace the source food.
type SubstitutionMapping struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SourceFoodID       int64              `bson:"source_food_id" json:"source_food_id"`
	TargetFoodID       int64              `bson:"target_food_id" json:"target_food_id"`
	ConfidenceScore    int                `bson:"confidence_score" json:"confidence_score"` // 0..100
	IsAutomatic        bool               `bson:"is_automatic" json:"is_automatic"`
	ApplicableContexts []ConflictContext  `bson:"applicable_contexts,omitempty" json:"applicable_contexts,omitempty"`
	CreatedBy          string             `bson:"created_by,omitempty" json:"created_by,omitempty"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updated_at"`
}

// NormalizeContexts canonicalizes the relation string of every context,
// the same way condition links are normalized at the food boundary.
// Contexts without a relation pass through. Returns false when a
// relation cannot be interpreted.
func (m *SubstitutionMapping) NormalizeContexts() bool {
	for i := range m.ApplicableContexts {
		raw := string(m.ApplicableContexts[i].Relation)
		if raw == "" {
			continue
		}
		rel, ok := NormalizeRelation(raw)
		if !ok {
			return false
		}
		m.ApplicableContexts[i].Relation = rel
	}
	return true
}
