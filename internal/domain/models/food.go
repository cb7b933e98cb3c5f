package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FoodUnit describes how an ingredient quantity is interpreted:
// mass quantities are grams (macros are per 100g), count quantities
// are whole units (macros are per unit).
type FoodUnit string

const (
	FoodUnitMass  FoodUnit = "mass"
	FoodUnitCount FoodUnit = "count"
)

// NormalizeUnit maps the unit spellings found in imported food data to
// the two-value FoodUnit enum. Unknown spellings default to mass.
func NormalizeUnit(raw string) FoodUnit {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "count", "unit", "units", "piece", "pieces", "unidad", "unidades":
		return FoodUnitCount
	default:
		return FoodUnitMass
	}
}

// Relation links a food to a medical condition as either to-avoid or recommended.
type Relation string

const (
	RelationAvoid     Relation = "avoid"
	RelationRecommend Relation = "recommend"
)

// relationSynonyms maps every spelling seen in imported condition data
// (including localized variants) to the canonical enum.
var relationSynonyms = map[string]Relation{
	"avoid":       RelationAvoid,
	"to_avoid":    RelationAvoid,
	"evitar":      RelationAvoid,
	"a_evitar":    RelationAvoid,
	"recommend":   RelationRecommend,
	"recommended": RelationRecommend,
	"recomendado": RelationRecommend,
	"recomendar":  RelationRecommend,
}

// NormalizeRelation maps a raw relation string to the canonical enum.
// Internal logic only ever compares canonical values; this is the single
// place raw strings are interpreted.
func NormalizeRelation(raw string) (Relation, bool) {
	rel, ok := relationSynonyms[strings.ToLower(strings.TrimSpace(raw))]
	return rel, ok
}

// ConditionLink ties a food to a medical condition
type ConditionLink struct {
	ConditionID int64    `bson:"condition_id" json:"condition_id"`
	Relation    Relation `bson:"relation" json:"relation"`
}

// Food is immutable reference data maintained by content management.
// Macro fields are per 100g for mass foods and per unit for count foods.
// The numeric id is unique only within its id space, so the document id
// is generated and (food_id, is_user_created) carries a unique index.
type Food struct {
	DocID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID             int64              `bson:"food_id" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Unit           FoodUnit           `bson:"unit" json:"unit"`
	ProteinPer100  float64            `bson:"protein_per_100" json:"protein_per_100"`
	CarbsPer100    float64            `bson:"carbs_per_100" json:"carbs_per_100"`
	FatPer100      float64            `bson:"fat_per_100" json:"fat_per_100"`
	SensitivityIDs []int64            `bson:"sensitivity_ids,omitempty" json:"sensitivity_ids,omitempty"`
	ConditionLinks []ConditionLink    `bson:"condition_links,omitempty" json:"condition_links,omitempty"`
	IsUserCreated  bool               `bson:"is_user_created" json:"is_user_created"`
	OwnerID        string             `bson:"owner_id,omitempty" json:"owner_id,omitempty"`
	IsActive       bool               `bson:"is_active" json:"is_active"`
	CreatedBy      string             `bson:"created_by,omitempty" json:"created_by,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// CatalogKey returns the key the food catalog is indexed by. Platform
// foods and user-created foods live in separate id spaces.
func (f *Food) CatalogKey() string {
	return FoodKey(f.ID, f.IsUserCreated)
}

// FoodKey builds a catalog key from a food id and its user-created flag.
func FoodKey(id int64, userCreated bool) string {
	return fmt.Sprintf("%d|%t", id, userCreated)
}
