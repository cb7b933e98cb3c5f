package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDSet is a set of numeric reference ids
type IDSet map[int64]struct{}

// NewIDSet builds a set from a slice of ids
func NewIDSet(ids ...int64) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set
func (s IDSet) Has(id int64) bool {
	if s == nil {
		return false
	}
	_, ok := s[id]
	return ok
}

// RestrictionProfile is the read-only input to conflict classification,
// built per request from a client's stored preferences.
type RestrictionProfile struct {
	PreferredFoodIDs             IDSet
	NonPreferredFoodIDs          IDSet
	IndividualRestrictionFoodIDs IDSet
	SensitivityIDs               IDSet
	ConditionIDs                 IDSet
}

// ClientPreferences is the stored preference document for one client.
type ClientPreferences struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID              string             `bson:"user_id" json:"user_id"`
	PreferredFoodIDs    []int64            `bson:"preferred_food_ids,omitempty" json:"preferred_food_ids,omitempty"`
	NonPreferredFoodIDs []int64            `bson:"non_preferred_food_ids,omitempty" json:"non_preferred_food_ids,omitempty"`
	RestrictedFoodIDs   []int64            `bson:"restricted_food_ids,omitempty" json:"restricted_food_ids,omitempty"`
	SensitivityIDs      []int64            `bson:"sensitivity_ids,omitempty" json:"sensitivity_ids,omitempty"`
	ConditionIDs        []int64            `bson:"condition_ids,omitempty" json:"condition_ids,omitempty"`
	UpdatedAt           time.Time          `bson:"updated_at" json:"updated_at"`
}

// RestrictionProfile materializes the set view the engine classifies against.
func (p *ClientPreferences) RestrictionProfile() *RestrictionProfile {
	if p == nil {
		return &RestrictionProfile{}
	}
	return &RestrictionProfile{
		PreferredFoodIDs:             NewIDSet(p.PreferredFoodIDs...),
		NonPreferredFoodIDs:          NewIDSet(p.NonPreferredFoodIDs...),
		IndividualRestrictionFoodIDs: NewIDSet(p.RestrictedFoodIDs...),
		SensitivityIDs:               NewIDSet(p.SensitivityIDs...),
		ConditionIDs:                 NewIDSet(p.ConditionIDs...),
	}
}
