// Package engine holds the pure computations of the restriction-aware
// macro balancing flow: conflict classification, macro aggregation and
// the balancing-service payload contract. Nothing in this package does
// I/O; collaborators inject whatever data the computations need.
package engine

import (
	"fmt"

	"github.com/ak/nutriplan/internal/domain/models"
)

// ConflictType classifies how a food relates to a client's restriction
// profile. Exactly one type is reported per (food, profile) pair.
type ConflictType string

const (
	ConflictPreferred             ConflictType = "preferred"
	ConflictNonPreferred          ConflictType = "non_preferred"
	ConflictIndividualRestriction ConflictType = "individual_restriction"
	ConflictSensitivity           ConflictType = "sensitivity"
	ConflictConditionAvoid        ConflictType = "condition_avoid"
	ConflictConditionRecommend    ConflictType = "condition_recommend"
	ConflictNone                  ConflictType = "none"
)

// Blocking reports whether the classification calls for remediation.
// Preferred and condition-recommended foods are acceptable outcomes,
// same as no conflict at all.
func (t ConflictType) Blocking() bool {
	switch t {
	case ConflictNone, ConflictPreferred, ConflictConditionRecommend:
		return false
	}
	return true
}

// ConflictResult is the outcome of classifying one food against one profile.
// RefID carries the sensitivity or condition id for the two linked types.
type ConflictResult struct {
	Type   ConflictType `json:"type"`
	Reason string       `json:"reason"`
	RefID  int64        `json:"ref_id,omitempty"`
}

// Classify runs the ordered classification. Precedence is fixed:
// preferred beats non-preferred beats individual restriction beats
// sensitivity beats condition-avoid beats condition-recommend. The first
// match wins; later eligible classifications are never reported.
// Nil food or profile classifies as none.
func Classify(food *models.Food, profile *models.RestrictionProfile) ConflictResult {
	if food == nil || profile == nil {
		return ConflictResult{Type: ConflictNone}
	}

	if profile.PreferredFoodIDs.Has(food.ID) {
		return ConflictResult{
			Type:   ConflictPreferred,
			Reason: fmt.Sprintf("%s is a preferred food", food.Name),
		}
	}

	if profile.NonPreferredFoodIDs.Has(food.ID) {
		return ConflictResult{
			Type:   ConflictNonPreferred,
			Reason: fmt.Sprintf("%s is marked as not preferred", food.Name),
		}
	}

	if profile.IndividualRestrictionFoodIDs.Has(food.ID) {
		return ConflictResult{
			Type:   ConflictIndividualRestriction,
			Reason: fmt.Sprintf("%s is individually restricted for this client", food.Name),
		}
	}

	for _, sensitivityID := range food.SensitivityIDs {
		if profile.SensitivityIDs.Has(sensitivityID) {
			return ConflictResult{
				Type:   ConflictSensitivity,
				Reason: fmt.Sprintf("%s is linked to sensitivity %d", food.Name, sensitivityID),
				RefID:  sensitivityID,
			}
		}
	}

	for _, link := range food.ConditionLinks {
		if link.Relation == models.RelationAvoid && profile.ConditionIDs.Has(link.ConditionID) {
			return ConflictResult{
				Type:   ConflictConditionAvoid,
				Reason: fmt.Sprintf("%s should be avoided for condition %d", food.Name, link.ConditionID),
				RefID:  link.ConditionID,
			}
		}
	}

	for _, link := range food.ConditionLinks {
		if link.Relation == models.RelationRecommend && profile.ConditionIDs.Has(link.ConditionID) {
			return ConflictResult{
				Type:   ConflictConditionRecommend,
				Reason: fmt.Sprintf("%s is recommended for condition %d", food.Name, link.ConditionID),
				RefID:  link.ConditionID,
			}
		}
	}

	return ConflictResult{Type: ConflictNone}
}
