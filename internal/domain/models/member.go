// internal/domain/models/member.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member is a person in the directory.
//
// NOTE:
//   - LifegroupID is the source of truth for lifegroup membership.
//     The lifegroup's members array is derived state kept in sync by
//     the roster maintainer (store/queries/roster).
type Member struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	FirstName   string              `bson:"first_name" json:"first_name"`
	MiddleName  string              `bson:"middle_name,omitempty" json:"middle_name,omitempty"`
	LastName    string              `bson:"last_name" json:"last_name"`
	Address     string              `bson:"address" json:"address"`
	Birthday    time.Time           `bson:"birthday" json:"birthday"`
	TribeID     primitive.ObjectID  `bson:"tribe_id" json:"tribe_id"`
	LifegroupID *primitive.ObjectID `bson:"lifegroup_id,omitempty" json:"lifegroup_id,omitempty"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
}

// MemberDetails is a member joined with its tribe for single-item reads.
type MemberDetails struct {
	Member `bson:",inline"`
	Tribe  *Tribe `bson:"-" json:"tribe,omitempty"`
}
