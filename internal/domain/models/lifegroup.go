// internal/domain/models/lifegroup.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lifegroup is a small group inside a tribe, led by a member.
//
// Members is an ordered list of member ids. It must contain exactly the
// ids of non-deleted members whose lifegroup_id equals this lifegroup.
// Only the roster maintainer writes this field as a side effect of member
// changes; the background reconciler repairs any drift.
type Lifegroup struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name        string               `bson:"name" json:"name"`
	NameCI      string               `bson:"name_ci" json:"-"`
	Description string               `bson:"description" json:"description"`
	TribeID     primitive.ObjectID   `bson:"tribe_id" json:"tribe_id"`
	LeaderID    primitive.ObjectID   `bson:"leader_id" json:"leader_id"`
	Members     []primitive.ObjectID `bson:"members" json:"members"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
}

// LifegroupDetails is a lifegroup joined with its tribe, leader, and
// member documents for single-item reads.
type LifegroupDetails struct {
	Lifegroup  `bson:",inline"`
	Tribe      *Tribe   `bson:"-" json:"tribe,omitempty"`
	Leader     *Member  `bson:"-" json:"leader,omitempty"`
	MemberDocs []Member `bson:"-" json:"member_details,omitempty"`
}
