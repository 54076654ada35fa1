// Package roster owns the members array embedded in lifegroup documents.
//
// The array mirrors the lifegroup_id field on live member documents. The
// member write paths call these helpers inline; tasks.RosterReconcileJob
// calls Rebuild to repair drift after a crash between the two writes.
package roster

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MemberAssigned adds a member to a lifegroup's roster. $addToSet keeps
// the entry unique even when replayed.
func MemberAssigned(ctx context.Context, db *mongo.Database, memberID, lifegroupID primitive.ObjectID) error {
	_, err := db.Collection("lifegroups").UpdateByID(ctx, lifegroupID,
		bson.M{"$addToSet": bson.M{"members": memberID}})
	return err
}

// MemberRemoved drops a member from a lifegroup's roster.
func MemberRemoved(ctx context.Context, db *mongo.Database, memberID, lifegroupID primitive.ObjectID) error {
	_, err := db.Collection("lifegroups").UpdateByID(ctx, lifegroupID,
		bson.M{"$pull": bson.M{"members": memberID}})
	return err
}

// MemberMoved transfers a member between rosters. Either side may be nil
// when the member is joining from, or leaving to, no lifegroup.
func MemberMoved(ctx context.Context, db *mongo.Database, memberID primitive.ObjectID, from, to *primitive.ObjectID) error {
	if from != nil && to != nil && *from == *to {
		return nil
	}
	if from != nil {
		if err := MemberRemoved(ctx, db, memberID, *from); err != nil {
			return err
		}
	}
	if to != nil {
		if err := MemberAssigned(ctx, db, memberID, *to); err != nil {
			return err
		}
	}
	return nil
}

// Rebuild recomputes every lifegroup roster from the members collection
// and rewrites the ones that drifted. Returns the number repaired.
func Rebuild(ctx context.Context, db *mongo.Database) (int64, error) {
	// Desired state: live members grouped by lifegroup.
	cur, err := db.Collection("members").Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"lifegroup_id": bson.M{"$ne": nil},
			"deleted_at":   bson.M{"$exists": false},
		}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":     "$lifegroup_id",
			"members": bson.M{"$addToSet": "$_id"},
		}}},
	})
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	type grouped struct {
		ID      primitive.ObjectID   `bson:"_id"`
		Members []primitive.ObjectID `bson:"members"`
	}
	desired := map[primitive.ObjectID][]primitive.ObjectID{}
	for cur.Next(ctx) {
		var g grouped
		if err := cur.Decode(&g); err != nil {
			return 0, err
		}
		desired[g.ID] = g.Members
	}
	if err := cur.Err(); err != nil {
		return 0, err
	}

	// Current state: every lifegroup's stored roster, deleted ones
	// included so their rosters do not rot while hidden.
	lgCur, err := db.Collection("lifegroups").Find(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	defer lgCur.Close(ctx)

	var fixed int64
	for lgCur.Next(ctx) {
		var lg struct {
			ID      primitive.ObjectID   `bson:"_id"`
			Members []primitive.ObjectID `bson:"members"`
		}
		if err := lgCur.Decode(&lg); err != nil {
			return fixed, err
		}
		want := desired[lg.ID]
		if want == nil {
			want = []primitive.ObjectID{}
		}
		if sameSet(lg.Members, want) {
			continue
		}
		if _, err := db.Collection("lifegroups").UpdateByID(ctx, lg.ID,
			bson.M{"$set": bson.M{"members": want}}); err != nil {
			return fixed, err
		}
		fixed++
	}
	return fixed, lgCur.Err()
}

func sameSet(a, b []primitive.ObjectID) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[primitive.ObjectID]struct{}, len(a))
	for _, id := range a {
		seen[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := seen[id]; !ok {
			return false
		}
	}
	return true
}
