package roster_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	memberstore "github.com/dalemusser/flockhub/internal/app/store/members"
	"github.com/dalemusser/flockhub/internal/app/store/queries/roster"
	"github.com/dalemusser/flockhub/internal/testutil"
)

func rosterOf(t *testing.T, db *mongo.Database, lifegroupID primitive.ObjectID) []primitive.ObjectID {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	var lg struct {
		Members []primitive.ObjectID `bson:"members"`
	}
	if err := db.Collection("lifegroups").FindOne(ctx, bson.M{"_id": lifegroupID}).Decode(&lg); err != nil {
		t.Fatalf("read lifegroup: %v", err)
	}
	return lg.Members
}

func TestMemberAssigned_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	tribe := fx.CreateTribe(ctx, "North")
	leader := fx.CreateMember(ctx, tribe.ID, nil)
	lg := fx.CreateLifegroup(ctx, "Tuesday Group", tribe.ID, leader.ID)
	m := fx.CreateMember(ctx, tribe.ID, &lg.ID)

	if err := roster.MemberAssigned(ctx, db, m.ID, lg.ID); err != nil {
		t.Fatalf("MemberAssigned failed: %v", err)
	}
	// Replaying must not create a duplicate entry
	if err := roster.MemberAssigned(ctx, db, m.ID, lg.ID); err != nil {
		t.Fatalf("second MemberAssigned failed: %v", err)
	}

	got := rosterOf(t, db, lg.ID)
	if len(got) != 1 || got[0] != m.ID {
		t.Errorf("roster: got %v, want [%s]", got, m.ID.Hex())
	}
}

func TestMemberMoved(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	tribe := fx.CreateTribe(ctx, "North")
	leader := fx.CreateMember(ctx, tribe.ID, nil)
	from := fx.CreateLifegroup(ctx, "From Group", tribe.ID, leader.ID)
	to := fx.CreateLifegroup(ctx, "To Group", tribe.ID, leader.ID)
	m := fx.CreateMember(ctx, tribe.ID, &from.ID)

	if err := roster.MemberAssigned(ctx, db, m.ID, from.ID); err != nil {
		t.Fatalf("seed roster: %v", err)
	}

	if err := roster.MemberMoved(ctx, db, m.ID, &from.ID, &to.ID); err != nil {
		t.Fatalf("MemberMoved failed: %v", err)
	}

	if got := rosterOf(t, db, from.ID); len(got) != 0 {
		t.Errorf("old roster: got %v, want empty", got)
	}
	if got := rosterOf(t, db, to.ID); len(got) != 1 || got[0] != m.ID {
		t.Errorf("new roster: got %v, want [%s]", got, m.ID.Hex())
	}

	// Leaving to no lifegroup only removes
	if err := roster.MemberMoved(ctx, db, m.ID, &to.ID, nil); err != nil {
		t.Fatalf("MemberMoved to nil failed: %v", err)
	}
	if got := rosterOf(t, db, to.ID); len(got) != 0 {
		t.Errorf("roster after leave: got %v, want empty", got)
	}
}

func TestRebuild_RepairsDrift(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	tribe := fx.CreateTribe(ctx, "North")
	leader := fx.CreateMember(ctx, tribe.ID, nil)
	lg := fx.CreateLifegroup(ctx, "Tuesday Group", tribe.ID, leader.ID)

	assigned := fx.CreateMember(ctx, tribe.ID, &lg.ID)
	stray := fx.CreateMember(ctx, tribe.ID, nil)
	softDeleted := fx.CreateMember(ctx, tribe.ID, &lg.ID)
	if err := memberstore.New(db).Delete(ctx, softDeleted.ID, false); err != nil {
		t.Fatalf("soft delete member: %v", err)
	}

	// Drift: roster carries the stray and the deleted member, and is
	// missing the assigned one.
	if _, err := db.Collection("lifegroups").UpdateByID(ctx, lg.ID, bson.M{
		"$set": bson.M{"members": []primitive.ObjectID{stray.ID, softDeleted.ID}},
	}); err != nil {
		t.Fatalf("seed drift: %v", err)
	}

	fixed, err := roster.Rebuild(ctx, db)
	if err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if fixed != 1 {
		t.Errorf("fixed: got %d, want 1", fixed)
	}

	got := rosterOf(t, db, lg.ID)
	if len(got) != 1 || got[0] != assigned.ID {
		t.Errorf("roster after rebuild: got %v, want [%s]", got, assigned.ID.Hex())
	}

	// A clean state rebuilds nothing
	fixed, err = roster.Rebuild(ctx, db)
	if err != nil {
		t.Fatalf("second Rebuild failed: %v", err)
	}
	if fixed != 0 {
		t.Errorf("fixed on clean state: got %d, want 0", fixed)
	}
}
