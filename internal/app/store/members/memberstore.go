package memberstore

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dalemusser/flockhub/internal/app/system/apperr"
	"github.com/dalemusser/flockhub/internal/app/system/normalize"
	"github.com/dalemusser/flockhub/internal/app/system/paging"
	"github.com/dalemusser/flockhub/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("members")}
}

// List returns one page of live members plus the total match count. An
// optional search term matches first, middle, or last name, or the
// address, case-insensitively.
func (s *Store) List(ctx context.Context, p paging.Params) ([]models.Member, int64, error) {
	filter := bson.M{"deleted_at": bson.M{"$exists": false}}
	if p.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(p.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"first_name": re},
			bson.M{"middle_name": re},
			bson.M{"last_name": re},
			bson.M{"address": re},
		}
	}

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "last_name", Value: 1}, {Key: "first_name", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(p.Skip()).
		SetLimit(p.PageSize)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	members := []models.Member{}
	if err := cur.All(ctx, &members); err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

// ListByLifegroup returns the live members currently assigned to a
// lifegroup. The roster reconciler and lifegroup detail reads use it.
func (s *Store) ListByLifegroup(ctx context.Context, lifegroupID primitive.ObjectID) ([]models.Member, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"lifegroup_id": lifegroupID,
		"deleted_at":   bson.M{"$exists": false},
	}, options.Find().SetSort(bson.D{{Key: "last_name", Value: 1}, {Key: "first_name", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	members := []models.Member{}
	if err := cur.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// Create inserts a new member.
func (s *Store) Create(ctx context.Context, m models.Member) (models.Member, error) {
	m.ID = primitive.NewObjectID()
	m.FirstName = normalize.Name(m.FirstName)
	m.MiddleName = normalize.Name(m.MiddleName)
	m.LastName = normalize.Name(m.LastName)
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	m.DeletedAt = nil

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Member{}, err
	}
	return m, nil
}

// GetByID loads a member by ObjectID. Soft-deleted members are not found
// unless includeDeleted is set.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID, includeDeleted bool) (models.Member, error) {
	filter := bson.M{"_id": id}
	if !includeDeleted {
		filter["deleted_at"] = bson.M{"$exists": false}
	}
	var m models.Member
	err := s.c.FindOne(ctx, filter).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return models.Member{}, apperr.NotFound("member not found")
	}
	if err != nil {
		return models.Member{}, err
	}
	return m, nil
}

// Update holds the optional fields of a member update. Nil means leave
// the stored value alone; ClearLifegroup removes the lifegroup assignment.
type Update struct {
	FirstName      *string
	MiddleName     *string
	LastName       *string
	Address        *string
	Birthday       *time.Time
	TribeID        *primitive.ObjectID
	LifegroupID    *primitive.ObjectID
	ClearLifegroup bool
}

// Update applies the provided fields, refreshes UpdatedAt, and returns the
// updated document. Soft-deleted members cannot be updated.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (models.Member, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.FirstName != nil {
		set["first_name"] = normalize.Name(*upd.FirstName)
	}
	if upd.MiddleName != nil {
		set["middle_name"] = normalize.Name(*upd.MiddleName)
	}
	if upd.LastName != nil {
		set["last_name"] = normalize.Name(*upd.LastName)
	}
	if upd.Address != nil {
		set["address"] = *upd.Address
	}
	if upd.Birthday != nil {
		set["birthday"] = *upd.Birthday
	}
	if upd.TribeID != nil {
		set["tribe_id"] = *upd.TribeID
	}

	update := bson.M{"$set": set}
	switch {
	case upd.ClearLifegroup:
		update["$unset"] = bson.M{"lifegroup_id": ""}
	case upd.LifegroupID != nil:
		set["lifegroup_id"] = *upd.LifegroupID
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "deleted_at": bson.M{"$exists": false}}, update)
	if err != nil {
		return models.Member{}, err
	}
	if res.MatchedCount == 0 {
		return models.Member{}, apperr.NotFound("member not found")
	}
	// The update just matched, so a miss here is a server fault, not a 404.
	m, err := s.GetByID(ctx, id, true)
	if apperr.IsNotFound(err) {
		return models.Member{}, apperr.Internal("member read-back after update failed")
	}
	return m, err
}

// Delete soft-deletes a member by default, stamping deleted_at. Deleting
// an already-deleted member succeeds; only a missing document is an error.
// With hard set the document is removed outright.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID, hard bool) error {
	if hard {
		res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return apperr.NotFound("member not found")
		}
		return nil
	}

	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "deleted_at": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"deleted_at": now, "updated_at": now}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		n, err := s.c.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("member not found")
		}
	}
	return nil
}

// Restore clears the soft-delete marker and returns the member. Only a
// deleted member can be restored; a live or missing one is not found.
func (s *Store) Restore(ctx context.Context, id primitive.ObjectID) (models.Member, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "deleted_at": bson.M{"$exists": true}},
		bson.M{
			"$unset": bson.M{"deleted_at": ""},
			"$set":   bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return models.Member{}, err
	}
	if res.MatchedCount == 0 {
		n, err := s.c.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return models.Member{}, err
		}
		if n == 0 {
			return models.Member{}, apperr.NotFound("member not found")
		}
		return models.Member{}, apperr.NotFound("member is not deleted")
	}
	m, err := s.GetByID(ctx, id, false)
	if apperr.IsNotFound(err) {
		return models.Member{}, apperr.Internal("member read-back after restore failed")
	}
	return m, err
}
