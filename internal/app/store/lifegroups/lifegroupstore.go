package lifegroupstore

import (
	"context"
	"regexp"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
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
	return &Store{c: db.Collection("lifegroups")}
}

// List returns one page of live lifegroups plus the total match count.
// An optional search term matches the name, case-insensitively.
func (s *Store) List(ctx context.Context, p paging.Params) ([]models.Lifegroup, int64, error) {
	filter := bson.M{"deleted_at": bson.M{"$exists": false}}
	if p.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(p.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"description": re},
		}
	}

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(p.Skip()).
		SetLimit(p.PageSize)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	groups := []models.Lifegroup{}
	if err := cur.All(ctx, &groups); err != nil {
		return nil, 0, err
	}
	return groups, total, nil
}

// Create inserts a new lifegroup with an empty roster unless the caller
// seeded one.
func (s *Store) Create(ctx context.Context, g models.Lifegroup) (models.Lifegroup, error) {
	g.ID = primitive.NewObjectID()
	g.Name = normalize.Name(g.Name)
	g.NameCI = text.Fold(g.Name)
	if g.Members == nil {
		g.Members = []primitive.ObjectID{}
	}
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now
	g.DeletedAt = nil

	if _, err := s.c.InsertOne(ctx, g); err != nil {
		return models.Lifegroup{}, err
	}
	return g, nil
}

// GetByID loads a lifegroup by ObjectID. Soft-deleted lifegroups are not
// found unless includeDeleted is set.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID, includeDeleted bool) (models.Lifegroup, error) {
	filter := bson.M{"_id": id}
	if !includeDeleted {
		filter["deleted_at"] = bson.M{"$exists": false}
	}
	var g models.Lifegroup
	err := s.c.FindOne(ctx, filter).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return models.Lifegroup{}, apperr.NotFound("lifegroup not found")
	}
	if err != nil {
		return models.Lifegroup{}, err
	}
	return g, nil
}

// Update holds the optional fields of a lifegroup update. The roster is
// never written through here; queries/roster owns it.
type Update struct {
	Name        *string
	Description *string
	TribeID     *primitive.ObjectID
	LeaderID    *primitive.ObjectID
}

// Update applies the provided fields, refreshes UpdatedAt, and returns the
// updated document. Soft-deleted lifegroups cannot be updated.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (models.Lifegroup, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		name := normalize.Name(*upd.Name)
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.TribeID != nil {
		set["tribe_id"] = *upd.TribeID
	}
	if upd.LeaderID != nil {
		set["leader_id"] = *upd.LeaderID
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "deleted_at": bson.M{"$exists": false}},
		bson.M{"$set": set})
	if err != nil {
		return models.Lifegroup{}, err
	}
	if res.MatchedCount == 0 {
		return models.Lifegroup{}, apperr.NotFound("lifegroup not found")
	}
	// The update just matched, so a miss here is a server fault, not a 404.
	g, err := s.GetByID(ctx, id, true)
	if apperr.IsNotFound(err) {
		return models.Lifegroup{}, apperr.Internal("lifegroup read-back after update failed")
	}
	return g, err
}

// Delete soft-deletes a lifegroup by default, stamping deleted_at.
// Deleting an already-deleted lifegroup succeeds; only a missing document
// is an error. With hard set the document is removed outright.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID, hard bool) error {
	if hard {
		res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return apperr.NotFound("lifegroup not found")
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
			return apperr.NotFound("lifegroup not found")
		}
	}
	return nil
}

// Restore clears the soft-delete marker and returns the lifegroup. Only a
// deleted lifegroup can be restored; a live or missing one is not found.
func (s *Store) Restore(ctx context.Context, id primitive.ObjectID) (models.Lifegroup, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "deleted_at": bson.M{"$exists": true}},
		bson.M{
			"$unset": bson.M{"deleted_at": ""},
			"$set":   bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return models.Lifegroup{}, err
	}
	if res.MatchedCount == 0 {
		n, err := s.c.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return models.Lifegroup{}, err
		}
		if n == 0 {
			return models.Lifegroup{}, apperr.NotFound("lifegroup not found")
		}
		return models.Lifegroup{}, apperr.NotFound("lifegroup is not deleted")
	}
	g, err := s.GetByID(ctx, id, false)
	if apperr.IsNotFound(err) {
		return models.Lifegroup{}, apperr.Internal("lifegroup read-back after restore failed")
	}
	return g, err
}
