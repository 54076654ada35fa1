package tribestore

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
	return &Store{c: db.Collection("tribes")}
}

// List returns one page of live tribes plus the total match count. An
// optional search term matches the name, case-insensitively.
func (s *Store) List(ctx context.Context, p paging.Params) ([]models.Tribe, int64, error) {
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

	tribes := []models.Tribe{}
	if err := cur.All(ctx, &tribes); err != nil {
		return nil, 0, err
	}
	return tribes, total, nil
}

// Create inserts a new tribe.
func (s *Store) Create(ctx context.Context, t models.Tribe) (models.Tribe, error) {
	t.ID = primitive.NewObjectID()
	t.Name = normalize.Name(t.Name)
	t.NameCI = text.Fold(t.Name)
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	t.DeletedAt = nil

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Tribe{}, err
	}
	return t, nil
}

// GetByID loads a tribe by ObjectID. Soft-deleted tribes are not found
// unless includeDeleted is set.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID, includeDeleted bool) (models.Tribe, error) {
	filter := bson.M{"_id": id}
	if !includeDeleted {
		filter["deleted_at"] = bson.M{"$exists": false}
	}
	var t models.Tribe
	err := s.c.FindOne(ctx, filter).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return models.Tribe{}, apperr.NotFound("tribe not found")
	}
	if err != nil {
		return models.Tribe{}, err
	}
	return t, nil
}

// Update holds the optional fields of a tribe update.
type Update struct {
	Name        *string
	Description *string
}

// Update applies the provided fields, refreshes UpdatedAt, and returns the
// updated document. Soft-deleted tribes cannot be updated.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (models.Tribe, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		name := normalize.Name(*upd.Name)
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}

	filter := bson.M{"_id": id, "deleted_at": bson.M{"$exists": false}}
	res, err := s.c.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return models.Tribe{}, err
	}
	if res.MatchedCount == 0 {
		return models.Tribe{}, apperr.NotFound("tribe not found")
	}
	// The update just matched, so a miss here is a server fault, not a 404.
	t, err := s.GetByID(ctx, id, true)
	if apperr.IsNotFound(err) {
		return models.Tribe{}, apperr.Internal("tribe read-back after update failed")
	}
	return t, err
}

// Delete soft-deletes a tribe by default, stamping deleted_at. Deleting
// an already-deleted tribe succeeds; only a missing document is an error.
// With hard set the document is removed outright.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID, hard bool) error {
	if hard {
		res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return apperr.NotFound("tribe not found")
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
		// Already deleted is fine; never existed is not.
		n, err := s.c.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("tribe not found")
		}
	}
	return nil
}

// Restore clears the soft-delete marker and returns the tribe. Only a
// deleted tribe can be restored; a live or missing one is not found.
func (s *Store) Restore(ctx context.Context, id primitive.ObjectID) (models.Tribe, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "deleted_at": bson.M{"$exists": true}},
		bson.M{
			"$unset": bson.M{"deleted_at": ""},
			"$set":   bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return models.Tribe{}, err
	}
	if res.MatchedCount == 0 {
		n, err := s.c.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return models.Tribe{}, err
		}
		if n == 0 {
			return models.Tribe{}, apperr.NotFound("tribe not found")
		}
		return models.Tribe{}, apperr.NotFound("tribe is not deleted")
	}
	t, err := s.GetByID(ctx, id, false)
	if apperr.IsNotFound(err) {
		return models.Tribe{}, apperr.Internal("tribe read-back after restore failed")
	}
	return t, err
}
