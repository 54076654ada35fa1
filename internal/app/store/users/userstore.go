package userstore

import (
	"context"
	"regexp"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
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
	return &Store{c: db.Collection("users")}
}

// readProjection strips the password hash from every read path. Only
// GetCredentials sees the hash.
var readProjection = bson.M{"password_hash": 0}

// List returns one page of users plus the total match count. An optional
// search term matches name or email, case-insensitively.
func (s *Store) List(ctx context.Context, p paging.Params) ([]models.User, int64, error) {
	filter := bson.M{}
	if p.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(p.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"full_name": re},
			bson.M{"email": re},
		}
	}

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetProjection(readProjection).
		SetSort(bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(p.Skip()).
		SetLimit(p.PageSize)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Create inserts a new user after normalizing identity fields. The caller
// supplies the already-hashed password. A duplicate email is a conflict.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Email = normalize.Email(u.Email)
	u.EmailCI = text.Fold(u.Email)
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, apperr.Conflict("a user with this email already exists")
		}
		return models.User{}, err
	}
	u.PasswordHash = ""
	return u, nil
}

// GetByID loads a user by ObjectID, without the password hash.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(readProjection)).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetByEmail looks up a user by case-insensitive email, without the
// password hash.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx,
		bson.M{"email_ci": text.Fold(normalize.Email(email))},
		options.FindOne().SetProjection(readProjection)).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetCredentials loads a user by email including the password hash.
// Login is the only caller.
func (s *Store) GetCredentials(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(normalize.Email(email))}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Update holds the optional fields of a user update. Nil means leave the
// stored value alone.
type Update struct {
	Email    *string
	FullName *string
}

// Update applies the provided fields, refreshes UpdatedAt, and returns the
// updated document. A duplicate email is a conflict.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (models.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Email != nil {
		email := normalize.Email(*upd.Email)
		set["email"] = email
		set["email_ci"] = text.Fold(email)
	}
	if upd.FullName != nil {
		name := normalize.Name(*upd.FullName)
		set["full_name"] = name
		set["full_name_ci"] = text.Fold(name)
	}

	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, apperr.Conflict("a user with this email already exists")
		}
		return models.User{}, err
	}
	if res.MatchedCount == 0 {
		return models.User{}, apperr.NotFound("user not found")
	}
	// The update just matched, so a miss here is a server fault, not a 404.
	u, err := s.GetByID(ctx, id)
	if apperr.IsNotFound(err) {
		return models.User{}, apperr.Internal("user read-back after update failed")
	}
	return u, err
}

// UpdatePassword replaces the stored password hash.
func (s *Store) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

// Delete removes a user permanently. Accounts are not soft-deleted.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

// EmailExists checks whether any user already has the given email.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(normalize.Email(email))}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
