package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/dalemusser/flockhub/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a test user with the given email and password and
// returns it. The stored document carries the bcrypt hash; the returned
// value does not.
func (f *Fixtures) CreateUser(ctx context.Context, email, password string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash fixture password: %v", err)
	}

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Email:        email,
		EmailCI:      text.Fold(email),
		FullName:     "Test User",
		FullNameCI:   text.Fold("Test User"),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("insert fixture user: %v", err)
	}
	u.PasswordHash = ""
	return u
}

// CreateTribe inserts a test tribe with the given name and returns it.
func (f *Fixtures) CreateTribe(ctx context.Context, name string) models.Tribe {
	f.t.Helper()

	now := time.Now().UTC()
	tr := models.Tribe{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: "fixture tribe",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("tribes").InsertOne(ctx, tr); err != nil {
		f.t.Fatalf("insert fixture tribe: %v", err)
	}
	return tr
}

// CreateMember inserts a test member in the given tribe, optionally
// assigned to a lifegroup, and returns it. The lifegroup roster is NOT
// updated; tests exercising roster maintenance do that themselves.
func (f *Fixtures) CreateMember(ctx context.Context, tribeID primitive.ObjectID, lifegroupID *primitive.ObjectID) models.Member {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Member{
		ID:          primitive.NewObjectID(),
		FirstName:   "Alex",
		LastName:    "Rivera",
		Address:     "1 Fixture Way",
		Birthday:    time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC),
		TribeID:     tribeID,
		LifegroupID: lifegroupID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("insert fixture member: %v", err)
	}
	return m
}

// CreateLifegroup inserts a test lifegroup with the given name, tribe,
// and leader and returns it.
func (f *Fixtures) CreateLifegroup(ctx context.Context, name string, tribeID, leaderID primitive.ObjectID) models.Lifegroup {
	f.t.Helper()

	now := time.Now().UTC()
	g := models.Lifegroup{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: "fixture lifegroup",
		TribeID:     tribeID,
		LeaderID:    leaderID,
		Members:     []primitive.ObjectID{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("lifegroups").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("insert fixture lifegroup: %v", err)
	}
	return g
}
