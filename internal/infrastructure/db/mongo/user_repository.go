package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campusportal/student-records/internal/core/domain"
)

const (
	collectionUsers = "users"
	emailIndexName  = "email_ci"
)

// emailCollation makes email matching and uniqueness ignore case, so "Kim@x" and "kim@x"
// are one identity.
var emailCollation = &options.Collation{Locale: "en", Strength: 2}

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type mongoUser struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	Name               string             `bson:"name"`
	Username           string             `bson:"username"`
	Email              string             `bson:"email"`
	PasswordHash       string             `bson:"password_hash"`
	Roles              []string           `bson:"roles"`
	MustChangePassword bool               `bson:"must_change_password"`
	CreatedAt          time.Time          `bson:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at"`
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, bson.M{"email": email}, emailCollation)
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, bson.M{"username": username}, nil)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, emailCollation)
}

// FindByUsernameOrEmail matches identifier against either the username or the email.
// Matching is exact because usernames are case-sensitive.
func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, identifier string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username": identifier},
		bson.M{"email": identifier},
	}}, nil)
}

// Save inserts users without an ID and replaces the stored document otherwise.
func (r *UserRepository) Save(ctx context.Context, u *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toMongoUser(u)
	if err != nil {
		return err
	}

	if doc.ID.IsZero() {
		res, err := r.col.InsertOne(ctx, doc)
		if err != nil {
			return mapWriteErr("insert user", err)
		}
		if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
			u.ID = oid.Hex()
		}
		return nil
	}

	_, err = r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return mapWriteErr("replace user", err)
	}
	return nil
}

// EnsureIndexes creates the unique username and email indexes the reconciler relies on.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, userIndexes())
	return err
}

func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName(emailIndexName).SetUnique(true).SetCollation(emailCollation),
		},
	}
}

func (r *UserRepository) exists(ctx context.Context, filter bson.M, collation *options.Collation) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Count().SetLimit(1)
	if collation != nil {
		opts.SetCollation(collation)
	}
	n, err := r.col.CountDocuments(ctx, filter, opts)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, collation *options.Collation) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne()
	if collation != nil {
		opts.SetCollation(collation)
	}
	var mu mongoUser
	if err := r.col.FindOne(ctx, filter, opts).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func toMongoUser(u *domain.User) (mongoUser, error) {
	doc := mongoUser{
		Name:               u.Name,
		Username:           u.Username,
		Email:              u.Email,
		PasswordHash:       u.PasswordHash,
		Roles:              u.Roles.Strings(),
		MustChangePassword: u.MustChangePassword,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
	if u.ID != "" {
		oid, err := primitive.ObjectIDFromHex(u.ID)
		if err != nil {
			return mongoUser{}, fmt.Errorf("user id %q: %w", u.ID, err)
		}
		doc.ID = oid
	}
	return doc, nil
}

func (mu mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:                 mu.ID.Hex(),
		Name:               mu.Name,
		Username:           mu.Username,
		Email:              mu.Email,
		PasswordHash:       mu.PasswordHash,
		Roles:              domain.RoleSetFromStrings(mu.Roles),
		MustChangePassword: mu.MustChangePassword,
		CreatedAt:          mu.CreatedAt.UTC(),
		UpdatedAt:          mu.UpdatedAt.UTC(),
	}
}

func mapWriteErr(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicateUser
	}
	return fmt.Errorf("%s: %w", op, err)
}
