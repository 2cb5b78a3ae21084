package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/instroom/instroom-web/internal/core/domain"
	"github.com/instroom/instroom-web/internal/core/ports"
)

const usersCollection = "users"

// UserRepository stores accounts in the users collection keyed by their UUID.
type UserRepository struct {
	coll *mongo.Collection
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type userDocument struct {
	ID             string    `bson:"_id"`
	Email          string    `bson:"email"`
	FullName       string    `bson:"full_name"`
	Company        string    `bson:"company,omitempty"`
	PasswordDigest string    `bson:"password_digest"`
	Role           string    `bson:"role"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

// EnsureIndexes creates the unique email index that backs registration races.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	if err != nil {
		return fmt.Errorf("ensure users indexes: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := toDocument(user)

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return toDomain(doc), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return toDomain(doc), nil
}

func toDocument(u *domain.User) userDocument {
	return userDocument{
		ID:             u.ID,
		Email:          u.Email,
		FullName:       u.FullName,
		Company:        u.Company,
		PasswordDigest: u.PasswordDigest,
		Role:           string(u.Role),
		UpdatedAt:      u.UpdatedAt.UTC(),
	}
}

func toDomain(doc userDocument) *domain.User {
	return &domain.User{
		ID:             doc.ID,
		Email:          doc.Email,
		FullName:       doc.FullName,
		Company:        doc.Company,
		PasswordDigest: doc.PasswordDigest,
		Role:           domain.Role(doc.Role),
		UpdatedAt:      doc.UpdatedAt.UTC(),
	}
}
