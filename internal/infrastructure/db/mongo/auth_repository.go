package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Sanyister/SubjectTeacherApi/internal/core/domain"
)

const (
	usersCollection     = "users"
	rolesCollection     = "roles"
	userRolesCollection = "user_roles"
)

// MongoAuthRepository is the credential store: accounts, password hashes and
// role assignments. Unique indexes on username, email and role name are
// created by EnsureIndexes and back every uniqueness guarantee here.
type MongoAuthRepository struct {
	users     *mongo.Collection
	roles     *mongo.Collection
	userRoles *mongo.Collection
}

func NewAuthRepository(db *mongo.Database) *MongoAuthRepository {
	return &MongoAuthRepository{
		users:     db.Collection(usersCollection),
		roles:     db.Collection(rolesCollection),
		userRoles: db.Collection(userRolesCollection),
	}
}

type mongoUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Name         string             `bson:"name"`
	DateOfBirth  int64              `bson:"date_of_birth"`
	NeptunCode   string             `bson:"neptun_code,omitempty"`
	Department   string             `bson:"department,omitempty"`
	IsUser       bool               `bson:"is_user"`
	CreatedAt    int64              `bson:"created_at"`
	UpdatedAt    int64              `bson:"updated_at"`
}

func (r *MongoAuthRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := mongoUser{
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Name:         user.Name,
		DateOfBirth:  user.DateOfBirth.Unix(),
		NeptunCode:   user.NeptunCode,
		Department:   user.Department,
		IsUser:       user.IsUser,
		CreatedAt:    user.CreatedAt.Unix(),
		UpdatedAt:    user.UpdatedAt.Unix(),
	}

	_, err := r.users.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	// fetch back to get ID
	return r.FindByUsername(ctx, user.Username)
}

func (r *MongoAuthRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var mu mongoUser
	if err := r.users.FindOne(ctx, bson.M{"username": username}).Decode(&mu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	return &domain.User{
		ID:           mu.ID.Hex(),
		Username:     mu.Username,
		Email:        mu.Email,
		PasswordHash: mu.PasswordHash,
		Name:         mu.Name,
		DateOfBirth:  unixToTime(mu.DateOfBirth),
		NeptunCode:   mu.NeptunCode,
		Department:   mu.Department,
		IsUser:       mu.IsUser,
		CreatedAt:    unixToTime(mu.CreatedAt),
		UpdatedAt:    unixToTime(mu.UpdatedAt),
	}, nil
}

func (r *MongoAuthRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}}
	n, err := r.users.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

func (r *MongoAuthRepository) EnsureRole(ctx context.Context, name string) error {
	_, err := r.roles.UpdateOne(ctx,
		bson.M{"name": name},
		bson.M{"$setOnInsert": bson.M{"name": name, "created_at": time.Now().UTC().Unix()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("ensure role: %w", err)
	}
	return nil
}

func (r *MongoAuthRepository) ListRoles(ctx context.Context, username string) ([]string, error) {
	cur, err := r.userRoles.Find(ctx, bson.M{"username": username})
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer cur.Close(ctx)

	var assignments []struct {
		Role string `bson:"role"`
	}
	if err := cur.All(ctx, &assignments); err != nil {
		return nil, fmt.Errorf("decode roles: %w", err)
	}

	roles := make([]string, 0, len(assignments))
	for _, a := range assignments {
		roles = append(roles, a.Role)
	}
	return roles, nil
}

func (r *MongoAuthRepository) AssignRole(ctx context.Context, username, role string) error {
	_, err := r.userRoles.UpdateOne(ctx,
		bson.M{"username": username, "role": role},
		bson.M{"$setOnInsert": bson.M{"username": username, "role": role}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	return nil
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
