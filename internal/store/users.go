package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mirantsoa/clinic-api/internal/models"
)

type UserUpdate struct {
	FullName *string
	Role     *string
	Status   *string
	Phone    *string
	Password *string // already hashed by the caller
}

func (u UserUpdate) IsEmpty() bool {
	return u.FullName == nil && u.Role == nil && u.Status == nil && u.Phone == nil && u.Password == nil
}

type UserRepo interface {
	List(ctx context.Context, role string) ([]models.User, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, id primitive.ObjectID, u UserUpdate) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// RoleOf is the role-refresh read: it fetches only the role field.
	RoleOf(ctx context.Context, id primitive.ObjectID) (string, error)
}

type mongoUserRepo struct {
	col *mongo.Collection
}

func (r *mongoUserRepo) List(ctx context.Context, role string) ([]models.User, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	opts := options.Find().SetSort(bson.D{{Key: "fullName", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = make([]models.User, 0)
	}
	return users, nil
}

func (r *mongoUserRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *mongoUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *mongoUserRepo) Create(ctx context.Context, u *models.User) error {
	_, err := r.col.InsertOne(ctx, u)
	return translate(err)
}

func (r *mongoUserRepo) Update(ctx context.Context, id primitive.ObjectID, u UserUpdate) error {
	set := bson.M{}
	if u.FullName != nil {
		set["fullName"] = *u.FullName
	}
	if u.Role != nil {
		set["role"] = *u.Role
	}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	if u.Phone != nil {
		set["phone"] = *u.Phone
	}
	if u.Password != nil {
		set["password"] = *u.Password
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepo) RoleOf(ctx context.Context, id primitive.ObjectID) (string, error) {
	var out struct {
		Role string `bson:"role"`
	}
	opts := options.FindOne().SetProjection(bson.M{"role": 1})
	if err := r.col.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&out); err != nil {
		return "", translate(err)
	}
	return out.Role, nil
}
