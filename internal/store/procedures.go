package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mirantsoa/clinic-api/internal/models"
)

type ProcedureFilter struct {
	From     *time.Time
	To       *time.Time
	Category string
}

type ProcedureUpdate struct {
	Name     *string
	Category *string
	Date     *time.Time
	Doctor   *string
	Patient  *string
}

func (u ProcedureUpdate) IsEmpty() bool {
	return u.Name == nil && u.Category == nil && u.Date == nil && u.Doctor == nil && u.Patient == nil
}

type ProcedureRepo interface {
	List(ctx context.Context, f ProcedureFilter) ([]models.Procedure, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Procedure, error)
	Create(ctx context.Context, p *models.Procedure) error
	Update(ctx context.Context, id primitive.ObjectID, u ProcedureUpdate) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type mongoProcedureRepo struct {
	col *mongo.Collection
}

func (r *mongoProcedureRepo) List(ctx context.Context, f ProcedureFilter) ([]models.Procedure, error) {
	filter := bson.M{}
	dateRange := bson.M{}
	if f.From != nil {
		dateRange["$gte"] = *f.From
	}
	if f.To != nil {
		dateRange["$lte"] = *f.To
	}
	if len(dateRange) > 0 {
		filter["date"] = dateRange
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var procedures []models.Procedure
	if err := cursor.All(ctx, &procedures); err != nil {
		return nil, err
	}
	if procedures == nil {
		procedures = make([]models.Procedure, 0)
	}
	return procedures, nil
}

func (r *mongoProcedureRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.Procedure, error) {
	var p models.Procedure
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *mongoProcedureRepo) Create(ctx context.Context, p *models.Procedure) error {
	_, err := r.col.InsertOne(ctx, p)
	return translate(err)
}

func (r *mongoProcedureRepo) Update(ctx context.Context, id primitive.ObjectID, u ProcedureUpdate) error {
	set := bson.M{}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Category != nil {
		set["category"] = *u.Category
	}
	if u.Date != nil {
		set["date"] = *u.Date
	}
	if u.Doctor != nil {
		set["doctor"] = *u.Doctor
	}
	if u.Patient != nil {
		set["patient"] = *u.Patient
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

func (r *mongoProcedureRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
