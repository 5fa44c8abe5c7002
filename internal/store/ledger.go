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

type LedgerFilter struct {
	From *time.Time
	To   *time.Time
}

type LedgerUpdate struct {
	Amount      *float64
	Date        *time.Time
	Description *string
}

func (u LedgerUpdate) IsEmpty() bool {
	return u.Amount == nil && u.Date == nil && u.Description == nil
}

// LedgerRepo serves both the bills and income resources.
type LedgerRepo interface {
	List(ctx context.Context, f LedgerFilter) ([]models.LedgerEntry, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.LedgerEntry, error)
	Create(ctx context.Context, e *models.LedgerEntry) error
	Update(ctx context.Context, id primitive.ObjectID, u LedgerUpdate) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type mongoLedgerRepo struct {
	col *mongo.Collection
}

func (r *mongoLedgerRepo) List(ctx context.Context, f LedgerFilter) ([]models.LedgerEntry, error) {
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

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.LedgerEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = make([]models.LedgerEntry, 0)
	}
	return entries, nil
}

func (r *mongoLedgerRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.LedgerEntry, error) {
	var e models.LedgerEntry
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *mongoLedgerRepo) Create(ctx context.Context, e *models.LedgerEntry) error {
	_, err := r.col.InsertOne(ctx, e)
	return translate(err)
}

func (r *mongoLedgerRepo) Update(ctx context.Context, id primitive.ObjectID, u LedgerUpdate) error {
	set := bson.M{}
	if u.Amount != nil {
		set["amount"] = *u.Amount
	}
	if u.Date != nil {
		set["date"] = *u.Date
	}
	if u.Description != nil {
		set["description"] = *u.Description
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

func (r *mongoLedgerRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
