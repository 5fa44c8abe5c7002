package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mirantsoa/clinic-api/internal/models"
)

type DocumentRepo interface {
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Document, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Document, error)
	Create(ctx context.Context, d *models.Document) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type mongoDocumentRepo struct {
	col *mongo.Collection
}

func (r *mongoDocumentRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Document, error) {
	// Listings skip the raw content; callers fetch it with Get.
	opts := options.Find().
		SetSort(bson.D{{Key: "uploadedAt", Value: -1}}).
		SetProjection(bson.M{"content": 0})
	cursor, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []models.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	if docs == nil {
		docs = make([]models.Document, 0)
	}
	return docs, nil
}

func (r *mongoDocumentRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.Document, error) {
	var d models.Document
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *mongoDocumentRepo) Create(ctx context.Context, d *models.Document) error {
	_, err := r.col.InsertOne(ctx, d)
	return translate(err)
}

func (r *mongoDocumentRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
