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

type PatientUpdate struct {
	Status        *string
	Allergies     *string
	Medications   *string
	History       *string
	Notes         *string
	LastDiagnosis *models.Diagnosis
}

func (u PatientUpdate) IsEmpty() bool {
	return u.Status == nil && u.Allergies == nil && u.Medications == nil &&
		u.History == nil && u.Notes == nil && u.LastDiagnosis == nil
}

type PatientRepo interface {
	List(ctx context.Context, status string) ([]models.PatientDetails, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.PatientDetails, error)
	GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.PatientDetails, error)
	Create(ctx context.Context, p *models.PatientDetails) error
	Update(ctx context.Context, id primitive.ObjectID, u PatientUpdate) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type mongoPatientRepo struct {
	col *mongo.Collection
}

func (r *mongoPatientRepo) List(ctx context.Context, status string) ([]models.PatientDetails, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var patients []models.PatientDetails
	if err := cursor.All(ctx, &patients); err != nil {
		return nil, err
	}
	if patients == nil {
		patients = make([]models.PatientDetails, 0)
	}
	return patients, nil
}

func (r *mongoPatientRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.PatientDetails, error) {
	var p models.PatientDetails
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *mongoPatientRepo) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.PatientDetails, error) {
	var p models.PatientDetails
	if err := r.col.FindOne(ctx, bson.M{"userId": userID}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *mongoPatientRepo) Create(ctx context.Context, p *models.PatientDetails) error {
	_, err := r.col.InsertOne(ctx, p)
	return translate(err)
}

func (r *mongoPatientRepo) Update(ctx context.Context, id primitive.ObjectID, u PatientUpdate) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	if u.Allergies != nil {
		set["allergies"] = *u.Allergies
	}
	if u.Medications != nil {
		set["medications"] = *u.Medications
	}
	if u.History != nil {
		set["history"] = *u.History
	}
	if u.Notes != nil {
		set["notes"] = *u.Notes
	}
	if u.LastDiagnosis != nil {
		set["lastDiagnosis"] = *u.LastDiagnosis
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

func (r *mongoPatientRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
