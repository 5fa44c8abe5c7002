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

// AppointmentFilter narrows a listing by date window and status. Zero fields
// are ignored.
type AppointmentFilter struct {
	From   *time.Time
	To     *time.Time
	Status string
}

type AppointmentUpdate struct {
	Status       *string
	Date         *time.Time
	Professional *string
	Patient      *string
	Service      *string
	MeetingID    *string
	MeetingURL   *string
}

func (u AppointmentUpdate) IsEmpty() bool {
	return u.Status == nil && u.Date == nil && u.Professional == nil &&
		u.Patient == nil && u.Service == nil && u.MeetingID == nil && u.MeetingURL == nil
}

type AppointmentRepo interface {
	List(ctx context.Context, f AppointmentFilter) ([]models.Appointment, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error)
	Create(ctx context.Context, apt *models.Appointment) error
	Update(ctx context.Context, id primitive.ObjectID, u AppointmentUpdate) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type mongoAppointmentRepo struct {
	col *mongo.Collection
}

func (r *mongoAppointmentRepo) List(ctx context.Context, f AppointmentFilter) ([]models.Appointment, error) {
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
	if f.Status != "" {
		filter["status"] = f.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var appointments []models.Appointment
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, err
	}
	if appointments == nil {
		appointments = make([]models.Appointment, 0)
	}
	return appointments, nil
}

func (r *mongoAppointmentRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	var apt models.Appointment
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&apt); err != nil {
		return nil, translate(err)
	}
	return &apt, nil
}

func (r *mongoAppointmentRepo) Create(ctx context.Context, apt *models.Appointment) error {
	_, err := r.col.InsertOne(ctx, apt)
	return translate(err)
}

func (r *mongoAppointmentRepo) Update(ctx context.Context, id primitive.ObjectID, u AppointmentUpdate) error {
	set := bson.M{}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	if u.Date != nil {
		set["date"] = *u.Date
	}
	if u.Professional != nil {
		set["professional"] = *u.Professional
	}
	if u.Patient != nil {
		set["patient"] = *u.Patient
	}
	if u.Service != nil {
		set["service"] = *u.Service
	}
	if u.MeetingID != nil {
		set["meetingId"] = *u.MeetingID
	}
	if u.MeetingURL != nil {
		set["meetingUrl"] = *u.MeetingURL
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

func (r *mongoAppointmentRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
