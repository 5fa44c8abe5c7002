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

type SubscriptionUpdate struct {
	PlanType     *string
	Seats        *int
	PricePerSeat *float64
	Status       *string
	PeriodEnd    *time.Time
}

func (u SubscriptionUpdate) IsEmpty() bool {
	return u.PlanType == nil && u.Seats == nil && u.PricePerSeat == nil &&
		u.Status == nil && u.PeriodEnd == nil
}

type SubscriptionRepo interface {
	List(ctx context.Context) ([]models.Subscription, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Subscription, error)
	Create(ctx context.Context, s *models.Subscription) error
	Update(ctx context.Context, id primitive.ObjectID, u SubscriptionUpdate) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// ExpireDue flips every active subscription whose period ended before now
	// to expired and reports how many were flipped.
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

type mongoSubscriptionRepo struct {
	col *mongo.Collection
}

func (r *mongoSubscriptionRepo) List(ctx context.Context) ([]models.Subscription, error) {
	opts := options.Find().SetSort(bson.D{{Key: "periodEnd", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subs []models.Subscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	if subs == nil {
		subs = make([]models.Subscription, 0)
	}
	return subs, nil
}

func (r *mongoSubscriptionRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.Subscription, error) {
	var s models.Subscription
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *mongoSubscriptionRepo) Create(ctx context.Context, s *models.Subscription) error {
	_, err := r.col.InsertOne(ctx, s)
	return translate(err)
}

func (r *mongoSubscriptionRepo) Update(ctx context.Context, id primitive.ObjectID, u SubscriptionUpdate) error {
	set := bson.M{}
	if u.PlanType != nil {
		set["planType"] = *u.PlanType
	}
	if u.Seats != nil {
		set["seats"] = *u.Seats
	}
	if u.PricePerSeat != nil {
		set["pricePerSeat"] = *u.PricePerSeat
	}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	if u.PeriodEnd != nil {
		set["periodEnd"] = *u.PeriodEnd
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

func (r *mongoSubscriptionRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoSubscriptionRepo) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.col.UpdateMany(ctx,
		bson.M{"status": models.SubscriptionActive, "periodEnd": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"status": models.SubscriptionExpired}},
	)
	if err != nil {
		return 0, translate(err)
	}
	return res.ModifiedCount, nil
}
