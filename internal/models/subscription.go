package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	SubscriptionActive   = "active"
	SubscriptionPastDue  = "past_due"
	SubscriptionCanceled = "canceled"
	SubscriptionExpired  = "expired"
)

type Subscription struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanType     string             `bson:"planType" json:"planType"`
	Seats        int                `bson:"seats" json:"seats"`
	PricePerSeat float64            `bson:"pricePerSeat" json:"pricePerSeat"`
	BillingRef   string             `bson:"billingRef" json:"billingRef"` // unique external reference
	Status       string             `bson:"status" json:"status"`
	PeriodEnd    time.Time          `bson:"periodEnd" json:"periodEnd"`
}
