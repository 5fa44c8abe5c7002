package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AppointmentPending   = "Pending"
	AppointmentConfirmed = "Confirmed"
	AppointmentCanceled  = "Canceled"
)

type Appointment struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Status       string             `bson:"status" json:"status"`
	Date         time.Time          `bson:"date" json:"date"`
	Professional string             `bson:"professional" json:"professional"`
	Patient      string             `bson:"patient" json:"patient"`
	Service      string             `bson:"service" json:"service"`
	MeetingID    string             `bson:"meetingId,omitempty" json:"meetingId,omitempty"`
	MeetingURL   string             `bson:"meetingUrl,omitempty" json:"meetingUrl,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// ValidAppointmentStatus reports whether s is one of the three allowed states.
func ValidAppointmentStatus(s string) bool {
	return s == AppointmentPending || s == AppointmentConfirmed || s == AppointmentCanceled
}
