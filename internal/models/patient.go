package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PatientActive   = "Active"
	PatientInactive = "Inactive"
	PatientArchived = "Archived"
)

type Diagnosis struct {
	Date      time.Time `bson:"date" json:"date"`
	Diagnosis string    `bson:"diagnosis" json:"diagnosis"`
	Notes     string    `bson:"notes,omitempty" json:"notes,omitempty"`
}

// PatientDetails is the clinical record attached one-to-one to a User with
// role "user".
type PatientDetails struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	Status        string             `bson:"status" json:"status"`
	Allergies     string             `bson:"allergies,omitempty" json:"allergies,omitempty"`
	Medications   string             `bson:"medications,omitempty" json:"medications,omitempty"`
	History       string             `bson:"history,omitempty" json:"history,omitempty"`
	Notes         string             `bson:"notes,omitempty" json:"notes,omitempty"`
	LastDiagnosis *Diagnosis         `bson:"lastDiagnosis,omitempty" json:"lastDiagnosis,omitempty"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func ValidPatientStatus(s string) bool {
	return s == PatientActive || s == PatientInactive || s == PatientArchived
}
