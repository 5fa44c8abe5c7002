// Package store holds the typed repositories bound to a tenant database.
// Repositories are constructed once per connection handle; constructing the
// same set twice over one handle is harmless.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Repos is the static repository set for one tenant. Bills and Income share
// the ledger repository type and differ only in the backing collection.
type Repos struct {
	Appointments  AppointmentRepo
	Patients      PatientRepo
	Procedures    ProcedureRepo
	Bills         LedgerRepo
	Income        LedgerRepo
	Users         UserRepo
	Documents     DocumentRepo
	Subscriptions SubscriptionRepo
}

// New binds the repository set to a tenant database.
func New(db *mongo.Database) *Repos {
	return &Repos{
		Appointments:  &mongoAppointmentRepo{col: db.Collection("appointments")},
		Patients:      &mongoPatientRepo{col: db.Collection("patients")},
		Procedures:    &mongoProcedureRepo{col: db.Collection("procedures")},
		Bills:         &mongoLedgerRepo{col: db.Collection("bills")},
		Income:        &mongoLedgerRepo{col: db.Collection("income")},
		Users:         &mongoUserRepo{col: db.Collection("users")},
		Documents:     &mongoDocumentRepo{col: db.Collection("documents")},
		Subscriptions: &mongoSubscriptionRepo{col: db.Collection("subscriptions")},
	}
}

// EnsureIndexes creates the unique indexes a tenant database relies on for
// conflict detection. Index creation is idempotent on the server side.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = db.Collection("subscriptions").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "billingRef", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}
