package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProcedureCategories is the closed set of accepted procedure categories.
var ProcedureCategories = []string{
	"Consulta",
	"Retorno",
	"Exame",
	"Cirurgia",
	"Fisioterapia",
	"Psicoterapia",
	"Odontologia",
	"Nutrição",
	"Vacinação",
	"Outros",
}

type Procedure struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Category string             `bson:"category" json:"category"`
	Date     time.Time          `bson:"date" json:"date"`
	Doctor   string             `bson:"doctor" json:"doctor"`
	Patient  string             `bson:"patient" json:"patient"`
}

func ValidProcedureCategory(c string) bool {
	for _, v := range ProcedureCategories {
		if v == c {
			return true
		}
	}
	return false
}
