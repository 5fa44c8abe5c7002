package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	RoleOwner  = "owner"
	RoleDoctor = "doctor"
	RoleStaff  = "staff"
	RoleUser   = "user"
)

const (
	UserActive   = "Active"
	UserInactive = "Inactive"
)

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName string             `bson:"fullName" json:"fullName"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"` // Hide from JSON responses
	Role     string             `bson:"role" json:"role"`
	Status   string             `bson:"status" json:"status"`
	Phone    string             `bson:"phone,omitempty" json:"phone,omitempty"`
}

// ValidRole reports whether r is a known authorization level.
func ValidRole(r string) bool {
	switch r {
	case RoleOwner, RoleDoctor, RoleStaff, RoleUser:
		return true
	}
	return false
}
