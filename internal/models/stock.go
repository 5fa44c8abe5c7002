package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MovementIncoming = "incoming"
	MovementOutgoing = "outgoing"
)

type StockItem struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Quantity       int                `bson:"quantity" json:"quantity"`
	MinQuantity    int                `bson:"minQuantity" json:"minQuantity"`
	ExpirationDate *time.Time         `bson:"expirationDate,omitempty" json:"expirationDate,omitempty"`
}

// StockMovement is an immutable audit record of one quantity change.
type StockMovement struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID      primitive.ObjectID `bson:"productId" json:"productId"`
	Reference      string             `bson:"reference" json:"reference"`
	Type           string             `bson:"type" json:"type"`
	Quantity       int                `bson:"quantity" json:"quantity"`
	QuantityBefore int                `bson:"quantityBefore" json:"quantityBefore"`
	QuantityAfter  int                `bson:"quantityAfter" json:"quantityAfter"`
	Note           string             `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

// InsufficientStockError rejects an outgoing movement that would drive the
// quantity negative.
type InsufficientStockError struct {
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: %d available, %d requested", e.Available, e.Requested)
}

// ComputeMovement applies a movement of the given type to the current
// quantity. Quantity must be positive; outgoing movements may not overdraw.
func ComputeMovement(current int, movementType string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("movement quantity must be positive, got %d", quantity)
	}
	switch movementType {
	case MovementIncoming:
		return current + quantity, nil
	case MovementOutgoing:
		if quantity > current {
			return 0, &InsufficientStockError{Available: current, Requested: quantity}
		}
		return current - quantity, nil
	default:
		return 0, fmt.Errorf("unknown movement type %q", movementType)
	}
}
