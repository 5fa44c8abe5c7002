package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mirantsoa/clinic-api/internal/models"
)

type StockItemUpdate struct {
	Name           *string
	MinQuantity    *int
	ExpirationDate *time.Time
}

func (u StockItemUpdate) IsEmpty() bool {
	return u.Name == nil && u.MinQuantity == nil && u.ExpirationDate == nil
}

// MovementRequest describes one quantity change to apply.
type MovementRequest struct {
	Type           string
	Quantity       int
	Note           string
	ExpirationDate *time.Time // incoming movements may refresh the expiration date
}

// StockStore manages the shared stock database. Inventory is intentionally
// NOT tenant-scoped: items and movements live in one database for the whole
// clinic group.
//
// Quantity is never mutated directly; ApplyMovement is the only write path
// that touches it, and it couples the quantity update with the movement
// record in a single transaction.
type StockStore interface {
	ListItems(ctx context.Context) ([]models.StockItem, error)
	GetItem(ctx context.Context, id primitive.ObjectID) (*models.StockItem, error)
	CreateItem(ctx context.Context, item *models.StockItem) error
	UpdateItem(ctx context.Context, id primitive.ObjectID, u StockItemUpdate) error
	DeleteItem(ctx context.Context, id primitive.ObjectID) error
	ApplyMovement(ctx context.Context, productID primitive.ObjectID, req MovementRequest) (*models.StockMovement, error)
	ListMovements(ctx context.Context, productID primitive.ObjectID) ([]models.StockMovement, error)
}

type mongoStockStore struct {
	items     *mongo.Collection
	movements *mongo.Collection
}

// NewStockStore binds the stock store to the shared stock database.
func NewStockStore(db *mongo.Database) StockStore {
	return &mongoStockStore{
		items:     db.Collection("stock_items"),
		movements: db.Collection("stock_movements"),
	}
}

func (s *mongoStockStore) ListItems(ctx context.Context) ([]models.StockItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := s.items.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.StockItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = make([]models.StockItem, 0)
	}
	return items, nil
}

func (s *mongoStockStore) GetItem(ctx context.Context, id primitive.ObjectID) (*models.StockItem, error) {
	var item models.StockItem
	if err := s.items.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (s *mongoStockStore) CreateItem(ctx context.Context, item *models.StockItem) error {
	_, err := s.items.InsertOne(ctx, item)
	return translate(err)
}

func (s *mongoStockStore) UpdateItem(ctx context.Context, id primitive.ObjectID, u StockItemUpdate) error {
	set := bson.M{}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.MinQuantity != nil {
		set["minQuantity"] = *u.MinQuantity
	}
	if u.ExpirationDate != nil {
		set["expirationDate"] = *u.ExpirationDate
	}

	res, err := s.items.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoStockStore) DeleteItem(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.items.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyMovement runs the read-modify-write and the movement append inside one
// mongo session transaction, so a crash between the two writes cannot leave
// the quantity and the movement history disagreeing.
func (s *mongoStockStore) ApplyMovement(ctx context.Context, productID primitive.ObjectID, req MovementRequest) (*models.StockMovement, error) {
	session, err := s.items.Database().Client().StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var item models.StockItem
		if err := s.items.FindOne(sc, bson.M{"_id": productID}).Decode(&item); err != nil {
			return nil, translate(err)
		}

		newQty, err := models.ComputeMovement(item.Quantity, req.Type, req.Quantity)
		if err != nil {
			return nil, err
		}

		set := bson.M{"quantity": newQty}
		if req.Type == models.MovementIncoming && req.ExpirationDate != nil {
			set["expirationDate"] = *req.ExpirationDate
		}
		if _, err := s.items.UpdateOne(sc, bson.M{"_id": productID}, bson.M{"$set": set}); err != nil {
			return nil, err
		}

		mv := &models.StockMovement{
			ID:             primitive.NewObjectID(),
			ProductID:      productID,
			Reference:      uuid.NewString(),
			Type:           req.Type,
			Quantity:       req.Quantity,
			QuantityBefore: item.Quantity,
			QuantityAfter:  newQty,
			Note:           req.Note,
			CreatedAt:      time.Now().UTC(),
		}
		if _, err := s.movements.InsertOne(sc, mv); err != nil {
			return nil, err
		}
		return mv, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.StockMovement), nil
}

func (s *mongoStockStore) ListMovements(ctx context.Context, productID primitive.ObjectID) ([]models.StockMovement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.movements.Find(ctx, bson.M{"productId": productID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var movements []models.StockMovement
	if err := cursor.All(ctx, &movements); err != nil {
		return nil, err
	}
	if movements == nil {
		movements = make([]models.StockMovement, 0)
	}
	return movements, nil
}
