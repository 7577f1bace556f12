package repository

import (
	"context"
	"errors"
	"time"

	"order-lifecycle-service/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound  = errors.New("orden no encontrada")
	ErrDuplicate = errors.New("número de orden duplicado")
)

// Mongo implementation
type MongoOrderRepository struct {
	col *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{col: db.Collection("orders")}
}

// EnsureIndexes crea el índice único sobre order_number. Es la garantía
// real de unicidad: el número se deriva de un conteo que puede chocar
// bajo concurrencia y el servicio reintenta ante ErrDuplicate.
func (m *MongoOrderRepository) EnsureIndexes(ctx context.Context) error {
	_, err := m.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "order_number", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (m *MongoOrderRepository) Count(ctx context.Context) (int64, error) {
	return m.col.CountDocuments(ctx, bson.M{})
}

func (m *MongoOrderRepository) Insert(ctx context.Context, o *model.Order) error {
	_, err := m.col.InsertOne(ctx, o)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

// userOrEmailFilter matchea por identificador canónico O por email del
// cliente: cubre órdenes hechas como invitado antes de tener cuenta.
func userOrEmailFilter(userID, email string) bson.M {
	or := []bson.M{}
	if userID != "" {
		or = append(or, bson.M{"user_id": userID})
	}
	if email != "" {
		or = append(or, bson.M{"customer_email": email})
	}
	if len(or) == 0 {
		// sin claves no hay matcheo posible
		return bson.M{"_id": nil}
	}
	return bson.M{"$or": or}
}

func (m *MongoOrderRepository) FindByUserOrEmail(ctx context.Context, userID, email string) ([]model.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := m.col.Find(ctx, userOrEmailFilter(userID, email), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []model.Order
	for cur.Next(ctx) {
		var v model.Order
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, cur.Err()
}

// FindSummaries es la variante liviana: proyección mínima, sin mapeo de
// documento completo, pensada para latencia.
func (m *MongoOrderRepository) FindSummaries(ctx context.Context, userID, email string) ([]model.OrderSummary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{
			"order_number": 1,
			"status":       1,
			"total_amount": 1,
			"created_at":   1,
			"items.name":   1,
			"items.quantity": 1,
		})
	cur, err := m.col.Find(ctx, userOrEmailFilter(userID, email), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []model.OrderSummary
	for cur.Next(ctx) {
		var doc struct {
			OrderNumber string              `bson:"order_number"`
			Status      string              `bson:"status"`
			TotalAmount float64             `bson:"total_amount"`
			CreatedAt   time.Time           `bson:"created_at"`
			Items       []model.SummaryItem `bson:"items"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, model.OrderSummary{
			OrderNumber: doc.OrderNumber,
			Status:      doc.Status,
			TotalAmount: doc.TotalAmount,
			CreatedAt:   doc.CreatedAt,
			ItemCount:   len(doc.Items),
			Items:       doc.Items,
		})
	}
	return out, cur.Err()
}

// FindByTrackingOrNumber busca por número de seguimiento o de orden.
func (m *MongoOrderRepository) FindByTrackingOrNumber(ctx context.Context, number string) (*model.Order, error) {
	filter := bson.M{"$or": []bson.M{
		{"tracking_number": number},
		{"order_number": number},
	}}
	var res model.Order
	err := m.col.FindOne(ctx, filter).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateStatus cambia el estado y devuelve el documento ANTERIOR,
// que el servicio necesita para armar la notificación de transición.
func (m *MongoOrderRepository) UpdateStatus(ctx context.Context, orderNumber, status string) (*model.Order, error) {
	filter := bson.M{"order_number": orderNumber}
	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var prev model.Order
	err := m.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&prev)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &prev, nil
}

func (m *MongoOrderRepository) FindAll(ctx context.Context) ([]model.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := m.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []model.Order
	for cur.Next(ctx) {
		var v model.Order
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, cur.Err()
}
