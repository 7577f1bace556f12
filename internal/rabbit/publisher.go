// publisher.go
package rabbit

import (
	"encoding/json"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"order-lifecycle-service/internal/model"
)

// Exchanges fanout del ecosistema de la tienda:
// - order_placed: lo publicamos nosotros para los micros hermanos
//   (facturación, estado de orden, etc.)
// - order_notifications: lo publican procesos que crean órdenes por
//   otro camino y solo quieren que el dashboard se entere
const (
	ExchangeOrderPlaced        = "order_placed"
	ExchangeOrderNotifications = "order_notifications"
)

type Publisher struct {
	ch *amqp091.Channel
}

func NewPublisher(ch *amqp091.Channel) (*Publisher, error) {
	err := ch.ExchangeDeclare(
		ExchangeOrderPlaced,
		"fanout",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}
	return &Publisher{ch: ch}, nil
}

type placedOrderMessage struct {
	OrderNumber  string    `json:"orderNumber"`
	UserID       string    `json:"userId,omitempty"`
	CustomerName string    `json:"customerName"`
	TotalAmount  float64   `json:"totalAmount"`
	ItemCount    int       `json:"itemCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AnnounceOrderPlaced publica la orden recién creada. Es best-effort:
// el caller loguea el error y sigue.
func (p *Publisher) AnnounceOrderPlaced(o model.Order) error {
	body, err := json.Marshal(placedOrderMessage{
		OrderNumber:  o.OrderNumber,
		UserID:       o.UserID,
		CustomerName: o.CustomerName,
		TotalAmount:  o.TotalAmount,
		ItemCount:    len(o.Items),
		CreatedAt:    o.CreatedAt,
	})
	if err != nil {
		return err
	}

	return p.ch.Publish(
		ExchangeOrderPlaced,
		"", // fanout ignora routing key
		false,
		false,
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
