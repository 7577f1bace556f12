package rabbit

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"order-lifecycle-service/internal/model"
	"order-lifecycle-service/internal/service"
)

// OrderNotifyConsumer recibe avisos de órdenes creadas fuera de este
// servicio y los reenvía al dashboard. Es el segundo punto de entrada
// del fan-out, junto con POST /orders/notify-new-order.
type OrderNotifyConsumer struct {
	Hub service.Broadcaster
}

func NewOrderNotifyConsumer(hub service.Broadcaster) *OrderNotifyConsumer {
	return &OrderNotifyConsumer{Hub: hub}
}

type externalOrderMessage struct {
	OrderNumber  string  `json:"orderNumber"`
	OrderID      string  `json:"orderId"` // algunos productores viejos mandan orderId
	CustomerName string  `json:"customerName"`
	TotalAmount  float64 `json:"totalAmount"`
	ItemCount    int     `json:"itemCount"`
}

func (c *OrderNotifyConsumer) Handle(msg []byte) error {
	log.Info().Msg("[Rabbit] Evento recibido: order_notifications")

	var event externalOrderMessage
	if err := json.Unmarshal(msg, &event); err != nil {
		log.Warn().Err(err).Msg("mensaje de order_notifications inválido")
		return err
	}

	number := event.OrderNumber
	if number == "" {
		number = event.OrderID
	}

	c.Hub.Broadcast(model.NotificationEvent{
		Kind:        model.EventNewOrder,
		OrderNumber: number,
		Payload: map[string]interface{}{
			"customerName": event.CustomerName,
			"totalAmount":  event.TotalAmount,
			"itemCount":    event.ItemCount,
			"external":     true,
		},
		Timestamp: time.Now().UTC(),
	})
	return nil
}
