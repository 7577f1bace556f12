// setup.go
package rabbit

import (
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"order-lifecycle-service/internal/service"
)

func SetupConsumers(ch *amqp091.Channel, hub service.Broadcaster) {
	consumer := NewOrderNotifyConsumer(hub)

	err := ch.ExchangeDeclare(
		ExchangeOrderNotifications,
		"fanout",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Error().Err(err).Msg("error declarando exchange order_notifications")
		return
	}

	q, err := ch.QueueDeclare(
		"order_service_dashboard_notifications", // cola exclusiva de este micro
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Error().Err(err).Msg("error declarando queue")
		return
	}

	err = ch.QueueBind(
		q.Name,
		"", // fanout ignora routing key
		ExchangeOrderNotifications,
		false,
		nil,
	)
	if err != nil {
		log.Error().Err(err).Msg("error binding exchange")
		return
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Error().Err(err).Msg("error al consumir queue")
		return
	}

	go func() {
		for m := range msgs {
			consumer.Handle(m.Body)
		}
	}()

	log.Info().Msg("suscrito a exchange order_notifications (fanout)")
}
