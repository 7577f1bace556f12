// hub.go
package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"order-lifecycle-service/internal/model"
)

// Hub mantiene las sesiones de dashboard conectadas y les reparte los
// eventos. Entrega best-effort, a lo sumo una vez: sin persistencia,
// sin replay, sin ack. Una sesión que se conecta después del evento
// no lo ve nunca.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 32),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			log.Info().Int("sessions", len(h.clients)).Msg("sesión de dashboard conectada")
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Info().Int("sessions", len(h.clients)).Msg("sesión de dashboard desconectada")
			}
		case message := <-h.broadcast:
			// Se manda a TODAS las conexiones, registradas como admin o no.
			// El flag admin se trackea solo como contabilidad de sesión
			// (decisión registrada en DESIGN.md).
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// cliente lento: se lo desconecta antes que frenar al resto
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// Broadcast serializa el evento y lo encola. Si el hub está saturado el
// evento se descarta: perder una notificación nunca frena una orden.
func (h *Hub) Broadcast(ev model.NotificationEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("kind", ev.Kind).Msg("no se pudo serializar el evento")
		return
	}
	select {
	case h.broadcast <- data:
	default:
		log.Warn().Str("kind", ev.Kind).Msg("hub saturado, evento descartado")
	}
}
