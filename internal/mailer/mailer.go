// mailer.go
package mailer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"order-lifecycle-service/internal/model"
)

type Job struct {
	To          string `json:"to"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	OrderNumber string `json:"orderNumber"`
}

type Sender interface {
	Send(ctx context.Context, job Job) error
}

// Dispatcher despacha mails desacoplado del request: la respuesta ya salió
// cuando el worker toma el trabajo. Reintenta con backoff fijo y si agota
// los intentos abandona y lo deja en el log, nunca en la respuesta.
type Dispatcher struct {
	sender       Sender
	jobs         chan Job
	initialDelay time.Duration
	backoff      time.Duration
	maxAttempts  int
	wg           sync.WaitGroup
}

func NewDispatcher(sender Sender, initialDelay, backoff time.Duration, maxAttempts int) *Dispatcher {
	return &Dispatcher{
		sender:       sender,
		jobs:         make(chan Job, 64),
		initialDelay: initialDelay,
		backoff:      backoff,
		maxAttempts:  maxAttempts,
	}
}

func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.worker()
}

// Stop drena la cola y espera al worker. Solo para shutdown y tests.
func (d *Dispatcher) Stop() {
	close(d.jobs)
	d.wg.Wait()
}

func (d *Dispatcher) Enqueue(job Job) {
	select {
	case d.jobs <- job:
	default:
		log.Error().Str("order", job.OrderNumber).Str("to", job.To).Msg("cola de mails llena, trabajo descartado")
	}
}

// ScheduleOrderEmails encola la confirmación al cliente y el aviso a operaciones.
func (d *Dispatcher) ScheduleOrderEmails(o model.Order) {
	d.Enqueue(Job{
		To:          o.CustomerEmail,
		Subject:     fmt.Sprintf("Confirmación de tu orden %s", o.OrderNumber),
		Body:        fmt.Sprintf("Hola %s, recibimos tu orden %s por $%.2f. Seguimiento: %s.", o.CustomerName, o.OrderNumber, o.TotalAmount, o.TrackingNumber),
		OrderNumber: o.OrderNumber,
	})
	d.Enqueue(Job{
		To:          "ops@tienda.local",
		Subject:     fmt.Sprintf("Nueva orden %s", o.OrderNumber),
		Body:        fmt.Sprintf("Orden %s de %s (%d items, $%.2f).", o.OrderNumber, o.CustomerName, len(o.Items), o.TotalAmount),
		OrderNumber: o.OrderNumber,
	})
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for job := range d.jobs {
		time.Sleep(d.initialDelay)
		d.deliver(job)
	}
}

func (d *Dispatcher) deliver(job Job) {
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := d.sender.Send(ctx, job)
		cancel()
		if err == nil {
			log.Info().Str("order", job.OrderNumber).Str("to", job.To).Msg("mail enviado")
			return
		}
		log.Warn().Err(err).Str("order", job.OrderNumber).Int("attempt", attempt).Msg("envío de mail falló")
		if attempt < d.maxAttempts {
			time.Sleep(d.backoff)
		}
	}
	log.Error().Str("order", job.OrderNumber).Str("to", job.To).Msg("mail abandonado tras agotar reintentos")
}
