package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"order-lifecycle-service/internal/dto"
	"order-lifecycle-service/internal/identity"
	"order-lifecycle-service/internal/idgen"
	"order-lifecycle-service/internal/model"
	"order-lifecycle-service/internal/repository"
)

// Interfaces que implementan repository, ws, mailer y rabbit
type OrderRepository interface {
	Count(ctx context.Context) (int64, error)
	Insert(ctx context.Context, o *model.Order) error
	FindByUserOrEmail(ctx context.Context, userID, email string) ([]model.Order, error)
	FindSummaries(ctx context.Context, userID, email string) ([]model.OrderSummary, error)
	FindByTrackingOrNumber(ctx context.Context, number string) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderNumber, status string) (*model.Order, error)
	FindAll(ctx context.Context) ([]model.Order, error)
}

type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*model.Product, error)
	UpdateStock(ctx context.Context, id string, newStock int) error
}

type Broadcaster interface {
	Broadcast(ev model.NotificationEvent)
}

type MailScheduler interface {
	ScheduleOrderEmails(o model.Order)
}

type Announcer interface {
	AnnounceOrderPlaced(o model.Order) error
}

// Errores de negocio exportados (los usa el controller)
var (
	ErrValidation    = errors.New("datos de la orden inválidos")
	ErrPersistence   = errors.New("no se pudo persistir la orden")
	ErrInvalidStatus = errors.New("estado de orden inválido")
)

type SubmitResult struct {
	Order          model.Order
	Stock          model.StockReport
	EmailAttempted bool
}

type OrderService struct {
	repo      OrderRepository
	stock     *StockService
	mailer    MailScheduler
	hub       Broadcaster
	announcer Announcer
}

func NewOrderService(repo OrderRepository, stock *StockService, mailer MailScheduler, hub Broadcaster, announcer Announcer) *OrderService {
	return &OrderService{
		repo:      repo,
		stock:     stock,
		mailer:    mailer,
		hub:       hub,
		announcer: announcer,
	}
}

// SubmitOrder valida, asigna identificadores, persiste y dispara los efectos.
// Solo la validación y la escritura en Mongo pueden fallar el pedido: el
// descuento de stock, los mails y el broadcast son best-effort y se reportan,
// nunca cortan la respuesta.
func (s *OrderService) SubmitOrder(ctx context.Context, req dto.CreateOrderRequest, sessionUserID string) (*SubmitResult, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: la orden necesita al menos un item", ErrValidation)
	}
	if req.ShippingAddress.AddressLine1 == "" {
		return nil, fmt.Errorf("%w: falta la dirección de envío", ErrValidation)
	}
	if req.TotalAmount == nil || *req.TotalAmount < 0 {
		return nil, fmt.Errorf("%w: falta el total de la orden", ErrValidation)
	}

	// La identidad de la sesión manda sobre lo que diga el body
	userID := sessionUserID
	if userID == "" {
		userID, _ = identity.Normalize(req.UserID)
	}

	now := time.Now().UTC()
	order := model.Order{
		UserID:            userID,
		CustomerEmail:     req.CustomerEmail,
		CustomerName:      req.CustomerName,
		Items:             mapItems(req.Items),
		ShippingAddress:   mapAddress(req.ShippingAddress),
		PaymentMethod:     req.PaymentMethod,
		PaymentReceipt:    model.PaymentReceipt{Kind: "none"},
		Subtotal:          req.Subtotal,
		Tax:               req.Tax,
		Shipping:          req.Shipping,
		Discount:          req.Discount,
		TotalAmount:       *req.TotalAmount,
		Status:            model.StatusProcessing,
		TrackingNumber:    idgen.TrackingNumber(),
		ReceiptID:         idgen.ReceiptID(),
		EstimatedDelivery: idgen.EstimatedDelivery(now),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if req.BillingAddress != nil {
		order.BillingAddress = mapAddress(*req.BillingAddress)
	} else {
		order.BillingAddress = order.ShippingAddress
	}
	if req.PaymentReceipt != nil {
		order.PaymentReceipt = model.PaymentReceipt{
			Kind:    req.PaymentReceipt.Kind,
			Payload: req.PaymentReceipt.Payload,
		}
	}

	if err := s.persistWithUniqueNumber(ctx, &order, req.OrderNumber); err != nil {
		return nil, err
	}

	// Efectos posteriores a la persistencia: ninguno puede fallar el pedido.
	report := s.stock.ApplyStockReductions(ctx, order.Items)
	if report.Succeeded < report.Attempted {
		log.Warn().
			Str("order", order.OrderNumber).
			Int("attempted", report.Attempted).
			Int("succeeded", report.Succeeded).
			Msg("descuento de stock parcial")
	}

	s.mailer.ScheduleOrderEmails(order)

	s.hub.Broadcast(model.NotificationEvent{
		Kind:        model.EventNewOrder,
		OrderNumber: order.OrderNumber,
		Payload: map[string]interface{}{
			"customerName": order.CustomerName,
			"totalAmount":  order.TotalAmount,
			"itemCount":    len(order.Items),
		},
		Timestamp: time.Now().UTC(),
	})

	if s.announcer != nil {
		if err := s.announcer.AnnounceOrderPlaced(order); err != nil {
			log.Warn().Err(err).Str("order", order.OrderNumber).Msg("no se pudo publicar order_placed")
		}
	}

	return &SubmitResult{Order: order, Stock: report, EmailAttempted: true}, nil
}

// persistWithUniqueNumber deriva el número del conteo actual y reintenta
// ante colisión del índice único. Si el caller mandó su propio número y
// choca, no hay reintento: es su colisión.
func (s *OrderService) persistWithUniqueNumber(ctx context.Context, order *model.Order, callerNumber string) error {
	const maxAttempts = 3

	for attempt := 0; attempt < maxAttempts; attempt++ {
		number := callerNumber
		if number == "" {
			count, err := s.repo.Count(ctx)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrPersistence, err)
			}
			number = idgen.OrderNumber(count + int64(attempt))
		}
		order.OrderNumber = number

		err := s.repo.Insert(ctx, order)
		if err == nil {
			return nil
		}
		if errors.Is(err, repository.ErrDuplicate) && callerNumber == "" {
			log.Warn().Str("order", number).Msg("colisión de número de orden, reintentando")
			continue
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return fmt.Errorf("%w: no se consiguió un número de orden único", ErrPersistence)
}

// UpdateStatus realiza la transición y notifica al dashboard con el
// estado anterior y el nuevo.
func (s *OrderService) UpdateStatus(ctx context.Context, orderNumber, newStatus string) (*model.Order, error) {
	if !model.IsValidStatus(newStatus) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, newStatus)
	}

	prev, err := s.repo.UpdateStatus(ctx, orderNumber, newStatus)
	if err != nil {
		return nil, err
	}

	updated := *prev
	updated.Status = newStatus
	updated.UpdatedAt = time.Now().UTC()

	if prev.Status != newStatus {
		s.hub.Broadcast(model.NotificationEvent{
			Kind:        model.EventStatusNotification,
			OrderNumber: orderNumber,
			Payload: map[string]interface{}{
				"previousStatus": prev.Status,
				"newStatus":      newStatus,
				"message":        fmt.Sprintf("Order %s changed from %s to %s", orderNumber, prev.Status, newStatus),
			},
			Timestamp: time.Now().UTC(),
		})
	}

	return &updated, nil
}

func (s *OrderService) GetAll(ctx context.Context) ([]model.Order, error) {
	return s.repo.FindAll(ctx)
}

func mapItems(in []dto.OrderItemDTO) []model.OrderItem {
	out := make([]model.OrderItem, 0, len(in))
	for _, it := range in {
		out = append(out, model.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Variant:   it.Variant,
		})
	}
	return out
}

func mapAddress(in dto.AddressDTO) model.Address {
	return model.Address{
		AddressLine1: in.AddressLine1,
		AddressLine2: in.AddressLine2,
		City:         in.City,
		PostalCode:   in.PostalCode,
		Province:     in.Province,
		Country:      in.Country,
	}
}
