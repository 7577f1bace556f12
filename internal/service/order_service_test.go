package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-lifecycle-service/internal/dto"
	"order-lifecycle-service/internal/model"
)

func floatPtr(f float64) *float64 { return &f }

func validRequest() dto.CreateOrderRequest {
	return dto.CreateOrderRequest{
		Items: []dto.OrderItemDTO{
			{ProductID: "P1", Name: "Remera", UnitPrice: 100, Quantity: 2},
			{ProductID: "P2", Name: "Gorra", UnitPrice: 150, Quantity: 1},
		},
		ShippingAddress: dto.AddressDTO{
			AddressLine1: "Av San Martín 1234",
			City:         "Mendoza",
			Country:      "Argentina",
		},
		PaymentMethod: "transfer",
		Subtotal:      350,
		TotalAmount:   floatPtr(350),
		CustomerEmail: "ana@mail.com",
		CustomerName:  "Ana",
	}
}

type fixture struct {
	repo     *memOrderRepo
	products *memProductRepo
	hub      *memBroadcaster
	mails    *memMailer
	svc      *OrderService
}

func setup(t *testing.T, products ...*model.Product) *fixture {
	t.Helper()
	f := &fixture{
		repo:     &memOrderRepo{},
		products: newMemProductRepo(products...),
		hub:      &memBroadcaster{},
		mails:    &memMailer{},
	}
	f.svc = NewOrderService(f.repo, NewStockService(f.products), f.mails, f.hub, nil)
	return f
}

func TestSubmitOrder_AssignsIdentifiers(t *testing.T) {
	f := setup(t, &model.Product{ID: "P1", Name: "Remera", Stock: 10}, &model.Product{ID: "P2", Name: "Gorra", Stock: 10})

	res, err := f.svc.SubmitOrder(context.Background(), validRequest(), "")
	require.NoError(t, err)

	assert.Equal(t, "ORD-00001", res.Order.OrderNumber)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z]{2}\d{9}[A-Z]{2}$`), res.Order.TrackingNumber)
	assert.Regexp(t, regexp.MustCompile(`^RCP-\d{6}$`), res.Order.ReceiptID)
	assert.Equal(t, model.StatusProcessing, res.Order.Status)
	assert.False(t, res.Order.EstimatedDelivery.IsZero())
	assert.True(t, res.EmailAttempted)
	// billing hereda shipping si no vino
	assert.Equal(t, res.Order.ShippingAddress, res.Order.BillingAddress)
}

func TestSubmitOrder_Validation(t *testing.T) {
	f := setup(t)

	noItems := validRequest()
	noItems.Items = nil
	_, err := f.svc.SubmitOrder(context.Background(), noItems, "")
	assert.ErrorIs(t, err, ErrValidation)

	noShipping := validRequest()
	noShipping.ShippingAddress = dto.AddressDTO{}
	_, err = f.svc.SubmitOrder(context.Background(), noShipping, "")
	assert.ErrorIs(t, err, ErrValidation)

	noTotal := validRequest()
	noTotal.TotalAmount = nil
	_, err = f.svc.SubmitOrder(context.Background(), noTotal, "")
	assert.ErrorIs(t, err, ErrValidation)

	// nada se persistió ni se notificó
	assert.Empty(t, f.repo.orders)
	assert.Empty(t, f.hub.all())
}

func TestSubmitOrder_SessionIdentityWins(t *testing.T) {
	f := setup(t, &model.Product{ID: "P1", Stock: 10}, &model.Product{ID: "P2", Stock: 10})

	req := validRequest()
	req.UserID = map[string]interface{}{"_id": "del-body"}

	res, err := f.svc.SubmitOrder(context.Background(), req, "de-la-sesion")
	require.NoError(t, err)
	assert.Equal(t, "de-la-sesion", res.Order.UserID)
}

func TestSubmitOrder_NormalizesBodyIdentity(t *testing.T) {
	f := setup(t, &model.Product{ID: "P1", Stock: 10}, &model.Product{ID: "P2", Stock: 10})

	req := validRequest()
	req.UserID = map[string]interface{}{"_id": "u-55"}

	res, err := f.svc.SubmitOrder(context.Background(), req, "")
	require.NoError(t, err)
	assert.Equal(t, "u-55", res.Order.UserID)
}

// Escenario de punta a punta: P1 con stock 5, P2 sin stock. La orden sale
// igual, con el fallo de P2 reportado y el stock de P1 en 3.
func TestSubmitOrder_PartialStockFailureDoesNotBlock(t *testing.T) {
	f := setup(t,
		&model.Product{ID: "P1", Name: "Remera", Stock: 5},
		&model.Product{ID: "P2", Name: "Gorra", Stock: 0},
	)

	res, err := f.svc.SubmitOrder(context.Background(), validRequest(), "")
	require.NoError(t, err)

	require.Len(t, res.Stock.Results, 2)
	assert.Equal(t, 1, res.Stock.Succeeded)

	p1 := res.Stock.Results[0]
	assert.Equal(t, 5, p1.PreviousStock)
	assert.Equal(t, 3, p1.NewStock)
	assert.Empty(t, p1.Error)

	p2 := res.Stock.Results[1]
	assert.Equal(t, "insufficient stock", p2.Error)

	stored, err := f.products.FindByID(context.Background(), "P1")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Stock)
}

func TestSubmitOrder_BroadcastsNewOrder(t *testing.T) {
	f := setup(t, &model.Product{ID: "P1", Stock: 10}, &model.Product{ID: "P2", Stock: 10})

	res, err := f.svc.SubmitOrder(context.Background(), validRequest(), "")
	require.NoError(t, err)

	events := f.hub.all()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventNewOrder, events[0].Kind)
	assert.Equal(t, res.Order.OrderNumber, events[0].OrderNumber)
}

func TestSubmitOrder_RetriesOnDuplicateNumber(t *testing.T) {
	f := setup(t, &model.Product{ID: "P1", Stock: 10}, &model.Product{ID: "P2", Stock: 10})
	f.repo.dupsLeft = 2

	res, err := f.svc.SubmitOrder(context.Background(), validRequest(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Order.OrderNumber)
	assert.Len(t, f.repo.orders, 1)
}

func TestSubmitOrder_CallerNumberCollisionFails(t *testing.T) {
	f := setup(t, &model.Product{ID: "P1", Stock: 10}, &model.Product{ID: "P2", Stock: 10})
	f.repo.dupsLeft = 1

	req := validRequest()
	req.OrderNumber = "ORD-99999"
	_, err := f.svc.SubmitOrder(context.Background(), req, "")
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestUpdateStatus_BroadcastsTransition(t *testing.T) {
	f := setup(t, &model.Product{ID: "P1", Stock: 10}, &model.Product{ID: "P2", Stock: 10})

	created, err := f.svc.SubmitOrder(context.Background(), validRequest(), "")
	require.NoError(t, err)

	updated, err := f.svc.UpdateStatus(context.Background(), created.Order.OrderNumber, model.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, model.StatusShipped, updated.Status)

	events := f.hub.all()
	require.Len(t, events, 2) // new-order + status-notification
	assert.Equal(t, model.EventStatusNotification, events[1].Kind)
	payload := events[1].Payload.(map[string]interface{})
	assert.Equal(t, model.StatusProcessing, payload["previousStatus"])
	assert.Equal(t, model.StatusShipped, payload["newStatus"])
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	f := setup(t)
	_, err := f.svc.UpdateStatus(context.Background(), "ORD-00001", "Teleported")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
