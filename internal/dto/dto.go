// dto.go
package dto

import "time"

// CreateOrderRequest llega desde el checkout. UserID es interface{} a propósito:
// los distintos frontends mandan el identificador en formas distintas (string,
// objeto con _id, número) y lo resuelve el normalizador, no el binding.
type CreateOrderRequest struct {
	Items           []OrderItemDTO     `json:"items"`
	ShippingAddress AddressDTO         `json:"shippingAddress"`
	BillingAddress  *AddressDTO        `json:"billingAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
	PaymentReceipt  *PaymentReceiptDTO `json:"paymentReceipt"`
	Subtotal        float64            `json:"subtotal"`
	Tax             float64            `json:"tax"`
	Shipping        float64            `json:"shipping"`
	Discount        float64            `json:"discount"`
	TotalAmount     *float64           `json:"totalAmount"`
	CustomerEmail   string             `json:"customerEmail" binding:"required"`
	CustomerName    string             `json:"customerName" binding:"required"`
	UserID          interface{}        `json:"userId"`
	OrderNumber     string             `json:"orderNumber"`
}

type OrderItemDTO struct {
	ProductID string            `json:"productId" binding:"required"`
	Name      string            `json:"name"`
	UnitPrice float64           `json:"unitPrice"`
	Quantity  int               `json:"quantity" binding:"required,min=1"`
	Variant   map[string]string `json:"variant"`
}

type AddressDTO struct {
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	PostalCode   string `json:"postalCode"`
	Province     string `json:"province"`
	Country      string `json:"country"`
}

type PaymentReceiptDTO struct {
	Kind    string `json:"kind"`
	Payload string `json:"payload"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// NotifyOrderRequest la usan procesos externos que crearon la orden por
// otro camino y solo necesitan disparar la notificación al dashboard.
type NotifyOrderRequest struct {
	OrderNumber   string      `json:"orderNumber" binding:"required"`
	CustomerName  string      `json:"customerName"`
	TotalAmount   float64     `json:"totalAmount"`
	ItemCount     int         `json:"itemCount"`
	UserID        interface{} `json:"userId"`
}

// TrackedOrderResponse es la proyección pública del tracking:
// sin email del cliente.
type TrackedOrderResponse struct {
	OrderNumber       string    `json:"orderNumber"`
	CustomerName      string    `json:"customerName"`
	Status            string    `json:"status"`
	TrackingNumber    string    `json:"trackingNumber"`
	TotalAmount       float64   `json:"totalAmount"`
	ItemCount         int       `json:"itemCount"`
	EstimatedDelivery time.Time `json:"estimatedDelivery"`
	CreatedAt         time.Time `json:"createdAt"`
}
