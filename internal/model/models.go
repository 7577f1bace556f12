// models.go
package model

import "time"

// Estados posibles de una orden. La orden nace en Processing y solo
// cambia mediante la operación explícita de actualización de estado.
const (
	StatusPending    = "Pending"
	StatusProcessing = "Processing"
	StatusShipped    = "Shipped"
	StatusDelivered  = "Delivered"
	StatusCancelled  = "Cancelled"
	StatusRefunded   = "Refunded"
)

var validStatuses = map[string]bool{
	StatusPending:    true,
	StatusProcessing: true,
	StatusShipped:    true,
	StatusDelivered:  true,
	StatusCancelled:  true,
	StatusRefunded:   true,
}

func IsValidStatus(s string) bool {
	return validStatuses[s]
}

type Order struct {
	OrderNumber       string         `bson:"order_number" json:"orderNumber"`
	UserID            string         `bson:"user_id,omitempty" json:"userId,omitempty"`
	CustomerEmail     string         `bson:"customer_email" json:"customerEmail"`
	CustomerName      string         `bson:"customer_name" json:"customerName"`
	Items             []OrderItem    `bson:"items" json:"items"`
	ShippingAddress   Address        `bson:"shipping_address" json:"shippingAddress"`
	BillingAddress    Address        `bson:"billing_address" json:"billingAddress"`
	PaymentMethod     string         `bson:"payment_method" json:"paymentMethod"`
	PaymentReceipt    PaymentReceipt `bson:"payment_receipt" json:"paymentReceipt"`
	Subtotal          float64        `bson:"subtotal" json:"subtotal"`
	Tax               float64        `bson:"tax" json:"tax"`
	Shipping          float64        `bson:"shipping" json:"shipping"`
	Discount          float64        `bson:"discount" json:"discount"`
	TotalAmount       float64        `bson:"total_amount" json:"totalAmount"`
	Status            string         `bson:"status" json:"status"`
	TrackingNumber    string         `bson:"tracking_number" json:"trackingNumber"`
	ReceiptID         string         `bson:"receipt_id" json:"receiptId"`
	EstimatedDelivery time.Time      `bson:"estimated_delivery" json:"estimatedDelivery"`
	CreatedAt         time.Time      `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time      `bson:"updated_at" json:"updatedAt"`
}

type OrderItem struct {
	ProductID string            `bson:"product_id" json:"productId"`
	Name      string            `bson:"name" json:"name"`
	UnitPrice float64           `bson:"unit_price" json:"unitPrice"`
	Quantity  int               `bson:"quantity" json:"quantity"`
	Variant   map[string]string `bson:"variant,omitempty" json:"variant,omitempty"`
}

type Address struct {
	AddressLine1 string `bson:"address_line1" json:"addressLine1"`
	AddressLine2 string `bson:"address_line2,omitempty" json:"addressLine2,omitempty"`
	City         string `bson:"city" json:"city"`
	PostalCode   string `bson:"postal_code" json:"postalCode"`
	Province     string `bson:"province" json:"province"`
	Country      string `bson:"country" json:"country"`
}

// PaymentReceipt es un comprobante opaco: el sistema lo guarda, nunca lo procesa.
type PaymentReceipt struct {
	Kind    string `bson:"kind" json:"kind"` // image | link | reference | test | none
	Payload string `bson:"payload,omitempty" json:"payload,omitempty"`
}

type Product struct {
	ID    string  `bson:"_id" json:"id"`
	Name  string  `bson:"name" json:"name"`
	Price float64 `bson:"price" json:"price"`
	Stock int     `bson:"stock" json:"stock"`
}

// OrderSummary es la vista recortada que viaja al cache de respaldo
// y a la consulta liviana.
type OrderSummary struct {
	OrderNumber string        `bson:"order_number" json:"orderNumber"`
	Status      string        `bson:"status" json:"status"`
	TotalAmount float64       `bson:"total_amount" json:"totalAmount"`
	CreatedAt   time.Time     `bson:"created_at" json:"createdAt"`
	ItemCount   int           `bson:"item_count" json:"itemCount"`
	Items       []SummaryItem `bson:"items,omitempty" json:"items,omitempty"`
}

type SummaryItem struct {
	Name     string `bson:"name" json:"name"`
	Quantity int    `bson:"quantity" json:"quantity"`
}

func Summarize(o Order) OrderSummary {
	s := OrderSummary{
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		CreatedAt:   o.CreatedAt,
		ItemCount:   len(o.Items),
	}
	for _, it := range o.Items {
		s.Items = append(s.Items, SummaryItem{Name: it.Name, Quantity: it.Quantity})
	}
	return s
}

func SummarizeAll(orders []Order) []OrderSummary {
	out := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		out = append(out, Summarize(o))
	}
	return out
}

// FallbackSnapshot es la foto por usuario que se consulta cuando Mongo
// está caído o lento. Siempre es dato viejo y se marca como tal.
type FallbackSnapshot struct {
	UserID     string         `json:"userId"`
	CapturedAt time.Time      `json:"capturedAt"`
	Orders     []OrderSummary `json:"orders"`
}

// StockAdjustment es el resultado por ítem del descuento de stock.
type StockAdjustment struct {
	ProductID     string `json:"productId"`
	Name          string `json:"name,omitempty"`
	PreviousStock int    `json:"previousStock"`
	NewStock      int    `json:"newStock"`
	Reduction     int    `json:"reduction"`
	Error         string `json:"error,omitempty"`
}

type StockReport struct {
	Results   []StockAdjustment `json:"results"`
	Attempted int               `json:"attempted"`
	Succeeded int               `json:"succeeded"`
}

// Tipos de evento del canal de notificaciones.
const (
	EventNewOrder           = "new-order"
	EventOrderUpdated       = "order-updated"
	EventStatusNotification = "status-notification"
)

type NotificationEvent struct {
	Kind        string      `json:"kind"`
	OrderNumber string      `json:"orderNumber"`
	Payload     interface{} `json:"payload,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}
