package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"order-lifecycle-service/internal/dto"
	"order-lifecycle-service/internal/identity"
	"order-lifecycle-service/internal/model"
	"order-lifecycle-service/internal/repository"
	"order-lifecycle-service/internal/service"
	"order-lifecycle-service/internal/ws"
)

type OrderController struct {
	Orders    *service.OrderService
	Retrieval *service.RetrievalService
	Hub       *ws.Hub
}

func NewOrderController(orders *service.OrderService, retrieval *service.RetrievalService, hub *ws.Hub) *OrderController {
	return &OrderController{Orders: orders, Retrieval: retrieval, Hub: hub}
}

// POST /orders — checkout, con o sin sesión
func (ctl *OrderController) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	res, err := ctl.Orders.SubmitOrder(c.Request.Context(), req, c.GetString("userID"))
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":           true,
		"data":              res.Order,
		"emailStatus":       gin.H{"attempted": res.EmailAttempted},
		"stockUpdateStatus": res.Stock,
	})
}

// GET /orders/my-orders — requiere token
func (ctl *OrderController) GetMyOrders(c *gin.Context) {
	start := time.Now()
	userID := c.GetString("userID")
	email := c.GetString("userEmail")

	res, err := ctl.Retrieval.GetOrdersForUser(c.Request.Context(), userID, email)
	if err != nil {
		if errors.Is(err, service.ErrNoOrders) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "No orders found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	if res.FromFallback {
		c.JSON(http.StatusOK, gin.H{
			"success":           true,
			"fromFallback":      true,
			"fallbackTimestamp": res.FallbackTimestamp,
			"count":             len(res.Summaries),
			"data":              res.Summaries,
			"message":           "Showing recently cached orders, live data is temporarily unavailable",
			"diagnostics": gin.H{
				"queryTime": res.QueryTime.Milliseconds(),
				"totalTime": time.Since(start).Milliseconds(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(res.Orders),
		"data":    res.Orders,
		"diagnostics": gin.H{
			"queryTime": res.QueryTime.Milliseconds(),
			"totalTime": time.Since(start).Milliseconds(),
		},
	})
}

// GET /light-orders — requiere token, pensado para latencia
func (ctl *OrderController) GetLightOrders(c *gin.Context) {
	userID := c.GetString("userID")
	email := c.GetString("userEmail")

	res, err := ctl.Retrieval.GetLightOrders(c.Request.Context(), userID, email)
	if err != nil {
		if errors.Is(err, service.ErrNoOrders) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "No orders found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	if res.FromFallback {
		c.JSON(http.StatusOK, gin.H{
			"success":           true,
			"fromFallback":      true,
			"fallbackTimestamp": res.FallbackTimestamp,
			"count":             len(res.Summaries),
			"data":              res.Summaries,
			"message":           "Showing recently cached orders, live data is temporarily unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"count":          len(res.Summaries),
		"data":           res.Summaries,
		"processingTime": res.ProcessingTime.Milliseconds(),
	})
}

// GET /orders/track/:number — público, proyección sin email
func (ctl *OrderController) TrackOrder(c *gin.Context) {
	number := c.Param("number")

	o, err := ctl.Retrieval.TrackOrder(c.Request.Context(), number)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": dto.TrackedOrderResponse{
			OrderNumber:       o.OrderNumber,
			CustomerName:      o.CustomerName,
			Status:            o.Status,
			TrackingNumber:    o.TrackingNumber,
			TotalAmount:       o.TotalAmount,
			ItemCount:         len(o.Items),
			EstimatedDelivery: o.EstimatedDelivery,
			CreatedAt:         o.CreatedAt,
		},
	})
}

// POST /orders/notify-new-order — público: procesos externos que crearon
// la orden por otro camino disparan acá la notificación al dashboard
func (ctl *OrderController) NotifyNewOrder(c *gin.Context) {
	var req dto.NotifyOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	userID, _ := identity.Normalize(req.UserID)
	ctl.Hub.Broadcast(model.NotificationEvent{
		Kind:        model.EventNewOrder,
		OrderNumber: req.OrderNumber,
		Payload: map[string]interface{}{
			"customerName": req.CustomerName,
			"totalAmount":  req.TotalAmount,
			"itemCount":    req.ItemCount,
			"userId":       userID,
			"external":     true,
		},
		Timestamp: time.Now().UTC(),
	})

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "notification broadcast"})
}

// PATCH /orders/:number/status — requiere token admin
func (ctl *OrderController) UpdateStatus(c *gin.Context) {
	number := c.Param("number")

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	o, err := ctl.Orders.UpdateStatus(c.Request.Context(), number, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "order not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": o})
}

// GET /admin/orders — admin only
func (ctl *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := ctl.Orders.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(orders), "data": orders})
}

// GET /ws/dashboard — upgrade a websocket
func (ctl *OrderController) Dashboard(c *gin.Context) {
	ws.ServeWS(ctl.Hub, c.Writer, c.Request)
}
