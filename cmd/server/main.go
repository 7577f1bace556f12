package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"order-lifecycle-service/internal/cache"
	"order-lifecycle-service/internal/config"
	"order-lifecycle-service/internal/controller"
	"order-lifecycle-service/internal/fallback"
	"order-lifecycle-service/internal/mailer"
	"order-lifecycle-service/internal/middleware"
	"order-lifecycle-service/internal/rabbit"
	"order-lifecycle-service/internal/repository"
	"order-lifecycle-service/internal/service"
	"order-lifecycle-service/internal/ws"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	cfg := config.Load()

	// Conexión a MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("no se pudo conectar a MongoDB")
	}
	db := client.Database(cfg.MongoDBName)

	orderRepo := repository.NewMongoOrderRepository(db)
	if err := orderRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("no se pudo crear el índice único de order_number")
	}
	productRepo := repository.NewMongoProductRepository(db)

	// Hub de notificaciones para los dashboards
	hub := ws.NewHub()
	go hub.Run()

	// Mails en segundo plano: delay inicial corto, 3 intentos, backoff fijo
	dispatcher := mailer.NewDispatcher(mailer.NewHTTPSender(cfg.MailURL), 2*time.Second, 5*time.Second, 3)
	dispatcher.Start()

	// Conexión a RabbitMQ. Si el broker no está, el servicio arranca igual:
	// el announce es best-effort y el consumer simplemente no existe.
	var announcer service.Announcer
	if conn, err := amqp091.Dial(cfg.RabbitURL); err != nil {
		log.Warn().Err(err).Msg("RabbitMQ no disponible, arrancando sin broker")
	} else if ch, err := conn.Channel(); err != nil {
		log.Warn().Err(err).Msg("no se pudo abrir canal de RabbitMQ")
	} else {
		if pub, err := rabbit.NewPublisher(ch); err != nil {
			log.Warn().Err(err).Msg("no se pudo declarar el exchange order_placed")
		} else {
			announcer = pub
		}
		rabbit.SetupConsumers(ch, hub)
	}

	// Servicios
	stockService := service.NewStockService(productRepo)
	orderService := service.NewOrderService(orderRepo, stockService, dispatcher, hub, announcer)
	retrievalService := service.NewRetrievalService(
		orderRepo,
		fallback.NewStore(cfg.FallbackFilePath),
		cache.New(30*time.Second, 500),
		cfg.RetrievalTimeout,
	)
	authService := service.NewAuthService(cfg.AuthURL)

	// Handlers
	ctrl := controller.NewOrderController(orderService, retrievalService, hub)

	// Router
	r := gin.Default()

	// Rutas públicas
	r.POST("/orders", middleware.OptionalAuth(authService), ctrl.CreateOrder)
	r.GET("/orders/track/:number", ctrl.TrackOrder)
	r.POST("/orders/notify-new-order", ctrl.NotifyNewOrder)
	r.GET("/ws/dashboard", ctrl.Dashboard)

	// Rutas protegidas (requieren token)
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(authService))

	auth.GET("/orders/my-orders", ctrl.GetMyOrders)
	auth.GET("/light-orders", ctrl.GetLightOrders)

	// Rutas admin
	admin := auth.Group("/admin")
	admin.Use(middleware.AdminOnly())
	admin.GET("/orders", ctrl.GetAllOrders)
	admin.PATCH("/orders/:number/status", ctrl.UpdateStatus)

	log.Info().Str("port", cfg.Port).Msg("Order Lifecycle Service ejecutándose")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server terminó con error")
	}
}
