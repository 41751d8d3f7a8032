package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/latum0/exonyb-sub001/controllers"
	"github.com/latum0/exonyb-sub001/database"
	"github.com/latum0/exonyb-sub001/kafka"
	"github.com/latum0/exonyb-sub001/logger"
	"github.com/latum0/exonyb-sub001/middleware"
	aws_pkg "github.com/latum0/exonyb-sub001/pkg/aws"
	"github.com/latum0/exonyb-sub001/repository"
	"github.com/latum0/exonyb-sub001/routes"
	"github.com/latum0/exonyb-sub001/services"
)

func main() {
	_ = godotenv.Load()

	logger.Initialize(os.Getenv("APP_ENV"))
	defer logger.Log.Sync()

	cfg, err := LoadConfig()
	if err != nil {
		logger.Log.Fatal("Invalid configuration", zap.Error(err))
	}

	if err := database.Connect(database.Config{
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPassword,
		Name:     cfg.PostgresDB,
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		SSLMode:  cfg.PostgresSSLMode,
		TimeZone: cfg.PostgresTimeZone,
	}, logger.Log); err != nil {
		logger.Log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer database.Close()
	db := database.DB

	var producer kafka.ProducerAPI
	if brokers := cfg.KafkaBrokerList(); len(brokers) > 0 {
		p := kafka.NewProducer(brokers, cfg.OrderTopic, cfg.StockAlertTopic)
		defer p.Close()
		producer = p
	} else {
		logger.Log.Warn("KAFKA_BROKERS not set, order events disabled")
	}

	var snsClient aws_pkg.SNSPublisher
	if cfg.SNSTopicArn != "" {
		awsCfg, err := aws_pkg.LoadAWSConfig(context.Background())
		if err != nil {
			logger.Log.Warn("AWS config unavailable, SNS alerts disabled", zap.Error(err))
		} else {
			snsClient = aws_pkg.NewSNSClient(awsCfg)
		}
	}

	txm := repository.NewGormTxManager(db)
	orderRepo := repository.NewGormOrderRepository(db)
	productRepo := repository.NewGormProductRepository(db)
	clientRepo := repository.NewGormClientRepository(db)
	supplierRepo := repository.NewGormSupplierRepository(db)
	notificationRepo := repository.NewGormNotificationRepository(db)
	returnRepo := repository.NewGormReturnRepository(db)
	auditRepo := repository.NewGormAuditRepository(db)

	notificationSvc := services.NewNotificationService(notificationRepo, productRepo)
	reconciler := services.NewLineReconciler(orderRepo, productRepo, notificationSvc)
	events := services.NewEventPublisher(producer, snsClient, cfg.SNSTopicArn)

	orderSvc := services.NewOrderService(txm, orderRepo, productRepo, clientRepo, auditRepo, notificationSvc, reconciler, events)
	catalogSvc := services.NewCatalogService(txm, productRepo, supplierRepo, auditRepo, notificationSvc)
	clientSvc := services.NewClientService(clientRepo)
	returnSvc := services.NewReturnService(txm, returnRepo, orderRepo, productRepo, auditRepo, notificationSvc)
	auditSvc := services.NewAuditService(auditRepo)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())
	r.Use(middleware.RateLimitMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	routes.Register(r, routes.Controllers{
		Orders:        controllers.NewOrderController(orderSvc),
		Products:      controllers.NewProductController(catalogSvc),
		Clients:       controllers.NewClientController(clientSvc),
		Notifications: controllers.NewNotificationController(notificationSvc),
		Returns:       controllers.NewReturnController(returnSvc),
		Audit:         controllers.NewAuditController(auditSvc),
	})

	logger.Log.Info("Order admin service starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Log.Fatal("Server exited", zap.Error(err))
	}
}
