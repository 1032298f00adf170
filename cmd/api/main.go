package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/transitops/ticket-backoffice/internal/config"
	"github.com/transitops/ticket-backoffice/internal/handlers"
	"github.com/transitops/ticket-backoffice/internal/licensing"
	"github.com/transitops/ticket-backoffice/internal/queue"
	"github.com/transitops/ticket-backoffice/internal/repository"
	"github.com/transitops/ticket-backoffice/internal/services"
	xhttp "github.com/transitops/ticket-backoffice/pkg/http"
	"github.com/transitops/ticket-backoffice/pkg/logger"
	"github.com/transitops/ticket-backoffice/pkg/pg"
	"github.com/transitops/ticket-backoffice/pkg/prom"
	"github.com/transitops/ticket-backoffice/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	// transport (tcp for now)
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 5))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	settlementQ, err := queue.NewQueue(redisAdap, queue.QueueConfig{
		Name:              config.Get().QueueName,
		ConsumerGroup:     config.Get().QueueConsumerGroup,
		ConsumerName:      config.Get().QueueConsumerName,
		MaxRetries:        config.Get().QueueMaxRetries,
		VisibilityTimeout: config.Get().QueueVisibilityTimeout,
		PollInterval:      config.Get().QueuePollInterval,
		BatchSize:         config.Get().QueueBatchSize,
		MaxLen:            config.Get().QueueMaxLen,
		EnableDLQ:         config.Get().QueueEnableDLQ,
	})
	if err != nil {
		logger.Error("failed creating settlement queue", "error", err)
		return
	}

	hostname, _ := os.Hostname()
	err = prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace)
	if err != nil {
		logger.Error("failed to register metrics", "error", err)
	}
	if config.Get().AppDebugMetricsAddr != "" {
		go prom.ListenAndServer(config.Get().AppDebugMetricsAddr, config.Get().AppDebugMetricsURI)
	}

	companyRepo := repository.NewCompanyRepository(db)
	userRepo := repository.NewUserRepository(db)
	deviceRepo := repository.NewDeviceMappingRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	tripCloseRepo := repository.NewTripCloseRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	masterDataRepo := repository.NewMasterDataRepository(db)

	authority := licensing.NewClient(licensing.Config{
		RegisterURL:     config.Get().LicenseRegisterUrl,
		AuthenticateURL: config.Get().LicenseAuthenticateUrl,
		Timeout:         config.Get().LicenseRequestTimeout,
	})

	// services
	tokenService := services.NewTokenService(config.Get().JWTSecret, config.Get().AccessTokenMaxAge, config.Get().RefreshTokenMaxAge)
	licenseService := services.NewLicenseService(companyRepo, authority, config.Get().LicensePollInterval, config.Get().LicensePollTimeout)
	deviceService := services.NewDeviceService(deviceRepo, companyRepo, userRepo)
	admissionService := services.NewAdmissionService(userRepo, companyRepo, deviceService, licenseService, tokenService, prom.IncLoginRejection)
	companyService := services.NewCompanyService(companyRepo)
	userService := services.NewUserService(userRepo)
	ticketService := services.NewTicketService(ticketRepo, tripCloseRepo)
	paymentService := services.NewPaymentService(paymentRepo, settlementQ)
	masterDataService := services.NewMasterDataService(masterDataRepo)
	healthService := services.NewHealthService()

	// v1 handlers
	authHandler := handlers.NewAuthHandler(admissionService, config.Get().CookieSecure)
	deviceHandler := handlers.NewDeviceHandler(deviceService)
	companyHandler := handlers.NewCompanyHandler(companyService, licenseService)
	userHandler := handlers.NewUserHandler(userService)
	ticketHandler := handlers.NewTicketHandler(ticketService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	masterDataHandler := handlers.NewMasterDataHandler(masterDataService)
	healthHandler := handlers.NewHealthHandler(healthService)

	auth := handlers.RequireSession(tokenService)

	g := s.Router.Group("/api/v1")
	handlers.RegisterAuthRoutes(g, authHandler, auth)
	handlers.RegisterDeviceCallbackRoutes(g, ticketHandler)
	handlers.RegisterPaymentWebhookRoutes(g, paymentHandler)
	handlers.RegisterDeviceRoutes(g, deviceHandler, auth)
	handlers.RegisterCompanyRoutes(g, companyHandler, auth)
	handlers.RegisterUserRoutes(g, userHandler, auth)
	handlers.RegisterTicketRoutes(g, ticketHandler, auth)
	handlers.RegisterPaymentRoutes(g, paymentHandler, auth)
	handlers.RegisterMasterDataRoutes(g, masterDataHandler, auth)
	handlers.RegisterHealthRoutes(g, healthHandler)

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	select {
	case <-c:
		s.Shutdown()
	}
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
