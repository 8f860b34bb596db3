package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/nicholasjackson/env"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kahvecikaan/product-catalog/internal/controller"
	"github.com/kahvecikaan/product-catalog/internal/domain"
	"github.com/kahvecikaan/product-catalog/internal/events"
	"github.com/kahvecikaan/product-catalog/internal/files"
	"github.com/kahvecikaan/product-catalog/internal/repository"
	"github.com/kahvecikaan/product-catalog/internal/service"
	grpcTransport "github.com/kahvecikaan/product-catalog/internal/transport/grpc"
	httpTransport "github.com/kahvecikaan/product-catalog/internal/transport/http"
	websocketTransport "github.com/kahvecikaan/product-catalog/internal/transport/websocket"
)

// Environment variables
var (
	bindAddress = env.String("BIND_ADDRESS", false,
		":9090", "Bind address for the server")
	logLevel = env.String("LOG_LEVEL", false,
		"debug", "Log output level for the server [debug, info, trace]")
	storeDriver = env.String("STORE_DRIVER", false,
		"memory", "Product store [memory, postgres, sqlite3, mongo]")
	databaseURL = env.String("DATABASE_URL", false,
		"", "DSN for the postgres or sqlite3 store")
	mongoURI = env.String("MONGO_URI", false,
		"mongodb://localhost:27017", "Connection URI for the mongo store")
	mongoDatabase = env.String("MONGO_DATABASE", false,
		"product_catalog", "Database name for the mongo store")
	imageBasePath = env.String("IMAGE_BASE_PATH", false,
		"./imagestore", "Directory product images are stored in")
	imageMaxSize = env.Int("IMAGE_MAX_SIZE", false,
		5*1024*1024, "Maximum size in bytes of an uploaded image")
	amqpURL = env.String("AMQP_URL", false,
		"", "RabbitMQ URL product events are forwarded to, disabled when empty")
	amqpExchange = env.String("AMQP_EXCHANGE", false,
		"product-events", "Exchange product events are published on")
	grpcAddress = env.String("GRPC_ADDRESS", false,
		"", "Bind address for the gRPC health server, disabled when empty")
	corsOrigins = env.String("CORS_ORIGINS", false,
		"http://localhost:3000", "Comma separated list of allowed CORS origins")
)

func main() {
	if err := env.Parse(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "product-catalog",
		Level: hclog.LevelFromString(*logLevel),
	})

	// Create a standard logger for the HTTP server
	standardLogger := logger.StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true})

	repo, closeStore, err := newRepository(context.Background(), logger.Named("store"))
	if err != nil {
		logger.Error("Unable to initialise product store", "driver", *storeDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// The event bus is shared by the service, the websocket feed and the broker forwarder
	eventBus := events.NewEventBus[any]()

	var forwarder *events.AMQPForwarder
	if *amqpURL != "" {
		conn, err := amqp.Dial(*amqpURL)
		if err != nil {
			logger.Error("Failed to connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer conn.Close()

		ch, err := conn.Channel()
		if err != nil {
			logger.Error("Failed to open RabbitMQ channel", "error", err)
			os.Exit(1)
		}
		defer ch.Close()

		if err := events.DeclareExchange(ch, *amqpExchange); err != nil {
			logger.Error("Failed to declare exchange", "error", err)
			os.Exit(1)
		}

		forwarder = events.NewAMQPForwarder(logger.Named("amqp-forwarder"), eventBus, ch, *amqpExchange)
	}

	ps := service.NewProductService(repo, eventBus, logger.Named("product-service"))
	pc := controller.NewProductController(ps)

	imageStore, err := files.NewLocal(*imageBasePath, *imageMaxSize)
	if err != nil {
		logger.Error("Unable to create image storage", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	origins := splitOrigins(*corsOrigins)
	router := httpTransport.NewRouter(httpTransport.RouterConfig{
		Products:       httpTransport.NewProductHandler(pc, logger.Named("http-handler")),
		Images:         httpTransport.NewImageHandler(logger.Named("images"), imageStore),
		WebSocket:      websocketTransport.NewHandler(logger.Named("websocket-handler"), eventBus, origins...),
		Validator:      domain.NewValidation(),
		Logger:         logger,
		Registry:       registry,
		AllowedOrigins: origins,
	})

	server := &http.Server{
		Addr:         *bindAddress,
		Handler:      router,
		ErrorLog:     standardLogger,
		IdleTimeout:  120 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "bind_address", *bindAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Error starting server", "error", err)
			os.Exit(1)
		}
	}()

	var healthServer *grpcTransport.HealthServer
	if *grpcAddress != "" {
		lis, err := net.Listen("tcp", *grpcAddress)
		if err != nil {
			logger.Error("Unable to create gRPC listener", "error", err)
			os.Exit(1)
		}

		healthServer = grpcTransport.NewHealthServer(logger.Named("grpc-health"))
		go func() {
			if err := healthServer.Serve(lis); err != nil {
				logger.Error("Failed to serve gRPC health server", "error", err)
				os.Exit(1)
			}
		}()
	}

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Received signal, shutting down", "signal", sig)

	if healthServer != nil {
		healthServer.Shutdown()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down server", "error", err)
	}

	if err := ps.Close(); err != nil {
		logger.Error("Error closing product service", "error", err)
	}

	if forwarder != nil {
		forwarder.Close()
	}
}

// newRepository selects the product store from STORE_DRIVER and returns a
// function releasing its connections.
func newRepository(ctx context.Context, logger hclog.Logger) (repository.ProductRepository, func(), error) {
	switch *storeDriver {
	case "memory":
		logger.Info("Using in-memory product store")
		return repository.NewMemoryProductRepository(), func() {}, nil

	case repository.DriverPostgres, repository.DriverSQLite:
		db, err := repository.OpenSQL(ctx, *storeDriver, *databaseURL)
		if err != nil {
			return nil, nil, err
		}
		repo, err := repository.NewSQLProductRepository(ctx, db, *storeDriver)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("Using SQL product store", "driver", *storeDriver)
		return repo, closer(logger, db), nil

	case "mongo":
		client, err := repository.ConnectMongo(ctx, *mongoURI, 15*time.Second)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using mongo product store", "database", *mongoDatabase)
		return repository.NewMongoProductRepository(client.Database(*mongoDatabase)), func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				logger.Error("Error disconnecting from mongo", "error", err)
			}
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", *storeDriver)
	}
}

func closer(logger hclog.Logger, c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			logger.Error("Error closing product store", "error", err)
		}
	}
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
