// Copyright (C) 2025 TaskGym AI (dev@taskgym.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package environment provides the task-tracking RL environment
// service.
//
// This package contains the main service type that coordinates all
// components: HTTP routing, the BadgerDB task store, the rule
// validator with its episode state, and observability infrastructure.
//
// # Usage
//
//	cfg := environment.Config{Port: 8000, InMemory: true}
//	svc, err := environment.New(cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(svc.Run())
package environment

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/taskgym-ai/taskgym/pkg/extensions"
	"github.com/taskgym-ai/taskgym/services/environment/datatypes"
	"github.com/taskgym-ai/taskgym/services/environment/observability"
	"github.com/taskgym-ai/taskgym/services/environment/routes"
	"github.com/taskgym-ai/taskgym/services/environment/rules"
	"github.com/taskgym-ai/taskgym/services/environment/store"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Service defines the contract for the environment service.
//
// # Description
//
// Service abstracts the environment lifecycle, enabling testing and
// alternative implementations. Run() blocks and should only be called
// once per instance.
type Service interface {
	// Run starts the HTTP server and blocks until shutdown or error.
	Run() error

	// Router returns the underlying Gin engine for testing.
	// Callers must not modify the router.
	Router() *gin.Engine

	// Close releases the task store and tracing resources. Safe to
	// call when Run was never started; Run calls it on exit.
	Close() error
}

// =============================================================================
// Configuration
// =============================================================================

// Config holds environment service configuration options.
// All fields are optional with defaults applied by New().
type Config struct {
	// Port is the HTTP server port. Default: 8000
	Port int

	// DataDir is the directory for BadgerDB files.
	// Default: "./data/taskgym". Ignored when InMemory is true.
	DataDir string

	// InMemory runs the task store without disk persistence.
	// Useful for tests and throwaway training runs.
	InMemory bool

	// Seed seeds the RNG used for board seeding. 0 means derive from
	// the wall clock, which gives a different board every start.
	Seed int64

	// OTelEndpoint is the OpenTelemetry collector endpoint.
	// Default: "localhost:4317". Only used when EnableTracing is true.
	OTelEndpoint string

	// EnableTracing enables OTLP trace export and the otelgin
	// middleware. Default: false (local training runs rarely have a
	// collector).
	EnableTracing bool

	// EnableMetrics enables the Prometheus /metrics endpoint
	// instrumentation. Default: true.
	EnableMetrics bool

	// AuthToken, when non-empty, gates /api routes behind a static
	// bearer token. Empty means open local access.
	AuthToken string

	// GinMode sets the Gin framework mode.
	// Valid values: "debug", "release", "test"
	// Default: uses GIN_MODE env var or "debug"
	GinMode string
}

// =============================================================================
// Implementation
// =============================================================================

// service implements Service for production use.
//
// Thread-safe after construction. All fields are read-only after New()
// returns; mutable episode state lives inside the validator.
type service struct {
	config        Config
	router        *gin.Engine
	taskStore     *store.TaskStore
	validator     *rules.Validator
	authProvider  extensions.AuthProvider
	rng           *rand.Rand
	tracerCleanup func(context.Context)
}

// =============================================================================
// Constructor
// =============================================================================

// New creates a new environment Service with the given configuration.
//
// # Description
//
// New initializes all components:
//  1. Applies default configuration for missing values
//  2. Registers custom binding validations (status, priority enums)
//  3. Initializes OpenTelemetry tracing (when enabled)
//  4. Initializes Prometheus metrics (when enabled)
//  5. Opens the BadgerDB task store and seeds it if empty
//  6. Sets up HTTP routes
//
// If authProvider is nil, NopAuthProvider is used unless AuthToken is
// set, in which case a StaticTokenAuthProvider gates the API.
//
// # Outputs
//
//   - Service: Ready-to-run environment service
//   - error: Non-nil if initialization fails
func New(cfg Config, authProvider extensions.AuthProvider) (Service, error) {
	s := &service{
		config: applyConfigDefaults(cfg),
	}

	if s.config.GinMode != "" {
		gin.SetMode(s.config.GinMode)
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := datatypes.RegisterValidations(v); err != nil {
			return nil, fmt.Errorf("failed to register binding validations: %w", err)
		}
	}

	if s.config.EnableTracing {
		cleanup, err := s.initTracer()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize tracer: %w", err)
		}
		s.tracerCleanup = cleanup
	}

	if s.config.EnableMetrics {
		observability.InitMetrics()
		slog.Info("Initialized Prometheus metrics for environment")
	}

	s.authProvider = authProvider
	if s.authProvider == nil {
		if s.config.AuthToken != "" {
			s.authProvider = &extensions.StaticTokenAuthProvider{Token: s.config.AuthToken}
		} else {
			s.authProvider = &extensions.NopAuthProvider{}
		}
	}

	seed := s.config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s.rng = rand.New(rand.NewSource(seed))

	if err := s.initStore(); err != nil {
		s.Close()
		return nil, err
	}

	s.validator = rules.NewValidator()

	s.initRouter()
	return s, nil
}

// =============================================================================
// Service Interface Methods
// =============================================================================

// Run starts the HTTP server and blocks until shutdown or error.
func (s *service) Run() error {
	defer func() {
		if err := s.Close(); err != nil {
			slog.Warn("cleanup error on shutdown", "error", err)
		}
	}()

	addr := fmt.Sprintf(":%d", s.config.Port)
	slog.Info("Starting environment server", "port", s.config.Port)

	return s.router.Run(addr)
}

// Router returns the underlying Gin engine for testing.
func (s *service) Router() *gin.Engine {
	return s.router
}

// Close releases the task store and tracing resources.
func (s *service) Close() error {
	var err error
	if s.taskStore != nil {
		err = s.taskStore.Close()
		s.taskStore = nil
	}
	if s.tracerCleanup != nil {
		s.tracerCleanup(context.Background())
		s.tracerCleanup = nil
	}
	return err
}

// =============================================================================
// Private Initialization Methods
// =============================================================================

// applyConfigDefaults fills in missing configuration values.
func applyConfigDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "./data/taskgym"
	}
	if cfg.OTelEndpoint == "" {
		cfg.OTelEndpoint = "localhost:4317"
	}
	return cfg
}

// initTracer initializes OpenTelemetry distributed tracing.
//
// Uses an insecure gRPC connection, appropriate for collectors on
// internal networks.
func (s *service) initTracer() (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(s.config.OTelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("environment-service")))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	cleanup := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}

	return cleanup, nil
}

// initStore opens the task store and seeds the board when empty.
func (s *service) initStore() error {
	storeCfg := store.DefaultConfig(s.config.DataDir)
	if s.config.InMemory {
		storeCfg = store.InMemoryConfig()
	}
	storeCfg.Logger = slog.Default()

	ts, err := store.Open(storeCfg)
	if err != nil {
		return fmt.Errorf("failed to open task store: %w", err)
	}
	s.taskStore = ts

	seeded, err := ts.Populate(s.rng)
	if err != nil {
		return fmt.Errorf("failed to seed task store: %w", err)
	}
	if seeded > 0 {
		slog.Info("seeded task board", "tasks", seeded)
	}
	return nil
}

// initRouter sets up the Gin HTTP router with all routes.
func (s *service) initRouter() {
	s.router = gin.Default()
	if s.config.EnableTracing {
		s.router.Use(otelgin.Middleware("environment-service"))
	}

	routes.SetupRoutes(s.router, s.taskStore, s.validator, s.authProvider, s.rng)
}

// =============================================================================
// Compile-time Interface Compliance
// =============================================================================

var _ Service = (*service)(nil)
