//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"ccivisits-backend/application/commands/bus"
	"ccivisits-backend/application/ports"
	querybus "ccivisits-backend/application/queries/bus"
	"ccivisits-backend/application/services"
	"ccivisits-backend/infrastructure/config"
	"ccivisits-backend/infrastructure/persistence/dynamodb"
	"ccivisits-backend/infrastructure/persistence/memory"
	"ccivisits-backend/interfaces/http/rest"
	"ccivisits-backend/pkg/auth"
	"ccivisits-backend/pkg/observability"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	Logger          *zap.Logger
	VisitRepo       ports.VisitRepository
	HistoryRepo     ports.HistoryRepository
	UserRepo        ports.UserRepository
	InstitutionRepo ports.InstitutionRepository
	DocumentStore   *dynamodb.DocumentStore
	DistributedLock *dynamodb.DistributedLock
	EventBus        ports.EventBus
	ChangeFeed      *memory.ChangeFeed
	Connectivity    *memory.ConnectivityMonitor
	HistoryService  *services.HistoryService
	ReorderService  *services.ReorderService
	CommandBus      *bus.CommandBus
	QueryBus        *querybus.QueryBus
	Metrics         *observability.Metrics
	Tracer          *observability.Tracer
	JWTValidator    *auth.JWTValidator
	Router          *rest.Router
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideChangeFeed,
	ProvideVisitRepository,
	ProvideHistoryRepository,
	ProvideUserRepository,
	ProvideInstitutionRepository,
	ProvideDocumentStore,
	ProvideDistributedLock,
	ProvideEventBus,
	ProvideMetrics,
	ProvideTracer,
	ProvideJWTValidator,
	ProvidePendingOrderQueue,
	ProvideConnectivityMonitor,
	ProvideHistoryService,
	ProvideReorderService,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
