package di

import (
	"context"
	"fmt"

	"ccivisits-backend/application/commands"
	"ccivisits-backend/application/commands/bus"
	commands_handlers "ccivisits-backend/application/commands/handlers"
	"ccivisits-backend/application/ports"
	"ccivisits-backend/application/queries"
	querybus "ccivisits-backend/application/queries/bus"
	queries_handlers "ccivisits-backend/application/queries/handlers"
	"ccivisits-backend/application/services"
	"ccivisits-backend/infrastructure/config"
	"ccivisits-backend/infrastructure/messaging/eventbridge"
	"ccivisits-backend/infrastructure/persistence/dynamodb"
	"ccivisits-backend/infrastructure/persistence/memory"
	"ccivisits-backend/interfaces/http/rest"
	"ccivisits-backend/pkg/auth"
	"ccivisits-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zapCfg.Build()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideChangeFeed creates the in-process change feed watchers subscribe to
func ProvideChangeFeed(logger *zap.Logger) *memory.ChangeFeed {
	return memory.NewChangeFeed(logger)
}

// ProvideVisitRepository creates a visit repository; writes republish the
// day's result set on the change feed
func ProvideVisitRepository(client *awsdynamodb.Client, cfg *config.Config, feed *memory.ChangeFeed, logger *zap.Logger) ports.VisitRepository {
	repo := dynamodb.NewVisitRepository(
		client,
		cfg.DynamoDBTable,
		cfg.DayIndexName,
		logger,
	)
	return memory.NewWatchedVisitRepository(repo, feed, logger)
}

// ProvideHistoryRepository creates a history repository
func ProvideHistoryRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.HistoryRepository {
	return dynamodb.NewHistoryRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideUserRepository creates a user repository
func ProvideUserRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.UserRepository {
	return dynamodb.NewUserRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideInstitutionRepository creates an institution repository
func ProvideInstitutionRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.InstitutionRepository {
	return dynamodb.NewInstitutionRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideDocumentStore creates a generic document store over the shared table
func ProvideDocumentStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) *dynamodb.DocumentStore {
	return dynamodb.NewDocumentStore(client, cfg.DynamoDBTable, logger)
}

// ProvideDistributedLock creates a distributed lock instance
func ProvideDistributedLock(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) *dynamodb.DistributedLock {
	return dynamodb.NewDistributedLock(client, cfg.DynamoDBTable, logger)
}

// ProvideEventBus creates an event bus
func ProvideEventBus(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventBus {
	return eventbridge.NewEventBridgePublisher(
		client,
		cfg.EventBusName,
		logger,
	)
}

// ProvideMetrics creates metrics instance
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	if !cfg.EnableMetrics {
		return observability.NewMetrics(fmt.Sprintf("CCIVisits/%s", cfg.Environment), nil, logger)
	}
	return observability.NewMetrics(fmt.Sprintf("CCIVisits/%s", cfg.Environment), client, logger)
}

// ProvideTracer creates an X-Ray tracer, or nil when tracing is disabled
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	if !cfg.EnableTracing {
		return nil
	}
	return observability.NewTracer("ccivisits-backend")
}

// ProvideJWTValidator creates the bearer token validator
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	return auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     cfg.JWTSecret,
		Issuer:        cfg.JWTIssuer,
	})
}

// ProvidePendingOrderQueue creates the queue for offline order commits
func ProvidePendingOrderQueue() ports.PendingOrderQueue {
	return memory.NewPendingOrderQueue()
}

// ProvideConnectivityMonitor creates the connectivity monitor
func ProvideConnectivityMonitor() *memory.ConnectivityMonitor {
	return memory.NewConnectivityMonitor()
}

// ProvideHistoryService creates the version history service
func ProvideHistoryService(
	historyRepo ports.HistoryRepository,
	userRepo ports.UserRepository,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *services.HistoryService {
	return services.NewHistoryService(historyRepo, userRepo, tracer, logger)
}

// ProvideReorderService creates the reorder service and wires queued
// commits to replay when connectivity is restored.
func ProvideReorderService(
	visitRepo ports.VisitRepository,
	queue ports.PendingOrderQueue,
	connectivity *memory.ConnectivityMonitor,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *services.ReorderService {
	svc := services.NewReorderService(visitRepo, queue, connectivity, eventBus, logger)
	connectivity.OnRestore(func() {
		if err := svc.FlushPending(context.Background()); err != nil {
			logger.Warn("failed to flush pending order commits", zap.Error(err))
		}
	})
	return svc
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	visitRepo ports.VisitRepository,
	instRepo ports.InstitutionRepository,
	userRepo ports.UserRepository,
	history *services.HistoryService,
	reorder *services.ReorderService,
	eventBus ports.EventBus,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *bus.CommandBus {
	commandBus := bus.NewCommandBus(metrics)

	// Register CreateVisitCommand handler
	createVisitHandler := commands_handlers.NewCreateVisitHandler(visitRepo, instRepo, userRepo, eventBus, logger)
	commandBus.Register(&commands.CreateVisitCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			createCmd, ok := cmd.(*commands.CreateVisitCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return createVisitHandler.Handle(ctx, createCmd)
		},
	})

	// Register UpdateVisitCommand handler
	updateVisitHandler := commands_handlers.NewUpdateVisitHandler(visitRepo, history, eventBus, logger)
	commandBus.Register(&commands.UpdateVisitCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			updateCmd, ok := cmd.(*commands.UpdateVisitCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return updateVisitHandler.Handle(ctx, updateCmd)
		},
	})

	// Register CommitDayOrderCommand handler
	commitOrderHandler := commands_handlers.NewCommitDayOrderHandler(reorder, logger)
	commandBus.Register(&commands.CommitDayOrderCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			commitCmd, ok := cmd.(*commands.CommitDayOrderCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return commitOrderHandler.Handle(ctx, commitCmd)
		},
	})

	return commandBus
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	visitRepo ports.VisitRepository,
	historyRepo ports.HistoryRepository,
	userRepo ports.UserRepository,
	instRepo ports.InstitutionRepository,
	logger *zap.Logger,
) *querybus.QueryBus {
	queryBus := querybus.NewQueryBus()

	// Register GetVisitQuery and ListDayVisitsQuery handlers
	visitQueryHandler := queries_handlers.NewVisitQueryHandler(visitRepo, logger)
	queryBus.Register(queries.GetVisitQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetVisitQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return visitQueryHandler.HandleGetVisit(ctx, getQuery)
		},
	})
	queryBus.Register(queries.ListDayVisitsQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListDayVisitsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return visitQueryHandler.HandleListDayVisits(ctx, listQuery)
		},
	})

	// Register GetVisitHistoryQuery handler
	historyQueryHandler := queries_handlers.NewHistoryQueryHandler(historyRepo, logger)
	queryBus.Register(queries.GetVisitHistoryQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			historyQuery, ok := query.(queries.GetVisitHistoryQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return historyQueryHandler.HandleGetVisitHistory(ctx, historyQuery)
		},
	})

	// Register directory query handlers
	directoryQueryHandler := queries_handlers.NewDirectoryQueryHandler(userRepo, instRepo, logger)
	queryBus.Register(queries.ListUsersQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListUsersQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return directoryQueryHandler.HandleListUsers(ctx, listQuery)
		},
	})
	queryBus.Register(queries.ListInstitutionsQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListInstitutionsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return directoryQueryHandler.HandleListInstitutions(ctx, listQuery)
		},
	})

	return queryBus
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	reorder *services.ReorderService,
	userRepo ports.UserRepository,
	instRepo ports.InstitutionRepository,
	eventBus ports.EventBus,
	validator *auth.JWTValidator,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(commandBus, queryBus, reorder, userRepo, instRepo, eventBus, validator, cfg.EnableCORS, logger)
}
