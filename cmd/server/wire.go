//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"justiniano-server/chat-gateway/internal/config"
	"justiniano-server/chat-gateway/internal/domain/conversation"
	"justiniano-server/chat-gateway/internal/infrastructure/database"
	"justiniano-server/chat-gateway/internal/infrastructure/inference"
	"justiniano-server/chat-gateway/internal/infrastructure/logger"
	repo "justiniano-server/chat-gateway/internal/infrastructure/repository/conversation"
	"justiniano-server/chat-gateway/internal/infrastructure/sdkgen"
	"justiniano-server/chat-gateway/internal/interfaces/httpserver"
	"justiniano-server/chat-gateway/internal/interfaces/httpserver/handlers"
	"justiniano-server/chat-gateway/internal/interfaces/httpserver/handlers/chathandler"
	"justiniano-server/chat-gateway/internal/interfaces/httpserver/handlers/sdkhandler"
)

var conversationSet = wire.NewSet(
	repo.NewRepository,
	wire.Bind(new(conversation.Repository), new(*repo.Repository)),
	conversation.NewService,
)

var upstreamSet = wire.NewSet(
	inference.NewClient,
	wire.Bind(new(chathandler.Inferencer), new(*inference.Client)),
	sdkgen.NewClient,
	wire.Bind(new(sdkhandler.Generator), new(*sdkgen.Client)),
)

// BuildApplication assembles the chat gateway with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newDatabaseConfig,
		newGormDB,
		conversationSet,
		upstreamSet,
		handlers.NewProvider,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}
