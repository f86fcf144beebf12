// Package main implements the Lambda that mirrors role changes into the
// custom claims read at token issuance. It is triggered by EventBridge
// when a user.role_changed event is published.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"ccivisits-backend/application/ports"
	"ccivisits-backend/infrastructure/config"
	"ccivisits-backend/infrastructure/di"
)

const claimsCollection = "CLAIMS"

// roleChangedDetail is the EventBridge detail payload for user.role_changed.
type roleChangedDetail struct {
	UserID  string `json:"user_id"`
	OldRole string `json:"old_role"`
	NewRole string `json:"new_role"`
}

var container *di.Container

func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
}

func handler(ctx context.Context, event events.EventBridgeEvent) error {
	logger := container.Logger

	if event.DetailType != "user.role_changed" {
		logger.Debug("skipping event", zap.String("detail_type", event.DetailType))
		return nil
	}

	var detail roleChangedDetail
	if err := json.Unmarshal(event.Detail, &detail); err != nil {
		return fmt.Errorf("failed to unmarshal event detail: %w", err)
	}
	if detail.UserID == "" || detail.NewRole == "" {
		return fmt.Errorf("role change event missing user_id or new_role")
	}

	// Confirm the directory record before touching claims; the event may
	// be replayed after a later change superseded it.
	user, err := container.UserRepo.GetByID(ctx, detail.UserID)
	if err != nil {
		return fmt.Errorf("failed to load user %s: %w", detail.UserID, err)
	}
	if string(user.Role) != detail.NewRole {
		logger.Info("stale role change event, directory has moved on",
			zap.String("user_id", detail.UserID),
			zap.String("event_role", detail.NewRole),
			zap.String("directory_role", string(user.Role)),
		)
		return nil
	}

	claims := ports.Document{
		"Role":     detail.NewRole,
		"Email":    user.Email,
		"SyncedAt": time.Now().Format(time.RFC3339),
	}
	if err := container.DocumentStore.Update(ctx, claimsCollection, detail.UserID, claims); err != nil {
		return fmt.Errorf("failed to sync claims for user %s: %w", detail.UserID, err)
	}

	logger.Info("role synced to claims",
		zap.String("user_id", detail.UserID),
		zap.String("old_role", detail.OldRole),
		zap.String("new_role", detail.NewRole),
	)
	return nil
}

func main() {
	lambda.Start(handler)
}
