// Package main implements the scheduled Lambda that exports all visits to CSV.
// It is triggered by an EventBridge schedule; overlapping runs are prevented
// with a DynamoDB lock.
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ccivisits-backend/application/ports"
	domainevents "ccivisits-backend/domain/events"
	"ccivisits-backend/domain/visit"
	"ccivisits-backend/infrastructure/config"
	"ccivisits-backend/infrastructure/di"
	"ccivisits-backend/infrastructure/persistence/dynamodb"
)

const exportCollection = "EXPORT"

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

func handler(ctx context.Context, event events.CloudWatchEvent) error {
	logger := container.Logger
	cfg := container.Config

	lock, err := container.DistributedLock.AcquireLock(ctx, cfg.ExportLockName, "export-visits", 10*time.Minute)
	if err != nil {
		if errors.Is(err, dynamodb.ErrLockHeld) {
			logger.Info("export already running, skipping this run")
			return nil
		}
		return fmt.Errorf("failed to acquire export lock: %w", err)
	}
	defer func() {
		if err := lock.Release(ctx); err != nil {
			logger.Warn("failed to release export lock", zap.Error(err))
		}
	}()

	started := time.Now()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	count := 0
	pageToken := ""
	for {
		visits, next, err := container.VisitRepo.ListAll(ctx, pageToken, cfg.ExportPageSize)
		if err != nil {
			return fmt.Errorf("failed to list visits: %w", err)
		}
		for _, v := range visits {
			if err := w.Write(csvRow(v)); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
			count++
		}
		if next == "" {
			break
		}
		pageToken = next
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	exportID := uuid.New().String()
	record := ports.Document{
		"Status":     "complete",
		"VisitCount": count,
		"SizeBytes":  buf.Len(),
		"Content":    buf.String(),
		"StartedAt":  started.Format(time.RFC3339),
	}
	if err := container.DocumentStore.Update(ctx, exportCollection, exportID, record); err != nil {
		return fmt.Errorf("failed to store export record: %w", err)
	}

	completed := domainevents.NewExportCompleted(exportID, count, buf.Len(), time.Now())
	if err := container.EventBus.Publish(ctx, completed); err != nil {
		logger.Warn("failed to publish export completed event", zap.Error(err))
	}

	container.Metrics.RecordCount(ctx, "ExportedVisits", "Export", "scheduled", float64(count))
	logger.Info("export completed",
		zap.String("export_id", exportID),
		zap.Int("visit_count", count),
		zap.Int("size_bytes", buf.Len()),
		zap.Duration("duration", time.Since(started)),
	)
	return nil
}

func csvHeader() []string {
	return []string{
		"id", "date", "institution_id", "institution_name", "creator_id",
		"status", "person_met", "quality", "hours", "agenda", "debrief",
		"note_count", "display_order", "updated_at",
	}
}

func csvRow(v *visit.Visit) []string {
	return []string{
		v.ID,
		v.DayKey(),
		v.InstitutionID,
		v.InstitutionName,
		v.CreatorID,
		string(v.Status),
		string(v.PersonMet),
		string(v.Quality),
		string(v.Hours),
		v.Agenda,
		v.Debrief,
		strconv.Itoa(len(v.Notes)),
		strconv.Itoa(v.Order),
		v.UpdatedAt.Format(time.RFC3339),
	}
}

func main() {
	lambda.Start(handler)
}
