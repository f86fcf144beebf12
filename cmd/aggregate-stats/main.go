// Package main implements the scheduled Lambda that aggregates weekly visit
// statistics per institution and publishes them as a stats document.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"ccivisits-backend/application/ports"
	"ccivisits-backend/domain/visit"
	"ccivisits-backend/infrastructure/config"
	"ccivisits-backend/infrastructure/di"
	"ccivisits-backend/pkg/utils"
)

const statsCollection = "STATS"

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

// institutionStats accumulates counts for one institution over a week.
type institutionStats struct {
	Name      string         `json:"name"`
	Total     int            `json:"total"`
	ByStatus  map[string]int `json:"by_status"`
	NoteCount int            `json:"note_count"`
}

func handler(ctx context.Context, event events.CloudWatchEvent) error {
	logger := container.Logger

	// Aggregate the week that just ended.
	weekStart, weekEnd := utils.WeekBounds(time.Now().AddDate(0, 0, -7))
	visits, err := container.VisitRepo.ListByDateRange(ctx, weekStart, weekEnd)
	if err != nil {
		return fmt.Errorf("failed to list visits for week: %w", err)
	}

	byInstitution := aggregate(visits)

	weekKey := weekStart.Format("2006-01-02")
	doc := ports.Document{
		"WeekStart":   weekKey,
		"WeekEnd":     weekEnd.Format("2006-01-02"),
		"VisitCount":  len(visits),
		"GeneratedAt": time.Now().Format(time.RFC3339),
	}
	for instID, stats := range byInstitution {
		doc["inst_"+instID] = stats
	}

	if err := container.DocumentStore.Update(ctx, statsCollection, weekKey, doc); err != nil {
		return fmt.Errorf("failed to store weekly stats: %w", err)
	}

	container.Metrics.RecordCount(ctx, "WeeklyVisits", "Week", weekKey, float64(len(visits)))

	logger.Info("weekly stats aggregated",
		zap.String("week", weekKey),
		zap.Int("visit_count", len(visits)),
		zap.Int("institutions", len(byInstitution)),
	)
	return nil
}

func aggregate(visits []*visit.Visit) map[string]*institutionStats {
	byInstitution := make(map[string]*institutionStats)
	for _, v := range visits {
		stats, ok := byInstitution[v.InstitutionID]
		if !ok {
			stats = &institutionStats{
				Name:     v.InstitutionName,
				ByStatus: make(map[string]int),
			}
			byInstitution[v.InstitutionID] = stats
		}
		stats.Total++
		stats.ByStatus[string(v.Status)]++
		stats.NoteCount += len(v.Notes)
	}
	return byInstitution
}

func main() {
	lambda.Start(handler)
}
