// Command tradematch-seed loads catalog items into the store for local
// development and demos. Without -file it loads a small built-in catalog.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/campusbarter/tradematch/internal/config"
	dbRedis "github.com/campusbarter/tradematch/internal/db/redis"
	"github.com/campusbarter/tradematch/internal/domain"
	logpkg "github.com/campusbarter/tradematch/internal/logger"
	"github.com/campusbarter/tradematch/internal/repository/catalog"
)

// seedItem mirrors the API wire representation of an item.
type seedItem struct {
	ID          string   `json:"id"`
	UserID      string   `json:"user_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Condition   string   `json:"condition"`
	Tags        []string `json:"tags"`
	Status      string   `json:"status"`
}

func main() {
	file := flag.String("file", "", "JSON file with an array of items (default: built-in demo catalog)")
	flag.Parse()

	env := config.GetEnv()
	cfg := config.MustLoad(env)

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	items, err := loadItems(*file)
	if err != nil {
		logger.Fatal("Failed to load seed items", zap.Error(err))
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}

	writer := catalog.NewWriter(store, cfg.Storage.KeyPrefix)

	var created, updated int
	for i := range items {
		isNew, err := writer.Put(ctx, &items[i])
		if err != nil {
			logger.Fatal("Failed to seed item",
				zap.String("item_id", items[i].ID),
				zap.Error(err),
			)
		}
		if isNew {
			created++
		} else {
			updated++
		}
	}

	logger.Info("Catalog seeded",
		zap.Int("created", created),
		zap.Int("updated", updated),
		zap.String("key_prefix", cfg.Storage.KeyPrefix),
	)
}

func loadItems(file string) ([]domain.Item, error) {
	if file == "" {
		return demoCatalog(), nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	var raw []seedItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	items := make([]domain.Item, len(raw))
	for i, r := range raw {
		status := r.Status
		if status == "" {
			status = domain.StatusAvailable
		}
		items[i] = domain.Item{
			ID:          r.ID,
			OwnerID:     r.UserID,
			Title:       r.Title,
			Description: r.Description,
			Category:    r.Category,
			Condition:   r.Condition,
			Tags:        r.Tags,
			Status:      status,
		}
	}
	return items, nil
}

// demoCatalog returns a handful of items spread over three users, enough to
// exercise recommendations, instant matches and the analysis endpoint.
func demoCatalog() []domain.Item {
	return []domain.Item{
		{
			ID: "demo-1", OwnerID: "demo-alice",
			Title:       "TI-84 Calculator",
			Description: "Graphing calculator, lightly used, great for calculus and statistics",
			Category:    "Electronics",
			Condition:   "good",
			Tags:        []string{"calculator", "electronics", "math"},
			Status:      domain.StatusAvailable,
		},
		{
			ID: "demo-2", OwnerID: "demo-alice",
			Title:       "Organic Chemistry Textbook",
			Description: "Clayden 2nd edition with solution manual, some highlighting",
			Category:    "Books",
			Condition:   "fair",
			Tags:        []string{"textbook", "chemistry", "science"},
			Status:      domain.StatusAvailable,
		},
		{
			ID: "demo-3", OwnerID: "demo-bob",
			Title:       "Desk Lamp",
			Description: "Adjustable LED desk lamp with USB charging port",
			Category:    "Furniture",
			Condition:   "like new",
			Tags:        []string{"lamp", "desk", "dorm"},
			Status:      domain.StatusAvailable,
		},
		{
			ID: "demo-4", OwnerID: "demo-bob",
			Title:       "Scientific Calculator",
			Description: "Casio fx-991, perfect for intro math and physics courses",
			Category:    "Electronics",
			Condition:   "good",
			Tags:        []string{"calculator", "electronics"},
			Status:      domain.StatusAvailable,
		},
		{
			ID: "demo-5", OwnerID: "demo-carol",
			Title:       "Mountain Bike",
			Description: "Trek hardtail, 19in frame, recently tuned",
			Category:    "Sports",
			Condition:   "good",
			Tags:        []string{"bike", "outdoors"},
			Status:      domain.StatusAvailable,
		},
		{
			ID: "demo-6", OwnerID: "demo-carol",
			Title:       "Acoustic Guitar",
			Description: "Yamaha FG800 with soft case and spare strings",
			Category:    "Music",
			Condition:   "good",
			Tags:        []string{"guitar", "music", "instrument"},
			Status:      domain.StatusAvailable,
		},
		{
			ID: "demo-7", OwnerID: "demo-carol",
			Title:       "Mini Fridge",
			Description: "Compact dorm fridge, quiet, fits under most desks",
			Category:    "Appliances",
			Condition:   "fair",
			Tags:        []string{"fridge", "dorm", "appliance"},
			Status:      domain.StatusTraded,
		},
	}
}
