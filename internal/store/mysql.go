package store

import (
	"context"
	"database/sql"
	"log"

	"github.com/vidai-app/vidai-golang/internal/models"
)

// MySQLStore implements Store on top of a *sql.DB connection pool.
type MySQLStore struct {
	DB *sql.DB
}

// NewMySQLStore wraps an existing connection pool.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{DB: db}
}

// Seed inserts the default subscription plan catalog and the runtime
// configuration rows if the tables are still empty. Safe to call on
// every boot.
func (s *MySQLStore) Seed(ctx context.Context) error {
	var planCount int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM subscription_plans`).Scan(&planCount); err != nil {
		return err
	}

	if planCount == 0 {
		for _, plan := range DefaultPlans() {
			if err := s.CreatePlan(ctx, plan); err != nil {
				return err
			}
		}
		log.Println("Seeded default subscription plans")
	}

	for _, cfg := range DefaultConfigs() {
		_, err := s.DB.ExecContext(ctx, `
			INSERT IGNORE INTO api_configs (name, value, description, updated_at)
			VALUES (?, ?, ?, NOW())`,
			cfg.Name, cfg.Value, cfg.Description)
		if err != nil {
			return err
		}
	}

	return nil
}

// DefaultPlans is the seed catalog: Free, Pro and Business.
func DefaultPlans() []*models.SubscriptionPlan {
	return []*models.SubscriptionPlan{
		{
			Name:            "Free",
			PriceMonthly:    0,
			DailyVideoLimit: 2,
			DurationLimit:   60,
			Resolution:      "720p",
			HasWatermark:    true,
			CustomAiModels:  false,
		},
		{
			Name:            "Pro",
			PriceMonthly:    99,
			DailyVideoLimit: 10,
			DurationLimit:   180,
			Resolution:      "1080p",
			HasWatermark:    false,
			CustomAiModels:  true,
		},
		{
			Name:            "Business",
			PriceMonthly:    299,
			DailyVideoLimit: 50,
			DurationLimit:   300,
			Resolution:      "4K",
			HasWatermark:    false,
			CustomAiModels:  true,
		},
	}
}

// DefaultConfigs lists the runtime-tunable configuration rows. Values
// start empty; the config provider falls back to the process
// environment until an admin sets them.
func DefaultConfigs() []*models.APIConfig {
	return []*models.APIConfig{
		{Name: "DEEPSEEK_API_KEY", Description: "Deepseek key used for scene segmentation"},
		{Name: "XAI_API_KEY", Description: "xAI key used for premium scene enhancement"},
		{Name: "HUGGINGFACE_API_KEY", Description: "HuggingFace key used for image synthesis"},
		{Name: "GEMINI_API_KEY", Description: "Gemini key used for default enhancement and render summaries"},
		{Name: "GROK_ENHANCEMENT_ENABLED", Value: "true", Description: "Enable the premium Grok enhancement backend"},
	}
}
