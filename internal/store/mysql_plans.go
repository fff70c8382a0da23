package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vidai-app/vidai-golang/internal/models"
)

//
// --- Subscription Plans ---
//

func (s *MySQLStore) GetPlan(ctx context.Context, id int64) (*models.SubscriptionPlan, error) {
	query := `
		SELECT id, name, price_monthly, daily_video_limit, duration_limit, resolution, has_watermark, custom_ai_models
		FROM subscription_plans WHERE id = ?`

	var plan models.SubscriptionPlan
	err := s.DB.QueryRowContext(ctx, query, id).Scan(
		&plan.ID,
		&plan.Name,
		&plan.PriceMonthly,
		&plan.DailyVideoLimit,
		&plan.DurationLimit,
		&plan.Resolution,
		&plan.HasWatermark,
		&plan.CustomAiModels,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (s *MySQLStore) GetAllPlans(ctx context.Context) ([]*models.SubscriptionPlan, error) {
	query := `
		SELECT id, name, price_monthly, daily_video_limit, duration_limit, resolution, has_watermark, custom_ai_models
		FROM subscription_plans ORDER BY price_monthly ASC`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []*models.SubscriptionPlan
	for rows.Next() {
		var plan models.SubscriptionPlan
		if err := rows.Scan(
			&plan.ID,
			&plan.Name,
			&plan.PriceMonthly,
			&plan.DailyVideoLimit,
			&plan.DurationLimit,
			&plan.Resolution,
			&plan.HasWatermark,
			&plan.CustomAiModels,
		); err != nil {
			return nil, err
		}
		plans = append(plans, &plan)
	}
	return plans, rows.Err()
}

func (s *MySQLStore) CreatePlan(ctx context.Context, plan *models.SubscriptionPlan) error {
	query := `
		INSERT INTO subscription_plans (name, price_monthly, daily_video_limit, duration_limit, resolution, has_watermark, custom_ai_models)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	result, err := s.DB.ExecContext(ctx, query,
		plan.Name,
		plan.PriceMonthly,
		plan.DailyVideoLimit,
		plan.DurationLimit,
		plan.Resolution,
		plan.HasWatermark,
		plan.CustomAiModels,
	)
	if err != nil {
		return err
	}
	plan.ID, err = result.LastInsertId()
	return err
}

//
// --- User Subscriptions ---
//

func (s *MySQLStore) GetActiveSubscription(ctx context.Context, userID int64) (*models.Subscription, error) {
	query := `
		SELECT id, user_id, plan_id, start_date, end_date, active
		FROM subscriptions
		WHERE user_id = ? AND active = TRUE
		ORDER BY start_date DESC LIMIT 1`

	var sub models.Subscription
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(
		&sub.ID,
		&sub.UserID,
		&sub.PlanID,
		&sub.StartDate,
		&sub.EndDate,
		&sub.Active,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (s *MySQLStore) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	if sub.StartDate.IsZero() {
		sub.StartDate = time.Now()
	}
	sub.Active = true

	query := `
		INSERT INTO subscriptions (user_id, plan_id, start_date, end_date, active)
		VALUES (?, ?, ?, ?, TRUE)`

	result, err := s.DB.ExecContext(ctx, query, sub.UserID, sub.PlanID, sub.StartDate, sub.EndDate)
	if err != nil {
		return err
	}
	sub.ID, err = result.LastInsertId()
	return err
}

func (s *MySQLStore) ChangeSubscriptionPlan(ctx context.Context, id, planID int64) error {
	result, err := s.DB.ExecContext(ctx,
		`UPDATE subscriptions SET plan_id = ?, start_date = ? WHERE id = ?`,
		planID, time.Now(), id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MySQLStore) DeactivateSubscription(ctx context.Context, id int64) error {
	result, err := s.DB.ExecContext(ctx,
		`UPDATE subscriptions SET active = FALSE, end_date = ? WHERE id = ?`,
		time.Now(), id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// RevenueTotal sums the monthly price of every active subscription.
func (s *MySQLStore) RevenueTotal(ctx context.Context) (int, error) {
	query := `
		SELECT COALESCE(SUM(p.price_monthly), 0)
		FROM subscriptions s
		JOIN subscription_plans p ON p.id = s.plan_id
		WHERE s.active = TRUE`

	var total int
	err := s.DB.QueryRowContext(ctx, query).Scan(&total)
	return total, err
}
