package store

import (
	"context"
	"database/sql"
	"errors"
)

func (s *MySQLStore) GetDailyUsage(ctx context.Context, userID int64, date string) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT videos_created FROM daily_usage WHERE user_id = ? AND usage_date = ?`,
		userID, date).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}

// IncrementUsageIfBelow bumps the per-day counter only while it is
// under limit. The row is created lazily; the guarded UPDATE is a
// single atomic statement, so two concurrent creation requests can
// never both pass a limit with one slot left.
func (s *MySQLStore) IncrementUsageIfBelow(ctx context.Context, userID int64, date string, limit int) (int, bool, error) {
	_, err := s.DB.ExecContext(ctx,
		`INSERT IGNORE INTO daily_usage (user_id, usage_date, videos_created) VALUES (?, ?, 0)`,
		userID, date)
	if err != nil {
		return 0, false, err
	}

	result, err := s.DB.ExecContext(ctx,
		`UPDATE daily_usage SET videos_created = videos_created + 1
		 WHERE user_id = ? AND usage_date = ? AND videos_created < ?`,
		userID, date, limit)
	if err != nil {
		return 0, false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, false, err
	}

	count, err := s.GetDailyUsage(ctx, userID, date)
	if err != nil {
		return 0, false, err
	}
	return count, rows > 0, nil
}
