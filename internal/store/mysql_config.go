package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vidai-app/vidai-golang/internal/models"
)

func (s *MySQLStore) GetConfig(ctx context.Context, name string) (*models.APIConfig, error) {
	var cfg models.APIConfig
	err := s.DB.QueryRowContext(ctx,
		`SELECT name, value, description, updated_at FROM api_configs WHERE name = ?`,
		name).Scan(&cfg.Name, &cfg.Value, &cfg.Description, &cfg.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

func (s *MySQLStore) GetAllConfigs(ctx context.Context) ([]*models.APIConfig, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT name, value, description, updated_at FROM api_configs ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*models.APIConfig
	for rows.Next() {
		var cfg models.APIConfig
		if err := rows.Scan(&cfg.Name, &cfg.Value, &cfg.Description, &cfg.UpdatedAt); err != nil {
			return nil, err
		}
		configs = append(configs, &cfg)
	}
	return configs, rows.Err()
}

func (s *MySQLStore) UpdateConfig(ctx context.Context, name, value string) (*models.APIConfig, error) {
	result, err := s.DB.ExecContext(ctx,
		`UPDATE api_configs SET value = ?, updated_at = ? WHERE name = ?`,
		value, time.Now(), name)
	if err != nil {
		return nil, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrNotFound
	}
	return s.GetConfig(ctx, name)
}
