package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/vidai-app/vidai-golang/internal/models"
)

const videoColumns = `id, user_id, title, original_text, format, duration, resolution, status, ai_model, video_url, thumbnail_url, created_at, sections`

func scanVideoRow(scan func(dest ...interface{}) error) (*models.Video, error) {
	var video models.Video
	var sections []byte
	err := scan(
		&video.ID,
		&video.UserID,
		&video.Title,
		&video.OriginalText,
		&video.Format,
		&video.Duration,
		&video.Resolution,
		&video.Status,
		&video.AiModel,
		&video.VideoURL,
		&video.ThumbnailURL,
		&video.CreatedAt,
		&sections,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(sections) > 0 {
		if err := json.Unmarshal(sections, &video.Sections); err != nil {
			return nil, err
		}
	}
	return &video, nil
}

func (s *MySQLStore) GetVideo(ctx context.Context, id int64) (*models.Video, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = ?`, id)
	return scanVideoRow(row.Scan)
}

func (s *MySQLStore) queryVideos(ctx context.Context, query string, args ...interface{}) ([]*models.Video, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []*models.Video
	for rows.Next() {
		video, err := scanVideoRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}

func (s *MySQLStore) GetUserVideos(ctx context.Context, userID int64) ([]*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE user_id = ? ORDER BY created_at DESC`
	return s.queryVideos(ctx, query, userID)
}

func (s *MySQLStore) GetAllVideos(ctx context.Context) ([]*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos ORDER BY created_at DESC`
	return s.queryVideos(ctx, query)
}

func (s *MySQLStore) CreateVideo(ctx context.Context, video *models.Video) error {
	video.Status = models.StatusProcessing
	video.CreatedAt = time.Now()

	sections, err := json.Marshal(video.Sections)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO videos (user_id, title, original_text, format, duration, resolution, status, ai_model, video_url, thumbnail_url, created_at, sections)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL, NULL, ?, ?)`

	result, err := s.DB.ExecContext(ctx, query,
		video.UserID,
		video.Title,
		video.OriginalText,
		video.Format,
		video.Duration,
		video.Resolution,
		video.Status,
		video.AiModel,
		video.CreatedAt,
		sections,
	)
	if err != nil {
		return err
	}
	video.ID, err = result.LastInsertId()
	return err
}

// CompleteVideo flips a processing video to completed. The status
// guard in the WHERE clause keeps terminal states absorbing: a video
// that was deleted or already finished is left untouched and the
// caller is told via the bool return.
func (s *MySQLStore) CompleteVideo(ctx context.Context, id int64, videoURL, thumbnailURL string, sections []models.Scene) (bool, error) {
	encoded, err := json.Marshal(sections)
	if err != nil {
		return false, err
	}

	query := `
		UPDATE videos
		SET status = ?, video_url = ?, thumbnail_url = ?, sections = ?
		WHERE id = ? AND status = ?`

	result, err := s.DB.ExecContext(ctx, query,
		models.StatusCompleted, videoURL, nullable(thumbnailURL), encoded, id, models.StatusProcessing)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// FailVideo flips a processing video to failed, keeping the title and
// original text so the owner can retry from the dashboard.
func (s *MySQLStore) FailVideo(ctx context.Context, id int64) (bool, error) {
	result, err := s.DB.ExecContext(ctx,
		`UPDATE videos SET status = ? WHERE id = ? AND status = ?`,
		models.StatusFailed, id, models.StatusProcessing)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (s *MySQLStore) DeleteVideo(ctx context.Context, id int64) (bool, error) {
	result, err := s.DB.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (s *MySQLStore) CountVideos(ctx context.Context) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos`).Scan(&count)
	return count, err
}

func nullable(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
