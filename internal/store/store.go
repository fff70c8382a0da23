package store

import (
	"context"
	"errors"

	"github.com/vidai-app/vidai-golang/internal/models"
)

// ErrNotFound is returned when a row does not exist. Handlers map it
// to a 404.
var ErrNotFound = errors.New("store: record not found")

// UserStore handles user rows.
type UserStore interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByProvider(ctx context.Context, provider, providerID string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUserRole(ctx context.Context, id int64, role string) error
	LinkUserProvider(ctx context.Context, id int64, provider, providerID string, profileImageURL *string) error
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	CountUsers(ctx context.Context) (int, error)
}

// PlanStore handles the read-mostly subscription plan catalog.
type PlanStore interface {
	GetPlan(ctx context.Context, id int64) (*models.SubscriptionPlan, error)
	GetAllPlans(ctx context.Context) ([]*models.SubscriptionPlan, error)
	CreatePlan(ctx context.Context, plan *models.SubscriptionPlan) error
}

// SubscriptionStore binds users to plans.
type SubscriptionStore interface {
	GetActiveSubscription(ctx context.Context, userID int64) (*models.Subscription, error)
	CreateSubscription(ctx context.Context, sub *models.Subscription) error
	ChangeSubscriptionPlan(ctx context.Context, id, planID int64) error
	DeactivateSubscription(ctx context.Context, id int64) error
	RevenueTotal(ctx context.Context) (int, error)
}

// VideoStore handles video rows. CompleteVideo and FailVideo only
// touch rows still in the processing state and report whether a row
// changed; a false return means the video was deleted mid-job or has
// already reached a terminal state, and the caller must discard its
// result.
type VideoStore interface {
	GetVideo(ctx context.Context, id int64) (*models.Video, error)
	GetUserVideos(ctx context.Context, userID int64) ([]*models.Video, error)
	GetAllVideos(ctx context.Context) ([]*models.Video, error)
	CreateVideo(ctx context.Context, video *models.Video) error
	CompleteVideo(ctx context.Context, id int64, videoURL, thumbnailURL string, sections []models.Scene) (bool, error)
	FailVideo(ctx context.Context, id int64) (bool, error)
	DeleteVideo(ctx context.Context, id int64) (bool, error)
	CountVideos(ctx context.Context) (int, error)
}

// UsageStore is the per-(user, day) video creation ledger.
//
// IncrementUsageIfBelow atomically increments the counter only while
// it is below limit, returning the resulting count and whether the
// increment happened. The conditional update is what prevents two
// concurrent requests from both slipping past the daily limit.
type UsageStore interface {
	GetDailyUsage(ctx context.Context, userID int64, date string) (int, error)
	IncrementUsageIfBelow(ctx context.Context, userID int64, date string, limit int) (int, bool, error)
}

// ConfigStore is the flat name -> value runtime configuration table.
type ConfigStore interface {
	GetConfig(ctx context.Context, name string) (*models.APIConfig, error)
	GetAllConfigs(ctx context.Context) ([]*models.APIConfig, error)
	UpdateConfig(ctx context.Context, name, value string) (*models.APIConfig, error)
}

// Store is the full persistence surface the application depends on.
// The core pipeline never assumes a storage technology beyond this
// interface.
type Store interface {
	UserStore
	PlanStore
	SubscriptionStore
	VideoStore
	UsageStore
	ConfigStore
}
