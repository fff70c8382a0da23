package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vidai-app/vidai-golang/internal/models"
)

// MemoryStore is an in-memory implementation of Store. It backs the
// test suite and serves as a development fallback when no database
// DSN is configured. All methods are safe for concurrent use.
type MemoryStore struct {
	mu sync.Mutex

	users         map[int64]*models.User
	plans         map[int64]*models.SubscriptionPlan
	subscriptions map[int64]*models.Subscription
	videos        map[int64]*models.Video
	usage         map[string]*models.DailyUsage // key: "userID-date"
	configs       map[string]*models.APIConfig

	userID  int64
	planID  int64
	subID   int64
	videoID int64
	usageID int64
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		users:         make(map[int64]*models.User),
		plans:         make(map[int64]*models.SubscriptionPlan),
		subscriptions: make(map[int64]*models.Subscription),
		videos:        make(map[int64]*models.Video),
		usage:         make(map[string]*models.DailyUsage),
		configs:       make(map[string]*models.APIConfig),
	}
	for _, plan := range DefaultPlans() {
		_ = s.CreatePlan(context.Background(), plan)
	}
	for _, cfg := range DefaultConfigs() {
		copied := *cfg
		copied.UpdatedAt = time.Now()
		s.configs[cfg.Name] = &copied
	}
	return s
}

func usageKey(userID int64, date string) string {
	return fmt.Sprintf("%d-%s", userID, date)
}

//
// --- Users ---
//

func (s *MemoryStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *MemoryStore) findUser(match func(*models.User) bool) (*models.User, error) {
	for _, user := range s.users {
		if match(user) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findUser(func(u *models.User) bool { return u.Email == email })
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findUser(func(u *models.User) bool { return u.Username == username })
}

func (s *MemoryStore) GetUserByProvider(ctx context.Context, provider, providerID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findUser(func(u *models.User) bool {
		return u.AuthProvider != nil && *u.AuthProvider == provider &&
			u.ProviderID != nil && *u.ProviderID == providerID
	})
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID++
	user.ID = s.userID
	if user.Role == "" {
		user.Role = "user"
	}
	user.CreatedAt = time.Now()
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *MemoryStore) UpdateUserRole(ctx context.Context, id int64, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	user.Role = role
	return nil
}

func (s *MemoryStore) LinkUserProvider(ctx context.Context, id int64, provider, providerID string, profileImageURL *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	user.AuthProvider = &provider
	user.ProviderID = &providerID
	if profileImageURL != nil {
		user.ProfileImageURL = profileImageURL
	}
	return nil
}

func (s *MemoryStore) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]*models.User, 0, len(s.users))
	for _, user := range s.users {
		copied := *user
		users = append(users, &copied)
	}
	return users, nil
}

func (s *MemoryStore) CountUsers(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), nil
}

//
// --- Plans ---
//

func (s *MemoryStore) GetPlan(ctx context.Context, id int64) (*models.SubscriptionPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan, ok := s.plans[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *plan
	return &copied, nil
}

func (s *MemoryStore) GetAllPlans(ctx context.Context) ([]*models.SubscriptionPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	plans := make([]*models.SubscriptionPlan, 0, len(s.plans))
	for id := int64(1); id <= s.planID; id++ {
		if plan, ok := s.plans[id]; ok {
			copied := *plan
			plans = append(plans, &copied)
		}
	}
	return plans, nil
}

func (s *MemoryStore) CreatePlan(ctx context.Context, plan *models.SubscriptionPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.planID++
	plan.ID = s.planID
	copied := *plan
	s.plans[plan.ID] = &copied
	return nil
}

//
// --- Subscriptions ---
//

func (s *MemoryStore) GetActiveSubscription(ctx context.Context, userID int64) (*models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subscriptions {
		if sub.UserID == userID && sub.Active {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subID++
	sub.ID = s.subID
	if sub.StartDate.IsZero() {
		sub.StartDate = time.Now()
	}
	sub.Active = true
	copied := *sub
	s.subscriptions[sub.ID] = &copied
	return nil
}

func (s *MemoryStore) ChangeSubscriptionPlan(ctx context.Context, id, planID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subscriptions[id]
	if !ok {
		return ErrNotFound
	}
	sub.PlanID = planID
	sub.StartDate = time.Now()
	return nil
}

func (s *MemoryStore) DeactivateSubscription(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subscriptions[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	sub.Active = false
	sub.EndDate = &now
	return nil
}

func (s *MemoryStore) RevenueTotal(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, sub := range s.subscriptions {
		if !sub.Active {
			continue
		}
		if plan, ok := s.plans[sub.PlanID]; ok {
			total += plan.PriceMonthly
		}
	}
	return total, nil
}

//
// --- Videos ---
//

func (s *MemoryStore) GetVideo(ctx context.Context, id int64) (*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *video
	copied.Sections = append([]models.Scene(nil), video.Sections...)
	return &copied, nil
}

func (s *MemoryStore) GetUserVideos(ctx context.Context, userID int64) ([]*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var videos []*models.Video
	for id := s.videoID; id >= 1; id-- {
		if video, ok := s.videos[id]; ok && video.UserID == userID {
			copied := *video
			videos = append(videos, &copied)
		}
	}
	return videos, nil
}

func (s *MemoryStore) GetAllVideos(ctx context.Context) ([]*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var videos []*models.Video
	for id := s.videoID; id >= 1; id-- {
		if video, ok := s.videos[id]; ok {
			copied := *video
			videos = append(videos, &copied)
		}
	}
	return videos, nil
}

func (s *MemoryStore) CreateVideo(ctx context.Context, video *models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videoID++
	video.ID = s.videoID
	video.Status = models.StatusProcessing
	video.CreatedAt = time.Now()
	copied := *video
	copied.Sections = append([]models.Scene(nil), video.Sections...)
	s.videos[video.ID] = &copied
	return nil
}

func (s *MemoryStore) CompleteVideo(ctx context.Context, id int64, videoURL, thumbnailURL string, sections []models.Scene) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok || video.Status != models.StatusProcessing {
		return false, nil
	}
	video.Status = models.StatusCompleted
	video.VideoURL = &videoURL
	if thumbnailURL != "" {
		video.ThumbnailURL = &thumbnailURL
	}
	video.Sections = append([]models.Scene(nil), sections...)
	return true, nil
}

func (s *MemoryStore) FailVideo(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok || video.Status != models.StatusProcessing {
		return false, nil
	}
	video.Status = models.StatusFailed
	return true, nil
}

func (s *MemoryStore) DeleteVideo(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[id]; !ok {
		return false, nil
	}
	delete(s.videos, id)
	return true, nil
}

func (s *MemoryStore) CountVideos(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.videos), nil
}

//
// --- Daily Usage ---
//

func (s *MemoryStore) GetDailyUsage(ctx context.Context, userID int64, date string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if usage, ok := s.usage[usageKey(userID, date)]; ok {
		return usage.VideosCreated, nil
	}
	return 0, nil
}

func (s *MemoryStore) IncrementUsageIfBelow(ctx context.Context, userID int64, date string, limit int) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := usageKey(userID, date)
	usage, ok := s.usage[key]
	if !ok {
		s.usageID++
		usage = &models.DailyUsage{ID: s.usageID, UserID: userID, Date: date}
		s.usage[key] = usage
	}
	if usage.VideosCreated >= limit {
		return usage.VideosCreated, false, nil
	}
	usage.VideosCreated++
	return usage.VideosCreated, true, nil
}

//
// --- API Configs ---
//

func (s *MemoryStore) GetConfig(ctx context.Context, name string) (*models.APIConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.configs[name]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *cfg
	return &copied, nil
}

func (s *MemoryStore) GetAllConfigs(ctx context.Context) ([]*models.APIConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	configs := make([]*models.APIConfig, 0, len(s.configs))
	for _, cfg := range DefaultConfigs() {
		if stored, ok := s.configs[cfg.Name]; ok {
			copied := *stored
			configs = append(configs, &copied)
		}
	}
	return configs, nil
}

func (s *MemoryStore) UpdateConfig(ctx context.Context, name, value string) (*models.APIConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.configs[name]
	if !ok {
		return nil, ErrNotFound
	}
	cfg.Value = value
	cfg.UpdatedAt = time.Now()
	copied := *cfg
	return &copied, nil
}
