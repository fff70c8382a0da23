package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidai-app/vidai-golang/internal/ai"
	"github.com/vidai-app/vidai-golang/internal/auth"
	"github.com/vidai-app/vidai-golang/internal/config"
	"github.com/vidai-app/vidai-golang/internal/handlers"
	"github.com/vidai-app/vidai-golang/internal/models"
	"github.com/vidai-app/vidai-golang/internal/routes"
	"github.com/vidai-app/vidai-golang/internal/store"
	"github.com/vidai-app/vidai-golang/internal/video"
)

// newTestApp wires the full router against the in-memory store. The
// AI clients point at a stub completion server so no test ever leaves
// the process.
func newTestApp(t *testing.T) (*gin.Engine, *store.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	cfg := config.NewProvider(st)

	aiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{
					"role":    "assistant",
					"content": `[{"visual_description": "a stub scene", "text_segment": "stub"}]`,
				}},
			},
		}
		json.NewEncoder(w).Encode(response)
	}))
	t.Cleanup(aiServer.Close)

	segmenter := &ai.Segmenter{Client: &ai.ChatClient{BaseURL: aiServer.URL, HTTP: aiServer.Client()}, Config: cfg}
	enhancer := ai.NewEnhancer(cfg)
	images := ai.NewImageSynthesizer(cfg)
	renderer := video.NewSimulatedRenderer(ai.NewGeminiClient(cfg))
	orchestrator := video.NewOrchestrator(st, segmenter, enhancer, images, renderer)

	h := &handlers.Handlers{
		Store:        st,
		Config:       cfg,
		Segmenter:    segmenter,
		Enhancer:     enhancer,
		Images:       images,
		Orchestrator: orchestrator,
	}
	return routes.SetupRouter(h), st
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

// registerUser drives the real registration endpoint and returns the
// issued token and user ID.
func registerUser(t *testing.T, router *gin.Engine, username, email string) (string, int64) {
	t.Helper()

	recorder := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	body := decodeBody(t, recorder)
	token := body["token"].(string)
	user := body["user"].(map[string]interface{})
	return token, int64(user["id"].(float64))
}

//
// --- Auth ---
//

func TestRegister_CreatesFreeSubscription(t *testing.T) {
	router, st := newTestApp(t)

	token, userID := registerUser(t, router, "alice", "alice@example.com")
	require.NotEmpty(t, token)

	sub, err := st.GetActiveSubscription(context.Background(), userID)
	require.NoError(t, err)
	plan, err := st.GetPlan(context.Background(), sub.PlanID)
	require.NoError(t, err)
	assert.Equal(t, "Free", plan.Name)
}

func TestRegister_DuplicateEmailRejected(t *testing.T) {
	router, _ := newTestApp(t)
	registerUser(t, router, "bob", "bob@example.com")

	recorder := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "bob2",
		"email":    "bob@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestLogin_And_Me(t *testing.T) {
	router, _ := newTestApp(t)
	registerUser(t, router, "carol", "carol@example.com")

	recorder := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "carol@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	token := decodeBody(t, recorder)["token"].(string)

	recorder = doJSON(t, router, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "carol", user["username"])
	assert.NotContains(t, user, "passwordHash")
	plan := body["plan"].(map[string]interface{})
	assert.Equal(t, "Free", plan["name"])
}

func TestLogin_WrongPassword(t *testing.T) {
	router, _ := newTestApp(t)
	registerUser(t, router, "dave", "dave@example.com")

	recorder := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "dave@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	router, _ := newTestApp(t)

	recorder := doJSON(t, router, http.MethodGet, "/api/videos", "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = doJSON(t, router, http.MethodGet, "/api/videos", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestSocialLogin_CreatesAndReuses(t *testing.T) {
	router, _ := newTestApp(t)

	payload := gin.H{
		"email":        "eve@example.com",
		"authProvider": "google",
		"providerId":   "g-777",
		"displayName":  "Eve",
	}

	recorder := doJSON(t, router, http.MethodPost, "/api/auth/social-login", "", payload)
	require.Equal(t, http.StatusOK, recorder.Code)
	first := decodeBody(t, recorder)["user"].(map[string]interface{})

	recorder = doJSON(t, router, http.MethodPost, "/api/auth/social-login", "", payload)
	require.Equal(t, http.StatusOK, recorder.Code)
	second := decodeBody(t, recorder)["user"].(map[string]interface{})

	assert.Equal(t, first["id"], second["id"], "same provider identity must map to the same account")
}

//
// --- Entitlement over HTTP ---
//

func TestCreateVideo_DurationOverPlanLimitRejected(t *testing.T) {
	router, _ := newTestApp(t)
	token, _ := registerUser(t, router, "frank", "frank@example.com")

	recorder := doJSON(t, router, http.MethodPost, "/api/ai/create-video", token, gin.H{
		"title": "too long for free",
		"scenes": []gin.H{
			{"text_segment": "a", "visual_description": "scene one"},
		},
		"videoOptions": gin.H{"duration": 120, "resolution": "720p"},
	})

	require.Equal(t, http.StatusForbidden, recorder.Code, recorder.Body.String())
	body := decodeBody(t, recorder)
	assert.Equal(t, "DurationExceeded", body["reason"])
}

func TestCreateVideo_ResolutionOverPlanLimitRejected(t *testing.T) {
	router, _ := newTestApp(t)
	token, _ := registerUser(t, router, "grace", "grace@example.com")

	recorder := doJSON(t, router, http.MethodPost, "/api/ai/create-video", token, gin.H{
		"title": "too sharp for free",
		"scenes": []gin.H{
			{"text_segment": "a", "visual_description": "scene one"},
		},
		"videoOptions": gin.H{"duration": 30, "resolution": "4K"},
	})

	require.Equal(t, http.StatusForbidden, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, "ResolutionNotAllowed", body["reason"])
}

func TestEnhanceScenes_FreePlanRejected(t *testing.T) {
	router, _ := newTestApp(t)
	token, _ := registerUser(t, router, "heidi", "heidi@example.com")

	recorder := doJSON(t, router, http.MethodPost, "/api/ai/enhance-scenes", token, gin.H{
		"scenes": []gin.H{
			{"text_segment": "a", "visual_description": "scene one"},
		},
	})

	require.Equal(t, http.StatusForbidden, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Contains(t, body, "upgradePlans")
}

func TestGenerateScenes_UsesStubBackend(t *testing.T) {
	router, _ := newTestApp(t)
	token, _ := registerUser(t, router, "ivan", "ivan@example.com")

	recorder := doJSON(t, router, http.MethodPost, "/api/ai/generate-scenes", token, gin.H{
		"text": "A long enough piece of text to segment into scenes for the test.",
	})

	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	body := decodeBody(t, recorder)
	scenes := body["scenes"].([]interface{})
	require.Len(t, scenes, 1)
	usage := body["dailyUsage"].(map[string]interface{})
	assert.Equal(t, float64(0), usage["count"])
	assert.Equal(t, float64(2), usage["limit"])
}

func TestGenerateScenes_ShortTextRejected(t *testing.T) {
	router, _ := newTestApp(t)
	token, _ := registerUser(t, router, "judy", "judy@example.com")

	recorder := doJSON(t, router, http.MethodPost, "/api/ai/generate-scenes", token, gin.H{
		"text": "tiny",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

//
// --- Video Ownership ---
//

func TestGetVideo_OwnershipEnforced(t *testing.T) {
	router, st := newTestApp(t)
	ownerToken, ownerID := registerUser(t, router, "owner", "owner@example.com")
	strangerToken, _ := registerUser(t, router, "stranger", "stranger@example.com")

	v := &models.Video{UserID: ownerID, Title: "mine", Format: models.FormatTikTok, Resolution: "720p", Duration: 30}
	require.NoError(t, st.CreateVideo(context.Background(), v))
	path := fmt.Sprintf("/api/videos/%d", v.ID)

	recorder := doJSON(t, router, http.MethodGet, path, ownerToken, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, router, http.MethodGet, path, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = doJSON(t, router, http.MethodDelete, path, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

//
// --- Subscription Management ---
//

func TestSubscriptionUpgradeAndCancel(t *testing.T) {
	router, st := newTestApp(t)
	token, _ := registerUser(t, router, "kate", "kate@example.com")

	plans, err := st.GetAllPlans(context.Background())
	require.NoError(t, err)
	proID := plans[1].ID

	// Upgrading to the same plan is a 400.
	recorder := doJSON(t, router, http.MethodPost, "/api/user/subscription/upgrade", token, gin.H{"planId": plans[0].ID})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	// Upgrade to Pro.
	recorder = doJSON(t, router, http.MethodPost, "/api/user/subscription/upgrade", token, gin.H{"planId": proID})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	plan := decodeBody(t, recorder)["plan"].(map[string]interface{})
	assert.Equal(t, "Pro", plan["name"])

	// Cancel drops back to the free plan.
	recorder = doJSON(t, router, http.MethodPost, "/api/user/subscription/cancel", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	// The free plan cannot be cancelled again.
	recorder = doJSON(t, router, http.MethodPost, "/api/user/subscription/cancel", token, nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

//
// --- Admin ---
//

func adminToken(t *testing.T, router *gin.Engine, st *store.MemoryStore) string {
	t.Helper()
	_, userID := registerUser(t, router, "admin", "admin@example.com")
	require.NoError(t, st.UpdateUserRole(context.Background(), userID, "admin"))
	token, err := auth.GenerateToken(userID)
	require.NoError(t, err)
	return token
}

func TestAdminRoutes_RequireAdminRole(t *testing.T) {
	router, _ := newTestApp(t)
	token, _ := registerUser(t, router, "pleb", "pleb@example.com")

	recorder := doJSON(t, router, http.MethodGet, "/api/admin/stats", token, nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestAdminStats(t *testing.T) {
	router, st := newTestApp(t)
	token := adminToken(t, router, st)
	registerUser(t, router, "extra", "extra@example.com")

	recorder := doJSON(t, router, http.MethodGet, "/api/admin/stats", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, float64(2), body["userCount"])
	assert.Equal(t, float64(0), body["videoCount"])
}

func TestAdminBanUser(t *testing.T) {
	router, st := newTestApp(t)
	admin := adminToken(t, router, st)
	victimToken, victimID := registerUser(t, router, "victim", "victim@example.com")

	recorder := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/admin/users/%d/ban", victimID), admin, nil)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	// The banned user loses both access and subscription.
	recorder = doJSON(t, router, http.MethodGet, "/api/auth/me", victimToken, nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
	_, err := st.GetActiveSubscription(context.Background(), victimID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAdminCannotBanAdmin(t *testing.T) {
	router, st := newTestApp(t)
	admin := adminToken(t, router, st)

	_, otherID := registerUser(t, router, "admin2", "admin2@example.com")
	require.NoError(t, st.UpdateUserRole(context.Background(), otherID, "admin"))

	recorder := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/admin/users/%d/ban", otherID), admin, nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestAdminAPIConfigs_SecretsMasked(t *testing.T) {
	router, st := newTestApp(t)
	admin := adminToken(t, router, st)

	recorder := doJSON(t, router, http.MethodPut, "/api/admin/api-configs", admin, gin.H{
		"name":  "DEEPSEEK_API_KEY",
		"value": "sk-verysecretkey123456",
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	updated := decodeBody(t, recorder)["config"].(map[string]interface{})
	assert.Equal(t, "sk-v********************", updated["value"])

	// The full value never appears in the list either, but it IS what
	// the config provider resolves.
	recorder = doJSON(t, router, http.MethodGet, "/api/admin/api-configs", admin, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "sk-verysecretkey123456")

	cfgValue := config.NewProvider(st).Secret(context.Background(), "DEEPSEEK_API_KEY")
	assert.Equal(t, "sk-verysecretkey123456", cfgValue)
}
