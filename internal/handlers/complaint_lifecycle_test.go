package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nagorik/grievance-server/internal/config"
	"github.com/nagorik/grievance-server/internal/handlers"
	"github.com/nagorik/grievance-server/internal/middleware"
	"github.com/nagorik/grievance-server/internal/models"
	"github.com/nagorik/grievance-server/internal/server"
	"github.com/nagorik/grievance-server/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const apiTestSecret = "handler-test-secret"

type testAPI struct {
	router     http.Handler
	users      *memUserRepo
	complaints *memComplaintRepo
	activity   *memActivityRepo
}

// newTestAPI wires the real router, handlers, and services on top of
// in-memory repositories, so requests run the same code paths as
// production minus Postgres and MinIO.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := zap.NewNop()
	sugar := logger.Sugar()

	userRepo := newMemUserRepo()
	complaintRepo := newMemComplaintRepo()
	activityRepo := &memActivityRepo{}

	activitySvc := services.NewActivityService(activityRepo, sugar)
	userSvc := services.NewUserService(userRepo, sugar)
	complaintSvc := services.NewComplaintService(complaintRepo, userRepo, &noopMediaRemover{}, activitySvc, sugar)

	cfg := &config.Config{
		JWTSecret:      apiTestSecret,
		AllowedOrigins: []string{"*"},
		RateLimitRPM:   600,
	}
	h := server.Handlers{
		Auth:       handlers.NewAuthHandler(userSvc, apiTestSecret, time.Hour, sugar),
		Complaints: handlers.NewComplaintHandler(complaintSvc, userSvc, sugar),
		Users:      handlers.NewUserHandler(userSvc, sugar),
		Media:      handlers.NewMediaHandler(nil, sugar),
		Activity:   handlers.NewActivityHandler(activitySvc, sugar),
		Stats:      handlers.NewStatsHandler(nil, sugar),
		Health:     handlers.NewHealthHandler(nil, sugar),
	}

	return &testAPI{
		router:     server.NewRouter(cfg, logger, nil, h),
		users:      userRepo,
		complaints: complaintRepo,
		activity:   activityRepo,
	}
}

func (a *testAPI) seedUser(t *testing.T, email string, role models.Role) string {
	t.Helper()
	user := &models.User{Email: email, Name: "Seeded " + email, Role: role}
	if role == models.RoleEmployee {
		user.Department = "Sanitation"
		user.Designation = "Field Officer"
	}
	require.NoError(t, a.users.Create(context.Background(), user))

	token, err := middleware.IssueToken(user, []byte(apiTestSecret), time.Hour)
	require.NoError(t, err)
	return token
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeComplaint(t *testing.T, rec *httptest.ResponseRecorder) models.Complaint {
	t.Helper()
	var c models.Complaint
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&c))
	return c
}

func submission() *models.ComplaintSubmission {
	return &models.ComplaintSubmission{
		Title:       "Overflowing bin",
		Category:    "Sanitation",
		Description: "Garbage bin on the corner has not been collected for a week",
		Ward:        "12",
		MediaURLs:   []string{"http://localhost:8080/api/v1/media/abc.jpg"},
		Mobile:      "01712345678",
		Name:        "Rahim Uddin",
	}
}

func TestComplaintLifecycleOverHTTP(t *testing.T) {
	api := newTestAPI(t)

	// Citizen registers through the API; staff accounts are seeded.
	rec := api.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "rahim@example.com",
		"name":     "Rahim Uddin",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var reg struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&reg))
	citizenToken := reg.Token

	adminToken := api.seedUser(t, "admin@city.gov", models.RoleAdministrative)
	employeeToken := api.seedUser(t, "karim@city.gov", models.RoleEmployee)

	// Submit
	rec = api.do(t, http.MethodPost, "/api/v1/complaints", citizenToken, submission())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c := decodeComplaint(t, rec)
	assert.Equal(t, models.StatusPending, c.Status)
	require.Len(t, c.History, 1)
	id := c.ID.String()

	// Pending -> Viewed (admin)
	rec = api.do(t, http.MethodPost, "/api/v1/complaints/"+id+"/view", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.StatusViewed, decodeComplaint(t, rec).Status)

	// Viewed -> Assigned (admin)
	rec = api.do(t, http.MethodPost, "/api/v1/complaints/"+id+"/assign", adminToken,
		models.AssignRequest{EmployeeID: "karim@city.gov"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	c = decodeComplaint(t, rec)
	assert.Equal(t, models.StatusAssigned, c.Status)
	require.NotNil(t, c.EmployeeID)
	assert.Equal(t, "karim@city.gov", *c.EmployeeID)

	// The assignee sees it in their queue.
	rec = api.do(t, http.MethodGet, "/api/v1/complaints/assigned", employeeToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var assigned []models.Complaint
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&assigned))
	require.Len(t, assigned, 1)

	// Assigned -> Ongoing (assignee)
	rec = api.do(t, http.MethodPost, "/api/v1/complaints/"+id+"/start", employeeToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.StatusOngoing, decodeComplaint(t, rec).Status)

	// Resolving without a photo is rejected and changes nothing.
	rec = api.do(t, http.MethodPost, "/api/v1/complaints/"+id+"/resolve", employeeToken,
		models.ResolveRequest{Comment: "done"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/complaints/"+id, employeeToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusOngoing, decodeComplaint(t, rec).Status)

	// Ongoing -> Resolved with proof photo.
	rec = api.do(t, http.MethodPost, "/api/v1/complaints/"+id+"/resolve", employeeToken,
		models.ResolveRequest{
			MediaURLs: []string{"http://localhost:8080/api/v1/media/proof.jpg"},
			Comment:   "bin emptied and area cleaned",
		})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	c = decodeComplaint(t, rec)
	assert.Equal(t, models.StatusResolved, c.Status)
	assert.Len(t, c.History, 5)

	// Each authority action left an audit record.
	rec = api.do(t, http.MethodGet, "/api/v1/activity/complaint/"+id, adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var logs []models.ActivityLog
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&logs))
	assert.Len(t, logs, 5)
}

func TestComplaintReadAccessOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	ownerToken := api.seedUser(t, "owner@example.com", models.RoleCitizen)
	strangerToken := api.seedUser(t, "stranger@example.com", models.RoleCitizen)

	rec := api.do(t, http.MethodPost, "/api/v1/complaints", ownerToken, submission())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decodeComplaint(t, rec).ID.String()

	rec = api.do(t, http.MethodGet, "/api/v1/complaints/"+id, ownerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/complaints/"+id, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Listing another citizen's complaints is also denied.
	rec = api.do(t, http.MethodGet, "/api/v1/complaints/user/owner@example.com", strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAssignToSuspendedEmployeeOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	citizenToken := api.seedUser(t, "rahim@example.com", models.RoleCitizen)
	adminToken := api.seedUser(t, "admin@city.gov", models.RoleAdministrative)
	api.seedUser(t, "karim@city.gov", models.RoleEmployee)
	require.NoError(t, api.users.SetSuspended(context.Background(), "karim@city.gov", true))

	rec := api.do(t, http.MethodPost, "/api/v1/complaints", citizenToken, submission())
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeComplaint(t, rec).ID.String()

	rec = api.do(t, http.MethodPost, "/api/v1/complaints/"+id+"/view", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/complaints/"+id+"/assign", adminToken,
		models.AssignRequest{EmployeeID: "karim@city.gov"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/complaints/"+id, adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusViewed, decodeComplaint(t, rec).Status)
}
