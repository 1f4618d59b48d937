package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"homeserve/database/repository/memory"
	"homeserve/handlers"
	"homeserve/models"
	"homeserve/services/scheduling"
	"homeserve/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	tokens *utils.TokenIssuer
	store  *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	store.PutContractor(models.ContractorProfile{
		ID:           "c1",
		UserID:       "u-c1",
		ManagerID:    "m1",
		Timezone:     "UTC",
		WorkingHours: models.DefaultWorkingHours(),
	})
	for _, id := range []string{"wo1", "wo2"} {
		store.PutWorkOrder(models.WorkOrder{ID: id, ContractorID: "c1", ManagerID: "m1", Status: models.WorkOrderPending})
	}

	cfg := scheduling.DefaultConfig()
	cfg.Now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	svc := scheduling.NewService(store, nil, zap.NewNop(), cfg)

	tokens := utils.NewTokenIssuer("test-secret")
	r := gin.New()
	RegisterRoutes(r, Bundle{
		Scheduling: handlers.NewSchedulingHandler(svc, zap.NewNop()),
		Tokens:     tokens,
		Health:     utils.NewHealthMonitor(nil, nil),
		Logger:     zap.NewNop(),
	})
	return &testServer{router: r, tokens: tokens, store: store}
}

func (s *testServer) do(t *testing.T, method, path, role string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		token, err := s.tokens.GenerateToken("user-"+role, role, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func booking(workOrderID string, startHour int) gin.H {
	start := time.Date(2026, 3, 2, startHour, 0, 0, 0, time.UTC)
	return gin.H{
		"contractorId": "c1",
		"workOrderId":  workOrderID,
		"startTime":    start,
		"endTime":      start.Add(2 * time.Hour),
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSchedulingRequiresToken(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/scheduling/bookings", "", booking("wo1", 8))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGenerateSlots(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/scheduling/contractors/c1/slots", "contractor", gin.H{
		"range": gin.H{
			"start": time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			"end":   time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Slots []models.TimeSlot `json:"slots"`
	}
	decode(t, w, &resp)
	assert.Len(t, resp.Slots, 4)

	w = s.do(t, http.MethodPost, "/api/scheduling/contractors/missing/slots", "contractor", gin.H{
		"range": gin.H{
			"start": time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			"end":   time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/scheduling/bookings", "manager", booking("wo1", 8))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var booked models.BookingResult
	decode(t, w, &booked)
	require.True(t, booked.Success)
	require.NotNil(t, booked.Booking)
	assert.False(t, booked.Booking.Slot.IsAvailable)

	// Same window for another work order is a rejection, not an error.
	w = s.do(t, http.MethodPost, "/api/scheduling/bookings", "manager", booking("wo2", 8))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rejected models.BookingResult
	decode(t, w, &rejected)
	assert.False(t, rejected.Success)
	assert.NotEmpty(t, rejected.Conflicts)

	w = s.do(t, http.MethodPost, "/api/scheduling/conflicts", "contractor", booking("wo2", 8))
	require.Equal(t, http.StatusOK, w.Code)
	var detected struct {
		HasConflicts bool `json:"hasConflicts"`
	}
	decode(t, w, &detected)
	assert.True(t, detected.HasConflicts)

	w = s.do(t, http.MethodPost, "/api/scheduling/alternatives", "contractor", booking("wo2", 8))
	require.Equal(t, http.StatusOK, w.Code)
	var alts struct {
		Alternatives []models.TimeSlot `json:"alternatives"`
	}
	decode(t, w, &alts)
	assert.NotEmpty(t, alts.Alternatives)

	w = s.do(t, http.MethodGet, "/api/scheduling/audit/wo1", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var trail struct {
		Entries []models.ScheduleAuditLog `json:"entries"`
	}
	decode(t, w, &trail)
	require.Len(t, trail.Entries, 1)
	assert.Equal(t, models.AuditScheduleCreated, trail.Entries[0].Action)
	assert.Equal(t, "user-manager", trail.Entries[0].UserID)

	w = s.do(t, http.MethodDelete, "/api/scheduling/bookings/wo1?reason=customer", "manager", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodDelete, "/api/scheduling/bookings/wo1", "manager", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodDelete, "/api/scheduling/bookings/nope", "manager", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOverrideRoleGate(t *testing.T) {
	s := newTestServer(t)
	body := booking("wo1", 8)
	body["reason"] = "customer request"

	w := s.do(t, http.MethodPost, "/api/scheduling/bookings/override", "contractor", body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/scheduling/audit/wo1", "contractor", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The plain booking route still checks the role when an override is asked for.
	plain := booking("wo1", 8)
	plain["adminOverride"] = true
	plain["overrideReason"] = "sneaky"
	w = s.do(t, http.MethodPost, "/api/scheduling/bookings", "contractor", plain)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/scheduling/bookings/override", "admin", body)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestPreferredDates(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/scheduling/contractors/c1/preferred-dates", "contractor", gin.H{
		"preferences":     []gin.H{{"date": "2026-03-02"}, {"date": "2026-03-07"}},
		"durationMinutes": 120,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Matches []models.PreferredDateMatch `json:"matches"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Matches, 2)
	assert.NotEmpty(t, resp.Matches[0].Slots)
	assert.Empty(t, resp.Matches[1].Slots)
}

func TestInvalidPayload(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/scheduling/bookings", "manager", gin.H{"workOrderId": "wo1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
