package compliance_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spotterai/spotter/internal/auth"
	"github.com/spotterai/spotter/internal/compliance"
	"github.com/spotterai/spotter/internal/database"
	"github.com/spotterai/spotter/internal/hos"
	"github.com/spotterai/spotter/internal/model"
)

type statusEnv struct {
	ts     *httptest.Server
	db     *sql.DB
	tokens *auth.Tokens
}

func newStatusEnv(t *testing.T) *statusEnv {
	t.Helper()

	db, err := database.Open("file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))

	tokens := &auth.Tokens{
		Secret:     []byte("0123456789abcdef0123456789abcdef"),
		AccessTTL:  time.Hour,
		RefreshTTL: time.Hour,
	}

	rs := &compliance.Resource{DB: db, Rules: hos.PropertyCarrying(), Log: zap.NewNop().Sugar()}
	authRs := &auth.Resource{Tokens: tokens}

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(authRs.Authenticator)
		r.Mount("/", rs.Routes())
	})

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	return &statusEnv{ts: ts, db: db, tokens: tokens}
}

func (e *statusEnv) bearer(t *testing.T, username string, isDriver bool) (string, int64) {
	t.Helper()

	u := &model.User{Username: username, Email: username + "@example.com", PasswordHash: "x", IsDriver: isDriver}
	require.NoError(t, model.CreateUser(context.Background(), e.db, u))

	access, _, err := e.tokens.IssuePair(u)
	require.NoError(t, err)

	return access, u.ID
}

func (e *statusEnv) getStatus(t *testing.T, token string, out interface{}) int {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, e.ts.URL+"/status", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := e.ts.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}

	return res.StatusCode
}

type statusJSON struct {
	RemainingDriving float64   `json:"remaining_driving_hours"`
	RemainingWindow  float64   `json:"remaining_duty_window_hours"`
	RemainingCycle   float64   `json:"remaining_cycle_hours"`
	DrivingInShift   float64   `json:"driving_in_shift_hours"`
	CycleTotal       float64   `json:"cycle_total_hours"`
	Violations       []string  `json:"errors"`
	CheckTime        time.Time `json:"check_time"`
}

func TestStatusFreshDriver(t *testing.T) {
	r := require.New(t)
	e := newStatusEnv(t)

	token, _ := e.bearer(t, "alice", true)

	var status statusJSON
	code := e.getStatus(t, token, &status)
	r.Equal(http.StatusOK, code)
	r.InDelta(11, status.RemainingDriving, 1e-9)
	r.InDelta(14, status.RemainingWindow, 1e-9)
	r.InDelta(70, status.RemainingCycle, 1e-9)
	r.Empty(status.Violations)
	r.False(status.CheckTime.IsZero())
}

func TestStatusCountsLoggedHours(t *testing.T) {
	r := require.New(t)
	e := newStatusEnv(t)
	ctx := context.Background()

	token, driverID := e.bearer(t, "alice", true)
	otherToken, otherID := e.bearer(t, "bob", true)

	// A 10-hour rest anchors the shift start, then driving up to now.
	seedDriving := func(driverID int64, hours float64) {
		trip := &model.Trip{
			DriverID:           driverID,
			Title:              "fixture",
			PickupCoordinates:  "40.7,-74.0",
			DropoffCoordinates: "39.9,-75.1",
		}
		r.NoError(model.CreateTrip(ctx, e.db, trip))

		end := time.Now().UTC()
		start := end.Add(-time.Duration(hours * float64(time.Hour)))

		restEnd := start
		r.NoError(model.CreateELDLog(ctx, e.db, &model.ELDLog{
			TripID:    trip.ID,
			EventType: model.EventOffDuty,
			StartTime: restEnd.Add(-11 * time.Hour),
			EndTime:   &restEnd,
			Duration:  11,
		}))

		r.NoError(model.CreateELDLog(ctx, e.db, &model.ELDLog{
			TripID:    trip.ID,
			EventType: model.EventDriving,
			StartTime: start,
			EndTime:   &end,
			Duration:  hours,
		}))
	}

	seedDriving(driverID, 5)
	seedDriving(otherID, 2)

	var status statusJSON
	code := e.getStatus(t, token, &status)
	r.Equal(http.StatusOK, code)
	r.InDelta(5, status.DrivingInShift, 0.01)
	r.InDelta(6, status.RemainingDriving, 0.01)
	r.InDelta(5, status.CycleTotal, 0.01)

	// Bob's two hours are his own.
	code = e.getStatus(t, otherToken, &status)
	r.Equal(http.StatusOK, code)
	r.InDelta(2, status.DrivingInShift, 0.01)
}

func TestStatusRequiresDriver(t *testing.T) {
	r := require.New(t)
	e := newStatusEnv(t)

	token, _ := e.bearer(t, "dispatcher", false)

	code := e.getStatus(t, token, nil)
	r.Equal(http.StatusForbidden, code)

	// No token at all.
	res, err := e.ts.Client().Get(e.ts.URL + "/status")
	r.NoError(err)
	res.Body.Close()
	r.Equal(http.StatusUnauthorized, res.StatusCode)
}
