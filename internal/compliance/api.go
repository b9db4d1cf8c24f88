// Package compliance exposes the driver's Hours-of-Service status.
package compliance

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/spotterai/spotter/internal/auth"
	"github.com/spotterai/spotter/internal/errresponse"
	"github.com/spotterai/spotter/internal/hos"
	"github.com/spotterai/spotter/internal/model"
)

// Resource bundles what the compliance endpoint needs.
type Resource struct {
	DB    *sql.DB
	Rules hos.Rules
	Log   *zap.SugaredLogger
}

// Routes mounts /status. Drivers only.
func (rs *Resource) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(auth.RequireDriver)
	r.Get("/status", rs.Status)

	return r
}

// StatusResponse wraps the calculator output for rendering.
type StatusResponse struct {
	hos.Status
}

func (p *StatusResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// Status calculates and returns the caller's current HOS status.
func (rs *Resource) Status(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	checkTime := time.Now().UTC()

	logs, err := model.ListDriverELDLogs(r.Context(), rs.DB, claims.UID, checkTime)
	if err != nil {
		rs.Log.Errorw("hos status", "driver", claims.UID, "err", err)

		err = render.Render(w, r, errresponse.ErrInternal(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	status := rs.Rules.ComputeStatus(toEntries(logs), checkTime)

	err = render.Render(w, r, &StatusResponse{Status: status})
	if err != nil {
		rs.Log.Errorw(err.Error())
	}
}

func toEntries(logs []*model.ELDLog) []hos.Entry {
	entries := make([]hos.Entry, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, hos.Entry{
			EventType: l.EventType,
			Start:     l.StartTime,
			End:       l.EndTime,
		})
	}

	return entries
}
