package model

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

// ELD duty statuses.
const (
	EventDriving      = "driving"
	EventOnDuty       = "on_duty"
	EventOffDuty      = "off_duty"
	EventSleeperBerth = "sleeper_berth"
)

// ValidEventType reports whether s is one of the four duty statuses.
func ValidEventType(s string) bool {
	switch s {
	case EventDriving, EventOnDuty, EventOffDuty, EventSleeperBerth:
		return true
	}

	return false
}

// ELDLog is one duty-status entry on a trip's log sheet. A nil EndTime
// means the entry is still open (the driver is currently in that status).
type ELDLog struct {
	ID          int64      `json:"id"`
	TripID      int64      `json:"trip"`
	EventType   string     `json:"event_type"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Duration    float64    `json:"duration"`
	Location    string     `json:"location"`
	Coordinates string     `json:"coordinates"`
	Remarks     string     `json:"remarks"`
	CreatedAt   time.Time  `json:"created_at"`
}

const eldColumns = `id, trip_id, event_type, start_time, end_time, duration, location, coordinates, remarks, created_at`

func CreateELDLog(ctx context.Context, db *sql.DB, l *ELDLog) error {
	l.CreatedAt = time.Now().UTC()

	res, err := db.ExecContext(ctx,
		`INSERT INTO eld_logs (trip_id, event_type, start_time, end_time, duration, location, coordinates, remarks, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.TripID, l.EventType, l.StartTime, l.EndTime, l.Duration, l.Location, l.Coordinates, l.Remarks, l.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "insert eld log")
	}

	l.ID, err = res.LastInsertId()

	return errors.Wrap(err, "eld log id")
}

func ListELDLogs(ctx context.Context, db *sql.DB, tripID int64) ([]*ELDLog, error) {
	return queryELDLogs(ctx, db,
		`SELECT `+eldColumns+` FROM eld_logs WHERE trip_id = ? ORDER BY start_time`, tripID)
}

// ListELDLogsForDay returns the trip's entries overlapping [dayStart,
// dayEnd). Open entries that began before dayEnd count as overlapping.
func ListELDLogsForDay(ctx context.Context, db *sql.DB, tripID int64, dayStart, dayEnd time.Time) ([]*ELDLog, error) {
	return queryELDLogs(ctx, db,
		`SELECT `+eldColumns+` FROM eld_logs
		 WHERE trip_id = ? AND start_time < ? AND (end_time IS NULL OR end_time > ?)
		 ORDER BY start_time`, tripID, dayEnd, dayStart)
}

// ListDriverELDLogs returns every entry across the driver's trips that
// started before the cutoff, ordered by start time. The HOS calculator
// consumes this.
func ListDriverELDLogs(ctx context.Context, db *sql.DB, driverID int64, before time.Time) ([]*ELDLog, error) {
	return queryELDLogs(ctx, db,
		`SELECT l.id, l.trip_id, l.event_type, l.start_time, l.end_time, l.duration,
			l.location, l.coordinates, l.remarks, l.created_at
		 FROM eld_logs l JOIN trips t ON t.id = l.trip_id
		 WHERE t.driver_id = ? AND l.start_time < ?
		 ORDER BY l.start_time`, driverID, before)
}

// LatestELDLog returns the trip's most recent entry by start time.
func LatestELDLog(ctx context.Context, db *sql.DB, tripID int64) (*ELDLog, error) {
	return scanELDLog(db.QueryRowContext(ctx,
		`SELECT `+eldColumns+` FROM eld_logs WHERE trip_id = ? ORDER BY start_time DESC LIMIT 1`, tripID))
}

// CloseELDLog stamps the end time on an open entry and computes its
// duration in hours.
func CloseELDLog(ctx context.Context, db *sql.DB, l *ELDLog, at time.Time) error {
	l.EndTime = &at
	l.Duration = at.Sub(l.StartTime).Hours()

	_, err := db.ExecContext(ctx,
		`UPDATE eld_logs SET end_time = ?, duration = ? WHERE id = ?`, at, l.Duration, l.ID)

	return errors.Wrap(err, "close eld log")
}

func queryELDLogs(ctx context.Context, db *sql.DB, query string, args ...interface{}) ([]*ELDLog, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query eld logs")
	}
	defer rows.Close()

	logs := []*ELDLog{}

	for rows.Next() {
		l, err := scanELDLog(rows)
		if err != nil {
			return nil, err
		}

		logs = append(logs, l)
	}

	return logs, errors.Wrap(rows.Err(), "query eld logs")
}

func scanELDLog(row rowScanner) (*ELDLog, error) {
	l := &ELDLog{}

	var end sql.NullTime

	err := row.Scan(&l.ID, &l.TripID, &l.EventType, &l.StartTime, &end,
		&l.Duration, &l.Location, &l.Coordinates, &l.Remarks, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, errors.Wrap(err, "scan eld log")
	}

	if end.Valid {
		l.EndTime = &end.Time
	}

	return l, nil
}
