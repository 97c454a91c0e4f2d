// README: Postgres-backed appointment source (alternative to ClickUp).
package appointments

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"saguaro/internal/modules/scheduling"
)

// Store reads appointment rows from Postgres. Selected via the source
// backend config for deployments that mirror the ticketing system into a
// database instead of hitting its API.
type Store struct {
	db  *pgxpool.Pool
	loc *time.Location
}

func NewStore(db *pgxpool.Pool, loc *time.Location) *Store {
	return &Store{db: db, loc: loc}
}

// Snapshot returns appointments created in the recent lookback window. Rows
// without both scheduled timestamps are still returned (IsExisting=false)
// to mirror the ticketing source's shape.
func (s *Store) Snapshot(ctx context.Context) ([]scheduling.ExistingAppointment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT address, city, scheduled_start, scheduled_end, customer_id, customer_name
		FROM appointments
		WHERE created_at > now() - interval '15 days'
		ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []scheduling.ExistingAppointment
	for rows.Next() {
		var (
			appt       scheduling.ExistingAppointment
			start, end sql.NullTime
		)
		if err := rows.Scan(&appt.Address, &appt.City, &start, &end, &appt.CustomerID, &appt.CustomerName); err != nil {
			return nil, err
		}
		if start.Valid && end.Valid {
			st := start.Time.In(s.loc).Format("2006-01-02T15:04:05")
			en := end.Time.In(s.loc).Format("2006-01-02T15:04:05")
			appt.IsExisting = true
			appt.ScheduledStart = &st
			appt.ScheduledEnd = &en
		}
		out = append(out, appt)
	}
	return out, rows.Err()
}
