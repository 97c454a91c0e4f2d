// README: Appointment source contract shared by the ClickUp and Postgres
// backends.
package appointments

import (
	"context"

	"saguaro/internal/modules/scheduling"
)

// Source supplies the snapshot of already-scheduled appointments the engine
// filters against. Implementations may be wrapped by CachedSource.
type Source interface {
	Snapshot(ctx context.Context) ([]scheduling.ExistingAppointment, error)
}
