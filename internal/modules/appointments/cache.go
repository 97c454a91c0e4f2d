// README: Shared on-disk snapshot cache with advisory-lock refresh.
package appointments

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"

	"saguaro/internal/modules/scheduling"
)

const (
	cacheFileName = "appointments.json"
	lockFileName  = "appointments.lock"

	defaultCacheTTL = time.Hour
	lockWait        = 30 * time.Second
	lockPollEvery   = time.Second
)

// snapshotFile is the on-disk cache format.
type snapshotFile struct {
	Timestamp time.Time                         `json:"timestamp"`
	Data      []scheduling.ExistingAppointment `json:"data"`
}

// CachedSource wraps a Source with a cross-process snapshot cache. Only one
// process refreshes a stale cache at a time (exclusive non-blocking flock);
// contenders poll for the holder's result and fall back to fetching
// independently if the holder never finishes, which is safe because the
// fetch is idempotent and side-effect-free.
type CachedSource struct {
	inner Source
	dir   string
	ttl   time.Duration
	log   zerolog.Logger
	now   func() time.Time
}

func NewCachedSource(inner Source, dir string, ttl time.Duration, log zerolog.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedSource{inner: inner, dir: dir, ttl: ttl, log: log, now: time.Now}
}

// Snapshot returns the cached appointment list when fresh, otherwise
// refreshes it. Any cache or lock failure degrades to a direct fetch rather
// than failing the request.
func (c *CachedSource) Snapshot(ctx context.Context) ([]scheduling.ExistingAppointment, error) {
	if data, ok := c.load(); ok {
		return data, nil
	}

	lock := flock.New(filepath.Join(c.dir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		c.log.Warn().Err(err).Msg("cache lock failed, fetching directly")
		return c.inner.Snapshot(ctx)
	}

	if !locked {
		// Another process is refreshing; wait for its result.
		deadline := c.now().Add(lockWait)
		for c.now().Before(deadline) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(lockPollEvery):
			}
			if data, ok := c.load(); ok {
				return data, nil
			}
		}
		// Holder never finished in time; accept the duplicate fetch.
		return c.refresh(ctx)
	}

	defer func() {
		if err := lock.Unlock(); err != nil {
			c.log.Warn().Err(err).Msg("cache unlock failed")
		}
	}()

	// Another process may have refreshed between our load and the lock.
	if data, ok := c.load(); ok {
		return data, nil
	}
	return c.refresh(ctx)
}

func (c *CachedSource) refresh(ctx context.Context) ([]scheduling.ExistingAppointment, error) {
	data, err := c.inner.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.save(data); err != nil {
		c.log.Warn().Err(err).Msg("cache save failed")
	}
	return data, nil
}

func (c *CachedSource) load() ([]scheduling.ExistingAppointment, bool) {
	raw, err := os.ReadFile(filepath.Join(c.dir, cacheFileName))
	if err != nil {
		return nil, false
	}
	var sf snapshotFile
	if err := json.Unmarshal(raw, &sf); err != nil {
		// Corrupted cache reads as stale.
		return nil, false
	}
	if c.now().Sub(sf.Timestamp) >= c.ttl {
		return nil, false
	}
	return sf.Data, true
}

// save publishes the snapshot atomically: write a temp file in the same
// directory, then rename over the cache file, so concurrent readers never
// observe a partial write.
func (c *CachedSource) save(data []scheduling.ExistingAppointment) error {
	if err := os.MkdirAll(c.dir, 0o750); err != nil {
		return err
	}
	raw, err := json.Marshal(snapshotFile{Timestamp: c.now(), Data: data})
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(c.dir, "appointments-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(c.dir, cacheFileName))
}
