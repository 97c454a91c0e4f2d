// README: Google Maps geocoder with in-process memoization and a shared
// Redis write-through cache.
package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/maypok86/otter/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"googlemaps.github.io/maps"

	"saguaro/internal/types"
)

const (
	memoCapacity = 10_000
	memoTTL      = 24 * time.Hour
	redisTTL     = 7 * 24 * time.Hour
	redisPrefix  = "saguaro:geocode:"
)

// cachedPoint also remembers failures so a bad address costs one lookup per
// cache lifetime instead of one per request.
type cachedPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
	OK  bool    `json:"ok"`
}

// Geocoder resolves street addresses via the Google Maps Geocoding API.
// Results are memoized in-process (otter) and shared across processes
// through Redis when a client is provided.
type Geocoder struct {
	client *maps.Client
	memo   *otter.Cache[string, cachedPoint]
	rdb    *redis.Client
	log    zerolog.Logger
}

// NewGeocoder creates a Geocoder. rdb may be nil to disable the shared cache.
func NewGeocoder(apiKey string, rdb *redis.Client, log zerolog.Logger) (*Geocoder, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	memo := otter.Must(&otter.Options[string, cachedPoint]{
		MaximumSize:      memoCapacity,
		ExpiryCalculator: otter.ExpiryWriting[string, cachedPoint](memoTTL),
	})
	return &Geocoder{client: client, memo: memo, rdb: rdb, log: log}, nil
}

// Geocode returns the coordinates for an address, or ok=false when the
// address cannot be resolved. Transient API errors are retried with backoff;
// a request that still fails is reported as unresolvable rather than fatal.
func (g *Geocoder) Geocode(ctx context.Context, address string) (types.LatLng, bool) {
	if cp, ok := g.memo.GetIfPresent(address); ok {
		return types.LatLng{Lat: cp.Lat, Lng: cp.Lng}, cp.OK
	}
	if cp, ok := g.fromRedis(ctx, address); ok {
		g.memo.Set(address, cp)
		return types.LatLng{Lat: cp.Lat, Lng: cp.Lng}, cp.OK
	}

	cp := g.lookup(ctx, address)
	g.memo.Set(address, cp)
	g.toRedis(ctx, address, cp)
	return types.LatLng{Lat: cp.Lat, Lng: cp.Lng}, cp.OK
}

func (g *Geocoder) lookup(ctx context.Context, address string) cachedPoint {
	var results []maps.GeocodingResult
	err := retry.Do(
		func() error {
			var err error
			results, err = g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
			return err
		},
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		g.log.Warn().Err(err).Str("address", address).Msg("geocoding failed")
		return cachedPoint{}
	}
	if len(results) == 0 {
		g.log.Debug().Str("address", address).Msg("geocoding returned no results")
		return cachedPoint{}
	}
	loc := results[0].Geometry.Location
	return cachedPoint{Lat: loc.Lat, Lng: loc.Lng, OK: true}
}

func (g *Geocoder) fromRedis(ctx context.Context, address string) (cachedPoint, bool) {
	if g.rdb == nil {
		return cachedPoint{}, false
	}
	raw, err := g.rdb.Get(ctx, redisPrefix+address).Bytes()
	if err != nil {
		return cachedPoint{}, false
	}
	var cp cachedPoint
	if err := json.Unmarshal(raw, &cp); err != nil {
		return cachedPoint{}, false
	}
	return cp, true
}

func (g *Geocoder) toRedis(ctx context.Context, address string, cp cachedPoint) {
	if g.rdb == nil {
		return
	}
	raw, err := json.Marshal(cp)
	if err != nil {
		return
	}
	if err := g.rdb.Set(ctx, redisPrefix+address, raw, redisTTL).Err(); err != nil {
		g.log.Debug().Err(err).Msg("geocode cache write failed")
	}
}
