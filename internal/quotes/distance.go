package quotes

import (
	"context"
	"time"

	"github.com/bouncehq/rentals-backend/internal/pricing"
	"github.com/bouncehq/rentals-backend/pkg/logger"
	"github.com/bouncehq/rentals-backend/pkg/maps"
	"github.com/bouncehq/rentals-backend/pkg/metrics"
)

const distanceCacheTTL = 24 * time.Hour

// routeClient is the Routes API surface the resolver consumes.
type routeClient interface {
	DrivingRoute(ctx context.Context, origin, dest maps.LatLng) (*maps.Route, error)
}

// distanceCache is the redis surface used to memoize resolved distances.
type distanceCache interface {
	DistanceKey(originLat, originLng, destLat, destLng float64) string
	GetCachedDistance(ctx context.Context, key string) (float64, bool, error)
	CacheDistance(ctx context.Context, key string, miles float64, ttl time.Duration) error
}

// DistanceResolver produces best-effort driving distances: cache first, then
// the Routes API, then the haversine-based estimate. It never fails a quote.
type DistanceResolver struct {
	client  routeClient
	cache   distanceCache
	metrics *metrics.PricingMetrics
	logg    *logger.Logger
	timeout time.Duration
}

// NewDistanceResolver builds the resolver. Every dependency is optional:
// a nil client skips the live lookup, a nil cache skips memoization.
func NewDistanceResolver(client routeClient, cache distanceCache, m *metrics.PricingMetrics, logg *logger.Logger, timeout time.Duration) *DistanceResolver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &DistanceResolver{
		client:  client,
		cache:   cache,
		metrics: m,
		logg:    logg,
		timeout: timeout,
	}
}

// Miles resolves the driving distance between the two coordinates. Unknown
// coordinates resolve to zero; an unreachable Routes API degrades to the
// scaled great-circle estimate.
func (r *DistanceResolver) Miles(ctx context.Context, origin, dest pricing.LatLng) float64 {
	if origin.IsZero() || dest.IsZero() {
		return 0
	}

	var key string
	if r.cache != nil {
		key = r.cache.DistanceKey(origin.Lat, origin.Lng, dest.Lat, dest.Lng)
		if miles, found, err := r.cache.GetCachedDistance(ctx, key); err == nil && found {
			r.metrics.IncDistanceLookup(metrics.DistanceSourceCache)
			return miles
		}
	}

	if r.client != nil {
		lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		route, err := r.client.DrivingRoute(lookupCtx,
			maps.LatLng{Latitude: origin.Lat, Longitude: origin.Lng},
			maps.LatLng{Latitude: dest.Lat, Longitude: dest.Lng})
		if err == nil && route.Miles > 0 {
			r.metrics.IncDistanceLookup(metrics.DistanceSourceRoutes)
			if r.cache != nil {
				if cacheErr := r.cache.CacheDistance(ctx, key, route.Miles, distanceCacheTTL); cacheErr != nil && r.logg != nil {
					r.logg.Warn(ctx, "caching driving distance failed")
				}
			}
			return route.Miles
		}
		if err != nil && r.logg != nil {
			r.logg.Warn(ctx, "routes api lookup failed, using fallback estimate")
		}
	}

	r.metrics.IncDistanceLookup(metrics.DistanceSourceFallback)
	return pricing.FallbackMiles(origin, dest)
}
