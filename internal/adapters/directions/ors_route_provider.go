// Package directions implements the RouteProvider port using OpenRouteService.
package directions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shipment-sim-service/internal/adapters/cache"
	"shipment-sim-service/internal/domain"
	"shipment-sim-service/internal/platform/obs"
	"shipment-sim-service/internal/ports"
)

// ORSRouteProvider fetches driving directions from OpenRouteService.
//
// It coordinates:
//   - Persistent route-geometry caching
//   - External API calls with retry/backoff
//
// The provider is safe for concurrent use. A provider constructed without an
// API key reports ErrRouteProviderUnavailable on every call so the caller can
// distinguish misconfiguration from a degraded response.
type ORSRouteProvider struct {
	session    *http.Client
	apiKey     string
	baseURL    string
	profile    string
	routeCache *cache.SQLRouteCache
}

func NewORSRouteProvider(apiKey string, routeCache *cache.SQLRouteCache) *ORSRouteProvider {
	return &ORSRouteProvider{
		session:    &http.Client{Timeout: 10 * time.Second},
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    "https://api.openrouteservice.org",
		profile:    "driving-car",
		routeCache: routeCache,
	}
}

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Features []struct {
		Geometry struct {
			Type        string      `json:"type"`
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// cacheKey renders a coordinate pair with enough precision to be stable.
func cacheKey(c domain.Coordinates) string {
	return strconv.FormatFloat(c.Lon, 'f', 6, 64) + "," + strconv.FormatFloat(c.Lat, 'f', 6, 64)
}

// FetchRoute returns an ordered (lon, lat) line-string between two points.
func (o *ORSRouteProvider) FetchRoute(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (_ []domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.FetchRoute")(&err)

	if o.apiKey == "" {
		return nil, ports.ErrRouteProviderUnavailable
	}

	if err := origin.Validate(); err != nil {
		return nil, fmt.Errorf("fetch route: origin: %w", err)
	}
	if err := destination.Validate(); err != nil {
		return nil, fmt.Errorf("fetch route: destination: %w", err)
	}

	originKey := cacheKey(origin)
	destinationKey := cacheKey(destination)

	// Check the persistent cache before issuing an external API call.
	if o.routeCache != nil {
		cached, ok, cacheErr := o.routeCache.Get(ctx, originKey, destinationKey)
		if cacheErr != nil {
			log.Printf("op=ors.FetchRoute route cache read failed: %v", cacheErr)
		} else if ok {
			return cached, nil
		}
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", o.baseURL, o.profile)

	bodyObj := directionsRequest{
		Coordinates: [][]float64{origin.CoordsToList(), destination.CoordsToList()},
	}

	payload, err := json.Marshal(bodyObj)
	if err != nil {
		return nil, fmt.Errorf("marshal directions request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		body := bytes.NewReader(payload)
		return o.newRequest(ctx, http.MethodPost, endpoint, body)
	})
	if err != nil {
		// ORS reports "no route found" as a 404 with an error body; that is a
		// degraded response, not a provider failure.
		var he *httpStatusError
		if errors.As(err, &he) && he.Code == http.StatusNotFound {
			return nil, ports.ErrNoRoute
		}
		return nil, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("decode directions response: %w", err)
	}

	if len(dr.Features) == 0 {
		return nil, ports.ErrNoRoute
	}

	geometry := dr.Features[0].Geometry
	if geometry.Type != "LineString" {
		return nil, fmt.Errorf("unexpected geometry type %q", geometry.Type)
	}
	if len(geometry.Coordinates) < 2 {
		return nil, ports.ErrNoRoute
	}

	route := make([]domain.Coordinates, 0, len(geometry.Coordinates))
	for i, p := range geometry.Coordinates {
		if len(p) < 2 {
			return nil, fmt.Errorf("geometry point #%d has %d components", i, len(p))
		}
		route = append(route, domain.Coordinates{Lon: p[0], Lat: p[1]})
	}

	if o.routeCache != nil {
		if cacheErr := o.routeCache.Put(ctx, originKey, destinationKey, route); cacheErr != nil {
			log.Printf("op=ors.FetchRoute route cache write failed: %v", cacheErr)
		}
	}

	return route, nil
}
