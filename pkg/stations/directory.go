package stations

import (
	"context"
	"fmt"
	"strings"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/trenovivo/trenovivo/pkg/ctdf"
	"github.com/trenovivo/trenovivo/pkg/util"
	"github.com/trenovivo/trenovivo/pkg/viaggiatreno"
	"golang.org/x/sync/singleflight"
)

// Directory resolves free-text queries and station codes to canonical
// stations. It is the only component holding cross-request state: a
// read-through cache keyed by station id and query prefix, populated at most
// once per key at a time.
type Directory struct {
	client *viaggiatreno.Client

	cache *cache.Cache[string]
	group singleflight.Group
}

func NewDirectory(client *viaggiatreno.Client) *Directory {
	return &Directory{
		client: client,
		cache:  newDirectoryCache(),
	}
}

// SearchByPrefix matches station names case-insensitively against the
// upstream autocomplete source. Results keep the upstream order; entries with
// identical identifiers collapse to one. No fuzzy dedup is attempted across
// code namespaces.
func (d *Directory) SearchByPrefix(ctx context.Context, text string) ([]ctdf.Station, error) {
	key := "search:" + strings.ToUpper(strings.TrimSpace(text))

	return lookupCached(d, ctx, key, func(ctx context.Context) ([]ctdf.Station, error) {
		raw, err := d.client.AutocompleteStations(ctx, text)
		if err != nil {
			return nil, err
		}

		var results []ctdf.Station
		seen := map[string]bool{}

		for _, line := range strings.Split(raw, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			name, code, found := strings.Cut(line, "|")
			if !found {
				return nil, fmt.Errorf("autocompletaStazione line %q: %w", line, viaggiatreno.ErrUpstreamMalformed)
			}

			station := stationFromNameAndCode(name, code)
			if seen[station.Code.Value] {
				continue
			}
			seen[station.Code.Value] = true

			results = append(results, station)
		}

		return results, nil
	})
}

// SearchDetailed is the richer JSON search, carrying short names and the
// opaque map coordinates alongside the identifiers.
func (d *Directory) SearchDetailed(ctx context.Context, text string) ([]ctdf.Station, error) {
	key := "searchdetailed:" + strings.ToUpper(strings.TrimSpace(text))

	return lookupCached(d, ctx, key, func(ctx context.Context) ([]ctdf.Station, error) {
		raw, err := d.client.SearchStations(ctx, text)
		if err != nil {
			return nil, err
		}

		var results []ctdf.Station
		seen := map[string]bool{}

		for _, rawStation := range raw {
			station := stationFromNameAndCode(rawStation.LongName, rawStation.ID)
			if !strings.HasPrefix(station.Code.Value, "F") {
				station.ShortName = util.NormalizeDisplayName(rawStation.ShortName)
			}

			if rawStation.MapLat != 0 || rawStation.MapLon != 0 {
				station.MapLocation = &ctdf.Location{
					Latitude:  rawStation.MapLat,
					Longitude: rawStation.MapLon,
				}
			}

			if seen[station.Code.Value] {
				continue
			}
			seen[station.Code.Value] = true

			results = append(results, station)
		}

		return results, nil
	})
}

// Detail fetches one station by id and region, failing with ErrNotFound when
// the upstream has no record for that pair.
func (d *Directory) Detail(ctx context.Context, stationID string, region ctdf.RegionCode) (*ctdf.Station, error) {
	if !region.IsValid() {
		return nil, fmt.Errorf("region %d: %w", region, viaggiatreno.ErrNotFound)
	}

	key := fmt.Sprintf("station:%s:%d", stationID, region)

	return lookupCached(d, ctx, key, func(ctx context.Context) (*ctdf.Station, error) {
		detail, err := d.client.StationDetail(ctx, stationID, int(region))
		if err != nil {
			return nil, err
		}

		station := stationFromDetail(detail)

		return &station, nil
	})
}

// RegionOf resolves which region a station belongs to.
func (d *Directory) RegionOf(ctx context.Context, stationID string) (ctdf.RegionCode, error) {
	key := "region:" + stationID

	return lookupCached(d, ctx, key, func(ctx context.Context) (ctdf.RegionCode, error) {
		region, err := d.client.StationRegion(ctx, stationID)
		if err != nil {
			return 0, err
		}

		code := ctdf.RegionCode(region)
		if !code.IsValid() {
			return 0, fmt.Errorf("station %s reports region %d: %w", stationID, region, viaggiatreno.ErrUpstreamMalformed)
		}

		return code, nil
	})
}

// ListByRegion returns every station of a region. Region 9 results come back
// flagged as a weather-lookup hazard rather than silently usable.
func (d *Directory) ListByRegion(ctx context.Context, region ctdf.RegionCode) ([]ctdf.Station, error) {
	if !region.IsValid() {
		return nil, fmt.Errorf("region %d: %w", region, viaggiatreno.ErrNotFound)
	}

	raw, err := d.client.StationsByRegion(ctx, int(region))
	if err != nil {
		return nil, err
	}

	stations := make([]ctdf.Station, 0, len(raw))
	for i := range raw {
		stations = append(stations, stationFromDetail(&raw[i]))
	}

	return stations, nil
}

// stationFromNameAndCode applies the directory naming policy: identifiers
// beginning with 'F' never resolve to a human readable name, so the raw code
// passes through as the display name untouched.
func stationFromNameAndCode(name string, code string) ctdf.Station {
	code = strings.TrimSpace(code)

	if strings.HasPrefix(code, "F") {
		return ctdf.Station{
			Code:        ctdf.ParseStationCode(code),
			PrimaryName: code,
		}
	}

	return ctdf.Station{
		Code:        ctdf.ParseStationCode(code),
		PrimaryName: util.NormalizeDisplayName(name),
	}
}

func stationFromDetail(detail *viaggiatreno.RawStationDetail) ctdf.Station {
	region := ctdf.RegionCode(detail.RegionCode)

	station := stationFromNameAndCode(detail.Locality.LongName, detail.Code)
	if !strings.HasPrefix(station.Code.Value, "F") {
		station.ShortName = util.NormalizeDisplayName(detail.Locality.ShortName)
	}
	station.Region = region
	station.WeatherHazard = region.IsWeatherHazard()

	if detail.MapLat != 0 || detail.MapLon != 0 {
		station.MapLocation = &ctdf.Location{
			Latitude:  detail.MapLat,
			Longitude: detail.MapLon,
		}
	}

	return station
}
