package viaggiatreno

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/trenovivo/trenovivo/pkg/metrics"
	"github.com/trenovivo/trenovivo/pkg/util"
)

const DefaultEndpoint = "http://www.viaggiatreno.it/infomobilita/resteasy/viaggiatreno"

const defaultTimeout = 30 * time.Second

// Client is the thin GET-only wrapper over the ViaggiaTreno REST boundary.
// It owns URL construction, error classification and raw payload decoding;
// everything above it works on the Raw* shapes, never on response bodies.
type Client struct {
	Endpoint   string
	HTTPClient *http.Client
	Metrics    *metrics.Collector
}

func NewClient(collector *metrics.Collector) *Client {
	endpoint := util.GetEnvironmentVariable("TRENOVIVO_VIAGGIATRENO_ENDPOINT", DefaultEndpoint)

	timeout := defaultTimeout
	if value := util.GetEnvironmentVariable("TRENOVIVO_UPSTREAM_TIMEOUT", ""); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			timeout = parsed
		} else {
			log.Warn().Str("value", value).Msg("Ignoring invalid upstream timeout")
		}
	}

	return &Client{
		Endpoint:   endpoint,
		HTTPClient: &http.Client{Timeout: timeout},
		Metrics:    collector,
	}
}

// get performs one upstream call and classifies every possible failure into
// the package error taxonomy. The returned flag reports whether the upstream
// declared the body as JSON.
func (c *Client) get(ctx context.Context, endpoint string, args ...string) ([]byte, bool, error) {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, endpoint)
	for _, arg := range args {
		parts = append(parts, url.PathEscape(arg))
	}

	requestURL := strings.TrimSuffix(c.Endpoint, "/") + "/" + strings.Join(parts, "/")

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", endpoint, ErrUpstreamUnavailable)
	}

	if c.Metrics != nil {
		c.Metrics.UpstreamCalls.WithLabelValues(endpoint).Inc()
	}

	startTime := time.Now()
	response, err := c.HTTPClient.Do(request)
	if c.Metrics != nil {
		c.Metrics.UpstreamDuration.Observe(time.Since(startTime).Seconds())
	}

	if err != nil {
		reason := "unavailable"
		classified := ErrUpstreamUnavailable

		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			reason = "timeout"
			classified = ErrUpstreamTimeout
		}

		if c.Metrics != nil {
			c.Metrics.UpstreamFailures.WithLabelValues(endpoint, reason).Inc()
		}

		log.Debug().Err(err).Str("endpoint", endpoint).Msg("Upstream call failed")
		return nil, false, fmt.Errorf("%s: %w", endpoint, classified)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		if c.Metrics != nil {
			c.Metrics.UpstreamFailures.WithLabelValues(endpoint, "unavailable").Inc()
		}
		return nil, false, fmt.Errorf("%s: %w", endpoint, ErrUpstreamUnavailable)
	}

	if response.StatusCode != http.StatusOK {
		if c.Metrics != nil {
			c.Metrics.UpstreamFailures.WithLabelValues(endpoint, "status").Inc()
		}
		return nil, false, fmt.Errorf("%s: status %d: %w", endpoint, response.StatusCode, ErrUpstreamUnavailable)
	}

	isJSON := strings.Contains(response.Header.Get("Content-Type"), "json")

	return body, isJSON, nil
}

// getJSON decodes a JSON endpoint into out. The second return is false when
// the upstream answered with an empty body, which is how it reports "no such
// record" on most endpoints.
func (c *Client) getJSON(ctx context.Context, out any, endpoint string, args ...string) (bool, error) {
	body, isJSON, err := c.get(ctx, endpoint, args...)
	if err != nil {
		return false, err
	}

	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" {
		return false, nil
	}

	if !isJSON {
		if c.Metrics != nil {
			c.Metrics.UpstreamFailures.WithLabelValues(endpoint, "malformed").Inc()
		}
		return false, fmt.Errorf("%s: expected JSON: %w", endpoint, ErrUpstreamMalformed)
	}

	if err := json.Unmarshal(body, out); err != nil {
		if c.Metrics != nil {
			c.Metrics.UpstreamFailures.WithLabelValues(endpoint, "malformed").Inc()
		}
		return false, fmt.Errorf("%s: %v: %w", endpoint, err, ErrUpstreamMalformed)
	}

	return true, nil
}

// AutocompleteStations returns the raw pipe-delimited "name|code" lines for a
// station name prefix.
func (c *Client) AutocompleteStations(ctx context.Context, prefix string) (string, error) {
	body, _, err := c.get(ctx, "autocompletaStazione", prefix)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// SearchStations is the richer JSON station search, carrying both name forms
// and the opaque map coordinates.
func (c *Client) SearchStations(ctx context.Context, prefix string) ([]RawStation, error) {
	var stations []RawStation
	found, err := c.getJSON(ctx, &stations, "cercaStazione", prefix)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	return stations, nil
}

func (c *Client) StationDetail(ctx context.Context, stationID string, region int) (*RawStationDetail, error) {
	var detail RawStationDetail
	found, err := c.getJSON(ctx, &detail, "dettaglioStazione", stationID, strconv.Itoa(region))
	if err != nil {
		return nil, err
	}
	if !found || detail.Code == "" {
		return nil, fmt.Errorf("station %s region %d: %w", stationID, region, ErrNotFound)
	}

	return &detail, nil
}

// StationRegion resolves the region code for a station. The endpoint answers
// with a bare number, or nothing at all for unknown stations.
func (c *Client) StationRegion(ctx context.Context, stationID string) (int, error) {
	body, _, err := c.get(ctx, "regione", stationID)
	if err != nil {
		return 0, err
	}

	region, err := strconv.Atoi(strings.TrimSpace(string(body)))
	if err != nil {
		return 0, fmt.Errorf("station %s: %w", stationID, ErrNotFound)
	}

	return region, nil
}

func (c *Client) StationsByRegion(ctx context.Context, region int) ([]RawStationDetail, error) {
	var stations []RawStationDetail
	found, err := c.getJSON(ctx, &stations, "elencoStazioni", strconv.Itoa(region))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("region %d: %w", region, ErrNotFound)
	}

	return stations, nil
}

// Departures fetches a raw departures board. boardTime must already be in the
// upstream's textual board timestamp layout.
func (c *Client) Departures(ctx context.Context, stationID string, boardTime string) ([]RawBoardRecord, error) {
	var records []RawBoardRecord
	if _, err := c.getJSON(ctx, &records, "partenze", stationID, boardTime); err != nil {
		return nil, err
	}

	return records, nil
}

func (c *Client) Arrivals(ctx context.Context, stationID string, boardTime string) ([]RawBoardRecord, error) {
	var records []RawBoardRecord
	if _, err := c.getJSON(ctx, &records, "arrivi", stationID, boardTime); err != nil {
		return nil, err
	}

	return records, nil
}

// TrainProgress fetches the detailed per-stop progress record for one run.
// The upstream reports an unknown run with an empty body, which maps to
// ErrTrainNotFound; a present record with missing stops does not.
func (c *Client) TrainProgress(ctx context.Context, originID string, trainNumber string, departureEpochMs int64) (*RawProgress, error) {
	var progress RawProgress
	found, err := c.getJSON(ctx, &progress, "andamentoTreno", originID, trainNumber, strconv.FormatInt(departureEpochMs, 10))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("train %s from %s: %w", trainNumber, originID, ErrTrainNotFound)
	}

	return &progress, nil
}

// TrainNumberAutocomplete returns the raw line-delimited candidates for a
// train number.
func (c *Client) TrainNumberAutocomplete(ctx context.Context, trainNumber string) (string, error) {
	body, _, err := c.get(ctx, "cercaNumeroTrenoTrenoAutocomplete", trainNumber)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// JourneySolutions searches itineraries between two stations. Codes are the
// bare ENEE numbers, without the 'S' prefix.
func (c *Client) JourneySolutions(ctx context.Context, originENEE int, destENEE int, isoTime string) (*RawSolutions, error) {
	var solutions RawSolutions
	found, err := c.getJSON(ctx, &solutions, "soluzioniViaggioNew", strconv.Itoa(originENEE), strconv.Itoa(destENEE), isoTime)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("journey %d to %d: %w", originENEE, destENEE, ErrNotFound)
	}

	return &solutions, nil
}

func (c *Client) Statistics(ctx context.Context, epochMs int64) (*RawStats, error) {
	var stats RawStats
	found, err := c.getJSON(ctx, &stats, "statistiche", strconv.FormatInt(epochMs, 10))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("statistics: %w", ErrUpstreamMalformed)
	}

	return &stats, nil
}
