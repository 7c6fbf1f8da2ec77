package viaggiatreno

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &Client{
		Endpoint:   server.URL,
		HTTPClient: &http.Client{Timeout: 2 * time.Second},
	}
}

// slowHandler blocks until the client side gives up.
func slowHandler(w http.ResponseWriter, r *http.Request) {
	select {
	case <-r.Context().Done():
	case <-time.After(10 * time.Second):
	}
}

func TestClientTimeoutClassification(t *testing.T) {
	client := testClient(t, slowHandler)
	client.HTTPClient.Timeout = 50 * time.Millisecond

	_, err := client.SearchStations(context.Background(), "MILANO")
	assert.ErrorIs(t, err, ErrUpstreamTimeout)
}

func TestClientContextDeadline(t *testing.T) {
	client := testClient(t, slowHandler)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.SearchStations(ctx, "MILANO")
	assert.ErrorIs(t, err, ErrUpstreamTimeout)
}

func TestClientUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client := &Client{Endpoint: server.URL, HTTPClient: &http.Client{Timeout: time.Second}}

	_, err := client.SearchStations(context.Background(), "MILANO")
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestClientNon200IsUnavailable(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.SearchStations(context.Background(), "MILANO")
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestClientMalformedPayloads(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"html error page", "text/html", "<html>maintenance</html>"},
		{"declared json but broken", "application/json", `[{"nomeLungo": `},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tc.contentType)
				w.Write([]byte(tc.body))
			})

			_, err := client.SearchStations(context.Background(), "MILANO")
			assert.ErrorIs(t, err, ErrUpstreamMalformed)
		})
	}
}

func TestClientEmptyBodyMeansNoRecord(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
	})

	stations, err := client.SearchStations(context.Background(), "ZZZZZZ")
	require.NoError(t, err)
	assert.Empty(t, stations)

	_, err = client.TrainProgress(context.Background(), "S01700", "99999", 1767225600000)
	assert.ErrorIs(t, err, ErrTrainNotFound)

	_, err = client.JourneySolutions(context.Background(), 1700, 8409, "2026-08-29T09:00:00")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClientPathConstruction(t *testing.T) {
	var gotPath string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
	})

	_, err := client.Departures(context.Background(), "S01700", "Sat Aug 29 2026 14:30:00 GMT+0200")
	require.NoError(t, err)

	assert.Equal(t, "/partenze/S01700/Sat%20Aug%2029%202026%2014:30:00%20GMT+0200", gotPath)
}

func TestStationDetailNotFound(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"codStazione": ""}`))
	})

	_, err := client.StationDetail(context.Background(), "S99999", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStationRegion(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(" 9\n"))
	})

	region, err := client.StationRegion(context.Background(), "S02430")
	require.NoError(t, err)
	assert.Equal(t, 9, region)
}

func TestStationRegionEmptyBody(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.StationRegion(context.Background(), "S99999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTrainProgressDecodesMixedNumberTypes(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"numeroTreno": 9600,
			"idOrigine": "S01700",
			"categoria": "FR",
			"ritardo": 5,
			"fermate": []
		}`))
	})

	progress, err := client.TrainProgress(context.Background(), "S01700", "9600", 1767225600000)
	require.NoError(t, err)
	assert.Equal(t, "9600", progress.Number.String())
	assert.Equal(t, 5, progress.Delay)
}
