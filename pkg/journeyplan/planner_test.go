package journeyplan

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trenovivo/trenovivo/pkg/ctdf"
	"github.com/trenovivo/trenovivo/pkg/temporal"
	"github.com/trenovivo/trenovivo/pkg/viaggiatreno"
)

func testPlanner(t *testing.T, handler http.HandlerFunc) *Planner {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewPlanner(&viaggiatreno.Client{
		Endpoint:   server.URL,
		HTTPClient: &http.Client{Timeout: 2 * time.Second},
	})
}

const solutionsPayload = `{
	"origine": "MILANO CENTRALE",
	"destinazione": "ROMA TERMINI",
	"soluzioni": [
		{
			"durata": "2:55",
			"vehicles": [
				{
					"origine": "MILANO CENTRALE",
					"destinazione": "ROMA TERMINI",
					"orarioPartenza": "2026-01-01T09:00:00",
					"orarioArrivo": "2026-01-01T11:55:00",
					"categoriaDescrizione": "FR",
					"numeroTreno": 9615
				}
			]
		},
		{
			"durata": "4:10",
			"vehicles": [
				{
					"origine": "MILANO CENTRALE",
					"destinazione": "BOLOGNA CENTRALE",
					"orarioPartenza": "2026-01-01T09:05:00",
					"orarioArrivo": "2026-01-01T10:10:00",
					"categoriaDescrizione": "IC",
					"numeroTreno": "601"
				},
				{
					"origine": "BOLOGNA CENTRALE",
					"destinazione": "ROMA TERMINI",
					"orarioPartenza": "2026-01-01T10:30:00",
					"orarioArrivo": "2026-01-01T13:15:00",
					"categoriaDescrizione": "FR",
					"numeroTreno": 8505
				}
			]
		}
	]
}`

func TestSearch(t *testing.T) {
	planner := testPlanner(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/soluzioniViaggioNew/1700/8409/2026-01-01T09:00:00", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(solutionsPayload))
	})

	at := time.Date(2026, time.January, 1, 9, 0, 0, 0, time.FixedZone("CET", 3600))

	candidates, err := planner.Search(
		context.Background(),
		ctdf.ParseStationCode("S01700"),
		ctdf.ParseStationCode("S08409"),
		at,
	)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	direct := candidates[0]
	assert.Equal(t, 175, direct.NotionalDuration.Minutes)
	assert.Equal(t, ctdf.ConfidenceNotional, direct.NotionalDuration.Confidence)
	assert.False(t, direct.DurationSuspect)
	require.Len(t, direct.Legs, 1)
	assert.Equal(t, "9615", direct.Legs[0].Number)
	assert.Equal(t, "FR", direct.Legs[0].Category)
	assert.Equal(t, "MILANO CENTRALE", direct.Legs[0].BoardingName)
	assert.Equal(t, "ROMA TERMINI", direct.Legs[0].AlightingName)
	assert.Equal(t, 9, direct.Legs[0].Departure.Hour())
	// Leg timestamps carry the Italian wall clock, same as the search query
	assert.Equal(t, "2026-01-01T09:00:00", temporal.FormatSearchTimestamp(direct.Legs[0].Departure))
	assert.Equal(t, "2026-01-01T11:55:00", temporal.FormatSearchTimestamp(direct.Legs[0].Arrival))

	connecting := candidates[1]
	require.Len(t, connecting.Legs, 2)
	assert.Equal(t, "601", connecting.Legs[0].Number)
	assert.Equal(t, "8505", connecting.Legs[1].Number)
	assert.Equal(t, 65, connecting.Legs[0].SpanMinutes())
}

func TestSearchRICSCodesTranslate(t *testing.T) {
	planner := testPlanner(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/soluzioniViaggioNew/1700/8409/2026-01-01T09:00:00", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"soluzioni": []}`))
	})

	at := time.Date(2026, time.January, 1, 9, 0, 0, 0, time.FixedZone("CET", 3600))

	candidates, err := planner.Search(
		context.Background(),
		ctdf.ParseStationCode("830001700"),
		ctdf.ParseStationCode("830008409"),
		at,
	)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestSearchUntranslatableCode(t *testing.T) {
	planner := testPlanner(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no upstream call expected for an untranslatable code")
	})

	_, err := planner.Search(
		context.Background(),
		ctdf.ParseStationCode("F12345"),
		ctdf.ParseStationCode("S08409"),
		time.Now(),
	)
	assert.ErrorIs(t, err, viaggiatreno.ErrNotFound)
}

func TestSearchSuspectDuration(t *testing.T) {
	planner := testPlanner(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"soluzioni": [
			{"durata": "25:10", "vehicles": []},
			{"durata": "garbled", "vehicles": []}
		]}`))
	})

	candidates, err := planner.Search(
		context.Background(),
		ctdf.ParseStationCode("S01700"),
		ctdf.ParseStationCode("S08409"),
		time.Now(),
	)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, 1510, candidates[0].NotionalDuration.Minutes)
	assert.True(t, candidates[0].DurationSuspect)

	// Unparseable spans stay absent rather than poisoning the candidate
	assert.Equal(t, ctdf.ConfidenceAbsent, candidates[1].NotionalDuration.Confidence)
}
