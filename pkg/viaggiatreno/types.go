package viaggiatreno

import (
	"bytes"
	"encoding/json"
)

// FlexibleNumber decodes the upstream train number, which is sometimes a JSON
// number and sometimes a string carrying letters (e.g. suburban "Urb" runs).
type FlexibleNumber string

func (n *FlexibleNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = FlexibleNumber(s)
		return nil
	}

	*n = FlexibleNumber(data)
	return nil
}

func (n FlexibleNumber) String() string {
	return string(n)
}

// RawStation is one element of the cercaStazione response.
type RawStation struct {
	ID        string  `json:"id"`
	LongName  string  `json:"nomeLungo"`
	ShortName string  `json:"nomeBreve"`
	MapLat    float64 `json:"latMappaCitta"`
	MapLon    float64 `json:"lonMappaCitta"`
}

type RawLocality struct {
	ID        string `json:"id"`
	LongName  string `json:"nomeLungo"`
	ShortName string `json:"nomeBreve"`
	Label     string `json:"label"`
}

// RawStationDetail is the dettaglioStazione shape, also used by the
// elencoStazioni array elements.
type RawStationDetail struct {
	Code       string      `json:"codStazione"`
	RegionCode int         `json:"codReg"`
	City       string      `json:"nomeCitta"`
	Locality   RawLocality `json:"localita"`
	Lat        float64     `json:"lat"`
	Lon        float64     `json:"lon"`
	MapLat     float64     `json:"latMappaCitta"`
	MapLon     float64     `json:"lonMappaCitta"`
}

// RawBoardRecord is one row of partenze or arrivi. The two endpoints share
// this shape, each leaving the other's fields zeroed.
type RawBoardRecord struct {
	Category      string         `json:"categoriaDescrizione"`
	Number        FlexibleNumber `json:"numeroTreno"`
	DepartureDate int64          `json:"dataPartenzaTreno"`

	// codOrigine on boards, idOrigine on some variants; one of the two is set
	OriginCode string `json:"codOrigine"`
	OriginID   string `json:"idOrigine"`

	Origin      string `json:"origine"`
	Destination string `json:"destinazione"`

	ScheduledDepartureTrack string `json:"binarioProgrammatoPartenzaDescrizione"`
	ActualDepartureTrack    string `json:"binarioEffettivoPartenzaDescrizione"`
	ScheduledArrivalTrack   string `json:"binarioProgrammatoArrivoDescrizione"`
	ActualArrivalTrack      string `json:"binarioEffettivoArrivoDescrizione"`

	DepartureTime *int64 `json:"orarioPartenza"`
	ArrivalTime   *int64 `json:"orarioArrivo"`

	NotDeparted bool `json:"nonPartito"`
	InStation   bool `json:"inStazione"`

	Delay   int    `json:"ritardo"`
	Warning string `json:"subTitle"`
}

type RawNumberChange struct {
	NewNumber FlexibleNumber `json:"nuovoNumeroTreno"`
	Station   string         `json:"stazione"`
}

type RawProgressStop struct {
	ID       string `json:"id"`
	Station  string `json:"stazione"`
	StopType string `json:"tipoFermata"`

	ScheduledArrival   *int64 `json:"arrivo_teorico"`
	ActualArrival      *int64 `json:"arrivoReale"`
	ScheduledDeparture *int64 `json:"partenza_teorica"`
	ActualDeparture    *int64 `json:"partenzaReale"`

	ScheduledArrivalTrack   string `json:"binarioProgrammatoArrivoDescrizione"`
	ActualArrivalTrack      string `json:"binarioEffettivoArrivoDescrizione"`
	ScheduledDepartureTrack string `json:"binarioProgrammatoPartenzaDescrizione"`
	ActualDepartureTrack    string `json:"binarioEffettivoPartenzaDescrizione"`

	DelayAtArrival   int `json:"ritardoArrivo"`
	DelayAtDeparture int `json:"ritardoPartenza"`
	Delay            int `json:"ritardo"`
}

// RawProgress is the andamentoTreno response, an extension of the board shape
// with the per-stop itinerary.
type RawProgress struct {
	LastDetectionTime    *int64 `json:"oraUltimoRilevamento"`
	LastDetectionStation string `json:"stazioneUltimoRilevamento"`

	TrainType string         `json:"tipoTreno"`
	Category  string         `json:"categoria"`
	Number    FlexibleNumber `json:"numeroTreno"`

	DepartureDate int64  `json:"dataPartenzaTreno"`
	OriginID      string `json:"idOrigine"`
	Origin        string `json:"origine"`
	Destination   string `json:"destinazione"`
	DestinationID string `json:"idDestinazione"`

	// HasNumberChanges is decoded for completeness but known unreliable;
	// NumberChanges is the only signal acted on
	HasNumberChanges bool              `json:"haCambiNumero"`
	NumberChanges    []RawNumberChange `json:"cambiNumero"`

	DepartureTime *int64 `json:"orarioPartenza"`
	ArrivalTime   *int64 `json:"orarioArrivo"`

	NotDeparted bool `json:"nonPartito"`
	InStation   bool `json:"inStazione"`

	Delay       int    `json:"ritardo"`
	Warning     string `json:"subTitle"`
	DelayReason string `json:"motivoRitardoPrevalente"`

	Stops []RawProgressStop `json:"fermate"`
}

type RawSolutionVehicle struct {
	Origin      string `json:"origine"`
	Destination string `json:"destinazione"`

	// ISO timestamps here, unlike the epoch millis everywhere else
	DepartureTime string `json:"orarioPartenza"`
	ArrivalTime   string `json:"orarioArrivo"`

	Category string         `json:"categoriaDescrizione"`
	Number   FlexibleNumber `json:"numeroTreno"`
}

type RawSolution struct {
	Duration string               `json:"durata"`
	Vehicles []RawSolutionVehicle `json:"vehicles"`
}

type RawSolutions struct {
	Origin      string        `json:"origine"`
	Destination string        `json:"destinazione"`
	Solutions   []RawSolution `json:"soluzioni"`
}

type RawStats struct {
	TrainsSinceMidnight int   `json:"treniGiorno"`
	TrainsRunning       int   `json:"treniCircolanti"`
	LastUpdate          int64 `json:"ultimoAggiornamento"`
}
