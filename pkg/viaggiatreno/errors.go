package viaggiatreno

import "errors"

// The upstream failure taxonomy. Callers distinguish these with errors.Is;
// everything the transport can produce maps onto exactly one of them so no
// raw upstream error body ever reaches the presentation layer.
var (
	ErrNotFound            = errors.New("no such station or region")
	ErrTrainNotFound       = errors.New("no train run for that origin, number and date")
	ErrUpstreamTimeout     = errors.New("viaggiatreno: request timed out")
	ErrUpstreamUnavailable = errors.New("viaggiatreno: unreachable or refusing requests")
	ErrUpstreamMalformed   = errors.New("viaggiatreno: unexpected response shape")
)
