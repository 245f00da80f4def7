package models

import "errors"

var (
	// ErrNotFound is returned when a scenario id is unknown.
	ErrNotFound = errors.New("not found")
	// ErrUpstreamUnavailable is returned when the price API answers with a non-success status.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrServiceUnavailable covers any other failure while fetching market data.
	ErrServiceUnavailable = errors.New("service unavailable")
)
