package apperrors

import "errors"

var (
	// ErrNotFound indicates a beer id that is not present in the current
	// catalog snapshot. Callers should surface a clarification request.
	ErrNotFound = errors.New("not found")

	// ErrFetchFailed indicates the live catalog fetch failed and the cached
	// snapshot was served instead. Recoverable; warn the user.
	ErrFetchFailed = errors.New("catalog fetch failed")

	// ErrNoDataAvailable indicates the first-ever fetch failed and no cached
	// snapshot exists. The returned catalog is empty.
	ErrNoDataAvailable = errors.New("no catalog data available")

	// ErrInvalidBeerRecord indicates a scraped record that failed validation
	// and was dropped from the snapshot.
	ErrInvalidBeerRecord = errors.New("invalid beer record")

	// ErrInsufficientData indicates fewer than two evaluated beers. Expected
	// business condition, not a fault: prompt for more tasting.
	ErrInsufficientData = errors.New("insufficient tasting data")

	// ErrAllTasted indicates every beer in the catalog has been tasted.
	// Expected terminal condition for tasting-order requests.
	ErrAllTasted = errors.New("all beers tasted")

	// ErrSessionNotFound indicates an unknown or expired session id.
	ErrSessionNotFound = errors.New("session not found")
)
