package core

import "errors"

var (
	// ErrFileUnreadable is returned when an input is missing, not
	// readable, or not a decodable media file.
	ErrFileUnreadable = errors.New("file unreadable")

	// ErrUnsupportedFormat is returned when no handler exists for a file.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrMalformedTimestamp marks a capture timestamp that is present but
	// does not parse. The literal is kept.
	ErrMalformedTimestamp = errors.New("malformed timestamp")

	// ErrMalformedGPS marks GPS tags that are present but incomplete or
	// not numeric. Both coordinates resolve to absent.
	ErrMalformedGPS = errors.New("malformed gps component")

	// ErrSidecarWrite is returned when a sidecar file cannot be written.
	ErrSidecarWrite = errors.New("sidecar write failed")

	// ErrCSVWrite is returned when the shared CSV summary cannot be written.
	ErrCSVWrite = errors.New("csv write failed")

	// ErrSinkUnavailable is returned by an emitter that has been disabled
	// by an earlier failure.
	ErrSinkUnavailable = errors.New("sink unavailable")

	// ErrNoValidInputs is returned when there is nothing to report on.
	ErrNoValidInputs = errors.New("no valid inputs")
)
