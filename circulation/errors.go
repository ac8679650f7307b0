package circulation

import "errors"

// Domain errors. They are returned as values and are testable with errors.Is.
var (
	// ErrNotFound is returned when a referenced book or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrOutOfStock is returned when a decrement is attempted on a book with no copy left.
	ErrOutOfStock = errors.New("book is out of stock")

	// ErrLimitExceeded is returned when a user already has MaxActiveLoans active loans.
	ErrLimitExceeded = errors.New("user has reached the borrowing limit")

	// ErrMetadataUnavailable is returned when the catalog could not resolve a book's title in time.
	ErrMetadataUnavailable = errors.New("catalog metadata unavailable")

	// ErrNoActiveLoan is returned when a return is requested without a matching active loan.
	ErrNoActiveLoan = errors.New("no active loan for this user and book")

	// ErrInventoryInconsistent is returned when a return cannot put the copy back on an existing book row.
	ErrInventoryInconsistent = errors.New("inventory is inconsistent")

	// ErrStoreUnavailable wraps every persistent store failure that is not a domain error.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrConcurrencyConflict is returned when the store aborted a transaction because of a
	// serialization failure or a deadlock. The operation can be retried.
	ErrConcurrencyConflict = errors.New("concurrency conflict")

	// ErrInvalidArgument is returned for out-of-range query parameters.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrValidation is returned when user input does not satisfy the profile rules.
	ErrValidation = errors.New("validation failed")
)

// Engine errors.
var (
	// ErrNilDatabaseConnection is returned when a nil database connection is provided to an engine factory.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyTableName is returned when an empty table name is configured.
	ErrEmptyTableName = errors.New("table name must not be empty")

	// ErrBuildingQueryFailed is returned when the SQL builder cannot render a statement.
	ErrBuildingQueryFailed = errors.New("building query failed")

	// ErrScanningDBRowFailed is returned when a result row cannot be scanned.
	ErrScanningDBRowFailed = errors.New("scanning db row failed")

	// ErrInvalidPayloadJSON is returned when a journal payload is not valid JSON.
	ErrInvalidPayloadJSON = errors.New("payload json is not valid")

	// ErrInvalidMetadataJSON is returned when a journal metadata document is not valid JSON.
	ErrInvalidMetadataJSON = errors.New("metadata json is not valid")
)
