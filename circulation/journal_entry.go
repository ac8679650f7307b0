package circulation

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

// JournalEntries is an alias type for a slice of JournalEntry.
type JournalEntries = []JournalEntry

// JournalEntry is a DTO used by the engine to append audit records and read them back.
//
// It is built on scalars so that the engine stays agnostic of the domain event types of the client code.
//
// While its properties are exported, it should only be constructed with the supplied factory methods:
//   - BuildJournalEntry
//   - BuildJournalEntryWithEmptyMetadata
type JournalEntry struct {
	SequenceNumber int64
	EntryType      string
	OccurredAt     time.Time
	PayloadJSON    []byte
	MetadataJSON   []byte
}

// BuildJournalEntry is a factory method for JournalEntry.
// Returns an error if payloadJSON or metadataJSON are not valid JSON.
func BuildJournalEntry(entryType string, occurredAt time.Time, payloadJSON []byte, metadataJSON []byte) (JournalEntry, error) {
	if !jsoniter.Valid(payloadJSON) {
		return JournalEntry{}, ErrInvalidPayloadJSON
	}

	if !jsoniter.Valid(metadataJSON) {
		return JournalEntry{}, ErrInvalidMetadataJSON
	}

	return JournalEntry{
		EntryType:    entryType,
		OccurredAt:   occurredAt,
		PayloadJSON:  payloadJSON,
		MetadataJSON: metadataJSON,
	}, nil
}

// BuildJournalEntryWithEmptyMetadata is a factory method for JournalEntry with "{}" as metadata.
func BuildJournalEntryWithEmptyMetadata(entryType string, occurredAt time.Time, payloadJSON []byte) (JournalEntry, error) {
	return BuildJournalEntry(entryType, occurredAt, payloadJSON, []byte("{}"))
}

// JournalFilter narrows a journal read. Zero values mean "no restriction".
type JournalFilter struct {
	UserID UserID
	BookID BookID
	Limit  int
}
