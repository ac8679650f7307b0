package shell

import (
	"errors"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/shared/core"
)

var (
	// ErrMappingToJournalEntryFailed is returned when a domain event or its metadata cannot be serialized.
	ErrMappingToJournalEntryFailed = errors.New("mapping to journal entry failed")

	// ErrMappingToDomainEventFailed is returned when a journal entry cannot be turned back into a domain event.
	ErrMappingToDomainEventFailed = errors.New("mapping to domain event failed")

	// ErrMappingToDomainEventUnknownEventType is returned for unrecognized entry types.
	ErrMappingToDomainEventUnknownEventType = errors.New("unknown event type")

	// ErrMappingToJournalMetadataFailed is returned when metadata conversion fails.
	ErrMappingToJournalMetadataFailed = errors.New("mapping to journal metadata failed")
)

// JournalMetadata carries message tracking information alongside every journal entry.
type JournalMetadata struct {
	MessageID     string `json:"messageID"`
	CausationID   string `json:"causationID"`
	CorrelationID string `json:"correlationID"`
}

// BuildJournalMetadata creates JournalMetadata from UUID values.
func BuildJournalMetadata(messageID, causationID, correlationID uuid.UUID) JournalMetadata {
	return JournalMetadata{
		MessageID:     messageID.String(),
		CausationID:   causationID.String(),
		CorrelationID: correlationID.String(),
	}
}

// NewJournalMetadata starts a new causation chain: all three IDs are the same fresh UUID.
func NewJournalMetadata() JournalMetadata {
	id := uuid.New()
	return BuildJournalMetadata(id, id, id)
}

// JournalMetadataFrom extracts JournalMetadata from a JournalEntry.
func JournalMetadataFrom(entry circulation.JournalEntry) (JournalMetadata, error) {
	metadata := new(JournalMetadata)

	if err := jsoniter.ConfigFastest.Unmarshal(entry.MetadataJSON, metadata); err != nil {
		return JournalMetadata{}, errors.Join(ErrMappingToJournalMetadataFailed, err)
	}

	return *metadata, nil
}

// JournalEntryFrom converts a DomainEvent and its metadata to a JournalEntry.
func JournalEntryFrom(event core.DomainEvent, metadata JournalMetadata) (circulation.JournalEntry, error) {
	payloadJSON, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(event)
	if err != nil {
		return circulation.JournalEntry{}, errors.Join(ErrMappingToJournalEntryFailed, err)
	}

	metadataJSON, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(metadata)
	if err != nil {
		return circulation.JournalEntry{}, errors.Join(ErrMappingToJournalEntryFailed, err)
	}

	entry, err := circulation.BuildJournalEntry(event.EventType(), event.HasOccurredAt(), payloadJSON, metadataJSON)
	if err != nil {
		return circulation.JournalEntry{}, errors.Join(ErrMappingToJournalEntryFailed, err)
	}

	return entry, nil
}

// DomainEventsFrom converts multiple journal entries to DomainEvents.
func DomainEventsFrom(entries circulation.JournalEntries) (core.DomainEvents, error) {
	domainEvents := make(core.DomainEvents, 0, len(entries))

	for _, entry := range entries {
		domainEvent, err := DomainEventFrom(entry)
		if err != nil {
			return nil, err
		}

		domainEvents = append(domainEvents, domainEvent)
	}

	return domainEvents, nil
}

// DomainEventFrom converts a journal entry to its corresponding DomainEvent.
func DomainEventFrom(entry circulation.JournalEntry) (core.DomainEvent, error) {
	switch entry.EntryType {
	case core.BookBorrowedEventType:
		return unmarshalEvent[core.BookBorrowed](entry.PayloadJSON)

	case core.BorrowingBookFailedEventType:
		return unmarshalEvent[core.BorrowingBookFailed](entry.PayloadJSON)

	case core.BookReturnedEventType:
		return unmarshalEvent[core.BookReturned](entry.PayloadJSON)

	case core.ReturningBookFailedEventType:
		return unmarshalEvent[core.ReturningBookFailed](entry.PayloadJSON)

	case core.BookCopyAddedEventType:
		return unmarshalEvent[core.BookCopyAdded](entry.PayloadJSON)

	case core.UserRegisteredEventType:
		return unmarshalEvent[core.UserRegistered](entry.PayloadJSON)

	case core.UserProfileUpdatedEventType:
		return unmarshalEvent[core.UserProfileUpdated](entry.PayloadJSON)
	}

	return nil, errors.Join(ErrMappingToDomainEventFailed, ErrMappingToDomainEventUnknownEventType)
}

func unmarshalEvent[E core.DomainEvent](payloadJSON []byte) (core.DomainEvent, error) {
	var payload E

	if err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, &payload); err != nil {
		return nil, errors.Join(ErrMappingToDomainEventFailed, err)
	}

	return payload, nil
}
