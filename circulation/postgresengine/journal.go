package postgresengine

import (
	"context"
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/circulation/postgresengine/internal/adapters"
)

// Journal payloads carry these keys for the user and the book they are about.
const (
	JournalKeyUserID = "userID"
	JournalKeyBookID = "bookID"
)

// ReadJournal returns journal entries newest first, narrowed by the filter.
func (e *Engine) ReadJournal(ctx context.Context, filter circulation.JournalFilter) (circulation.JournalEntries, error) {
	obs, ctx := e.observe(ctx, operationReadJournal)

	containment, buildErr := journalContainment(filter)
	if buildErr != nil {
		obs.failure(buildErr)
		return nil, buildErr
	}

	entries, err := collect(ctx, e, e.db, operationReadJournal, e.selectJournal(containment, filter.Limit), scanJournalEntry)
	if err != nil {
		obs.failure(err)
		return nil, err
	}

	obs.successWithRows(len(entries))

	return entries, nil
}

// journalContainment renders the filter as a JSON document for the jsonb @> operator, "" for no filter.
func journalContainment(filter circulation.JournalFilter) (string, error) {
	document := map[string]any{}

	if filter.UserID != 0 {
		document[JournalKeyUserID] = filter.UserID
	}

	if filter.BookID != "" {
		document[JournalKeyBookID] = filter.BookID
	}

	if len(document) == 0 {
		return "", nil
	}

	containment, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(document)
	if err != nil {
		return "", errors.Join(circulation.ErrBuildingQueryFailed, err)
	}

	return containment, nil
}

func scanJournalEntry(rows adapters.DBRows) (circulation.JournalEntry, error) {
	var entry circulation.JournalEntry

	if err := rows.Scan(&entry.SequenceNumber, &entry.EntryType, &entry.OccurredAt, &entry.PayloadJSON, &entry.MetadataJSON); err != nil {
		return circulation.JournalEntry{}, err
	}

	entry.OccurredAt = entry.OccurredAt.UTC()

	return entry, nil
}
