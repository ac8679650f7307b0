package loanhistory

import (
	"context"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/shared/shell"
)

// Ledger defines what the QueryHandler needs from the circulation engine.
type Ledger interface {
	ReadJournal(ctx context.Context, filter circulation.JournalFilter) (circulation.JournalEntries, error)
}

// QueryHandler reads the journal.
type QueryHandler struct {
	ledger Ledger
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(ledger Ledger) QueryHandler {
	return QueryHandler{
		ledger: ledger,
	}
}

// Handle executes Query -> Unmarshal.
func (h QueryHandler) Handle(ctx context.Context, query Query) (LoanHistory, error) {
	ctx = circulation.WithEventualConsistency(ctx)

	entries, err := h.ledger.ReadJournal(ctx, circulation.JournalFilter{
		UserID: query.UserID,
		BookID: query.BookID,
		Limit:  query.Limit,
	})
	if err != nil {
		return LoanHistory{}, err
	}

	history := LoanHistory{
		Entries: make([]Entry, 0, len(entries)),
	}

	for _, entry := range entries {
		event, err := shell.DomainEventFrom(entry)
		if err != nil {
			return LoanHistory{}, err
		}

		history.Entries = append(history.Entries, Entry{
			SequenceNumber: entry.SequenceNumber,
			EventType:      event.EventType(),
			OccurredAt:     event.HasOccurredAt(),
			Failed:         event.IsErrorEvent(),
			Event:          event,
		})
	}

	history.Count = len(history.Entries)

	return history, nil
}
