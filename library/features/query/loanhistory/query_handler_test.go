package loanhistory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandrebha/cybook/library/features/command/borrowbook"
	"github.com/alexandrebha/cybook/library/features/command/returnbook"
	"github.com/alexandrebha/cybook/library/features/query/loanhistory"
	"github.com/alexandrebha/cybook/library/shared/core"
	"github.com/alexandrebha/cybook/testutil/catalog/catalogfake"
	"github.com/alexandrebha/cybook/testutil/circulation/memledger"
)

func Test_QueryHandler_Handle_ReadsTheJournalNewestFirst(t *testing.T) {
	// arrange
	ctx := context.Background()
	now := time.Now()
	ledger := memledger.New()
	ledger.GivenBookWithStock("978-1", 1)
	userID := ledger.GivenUser("Durand")
	otherID := ledger.GivenUser("Martin")
	catalog := catalogfake.New().WithTitle("978-1", "Yvette")

	borrow := borrowbook.NewCommandHandler(ledger, catalog)
	_, err := borrow.Handle(ctx, borrowbook.BuildCommand(userID, "978-1", now))
	require.NoError(t, err)
	_, err = borrow.Handle(ctx, borrowbook.BuildCommand(otherID, "978-1", now))
	require.Error(t, err)
	_, err = returnbook.NewCommandHandler(ledger).Handle(ctx, returnbook.BuildCommand(userID, "978-1", now))
	require.NoError(t, err)

	// act
	result, err := loanhistory.NewQueryHandler(ledger).Handle(ctx, loanhistory.BuildQuery(userID, "", 0))

	// assert
	require.NoError(t, err)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, core.BookReturnedEventType, result.Entries[0].EventType)
	assert.Equal(t, core.BookBorrowedEventType, result.Entries[1].EventType)
	assert.False(t, result.Entries[1].Failed)
}

func Test_QueryHandler_Handle_FiltersByBookAndLimits(t *testing.T) {
	// arrange
	ctx := context.Background()
	now := time.Now()
	ledger := memledger.New()
	ledger.GivenBookWithStock("978-1", 0)
	userID := ledger.GivenUser("Durand")
	borrow := borrowbook.NewCommandHandler(ledger, catalogfake.New().WithTitle("978-1", "Yvette"))

	for range 3 {
		_, _ = borrow.Handle(ctx, borrowbook.BuildCommand(userID, "978-1", now))
	}

	// act
	result, err := loanhistory.NewQueryHandler(ledger).Handle(ctx, loanhistory.BuildQuery(0, "978-1", 2))

	// assert
	require.NoError(t, err)
	require.Len(t, result.Entries, 2)
	assert.True(t, result.Entries[0].Failed)
	assert.Equal(t, core.BorrowingBookFailedEventType, result.Entries[0].EventType)
}
