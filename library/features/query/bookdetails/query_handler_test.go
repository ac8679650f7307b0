package bookdetails_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/features/query/bookdetails"
	"github.com/alexandrebha/cybook/testutil/catalog/catalogfake"
	"github.com/alexandrebha/cybook/testutil/circulation/memledger"
)

func Test_QueryHandler_Handle_HeldBook(t *testing.T) {
	// arrange
	ctx := context.Background()
	now := time.Now()
	ledger := memledger.New()
	ledger.GivenBookWithStock("978-1", 2)
	userID := ledger.GivenUser("Durand")
	ledger.GivenLoan(userID, "978-1", now.Add(-3*24*time.Hour), true)
	ledger.GivenLoan(userID, "978-1", now.Add(-40*24*time.Hour), true)
	handler := bookdetails.NewQueryHandler(ledger, catalogfake.New().WithTitle("978-1", "Le Horla"))

	// act
	result, err := handler.Handle(ctx, bookdetails.BuildQuery("978-1", now))

	// assert
	require.NoError(t, err)
	assert.True(t, result.InInventory)
	assert.Equal(t, "In stock (2)", result.Availability)
	assert.Equal(t, "Le Horla", result.Metadata.Title)
	assert.Equal(t, 1, result.RecentLoans)
}

func Test_QueryHandler_Handle_CatalogOnlyBook_IsNotAvailable(t *testing.T) {
	// arrange
	ctx := context.Background()
	handler := bookdetails.NewQueryHandler(memledger.New(), catalogfake.New().WithTitle("978-5", "Mont-Oriol"))

	// act
	result, err := handler.Handle(ctx, bookdetails.BuildQuery("978-5", time.Now()))

	// assert
	require.NoError(t, err)
	assert.False(t, result.InInventory)
	assert.Equal(t, "Not available", result.Availability)
	assert.Zero(t, result.RecentLoans)
}

func Test_QueryHandler_Handle_UnknownEverywhere(t *testing.T) {
	// arrange
	ctx := context.Background()
	handler := bookdetails.NewQueryHandler(memledger.New(), catalogfake.New())

	// act
	_, err := handler.Handle(ctx, bookdetails.BuildQuery("000", time.Now()))

	// assert
	assert.ErrorIs(t, err, circulation.ErrNotFound)
}

func Test_QueryHandler_Handle_HeldBookWithoutMetadata(t *testing.T) {
	// arrange
	ctx := context.Background()
	ledger := memledger.New()
	ledger.GivenBookWithStock("978-1", 0)
	handler := bookdetails.NewQueryHandler(ledger, catalogfake.New())

	// act
	result, err := handler.Handle(ctx, bookdetails.BuildQuery("978-1", time.Now()))

	// assert
	require.NoError(t, err)
	assert.Equal(t, "Out of stock", result.Availability)
	assert.False(t, result.Metadata.HasTitle())
}
