package registeredusers_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandrebha/cybook/library/features/query/registeredusers"
	"github.com/alexandrebha/cybook/testutil/circulation/memledger"
)

func Test_QueryHandler_Handle_ListsEveryUserByID(t *testing.T) {
	// arrange
	ctx := context.Background()
	ledger := memledger.New()
	first := ledger.GivenUser("Durand")
	second := ledger.GivenUser("Martin")

	// act
	result, err := registeredusers.NewQueryHandler(ledger).Handle(ctx, registeredusers.BuildQuery())

	// assert
	require.NoError(t, err)
	require.Len(t, result.Users, 2)
	assert.Equal(t, first, result.Users[0].ID)
	assert.Equal(t, second, result.Users[1].ID)
}

func Test_QueryHandler_Handle_WithActiveLoansOnly(t *testing.T) {
	// arrange
	ctx := context.Background()
	now := time.Now()
	ledger := memledger.New()
	borrower := ledger.GivenUser("Durand")
	returner := ledger.GivenUser("Martin")
	ledger.GivenUser("Petit")
	ledger.GivenLoan(borrower, "a", now, false)
	ledger.GivenLoan(borrower, "b", now, false)
	ledger.GivenLoan(returner, "a", now, true)

	// act
	result, err := registeredusers.NewQueryHandler(ledger).Handle(ctx,
		registeredusers.BuildQuery().WithActiveLoansOnly())

	// assert
	require.NoError(t, err)
	require.Len(t, result.Users, 1)
	assert.Equal(t, borrower, result.Users[0].ID)
}
