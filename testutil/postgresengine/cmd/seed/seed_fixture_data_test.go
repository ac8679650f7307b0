package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alexandrebha/cybook/circulation"
)

func Test_ISBN13_AppendsCheckDigit(t *testing.T) {
	assert.Equal(t, "9782070360024", isbn13(978207036002))
	assert.Equal(t, "9780306406157", isbn13(978030640615))
}

func Test_Generate_RespectsLoanLimitAndStock(t *testing.T) {
	// arrange
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	// act
	data := generate(Config{NumBooks: 30, NumUsers: 60, HistoryDays: 30, Seed: 7}, now)

	// assert
	assert.Len(t, data.books, 30)
	assert.Len(t, data.users, 60)

	activePerUser := make(map[circulation.UserID]int)
	for _, loan := range data.loans {
		if !loan[4].(bool) {
			activePerUser[loan[0].(circulation.UserID)]++
		}

		assert.Equal(t, circulation.DueDateFor(loan[2].(time.Time)), loan[3])
	}

	for userID, active := range activePerUser {
		assert.LessOrEqual(t, active, circulation.MaxActiveLoans, "user %d", userID)
	}

	for _, book := range data.books {
		assert.GreaterOrEqual(t, book[1].(int), 0)
	}
}

func Test_Generate_IsDeterministic(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	cfg := Config{NumBooks: 10, NumUsers: 10, HistoryDays: 30, Seed: 3}

	assert.Equal(t, generate(cfg, now), generate(cfg, now))
}
