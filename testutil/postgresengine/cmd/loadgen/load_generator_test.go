package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandrebha/cybook/testutil/circulation/memledger"
)

const belAmi = "9782070360024"

func Test_ParseScenarioWeights(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{name: "default", input: "10,90", want: []int{10, 90}},
		{name: "spaces", input: " 50 , 50 ", want: []int{50, 50}},
		{name: "wrong count", input: "10,20,70", wantErr: true},
		{name: "not a number", input: "ten,90", wantErr: true},
		{name: "out of range", input: "-10,110", wantErr: true},
		{name: "wrong sum", input: "10,80", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			got, err := parseScenarioWeights(tc.input)

			// assert
			if tc.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func Test_SelectScenario_FollowsWeights(t *testing.T) {
	// arrange
	lg := &LoadGenerator{config: Config{ScenarioWeights: []int{10, 90}}}

	// act + assert
	assert.Equal(t, scenarioShelving, lg.selectScenario(0))
	assert.Equal(t, scenarioShelving, lg.selectScenario(9))
	assert.Equal(t, scenarioLending, lg.selectScenario(10))
	assert.Equal(t, scenarioLending, lg.selectScenario(99))
}

func Test_NewLoadGenerator_RequiresSeededData(t *testing.T) {
	// arrange
	ledger := memledger.New()
	ledger.GivenBookWithStock(belAmi, 1)

	// act
	_, err := NewLoadGenerator(context.Background(), ledger, Config{Rate: 1, ScenarioWeights: []int{50, 50}}, ObservabilityConfig{})

	// assert
	assert.Error(t, err)
}

func Test_ExecuteScenario_ShelvingAddsACopy(t *testing.T) {
	// arrange
	ledger := memledger.New()
	ledger.GivenBookWithStock(belAmi, 1)
	ledger.GivenUser("Dupont")

	lg, err := NewLoadGenerator(context.Background(), ledger, Config{Rate: 1, ScenarioWeights: []int{100, 0}}, ObservabilityConfig{})
	require.NoError(t, err)

	// act
	lg.wg.Add(1)
	lg.executeScenario(context.Background())

	// assert
	stock, found := ledger.Stock(belAmi)
	require.True(t, found)
	assert.Equal(t, 2, stock)
	assert.Equal(t, int64(1), lg.requestCount)
	assert.Zero(t, lg.errorCount)
}

func Test_ExecuteScenario_CountsRejectionsSeparately(t *testing.T) {
	// arrange
	ledger := memledger.New()
	ledger.GivenBookWithStock(belAmi, 0)
	userID := ledger.GivenUser("Dupont")

	lg, err := NewLoadGenerator(context.Background(), ledger, Config{Rate: 1, ScenarioWeights: []int{0, 100}}, ObservabilityConfig{})
	require.NoError(t, err)

	// act
	lg.wg.Add(1)
	lg.executeScenario(context.Background())

	// assert: a borrow finds no copy, a return finds no active loan
	assert.Equal(t, int64(1), lg.requestCount)
	assert.Equal(t, int64(1), lg.rejectedCount)
	assert.Zero(t, lg.errorCount)
	assert.Zero(t, ledger.ActiveLoans(userID))
}
