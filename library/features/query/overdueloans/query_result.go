package overdueloans

import (
	"github.com/alexandrebha/cybook/circulation"
)

// OverdueLoans represents the query result. Loans is empty for a count-only query.
type OverdueLoans struct {
	Loans []circulation.OverdueLoan
	Count int
}
