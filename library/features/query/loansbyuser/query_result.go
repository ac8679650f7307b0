package loansbyuser

import (
	"github.com/alexandrebha/cybook/circulation"
)

// LoanInfo is one loan with its overdue status at query time.
type LoanInfo struct {
	circulation.Loan
	Overdue  bool
	DaysLate int
}

// Loans represents the query result.
type Loans struct {
	UserID circulation.UserID
	Loans  []LoanInfo
	Count  int
}
