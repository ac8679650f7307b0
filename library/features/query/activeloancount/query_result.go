package activeloancount

import (
	"github.com/alexandrebha/cybook/circulation"
)

// ActiveLoans represents the query result.
type ActiveLoans struct {
	UserID    circulation.UserID
	Count     int
	Remaining int
}
