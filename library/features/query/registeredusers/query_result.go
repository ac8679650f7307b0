package registeredusers

import (
	"github.com/alexandrebha/cybook/circulation"
)

// RegisteredUsers represents the query result.
type RegisteredUsers struct {
	Users []circulation.User
	Count int
}
