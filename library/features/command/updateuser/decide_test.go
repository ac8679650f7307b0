package updateuser_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/features/command/updateuser"
	"github.com/alexandrebha/cybook/library/shared/core"
)

func storedUser() circulation.User {
	return circulation.User{
		ID: 3, LastName: "Martin", FirstName: "Paul", Email: "paul.martin@example.org",
		Address: "8 rue Oberkampf, Paris", Phone: "0601020304",
	}
}

func Test_Decide_Idempotent_WhenNothingChanged(t *testing.T) {
	// arrange
	current := storedUser()
	command := updateuser.BuildCommand(current.ID, current.LastName, current.FirstName, current.Email,
		current.Address, current.Phone, time.Now())

	// act
	result := updateuser.Decide(current, command.Profile, command)

	// assert
	assert.False(t, result.HasEventToAppend())
	assert.NoError(t, result.HasError())
}

func Test_Decide_Success_ListsChangedFields(t *testing.T) {
	// arrange
	current := storedUser()
	updated := current
	updated.Email = "p.martin@example.org"
	updated.Phone = "0700000000"
	command := updateuser.BuildCommand(updated.ID, updated.LastName, updated.FirstName, updated.Email,
		updated.Address, updated.Phone, time.Now())

	// act
	result := updateuser.Decide(current, updated, command)

	// assert
	assert.True(t, result.IsSuccess())

	event, ok := result.Event.(core.UserProfileUpdated)
	assert.True(t, ok, "expected UserProfileUpdated event")
	assert.Equal(t, []string{"Email", "Phone"}, event.ChangedFields)
}
