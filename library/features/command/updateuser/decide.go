package updateuser

import (
	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/shared/core"
)

// Decide compares the stored profile with the normalized new one. It is a pure function.
//
// Business Rules:
//
//	GIVEN: a registered user
//	WHEN: UpdateUserProfile command is received with at least one changed field
//	THEN: UserProfileUpdated event is generated, naming the changed fields
//	IDEMPOTENCY: if no field changed, no event is generated
func Decide(current, updated circulation.User, command Command) core.DecisionResult {
	changed := ChangedFields(current, updated)
	if len(changed) == 0 {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(core.BuildUserProfileUpdated(current.ID, changed, command.OccurredAt))
}

// ChangedFields lists the profile fields that differ, in display order.
func ChangedFields(current, updated circulation.User) []string {
	changed := make([]string, 0, 5)

	for _, field := range []struct {
		name     string
		old, new string
	}{
		{"LastName", current.LastName, updated.LastName},
		{"FirstName", current.FirstName, updated.FirstName},
		{"Email", current.Email, updated.Email},
		{"Address", current.Address, updated.Address},
		{"Phone", current.Phone, updated.Phone},
	} {
		if field.old != field.new {
			changed = append(changed, field.name)
		}
	}

	return changed
}
