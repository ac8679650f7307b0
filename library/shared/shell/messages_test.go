package shell

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alexandrebha/cybook/catalog"
	"github.com/alexandrebha/cybook/circulation"
)

func Test_UserMessage_OneMessagePerErrorClass(t *testing.T) {
	testCases := []struct {
		err      error
		expected string
	}{
		{nil, MsgOK},
		{circulation.ErrNotFound, MsgNotFound},
		{&catalog.Error{Op: "lookup", Query: "x", Err: catalog.ErrNotFound}, MsgNotFound},
		{circulation.ErrOutOfStock, MsgOutOfStock},
		{circulation.ErrLimitExceeded, MsgLimitExceeded},
		{circulation.ErrMetadataUnavailable, MsgMetadataUnavailable},
		{errors.Join(circulation.ErrMetadataUnavailable, context.DeadlineExceeded), MsgMetadataUnavailable},
		{circulation.ErrNoActiveLoan, MsgNoActiveLoan},
		{circulation.ErrInventoryInconsistent, MsgInventoryInconsistent},
		{circulation.ErrInvalidArgument, MsgInvalidArgument},
		{circulation.ErrConcurrencyConflict, MsgConcurrencyConflict},
		{errors.Join(circulation.ErrStoreUnavailable, errors.New("dial tcp")), MsgStoreUnavailable},
		{errors.Join(circulation.ErrStoreUnavailable, context.Canceled), MsgCanceled},
		{&catalog.Error{Op: "search", Query: "x", Err: catalog.ErrServer}, MsgCatalogUnreachable},
		{catalog.ErrEmptyQuery, MsgEmptyQuery},
		{errors.New("boom"), MsgUnexpected},
	}

	for _, tc := range testCases {
		name := "nil"
		if tc.err != nil {
			name = tc.err.Error()
		}

		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, UserMessage(tc.err))
		})
	}
}

func Test_UserMessage_ListsInvalidFields(t *testing.T) {
	// arrange
	err := errors.Join(
		circulation.ErrValidation,
		FieldError{Field: "Email", Rule: "email"},
		FieldError{Field: "Phone", Rule: "frphone"},
	)

	// act
	msg := UserMessage(err)

	// assert
	assert.Equal(t, MsgValidation+" (invalid: Email, Phone)", msg)
}
