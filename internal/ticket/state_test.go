// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

package ticket_test

import (
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickethub/tickethub/internal/ticket"
	"github.com/tickethub/tickethub/pkg/errutil"
)

func TestNewState(t *testing.T) {
	t.Run("valid state", func(t *testing.T) {
		state, err := ticket.NewState("  In Progress  ")
		require.NoError(t, err)
		assert.Equal(t, "In Progress", state.Name)
		assert.NotEqual(t, ulid.ULID{}, state.ID)
		assert.False(t, state.CreatedAt.IsZero())
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := ticket.NewState("")
		errutil.AssertErrorCode(t, err, "STATE_INVALID_NAME")
	})
}

func TestValidateStateName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCode string
	}{
		{name: "valid", input: "Open"},
		{name: "max length", input: strings.Repeat("a", ticket.MaxStateNameLength)},
		{name: "empty", input: "", wantCode: "STATE_INVALID_NAME"},
		{name: "whitespace only", input: " \t ", wantCode: "STATE_INVALID_NAME"},
		{name: "too long", input: strings.Repeat("a", ticket.MaxStateNameLength+1), wantCode: "STATE_INVALID_NAME"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ticket.ValidateStateName(tt.input)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			errutil.AssertErrorCode(t, err, tt.wantCode)
		})
	}
}
