package serverutils

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionRequest struct {
	SessionId  string `validate:"sessionid"`
	QuestionId int    `validate:"required"`
}

func TestValidateRequestSessionIdTag(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantBad bool
	}{
		{name: "uuid", id: "3f2b8c1e-6a0d-4f7e-9b1a-2c3d4e5f6a7b"},
		{name: "underscore", id: "session_1"},
		{name: "traversal", id: "../etc", wantBad: true},
		{name: "space", id: "a b", wantBad: true},
		{name: "too long", id: strings.Repeat("a", 129), wantBad: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(sessionRequest{SessionId: tt.id, QuestionId: 1})
			if !tt.wantBad {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.True(t, verr.Has("SessionId", "sessionid"))
			assert.False(t, verr.Has("QuestionId"))
		})
	}
}

func TestValidateRequestReportsEveryField(t *testing.T) {
	err := ValidateRequest(sessionRequest{SessionId: "bad id"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("SessionId"))
	assert.True(t, verr.Has("QuestionId", "required"))
}
