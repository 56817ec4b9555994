package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistrationForm_Set(t *testing.T) {
	var f RegistrationForm
	assert.NoError(t, f.Set(FieldUsername, "alice"))
	assert.NoError(t, f.Set(FieldEmail, "a@x.io"))
	assert.NoError(t, f.Set(FieldPassword, "pw1234"))
	assert.ErrorIs(t, f.Set("nickname", "al"), ErrUnknownField)

	assert.Equal(t, RegistrationForm{Username: "alice", Email: "a@x.io", Password: "pw1234"}, f)
}

func TestRegistrationForm_Complete(t *testing.T) {
	tests := []struct {
		name string
		form RegistrationForm
		want bool
	}{
		{"all set", RegistrationForm{"a", "b", "c"}, true},
		{"empty", RegistrationForm{}, false},
		{"missing password", RegistrationForm{"a", "b", ""}, false},
		{"whitespace email", RegistrationForm{"a", "  \t", "c"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.form.Complete())
		})
	}
}

func TestChallengeKind_Valid(t *testing.T) {
	assert.True(t, ChallengeDelay.Valid())
	assert.True(t, ChallengePairs.Valid())
	assert.False(t, ChallengeKind("puzzle").Valid())
}
