package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateJoinCode(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		code, err := GenerateJoinCode()
		require.NoError(t, err)
		assert.Len(t, code, JoinCodeLength)
		assert.True(t, ValidJoinCode(code), "generated code %q should validate", code)
		seen[code] = true
	}
	// 32^6 codes; 100 draws colliding would mean something is broken.
	assert.Greater(t, len(seen), 90)
}

func TestValidJoinCode(t *testing.T) {
	tests := []struct {
		code  string
		valid bool
	}{
		{"ABC234", true},
		{"ZZZZZZ", true},
		{"ABC23", false},   // too short
		{"ABC2345", false}, // too long
		{"ABC10O", false},  // confusable characters excluded
		{"abc234", false},  // lower case not in alphabet
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, ValidJoinCode(tt.code), "code %q", tt.code)
	}
}

func TestLeague_Members(t *testing.T) {
	l := NewLeague("league-1", "Familien", "ABC234", "prof-1")

	require.True(t, l.HasMember("prof-1"))

	assert.True(t, l.AddMember("prof-2"))
	// Re-running the merge is harmless.
	assert.False(t, l.AddMember("prof-2"))
	assert.Equal(t, []string{"prof-1", "prof-2"}, l.MemberIDs)

	assert.True(t, l.RemoveMember("prof-1"))
	assert.False(t, l.RemoveMember("prof-1"))
	assert.False(t, l.HasMember("prof-1"))
}
