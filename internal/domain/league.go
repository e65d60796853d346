package domain

import (
	"slices"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// JoinCodeAlphabet excludes visually confusable characters (I/O/0/1)
	// so codes survive being read aloud or scribbled on paper.
	JoinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// JoinCodeLength is the number of characters in a league join code.
	JoinCodeLength = 6
	// MaxJoinCodeAttempts bounds collision retries before the caller
	// surfaces a generation failure.
	MaxJoinCodeAttempts = 10
)

// GenerateJoinCode produces a random human-typable league code.
// Uniqueness is the caller's problem: retry against an existence check,
// capped at MaxJoinCodeAttempts.
func GenerateJoinCode() (string, error) {
	return gonanoid.Generate(JoinCodeAlphabet, JoinCodeLength)
}

// ValidJoinCode reports whether s is a well-formed join code.
func ValidJoinCode(s string) bool {
	if len(s) != JoinCodeLength {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune(JoinCodeAlphabet, r) {
			return false
		}
	}
	return true
}

// League is a named competitive group joinable by code. Each member also
// records the membership on its own profile; the two views are kept in
// sync by the league service.
type League struct {
	Syncable
	Name      string   `json:"name"`
	JoinCode  string   `json:"join_code"`
	CreatorID string   `json:"creator_id"`
	MemberIDs []string `json:"member_ids,omitempty"`
}

// NewLeague creates a league with the creator as its first member.
func NewLeague(id, name, joinCode, creatorID string) *League {
	l := &League{
		Name:      name,
		JoinCode:  joinCode,
		CreatorID: creatorID,
		MemberIDs: []string{creatorID},
	}
	l.ID = id
	l.InitTimestamps()
	return l
}

// AddMember appends the profile if absent. Idempotent, so a retried
// transaction re-running the merge is harmless.
func (l *League) AddMember(profileID string) bool {
	if slices.Contains(l.MemberIDs, profileID) {
		return false
	}
	l.MemberIDs = append(l.MemberIDs, profileID)
	l.Touch()
	return true
}

// RemoveMember removes the profile if present.
func (l *League) RemoveMember(profileID string) bool {
	idx := slices.Index(l.MemberIDs, profileID)
	if idx < 0 {
		return false
	}
	l.MemberIDs = slices.Delete(l.MemberIDs, idx, idx+1)
	l.Touch()
	return true
}

// HasMember reports membership.
func (l *League) HasMember(profileID string) bool {
	return slices.Contains(l.MemberIDs, profileID)
}
