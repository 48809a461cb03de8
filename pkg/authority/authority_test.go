package authority

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMissingPrerequisites(t *testing.T) {
	tests := []struct {
		name      string
		candidate []Authority
		expected  []Authority
	}{
		{
			name:      "empty set is valid",
			candidate: nil,
			expected:  nil,
		},
		{
			name:      "authority without prerequisites",
			candidate: []Authority{ViewUsers},
			expected:  nil,
		},
		{
			name:      "prerequisite satisfied",
			candidate: []Authority{CreateUsers, ViewUsers},
			expected:  nil,
		},
		{
			name:      "prerequisite missing",
			candidate: []Authority{CreateUsers},
			expected:  []Authority{CreateUsers},
		},
		{
			name:      "partially satisfied multi-prerequisite",
			candidate: []Authority{ModifyUserRoles, ViewRoles},
			expected:  []Authority{ModifyUserRoles},
		},
		{
			name:      "multi-prerequisite fully satisfied",
			candidate: []Authority{ModifyUserRoles, ViewRoles, ViewUsers},
			expected:  nil,
		},
		{
			name:      "multiple offenders sorted lexicographically",
			candidate: []Authority{ModifyRoles, DeleteUsers, CreateUsers},
			expected:  []Authority{CreateUsers, DeleteUsers, ModifyRoles},
		},
		{
			name:      "full tenant universe is self-consistent",
			candidate: AllTenantAuthorities(),
			expected:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MissingPrerequisites(tt.candidate))
		})
	}
}

func TestMissingPrerequisitesMatchesDeclaredTable(t *testing.T) {
	// The result must be empty exactly when every authority's declared
	// prerequisites are contained in the candidate set.
	for a, reqs := range requires {
		candidate := append([]Authority{a}, reqs...)
		assert.Empty(t, MissingPrerequisites(candidate), "authority %s with full prerequisites", a)
		assert.Equal(t, []Authority{a}, MissingPrerequisites([]Authority{a}), "authority %s alone", a)
	}
}

func TestUniversesAreDisjoint(t *testing.T) {
	for _, a := range AllTenantAuthorities() {
		assert.False(t, IsGlobalAuthority(a), "authority %s in both universes", a)
	}
	for _, a := range AllGlobalAuthorities() {
		assert.False(t, IsTenantAuthority(a), "authority %s in both universes", a)
	}
}

func TestRequiredBy(t *testing.T) {
	assert.Equal(t, []Authority{ViewRoles, ViewUsers}, RequiredBy(ModifyUserRoles))
	assert.Equal(t, []Authority{ViewUsers}, RequiredBy(CreateUsers))
	assert.Nil(t, RequiredBy(ViewUsers))
}

func TestDedup(t *testing.T) {
	got := Dedup([]Authority{ViewUsers, ViewRoles, ViewUsers})
	assert.Equal(t, []Authority{ViewRoles, ViewUsers}, got)
}
