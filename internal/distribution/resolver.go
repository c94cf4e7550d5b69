package distribution

import (
	"strings"

	"github.com/teamai/teamai-api/internal/domain"
)

// AssignmentResolver maps proposed assignee names to roster members. It is
// shared by batch creation and by assignment of existing tasks so both use
// the same round-robin order.
type AssignmentResolver struct {
	roster []domain.TeamMember
}

// NewAssignmentResolver returns ErrEmptyRoster if roster has no members.
// The roster order defines the round-robin order.
func NewAssignmentResolver(roster []domain.TeamMember) (*AssignmentResolver, error) {
	if len(roster) == 0 {
		return nil, ErrEmptyRoster
	}
	members := make([]domain.TeamMember, len(roster))
	copy(members, roster)
	return &AssignmentResolver{roster: members}, nil
}

// Size is the number of members on the roster.
func (r *AssignmentResolver) Size() int {
	return len(r.roster)
}

// Match finds the member whose name equals name, ignoring case and
// surrounding whitespace. The first match in roster order wins.
func (r *AssignmentResolver) Match(name string) (domain.TeamMember, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.TeamMember{}, false
	}
	for _, m := range r.roster {
		if strings.EqualFold(strings.TrimSpace(m.Name), name) {
			return m, true
		}
	}
	return domain.TeamMember{}, false
}

// RoundRobin returns roster[k mod size]. Negative k wraps around.
func (r *AssignmentResolver) RoundRobin(k int) domain.TeamMember {
	n := len(r.roster)
	return r.roster[((k%n)+n)%n]
}

// Resolve returns the member named name, or RoundRobin(k) when no member
// matches. k is the number of tasks already materialized in the batch.
func (r *AssignmentResolver) Resolve(name string, k int) domain.TeamMember {
	if m, ok := r.Match(name); ok {
		return m
	}
	return r.RoundRobin(k)
}
