package authz

import "github.com/taskhive/taskhive/internal/lifecycle"

// WeightUnknown is the sentinel weight of an unrecognized role. It is below
// every real weight, so unknown roles can neither act nor be granted.
const WeightUnknown = 0

// Authority weights form a strict total order over the role set: no two
// roles tie, and the lowest-privilege role starts at 1.
var roleWeights = lifecycle.NewMeta(map[Role]int{
	RoleGuest:     1,
	RoleViewer:    2,
	RoleDeveloper: 3,
	RoleManager:   4,
	RoleAdmin:     5,
}, WeightUnknown)

// Weight returns the authority weight of role, or WeightUnknown for roles
// outside the closed set.
func Weight(role Role) int {
	return roleWeights.Get(role)
}

// Compare orders two roles by authority weight. It is antisymmetric:
// Compare(a, b) == -Compare(b, a).
func Compare(a, b Role) int {
	return Weight(a) - Weight(b)
}

// Roles returns the closed role set ordered by ascending authority.
func Roles() []Role {
	return []Role{RoleGuest, RoleViewer, RoleDeveloper, RoleManager, RoleAdmin}
}

// CanChangeRole decides whether an actor may change a target account's role
// to the proposed role. Two independent checks are required:
//
//  1. The target's current role must sit strictly below the actor; no peer
//     or superior edits, including of the actor's own account.
//  2. The proposed role must sit strictly below the actor; no granting a
//     role equal to or above the actor's own, directly or via a
//     subordinate.
//
// A single actor-vs-target check would still allow promoting a subordinate
// to the actor's own level, which is why both are kept.
func CanChangeRole(actor, targetCurrent, proposed Role) bool {
	actorWeight := Weight(actor)
	if Weight(targetCurrent) >= actorWeight {
		return false
	}
	if Weight(proposed) >= actorWeight {
		return false
	}
	return true
}
