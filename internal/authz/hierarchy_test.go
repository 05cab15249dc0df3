package authz

import "testing"

func TestWeightsArePositiveAndInjective(t *testing.T) {
	seen := map[int]Role{}
	for _, r := range Roles() {
		w := Weight(r)
		if w <= 0 {
			t.Errorf("weight(%q) = %d, want positive", r, w)
		}
		if prior, dup := seen[w]; dup {
			t.Errorf("roles %q and %q share weight %d", prior, r, w)
		}
		seen[w] = r
	}
	if Weight(RoleGuest) != 1 {
		t.Fatalf("lowest-privilege role should weigh 1, got %d", Weight(RoleGuest))
	}
	if Weight(Role("bogus")) != WeightUnknown {
		t.Fatal("unknown roles should resolve to the sentinel weight")
	}
}

func TestCompareAntisymmetric(t *testing.T) {
	all := append(Roles(), Role("bogus"))
	for _, a := range all {
		for _, b := range all {
			if Compare(a, b) != -Compare(b, a) {
				t.Errorf("Compare(%q, %q) is not antisymmetric", a, b)
			}
		}
	}
}

func TestCanChangeRoleImpliesStrictDomination(t *testing.T) {
	all := append(Roles(), Role("bogus"))
	for _, actor := range all {
		for _, target := range all {
			for _, proposed := range all {
				if !CanChangeRole(actor, target, proposed) {
					continue
				}
				if Weight(target) >= Weight(actor) {
					t.Errorf("%q changed peer-or-superior %q", actor, target)
				}
				if Weight(proposed) >= Weight(actor) {
					t.Errorf("%q granted peer-or-superior role %q", actor, proposed)
				}
			}
		}
	}
}

func TestCanChangeRoleNoLateralOrSelfChange(t *testing.T) {
	for _, r := range Roles() {
		for _, proposed := range Roles() {
			if CanChangeRole(r, r, proposed) {
				t.Errorf("%q should never act on an account of its own rank", r)
			}
		}
	}
}

func TestCanChangeRoleNoPromotionToActorLevel(t *testing.T) {
	// The actor-vs-target check alone would let a manager lift a developer
	// to manager; the proposed-role check must block it.
	if CanChangeRole(RoleManager, RoleDeveloper, RoleManager) {
		t.Fatal("manager must not promote a subordinate to manager")
	}
	if CanChangeRole(RoleManager, RoleDeveloper, RoleAdmin) {
		t.Fatal("manager must not promote a subordinate past itself")
	}
}

func TestCanChangeRoleScenarios(t *testing.T) {
	if !CanChangeRole(RoleAdmin, RoleManager, RoleDeveloper) {
		t.Fatal("admin should demote a manager to developer")
	}
	if CanChangeRole(RoleManager, RoleAdmin, RoleViewer) {
		t.Fatal("manager must not touch an admin account")
	}
	if CanChangeRole(Role("bogus"), RoleGuest, RoleGuest) {
		t.Fatal("unknown actor must be denied")
	}
}
