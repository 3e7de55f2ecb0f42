package models

import "testing"

func TestEnabledOnlyPreservesOrder(t *testing.T) {
	modules := []SystemModule{
		{ModuleKey: "dashboard", IsEnabled: true, SortOrder: 1},
		{ModuleKey: "production", IsEnabled: false, SortOrder: 2},
		{ModuleKey: "inventory", IsEnabled: true, SortOrder: 3},
		{ModuleKey: "accounting", IsEnabled: true, SortOrder: 4},
	}

	enabled := EnabledOnly(modules)
	want := []string{"dashboard", "inventory", "accounting"}
	if len(enabled) != len(want) {
		t.Fatalf("expected %d modules, got %d", len(want), len(enabled))
	}
	for i, key := range want {
		if enabled[i].ModuleKey != key {
			t.Errorf("position %d: expected %q, got %q", i, key, enabled[i].ModuleKey)
		}
	}
}

func TestEnabledOnlyEmpty(t *testing.T) {
	if got := EnabledOnly(nil); len(got) != 0 {
		t.Errorf("expected no modules, got %d", len(got))
	}
}

func TestParseIcon(t *testing.T) {
	if got := ParseIcon("Egg"); got != IconEgg {
		t.Errorf("expected Egg, got %q", got)
	}
	if got := ParseIcon("Rocket"); got != IconCircle {
		t.Errorf("expected fallback Circle, got %q", got)
	}
	if got := ParseIcon(""); got != IconCircle {
		t.Errorf("expected fallback Circle for empty name, got %q", got)
	}

	m := SystemModule{Icon: "Calculator"}
	if m.IconVariant() != IconCalculator {
		t.Errorf("expected Calculator, got %q", m.IconVariant())
	}
}

func TestRoleAtLeast(t *testing.T) {
	if !RoleAdmin.AtLeast(RoleManager) {
		t.Error("admin should satisfy manager")
	}
	if RoleOperator.AtLeast(RoleAdmin) {
		t.Error("operator should not satisfy admin")
	}
	if Role("guest").AtLeast(Role("other")) {
		t.Error("unknown roles should not satisfy anything")
	}
}
