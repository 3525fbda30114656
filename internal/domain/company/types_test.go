package company

import "testing"

func sample() []Company {
	return []Company{
		{ID: "co-1", Name: "Acme Ltd"},
		{ID: "co-2", Name: "Beta LLC"},
		{ID: "co-3", Name: "Gamma Inc"},
	}
}

func assertOneActive(t *testing.T, reg Registry, wantID string) {
	t.Helper()
	active := 0
	for _, c := range reg.Companies {
		if c.IsActive {
			active++
			if c.ID != wantID {
				t.Fatalf("active flag on %s, want %s", c.ID, wantID)
			}
		}
	}
	if active != 1 {
		t.Fatalf("expected exactly one active company, got %d", active)
	}
	if reg.ActiveID != wantID {
		t.Fatalf("ActiveID = %s, want %s", reg.ActiveID, wantID)
	}
}

func TestRegistry_SetActive(t *testing.T) {
	reg := Resolve(sample(), "co-1")

	if err := reg.SetActive("co-3"); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	assertOneActive(t, reg, "co-3")
}

func TestRegistry_SetActive_Unknown(t *testing.T) {
	reg := Resolve(sample(), "co-1")

	if err := reg.SetActive("co-99"); err == nil {
		t.Fatalf("expected error for unknown company")
	}
	// The pointer must not move on failure.
	assertOneActive(t, reg, "co-1")
}

func TestResolve_ActiveFlagWins(t *testing.T) {
	companies := sample()
	companies[2].IsActive = true

	reg := Resolve(companies, "co-1")
	assertOneActive(t, reg, "co-3")
}

func TestResolve_FallsBackToPointer(t *testing.T) {
	reg := Resolve(sample(), "co-2")
	assertOneActive(t, reg, "co-2")
}

func TestResolve_NoActive(t *testing.T) {
	reg := Resolve(sample(), "")
	if reg.Active() != nil {
		t.Fatalf("expected no active company")
	}
	for _, c := range reg.Companies {
		if c.IsActive {
			t.Fatalf("no company should be flagged active")
		}
	}
}
