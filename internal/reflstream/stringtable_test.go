package reflstream

import "testing"

func TestStringTableResolveLocal(t *testing.T) {
	st := NewStringTable([]string{"Alpha", "Beta", "Gamma"})
	s, err := st.Resolve(1)
	if err != nil || s != "Beta" {
		t.Errorf("Resolve(1) = %q, %v, want %q, nil", s, err, "Beta")
	}
}

func TestStringTableResolveLocalOutOfRange(t *testing.T) {
	st := NewStringTable([]string{"Alpha"})
	if _, err := st.Resolve(5); err == nil {
		t.Fatal("Resolve(5) on a 1-entry table succeeded, want error")
	}
}

func TestStringTableResolveCanonical(t *testing.T) {
	st := NewStringTable(nil)
	s, err := st.Resolve(-1)
	if err != nil || s != canonicalStrings[0] {
		t.Errorf("Resolve(-1) = %q, %v, want %q, nil", s, err, canonicalStrings[0])
	}
}

func TestStringTableResolveUnknownCanonicalDoesNotError(t *testing.T) {
	st := NewStringTable(nil)
	s, err := st.Resolve(-100000)
	if err != nil {
		t.Fatalf("Resolve(-100000) errored: %v, want soft str:-N fallback", err)
	}
	if s != "str:-100000" {
		t.Errorf("Resolve(-100000) = %q, want %q", s, "str:-100000")
	}
}

func TestFindStringRoundTripsWithResolve(t *testing.T) {
	name := canonicalStrings[3]
	idx, ok := FindString(name)
	if !ok {
		t.Fatalf("FindString(%q) not found", name)
	}
	st := NewStringTable(nil)
	got, err := st.Resolve(idx)
	if err != nil || got != name {
		t.Errorf("Resolve(FindString(%q)) = %q, %v, want %q, nil", name, got, err, name)
	}
}

func TestFindStringUnknown(t *testing.T) {
	if _, ok := FindString("NoSuchClass::DoesNotExist"); ok {
		t.Error("FindString found a class that was never seeded, want false")
	}
}
