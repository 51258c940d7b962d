package breakpoint

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"drive letter upper-cased", `c:/x/a.lua`, `C:\x\a.lua`},
		{"already normalized", `C:\x\a.lua`, `C:\x\a.lua`},
		{"mixed separators", `c:\x/y\a.lua`, `C:\x\y\a.lua`},
		{"no drive letter", `/home/u/a.lua`, `\home\u\a.lua`},
		{"body case preserved", `d:/Src/A.LUA`, `D:\Src\A.LUA`},
		{"empty", ``, ``},
		{"bare name", `a.lua`, `a.lua`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
			// Idempotence
			if again := Normalize(got); again != got {
				t.Errorf("Normalize not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestRegistry_AddAssignsStableIDs(t *testing.T) {
	r := NewRegistry()

	first := r.Add("c:/x/a.lua", 10)
	if first.ID != 1 || !first.Verified {
		t.Fatalf("Add() = %+v, want id 1 verified", first)
	}
	if first.SourcePath != `C:\x\a.lua` {
		t.Errorf("SourcePath = %q, want normalized", first.SourcePath)
	}

	second := r.Add("c:/x/a.lua", 20)
	if second.ID != 2 || !second.Verified {
		t.Fatalf("Add() = %+v, want id 2 verified", second)
	}

	// Same pair again, spelled differently: same id, flagged duplicate.
	dup := r.Add(`C:\x\a.lua`, 10)
	if dup.ID != 1 {
		t.Errorf("duplicate Add() id = %d, want 1", dup.ID)
	}
	if dup.Verified {
		t.Error("duplicate Add() verified = true, want false")
	}
}

func TestRegistry_Match(t *testing.T) {
	r := NewRegistry()
	r.Add("c:/x/a.lua", 10)

	tests := []struct {
		name   string
		source string
		line   int
		wantID int
	}{
		{"exact", "c:/x/a.lua", 10, 1},
		{"other spelling", `C:\x\a.lua`, 10, 1},
		{"wrong line", "c:/x/a.lua", 11, 0},
		{"wrong file", "c:/x/b.lua", 10, 0},
		{"body case differs", "c:/X/a.lua", 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Match(tt.source, tt.line)
			if tt.wantID == 0 {
				if got != nil {
					t.Fatalf("Match() = %+v, want nil", got)
				}
				return
			}
			if got == nil || got.ID != tt.wantID {
				t.Fatalf("Match() = %+v, want id %d", got, tt.wantID)
			}
		})
	}
}

func TestRegistry_SetReplacesPerSource(t *testing.T) {
	r := NewRegistry()

	got := r.Set("c:/x/a.lua", []int{10, 20})
	if len(got) != 2 {
		t.Fatalf("Set() returned %d descriptors, want 2", len(got))
	}
	for i, want := range []int{1, 2} {
		if got[i].ID != want || !got[i].Verified {
			t.Errorf("Set()[%d] = %+v, want id %d verified", i, got[i], want)
		}
	}

	// Identical resubmission: same ids, all flagged duplicates.
	again := r.Set("c:/x/a.lua", []int{10, 20})
	for i, want := range []int{1, 2} {
		if again[i].ID != want {
			t.Errorf("resubmit[%d] id = %d, want %d", i, again[i].ID, want)
		}
		if again[i].Verified {
			t.Errorf("resubmit[%d] verified = true, want false", i)
		}
	}

	// Dropping a line disarms it; the survivor still counts as a duplicate.
	third := r.Set("c:/x/a.lua", []int{20, 30})
	if third[0].ID != 2 || third[0].Verified {
		t.Errorf("kept line = %+v, want id 2 unverified", third[0])
	}
	if third[1].ID != 3 || !third[1].Verified {
		t.Errorf("new line = %+v, want id 3 verified", third[1])
	}
	if r.Match("c:/x/a.lua", 10) != nil {
		t.Error("line 10 still matches after replacement")
	}

	// Re-arming a previously dropped line keeps its old id.
	fourth := r.Set("c:/x/a.lua", []int{10})
	if fourth[0].ID != 1 {
		t.Errorf("re-armed line id = %d, want 1", fourth[0].ID)
	}
	if !fourth[0].Verified {
		t.Error("re-armed line verified = false, want true")
	}
}

func TestRegistry_SetDuplicateLineInOneCall(t *testing.T) {
	r := NewRegistry()

	got := r.Set("a.lua", []int{5, 5})
	if len(got) != 2 {
		t.Fatalf("Set() returned %d descriptors, want 2", len(got))
	}
	if got[0].ID != got[1].ID {
		t.Errorf("duplicate line ids differ: %d vs %d", got[0].ID, got[1].ID)
	}
	if !got[0].Verified || got[1].Verified {
		t.Errorf("verified flags = %v/%v, want true/false", got[0].Verified, got[1].Verified)
	}
}

func TestRegistry_SourcesAreIndependent(t *testing.T) {
	r := NewRegistry()
	r.Set("a.lua", []int{1})
	r.Set("b.lua", []int{1})

	// Replacing b leaves a armed.
	r.Set("b.lua", []int{2})
	if r.Match("a.lua", 1) == nil {
		t.Error("a.lua breakpoint lost when b.lua was replaced")
	}
	if r.Match("b.lua", 1) != nil {
		t.Error("b.lua line 1 still armed after replacement")
	}
}
