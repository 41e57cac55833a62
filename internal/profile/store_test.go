package profile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore_BuiltinDemoUser(t *testing.T) {
	store := NewStore()

	p := store.Get("demo-user")
	if p.UserID != "demo-user" {
		t.Errorf("expected demo-user, got %s", p.UserID)
	}
	if len(p.PreferredTopics) == 0 {
		t.Error("expected preferred topics for demo-user")
	}

	blocked := false
	for _, src := range p.BlockedSources {
		if src == "fake-news.com" {
			blocked = true
		}
	}
	if !blocked {
		t.Error("expected fake-news.com in blocked sources")
	}
}

func TestStore_UnknownUser(t *testing.T) {
	store := NewStore()

	p := store.Get("stranger")
	if p.UserID != "stranger" {
		t.Errorf("expected stranger, got %s", p.UserID)
	}
	if len(p.PreferredTopics) != 0 || len(p.PriorityEntities) != 0 ||
		len(p.FavouriteSources) != 0 || len(p.BlockedSources) != 0 {
		t.Error("expected empty preferences for unknown user")
	}
}

func TestStore_LoadFile(t *testing.T) {
	content := `profiles:
  - user_id: alice
    preferred_topics: [Climate]
    blocked_sources: [tabloid.example]
  - user_id: demo-user
    preferred_topics: [Civic]
`
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewStore()
	if err := store.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	alice := store.Get("alice")
	if len(alice.PreferredTopics) != 1 || alice.PreferredTopics[0] != "Climate" {
		t.Errorf("unexpected topics for alice: %v", alice.PreferredTopics)
	}

	// File entry replaces the built-in
	demo := store.Get("demo-user")
	if len(demo.PreferredTopics) != 1 || demo.PreferredTopics[0] != "Civic" {
		t.Errorf("expected file profile to override built-in, got %v", demo.PreferredTopics)
	}
}

func TestStore_LoadFile_Missing(t *testing.T) {
	store := NewStore()
	if err := store.LoadFile("no_such_profiles.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestStore_LoadFile_SkipsBlankUserID(t *testing.T) {
	content := "profiles:\n  - preferred_topics: [Tech]\n"
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewStore()
	before := len(store.Users())
	if err := store.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(store.Users()) != before {
		t.Error("expected blank user_id entry to be skipped")
	}
}
