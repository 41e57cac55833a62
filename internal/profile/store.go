// Package profile stores reader digest preferences. The built-in
// store ships a demo reader; an optional YAML file overrides or adds
// profiles.
package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pvoronin/newsdesk/internal/model"
)

// Store resolves user ids to reader profiles.
type Store struct {
	profiles map[string]model.ReaderProfile
}

// NewStore creates a store seeded with the built-in profiles.
func NewStore() *Store {
	s := &Store{profiles: make(map[string]model.ReaderProfile)}
	for _, p := range builtinProfiles() {
		s.profiles[p.UserID] = p
	}
	return s
}

// builtinProfiles returns the demo readers shipped with the binary.
func builtinProfiles() []model.ReaderProfile {
	return []model.ReaderProfile{
		{
			UserID:           "demo-user",
			PreferredTopics:  []string{"AI", "Tech"},
			PriorityEntities: []string{"OpenAI", "Metro Climate Desk"},
			FavouriteSources: []string{"sample"},
			BlockedSources:   []string{"fake-news.com"},
		},
	}
}

// LoadFile merges profiles from a YAML file into the store. File entries
// replace built-ins with the same user id.
func (s *Store) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read profiles: %w", err)
	}

	var doc struct {
		Profiles []model.ReaderProfile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse profiles: %w", err)
	}

	for _, p := range doc.Profiles {
		if p.UserID == "" {
			continue
		}
		s.profiles[p.UserID] = p
	}
	return nil
}

// Get returns the profile for a user id. Unknown users get a profile
// with no preferences, so every field behaves as an empty set.
func (s *Store) Get(userID string) model.ReaderProfile {
	if p, ok := s.profiles[userID]; ok {
		return p
	}
	return model.ReaderProfile{UserID: userID}
}

// Users lists the user ids known to the store.
func (s *Store) Users() []string {
	users := make([]string, 0, len(s.profiles))
	for id := range s.profiles {
		users = append(users, id)
	}
	return users
}
