// Package view is the client-style derived-state layer.
//
// The server deliberately over-fetches: its default listing returns the
// union of the requester's own prompts and all public prompts. Every UI
// filter change — picking a scope, typing a search, choosing a category in
// the search bar — then narrows that set locally through the visibility
// engine instead of re-querying the server. That split keeps filtering
// instant while guaranteeing that a foreign private prompt was never on
// the wire to begin with.
//
// State is a plain value-type snapshot, not a reactive store: callers set
// the fetched data and the current selection, then read the derived
// results. All derivations are pure and cheap (bounded by total prompt
// count, expected in the hundreds).
package view

import (
	"github.com/sakif/promptmaster/internal/model"
	"github.com/sakif/promptmaster/internal/visibility"
)

// State holds everything the main view derives from: the server-fetched
// data and the user's current selection.
type State struct {
	Principal  model.Principal
	Prompts    []model.Prompt // in server listing order (updated desc)
	Categories []model.Category

	Scope            visibility.Scope
	Search           string
	SearchCategoryID string
}

// NewState returns a State with the default selection: the "all" scope for
// authenticated users, "community" for guests (who have no prompts of
// their own to show).
func NewState(p model.Principal) *State {
	scope := visibility.ScopeAll
	if p.IsGuest() {
		scope = visibility.ScopeCommunity
	}
	return &State{
		Principal:        p,
		Scope:            scope,
		SearchCategoryID: "all",
	}
}

// FilteredPrompts derives the visible, filtered prompt list. It delegates
// to the visibility engine and therefore preserves server order.
func (s *State) FilteredPrompts() []model.Prompt {
	q := visibility.Query{
		Scope:            s.Scope,
		Search:           s.Search,
		SearchCategoryID: s.SearchCategoryID,
	}
	return visibility.Filter(s.Principal, q, s.Prompts)
}

// Count returns how many prompts the current selection shows.
func (s *State) Count() int {
	return len(s.FilteredPrompts())
}

// PopularTags derives the tag cloud over the own∪public set, independent
// of the current scope selection.
func (s *State) PopularTags() []string {
	return visibility.PopularTags(s.Principal, s.Prompts)
}

// CurrentCategoryName resolves the display title for the selection: the
// named scopes have fixed titles, a category-id scope shows the category's
// name, and a stale id (category deleted elsewhere) degrades to "Unknown".
func (s *State) CurrentCategoryName() string {
	switch s.Scope {
	case visibility.ScopeAll:
		return "All Prompts"
	case visibility.ScopeCommunity:
		return "Community"
	case visibility.ScopeFavorites:
		return "Favorites"
	}
	for _, c := range s.Categories {
		if c.ID == string(s.Scope) {
			return c.Name
		}
	}
	return "Unknown"
}

// ApplyPromptUpdate replaces a prompt in place after a successful save,
// keeping the slice order untouched.
func (s *State) ApplyPromptUpdate(updated model.Prompt) {
	for i, p := range s.Prompts {
		if p.ID == updated.ID {
			s.Prompts[i] = updated
			return
		}
	}
}

// ApplyFavoriteToggle flips the per-requester favorite annotation after the
// server confirms the toggle.
func (s *State) ApplyFavoriteToggle(promptID string, isFavorite bool) {
	for i, p := range s.Prompts {
		if p.ID == promptID {
			s.Prompts[i].IsFavorite = isFavorite
			return
		}
	}
}

// RemovePrompt drops a deleted prompt from the snapshot.
func (s *State) RemovePrompt(promptID string) {
	for i, p := range s.Prompts {
		if p.ID == promptID {
			s.Prompts = append(s.Prompts[:i], s.Prompts[i+1:]...)
			return
		}
	}
}
