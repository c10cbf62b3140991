// Package visibility is the authorization-aware filter engine at the heart
// of the prompt library.
//
// Given a principal (role + id) and a view selection, it computes exactly
// which prompts that principal may see and in what order. The same rules
// exist in two places:
//
//   - here, as pure Go over an already-fetched prompt slice (used by the
//     derived-view layer for instant filtering without a round trip), and
//   - in internal/repository/sqlite, as SQL WHERE scoping (used so that a
//     private prompt belonging to someone else never even crosses the wire).
//
// The two must agree row-for-row. The sqlite package's tests pin that
// parity by running both against the same fixture.
//
// Everything in this package is a pure function: no side effects, no
// mutation of the input slice, order preserved.
package visibility

import (
	"sort"
	"strings"

	"github.com/sakif/promptmaster/internal/model"
)

// Scope is the top-level view selector. Three named scopes exist; any other
// value is treated as a literal category id.
type Scope string

const (
	ScopeAll       Scope = "all"       // the principal's own prompts
	ScopeCommunity Scope = "community" // every public prompt
	ScopeFavorites Scope = "favorites" // own + public, narrowed to favorites
)

// Query is one view request: the scope, a free-text search, and the
// independent category filter from the search bar. The two category axes
// are deliberately separate — scope may itself be a category id, and the
// search-category filter still applies on top of it.
type Query struct {
	Scope            Scope
	Search           string
	SearchCategoryID string // "all" or empty matches everything
}

// InScope decides the base visible set for a scope, before any filters.
//
// Resolution is first-match-wins:
//
//  1. Guests see public prompts only — for EVERY scope. A guest asking for
//     "all" or a category id is not an error; it just resolves to the
//     public set. Fail safe, not loud.
//  2. community  → public prompts, owner irrelevant.
//  3. all        → the principal's own prompts, visibility irrelevant.
//  4. favorites or a category id → own + public (the favorite / category
//     narrowing happens in matchesSelection, mirroring the two-step shape
//     of the client this engine replaced).
func InScope(p model.Principal, scope Scope, prompt model.Prompt) bool {
	if p.IsGuest() {
		return prompt.Visibility == model.VisibilityPublic
	}

	switch scope {
	case ScopeCommunity:
		return prompt.Visibility == model.VisibilityPublic
	case ScopeAll:
		return prompt.UserID == p.ID
	default:
		// favorites and specific-category scopes share the own∪public base
		return prompt.UserID == p.ID || prompt.Visibility == model.VisibilityPublic
	}
}

// matchesSelection applies the scope's own narrowing: favorites keeps only
// favorited prompts, a category-id scope keeps only that category, and the
// named all/community scopes add no constraint.
func matchesSelection(scope Scope, prompt model.Prompt) bool {
	switch scope {
	case ScopeAll, ScopeCommunity:
		return true
	case ScopeFavorites:
		return prompt.IsFavorite
	default:
		return prompt.CategoryID == string(scope)
	}
}

// MatchesSearch reports whether the prompt matches a free-text search:
// case-insensitive substring against title, content, or any tag.
// An empty search matches everything.
func MatchesSearch(prompt model.Prompt, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(prompt.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(prompt.Content), needle) {
		return true
	}
	for _, tag := range prompt.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// matchesSearchCategory applies the search bar's category dropdown, an
// independent axis from the scope. It applies identically to guests and
// authenticated users.
func matchesSearchCategory(prompt model.Prompt, categoryID string) bool {
	if categoryID == "" || categoryID == "all" {
		return true
	}
	return prompt.CategoryID == categoryID
}

// Filter computes the prompt subset visible to the principal under the
// query. All conditions AND together; the input order is preserved (the
// server lists newest-updated first, and filtering must never reorder).
func Filter(p model.Principal, q Query, prompts []model.Prompt) []model.Prompt {
	out := make([]model.Prompt, 0, len(prompts))
	for _, prompt := range prompts {
		if !InScope(p, q.Scope, prompt) {
			continue
		}
		if !p.IsGuest() && !matchesSelection(q.Scope, prompt) {
			continue
		}
		if !MatchesSearch(prompt, q.Search) {
			continue
		}
		if !matchesSearchCategory(prompt, q.SearchCategoryID) {
			continue
		}
		out = append(out, prompt)
	}
	return out
}

// VisibleToRequester is the own∪public rule used by the server's default
// listing and by the popular-tags derivation: a principal sees their own
// prompts plus everything public. Guests own nothing, so they see public
// prompts only.
func VisibleToRequester(p model.Principal, prompt model.Prompt) bool {
	if p.IsGuest() {
		return prompt.Visibility == model.VisibilityPublic
	}
	return prompt.UserID == p.ID || prompt.Visibility == model.VisibilityPublic
}

// MaxPopularTags caps the popular-tags cloud.
const MaxPopularTags = 10

// PopularTags derives the tag cloud: among prompts visible under the
// own∪public rule (NOT scope-restricted), normalize each tag (trim,
// lowercase, drop empty), count occurrences, and return the top 10 by
// descending count.
//
// TIE-BREAK:
// Ties are broken by first-encountered order in the input slice. Since the
// input is the update-time-ordered server listing, the result is
// deterministic for a given listing — callers must pass prompts in listing
// order, not re-sorted.
func PopularTags(p model.Principal, prompts []model.Prompt) []string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0

	for _, prompt := range prompts {
		if !VisibleToRequester(p, prompt) {
			continue
		}
		for _, raw := range prompt.Tags {
			tag := strings.ToLower(strings.TrimSpace(raw))
			if tag == "" {
				continue
			}
			if _, seen := counts[tag]; !seen {
				firstSeen[tag] = order
				order++
			}
			counts[tag]++
		}
	}

	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.SliceStable(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return firstSeen[tags[i]] < firstSeen[tags[j]]
	})

	if len(tags) > MaxPopularTags {
		tags = tags[:MaxPopularTags]
	}
	return tags
}
