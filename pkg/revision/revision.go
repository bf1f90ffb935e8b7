// Package revision maps the revision tokens humans supply, history IDs or commit
// hashes, onto the history identifiers ArgoCD accepts for rollbacks.
package revision

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/porter-dev/argocd-deployer/pkg/argocd"
	"github.com/porter-dev/argocd-deployer/pkg/metadata"
)

const (
	// ShortHashLength is the length source revisions are truncated to before comparing
	ShortHashLength = 7

	// HistoryPageSize bounds the history rows attached to a resolution error
	HistoryPageSize = 10

	// PreviousToken asks for the previous stable revision instead of a specific one
	PreviousToken = "previous"
)

var historyIDPattern = regexp.MustCompile(`^[0-9]{1,4}$`)

// ResolutionError is returned when a token cannot be mapped onto the application's history
type ResolutionError struct {
	App     string
	Token   string
	Reason  string
	History []argocd.HistoryEntry
}

func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("could not resolve revision %q of application %s: %s", e.Token, e.App, e.Reason)

	if len(e.History) > 0 {
		rows := make([]string, 0, len(e.History))

		for _, h := range e.History {
			rows = append(rows, fmt.Sprintf("%s=%s", h.ID, ShortHash(h.Revision)))
		}

		msg += fmt.Sprintf(" (available: %s)", strings.Join(rows, ", "))
	}

	return msg
}

// ShortHash truncates a source revision to ShortHashLength characters
func ShortHash(revision string) string {
	if len(revision) > ShortHashLength {
		return revision[:ShortHashLength]
	}

	return revision
}

// IsHistoryID reports whether token has the lexical form of a history identifier
func IsHistoryID(token string) bool {
	return historyIDPattern.MatchString(token)
}

// Resolver translates revision tokens into history identifiers. It holds no state between calls.
type Resolver struct {
	controller argocd.Controller
	store      metadata.Store
}

// NewResolver creates a Resolver. store may be nil, in which case PreviousStable always
// derives its answer from the history listing.
func NewResolver(controller argocd.Controller, store metadata.Store) *Resolver {
	return &Resolver{
		controller: controller,
		store:      store,
	}
}

// History returns the application's history ordered oldest first
func (r *Resolver) History(ctx context.Context, app string) ([]argocd.HistoryEntry, error) {
	entries, err := r.controller.History(ctx, app)
	if err != nil {
		return nil, err
	}

	sorted := make([]argocd.HistoryEntry, len(entries))
	copy(sorted, entries)
	argocd.SortHistory(sorted)

	return sorted, nil
}

// Resolve maps token onto a history identifier. Numeric tokens of up to four digits are
// history identifiers and must exist; anything else is a source revision, matched on its
// short hash, with the most recent matching entry winning.
func (r *Resolver) Resolve(ctx context.Context, app, token string) (argocd.HistoryID, error) {
	token = strings.TrimSpace(token)

	if token == "" {
		return argocd.UnknownHistoryID, &ResolutionError{App: app, Token: token, Reason: "empty revision"}
	}

	history, err := r.History(ctx, app)
	if err != nil {
		return argocd.UnknownHistoryID, &ResolutionError{App: app, Token: token, Reason: err.Error()}
	}

	return resolveIn(history, app, token)
}

func resolveIn(history []argocd.HistoryEntry, app, token string) (argocd.HistoryID, error) {
	if IsHistoryID(token) {
		id, _ := strconv.ParseInt(token, 10, 64)

		for _, h := range history {
			if h.ID == argocd.HistoryID(id) {
				return h.ID, nil
			}
		}

		return argocd.UnknownHistoryID, &ResolutionError{
			App:     app,
			Token:   token,
			Reason:  "no history entry with this ID",
			History: newestPage(history),
		}
	}

	if id := lastMatch(history, token); id.Known() {
		return id, nil
	}

	return argocd.UnknownHistoryID, &ResolutionError{
		App:     app,
		Token:   token,
		Reason:  "no history entry deployed this revision",
		History: newestPage(history),
	}
}

// lastMatch expects history ordered oldest first
func lastMatch(history []argocd.HistoryEntry, revision string) argocd.HistoryID {
	short := ShortHash(revision)
	id := argocd.UnknownHistoryID

	for _, h := range history {
		if h.Revision != "" && ShortHash(h.Revision) == short {
			id = h.ID
		}
	}

	return id
}

func newestPage(history []argocd.HistoryEntry) []argocd.HistoryEntry {
	if len(history) <= HistoryPageSize {
		return history
	}

	return history[len(history)-HistoryPageSize:]
}

// CurrentStable returns the history identifier of the revision the last successful
// operation deployed, or the currently synced revision when no operation succeeded
func (r *Resolver) CurrentStable(ctx context.Context, app string) (argocd.HistoryID, error) {
	id, _, err := r.currentStable(ctx, app)

	return id, err
}

func (r *Resolver) currentStable(ctx context.Context, app string) (argocd.HistoryID, []argocd.HistoryEntry, error) {
	a, err := r.controller.GetApplication(ctx, app)
	if err != nil {
		return argocd.UnknownHistoryID, nil, &ResolutionError{App: app, Reason: err.Error()}
	}

	revision := a.LastSuccessfulRevision()

	if revision == "" {
		return argocd.UnknownHistoryID, nil, &ResolutionError{App: app, Reason: "controller reports no deployed revision"}
	}

	history, err := r.History(ctx, app)
	if err != nil {
		return argocd.UnknownHistoryID, nil, &ResolutionError{App: app, Token: revision, Reason: err.Error()}
	}

	id, err := resolveIn(history, app, revision)

	return id, history, err
}

// PreviousStable returns the history identifier to fall back to from the current stable one.
// A previous_version recorded by an earlier step wins; otherwise the history is walked back
// from the current stable entry to the closest entry that deployed different content.
func (r *Resolver) PreviousStable(ctx context.Context, app string) (argocd.HistoryID, error) {
	if r.store != nil {
		key := metadata.Key(argocd.ControllerName, app, metadata.FieldPreviousVersion)

		if value, ok, err := r.store.Get(ctx, key); err == nil && ok {
			if id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil && id >= 0 {
				return argocd.HistoryID(id), nil
			}
		}
	}

	current, history, err := r.currentStable(ctx, app)
	if err != nil {
		return argocd.UnknownHistoryID, err
	}

	return previousIn(history, app, current)
}

// previousIn expects history ordered oldest first
func previousIn(history []argocd.HistoryEntry, app string, current argocd.HistoryID) (argocd.HistoryID, error) {
	idx := -1

	for i, h := range history {
		if h.ID == current {
			idx = i
		}
	}

	if idx < 0 {
		return argocd.UnknownHistoryID, &ResolutionError{
			App:     app,
			Token:   current.String(),
			Reason:  "current revision is not in the history",
			History: newestPage(history),
		}
	}

	currentHash := ShortHash(history[idx].Revision)

	for i := idx - 1; i >= 0; i-- {
		if ShortHash(history[i].Revision) != currentHash {
			return history[i].ID, nil
		}
	}

	return argocd.UnknownHistoryID, &ResolutionError{
		App:     app,
		Token:   current.String(),
		Reason:  "no earlier deployment to fall back to",
		History: newestPage(history),
	}
}
