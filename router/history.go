package router

import (
	"context"
	"errors"
	"log/slog"

	"github.com/codesechub/hubclient/storage"
)

// maxHistoryEntries bounds the persisted visit history; the oldest
// entries are dropped first.
const maxHistoryEntries = 100

// VisitEntry is one recorded visit to a guarded screen.
type VisitEntry struct {
	Path      string `json:"path"`
	Title     string `json:"title"`
	Timestamp int64  `json:"timestamp"`
}

// VisitHistory returns the recorded visits, oldest first. Without
// storage, or before any guarded navigation, it is empty.
func (r *Router) VisitHistory(ctx context.Context) ([]VisitEntry, error) {
	if r.storage == nil {
		return nil, nil
	}
	history, err := storage.GetJSON[[]VisitEntry](ctx, r.storage, storage.KeyVisitHistory)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return history, nil
}

// recordVisit appends a guarded navigation to the persisted history,
// keeping only the most recent entries. Failures are logged, never
// surfaced: history is bookkeeping, not part of navigation.
func (r *Router) recordVisit(ctx context.Context, match Match) {
	if r.storage == nil {
		return
	}

	history, err := r.VisitHistory(ctx)
	if err != nil {
		r.log.WarnContext(ctx, "visit history unreadable, starting fresh",
			slog.String("error", err.Error()))
		history = nil
	}

	history = append(history, VisitEntry{
		Path:      match.Path,
		Title:     match.Route.Title,
		Timestamp: r.now().UnixMilli(),
	})
	if len(history) > maxHistoryEntries {
		history = history[len(history)-maxHistoryEntries:]
	}

	if err := storage.SetJSON(ctx, r.storage, storage.KeyVisitHistory, history); err != nil {
		r.log.ErrorContext(ctx, "failed to persist visit history",
			slog.String("error", err.Error()))
	}
}
