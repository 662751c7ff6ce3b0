package workflow

import (
	"context"
	"errors"
	"time"

	"caslkey/internal/screening/models"
	"caslkey/internal/screening/ports"
	id "caslkey/pkg/domain"
	"caslkey/pkg/platform/sentinel"
)

// Persistence is best effort: a failed write is logged and the command
// still succeeds.

func (w *Workflow) saveDraftLocked(ctx context.Context, now time.Time) {
	if w.drafts == nil || w.submission != nil {
		return
	}
	draft := models.Draft{
		SessionID: w.sessionID,
		Step:      w.step,
		Snapshot:  w.snapshot.Clone(),
		Facts:     w.facts.Clone(),
		Preview:   w.cache.Latest(),
		UpdatedAt: now,
	}
	if err := w.drafts.Save(ctx, draft); err != nil {
		w.logger.WarnContext(ctx, "failed to persist draft", "session_id", w.sessionID, "error", err)
	}
}

func (w *Workflow) deleteDraftLocked(ctx context.Context) {
	if w.drafts == nil {
		return
	}
	if err := w.drafts.Delete(ctx, w.sessionID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		w.logger.WarnContext(ctx, "failed to delete draft", "session_id", w.sessionID, "error", err)
	}
}

// previewPersister binds the draft store to one session for the preview
// cache.
type previewPersister struct {
	store     ports.DraftStore
	sessionID id.SessionID
}

func (p *previewPersister) SavePreview(ctx context.Context, preview models.TrustPreview) error {
	return p.store.SavePreview(ctx, p.sessionID, preview)
}

func (p *previewPersister) ClearPreview(ctx context.Context) error {
	return p.store.ClearPreview(ctx, p.sessionID)
}
