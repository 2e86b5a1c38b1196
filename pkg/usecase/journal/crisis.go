package journal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/thebardchat/angel-cloud/pkg/model"
	"github.com/thebardchat/angel-cloud/pkg/repository"
)

var crisisFields = []string{"input_text", "severity", "timestamp"}

// LogCrisis appends one crisis event. Severity defaults to medium when
// empty; the safety classifier always passes high.
func (u *UseCase) LogCrisis(ctx context.Context, text string, severity model.Severity) (model.RecordID, error) {
	if severity == "" {
		severity = model.SeverityMedium
	}
	if err := severity.Validate(); err != nil {
		return "", goerr.Wrap(err, "invalid severity",
			goerr.V("severity", severity), goerr.T(model.ErrTagConfig))
	}

	return u.store.Insert(ctx, repository.CollectionCrisis, map[string]any{
		"input_text": text,
		"severity":   string(severity),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}

// ListCrisis returns recent crisis events, newest first, optionally
// narrowed to one severity.
func (u *UseCase) ListCrisis(ctx context.Context, severity model.Severity, limit int) ([]model.CrisisEvent, error) {
	if limit <= 0 {
		limit = u.limit
	}

	q := repository.Query{
		Collection: repository.CollectionCrisis,
		SortDesc:   "timestamp",
		Fields:     crisisFields,
		Limit:      limit,
	}
	if severity != "" {
		if err := severity.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid severity",
				goerr.V("severity", severity), goerr.T(model.ErrTagConfig))
		}
		q.Where = append(q.Where, repository.Condition{Field: "severity", Value: string(severity)})
	}

	records, err := u.store.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	events := make([]model.CrisisEvent, 0, len(records))
	for _, rec := range records {
		events = append(events, model.CrisisEvent{
			ID:        rec.ID,
			InputText: rec.Str("input_text"),
			Severity:  model.Severity(rec.Str("severity")),
			Timestamp: rec.Time("timestamp"),
		})
	}
	return events, nil
}

// CrisisStats summarizes the crisis log.
type CrisisStats struct {
	Total      int            `json:"total"`
	BySeverity map[string]int `json:"by_severity"`
}

// CrisisStats returns the total event count and a per-severity breakdown.
func (u *UseCase) CrisisStats(ctx context.Context) (*CrisisStats, error) {
	total, err := u.store.Count(ctx, repository.CollectionCrisis, nil)
	if err != nil {
		return nil, err
	}

	bySeverity, err := u.store.CountGrouped(ctx, repository.CollectionCrisis, "severity")
	if err != nil {
		return nil, err
	}

	return &CrisisStats{Total: total, BySeverity: bySeverity}, nil
}

// ExportCrisis writes recent crisis events as indented JSON through the
// archive and returns how many were written.
func (u *UseCase) ExportCrisis(ctx context.Context, name string, limit int) (int, error) {
	if u.archive == nil {
		return 0, goerr.New("no archive configured for export", goerr.T(model.ErrTagConfig))
	}

	events, err := u.ListCrisis(ctx, "", limit)
	if err != nil {
		return 0, err
	}

	w, err := u.archive.Put(ctx, name)
	if err != nil {
		return 0, err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(events); err != nil {
		_ = w.Close()
		return 0, goerr.Wrap(err, "failed to encode crisis events", goerr.V("name", name))
	}
	if err := w.Close(); err != nil {
		return 0, goerr.Wrap(err, "failed to finish crisis export", goerr.V("name", name))
	}

	return len(events), nil
}
