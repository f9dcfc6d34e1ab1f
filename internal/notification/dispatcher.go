package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fkhayef/dongsplit/internal/i18n"
	"github.com/fkhayef/dongsplit/internal/metrics"
	"github.com/fkhayef/dongsplit/internal/notification/push"
	"github.com/fkhayef/dongsplit/internal/user"
)

// Recipients loads the users a batch is addressed to
type Recipients interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*user.User, error)
}

// Dispatcher persists notifications and pushes them to devices
type Dispatcher struct {
	repo      *Repository
	users     Recipients
	bundle    *i18n.Bundle
	sender    push.Sender
	chunkSize int
}

// NewDispatcher creates a dispatcher sending at most push.MaxBatchSize messages per call
func NewDispatcher(repo *Repository, users Recipients, bundle *i18n.Bundle, sender push.Sender) *Dispatcher {
	return &Dispatcher{
		repo:      repo,
		users:     users,
		bundle:    bundle,
		sender:    sender,
		chunkSize: push.MaxBatchSize,
	}
}

// Dispatch stores one notification per item, then pushes them in chunks.
// An error means nothing was stored and nothing was pushed. Push failures
// are only counted in the report.
func (d *Dispatcher) Dispatch(ctx context.Context, items []Item) (*DispatchReport, error) {
	report := &DispatchReport{BatchID: uuid.NewString()}
	if len(items) == 0 {
		return report, nil
	}
	log := slog.With("batch_id", report.BatchID)

	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.UserID)
	}
	recipients, err := d.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}

	rows := make([]*Notification, 0, len(items))
	messages := make([]push.Message, 0, len(items))

	for _, it := range items {
		lang := d.bundle.DefaultLanguage()
		u, ok := recipients[it.UserID]
		if ok {
			lang = d.bundle.Language(u.PreferredLanguage(lang))
		}

		n, err := d.render(it, lang)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPersistFailed, err)
		}
		rows = append(rows, n)

		if !ok || u.PushToken == nil || *u.PushToken == "" {
			report.PushSkipped++
			continue
		}
		messages = append(messages, push.Message{
			ID:    uuid.NewString(),
			Token: *u.PushToken,
			Title: n.Title,
			Body:  n.Message,
			Data:  it.Data,
		})
	}

	if err := d.repo.CreateBatch(ctx, rows); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	report.Persisted = len(rows)

	for start := 0; start < len(messages); start += d.chunkSize {
		end := min(start+d.chunkSize, len(messages))
		chunk := messages[start:end]
		report.Chunks++

		results, err := d.sender.SendBatch(ctx, chunk)
		if err != nil {
			report.PushFailed += len(chunk)
			metrics.PushMessages.WithLabelValues("failed").Add(float64(len(chunk)))
			log.Warn("push chunk failed", "size", len(chunk), "error", err)
			continue
		}
		for _, res := range results {
			if res.Err != nil {
				report.PushFailed++
				metrics.PushMessages.WithLabelValues("failed").Inc()
				log.Warn("push message failed", "message_id", res.MessageID, "error", res.Err)
				continue
			}
			report.PushSent++
			metrics.PushMessages.WithLabelValues("sent").Inc()
		}
	}
	metrics.PushMessages.WithLabelValues("skipped").Add(float64(report.PushSkipped))

	log.Info("notifications dispatched",
		"persisted", report.Persisted,
		"sent", report.PushSent,
		"failed", report.PushFailed,
		"skipped", report.PushSkipped,
	)
	return report, nil
}

func (d *Dispatcher) render(it Item, lang string) (*Notification, error) {
	n := &Notification{
		RecipientID: it.UserID,
		Title:       d.bundle.Render(it.TitleKey, lang, it.Vars),
		Message:     d.bundle.Render(it.BodyKey, lang, it.Vars),
	}
	if it.EntityType != "" {
		entityType, entityID := it.EntityType, it.EntityID
		n.RelatedEntityType = &entityType
		n.RelatedEntityID = &entityID
	}
	if len(it.Data) > 0 {
		data, err := json.Marshal(it.Data)
		if err != nil {
			return nil, err
		}
		n.Data = data
	}
	return n, nil
}
