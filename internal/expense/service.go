package expense

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/fkhayef/dongsplit/internal/auth"
	"github.com/fkhayef/dongsplit/internal/expense/split"
	"github.com/fkhayef/dongsplit/internal/i18n"
	"github.com/fkhayef/dongsplit/internal/metrics"
	"github.com/fkhayef/dongsplit/internal/notification"
	"github.com/fkhayef/dongsplit/internal/relation"
	"github.com/fkhayef/dongsplit/internal/score"
	"github.com/fkhayef/dongsplit/internal/task"
)

// Relations answers the contact-book questions of dong creation
type Relations interface {
	SelfRelation(ctx context.Context, ownerID int64) (*relation.ContactRelation, error)
	Mutuals(ctx context.Context, ownerID int64, ids []int64) ([]relation.Mutual, error)
}

// Scorer awards the creator of a dong
type Scorer interface {
	Award(ctx context.Context, userID, dongID int64, mutualCount int, actorPaid bool) (*score.Score, error)
}

// Scheduler runs work after the request has returned
type Scheduler interface {
	Schedule(name string, fn task.Func) error
}

// Propagator replicates a joint account dong into the other subscribers' ledgers
type Propagator interface {
	Propagate(ctx context.Context, origin *PersistedDong, ownerID, jointAccountID int64) error
}

// Notifier delivers notification batches
type Notifier interface {
	Dispatch(ctx context.Context, items []notification.Item) (*notification.DispatchReport, error)
}

// Service orchestrates dong creation and the operations on existing dongs
type Service struct {
	repo       *Repository
	calculator *split.Calculator
	relations  Relations
	scorer     Scorer
	scheduler  Scheduler
	propagator Propagator
	notifier   Notifier
}

// NewService creates a new dong service with dependencies injected
func NewService(
	repo *Repository,
	calculator *split.Calculator,
	relations Relations,
	scorer Scorer,
	scheduler Scheduler,
	propagator Propagator,
	notifier Notifier,
) *Service {
	return &Service{
		repo:       repo,
		calculator: calculator,
		relations:  relations,
		scorer:     scorer,
		scheduler:  scheduler,
		propagator: propagator,
		notifier:   notifier,
	}
}

// CreateDong validates the split, writes the actor's ledger rows and awards
// the score before returning. Joint account propagation and notifications
// are scheduled afterwards and never affect the result.
func (s *Service) CreateDong(ctx context.Context, actor auth.ActingUser, req *CreateDongRequest) (*CreateDongResponse, error) {
	adm, err := s.calculator.Validate(ctx, &split.Request{
		ActorID:        actor.ID,
		CategoryID:     req.CategoryID,
		Currency:       req.Currency,
		Pong:           req.Pong,
		JointAccountID: req.JointAccountID,
		Mode:           req.SplitMode,
		Debtors:        req.Debtors,
		Payers:         req.Payers,
	})
	if err != nil {
		return nil, err
	}

	d := &Dong{
		Title:           req.Title,
		Description:     req.Description,
		CategoryID:      req.CategoryID,
		Pong:            req.Pong,
		Currency:        req.Currency,
		JointAccountID:  req.JointAccountID,
		WalletID:        req.WalletID,
		IsIncome:        req.IsIncome,
		IncludeInBudget: req.IncludeInBudget == nil || *req.IncludeInBudget,
		ReceiptID:       req.ReceiptID,
	}

	debtors := make([]*DebtorShare, len(adm.Debtors))
	// only debtors who owe something count as participants
	debtorIDs := make([]int64, 0, len(adm.Debtors))
	for i, sh := range adm.Debtors {
		id := sh.RelationID
		debtors[i] = &DebtorShare{RelationID: &id, DisplayName: adm.Relations[id].Name, Amount: sh.Amount}
		if sh.Amount > 0 {
			debtorIDs = append(debtorIDs, id)
		}
	}

	actorPaid := false
	payers := make([]*PayerShare, len(adm.Payers))
	for i, sh := range adm.Payers {
		id := sh.RelationID
		rel := adm.Relations[id]
		payers[i] = &PayerShare{RelationID: &id, DisplayName: rel.Name, Amount: sh.Amount}
		if rel.Type == relation.TypeSelf && sh.Amount > 0 {
			actorPaid = true
		}
	}

	persisted, err := s.repo.Persist(ctx, actor.ID, d, debtors, payers)
	if err != nil {
		return nil, err
	}
	metrics.DongsCreated.WithLabelValues(strconv.FormatBool(d.JointAccountID != nil)).Inc()

	mutuals, err := s.relations.Mutuals(ctx, actor.ID, debtorIDs)
	if err != nil {
		return nil, err
	}

	sc, err := s.scorer.Award(ctx, actor.ID, d.ID, len(mutuals), actorPaid)
	if err != nil {
		return nil, err
	}

	s.scheduleFollowUps(actor, persisted, mutuals, req.SendNotify)

	return &CreateDongResponse{PersistedDong: persisted, Score: sc}, nil
}

func (s *Service) scheduleFollowUps(actor auth.ActingUser, persisted *PersistedDong, mutuals []relation.Mutual, sendNotify bool) {
	d := persisted.Dong
	log := slog.With("dong_id", d.ID, "owner_id", actor.ID)

	if d.JointAccountID != nil {
		jointAccountID := *d.JointAccountID
		err := s.scheduler.Schedule("propagate_dong", func(ctx context.Context) error {
			return s.propagator.Propagate(ctx, persisted, actor.ID, jointAccountID)
		})
		if err != nil {
			log.Error("failed to schedule propagation", "joint_account_id", jointAccountID, "error", err)
		}
		return
	}

	if !sendNotify || len(mutuals) == 0 {
		return
	}

	items := participantItems(d, mutuals)
	err := s.scheduler.Schedule("notify_dong", func(ctx context.Context) error {
		_, err := s.notifier.Dispatch(ctx, items)
		return err
	})
	if err != nil {
		log.Error("failed to schedule notifications", "error", err)
	}
}

// participantItems builds one notification per mutual participant, naming
// the creator the way each recipient has them in their contact book.
func participantItems(d *Dong, mutuals []relation.Mutual) []notification.Item {
	seen := make(map[int64]bool, len(mutuals))
	items := make([]notification.Item, 0, len(mutuals))

	for _, m := range mutuals {
		if seen[m.UserID] {
			continue
		}
		seen[m.UserID] = true

		items = append(items, notification.Item{
			UserID:   m.UserID,
			TitleKey: i18n.KeyDongCreatedTitle,
			BodyKey:  i18n.KeyDongCreatedBody,
			Vars: map[string]string{
				"name":     m.BackName,
				"title":    d.Title,
				"amount":   notification.FormatAmount(d.Pong, d.Currency),
				"currency": d.Currency,
			},
			Data: map[string]string{
				"type":     notification.KindDongCreated,
				"dong_id":  strconv.FormatInt(d.ID, 10),
				"owner_id": strconv.FormatInt(d.OwnerID, 10),
			},
			EntityType: notification.EntityDong,
			EntityID:   d.ID,
		})
	}
	return items
}

// GetDong returns one of the actor's dongs with its shares
func (s *Service) GetDong(ctx context.Context, actor auth.ActingUser, id int64) (*PersistedDong, error) {
	pd, err := s.repo.GetByID(ctx, actor.ID, id)
	if err != nil {
		return nil, err
	}
	if pd == nil {
		return nil, ErrDongNotFound
	}
	return pd, nil
}

// ListDongs returns a page of the actor's dongs
func (s *Service) ListDongs(ctx context.Context, actor auth.ActingUser, page, perPage int) ([]*Dong, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.repo.List(ctx, actor.ID, perPage, (page-1)*perPage)
}

// UpdatePong changes the total of a dong whose only debtor and payer is the
// actor's own self relation. Any other split is immutable.
func (s *Service) UpdatePong(ctx context.Context, actor auth.ActingUser, id, pong int64) (*PersistedDong, error) {
	if pong <= 0 {
		return nil, ErrInvalidPong
	}

	self, err := s.relations.SelfRelation(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	pd, err := s.GetDong(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !pd.Solo(self.ID) {
		return nil, ErrSplitImmutable
	}

	if err := s.repo.UpdatePong(ctx, id, pong); err != nil {
		return nil, err
	}

	pd.Dong.Pong = pong
	pd.Debtors[0].Amount = pong
	pd.Payers[0].Amount = pong
	return pd, nil
}

// DeleteDong soft-deletes one of the actor's dongs and every replica of it
func (s *Service) DeleteDong(ctx context.Context, actor auth.ActingUser, id int64) error {
	replicas, err := s.repo.SoftDelete(ctx, actor.ID, id)
	if err != nil {
		return err
	}
	if replicas > 0 {
		slog.Info("dong deleted with replicas", "dong_id", id, "replicas", replicas)
	}
	return nil
}
