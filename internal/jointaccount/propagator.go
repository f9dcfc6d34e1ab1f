package jointaccount

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/fkhayef/dongsplit/internal/category"
	"github.com/fkhayef/dongsplit/internal/expense"
	"github.com/fkhayef/dongsplit/internal/i18n"
	"github.com/fkhayef/dongsplit/internal/metrics"
	"github.com/fkhayef/dongsplit/internal/notification"
	"github.com/fkhayef/dongsplit/internal/relation"
	"github.com/fkhayef/dongsplit/internal/user"
)

// Accounts reads joint accounts and their subscribers
type Accounts interface {
	GetByID(ctx context.Context, id int64) (*JointAccount, error)
	ListActiveSubscribers(ctx context.Context, jointAccountID, excludeUserID int64) ([]*Subscription, error)
}

// Categories finds or creates a target's equivalent of the origin category
type Categories interface {
	Get(ctx context.Context, ownerID, id int64) (*category.Category, error)
	Resolve(ctx context.Context, targetUserID int64, origin *category.Category) (*category.Match, error)
}

// ContactBook resolves relations of the origin owner and of each target
type ContactBook interface {
	SelfRelation(ctx context.Context, ownerID int64) (*relation.ContactRelation, error)
	ResolveForUser(ctx context.Context, ownerID int64, ids []int64) (map[int64]*relation.ContactRelation, error)
	ByPhones(ctx context.Context, ownerID int64, phones []string) (map[string]*relation.ContactRelation, error)
}

// Directory looks up registered users by phone
type Directory interface {
	GetByPhone(ctx context.Context, phone string) (*user.User, error)
}

// Ledger writes replica dongs
type Ledger interface {
	Persist(ctx context.Context, ownerID int64, d *expense.Dong, debtors []*expense.DebtorShare, payers []*expense.PayerShare) (*expense.PersistedDong, error)
}

// Notifier delivers notification batches
type Notifier interface {
	Dispatch(ctx context.Context, items []notification.Item) (*notification.DispatchReport, error)
}

// Propagator replays a joint account dong into every other subscriber's ledger
type Propagator struct {
	accounts    Accounts
	categories  Categories
	contacts    ContactBook
	users       Directory
	ledger      Ledger
	notifier    Notifier
	concurrency int
}

// NewPropagator creates a new propagator running at most concurrency targets at once
func NewPropagator(accounts Accounts, categories Categories, contacts ContactBook, users Directory, ledger Ledger, notifier Notifier, concurrency int) *Propagator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Propagator{
		accounts:    accounts,
		categories:  categories,
		contacts:    contacts,
		users:       users,
		ledger:      ledger,
		notifier:    notifier,
		concurrency: concurrency,
	}
}

// origin is the per-run state shared by every target
type origin struct {
	account  *JointAccount
	dong     *expense.PersistedDong
	category *category.Category
	owner    *relation.ContactRelation
	phones   map[int64]string  // origin relation -> phone
	names    map[string]string // phone -> registered username
	lookup   []string
}

// Propagate runs a propagation and logs its report. It returns an error only
// when nothing could be replicated, so the caller may retry.
func (p *Propagator) Propagate(ctx context.Context, d *expense.PersistedDong, ownerID, jointAccountID int64) error {
	report, err := p.Run(ctx, d, ownerID, jointAccountID)
	if err != nil {
		return err
	}

	log := slog.With("joint_account_id", jointAccountID, "origin_dong_id", d.Dong.ID)
	if report.Err != nil {
		log.Warn("joint account propagation incomplete",
			"targets", report.Targets, "replicated", report.Replicated, "failed", report.Failed, "error", report.Err)
		return nil
	}
	log.Info("joint account propagation complete", "targets", report.Targets, "replicated", report.Replicated)
	return nil
}

// Run replicates d for every active subscriber of the account except ownerID.
// Failed targets are reported, skipped and never retried. Notifications for
// the successful targets are dispatched as a single batch.
func (p *Propagator) Run(ctx context.Context, d *expense.PersistedDong, ownerID, jointAccountID int64) (*Report, error) {
	subs, err := p.accounts.ListActiveSubscribers(ctx, jointAccountID, ownerID)
	if err != nil {
		return nil, err
	}

	report := &Report{
		JointAccountID: jointAccountID,
		OriginDongID:   d.Dong.ID,
		Targets:        len(subs),
		Replicas:       make(map[int64]int64, len(subs)),
	}
	if len(subs) == 0 {
		return report, nil
	}

	o, err := p.loadOrigin(ctx, d, ownerID, jointAccountID)
	if err != nil {
		return nil, err
	}

	var (
		g     errgroup.Group
		mu    sync.Mutex
		errs  error
		items = make([]*notification.Item, len(subs))
	)
	g.SetLimit(p.concurrency)

	for i, sub := range subs {
		i, sub := i, sub
		g.Go(func() error {
			replica, item, err := p.replicate(ctx, o, sub.UserID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				metrics.PropagationTargets.WithLabelValues("failed").Inc()
				errs = multierr.Append(errs, fmt.Errorf("user %d: %w", sub.UserID, err))
				return nil
			}
			metrics.PropagationTargets.WithLabelValues("replicated").Inc()
			report.Replicas[sub.UserID] = replica.Dong.ID
			items[i] = item
			return nil
		})
	}
	_ = g.Wait()

	report.Err = errs
	report.Failed = len(multierr.Errors(errs))
	report.Replicated = len(report.Replicas)

	batch := make([]notification.Item, 0, report.Replicated)
	for _, it := range items {
		if it != nil {
			batch = append(batch, *it)
		}
	}
	if len(batch) > 0 {
		dr, err := p.notifier.Dispatch(ctx, batch)
		if err != nil {
			slog.Error("failed to dispatch joint account notifications",
				"joint_account_id", jointAccountID, "origin_dong_id", d.Dong.ID, "error", err)
		}
		report.Notifications = dr
	}

	return report, nil
}

func (p *Propagator) loadOrigin(ctx context.Context, d *expense.PersistedDong, ownerID, jointAccountID int64) (*origin, error) {
	account, err := p.accounts.GetByID(ctx, jointAccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrJointAccountNotFound
	}

	cat, err := p.categories.Get(ctx, ownerID, d.Dong.CategoryID)
	if err != nil {
		return nil, err
	}

	owner, err := p.contacts.SelfRelation(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var ids []int64
	for _, s := range d.Debtors {
		if s.RelationID != nil {
			ids = append(ids, *s.RelationID)
		}
	}
	for _, s := range d.Payers {
		if s.RelationID != nil {
			ids = append(ids, *s.RelationID)
		}
	}
	rels, err := p.contacts.ResolveForUser(ctx, ownerID, ids)
	if err != nil {
		return nil, err
	}

	o := &origin{
		account:  account,
		dong:     d,
		category: cat,
		owner:    owner,
		phones:   make(map[int64]string, len(rels)),
		names:    make(map[string]string),
		lookup:   []string{owner.Phone},
	}

	seen := map[string]bool{owner.Phone: true}
	for id, rel := range rels {
		o.phones[id] = rel.Phone
		if !seen[rel.Phone] {
			seen[rel.Phone] = true
			o.lookup = append(o.lookup, rel.Phone)
		}
	}

	for _, phone := range o.lookup {
		u, err := p.users.GetByPhone(ctx, phone)
		if err != nil {
			return nil, err
		}
		if u != nil {
			o.names[phone] = u.Username
		}
	}

	return o, nil
}

// replicate writes targetID's copy of the origin dong and returns the
// notification item for it
func (p *Propagator) replicate(ctx context.Context, o *origin, targetID int64) (*expense.PersistedDong, *notification.Item, error) {
	match, err := p.categories.Resolve(ctx, targetID, o.category)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve category: %w", err)
	}
	metrics.CategoryMatches.WithLabelValues(string(match.Kind)).Inc()

	book, err := p.contacts.ByPhones(ctx, targetID, o.lookup)
	if err != nil {
		return nil, nil, fmt.Errorf("map contacts: %w", err)
	}

	src := o.dong.Dong
	originID := src.ID
	d := &expense.Dong{
		Title:           src.Title,
		Description:     src.Description,
		CategoryID:      match.Category.ID,
		Pong:            src.Pong,
		Currency:        src.Currency,
		JointAccountID:  src.JointAccountID,
		IsIncome:        src.IsIncome,
		IncludeInBudget: src.IncludeInBudget,
		ReceiptID:       src.ReceiptID,
		OriginDongID:    &originID,
		CreatedAt:       src.CreatedAt,
	}

	debtors := make([]*expense.DebtorShare, len(o.dong.Debtors))
	for i, s := range o.dong.Debtors {
		relID, name := o.mapShare(book, s.RelationID, s.DisplayName)
		debtors[i] = &expense.DebtorShare{RelationID: relID, DisplayName: name, Amount: s.Amount}
	}
	payers := make([]*expense.PayerShare, len(o.dong.Payers))
	for i, s := range o.dong.Payers {
		relID, name := o.mapShare(book, s.RelationID, s.DisplayName)
		payers[i] = &expense.PayerShare{RelationID: relID, DisplayName: name, Amount: s.Amount}
	}

	replica, err := p.ledger.Persist(ctx, targetID, d, debtors, payers)
	if err != nil {
		return nil, nil, err
	}

	return replica, o.item(book, targetID, replica.Dong), nil
}

// mapShare finds the target's relation for an origin share. On a miss the
// relation is nil and the name is the registered username for the phone,
// else the origin alias.
func (o *origin) mapShare(book map[string]*relation.ContactRelation, originRel *int64, alias string) (*int64, string) {
	if originRel == nil {
		return nil, alias
	}
	phone, ok := o.phones[*originRel]
	if !ok {
		return nil, alias
	}
	if rel, ok := book[phone]; ok {
		id := rel.ID
		return &id, rel.Name
	}
	if name, ok := o.names[phone]; ok && name != "" {
		return nil, name
	}
	return nil, alias
}

func (o *origin) item(book map[string]*relation.ContactRelation, targetID int64, replica *expense.Dong) *notification.Item {
	name := o.owner.Name
	if rel, ok := book[o.owner.Phone]; ok {
		name = rel.Name
	} else if registered, ok := o.names[o.owner.Phone]; ok && registered != "" {
		name = registered
	}

	return &notification.Item{
		UserID:   targetID,
		TitleKey: i18n.KeyJointCreatedTitle,
		BodyKey:  i18n.KeyJointCreatedBody,
		Vars: map[string]string{
			"name":     name,
			"title":    replica.Title,
			"amount":   notification.FormatAmount(replica.Pong, replica.Currency),
			"currency": replica.Currency,
			"account":  o.account.Name,
		},
		Data: map[string]string{
			"type":             notification.KindJointDongCreated,
			"dong_id":          strconv.FormatInt(replica.ID, 10),
			"origin_dong_id":   strconv.FormatInt(o.dong.Dong.ID, 10),
			"joint_account_id": strconv.FormatInt(o.account.ID, 10),
		},
		EntityType: notification.EntityDong,
		EntityID:   replica.ID,
	}
}
