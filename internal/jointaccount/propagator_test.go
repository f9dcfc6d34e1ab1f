package jointaccount

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/dongsplit/internal/category"
	"github.com/fkhayef/dongsplit/internal/expense"
	"github.com/fkhayef/dongsplit/internal/i18n"
	"github.com/fkhayef/dongsplit/internal/notification"
	"github.com/fkhayef/dongsplit/internal/relation"
	"github.com/fkhayef/dongsplit/internal/user"
)

type fakeAccounts struct {
	account *JointAccount
	subs    []*Subscription
	err     error
}

func (f *fakeAccounts) GetByID(_ context.Context, id int64) (*JointAccount, error) {
	if f.account != nil && f.account.ID == id {
		return f.account, nil
	}
	return nil, nil
}

func (f *fakeAccounts) ListActiveSubscribers(_ context.Context, _ int64, exclude int64) ([]*Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*Subscription
	for _, s := range f.subs {
		if s.UserID != exclude {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeCategories struct {
	origin  *category.Category
	failFor map[int64]bool
}

func (f *fakeCategories) Get(_ context.Context, _, _ int64) (*category.Category, error) {
	return f.origin, nil
}

func (f *fakeCategories) Resolve(_ context.Context, target int64, origin *category.Category) (*category.Match, error) {
	if f.failFor[target] {
		return nil, errors.New("category store unavailable")
	}
	return &category.Match{
		Category: &category.Category{ID: target * 10, OwnerID: target, Title: origin.Title},
		Kind:     category.MatchExact,
	}, nil
}

type fakeContacts struct {
	self  map[int64]*relation.ContactRelation
	rels  map[int64]*relation.ContactRelation
	books map[int64]map[string]*relation.ContactRelation
}

func (f *fakeContacts) SelfRelation(_ context.Context, ownerID int64) (*relation.ContactRelation, error) {
	return f.self[ownerID], nil
}

func (f *fakeContacts) ResolveForUser(_ context.Context, ownerID int64, ids []int64) (map[int64]*relation.ContactRelation, error) {
	out := map[int64]*relation.ContactRelation{}
	for _, id := range ids {
		if rel, ok := f.rels[id]; ok && rel.OwnerID == ownerID {
			out[id] = rel
		}
	}
	return out, nil
}

func (f *fakeContacts) ByPhones(_ context.Context, ownerID int64, phones []string) (map[string]*relation.ContactRelation, error) {
	out := map[string]*relation.ContactRelation{}
	for _, phone := range phones {
		if rel, ok := f.books[ownerID][phone]; ok {
			out[phone] = rel
		}
	}
	return out, nil
}

type fakeUsers map[string]*user.User

func (f fakeUsers) GetByPhone(_ context.Context, phone string) (*user.User, error) {
	return f[phone], nil
}

type fakeLedger struct {
	mu      sync.Mutex
	nextID  int64
	byOwner map[int64]*expense.PersistedDong
}

func (l *fakeLedger) Persist(_ context.Context, ownerID int64, d *expense.Dong, debtors []*expense.DebtorShare, payers []*expense.PayerShare) (*expense.PersistedDong, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	d.ID = 1000 + l.nextID
	d.OwnerID = ownerID
	pd := &expense.PersistedDong{Dong: d, Debtors: debtors, Payers: payers}
	l.byOwner[ownerID] = pd
	return pd, nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	batches [][]notification.Item
}

func (n *fakeNotifier) Dispatch(_ context.Context, items []notification.Item) (*notification.DispatchReport, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.batches = append(n.batches, items)
	return &notification.DispatchReport{Persisted: len(items)}, nil
}

func ptr(v int64) *int64 { return &v }

type propagationFixture struct {
	propagator *Propagator
	accounts   *fakeAccounts
	categories *fakeCategories
	ledger     *fakeLedger
	notifier   *fakeNotifier
	origin     *expense.PersistedDong
}

// scenarioB: owner 10 records a joint dong; subscribers 20 and 30 get replicas
func scenarioB() *propagationFixture {
	contacts := &fakeContacts{
		self: map[int64]*relation.ContactRelation{
			10: {ID: 1, OwnerID: 10, Name: "Me", Phone: "+10", Type: relation.TypeSelf},
		},
		rels: map[int64]*relation.ContactRelation{
			1: {ID: 1, OwnerID: 10, Name: "Me", Phone: "+10", Type: relation.TypeSelf},
			2: {ID: 2, OwnerID: 10, Name: "Sara", Phone: "+20", Type: relation.TypeReal},
			3: {ID: 3, OwnerID: 10, Name: "Reza", Phone: "+99", Type: relation.TypeVirtual},
		},
		books: map[int64]map[string]*relation.ContactRelation{
			20: {
				"+20": {ID: 200, OwnerID: 20, Name: "Me", Phone: "+20", Type: relation.TypeSelf},
				"+10": {ID: 201, OwnerID: 20, Name: "Ali", Phone: "+10", Type: relation.TypeReal},
			},
			30: {
				"+10": {ID: 301, OwnerID: 30, Name: "Ali K", Phone: "+10", Type: relation.TypeReal},
				"+20": {ID: 302, OwnerID: 30, Name: "Sara J", Phone: "+20", Type: relation.TypeReal},
			},
		},
	}
	users := fakeUsers{
		"+10": {ID: 10, Username: "ali", Phone: "+10"},
		"+20": {ID: 20, Username: "sara", Phone: "+20"},
		"+30": {ID: 30, Username: "omid", Phone: "+30"},
	}

	f := &propagationFixture{
		accounts: &fakeAccounts{
			account: &JointAccount{ID: 7, OwnerID: 10, Name: "Flat"},
			subs: []*Subscription{
				{ID: 1, JointAccountID: 7, UserID: 10, IsActive: true},
				{ID: 2, JointAccountID: 7, UserID: 20, IsActive: true},
				{ID: 3, JointAccountID: 7, UserID: 30, IsActive: true},
			},
		},
		categories: &fakeCategories{origin: &category.Category{ID: 5, OwnerID: 10, Title: "Food"}},
		ledger:     &fakeLedger{byOwner: map[int64]*expense.PersistedDong{}},
		notifier:   &fakeNotifier{},
		origin: &expense.PersistedDong{
			Dong: &expense.Dong{
				ID: 100, OwnerID: 10, Title: "Groceries", CategoryID: 5, Pong: 100, Currency: "EUR",
				JointAccountID: ptr(7), IncludeInBudget: true, CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			},
			Debtors: []*expense.DebtorShare{
				{ID: 1, DongID: 100, RelationID: ptr(2), DisplayName: "Sara", Amount: 60},
				{ID: 2, DongID: 100, RelationID: ptr(3), DisplayName: "Reza", Amount: 40},
			},
			Payers: []*expense.PayerShare{
				{ID: 1, DongID: 100, RelationID: ptr(1), DisplayName: "Me", Amount: 100},
			},
		},
	}
	f.propagator = NewPropagator(f.accounts, f.categories, contacts, users, f.ledger, f.notifier, 2)
	return f
}

func TestPropagator_Run_ScenarioB(t *testing.T) {
	f := scenarioB()

	report, err := f.propagator.Run(context.Background(), f.origin, 10, 7)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Targets)
	assert.Equal(t, 2, report.Replicated)
	assert.Equal(t, 0, report.Failed)
	assert.NoError(t, report.Err)
	require.Len(t, f.ledger.byOwner, 2)
	assert.NotContains(t, f.ledger.byOwner, int64(10))

	// subscriber 20 is a participant: their own share maps to their self relation
	sara := f.ledger.byOwner[20]
	assert.Equal(t, int64(100), *sara.Dong.OriginDongID)
	assert.Equal(t, int64(200), sara.Dong.CategoryID)
	assert.Equal(t, f.origin.Dong.CreatedAt, sara.Dong.CreatedAt)
	assert.Equal(t, int64(7), *sara.Dong.JointAccountID)
	assert.Equal(t, int64(200), *sara.Debtors[0].RelationID)
	assert.Equal(t, int64(60), sara.Debtors[0].Amount)
	assert.Nil(t, sara.Debtors[1].RelationID)
	assert.Equal(t, "Reza", sara.Debtors[1].DisplayName)
	assert.Equal(t, int64(201), *sara.Payers[0].RelationID)
	assert.Equal(t, "Ali", sara.Payers[0].DisplayName)

	omid := f.ledger.byOwner[30]
	assert.Equal(t, int64(302), *omid.Debtors[0].RelationID)
	assert.Equal(t, "Sara J", omid.Debtors[0].DisplayName)
	assert.Equal(t, int64(301), *omid.Payers[0].RelationID)

	// one batch for the whole run, in subscriber order
	require.Len(t, f.notifier.batches, 1)
	batch := f.notifier.batches[0]
	require.Len(t, batch, 2)
	assert.Equal(t, int64(20), batch[0].UserID)
	assert.Equal(t, "Ali", batch[0].Vars["name"])
	assert.Equal(t, "Flat", batch[0].Vars["account"])
	assert.Equal(t, i18n.KeyJointCreatedBody, batch[0].BodyKey)
	assert.Equal(t, notification.KindJointDongCreated, batch[0].Data["type"])
	assert.Equal(t, sara.Dong.ID, batch[0].EntityID)
	assert.Equal(t, int64(30), batch[1].UserID)
	assert.Equal(t, "Ali K", batch[1].Vars["name"])
	assert.Equal(t, report.Replicas[30], batch[1].EntityID)
}

func TestPropagator_Run_UnknownPhoneUsesRegisteredName(t *testing.T) {
	f := scenarioB()
	f.origin.Debtors[1].RelationID = ptr(2)
	f.origin.Debtors[0].RelationID = ptr(3)
	f.origin.Debtors[0].DisplayName = "Reza"
	f.origin.Debtors[1].DisplayName = "Sara"
	// subscriber 40 knows nobody
	f.accounts.subs = append(f.accounts.subs, &Subscription{ID: 4, JointAccountID: 7, UserID: 40, IsActive: true})

	report, err := f.propagator.Run(context.Background(), f.origin, 10, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Replicated)

	stranger := f.ledger.byOwner[40]
	assert.Nil(t, stranger.Debtors[0].RelationID)
	assert.Equal(t, "Reza", stranger.Debtors[0].DisplayName)
	assert.Nil(t, stranger.Debtors[1].RelationID)
	assert.Equal(t, "sara", stranger.Debtors[1].DisplayName)
	assert.Equal(t, "ali", stranger.Payers[0].DisplayName)

	batch := f.notifier.batches[0]
	require.Len(t, batch, 3)
	assert.Equal(t, "ali", batch[2].Vars["name"])
}

func TestPropagator_Run_PartialFailure(t *testing.T) {
	f := scenarioB()
	f.categories.failFor = map[int64]bool{30: true}

	report, err := f.propagator.Run(context.Background(), f.origin, 10, 7)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Replicated)
	assert.Equal(t, 1, report.Failed)
	require.Error(t, report.Err)
	assert.Contains(t, report.Err.Error(), "user 30")
	assert.NotContains(t, f.ledger.byOwner, int64(30))

	require.Len(t, f.notifier.batches, 1)
	require.Len(t, f.notifier.batches[0], 1)
	assert.Equal(t, int64(20), f.notifier.batches[0][0].UserID)
}

func TestPropagator_Run_ListFailure(t *testing.T) {
	f := scenarioB()
	f.accounts.err = errors.New("connection refused")

	_, err := f.propagator.Run(context.Background(), f.origin, 10, 7)
	require.Error(t, err)
	assert.Empty(t, f.ledger.byOwner)
	assert.Empty(t, f.notifier.batches)

	// the task runner sees the error and may retry
	assert.Error(t, f.propagator.Propagate(context.Background(), f.origin, 10, 7))
}

func TestPropagator_Run_NoOtherSubscribers(t *testing.T) {
	f := scenarioB()
	f.accounts.subs = f.accounts.subs[:1]

	report, err := f.propagator.Run(context.Background(), f.origin, 10, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Targets)
	assert.Empty(t, f.notifier.batches)
}

func TestPropagator_Propagate_PartialFailureIsNotRetried(t *testing.T) {
	f := scenarioB()
	f.categories.failFor = map[int64]bool{20: true, 30: true}

	assert.NoError(t, f.propagator.Propagate(context.Background(), f.origin, 10, 7))
	assert.Empty(t, f.notifier.batches)
}
