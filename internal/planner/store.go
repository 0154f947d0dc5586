// Package planner owns the collection of savings lists.
//
// Every mutation works on a deep copy of the current collection, persists
// the whole copy under kv.KeyLists and only then swaps it in, so a failed
// write never leaves a half-applied change behind.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"planeja/internal/core"
	"planeja/internal/kv"
	applog "planeja/internal/log"
)

// errUnchanged tells mutate that nothing needs persisting.
var errUnchanged = errors.New("unchanged")

type Store struct {
	mu     sync.Mutex
	kv     kv.Store
	lists  []core.ShoppingList
	now    func() time.Time
	newID  func() string
	log    *applog.Logger
	events *applog.StructuredLogger
}

type Option func(*Store)

// WithClock overrides the time source used for createdAt and deposit dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides uuid generation, mostly for tests.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithLogger sends every planner log line, deposits included, to l under
// the planner component.
func WithLogger(l *applog.Logger) Option {
	return func(s *Store) { s.setLogger(l.WithComponent(applog.ComponentPlanner)) }
}

func (s *Store) setLogger(l *applog.Logger) {
	s.log = l
	s.events = applog.NewStructuredLogger(l)
}

// New loads the persisted collection from store. A missing document is an
// empty planner, not an error.
func New(ctx context.Context, store kv.Store, opts ...Option) (*Store, error) {
	s := &Store{
		kv:    store,
		now:   time.Now,
		newID: uuid.NewString,
	}
	s.setLogger(applog.New(applog.Config{
		Handler:   slog.Default().Handler(),
		Component: applog.ComponentPlanner,
	}))
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory collection with the persisted one, repairing
// any list whose saved amount disagrees with its deposit history.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lists, err := s.load(ctx)
	if err != nil {
		return err
	}

	repaired := false
	for i := range lists {
		l := &lists[i]
		if l.Products == nil {
			l.Products = []core.Product{}
		}
		if l.DepositHistory == nil {
			l.DepositHistory = []core.Deposit{}
		}
		if total := l.DepositTotal(); total != l.SavedAmount {
			s.log.WarnContext(ctx, "Saved amount disagrees with deposit history, repairing",
				applog.FieldListID, l.ID,
				"stored_cents", l.SavedAmount.Cents,
				"deposits_cents", total.Cents)
			l.SavedAmount = total
			repaired = true
		}
	}

	if repaired {
		if err := s.persist(ctx, lists); err != nil {
			return fmt.Errorf("persist repaired lists: %w", err)
		}
	}

	s.lists = lists
	return nil
}

// Wipe deletes the persisted lists and empties the planner under the same
// lock mutations take, so no write can land between the two.
func (s *Store) Wipe(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, kv.KeyLists); err != nil {
		return fmt.Errorf("wipe lists: %w", err)
	}
	s.lists = []core.ShoppingList{}
	return nil
}

func (s *Store) load(ctx context.Context) ([]core.ShoppingList, error) {
	data, err := s.kv.Get(ctx, kv.KeyLists)
	if errors.Is(err, kv.ErrNotFound) {
		return []core.ShoppingList{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load lists: %w", err)
	}
	var lists []core.ShoppingList
	if err := json.Unmarshal(data, &lists); err != nil {
		return nil, fmt.Errorf("decode lists: %w", err)
	}
	if lists == nil {
		lists = []core.ShoppingList{}
	}
	return lists, nil
}

func (s *Store) persist(ctx context.Context, lists []core.ShoppingList) error {
	data, err := json.Marshal(lists)
	if err != nil {
		return fmt.Errorf("encode lists: %w", err)
	}
	return s.kv.Set(ctx, kv.KeyLists, data)
}

// mutate applies fn to a copy of the collection and commits it once persisted.
func (s *Store) mutate(ctx context.Context, fn func(lists *[]core.ShoppingList) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneAll(s.lists)
	if err := fn(&next); err != nil {
		if errors.Is(err, errUnchanged) {
			return nil
		}
		return err
	}
	if err := s.persist(ctx, next); err != nil {
		return fmt.Errorf("persist lists: %w", err)
	}
	s.lists = next
	return nil
}

func cloneAll(lists []core.ShoppingList) []core.ShoppingList {
	out := make([]core.ShoppingList, len(lists))
	for i, l := range lists {
		out[i] = l.Clone()
	}
	return out
}

func indexOf(lists []core.ShoppingList, id string) int {
	for i := range lists {
		if lists[i].ID == id {
			return i
		}
	}
	return -1
}

func productIndex(l *core.ShoppingList, id string) int {
	for i := range l.Products {
		if l.Products[i].ID == id {
			return i
		}
	}
	return -1
}

// Lists returns a deep copy of every list in creation order.
func (s *Store) Lists() []core.ShoppingList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.lists)
}

// List returns a copy of one list.
func (s *Store) List(id string) (core.ShoppingList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.lists, id)
	if i < 0 {
		return core.ShoppingList{}, core.ErrListNotFound
	}
	return s.lists[i].Clone(), nil
}

// Len returns the number of lists.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lists)
}

// CreateList adds an empty list and returns it.
func (s *Store) CreateList(ctx context.Context, name, goal, targetDate string) (core.ShoppingList, error) {
	name, goal, targetDate = strings.TrimSpace(name), strings.TrimSpace(goal), strings.TrimSpace(targetDate)
	if err := core.ValidateListFields(name, goal, targetDate); err != nil {
		return core.ShoppingList{}, err
	}

	l := core.ShoppingList{
		ID:             s.newID(),
		Name:           name,
		Goal:           goal,
		TargetDate:     targetDate,
		Products:       []core.Product{},
		DepositHistory: []core.Deposit{},
		CreatedAt:      s.now().UTC(),
	}
	err := s.mutate(ctx, func(lists *[]core.ShoppingList) error {
		*lists = append(*lists, l)
		return nil
	})
	if err != nil {
		return core.ShoppingList{}, err
	}

	s.log.InfoContext(ctx, "List created", applog.FieldListID, l.ID, applog.FieldListName, l.Name)
	return l.Clone(), nil
}

// UpdateList merges the non-nil fields of patch into the list.
func (s *Store) UpdateList(ctx context.Context, id string, patch ListPatch) (core.ShoppingList, error) {
	var updated core.ShoppingList
	err := s.mutate(ctx, func(lists *[]core.ShoppingList) error {
		i := indexOf(*lists, id)
		if i < 0 {
			return core.ErrListNotFound
		}
		l := &(*lists)[i]
		patch.apply(l)
		if err := core.ValidateListFields(l.Name, l.Goal, l.TargetDate); err != nil {
			return err
		}
		updated = l.Clone()
		return nil
	})
	if err != nil {
		return core.ShoppingList{}, err
	}
	return updated, nil
}

// CreateCompleteList turns a confirmed draft into a list with all of its
// products in a single persisted step. Products without a name are skipped.
func (s *Store) CreateCompleteList(ctx context.Context, draft core.ListDraft) (string, error) {
	draft.Name = strings.TrimSpace(draft.Name)
	draft.Goal = strings.TrimSpace(draft.Goal)
	draft.TargetDate = strings.TrimSpace(draft.TargetDate)
	if err := draft.Validate(); err != nil {
		return "", err
	}

	l := core.ShoppingList{
		ID:             s.newID(),
		Name:           draft.Name,
		Goal:           draft.Goal,
		TargetDate:     draft.TargetDate,
		Products:       make([]core.Product, 0, len(draft.Products)),
		DepositHistory: []core.Deposit{},
		CreatedAt:      s.now().UTC(),
	}
	for _, dp := range draft.Products {
		name := strings.TrimSpace(dp.Name)
		if name == "" {
			continue
		}
		price := dp.Price
		if price.Cents < 0 {
			price = core.Money{}
		}
		l.Products = append(l.Products, core.Product{
			ID:       s.newID(),
			Name:     name,
			Price:    price,
			Quantity: min(defaultQuantity(dp.Quantity), core.MaxQuantity),
			Tags:     core.NormalizeTags(dp.Tags),
			Priority: dp.Priority,
		})
	}

	err := s.mutate(ctx, func(lists *[]core.ShoppingList) error {
		*lists = append(*lists, l)
		return nil
	})
	if err != nil {
		return "", err
	}

	s.log.InfoContext(ctx, "List created from draft",
		applog.FieldListID, l.ID, applog.FieldListName, l.Name, "products", len(l.Products))
	return l.ID, nil
}

// DeleteList removes the list and everything in it. Deleting an unknown id
// succeeds without touching storage.
func (s *Store) DeleteList(ctx context.Context, id string) error {
	return s.mutate(ctx, func(lists *[]core.ShoppingList) error {
		i := indexOf(*lists, id)
		if i < 0 {
			return errUnchanged
		}
		*lists = append((*lists)[:i], (*lists)[i+1:]...)
		return nil
	})
}

// AddProduct appends a product to the list. Name is required and price may
// not be negative; a missing quantity means one unit.
func (s *Store) AddProduct(ctx context.Context, listID string, in ProductInput) (core.Product, error) {
	p := core.Product{
		Name:     strings.TrimSpace(in.Name),
		Price:    in.Price,
		Quantity: defaultQuantity(in.Quantity),
		Link:     strings.TrimSpace(in.Link),
		Store:    strings.TrimSpace(in.Store),
		Notes:    strings.TrimSpace(in.Notes),
		Tags:     core.NormalizeTags(in.Tags),
		Priority: in.Priority,
	}
	if err := p.Validate(); err != nil {
		return core.Product{}, err
	}

	err := s.mutate(ctx, func(lists *[]core.ShoppingList) error {
		i := indexOf(*lists, listID)
		if i < 0 {
			return core.ErrListNotFound
		}
		p.ID = s.newID()
		(*lists)[i].Products = append((*lists)[i].Products, p)
		return nil
	})
	if err != nil {
		return core.Product{}, err
	}
	return p, nil
}

// UpdateProduct merges patch into one product of one list.
func (s *Store) UpdateProduct(ctx context.Context, listID, productID string, patch ProductPatch) (core.Product, error) {
	var updated core.Product
	err := s.mutate(ctx, func(lists *[]core.ShoppingList) error {
		i := indexOf(*lists, listID)
		if i < 0 {
			return core.ErrListNotFound
		}
		l := &(*lists)[i]
		j := productIndex(l, productID)
		if j < 0 {
			return core.ErrProductNotFound
		}
		p := &l.Products[j]
		patch.apply(p)
		if err := p.Validate(); err != nil {
			return err
		}
		updated = *p
		updated.Tags = append([]string(nil), p.Tags...)
		return nil
	})
	if err != nil {
		return core.Product{}, err
	}
	return updated, nil
}

// ToggleProduct flips the completion flag and nothing else.
func (s *Store) ToggleProduct(ctx context.Context, listID, productID string) (core.Product, error) {
	var toggled core.Product
	err := s.mutate(ctx, func(lists *[]core.ShoppingList) error {
		i := indexOf(*lists, listID)
		if i < 0 {
			return core.ErrListNotFound
		}
		l := &(*lists)[i]
		j := productIndex(l, productID)
		if j < 0 {
			return core.ErrProductNotFound
		}
		l.Products[j].Completed = !l.Products[j].Completed
		toggled = l.Products[j]
		return nil
	})
	return toggled, err
}

func (s *Store) DeleteProduct(ctx context.Context, listID, productID string) error {
	return s.mutate(ctx, func(lists *[]core.ShoppingList) error {
		i := indexOf(*lists, listID)
		if i < 0 {
			return core.ErrListNotFound
		}
		l := &(*lists)[i]
		j := productIndex(l, productID)
		if j < 0 {
			return core.ErrProductNotFound
		}
		l.Products = append(l.Products[:j], l.Products[j+1:]...)
		return nil
	})
}

// AddDeposit records a contribution and credits it to the saved amount.
// Both happen in the same persisted write or not at all.
func (s *Store) AddDeposit(ctx context.Context, listID string, amount core.Money) (core.Deposit, error) {
	if err := amount.Validate(); err != nil {
		return core.Deposit{}, err
	}

	d := core.Deposit{ID: s.newID(), Amount: amount, Date: s.now().UTC()}
	var saved core.Money
	err := s.mutate(ctx, func(lists *[]core.ShoppingList) error {
		i := indexOf(*lists, listID)
		if i < 0 {
			return core.ErrListNotFound
		}
		l := &(*lists)[i]
		next, ok := l.SavedAmount.CheckedAdd(amount)
		if !ok {
			return core.ErrInvalidAmount
		}
		l.DepositHistory = append(l.DepositHistory, d)
		l.SavedAmount = next
		saved = next
		return nil
	})
	if err != nil {
		return core.Deposit{}, err
	}

	s.events.LogDepositAdded(ctx, listID, amount.Cents, saved.Cents)
	return d, nil
}

// TotalPlanned sums every list's planned total.
func (s *Store) TotalPlanned() core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total core.Money
	for _, l := range s.lists {
		total = total.Add(l.PlannedTotal())
	}
	return total
}

// TotalSaved sums every list's saved amount.
func (s *Store) TotalSaved() core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total core.Money
	for _, l := range s.lists {
		total = total.Add(l.SavedAmount)
	}
	return total
}

// Overview builds the dashboard aggregate.
func (s *Store) Overview() core.Overview {
	s.mu.Lock()
	defer s.mu.Unlock()

	ov := core.Overview{Lists: make([]core.ListSummary, 0, len(s.lists))}
	for _, l := range s.lists {
		sum := core.Summarize(l)
		ov.TotalPlanned = ov.TotalPlanned.Add(sum.Planned)
		ov.TotalSaved = ov.TotalSaved.Add(sum.Saved)
		ov.Lists = append(ov.Lists, sum)
	}
	if ov.TotalPlanned.Cents > 0 {
		ov.Percentage = float64(ov.TotalSaved.Cents*100) / float64(ov.TotalPlanned.Cents)
		if ov.Percentage > 100 {
			ov.Percentage = 100
		}
	}
	return ov
}

// DueSoon returns unfunded lists whose target date falls within the next
// days days (today included), soonest first.
func (s *Store) DueSoon(now time.Time, days int) []core.ShoppingList {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []core.ShoppingList
	for _, l := range s.lists {
		left, ok := l.DaysLeft(now)
		if !ok || left < 0 || left > days || l.Funded() {
			continue
		}
		due = append(due, l.Clone())
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].TargetDate < due[j].TargetDate })
	return due
}

func defaultQuantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}
