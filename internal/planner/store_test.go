package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"planeja/internal/core"
	"planeja/internal/kv"
	"planeja/internal/kv/memory"
	applog "planeja/internal/log"
)

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

// flakyKV wraps a memory store and fails writes on demand.
type flakyKV struct {
	*memory.Store
	failSet bool
	sets    int
}

func (f *flakyKV) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet {
		return errors.New("disk full")
	}
	f.sets++
	return f.Store.Set(ctx, key, value)
}

func newTestStore(t *testing.T) (*Store, *flakyKV) {
	t.Helper()
	backing := &flakyKV{Store: memory.New()}
	n := 0
	s, err := New(context.Background(), backing,
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s, backing
}

func mustList(t *testing.T, s *Store, name, goal string) core.ShoppingList {
	t.Helper()
	l, err := s.CreateList(context.Background(), name, goal, "")
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	return l
}

func persistedLists(t *testing.T, backing kv.Reader) []core.ShoppingList {
	t.Helper()
	data, err := backing.Get(context.Background(), kv.KeyLists)
	if err != nil {
		t.Fatalf("read persisted lists: %v", err)
	}
	var lists []core.ShoppingList
	if err := json.Unmarshal(data, &lists); err != nil {
		t.Fatalf("decode persisted lists: %v", err)
	}
	return lists
}

func TestCreateListRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		list    string
		goal    string
		wantErr error
	}{
		{"empty name", "", "Viagem", core.ErrEmptyName},
		{"blank name", "   ", "Viagem", core.ErrEmptyName},
		{"empty goal", "Trip", "", core.ErrEmptyGoal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, backing := newTestStore(t)
			_, err := s.CreateList(context.Background(), tt.list, tt.goal, "")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if s.Len() != 0 {
				t.Errorf("list must not be stored, have %d", s.Len())
			}
			if backing.sets != 0 {
				t.Errorf("nothing should be persisted, got %d writes", backing.sets)
			}
		})
	}
}

func TestCreateListDefaults(t *testing.T) {
	s, backing := newTestStore(t)
	l, err := s.CreateList(context.Background(), " PC Gamer ", "Upgrade", "2024-12-01")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if l.Name != "PC Gamer" || l.SavedAmount.Cents != 0 || len(l.Products) != 0 || len(l.DepositHistory) != 0 {
		t.Fatalf("unexpected new list: %+v", l)
	}
	if !l.CreatedAt.Equal(fixedNow) {
		t.Errorf("createdAt = %v, want %v", l.CreatedAt, fixedNow)
	}
	if got := persistedLists(t, backing); len(got) != 1 || got[0].ID != l.ID {
		t.Fatalf("list not persisted: %+v", got)
	}

	if _, err := s.CreateList(context.Background(), "X", "Y", "01/12/2024"); !errors.Is(err, core.ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}

func TestTripExample(t *testing.T) {
	ctx := context.Background()
	s, backing := newTestStore(t)
	l := mustList(t, s, "Trip", "Vacation")

	if _, err := s.AddProduct(ctx, l.ID, ProductInput{Name: "Hotel", Price: core.Money{Cents: 10000}, Quantity: 2}); err != nil {
		t.Fatalf("add product: %v", err)
	}
	if _, err := s.AddProduct(ctx, l.ID, ProductInput{Name: "Tour", Price: core.Money{Cents: 5000}, Quantity: 1}); err != nil {
		t.Fatalf("add product: %v", err)
	}
	for _, cents := range []int64{3000, 2000} {
		if _, err := s.AddDeposit(ctx, l.ID, core.Money{Cents: cents}); err != nil {
			t.Fatalf("deposit: %v", err)
		}
	}

	got, err := s.List(l.ID)
	if err != nil {
		t.Fatalf("get list: %v", err)
	}
	if got.PlannedTotal().Cents != 25000 {
		t.Errorf("planned = %d, want 25000", got.PlannedTotal().Cents)
	}
	if got.SavedAmount.Cents != 5000 {
		t.Errorf("saved = %d, want 5000", got.SavedAmount.Cents)
	}
	if got.Progress() != 20 {
		t.Errorf("progress = %v, want 20", got.Progress())
	}

	persisted := persistedLists(t, backing)[0]
	if persisted.SavedAmount != persisted.DepositTotal() || len(persisted.DepositHistory) != 2 {
		t.Errorf("persisted deposits out of sync: %+v", persisted)
	}
}

func TestDepositsKeepSavedAmountInSync(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	l := mustList(t, s, "Casa", "Reforma")

	amounts := []int64{1, 250, 99999, 3, 1050}
	for _, c := range amounts {
		if _, err := s.AddDeposit(ctx, l.ID, core.Money{Cents: c}); err != nil {
			t.Fatalf("deposit %d: %v", c, err)
		}
		got, _ := s.List(l.ID)
		if got.SavedAmount != got.DepositTotal() {
			t.Fatalf("saved %d != deposits %d", got.SavedAmount.Cents, got.DepositTotal().Cents)
		}
	}
}

func TestAddDepositRejectsNonPositive(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	l := mustList(t, s, "Casa", "Reforma")

	for _, c := range []int64{0, -100} {
		if _, err := s.AddDeposit(ctx, l.ID, core.Money{Cents: c}); !errors.Is(err, core.ErrInvalidAmount) {
			t.Errorf("amount %d: expected ErrInvalidAmount, got %v", c, err)
		}
	}
	if _, err := s.AddDeposit(ctx, "missing", core.Money{Cents: 100}); !errors.Is(err, core.ErrListNotFound) {
		t.Errorf("expected ErrListNotFound, got %v", err)
	}
}

func TestAmountsAreBounded(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	l := mustList(t, s, "Casa", "Reforma")

	huge := core.Money{Cents: 9e18}
	if _, err := s.AddDeposit(ctx, l.ID, huge); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("huge deposit: expected ErrInvalidAmount, got %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := s.AddDeposit(ctx, l.ID, core.Money{Cents: core.MaxCents}); err != nil {
			t.Fatalf("deposit at the limit: %v", err)
		}
	}
	if _, err := s.AddProduct(ctx, l.ID, ProductInput{Name: "Ilha", Price: core.Money{Cents: core.MaxCents + 1}}); !errors.Is(err, core.ErrInvalidPrice) {
		t.Errorf("huge price: expected ErrInvalidPrice, got %v", err)
	}
	if _, err := s.AddProduct(ctx, l.ID, ProductInput{Name: "Tijolo", Price: core.Money{Cents: 100}, Quantity: core.MaxQuantity + 1}); !errors.Is(err, core.ErrInvalidQuantity) {
		t.Errorf("huge quantity: expected ErrInvalidQuantity, got %v", err)
	}

	got, _ := s.List(l.ID)
	if got.SavedAmount.Cents != 2*core.MaxCents || got.SavedAmount != got.DepositTotal() {
		t.Fatalf("saved = %d, deposits = %d", got.SavedAmount.Cents, got.DepositTotal().Cents)
	}
	if s.TotalSaved().Cents <= 0 || len(got.Products) != 0 {
		t.Errorf("totals corrupted: saved=%d products=%d", s.TotalSaved().Cents, len(got.Products))
	}
}

func TestFailedPersistLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	s, backing := newTestStore(t)
	l := mustList(t, s, "Casa", "Reforma")
	if _, err := s.AddDeposit(ctx, l.ID, core.Money{Cents: 500}); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	backing.failSet = true
	if _, err := s.AddDeposit(ctx, l.ID, core.Money{Cents: 700}); err == nil {
		t.Fatal("expected persist failure")
	}
	if _, err := s.AddProduct(ctx, l.ID, ProductInput{Name: "Tinta", Price: core.Money{Cents: 100}}); err == nil {
		t.Fatal("expected persist failure")
	}
	if err := s.DeleteList(ctx, l.ID); err == nil {
		t.Fatal("expected persist failure")
	}

	got, err := s.List(l.ID)
	if err != nil {
		t.Fatalf("list must still exist: %v", err)
	}
	if got.SavedAmount.Cents != 500 || len(got.DepositHistory) != 1 || len(got.Products) != 0 {
		t.Fatalf("state changed despite failed write: %+v", got)
	}
}

func TestDeleteListRemovesOnlyThatList(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	a := mustList(t, s, "A", "a")
	b := mustList(t, s, "B", "b")
	c := mustList(t, s, "C", "c")

	for _, l := range []core.ShoppingList{a, b, c} {
		if _, err := s.AddProduct(ctx, l.ID, ProductInput{Name: "item " + l.Name, Price: core.Money{Cents: 1000}, Tags: []string{"x"}}); err != nil {
			t.Fatalf("add product: %v", err)
		}
		if _, err := s.AddDeposit(ctx, l.ID, core.Money{Cents: 100}); err != nil {
			t.Fatalf("deposit: %v", err)
		}
	}
	before := s.Lists()

	if err := s.DeleteList(ctx, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteList(ctx, b.ID); err != nil {
		t.Fatalf("second delete must be a no-op: %v", err)
	}

	after := s.Lists()
	if len(after) != 2 {
		t.Fatalf("expected 2 lists, got %d", len(after))
	}
	for _, l := range after {
		if l.ID == b.ID {
			t.Fatal("deleted list still present")
		}
		var orig core.ShoppingList
		for _, o := range before {
			if o.ID == l.ID {
				orig = o
			}
		}
		want, _ := json.Marshal(orig)
		got, _ := json.Marshal(l)
		if string(want) != string(got) {
			t.Errorf("list %s changed:\n before %s\n after  %s", l.ID, want, got)
		}
	}
}

func TestToggleTwiceRestoresProduct(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	l := mustList(t, s, "PC", "Gamer")
	p, err := s.AddProduct(ctx, l.ID, ProductInput{
		Name: "GPU", Price: core.Money{Cents: 250000}, Quantity: 2, Tags: []string{"urgente", "Urgente", " hw "},
	})
	if err != nil {
		t.Fatalf("add product: %v", err)
	}
	if len(p.Tags) != 2 || p.Completed {
		t.Fatalf("unexpected product: %+v", p)
	}

	first, err := s.ToggleProduct(ctx, l.ID, p.ID)
	if err != nil || !first.Completed {
		t.Fatalf("first toggle: %+v err=%v", first, err)
	}
	second, err := s.ToggleProduct(ctx, l.ID, p.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}

	if second.Completed != p.Completed || second.Price != p.Price || second.Quantity != p.Quantity {
		t.Fatalf("toggle touched other fields: before %+v after %+v", p, second)
	}
	if len(second.Tags) != len(p.Tags) || second.Tags[0] != p.Tags[0] || second.Tags[1] != p.Tags[1] {
		t.Fatalf("tags changed: %v -> %v", p.Tags, second.Tags)
	}
}

func TestProductMutationsOnMissingIDs(t *testing.T) {
	ctx := context.Background()
	s, backing := newTestStore(t)
	l := mustList(t, s, "PC", "Gamer")
	writes := backing.sets

	if _, err := s.ToggleProduct(ctx, "nope", "p"); !errors.Is(err, core.ErrListNotFound) {
		t.Errorf("toggle: expected ErrListNotFound, got %v", err)
	}
	if _, err := s.ToggleProduct(ctx, l.ID, "nope"); !errors.Is(err, core.ErrProductNotFound) {
		t.Errorf("toggle: expected ErrProductNotFound, got %v", err)
	}
	name := "x"
	if _, err := s.UpdateProduct(ctx, l.ID, "nope", ProductPatch{Name: &name}); !errors.Is(err, core.ErrProductNotFound) {
		t.Errorf("update: expected ErrProductNotFound, got %v", err)
	}
	if err := s.DeleteProduct(ctx, "nope", "p"); !errors.Is(err, core.ErrListNotFound) {
		t.Errorf("delete: expected ErrListNotFound, got %v", err)
	}
	if _, err := s.UpdateList(ctx, "nope", ListPatch{Name: &name}); !errors.Is(err, core.ErrListNotFound) {
		t.Errorf("update list: expected ErrListNotFound, got %v", err)
	}
	if backing.sets != writes {
		t.Errorf("misses must not persist, got %d extra writes", backing.sets-writes)
	}
}

func TestAddProductValidation(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	l := mustList(t, s, "PC", "Gamer")

	if _, err := s.AddProduct(ctx, l.ID, ProductInput{Name: "", Price: core.Money{Cents: 100}}); !errors.Is(err, core.ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}
	if _, err := s.AddProduct(ctx, l.ID, ProductInput{Name: "x", Price: core.Money{Cents: -1}}); !errors.Is(err, core.ErrInvalidPrice) {
		t.Errorf("expected ErrInvalidPrice, got %v", err)
	}
	p, err := s.AddProduct(ctx, l.ID, ProductInput{Name: "Mouse", Price: core.Money{}})
	if err != nil {
		t.Fatalf("free product should be accepted: %v", err)
	}
	if p.Quantity != 1 {
		t.Errorf("quantity should default to 1, got %d", p.Quantity)
	}
	got, _ := s.List(l.ID)
	if len(got.Products) != 1 {
		t.Errorf("only the valid product should be stored, got %d", len(got.Products))
	}
}

func TestUpdateProductAndList(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	l := mustList(t, s, "PC", "Gamer")
	p, _ := s.AddProduct(ctx, l.ID, ProductInput{Name: "GPU", Price: core.Money{Cents: 1000}})

	price := core.Money{Cents: 1500}
	qty := 3
	updated, err := s.UpdateProduct(ctx, l.ID, p.ID, ProductPatch{Price: &price, Quantity: &qty})
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if updated.Name != "GPU" || updated.Subtotal().Cents != 4500 {
		t.Errorf("unexpected product after patch: %+v", updated)
	}

	zero := 0
	if _, err := s.UpdateProduct(ctx, l.ID, p.ID, ProductPatch{Quantity: &zero}); err == nil {
		t.Error("quantity 0 must be rejected")
	}

	goal := "Streaming"
	ul, err := s.UpdateList(ctx, l.ID, ListPatch{Goal: &goal})
	if err != nil {
		t.Fatalf("update list: %v", err)
	}
	if ul.Name != "PC" || ul.Goal != "Streaming" {
		t.Errorf("unexpected list after patch: %+v", ul)
	}

	empty := ""
	if _, err := s.UpdateList(ctx, l.ID, ListPatch{Name: &empty}); !errors.Is(err, core.ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}
	if got, _ := s.List(l.ID); got.Name != "PC" {
		t.Errorf("rejected patch must not apply, name = %q", got.Name)
	}
}

func TestTotalsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	a := mustList(t, s, "A", "a")
	b := mustList(t, s, "B", "b")
	_, _ = s.AddProduct(ctx, a.ID, ProductInput{Name: "1", Price: core.Money{Cents: 1050}, Quantity: 3})
	_, _ = s.AddProduct(ctx, b.ID, ProductInput{Name: "2", Price: core.Money{Cents: 999}, Quantity: 1})
	_, _ = s.AddDeposit(ctx, b.ID, core.Money{Cents: 400})

	want := int64(1050*3 + 999)
	for i := 0; i < 2; i++ {
		if got := s.TotalPlanned().Cents; got != want {
			t.Errorf("TotalPlanned() = %d, want %d", got, want)
		}
		if got := s.TotalSaved().Cents; got != 400 {
			t.Errorf("TotalSaved() = %d, want 400", got)
		}
	}

	ov := s.Overview()
	if ov.TotalPlanned.Cents != want || ov.TotalSaved.Cents != 400 || len(ov.Lists) != 2 {
		t.Errorf("unexpected overview: %+v", ov)
	}
}

func TestListsReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	l := mustList(t, s, "A", "a")
	_, _ = s.AddProduct(ctx, l.ID, ProductInput{Name: "x", Price: core.Money{Cents: 100}, Tags: []string{"t"}})

	lists := s.Lists()
	lists[0].Name = "hacked"
	lists[0].Products[0].Tags[0] = "hacked"

	got, _ := s.List(l.ID)
	if got.Name != "A" || got.Products[0].Tags[0] != "t" {
		t.Fatalf("store state leaked through a returned copy: %+v", got)
	}
}

func TestCreateCompleteList(t *testing.T) {
	ctx := context.Background()
	s, backing := newTestStore(t)

	draft := core.ListDraft{
		Name: "Churrasco",
		Goal: "Aniversário",
		Products: []core.DraftProduct{
			{Name: "Picanha", Price: core.Money{Cents: 8990}, Quantity: 2, Priority: core.PriorityHigh},
			{Name: "  ", Price: core.Money{Cents: 100}, Quantity: 1},
			{Name: "Carvão", Price: core.Money{Cents: 2500}, Quantity: 0, Tags: []string{"bbq"}},
		},
	}
	id, err := s.CreateCompleteList(ctx, draft)
	if err != nil {
		t.Fatalf("create complete list: %v", err)
	}
	if backing.sets != 1 {
		t.Errorf("expected a single persisted write, got %d", backing.sets)
	}

	l, err := s.List(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(l.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(l.Products))
	}
	if l.Products[1].Quantity != 1 {
		t.Errorf("quantity should default to 1, got %d", l.Products[1].Quantity)
	}
	if l.PlannedTotal().Cents != 8990*2+2500 {
		t.Errorf("planned = %d", l.PlannedTotal().Cents)
	}

	if _, err := s.CreateCompleteList(ctx, core.ListDraft{Name: "x"}); !errors.Is(err, core.ErrEmptyGoal) {
		t.Errorf("expected ErrEmptyGoal, got %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("invalid draft must not be stored")
	}
}

func TestReloadRepairsSavedAmount(t *testing.T) {
	ctx := context.Background()
	backing := memory.New()
	doc := `[{"id":"l1","name":"Carro","goal":"Troca","targetDate":"","products":null,
		"savedAmount":999,"depositHistory":[{"id":"d1","amount":10.5,"date":"2024-01-01T00:00:00Z"},
		{"id":"d2","amount":4.5,"date":"2024-01-02T00:00:00Z"}],"createdAt":"2024-01-01T00:00:00Z"}]`
	if err := backing.Set(ctx, kv.KeyLists, []byte(doc)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	s, err := New(ctx, backing)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l, err := s.List("l1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if l.SavedAmount.Cents != 1500 {
		t.Errorf("saved = %d, want 1500", l.SavedAmount.Cents)
	}
	if l.Products == nil {
		t.Error("products should be normalized to an empty slice")
	}

	persisted := persistedLists(t, backing)
	if persisted[0].SavedAmount.Cents != 1500 {
		t.Errorf("repair not persisted: %d", persisted[0].SavedAmount.Cents)
	}
}

func TestNewRejectsCorruptDocument(t *testing.T) {
	backing := memory.New()
	_ = backing.Set(context.Background(), kv.KeyLists, []byte(`{not json`))
	if _, err := New(context.Background(), backing); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestWipeAndReload(t *testing.T) {
	ctx := context.Background()
	s, backing := newTestStore(t)
	mustList(t, s, "A", "a")

	if err := s.Wipe(ctx); err != nil {
		t.Fatalf("wipe: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("wipe should empty the planner")
	}
	if _, err := backing.Get(ctx, kv.KeyLists); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("wipe should delete the persisted lists, got %v", err)
	}
	if err := s.Reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("reload after wipe should stay empty, got %d", s.Len())
	}

	_ = backing.Set(ctx, kv.KeyLists, []byte(`[{"id":"x","name":"B","goal":"b"}]`))
	if err := s.Reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("reload should pick up external writes, got %d", s.Len())
	}
}

func TestDueSoon(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	mk := func(name, date string, planned, saved int64) {
		l, err := s.CreateList(ctx, name, "g", date)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		_, _ = s.AddProduct(ctx, l.ID, ProductInput{Name: "p", Price: core.Money{Cents: planned}})
		if saved > 0 {
			_, _ = s.AddDeposit(ctx, l.ID, core.Money{Cents: saved})
		}
	}
	mk("later", "2024-03-13", 1000, 0)   // 3 days
	mk("today", "2024-03-10", 1000, 100) // 0 days
	mk("funded", "2024-03-11", 1000, 1000)
	mk("far", "2024-04-30", 1000, 0)
	mk("past", "2024-03-01", 1000, 0)
	mk("undated", "", 1000, 0)

	due := s.DueSoon(fixedNow, 3)
	if len(due) != 2 {
		t.Fatalf("expected 2 due lists, got %d", len(due))
	}
	if due[0].Name != "today" || due[1].Name != "later" {
		t.Errorf("unexpected order: %s, %s", due[0].Name, due[1].Name)
	}
}

func TestWithLoggerScopesEveryEvent(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := applog.New(applog.Config{
		Component: applog.ComponentApp,
		Handler:   slog.NewTextHandler(&buf, nil),
	})

	backing := memory.New()
	_ = backing.Set(ctx, kv.KeyLists, []byte(`[{"id":"x","name":"Casa","goal":"Reforma","savedAmount":5}]`))
	s, err := New(ctx, backing, WithLogger(logger))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l, err := s.CreateList(ctx, "Viagem", "Férias", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateCompleteList(ctx, core.ListDraft{Name: "Bebê", Goal: "Enxoval"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddDeposit(ctx, l.ID, core.Money{Cents: 100}); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{"repairing", "List created", "List created from draft", "Deposit added"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), buf.String())
	}
	for i, line := range lines {
		if !strings.Contains(line, want[i]) || strings.Count(line, "component=planner") != 1 || strings.Contains(line, "component=app") {
			t.Errorf("line %d = %q", i, line)
		}
	}
}
