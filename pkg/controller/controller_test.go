package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tableflip.dev/tradelog/pkg/legform"
	"tableflip.dev/tradelog/pkg/operation"
	"tableflip.dev/tradelog/pkg/remote"
	"tableflip.dev/tradelog/pkg/selection"
)

type fakeService struct {
	mu      sync.Mutex
	groups  map[operation.GroupKey][]operation.Operation
	listErr error

	nextID    int64
	createErr error
	created   []operation.Draft

	deleteErr error
	deleted   []int64
}

func (f *fakeService) List(context.Context) (map[operation.GroupKey][]operation.Operation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.groups, f.listErr
}

func (f *fakeService) Create(_ context.Context, d operation.Draft, _ []operation.Blob) (operation.Operation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, d)
	if f.createErr != nil {
		return operation.Operation{}, f.createErr
	}
	f.nextID++
	return operation.Operation{
		ID:         f.nextID,
		Underlying: d.Underlying,
		EnteredAt:  d.EnteredAt,
		Legs:       d.Legs,
		Strategy:   operation.DetectStrategy(d.Legs),
	}, nil
}

func (f *fakeService) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

type recorder struct {
	views []View
}

func (r *recorder) Render(v View) { r.views = append(r.views, v) }

func op(id int64, exp string, entered time.Time) operation.Operation {
	return operation.Operation{
		ID:         id,
		Underlying: "SPY",
		EnteredAt:  entered,
		Legs: []operation.Leg{{
			Action:     operation.Buy,
			Type:       operation.Call,
			Quantity:   1,
			Expiration: operation.MustDate(exp),
			Strike:     decimal.NewFromInt(450),
			Premium:    decimal.NewFromFloat(2.5),
		}},
	}
}

var (
	t1 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 = t1.Add(24 * time.Hour)
	t3 = t2.Add(24 * time.Hour)
)

func scenarioGroups() map[operation.GroupKey][]operation.Operation {
	return map[operation.GroupKey][]operation.Operation{
		"2024-03-15": {op(1, "2024-03-15", t1), op(2, "2024-03-15", t3)},
		"2024-04-19": {op(3, "2024-04-19", t2)},
	}
}

func ids(ops []operation.Operation) []int64 {
	var out []int64
	for _, o := range ops {
		out = append(out, o.ID)
	}
	return out
}

func equalIDs(got, want []int64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func validLeg() legform.SlotInput {
	return legform.SlotInput{
		Action:     "BUY",
		Type:       "CALL",
		Quantity:   "1",
		Expiration: "2024-05-17",
		Strike:     "450",
		Premium:    "2.5",
	}
}

func TestFetchAllSelectsAllAndProjects(t *testing.T) {
	rec := &recorder{}
	c := New(&fakeService{groups: scenarioGroups()}, WithRenderer(rec))

	if err := c.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if !c.Selection().IsAll() {
		t.Fatalf("selection = %s, want all", c.Selection())
	}
	if got := ids(c.Visible()); !equalIDs(got, []int64{2, 3, 1}) {
		t.Fatalf("visible = %v, want [2 3 1]", got)
	}
	tabs := c.Tabs()
	if len(tabs) != 3 || tabs[0].Label != "All" || !tabs[0].Active {
		t.Fatalf("unexpected tabs %+v", tabs)
	}
	if len(rec.views) != 1 {
		t.Fatalf("renders = %d, want 1", len(rec.views))
	}
	if p := c.Phase(RequestKey{Kind: KindFetch}); p != Applied {
		t.Fatalf("phase = %s, want applied", p)
	}
}

func TestSelectTabFiltersGroup(t *testing.T) {
	c := New(&fakeService{groups: scenarioGroups()})
	if err := c.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}

	c.SelectTab(selection.Group("2024-03-15"))
	if got := ids(c.Visible()); !equalIDs(got, []int64{2, 1}) {
		t.Fatalf("visible = %v, want [2 1]", got)
	}

	c.SelectTab(selection.Group("2030-01-01"))
	if !c.Selection().IsAll() {
		t.Fatalf("unknown tab should fall back to all, got %s", c.Selection())
	}
}

func TestDeleteLastInGroupFallsBackToAll(t *testing.T) {
	svc := &fakeService{groups: scenarioGroups()}
	c := New(svc, WithConfirmer(AlwaysConfirm))
	if err := c.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	c.SelectTab(selection.Group("2024-04-19"))

	deleted, err := c.RequestDelete(context.Background(), 3)
	if err != nil || !deleted {
		t.Fatalf("RequestDelete = %v, %v", deleted, err)
	}
	if !c.Selection().IsAll() {
		t.Fatalf("selection = %s, want all", c.Selection())
	}
	if got := ids(c.Visible()); !equalIDs(got, []int64{2, 1}) {
		t.Fatalf("visible = %v, want [2 1]", got)
	}
	if len(c.Tabs()) != 2 {
		t.Fatalf("tabs = %+v, want All and one group", c.Tabs())
	}
}

func TestDeleteOnlyOperationLeavesNoTabs(t *testing.T) {
	svc := &fakeService{groups: map[operation.GroupKey][]operation.Operation{
		"2024-03-15": {op(1, "2024-03-15", t1)},
	}}
	c := New(svc, WithConfirmer(AlwaysConfirm))
	if err := c.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}

	if _, err := c.RequestDelete(context.Background(), 1); err != nil {
		t.Fatalf("RequestDelete: %v", err)
	}
	if !c.Selection().IsUnset() {
		t.Fatalf("selection = %s, want unset", c.Selection())
	}
	if len(c.Tabs()) != 0 || len(c.Visible()) != 0 {
		t.Fatalf("expected empty view, got %+v", c.View())
	}
}

func TestDeleteDeclinedSendsNothing(t *testing.T) {
	svc := &fakeService{groups: scenarioGroups()}
	no := ConfirmFunc(func(context.Context, string) (bool, error) { return false, nil })
	c := New(svc, WithConfirmer(no))
	if err := c.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}

	deleted, err := c.RequestDelete(context.Background(), 1)
	if err != nil || deleted {
		t.Fatalf("RequestDelete = %v, %v", deleted, err)
	}
	if len(svc.deleted) != 0 {
		t.Fatalf("delete was sent: %v", svc.deleted)
	}
	if len(c.Visible()) != 3 {
		t.Fatalf("visible = %v", ids(c.Visible()))
	}
}

func TestDeleteNotFoundRemovesLocally(t *testing.T) {
	svc := &fakeService{groups: scenarioGroups(), deleteErr: remote.ErrNotFound}
	c := New(svc, WithConfirmer(AlwaysConfirm))
	if err := c.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}

	deleted, err := c.RequestDelete(context.Background(), 1)
	if err != nil || !deleted {
		t.Fatalf("RequestDelete = %v, %v", deleted, err)
	}
	if _, ok := c.Lookup(1); ok {
		t.Fatalf("operation 1 still cached")
	}
}

func TestDeleteFailureKeepsCache(t *testing.T) {
	boom := &remote.TransportError{Op: "delete", Status: 500, Err: errors.New("boom")}
	svc := &fakeService{groups: scenarioGroups(), deleteErr: boom}
	c := New(svc, WithConfirmer(AlwaysConfirm))
	if err := c.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}

	if _, err := c.RequestDelete(context.Background(), 1); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if _, ok := c.Lookup(1); !ok {
		t.Fatalf("operation 1 should still be cached")
	}
	if p := c.Phase(RequestKey{Kind: KindDelete, ID: 1}); p != Failed {
		t.Fatalf("phase = %s, want failed", p)
	}
}

func TestSubmitInvalidLegNeverCallsServer(t *testing.T) {
	svc := &fakeService{}
	c := New(svc)
	c.OpenNewOperationForm()
	seq, err := c.AddLeg()
	if err != nil {
		t.Fatalf("AddLeg: %v", err)
	}

	bad := validLeg()
	bad.Strike = ""
	err = c.Submit(context.Background(), FormValues{
		Underlying: "SPY",
		Legs:       map[int]legform.SlotInput{legform.FirstSlot: validLeg(), seq: bad},
	})
	var verr *operation.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if slots := verr.Slots(); len(slots) != 1 || slots[0] != seq {
		t.Fatalf("failing slots = %v, want [%d]", slots, seq)
	}
	if len(svc.created) != 0 {
		t.Fatalf("server was called")
	}
	if !c.FormOpen() || len(c.Slots()) != 2 {
		t.Fatalf("form should stay open with both slots")
	}
}

func TestSubmitRequiresUnderlying(t *testing.T) {
	svc := &fakeService{}
	c := New(svc)
	c.OpenNewOperationForm()

	err := c.Submit(context.Background(), FormValues{
		Underlying: "  ",
		Legs:       map[int]legform.SlotInput{legform.FirstSlot: validLeg()},
	})
	var verr *operation.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if len(svc.created) != 0 {
		t.Fatalf("server was called")
	}
}

func TestSubmitWithoutFormFails(t *testing.T) {
	c := New(&fakeService{})
	if err := c.Submit(context.Background(), FormValues{Underlying: "SPY"}); !errors.Is(err, ErrFormClosed) {
		t.Fatalf("err = %v, want ErrFormClosed", err)
	}
}

func TestSubmitCreatesAndSelectsAll(t *testing.T) {
	svc := &fakeService{groups: map[operation.GroupKey][]operation.Operation{}}
	rec := &recorder{}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := New(svc, WithRenderer(rec), WithClock(func() time.Time { return now }))
	if err := c.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if !c.Selection().IsUnset() {
		t.Fatalf("empty store should leave selection unset")
	}

	c.OpenNewOperationForm()
	err := c.Submit(context.Background(), FormValues{
		Underlying: "spy",
		Legs:       map[int]legform.SlotInput{legform.FirstSlot: validLeg()},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(svc.created) != 1 {
		t.Fatalf("created = %d, want 1", len(svc.created))
	}
	draft := svc.created[0]
	if draft.Underlying != "SPY" || !draft.EnteredAt.Equal(now) {
		t.Fatalf("unexpected draft %+v", draft)
	}
	if !c.Selection().IsAll() {
		t.Fatalf("selection = %s, want all", c.Selection())
	}
	if c.FormOpen() {
		t.Fatalf("form should close after create")
	}
	tabs := c.Tabs()
	if len(tabs) != 2 || tabs[1].Label != "May 17, 2024" {
		t.Fatalf("unexpected tabs %+v", tabs)
	}
	if len(rec.views) != 2 {
		t.Fatalf("renders = %d, want 2", len(rec.views))
	}
}

func TestSubmitServerRejectionKeepsForm(t *testing.T) {
	svc := &fakeService{createErr: &operation.ValidationError{Issues: []operation.Issue{{Message: "bad"}}}}
	c := New(svc)
	c.OpenNewOperationForm()

	err := c.Submit(context.Background(), FormValues{
		Underlying: "SPY",
		Legs:       map[int]legform.SlotInput{legform.FirstSlot: validLeg()},
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !c.FormOpen() {
		t.Fatalf("form should stay open")
	}
	if slots := c.Slots(); slots[0].Input != validLeg() {
		t.Fatalf("form values lost: %+v", slots[0].Input)
	}
	if len(c.Visible()) != 0 {
		t.Fatalf("cache changed on failure")
	}
	if p := c.Phase(RequestKey{Kind: KindCreate}); p != Failed {
		t.Fatalf("phase = %s, want failed", p)
	}
}

func TestSubmitDuplicateIDLeavesStore(t *testing.T) {
	svc := &fakeService{groups: map[operation.GroupKey][]operation.Operation{
		"2024-03-15": {op(1, "2024-03-15", t1)},
	}}
	c := New(svc)
	if err := c.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	// the fake hands out id 1 again
	c.OpenNewOperationForm()
	err := c.Submit(context.Background(), FormValues{
		Underlying: "QQQ",
		Legs:       map[int]legform.SlotInput{legform.FirstSlot: validLeg()},
	})
	if err == nil {
		t.Fatalf("expected duplicate id error")
	}
	got, _ := c.Lookup(1)
	if got.Underlying != "SPY" {
		t.Fatalf("cached operation replaced: %+v", got)
	}
	if len(c.Visible()) != 1 {
		t.Fatalf("visible = %v", ids(c.Visible()))
	}
}

func TestFetchFailureKeepsCache(t *testing.T) {
	svc := &fakeService{groups: scenarioGroups()}
	c := New(svc)
	if err := c.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}

	svc.listErr = &remote.TransportError{Op: "list", Err: errors.New("connection refused")}
	err := c.FetchAll(context.Background())
	if !errors.Is(err, ErrLoadFailed) {
		t.Fatalf("err = %v, want ErrLoadFailed", err)
	}
	if len(c.Visible()) != 3 {
		t.Fatalf("cache changed after failed fetch")
	}
}

func TestFormCommands(t *testing.T) {
	c := New(&fakeService{})
	if _, err := c.AddLeg(); !errors.Is(err, ErrFormClosed) {
		t.Fatalf("AddLeg on closed form = %v", err)
	}
	c.OpenNewOperationForm()
	if err := c.RemoveLeg(legform.FirstSlot); !errors.Is(err, legform.ErrInvalidOperation) {
		t.Fatalf("RemoveLeg(first) = %v", err)
	}
	seq, _ := c.AddLeg()
	if err := c.RemoveLeg(seq); err != nil {
		t.Fatalf("RemoveLeg: %v", err)
	}
	if len(c.Slots()) != 1 {
		t.Fatalf("slots = %+v", c.Slots())
	}
	c.CloseForm()
	if c.FormOpen() {
		t.Fatalf("form still open")
	}
}

func TestPhaseDefaultsIdle(t *testing.T) {
	c := New(&fakeService{})
	if p := c.Phase(RequestKey{Kind: KindDelete, ID: 9}); p != Idle {
		t.Fatalf("phase = %s, want idle", p)
	}
	if len(c.Pending()) != 0 {
		t.Fatalf("pending = %v", c.Pending())
	}
}
