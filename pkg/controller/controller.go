// Package controller keeps the cached journal consistent with the journal
// server and exposes the queries and commands a user interface drives.
//
// Every remote call runs outside the controller lock. Its result is applied,
// the tab selection reconciled and the view recomputed in one critical
// section, so a render never observes a half-applied change. Requests that
// race each other are not coordinated: whichever resolves last applies its
// effect to the cache as it is at that time.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"tableflip.dev/tradelog/pkg/cache"
	"tableflip.dev/tradelog/pkg/legform"
	"tableflip.dev/tradelog/pkg/operation"
	"tableflip.dev/tradelog/pkg/remote"
	"tableflip.dev/tradelog/pkg/selection"
	"tableflip.dev/tradelog/pkg/viewmodel"
)

var (
	// ErrLoadFailed wraps failures of FetchAll.
	ErrLoadFailed = errors.New("controller: load failed")
	// ErrFormClosed is returned by form commands while no form is open.
	ErrFormClosed = errors.New("controller: no operation form open")
)

// View is everything a renderer needs after a change.
type View struct {
	Selection  selection.Selection
	Tabs       []viewmodel.Tab
	Operations []operation.Operation
}

// Renderer receives the recomputed view after every applied change.
type Renderer interface {
	Render(View)
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(View)

func (f RenderFunc) Render(v View) { f(v) }

// Confirmer asks the user a yes/no question and blocks until answered.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// AlwaysConfirm answers yes without asking, for callers that already asked.
var AlwaysConfirm = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// FormValues is the raw content of the new-operation form. Legs maps slot
// sequence numbers to their raw values.
type FormValues struct {
	Underlying    string
	EnteredAt     time.Time
	Justification string
	Legs          map[int]legform.SlotInput
	Images        []operation.Blob
}

// Option customises a Controller.
type Option func(*Controller)

// WithConfirmer sets the delete confirmation gate.
func WithConfirmer(c Confirmer) Option {
	return func(ctl *Controller) { ctl.confirm = c }
}

// WithRenderer sets the renderer notified after each applied change.
func WithRenderer(r Renderer) Option {
	return func(ctl *Controller) { ctl.renderer = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(ctl *Controller) {
		if l != nil {
			ctl.log = l
		}
	}
}

// WithClock overrides the clock used to stamp new operations.
func WithClock(now func() time.Time) Option {
	return func(ctl *Controller) {
		if now != nil {
			ctl.now = now
		}
	}
}

// Controller owns the operation cache, the tab selection and the leg form.
type Controller struct {
	remote   remote.Service
	confirm  Confirmer
	renderer Renderer
	log      *zap.Logger
	now      func() time.Time

	mu        sync.Mutex
	store     *cache.Store
	selection selection.Model
	form      legform.Builder
	phases    map[RequestKey]Phase
}

// New creates a controller backed by svc. Without a Confirmer every delete is
// declined.
func New(svc remote.Service, opts ...Option) *Controller {
	c := &Controller{
		remote: svc,
		log:    zap.NewNop(),
		now:    time.Now,
		store:  cache.New(),
		phases: make(map[RequestKey]Phase),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchAll replaces the cache with the server's operations.
func (c *Controller) FetchAll(ctx context.Context) error {
	key := RequestKey{Kind: KindFetch}
	c.setPhase(key, Requesting)
	groups, err := c.remote.List(ctx)
	if err != nil {
		c.setPhase(key, Failed)
		c.log.Warn("fetch operations failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	c.mu.Lock()
	c.store.Load(groups)
	view := c.applyLocked()
	c.mu.Unlock()

	c.setPhase(key, Applied)
	c.log.Debug("operations loaded", zap.Int("operations", len(view.Operations)), zap.Int("tabs", len(view.Tabs)))
	c.render(view)
	return nil
}

// Submit validates the open form and creates the operation on the server.
// Nothing is sent when validation fails. The cache only changes once the
// server confirms; on any failure the form stays open with its values.
func (c *Controller) Submit(ctx context.Context, values FormValues) error {
	c.mu.Lock()
	draft, err := c.draftLocked(values)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	key := RequestKey{Kind: KindCreate}
	c.setPhase(key, Requesting)
	created, err := c.remote.Create(ctx, draft, values.Images)
	if err != nil {
		c.setPhase(key, Failed)
		c.log.Warn("create operation failed", zap.String("underlying", draft.Underlying), zap.Error(err))
		return err
	}

	c.mu.Lock()
	group, err := c.store.Insert(created)
	// The server holds the operation either way; resubmitting would
	// duplicate it.
	c.form.Close()
	if err != nil {
		c.mu.Unlock()
		c.setPhase(key, Failed)
		c.log.Error("created operation already cached", zap.Int64("id", created.ID), zap.Error(err))
		return err
	}
	view := c.applyLocked()
	c.mu.Unlock()

	c.setPhase(key, Applied)
	c.log.Debug("operation created", zap.Int64("id", created.ID), zap.String("group", string(group)))
	c.render(view)
	return nil
}

func (c *Controller) draftLocked(values FormValues) (operation.Draft, error) {
	if !c.form.IsOpen() {
		return operation.Draft{}, ErrFormClosed
	}
	verr := &operation.ValidationError{}
	for seq, input := range values.Legs {
		if err := c.form.Set(seq, input); err != nil {
			verr.Add(seq, "", "unknown leg")
		}
	}
	if strings.TrimSpace(values.Underlying) == "" {
		verr.Add(0, "underlying", "is required")
	}
	legs, err := c.form.ToLegs()
	if err != nil {
		var lerr *operation.ValidationError
		if !errors.As(err, &lerr) {
			return operation.Draft{}, err
		}
		verr.Issues = append(verr.Issues, lerr.Issues...)
	}
	if err := verr.OrNil(); err != nil {
		return operation.Draft{}, err
	}

	enteredAt := values.EnteredAt
	if enteredAt.IsZero() {
		enteredAt = c.now()
	}
	return operation.Draft{
		Underlying:    strings.ToUpper(strings.TrimSpace(values.Underlying)),
		EnteredAt:     enteredAt.UTC(),
		Justification: strings.TrimSpace(values.Justification),
		Legs:          legs,
	}, nil
}

// RequestDelete asks for confirmation and deletes the operation on the
// server. It reports whether the operation was deleted; a declined
// confirmation is not an error. An operation the server no longer has is
// dropped from the cache as if the delete had succeeded.
func (c *Controller) RequestDelete(ctx context.Context, id int64) (bool, error) {
	if c.confirm == nil {
		return false, nil
	}
	ok, err := c.confirm.Confirm(ctx, fmt.Sprintf("Delete operation %d?", id))
	if err != nil || !ok {
		return false, err
	}

	key := RequestKey{Kind: KindDelete, ID: id}
	c.setPhase(key, Requesting)
	if err := c.remote.Delete(ctx, id); err != nil {
		if !errors.Is(err, remote.ErrNotFound) {
			c.setPhase(key, Failed)
			c.log.Warn("delete operation failed", zap.Int64("id", id), zap.Error(err))
			return false, err
		}
		c.log.Info("operation already gone on server", zap.Int64("id", id))
	}

	c.mu.Lock()
	group, removed := c.store.Remove(id)
	view := c.applyLocked()
	c.mu.Unlock()

	c.setPhase(key, Applied)
	c.log.Debug("operation deleted", zap.Int64("id", id), zap.String("group", string(group)), zap.Bool("cached", removed))
	c.render(view)
	return true, nil
}

// SelectTab activates a tab. A tab that does not exist falls back to All.
func (c *Controller) SelectTab(sel selection.Selection) {
	c.mu.Lock()
	c.selection.Select(sel)
	view := c.applyLocked()
	c.mu.Unlock()
	c.render(view)
}

// applyLocked reconciles the selection against the cache and projects the
// view. Callers hold c.mu.
func (c *Controller) applyLocked() View {
	sel := c.selection.Reconcile(c.store)
	return View{
		Selection:  sel,
		Tabs:       viewmodel.Tabs(c.store, sel),
		Operations: viewmodel.Project(c.store, sel),
	}
}

// SetRenderer replaces the renderer. It must not be called from within a
// Render call.
func (c *Controller) SetRenderer(r Renderer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renderer = r
}

func (c *Controller) render(v View) {
	c.mu.Lock()
	r := c.renderer
	c.mu.Unlock()
	if r != nil {
		r.Render(v)
	}
}

// View returns the current view.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	sel := c.selection.Current()
	return View{
		Selection:  sel,
		Tabs:       viewmodel.Tabs(c.store, sel),
		Operations: viewmodel.Project(c.store, sel),
	}
}

// Tabs returns the tab strip.
func (c *Controller) Tabs() []viewmodel.Tab {
	return c.View().Tabs
}

// Visible returns the operations of the active tab, newest first.
func (c *Controller) Visible() []operation.Operation {
	return c.View().Operations
}

// Selection returns the active tab.
func (c *Controller) Selection() selection.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.Current()
}

// Lookup returns a cached operation by id.
func (c *Controller) Lookup(id int64) (operation.Operation, bool) {
	return c.store.Get(id)
}

// OpenNewOperationForm starts a new form with one empty leg.
func (c *Controller) OpenNewOperationForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Open()
}

// CloseForm discards the form.
func (c *Controller) CloseForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Close()
}

// FormOpen reports whether a form is in progress.
func (c *Controller) FormOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.IsOpen()
}

// AddLeg appends a leg to the open form and returns its sequence number.
func (c *Controller) AddLeg() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.form.IsOpen() {
		return 0, ErrFormClosed
	}
	return c.form.AddSlot(), nil
}

// RemoveLeg removes a leg from the open form. The first leg cannot be
// removed.
func (c *Controller) RemoveLeg(seq int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.form.IsOpen() {
		return ErrFormClosed
	}
	return c.form.RemoveSlot(seq)
}

// Slots returns the legs of the open form.
func (c *Controller) Slots() []legform.Slot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.Slots()
}
