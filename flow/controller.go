package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ruteri/vc-storage-client/interfaces"
	"go.uber.org/atomic"
)

// ErrSuperseded is returned by a run whose result arrived after a tab switch
// or shutdown made it stale. The result has been discarded.
var ErrSuperseded = errors.New("run superseded")

// Tab names one of the four flows of a session.
type Tab string

const (
	TabUpload   Tab = "upload"
	TabView     Tab = "view"
	TabCreateVC Tab = "createvc"
	TabViewVC   Tab = "viewvc"
)

// Tabs lists the tabs in display order.
var Tabs = []Tab{TabUpload, TabView, TabCreateVC, TabViewVC}

// ParseTab validates a tab name.
func ParseTab(s string) (Tab, error) {
	for _, tab := range Tabs {
		if string(tab) == s {
			return tab, nil
		}
	}
	return "", &interfaces.ValidationError{Field: "tab", Message: fmt.Sprintf("unknown tab %q", s)}
}

// Phase is the outcome of the latest run of a tab.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for _, candidate := range []Phase{PhaseIdle, PhaseLoading, PhaseSucceeded, PhaseFailed} {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// State is the result of the latest run of one tab.
// At most one of Err and the result fields is set.
type State struct {
	Tab   Tab
	Phase Phase

	Upload *interfaces.UploadResult
	VC     *interfaces.AccessibleVC
	File   *interfaces.RetrievedFile
	Err    error
}

// Controller drives the flows of a single interactive session.
//
// Only one run may be in flight per controller. Selecting a tab cancels that
// run and clears the error and the displayed file. The controller owns the
// handle of the displayed file and releases it whenever the file is replaced
// or cleared.
type Controller struct {
	orchestrator *Orchestrator
	handles      interfaces.HandleStore
	log          *slog.Logger

	busy atomic.Bool

	mu         sync.Mutex
	selected   Tab
	states     map[Tab]*State
	displayed  *interfaces.RetrievedFile
	cancel     context.CancelFunc
	generation uint64
}

// NewController creates a controller with the upload tab selected.
// handles must be the store the file manager client allocates into.
func NewController(orchestrator *Orchestrator, handles interfaces.HandleStore, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}

	c := &Controller{
		orchestrator: orchestrator,
		handles:      handles,
		log:          log,
		selected:     TabUpload,
		states:       make(map[Tab]*State, len(Tabs)),
	}
	for _, tab := range Tabs {
		c.states[tab] = &State{Tab: tab}
	}
	return c
}

// Busy reports whether a run is in flight.
func (c *Controller) Busy() bool {
	return c.busy.Load()
}

// Selected returns the selected tab.
func (c *Controller) Selected() Tab {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// State returns a copy of the selected tab's state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.states[c.selected]
}

// DisplayedFile returns the file currently on display, or nil.
func (c *Controller) DisplayedFile() *interfaces.RetrievedFile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.displayed
}

// Select switches to tab, cancelling any in-flight run and clearing errors and
// the displayed file. Upload and VC results are kept.
func (c *Controller) Select(tab Tab) (State, error) {
	if _, err := ParseTab(string(tab)); err != nil {
		return State{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.supersedeLocked()
	c.selectLocked(tab)

	c.log.Debug("Selected tab", slog.String("tab", string(tab)))
	return *c.states[tab], nil
}

func (c *Controller) selectLocked(tab Tab) {
	c.selected = tab
	for _, st := range c.states {
		if st.Err != nil || st.Phase == PhaseLoading {
			st.Err = nil
			st.Phase = PhaseIdle
		}
	}
	c.clearDisplayedLocked()
}

// Close cancels any in-flight run and releases the displayed file.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.supersedeLocked()
	c.clearDisplayedLocked()
}

// Upload runs the upload flow.
func (c *Controller) Upload(ctx context.Context, req interfaces.UploadRequest) (State, error) {
	return c.run(ctx, TabUpload, func(ctx context.Context, st *State) (*interfaces.RetrievedFile, error) {
		result, err := c.orchestrator.Upload(ctx, req)
		st.Upload = result
		return nil, err
	})
}

// ViewAsIssuer runs the issuer view flow.
func (c *Controller) ViewAsIssuer(ctx context.Context, cid interfaces.CID, issuer interfaces.DID) (State, error) {
	return c.run(ctx, TabView, func(ctx context.Context, _ *State) (*interfaces.RetrievedFile, error) {
		return c.orchestrator.ViewAsIssuer(ctx, cid, issuer)
	})
}

// CreateAccessibleVC runs the VC-mint flow.
func (c *Controller) CreateAccessibleVC(ctx context.Context, req interfaces.AccessibleVCRequest) (State, error) {
	return c.run(ctx, TabCreateVC, func(ctx context.Context, st *State) (*interfaces.RetrievedFile, error) {
		vc, err := c.orchestrator.CreateAccessibleVC(ctx, req)
		st.VC = vc
		return nil, err
	})
}

// ViewByCredential runs the view-with-VC flow.
func (c *Controller) ViewByCredential(ctx context.Context, req ViewByCredentialRequest) (State, error) {
	return c.run(ctx, TabViewVC, func(ctx context.Context, _ *State) (*interfaces.RetrievedFile, error) {
		return c.orchestrator.ViewByCredential(ctx, req)
	})
}

type runFunc func(ctx context.Context, result *State) (*interfaces.RetrievedFile, error)

func (c *Controller) run(ctx context.Context, tab Tab, fn runFunc) (State, error) {
	if !c.busy.CompareAndSwap(false, true) {
		return State{}, interfaces.ErrBusy
	}
	defer c.busy.Store(false)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	if c.selected != tab {
		c.selectLocked(tab)
	}
	c.generation++
	generation := c.generation
	c.cancel = cancel
	st := c.states[tab]
	st.Phase = PhaseLoading
	st.Err = nil
	c.mu.Unlock()

	result := State{Tab: tab}
	file, err := fn(runCtx, &result)

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		if file != nil {
			c.release(file.Handle)
		}
		c.log.Debug("Discarded superseded result", slog.String("tab", string(tab)))
		return State{}, ErrSuperseded
	}
	c.cancel = nil

	if err != nil {
		if st.File != nil {
			c.clearDisplayedLocked()
		}
		*st = State{Tab: tab, Phase: PhaseFailed, Err: err}
		return *st, err
	}

	result.Phase = PhaseSucceeded
	if file != nil {
		c.clearDisplayedLocked()
		c.displayed = file
		result.File = file
	}
	*st = result
	return *st, nil
}

// supersedeLocked cancels the in-flight run and makes its result stale.
func (c *Controller) supersedeLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.generation++
}

// clearDisplayedLocked releases the displayed file and drops every reference to it.
func (c *Controller) clearDisplayedLocked() {
	if c.displayed == nil {
		return
	}
	for _, st := range c.states {
		if st.File == c.displayed {
			st.File = nil
			if st.Phase == PhaseSucceeded {
				st.Phase = PhaseIdle
			}
		}
	}
	c.release(c.displayed.Handle)
	c.displayed = nil
}

func (c *Controller) release(handle string) {
	if handle == "" || c.handles == nil {
		return
	}
	if !c.handles.Release(handle) {
		c.log.Warn("Released unknown handle", slog.String("handle", handle))
	}
}
