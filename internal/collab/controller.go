// Package collab holds the synchronization controller: the one owner of the
// in-memory trip document. It decides where each mutation is persisted
// (local store, remote bin, or both), polls the remote bin while
// collaborating, and replaces the local document when the remote one has
// diverged.
package collab

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pkordes/travel-planner/internal/domain"
)

// Mode is the controller's persistence mode.
type Mode int

const (
	// ModeLocal persists every mutation to the local store only.
	ModeLocal Mode = iota
	// ModeCollaboration additionally mirrors mutations to a remote bin and
	// polls it for changes made by other clients.
	ModeCollaboration
)

// String returns "local" or "collaboration".
func (m Mode) String() string {
	if m == ModeCollaboration {
		return "collaboration"
	}
	return "local"
}

// DefaultPollInterval is how often a collaborating controller reconciles.
const DefaultPollInterval = 15 * time.Second

// RemoteChangeNotice is the transient message attached to every Change.
const RemoteChangeNotice = "Trip data was updated by another collaborator."

// LocalStore is the local persistence the controller writes through.
// *storage.LocalStore satisfies it.
type LocalStore interface {
	Save(ctx context.Context, doc domain.Document) error
	Load(ctx context.Context) (domain.Document, bool)
	ShareID(ctx context.Context) (string, bool)
	RememberShareID(ctx context.Context, id string) error
	ForgetShareID(ctx context.Context) error
}

// Remote is the shared bin store. *remote.Client satisfies it.
type Remote interface {
	Create(ctx context.Context, doc domain.Document) (string, error)
	Fetch(ctx context.Context, shareID string) (domain.Document, error)
	Update(ctx context.Context, shareID string, doc domain.Document) error
}

// Change is delivered to OnRemoteChange listeners after a reconciliation
// replaced the local document.
type Change struct {
	Document domain.Document
	Notice   string
}

// Options tunes a Controller. Zero values pick defaults.
type Options struct {
	PollInterval time.Duration
	// WriteTimeout bounds each background remote update.
	WriteTimeout time.Duration
	Logger       *slog.Logger
}

// Controller owns the trip document. All methods are safe for concurrent
// use; the document itself is only ever handed out as a copy.
type Controller struct {
	local  LocalStore
	remote Remote
	log    *slog.Logger

	pollInterval time.Duration
	writeTimeout time.Duration

	mu      sync.Mutex
	doc     domain.Document
	mode    Mode
	shareID string
	// session increments on every mode change. Background work captures it
	// and drops its result when the session has moved on.
	session uint64
	// rev increments on every local mutation. A reconciliation whose fetch
	// started before a mutation is dropped; the mutation's own update is
	// already on its way to the remote.
	rev       uint64
	stopPoll  context.CancelFunc
	listeners map[int]func(Change)
	nextLsnr  int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs a Controller in local mode holding an empty document. Call
// LoadInitialDocument before use.
func New(local LocalStore, remote Remote, opts Options) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		local:        local,
		remote:       remote,
		log:          opts.Logger,
		pollInterval: opts.PollInterval,
		writeTimeout: opts.WriteTimeout,
		doc:          domain.NewDocument(),
		listeners:    make(map[int]func(Change)),
		ctx:          ctx,
		cancel:       cancel,
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.pollInterval <= 0 {
		c.pollInterval = DefaultPollInterval
	}
	if c.writeTimeout <= 0 {
		c.writeTimeout = 10 * time.Second
	}
	return c
}

// LoadInitialDocument loads the local document (or starts an empty one) and
// tries to resume collaboration. launchShareID, when non-empty, takes
// precedence over the remembered share id.
//
// The returned document and mode are always usable. A non-nil error means
// joining a shared trip failed and the controller fell back to local mode;
// for a launch share id the caller should show it to the user.
func (c *Controller) LoadInitialDocument(ctx context.Context, launchShareID string) (domain.Document, Mode, error) {
	doc, ok := c.local.Load(ctx)
	if !ok {
		doc = domain.NewDocument()
	}

	c.mu.Lock()
	c.doc = doc
	c.mu.Unlock()

	shareID, fromLaunch := launchShareID, launchShareID != ""
	if !fromLaunch {
		remembered, ok := c.local.ShareID(ctx)
		if !ok {
			return doc, ModeLocal, nil
		}
		shareID = remembered
	}

	err := c.Join(ctx, shareID)
	switch {
	case err == nil:
	case fromLaunch:
		c.log.WarnContext(ctx, "joining shared trip failed", "share_id", shareID, "error", err)
	case errors.Is(err, domain.ErrRemoteNotFound):
		c.log.WarnContext(ctx, "remembered shared trip no longer exists", "share_id", shareID)
		_ = c.local.ForgetShareID(ctx)
	default:
		c.log.WarnContext(ctx, "shared trip unreachable, working locally", "share_id", shareID, "error", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.Clone(), c.mode, err
}

// Document returns a copy of the current document.
func (c *Controller) Document() domain.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.Clone()
}

// Mode returns the current persistence mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// ShareID returns the share id of the current collaboration session, or ""
// in local mode.
func (c *Controller) ShareID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shareID
}

// Mutate applies m and persists the result. The local store is always
// written, in collaboration mode as a cache of last resort. While
// collaborating exactly one remote update is dispatched in the background;
// its failure is logged and never reaches the caller.
//
// The returned error is non-nil only when m fails validation, in which case
// nothing changed.
func (c *Controller) Mutate(ctx context.Context, m domain.Mutation) (domain.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.doc.Clone()
	if err := m.Apply(&next); err != nil {
		return c.doc.Clone(), fmt.Errorf("collab.Controller.Mutate: %w", err)
	}
	c.doc = next
	c.rev++

	// Save logs its own failure; the in-memory document stays authoritative.
	_ = c.local.Save(ctx, next)

	if c.mode == ModeCollaboration {
		c.pushLocked(c.shareID, next.Clone())
	}
	return next.Clone(), nil
}

// StartCollaboration publishes the current document as a new bin and enters
// collaboration mode. If already collaborating it returns the current share
// id. On failure the controller stays in local mode.
func (c *Controller) StartCollaboration(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.mode == ModeCollaboration {
		id := c.shareID
		c.mu.Unlock()
		return id, nil
	}
	snapshot := c.doc.Clone()
	session := c.session
	c.mu.Unlock()

	id, err := c.remote.Create(ctx, snapshot)
	if err != nil {
		return "", fmt.Errorf("collab.Controller.StartCollaboration: %w", err)
	}

	c.mu.Lock()
	if c.session != session {
		// Someone else joined or started while we were creating.
		current := c.shareID
		c.mu.Unlock()
		c.log.InfoContext(ctx, "discarding created bin, session changed meanwhile", "share_id", id)
		if current == "" {
			return "", fmt.Errorf("collab.Controller.StartCollaboration: session changed during create")
		}
		return current, nil
	}
	c.enterLocked(ctx, id)
	if domain.Equal(c.doc, snapshot) {
		c.reconcileAsyncLocked(id, c.session, c.rev)
	} else {
		// A mutation landed while the bin was being created; publish it
		// rather than let the first reconciliation roll it back.
		c.pushLocked(id, c.doc.Clone())
	}
	c.mu.Unlock()

	c.log.InfoContext(ctx, "collaboration started", "share_id", id)
	return id, nil
}

// Join fetches bin shareID, replaces the local document with it, and enters
// collaboration mode. On failure the controller's mode is left unchanged.
// Local edits made while the fetch is in flight are replaced too; they were
// never pushed, and a warning is logged.
func (c *Controller) Join(ctx context.Context, shareID string) error {
	if shareID == "" {
		return fmt.Errorf("collab.Controller.Join: %w: share id is required", domain.ErrValidation)
	}

	c.mu.Lock()
	session, rev := c.session, c.rev
	c.mu.Unlock()

	remoteDoc, err := c.remote.Fetch(ctx, shareID)
	if err != nil {
		return fmt.Errorf("collab.Controller.Join: %w", err)
	}

	c.mu.Lock()
	if c.session != session {
		c.mu.Unlock()
		return fmt.Errorf("collab.Controller.Join: session changed during fetch")
	}
	if c.rev != rev {
		c.log.WarnContext(ctx, "local edits made during join replaced by shared trip",
			"share_id", shareID, "edits", c.rev-rev)
	}
	changed := !domain.Equal(c.doc, remoteDoc)
	c.doc.ReplaceAll(remoteDoc)
	_ = c.local.Save(ctx, c.doc)
	c.enterLocked(ctx, shareID)
	change, listeners := c.changeLocked(changed)
	c.mu.Unlock()

	c.log.InfoContext(ctx, "joined shared trip", "share_id", shareID, "changed", changed)
	notify(listeners, change)
	return nil
}

// StopCollaboration leaves collaboration mode: polling stops, the remembered
// share id is cleared, and later mutations go to the local store only.
// Results of remote calls still in flight are discarded.
func (c *Controller) StopCollaboration(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeCollaboration {
		return
	}
	id := c.shareID
	c.stopPollingLocked()
	c.mode = ModeLocal
	c.shareID = ""
	c.session++

	_ = c.local.ForgetShareID(ctx)
	_ = c.local.Save(ctx, c.doc)
	c.log.InfoContext(ctx, "collaboration stopped", "share_id", id)
}

// Reconcile runs one reconciliation step now. It is a no-op in local mode.
// Fetch failures are logged and count as "no change"; the returned bool
// reports whether the local document was replaced.
func (c *Controller) Reconcile(ctx context.Context) bool {
	c.mu.Lock()
	if c.mode != ModeCollaboration {
		c.mu.Unlock()
		return false
	}
	id, session, rev := c.shareID, c.session, c.rev
	c.mu.Unlock()

	return c.reconcile(ctx, id, session, rev)
}

// OnRemoteChange registers fn to run after every reconciliation that
// replaced the document. fn runs outside the controller's lock and may call
// back into the controller. The returned func unregisters fn.
func (c *Controller) OnRemoteChange(fn func(Change)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextLsnr
	c.nextLsnr++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Session returns the current session counter. Exposed for tests and logs.
func (c *Controller) Session() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Close stops polling, abandons pending reconciliations, and waits for
// in-flight remote updates to finish.
// The controller must not be used afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	c.stopPollingLocked()
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

// reconcile fetches bin id and, if neither the session nor the local document
// moved on meanwhile and the snapshot differs, replaces the document and
// notifies listeners. Overlapping calls are tolerated: each applies under the
// lock, so the one that completes last wins.
func (c *Controller) reconcile(ctx context.Context, id string, session, rev uint64) bool {
	remoteDoc, err := c.remote.Fetch(ctx, id)
	if err != nil {
		c.log.WarnContext(ctx, "reconciliation fetch failed", "share_id", id, "error", err)
		return false
	}

	c.mu.Lock()
	if c.mode != ModeCollaboration || c.session != session || c.shareID != id || c.rev != rev {
		c.mu.Unlock()
		c.log.DebugContext(ctx, "discarding stale reconciliation result", "share_id", id)
		return false
	}
	if domain.Equal(c.doc, remoteDoc) {
		c.mu.Unlock()
		return false
	}
	c.doc.ReplaceAll(remoteDoc)
	_ = c.local.Save(ctx, c.doc)
	change, listeners := c.changeLocked(true)
	c.mu.Unlock()

	c.log.InfoContext(ctx, "remote changes applied", "share_id", id)
	notify(listeners, change)
	return true
}

// enterLocked switches to collaboration mode on id, remembers it, and starts
// a fresh polling task. Caller holds c.mu.
func (c *Controller) enterLocked(ctx context.Context, id string) {
	c.stopPollingLocked()
	c.mode = ModeCollaboration
	c.shareID = id
	c.session++
	_ = c.local.RememberShareID(ctx, id)
	c.startPollingLocked(id, c.session)
}

// startPollingLocked launches the polling goroutine for one session. Any
// previous task is stopped first, so at most one is ever active.
func (c *Controller) startPollingLocked(id string, session uint64) {
	c.stopPollingLocked()
	ctx, cancel := context.WithCancel(c.ctx)
	c.stopPoll = cancel

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.mu.Lock()
				rev := c.rev
				c.mu.Unlock()
				c.reconcile(ctx, id, session, rev)
			}
		}
	}()
}

func (c *Controller) stopPollingLocked() {
	if c.stopPoll != nil {
		c.stopPoll()
		c.stopPoll = nil
	}
}

// reconcileAsyncLocked runs one reconciliation in the background, used right
// after entering collaboration so the session does not wait for the first
// tick. Caller holds c.mu.
func (c *Controller) reconcileAsyncLocked(id string, session, rev uint64) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(c.ctx, c.writeTimeout)
		defer cancel()
		c.reconcile(ctx, id, session, rev)
	}()
}

// pushLocked dispatches a fire-and-forget remote update. Caller holds c.mu.
// Updates are not ordered with respect to each other: two mutations faster
// than a round trip may land out of order.
func (c *Controller) pushLocked(id string, doc domain.Document) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.writeTimeout)
		defer cancel()
		if err := c.remote.Update(ctx, id, doc); err != nil {
			c.log.WarnContext(ctx, "remote update failed", "share_id", id, "error", err)
		}
	}()
}

// changeLocked snapshots the document and listeners for a notification, or
// returns no listeners when nothing changed. Caller holds c.mu.
func (c *Controller) changeLocked(changed bool) (Change, []func(Change)) {
	if !changed {
		return Change{}, nil
	}
	listeners := make([]func(Change), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	return Change{Document: c.doc.Clone(), Notice: RemoteChangeNotice}, listeners
}

func notify(listeners []func(Change), change Change) {
	for _, fn := range listeners {
		fn(change)
	}
}
