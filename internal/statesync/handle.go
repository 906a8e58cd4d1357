package statesync

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/hongminglow/medtour-be/internal/models"
	"github.com/hongminglow/medtour-be/internal/schedule"
)

// Handle is one open document. Its methods are safe for concurrent use.
type Handle[T any] struct {
	s        *Synchronizer
	key      models.StateKey
	cacheKey string
	bg       context.Context

	uploadMu sync.Mutex
	sentSeq  uint64

	mu      sync.Mutex
	value   T
	loading bool
	ready   chan struct{}
	closed  bool
	edits   uint64
	rev     uint64 // bumped on every change to value

	// write-behind slot of depth one
	pending json.RawMessage
	seq     uint64
	gen     uint64
	task    schedule.Task
}

// Open seeds a Handle from the local cache (or def) and, for a signed-in
// subject, starts the remote read in the background. ctx bounds that read;
// uploads outlive it.
func Open[T any](ctx context.Context, s *Synchronizer, scopeID, stateKey string, def T) (*Handle[T], error) {
	scopeID = strings.TrimSpace(scopeID)
	stateKey = strings.TrimSpace(stateKey)
	if scopeID == "" || stateKey == "" {
		return nil, ErrInvalidKey
	}
	h := &Handle[T]{
		s:        s,
		key:      models.StateKey{SubjectID: s.subject(), ScopeID: scopeID, StateKey: stateKey},
		cacheKey: s.CacheKey(scopeID, stateKey),
		bg:       context.WithoutCancel(ctx),
		value:    def,
		ready:    make(chan struct{}),
	}
	if raw, ok := s.local.Get(h.cacheKey); ok {
		var cached T
		if err := json.Unmarshal([]byte(raw), &cached); err != nil {
			log.Printf("statesync: ignoring unreadable cache entry %q: %v", h.cacheKey, err)
		} else {
			h.value = cached
		}
	}

	if h.key.SubjectID == "" || s.remote == nil {
		close(h.ready)
		return h, nil
	}
	h.loading = true
	go h.load(ctx, h.edits)
	return h, nil
}

// Key returns the composite key the handle addresses.
func (h *Handle[T]) Key() models.StateKey {
	return h.key
}

// Value returns the current in-memory value. Reference types inside T are
// shared with the handle; treat them as read-only and write through Update.
func (h *Handle[T]) Value() T {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.value
}

// Loading reports whether the open-time remote read is still outstanding.
func (h *Handle[T]) Loading() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loading
}

// Ready is closed once Loading has turned false.
func (h *Handle[T]) Ready() <-chan struct{} {
	return h.ready
}

// Set replaces the value.
func (h *Handle[T]) Set(v T) error {
	return h.Update(func(T) T { return v })
}

// Update replaces the value with fn(previous). The local cache is written
// before Update returns; the upload is (re)scheduled for one debounce window
// from now. Writes after Close are ignored.
//
// fn runs without the handle's lock held and may call other Handle methods.
// If the value changes while fn runs, fn is called again with the newer value.
func (h *Handle[T]) Update(fn func(prev T) T) error {
	for {
		h.mu.Lock()
		if h.closed {
			h.mu.Unlock()
			return nil
		}
		prev, rev := h.value, h.rev
		h.mu.Unlock()

		next := fn(prev)
		raw, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("statesync: encode %s/%s: %w", h.key.ScopeID, h.key.StateKey, err)
		}

		h.mu.Lock()
		if h.closed {
			h.mu.Unlock()
			return nil
		}
		if h.rev != rev {
			h.mu.Unlock()
			continue
		}
		h.commitLocked(next, raw)
		h.mu.Unlock()
		return nil
	}
}

// commitLocked stores next and writes it through to the cache. The cache
// write stays under the lock so the cache never ends up older than value.
func (h *Handle[T]) commitLocked(next T, raw json.RawMessage) {
	h.value = next
	h.rev++
	h.edits++
	h.s.local.Set(h.cacheKey, string(raw))

	if h.key.SubjectID == "" || h.s.remote == nil {
		return
	}
	h.seq++
	h.pending = raw
	h.rescheduleLocked()
}

// Flush uploads the pending value immediately instead of waiting for the
// debounce window. It is a no-op when nothing is pending.
func (h *Handle[T]) Flush(ctx context.Context) error {
	h.mu.Lock()
	payload, seq, ok := h.takePendingLocked()
	h.mu.Unlock()
	if !ok {
		return nil
	}
	return h.upload(ctx, payload, seq)
}

// Close cancels any scheduled upload and detaches the handle: a pending
// value that was not flushed is never sent, and a late remote read is not
// applied. Uploads already in flight complete.
func (h *Handle[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.takePendingLocked()
}

func (h *Handle[T]) rescheduleLocked() {
	if h.task != nil {
		h.task.Stop()
	}
	h.gen++
	gen := h.gen
	h.task = h.s.sched.AfterFunc(h.s.debounce, func() { h.fire(gen) })
}

// takePendingLocked empties the write-behind slot and cancels its timer.
func (h *Handle[T]) takePendingLocked() (json.RawMessage, uint64, bool) {
	if h.task != nil {
		h.task.Stop()
		h.task = nil
	}
	h.gen++
	if h.pending == nil {
		return nil, 0, false
	}
	payload := h.pending
	h.pending = nil
	return payload, h.seq, true
}

func (h *Handle[T]) fire(gen uint64) {
	h.mu.Lock()
	if h.closed || gen != h.gen || h.pending == nil {
		h.mu.Unlock()
		return
	}
	payload, seq := h.pending, h.seq
	h.pending = nil
	h.task = nil
	h.mu.Unlock()

	ctx := h.bg
	if h.s.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.s.writeTimeout)
		defer cancel()
	}
	_ = h.upload(ctx, payload, seq)
}

// upload sends payload unless a newer one already went out.
func (h *Handle[T]) upload(ctx context.Context, payload json.RawMessage, seq uint64) error {
	h.uploadMu.Lock()
	defer h.uploadMu.Unlock()
	if seq <= h.sentSeq {
		return nil
	}
	if err := h.s.remote.Upsert(ctx, h.key, payload); err != nil {
		h.s.reportWriteError(h.key, err)
		return err
	}
	h.sentSeq = seq
	return nil
}

func (h *Handle[T]) load(ctx context.Context, startEdits uint64) {
	if h.s.readTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.s.readTimeout)
		defer cancel()
	}
	raw, found, err := h.s.remote.Read(ctx, h.key)
	if err != nil {
		log.Printf("statesync: read %s/%s failed, using local value: %v", h.key.ScopeID, h.key.StateKey, err)
		found = false
	}

	var remote T
	if found {
		if err := json.Unmarshal(raw, &remote); err != nil {
			log.Printf("statesync: ignoring unreadable remote value %s/%s: %v", h.key.ScopeID, h.key.StateKey, err)
			found = false
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	switch {
	case !found, h.closed:
	case h.s.guardEdits && h.edits != startEdits:
		log.Printf("statesync: discarding remote value %s/%s superseded by local edits", h.key.ScopeID, h.key.StateKey)
	default:
		h.value = remote
		h.rev++
		h.s.local.Set(h.cacheKey, string(raw))
	}
	h.loading = false
	close(h.ready)
}
