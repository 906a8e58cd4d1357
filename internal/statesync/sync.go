// Package statesync mirrors a JSON-serializable value between memory, a
// synchronous local cache and a remote record.
//
// Local writes are immediate. Remote writes are debounced on the trailing
// edge: every write cancels the pending upload and reschedules it, so only
// the last value of a burst leaves the process. On open, a value found
// remotely replaces whatever the cache held.
package statesync

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hongminglow/medtour-be/internal/cache"
	"github.com/hongminglow/medtour-be/internal/models"
	"github.com/hongminglow/medtour-be/internal/schedule"
)

// DefaultDebounce is the quiet period between the last write and the upload.
const DefaultDebounce = 500 * time.Millisecond

const (
	defaultCachePrefix  = "planner"
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 10 * time.Second
)

// ErrInvalidKey is returned by Open when the scope or state key is blank.
var ErrInvalidKey = errors.New("statesync: scope id and state key are required")

// SubjectFunc returns the signed-in subject id, or "" when anonymous.
type SubjectFunc func() string

// StaticSubject returns a SubjectFunc that always reports id.
func StaticSubject(id string) SubjectFunc {
	return func() string { return id }
}

// WriteErrorFunc receives upload failures. Failed uploads are not retried.
type WriteErrorFunc func(key models.StateKey, err error)

// Synchronizer holds the collaborators shared by every Handle it opens.
type Synchronizer struct {
	remote       Remote
	local        cache.Cache
	subject      SubjectFunc
	sched        schedule.Scheduler
	debounce     time.Duration
	prefix       string
	readTimeout  time.Duration
	writeTimeout time.Duration
	onWriteError WriteErrorFunc
	guardEdits   bool
}

// Option customizes a Synchronizer.
type Option func(*Synchronizer)

// WithDebounce overrides the upload quiet period.
func WithDebounce(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithScheduler replaces the runtime timer.
func WithScheduler(sched schedule.Scheduler) Option {
	return func(s *Synchronizer) {
		if sched != nil {
			s.sched = sched
		}
	}
}

// WithCachePrefix changes the namespace of derived cache keys.
func WithCachePrefix(prefix string) Option {
	return func(s *Synchronizer) {
		if p := strings.TrimSpace(prefix); p != "" {
			s.prefix = p
		}
	}
}

// WithReadTimeout bounds the remote read issued by Open. Zero disables it.
func WithReadTimeout(d time.Duration) Option {
	return func(s *Synchronizer) { s.readTimeout = d }
}

// WithWriteTimeout bounds each remote upload. Zero disables it.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Synchronizer) { s.writeTimeout = d }
}

// WithWriteErrorHandler registers fn for upload failures.
func WithWriteErrorHandler(fn WriteErrorFunc) Option {
	return func(s *Synchronizer) { s.onWriteError = fn }
}

// WithLocalEditGuard discards the value returned by the open-time remote read
// when the handle was written to while that read was in flight. Without it
// the remote value always wins on arrival.
func WithLocalEditGuard() Option {
	return func(s *Synchronizer) { s.guardEdits = true }
}

// New builds a Synchronizer. A nil subject is treated as anonymous.
func New(remote Remote, local cache.Cache, subject SubjectFunc, opts ...Option) *Synchronizer {
	if subject == nil {
		subject = StaticSubject("")
	}
	s := &Synchronizer{
		remote:       remote,
		local:        local,
		subject:      subject,
		sched:        schedule.Real{},
		debounce:     DefaultDebounce,
		prefix:       defaultCachePrefix,
		readTimeout:  defaultReadTimeout,
		writeTimeout: defaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CacheKey derives the local cache key for a document.
func (s *Synchronizer) CacheKey(scopeID, stateKey string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, scopeID, stateKey)
}

func (s *Synchronizer) reportWriteError(key models.StateKey, err error) {
	log.Printf("statesync: upsert %s/%s failed: %v", key.ScopeID, key.StateKey, err)
	if s.onWriteError != nil {
		s.onWriteError(key, err)
	}
}
