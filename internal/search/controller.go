package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/moteur/internal/apperr"
	"github.com/MrSnakeDoc/moteur/internal/domain"
	"github.com/MrSnakeDoc/moteur/internal/logger"
)

// Fetcher produces listings for a query. *listing.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, query, credential string) ([]domain.Listing, error)
}

// Snapshot is a consistent copy of the controller state.
type Snapshot struct {
	Status      Status           `json:"status"`
	Query       string           `json:"query"`
	Results     []domain.Listing `json:"results"`
	Error       string           `json:"error,omitempty"`
	ErrorKind   string           `json:"error_kind,omitempty"`
	HasSearched bool             `json:"has_searched"`
	IsLoading   bool             `json:"is_loading"`
	RequestID   uint64           `json:"request_id"`
}

// IdleSnapshot is the state of a controller that has never been used.
func IdleSnapshot() Snapshot {
	return Snapshot{Status: StatusIdle, Results: []domain.Listing{}}
}

// Controller owns the search lifecycle of one user: query, results, loading
// flag, error and the has-searched flag.
//
// Every accepted submit gets a new request id. Only the completion carrying
// the latest id is applied; older fetches are cancelled and their results
// dropped.
type Controller struct {
	fetcher Fetcher
	logger  logger.Logger
	parent  context.Context
	now     func() time.Time

	mu           sync.Mutex
	status       Status
	query        string
	results      []domain.Listing
	errMsg       string
	errKind      apperr.Kind
	hasSearched  bool
	requestID    uint64
	cancel       context.CancelFunc
	changed      chan struct{}
	lastActivity time.Time
}

// NewController creates an idle controller. Fetches run under parent, so
// cancelling it aborts any request in flight.
func NewController(parent context.Context, f Fetcher, log logger.Logger) *Controller {
	c := &Controller{
		fetcher: f,
		logger:  log,
		parent:  parent,
		now:     time.Now,
		changed: make(chan struct{}),
	}
	c.lastActivity = c.now()
	return c
}

// Submit validates the input and, if valid, starts a fetch in the
// background. It returns the request id of the started fetch, or 0 when the
// submit was rejected by validation. The credential is checked first.
func (c *Controller) Submit(query, credential string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.query = query
	c.lastActivity = c.now()

	if strings.TrimSpace(credential) == "" {
		c.rejectLocked(MsgCredentialRequired)
		return 0
	}
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		c.rejectLocked(MsgQueryRequired)
		return 0
	}

	c.supersedeLocked()
	id := c.requestID

	ctx, cancel := context.WithCancel(c.parent)
	c.cancel = cancel
	c.status = StatusLoading
	c.results = nil
	c.errMsg = ""
	c.errKind = apperr.KindUnknown
	c.hasSearched = true
	c.notifyLocked()

	c.logger.Debug("search submitted",
		logger.Uint64("request_id", id),
		logger.String("query", trimmed))

	go c.run(ctx, id, trimmed, credential)
	return id
}

// rejectLocked moves to Error for a validation failure. An in-flight fetch
// is superseded so it cannot overwrite the error later.
func (c *Controller) rejectLocked(msg string) {
	err := apperr.Validation(msg).WithOp("search.submit")
	c.supersedeLocked()
	c.status = StatusError
	c.results = nil
	c.errMsg = err.Message
	c.errKind = err.Kind
	c.notifyLocked()

	c.logger.Debug("search rejected", logger.Error(err))
}

// supersedeLocked bumps the request id and cancels the previous fetch.
func (c *Controller) supersedeLocked() {
	c.requestID++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) run(ctx context.Context, id uint64, query, credential string) {
	listings, err := c.fetch(ctx, query, credential)

	c.mu.Lock()
	defer c.mu.Unlock()

	if id != c.requestID {
		c.logger.Debug("discarding stale search result",
			logger.Uint64("request_id", id),
			logger.Uint64("current_request_id", c.requestID))
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.lastActivity = c.now()

	switch {
	case err != nil:
		kind := apperr.KindOf(err)
		c.logger.Error("search failed",
			logger.Uint64("request_id", id),
			logger.String("query", query),
			logger.String("kind", kind.String()),
			logger.Error(err))
		c.status = StatusError
		c.errMsg = MessageFor(kind)
		c.errKind = kind
		c.results = nil
	case len(listings) == 0:
		c.status = StatusEmpty
		c.results = []domain.Listing{}
	default:
		c.status = StatusSuccess
		c.results = listings
	}
	c.notifyLocked()
}

// fetch calls the fetcher, turning a panic into a transient failure.
func (c *Controller) fetch(ctx context.Context, query, credential string) (listings []domain.Listing, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperr.Transient("fetcher panicked", fmt.Errorf("%v", r))
		}
	}()
	return c.fetcher.Fetch(ctx, query, credential)
}

func (c *Controller) notifyLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		Status:      c.status,
		Query:       c.query,
		Error:       c.errMsg,
		HasSearched: c.hasSearched,
		IsLoading:   c.status == StatusLoading,
		RequestID:   c.requestID,
		Results:     make([]domain.Listing, len(c.results)),
	}
	copy(s.Results, c.results)
	if c.status == StatusError {
		s.ErrorKind = c.errKind.String()
	}
	return s
}

// Wait blocks until the controller is not loading or ctx is done, and
// returns the state at that point.
func (c *Controller) Wait(ctx context.Context) (Snapshot, error) {
	for {
		c.mu.Lock()
		if c.status != StatusLoading {
			s := c.snapshotLocked()
			c.mu.Unlock()
			return s, nil
		}
		ch := c.changed
		c.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return c.Snapshot(), ctx.Err()
		}
	}
}

// LastActivity is the time of the last submit or completed fetch.
func (c *Controller) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActivity
}

// Touch marks the controller as used without changing its state.
func (c *Controller) Touch() {
	c.mu.Lock()
	c.lastActivity = c.now()
	c.mu.Unlock()
}

// Close cancels any fetch in flight. The controller stays readable.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.supersedeLocked()
		if c.status == StatusLoading {
			c.status = StatusIdle
			c.notifyLocked()
		}
	}
}
