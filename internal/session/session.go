package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ctgpost/MarketingWebTools/internal/cart"
	"github.com/ctgpost/MarketingWebTools/internal/checkout"
	"github.com/ctgpost/MarketingWebTools/internal/domain"
	"go.uber.org/zap"
)

var ErrSessionNotFound = errors.New("session not found")

type ProductLookup interface {
	Product(id int64) (domain.Product, error)
}

// TextGateway always resolves to a string, falling back on failure.
type TextGateway interface {
	MarketingTip(ctx context.Context, goal string) string
	SocialCaption(ctx context.Context, productName, category string) string
	Keywords(ctx context.Context, shopDescription string) string
}

type Auditor interface {
	Run(ctx context.Context, url string) (int, bool)
}

// Deps are shared by every session a manager creates.
type Deps struct {
	Catalog     ProductLookup
	Gateway     TextGateway
	Auditor     Auditor
	Policy      SlotPolicy
	MarkerDelay time.Duration
	Logger      *zap.Logger
}

// Session owns the cart, checkout and content lab state of one visitor.
// Async work started by a session always resolves into its slot, even if
// the request that started it has gone away.
type Session struct {
	id     string
	deps   Deps
	cart   *cart.Store
	flow   *checkout.Machine
	logger *zap.Logger

	mu        sync.Mutex
	tip       domain.GenerationSlot
	caption   domain.GenerationSlot
	keywords  domain.GenerationSlot
	audit     domain.AuditSlot
	trackers  map[string]*tracker
	version   uint64
	updatedAt time.Time
	ended     bool

	// notifyMu keeps observers seeing snapshots in version order.
	notifyMu  sync.Mutex
	observers []func(domain.SessionSnapshot)

	lastActive atomic.Int64
	work       sync.WaitGroup
}

const (
	slotTip      = "tip"
	slotCaption  = "caption"
	slotKeywords = "keywords"
	slotAudit    = "audit"
)

func New(id string, deps Deps) *Session {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	store := cart.NewStore(deps.MarkerDelay)
	s := &Session{
		id:     id,
		deps:   deps,
		cart:   store,
		flow:   checkout.NewMachine(store),
		logger: deps.Logger.With(zap.String("session_id", id)),
		trackers: map[string]*tracker{
			slotTip:      {},
			slotCaption:  {},
			slotKeywords: {},
			slotAudit:    {},
		},
		updatedAt: time.Now(),
	}
	s.touch()
	store.OnChange(s.notify)
	return s
}

func (s *Session) ID() string {
	return s.id
}

// Subscribe registers fn to receive a snapshot after every change.
// fn must not call back into the session.
func (s *Session) Subscribe(fn func(domain.SessionSnapshot)) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.observers = append(s.observers, fn)
}

// AddItem puts the catalog product with id into the cart.
func (s *Session) AddItem(productID int64) (domain.Product, error) {
	s.touch()
	p, err := s.deps.Catalog.Product(productID)
	if err != nil {
		return domain.Product{}, err
	}
	s.cart.AddItem(p)
	return p, nil
}

func (s *Session) OpenCheckout() bool {
	return s.apply(s.flow.Open)
}

func (s *Session) Proceed() bool {
	return s.apply(s.flow.Proceed)
}

func (s *Session) Back() bool {
	return s.apply(s.flow.Back)
}

// CloseCheckout completes the order from the confirmation step.
func (s *Session) CloseCheckout() bool {
	return s.apply(s.flow.Close)
}

func (s *Session) Dismiss() bool {
	return s.apply(s.flow.Dismiss)
}

func (s *Session) UpdateShipping(info domain.ShippingInfo) bool {
	return s.apply(func() bool { return s.flow.SetShipping(info) })
}

func (s *Session) SelectPayment(method domain.PaymentMethod) bool {
	return s.apply(func() bool { return s.flow.SelectPaymentMethod(method) })
}

func (s *Session) apply(action func() bool) bool {
	s.touch()
	if !action() {
		return false
	}
	s.notify()
	return true
}

// RequestTip starts a marketing tip generation. An empty goal is a no-op.
func (s *Session) RequestTip(ctx context.Context, goal string) bool {
	if goal == "" {
		return false
	}
	s.startGeneration(ctx, slotTip, goal, func(ctx context.Context) string {
		return s.deps.Gateway.MarketingTip(ctx, goal)
	})
	return true
}

// RequestCaption starts a social caption for the catalog product with id.
func (s *Session) RequestCaption(ctx context.Context, productID int64) (domain.Product, error) {
	s.touch()
	p, err := s.deps.Catalog.Product(productID)
	if err != nil {
		return domain.Product{}, err
	}
	s.startGeneration(ctx, slotCaption, p.Name, func(ctx context.Context) string {
		return s.deps.Gateway.SocialCaption(ctx, p.Name, p.Category)
	})
	return p, nil
}

// RequestKeywords starts an SEO keyword suggestion. An empty description is a no-op.
func (s *Session) RequestKeywords(ctx context.Context, shopDescription string) bool {
	if shopDescription == "" {
		return false
	}
	s.startGeneration(ctx, slotKeywords, shopDescription, func(ctx context.Context) string {
		return s.deps.Gateway.Keywords(ctx, shopDescription)
	})
	return true
}

// RunAudit starts a simulated site audit. An empty url is a no-op.
func (s *Session) RunAudit(ctx context.Context, url string) bool {
	s.touch()
	if url == "" {
		return false
	}

	s.mu.Lock()
	seq := s.trackers[slotAudit].begin()
	s.audit.URL = url
	s.mu.Unlock()
	s.notify()

	ctx = context.WithoutCancel(ctx)
	s.work.Add(1)
	go func() {
		defer s.work.Done()
		score, ok := s.deps.Auditor.Run(ctx, url)

		s.mu.Lock()
		show := s.trackers[slotAudit].finish(seq, s.deps.Policy)
		if show && ok {
			s.audit.Score = score
			s.audit.HasScore = true
			s.audit.UpdatedAt = time.Now()
		}
		s.mu.Unlock()

		s.logger.Debug("audit resolved",
			zap.Uint64("seq", seq),
			zap.Int("score", score),
			zap.Bool("shown", show))
		s.notify()
	}()
	return true
}

func (s *Session) startGeneration(ctx context.Context, name, subject string, generate func(context.Context) string) {
	s.touch()

	s.mu.Lock()
	seq := s.trackers[name].begin()
	if name == slotCaption {
		s.caption.Subject = subject
	}
	s.mu.Unlock()
	s.notify()

	ctx = context.WithoutCancel(ctx)
	s.work.Add(1)
	go func() {
		defer s.work.Done()
		text := generate(ctx)

		s.mu.Lock()
		show := s.trackers[name].finish(seq, s.deps.Policy)
		if show {
			slot := s.slot(name)
			slot.Text = text
			if name != slotCaption {
				slot.Subject = subject
			}
			slot.UpdatedAt = time.Now()
		}
		s.mu.Unlock()

		s.logger.Debug("generation resolved",
			zap.String("slot", name),
			zap.Uint64("seq", seq),
			zap.Bool("shown", show))
		s.notify()
	}()
}

// slot must be called with s.mu held.
func (s *Session) slot(name string) *domain.GenerationSlot {
	switch name {
	case slotCaption:
		return &s.caption
	case slotKeywords:
		return &s.keywords
	}
	return &s.tip
}

// Snapshot returns the current state for rendering.
func (s *Session) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() domain.SessionSnapshot {
	items := s.cart.Items()
	justAdded, _ := s.cart.JustAdded()

	snap := domain.SessionSnapshot{
		ID:      s.id,
		Version: s.version,
		Cart: domain.CartView{
			Items:       items,
			Count:       len(items),
			JustAddedID: justAdded,
		},
		Checkout:  s.flow.State(),
		Tip:       s.tip,
		Caption:   s.caption,
		Keywords:  s.keywords,
		Audit:     s.audit,
		UpdatedAt: s.updatedAt,
	}
	snap.Tip.Pending = s.trackers[slotTip].pending(s.deps.Policy)
	snap.Caption.Pending = s.trackers[slotCaption].pending(s.deps.Policy)
	snap.Keywords.Pending = s.trackers[slotKeywords].pending(s.deps.Policy)
	snap.Audit.Pending = s.trackers[slotAudit].pending(s.deps.Policy)
	return snap
}

func (s *Session) notify() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.version++
	s.updatedAt = time.Now()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	for _, fn := range s.observers {
		fn(snap)
	}
}

// Restore loads a snapshot captured by another instance. Requests that were
// in flight there are not resumed.
func (s *Session) Restore(snap domain.SessionSnapshot) {
	s.cart.Restore(snap.Cart.Items)
	s.flow.Restore(snap.Checkout)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tip = snap.Tip
	s.caption = snap.Caption
	s.keywords = snap.Keywords
	s.audit = snap.Audit
	s.tip.Pending = false
	s.caption.Pending = false
	s.keywords.Pending = false
	s.audit.Pending = false
	s.version = snap.Version
	if !snap.UpdatedAt.IsZero() {
		s.updatedAt = snap.UpdatedAt
	}
}

// End stops notifications and timers. Work already started still finishes.
func (s *Session) End() {
	// Waits for an in-progress notify so no observer runs after End returns.
	s.notifyMu.Lock()
	s.mu.Lock()
	s.ended = true
	s.mu.Unlock()
	s.notifyMu.Unlock()
	s.cart.Stop()
}

// Wait blocks until all started async work has resolved.
func (s *Session) Wait() {
	s.work.Wait()
}

func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}
