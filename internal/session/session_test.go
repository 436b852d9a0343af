package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ctgpost/MarketingWebTools/internal/catalog"
	"github.com/ctgpost/MarketingWebTools/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingAuditor resolves each audit when the test releases its url.
type blockingAuditor struct {
	mu      sync.Mutex
	pending map[string]chan int
}

func newBlockingAuditor() *blockingAuditor {
	return &blockingAuditor{pending: make(map[string]chan int)}
}

func (a *blockingAuditor) Run(_ context.Context, url string) (int, bool) {
	score := <-a.channel(url)
	return score, true
}

func (a *blockingAuditor) channel(url string) chan int {
	a.mu.Lock()
	defer a.mu.Unlock()
	ch, ok := a.pending[url]
	if !ok {
		ch = make(chan int)
		a.pending[url] = ch
	}
	return ch
}

func (a *blockingAuditor) release(url string, score int) {
	a.channel(url) <- score
}

// blockingGateway resolves each generation when the test releases its input.
type blockingGateway struct {
	mu      sync.Mutex
	pending map[string]chan string
}

func newBlockingGateway() *blockingGateway {
	return &blockingGateway{pending: make(map[string]chan string)}
}

func (g *blockingGateway) channel(key string) chan string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.pending[key]
	if !ok {
		ch = make(chan string)
		g.pending[key] = ch
	}
	return ch
}

func (g *blockingGateway) release(key, text string) {
	g.channel(key) <- text
}

func (g *blockingGateway) MarketingTip(_ context.Context, goal string) string {
	return <-g.channel(goal)
}

func (g *blockingGateway) SocialCaption(_ context.Context, productName, _ string) string {
	return <-g.channel(productName)
}

func (g *blockingGateway) Keywords(_ context.Context, shopDescription string) string {
	return <-g.channel(shopDescription)
}

func newTestSession(t *testing.T, policy SlotPolicy) (*Session, *blockingGateway, *blockingAuditor) {
	gw := newBlockingGateway()
	auditor := newBlockingAuditor()
	s := New("test-session", Deps{
		Catalog:     catalog.New(catalog.DefaultProducts()),
		Gateway:     gw,
		Auditor:     auditor,
		Policy:      policy,
		MarkerDelay: time.Minute,
	})
	t.Cleanup(s.End)
	return s, gw, auditor
}

func eventually(t *testing.T, s *Session, cond func(domain.SessionSnapshot) bool) {
	t.Helper()
	require.Eventually(t, func() bool { return cond(s.Snapshot()) }, 2*time.Second, 5*time.Millisecond)
}

func TestAddItem_UpdatesCartAndTotals(t *testing.T) {
	s, _, _ := newTestSession(t, LastResolvedWins)

	_, err := s.AddItem(7) // ৳500
	require.NoError(t, err)
	p, err := s.AddItem(3) // ৳1200
	require.NoError(t, err)
	assert.Equal(t, "Embroidered Kurti", p.Name)

	snap := s.Snapshot()
	assert.Equal(t, 2, snap.Cart.Count)
	assert.Equal(t, int64(3), snap.Cart.JustAddedID)
	assert.Equal(t, domain.Totals{Subtotal: 1700, DeliveryFee: 60, Total: 1760}, snap.Checkout.Totals)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	s, _, _ := newTestSession(t, LastResolvedWins)

	_, err := s.AddItem(999)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
	assert.Zero(t, s.Snapshot().Cart.Count)
}

func TestCheckoutFlow_CompletesAndResets(t *testing.T) {
	s, _, _ := newTestSession(t, LastResolvedWins)

	require.True(t, s.OpenCheckout())
	assert.False(t, s.Proceed(), "empty cart")

	_, err := s.AddItem(1)
	require.NoError(t, err)
	require.True(t, s.Proceed())
	assert.False(t, s.Proceed(), "shipping incomplete")

	require.True(t, s.UpdateShipping(domain.ShippingInfo{Name: "Rina", Phone: "017", Address: "Mirpur 10", Area: domain.AreaOutside}))
	assert.Equal(t, int64(4620), s.Snapshot().Checkout.Totals.Total)
	require.True(t, s.Proceed())
	require.True(t, s.SelectPayment(domain.PaymentNagad))
	require.True(t, s.Proceed())

	snap := s.Snapshot()
	assert.Equal(t, domain.StepConfirmation, snap.Checkout.Step)
	assert.True(t, snap.Checkout.CanClose)

	require.True(t, s.CloseCheckout())
	snap = s.Snapshot()
	assert.Equal(t, domain.StepReviewCart, snap.Checkout.Step)
	assert.False(t, snap.Checkout.Open)
	assert.Zero(t, snap.Cart.Count)
	assert.Equal(t, int64(0), snap.Checkout.Totals.Subtotal)
}

func TestDismiss_ResumesAtSameStep(t *testing.T) {
	s, _, _ := newTestSession(t, LastResolvedWins)

	_, err := s.AddItem(1)
	require.NoError(t, err)
	require.True(t, s.OpenCheckout())
	require.True(t, s.Proceed())
	require.True(t, s.Dismiss())
	assert.False(t, s.Back(), "closed session ignores back")

	require.True(t, s.OpenCheckout())
	assert.Equal(t, domain.StepShippingInfo, s.Snapshot().Checkout.Step)
}

func TestSubscribe_ReceivesOrderedSnapshots(t *testing.T) {
	s, _, _ := newTestSession(t, LastResolvedWins)

	var mu sync.Mutex
	var versions []uint64
	s.Subscribe(func(snap domain.SessionSnapshot) {
		mu.Lock()
		versions = append(versions, snap.Version)
		mu.Unlock()
	})

	_, err := s.AddItem(1)
	require.NoError(t, err)
	require.True(t, s.OpenCheckout())
	assert.False(t, s.Back(), "no-op does not notify")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []uint64{1, 2}, versions)
}

func TestEnd_StopsNotifications(t *testing.T) {
	s, _, _ := newTestSession(t, LastResolvedWins)

	calls := 0
	s.Subscribe(func(domain.SessionSnapshot) { calls++ })
	s.End()

	_, err := s.AddItem(1)
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestRunAudit_EmptyURLIsNoop(t *testing.T) {
	s, _, _ := newTestSession(t, LastResolvedWins)

	assert.False(t, s.RunAudit(context.Background(), ""))
	snap := s.Snapshot()
	assert.False(t, snap.Audit.Pending)
	assert.False(t, snap.Audit.HasScore)
}

func TestRunAudit_PendingUntilResolved(t *testing.T) {
	s, _, auditor := newTestSession(t, LastResolvedWins)

	require.True(t, s.RunAudit(context.Background(), "https://a.example"))
	snap := s.Snapshot()
	assert.True(t, snap.Audit.Pending)
	assert.Equal(t, "https://a.example", snap.Audit.URL)

	auditor.release("https://a.example", 77)
	eventually(t, s, func(snap domain.SessionSnapshot) bool { return !snap.Audit.Pending })
	assert.Equal(t, 77, s.Snapshot().Audit.Score)
	assert.True(t, s.Snapshot().Audit.HasScore)
}

func TestRunAudit_SurvivesCancelledRequestContext(t *testing.T) {
	s, _, auditor := newTestSession(t, LastResolvedWins)

	ctx, cancel := context.WithCancel(context.Background())
	require.True(t, s.RunAudit(ctx, "https://a.example"))
	cancel()

	auditor.release("https://a.example", 88)
	s.Wait()
	assert.Equal(t, 88, s.Snapshot().Audit.Score)
}

func TestRunAudit_OverlappingLastResolvedWins(t *testing.T) {
	s, _, auditor := newTestSession(t, LastResolvedWins)
	ctx := context.Background()

	require.True(t, s.RunAudit(ctx, "https://first.example"))
	require.True(t, s.RunAudit(ctx, "https://second.example"))

	auditor.release("https://second.example", 70)
	eventually(t, s, func(snap domain.SessionSnapshot) bool { return snap.Audit.Score == 70 })
	assert.True(t, s.Snapshot().Audit.Pending, "first audit still running")

	auditor.release("https://first.example", 90)
	s.Wait()

	snap := s.Snapshot()
	assert.Equal(t, 90, snap.Audit.Score, "the audit that resolved last wins")
	assert.False(t, snap.Audit.Pending)
}

func TestRunAudit_OverlappingLatestDispatchedWins(t *testing.T) {
	s, _, auditor := newTestSession(t, LatestDispatchedWins)
	ctx := context.Background()

	require.True(t, s.RunAudit(ctx, "https://first.example"))
	require.True(t, s.RunAudit(ctx, "https://second.example"))

	auditor.release("https://second.example", 70)
	eventually(t, s, func(snap domain.SessionSnapshot) bool { return snap.Audit.Score == 70 })
	assert.False(t, s.Snapshot().Audit.Pending, "latest request has resolved")

	auditor.release("https://first.example", 90)
	s.Wait()

	assert.Equal(t, 70, s.Snapshot().Audit.Score, "stale result is dropped")
}

func TestRequestTip(t *testing.T) {
	s, gw, _ := newTestSession(t, LastResolvedWins)

	assert.False(t, s.RequestTip(context.Background(), ""))
	assert.False(t, s.Snapshot().Tip.Pending)

	require.True(t, s.RequestTip(context.Background(), "বিক্রয় বাড়ানো"))
	assert.True(t, s.Snapshot().Tip.Pending)

	gw.release("বিক্রয় বাড়ানো", "লাইভ সেল করুন")
	s.Wait()

	tip := s.Snapshot().Tip
	assert.False(t, tip.Pending)
	assert.Equal(t, "লাইভ সেল করুন", tip.Text)
	assert.Equal(t, "বিক্রয় বাড়ানো", tip.Subject)
}

func TestRequestCaption_LastResolvedWins(t *testing.T) {
	s, gw, _ := newTestSession(t, LastResolvedWins)
	ctx := context.Background()

	_, err := s.RequestCaption(ctx, 1)
	require.NoError(t, err)
	p, err := s.RequestCaption(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Cotton Three-Piece", s.Snapshot().Caption.Subject, "subject follows the latest selection")

	gw.release(p.Name, "three-piece caption")
	eventually(t, s, func(snap domain.SessionSnapshot) bool { return snap.Caption.Text == "three-piece caption" })

	gw.release("Jamdani Saree", "saree caption")
	s.Wait()
	assert.Equal(t, "saree caption", s.Snapshot().Caption.Text)
	assert.False(t, s.Snapshot().Caption.Pending)
}

func TestRequestCaption_UnknownProduct(t *testing.T) {
	s, _, _ := newTestSession(t, LastResolvedWins)

	_, err := s.RequestCaption(context.Background(), 404)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
	assert.False(t, s.Snapshot().Caption.Pending)
}

func TestRequestKeywords_LatestDispatchedWins(t *testing.T) {
	s, gw, _ := newTestSession(t, LatestDispatchedWins)
	ctx := context.Background()

	assert.False(t, s.RequestKeywords(ctx, ""))
	require.True(t, s.RequestKeywords(ctx, "old description"))
	require.True(t, s.RequestKeywords(ctx, "new description"))

	gw.release("new description", "new keywords")
	gw.release("old description", "old keywords")
	s.Wait()

	kw := s.Snapshot().Keywords
	assert.Equal(t, "new keywords", kw.Text)
	assert.Equal(t, "new description", kw.Subject)
	assert.False(t, kw.Pending)
}

func TestRestore(t *testing.T) {
	s, _, _ := newTestSession(t, LastResolvedWins)

	s.Restore(domain.SessionSnapshot{
		ID:      "test-session",
		Version: 9,
		Cart:    domain.CartView{Items: catalog.DefaultProducts()[:2], Count: 2},
		Checkout: domain.CheckoutState{
			Open: true,
			Step: domain.StepShippingInfo,
		},
		Tip:   domain.GenerationSlot{Text: "saved tip", Pending: true},
		Audit: domain.AuditSlot{Score: 80, HasScore: true, Pending: true},
	})

	snap := s.Snapshot()
	assert.Equal(t, uint64(9), snap.Version)
	assert.Equal(t, 2, snap.Cart.Count)
	assert.Equal(t, domain.StepShippingInfo, snap.Checkout.Step)
	assert.Equal(t, domain.AreaDhaka, snap.Checkout.Shipping.Area)
	assert.Equal(t, "saved tip", snap.Tip.Text)
	assert.False(t, snap.Tip.Pending)
	assert.False(t, snap.Audit.Pending)
	assert.Equal(t, 80, snap.Audit.Score)
}

func TestParseSlotPolicy(t *testing.T) {
	p, err := ParseSlotPolicy("")
	require.NoError(t, err)
	assert.Equal(t, LastResolvedWins, p)

	p, err = ParseSlotPolicy("latest-dispatched")
	require.NoError(t, err)
	assert.Equal(t, LatestDispatchedWins, p)
	assert.Equal(t, "latest-dispatched", p.String())

	_, err = ParseSlotPolicy("first-wins")
	assert.Error(t, err)
}
