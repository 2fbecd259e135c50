package dashboard

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/romeoalpha/admin/internal/model"
	"github.com/romeoalpha/admin/internal/storage"
)

// ---------------------------------------------------------------------------
// Call recorder shared by the mocks
// ---------------------------------------------------------------------------

type calls struct {
	mu sync.Mutex
	n  map[string]int
}

func (c *calls) hit(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.n == nil {
		c.n = map[string]int{}
	}
	c.n[name]++
}

func (c *calls) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n[name]
}

// ---------------------------------------------------------------------------
// Mock gateways
// ---------------------------------------------------------------------------

type mockMessages struct {
	calls
	listFunc func(ctx context.Context) ([]model.Message, error)
}

func (m *mockMessages) ListMessages(ctx context.Context) ([]model.Message, error) {
	m.hit("list")
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

type mockMarketplace struct {
	calls
	listFunc   func(ctx context.Context) ([]model.MarketplaceItem, error)
	createFunc func(ctx context.Context, f model.MarketplaceItemFields) (model.MarketplaceItem, error)
	updateFunc func(ctx context.Context, id string, f model.MarketplaceItemFields) (model.MarketplaceItem, error)
	deleteFunc func(ctx context.Context, id string) error
}

func (m *mockMarketplace) ListMarketplaceItems(ctx context.Context) ([]model.MarketplaceItem, error) {
	m.hit("list")
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockMarketplace) CreateMarketplaceItem(ctx context.Context, f model.MarketplaceItemFields) (model.MarketplaceItem, error) {
	m.hit("create")
	if m.createFunc != nil {
		return m.createFunc(ctx, f)
	}
	return model.MarketplaceItem{ID: "new", Title: f.Title}, nil
}

func (m *mockMarketplace) UpdateMarketplaceItem(ctx context.Context, id string, f model.MarketplaceItemFields) (model.MarketplaceItem, error) {
	m.hit("update")
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, f)
	}
	return model.MarketplaceItem{ID: id, Title: f.Title}, nil
}

func (m *mockMarketplace) DeleteMarketplaceItem(ctx context.Context, id string) error {
	m.hit("delete")
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockAds struct {
	calls
	listFunc   func(ctx context.Context) ([]model.Ad, error)
	createFunc func(ctx context.Context, f model.AdFields) (model.Ad, error)
	deleteFunc func(ctx context.Context, id string) error
}

func (m *mockAds) ListAds(ctx context.Context) ([]model.Ad, error) {
	m.hit("list")
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockAds) CreateAd(ctx context.Context, f model.AdFields) (model.Ad, error) {
	m.hit("create")
	if m.createFunc != nil {
		return m.createFunc(ctx, f)
	}
	return model.Ad{ID: "ad-1", Title: f.Title, LinkURL: f.LinkURL, ImageURL: f.ImageURL}, nil
}

func (m *mockAds) DeleteAd(ctx context.Context, id string) error {
	m.hit("delete")
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockFaqs struct {
	calls
	listFunc   func() ([]model.FaqEntry, error)
	createFunc func(f model.FaqFields) (model.FaqEntry, error)
	updateFunc func(id string, f model.FaqFields) (model.FaqEntry, error)
	deleteFunc func(id string) error
}

func (m *mockFaqs) List() ([]model.FaqEntry, error) {
	m.hit("list")
	if m.listFunc != nil {
		return m.listFunc()
	}
	return nil, nil
}

func (m *mockFaqs) Create(f model.FaqFields) (model.FaqEntry, error) {
	m.hit("create")
	if m.createFunc != nil {
		return m.createFunc(f)
	}
	return model.FaqEntry{ID: "faq-new", Question: f.Question, Answer: f.Answer}, nil
}

func (m *mockFaqs) Update(id string, f model.FaqFields) (model.FaqEntry, error) {
	m.hit("update")
	if m.updateFunc != nil {
		return m.updateFunc(id, f)
	}
	return model.FaqEntry{ID: id, Question: f.Question, Answer: f.Answer}, nil
}

func (m *mockFaqs) Delete(id string) error {
	m.hit("delete")
	if m.deleteFunc != nil {
		return m.deleteFunc(id)
	}
	return nil
}

type mockProposals struct {
	calls
	listFunc func() ([]model.PartnershipProposal, error)
}

func (m *mockProposals) List() ([]model.PartnershipProposal, error) {
	m.hit("list")
	if m.listFunc != nil {
		return m.listFunc()
	}
	return nil, nil
}

type mockUploader struct {
	calls
	uploadFunc  func(ctx context.Context, f storage.File) (string, error)
	discardFunc func(ctx context.Context, url string) error
	discarded   []string
}

func (m *mockUploader) Upload(ctx context.Context, f storage.File) (string, error) {
	m.hit("upload")
	if m.uploadFunc != nil {
		return m.uploadFunc(ctx, f)
	}
	return "https://cdn/x.jpg", nil
}

func (m *mockUploader) Discard(ctx context.Context, url string) error {
	m.hit("discard")
	m.mu.Lock()
	m.discarded = append(m.discarded, url)
	m.mu.Unlock()
	if m.discardFunc != nil {
		return m.discardFunc(ctx, url)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Mock session guard
// ---------------------------------------------------------------------------

type mockGuard struct {
	mu        sync.Mutex
	token     string
	logouts   int
	loginView bool
}

func (g *mockGuard) Check() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.token == "" {
		g.loginView = true
		return false
	}
	return true
}

func (g *mockGuard) Token() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.token, g.token != ""
}

func (g *mockGuard) Logout() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.token = ""
	g.logouts++
	g.loginView = true
}

func (g *mockGuard) logoutCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.logouts
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type fixture struct {
	messages    *mockMessages
	marketplace *mockMarketplace
	ads         *mockAds
	faqs        *mockFaqs
	proposals   *mockProposals
	uploader    *mockUploader
	guard       *mockGuard
	o           *Orchestrator
}

func newFixture(opts ...Option) *fixture {
	f := &fixture{
		messages:    &mockMessages{},
		marketplace: &mockMarketplace{},
		ads:         &mockAds{},
		faqs:        &mockFaqs{},
		proposals:   &mockProposals{},
		uploader:    &mockUploader{},
		guard:       &mockGuard{token: "tok"},
	}
	deps := Deps{
		Messages:    f.messages,
		Marketplace: f.marketplace,
		Ads:         f.ads,
		Faqs:        f.faqs,
		Proposals:   f.proposals,
		Uploader:    f.uploader,
	}
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	f.o = New(deps, f.guard, opts...)
	return f
}

func yes(string) bool { return true }
func no(string) bool  { return false }
