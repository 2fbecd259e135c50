package dashboard

import (
	"context"

	"github.com/romeoalpha/admin/internal/model"
	"github.com/romeoalpha/admin/internal/storage"
)

// MessageGateway reads contact submissions, newest first.
type MessageGateway interface {
	ListMessages(ctx context.Context) ([]model.Message, error)
}

// MarketplaceGateway reads and writes marketplace listings.
type MarketplaceGateway interface {
	ListMarketplaceItems(ctx context.Context) ([]model.MarketplaceItem, error)
	CreateMarketplaceItem(ctx context.Context, fields model.MarketplaceItemFields) (model.MarketplaceItem, error)
	UpdateMarketplaceItem(ctx context.Context, id string, fields model.MarketplaceItemFields) (model.MarketplaceItem, error)
	DeleteMarketplaceItem(ctx context.Context, id string) error
}

// AdGateway reads and writes promotional ads.
type AdGateway interface {
	ListAds(ctx context.Context) ([]model.Ad, error)
	CreateAd(ctx context.Context, fields model.AdFields) (model.Ad, error)
	DeleteAd(ctx context.Context, id string) error
}

// FaqGateway is the local FAQ store. Its calls complete synchronously.
type FaqGateway interface {
	List() ([]model.FaqEntry, error)
	Create(fields model.FaqFields) (model.FaqEntry, error)
	Update(id string, fields model.FaqFields) (model.FaqEntry, error)
	Delete(id string) error
}

// ProposalSource lists partnership proposals from the local store.
type ProposalSource interface {
	List() ([]model.PartnershipProposal, error)
}

// ImageUploader turns a selected file into a public URL.
type ImageUploader interface {
	Upload(ctx context.Context, file storage.File) (string, error)
	Discard(ctx context.Context, url string) error
}

// SessionGuard reports and ends the operator session.
type SessionGuard interface {
	Check() bool
	Token() (string, bool)
	Logout()
}

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	Messages    MessageGateway
	Marketplace MarketplaceGateway
	Ads         AdGateway
	Faqs        FaqGateway
	Proposals   ProposalSource
	Uploader    ImageUploader
}
