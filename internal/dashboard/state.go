package dashboard

import (
	"maps"
	"slices"

	"github.com/samber/lo"

	"github.com/romeoalpha/admin/internal/model"
)

// State is everything the dashboard renders.
type State struct {
	ActiveTab        Tab                         `json:"active_tab"`
	Messages         []model.Message             `json:"messages"`
	MarketplaceItems []model.MarketplaceItem     `json:"marketplace_items"`
	Ads              []model.Ad                  `json:"ads"`
	Faqs             []model.FaqEntry            `json:"faqs"`
	Proposals        []model.PartnershipProposal `json:"proposals"`
	Loading          map[Domain]bool             `json:"loading"`
	Errors           map[Domain]string           `json:"errors"`
	MarketplaceForm  MarketplaceForm             `json:"marketplace_form"`
	AdForm           AdForm                      `json:"ad_form"`
	FaqForm          FaqForm                     `json:"faq_form"`
}

// MarketplaceForm is the add/edit listing form. ImageURL holds the current
// image of the listing being edited.
type MarketplaceForm struct {
	Open        bool           `json:"open"`
	Saving      bool           `json:"saving"`
	EditingID   string         `json:"editing_id,omitempty"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    model.Category `json:"category"`
	Price       string         `json:"price"`
	ImageURL    string         `json:"image_url,omitempty"`
}

// AdForm is the new ad form.
type AdForm struct {
	Open    bool   `json:"open"`
	Saving  bool   `json:"saving"`
	Title   string `json:"title"`
	LinkURL string `json:"link_url"`
}

// FaqForm is the add/edit FAQ form.
type FaqForm struct {
	Open      bool   `json:"open"`
	EditingID string `json:"editing_id,omitempty"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
}

// Summary holds the dashboard tab counters.
type Summary struct {
	TotalMessages  int `json:"total_messages"`
	ActiveListings int `json:"active_listings"`
	VesselsForSale int `json:"vessels_for_sale"`
}

func newState() State {
	s := State{
		ActiveTab:       TabDashboard,
		Messages:        []model.Message{},
		Loading:         make(map[Domain]bool, domainCount),
		Errors:          make(map[Domain]string),
		MarketplaceForm: emptyMarketplaceForm(),
	}
	s.MarketplaceItems = []model.MarketplaceItem{}
	s.Ads = []model.Ad{}
	s.Faqs = []model.FaqEntry{}
	s.Proposals = []model.PartnershipProposal{}
	for _, d := range Domains() {
		s.Loading[d] = false
	}
	return s
}

func emptyMarketplaceForm() MarketplaceForm {
	return MarketplaceForm{Category: model.CategorySale}
}

// Summary derives the counters from the loaded lists.
func (s State) Summary() Summary {
	return Summary{
		TotalMessages:  len(s.Messages),
		ActiveListings: len(s.MarketplaceItems),
		VesselsForSale: lo.CountBy(s.MarketplaceItems, func(it model.MarketplaceItem) bool {
			return it.Category == model.CategorySale
		}),
	}
}

func (s State) clone() State {
	c := s
	c.Messages = slices.Clone(s.Messages)
	c.MarketplaceItems = slices.Clone(s.MarketplaceItems)
	c.Ads = slices.Clone(s.Ads)
	c.Faqs = slices.Clone(s.Faqs)
	c.Proposals = slices.Clone(s.Proposals)
	c.Loading = maps.Clone(s.Loading)
	c.Errors = maps.Clone(s.Errors)
	return c
}
