package dashboard

import (
	"context"
	"strings"

	"github.com/romeoalpha/admin/internal/model"
	"github.com/romeoalpha/admin/internal/storage"
)

// Confirmation prompts shown before a delete.
const (
	PromptDeleteListing = "Are you sure you want to delete this item?"
	PromptDeleteAd      = "Are you sure you want to delete this ad?"
	PromptDeleteFaq     = "Are you sure you want to delete this FAQ?"
)

// ConfirmFunc asks the operator to confirm prompt.
type ConfirmFunc func(prompt string) bool

// MarketplaceDraft is the editable input of the listing form.
type MarketplaceDraft struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    model.Category `json:"category"`
	Price       string         `json:"price"`
}

// ToggleMarketplaceForm opens or closes the listing form.
func (o *Orchestrator) ToggleMarketplaceForm() {
	o.update(func(s *State) { s.MarketplaceForm.Open = !s.MarketplaceForm.Open })
}

// CancelMarketplaceForm closes the listing form. An edit in progress is
// abandoned.
func (o *Orchestrator) CancelMarketplaceForm() {
	o.update(func(s *State) {
		if s.MarketplaceForm.EditingID != "" {
			s.MarketplaceForm = emptyMarketplaceForm()
		}
		s.MarketplaceForm.Open = false
	})
}

// SetMarketplaceDraft replaces the listing form input. An empty category means sale.
func (o *Orchestrator) SetMarketplaceDraft(d MarketplaceDraft) {
	if d.Category == "" {
		d.Category = model.CategorySale
	}
	o.update(func(s *State) {
		f := &s.MarketplaceForm
		f.Title, f.Description, f.Category, f.Price = d.Title, d.Description, d.Category, d.Price
	})
}

// EditMarketplaceItem opens the form prefilled with the loaded listing id.
func (o *Orchestrator) EditMarketplaceItem(id string) error {
	o.mu.Lock()
	var found *model.MarketplaceItem
	for i := range o.state.MarketplaceItems {
		if o.state.MarketplaceItems[i].ID == id {
			found = &o.state.MarketplaceItems[i]
			break
		}
	}
	if found == nil {
		o.mu.Unlock()
		return ErrUnknownRecord
	}
	if o.state.MarketplaceForm.Saving {
		o.mu.Unlock()
		return ErrFormBusy
	}
	category := found.Category
	if category == "" {
		category = model.CategorySale
	}
	o.state.MarketplaceForm = MarketplaceForm{
		Open:        true,
		EditingID:   found.ID,
		Title:       found.Title,
		Description: found.Description,
		Category:    category,
		Price:       found.Price,
		ImageURL:    found.ImageURL,
	}
	snap := o.state.clone()
	o.mu.Unlock()
	o.notify(snap)
	return nil
}

// SubmitMarketplaceItem saves the listing form. When file is set it is
// uploaded first and its URL replaces the listing image. On success the form
// is reset and the listings reloaded. On failure the form keeps its input.
func (o *Orchestrator) SubmitMarketplaceItem(ctx context.Context, file *storage.File) (model.MarketplaceItem, error) {
	o.mu.Lock()
	form := o.state.MarketplaceForm
	fields := model.MarketplaceItemFields{
		Title:       strings.TrimSpace(form.Title),
		Description: strings.TrimSpace(form.Description),
		Category:    form.Category,
		Price:       strings.TrimSpace(form.Price),
		ImageURL:    form.ImageURL,
	}
	if form.Saving {
		o.mu.Unlock()
		return model.MarketplaceItem{}, ErrFormBusy
	}
	if err := validateListing(fields); err != nil {
		o.mu.Unlock()
		return model.MarketplaceItem{}, err
	}
	o.state.MarketplaceForm.Saving = true
	o.mu.Unlock()
	defer o.update(func(s *State) { s.MarketplaceForm.Saving = false })

	if err := o.requireSession(); err != nil {
		return model.MarketplaceItem{}, o.mutationFailed(DomainMarketplace, err)
	}

	wctx, cancel := o.withTimeout(ctx)
	defer cancel()

	var uploaded string
	if file != nil {
		url, err := o.deps.Uploader.Upload(wctx, *file)
		if err != nil {
			return model.MarketplaceItem{}, o.mutationFailed(DomainMarketplace, err)
		}
		uploaded, fields.ImageURL = url, url
	}

	var (
		item model.MarketplaceItem
		err  error
	)
	if form.EditingID != "" {
		item, err = o.deps.Marketplace.UpdateMarketplaceItem(wctx, form.EditingID, fields)
	} else {
		item, err = o.deps.Marketplace.CreateMarketplaceItem(wctx, fields)
	}
	if err != nil {
		o.discard(wctx, uploaded)
		return model.MarketplaceItem{}, o.mutationFailed(DomainMarketplace, err)
	}
	o.log.Info("listing saved", "id", item.ID, "edit", form.EditingID != "")

	o.update(func(s *State) { s.MarketplaceForm = emptyMarketplaceForm() })
	_ = o.Load(ctx, DomainMarketplace)
	return item, nil
}

// DeleteMarketplaceItem removes listing id after confirmation. It reports
// whether the delete was performed.
func (o *Orchestrator) DeleteMarketplaceItem(ctx context.Context, id string, confirm ConfirmFunc) (bool, error) {
	if confirm == nil || !confirm(PromptDeleteListing) {
		return false, nil
	}
	if err := o.requireSession(); err != nil {
		return false, o.mutationFailed(DomainMarketplace, err)
	}
	wctx, cancel := o.withTimeout(ctx)
	defer cancel()
	if err := o.deps.Marketplace.DeleteMarketplaceItem(wctx, id); err != nil {
		return false, o.mutationFailed(DomainMarketplace, err)
	}
	o.log.Info("listing deleted", "id", id)
	_ = o.Load(ctx, DomainMarketplace)
	return true, nil
}

// ToggleAdForm opens or closes the ad form.
func (o *Orchestrator) ToggleAdForm() {
	o.update(func(s *State) { s.AdForm.Open = !s.AdForm.Open })
}

// CancelAdForm closes the ad form.
func (o *Orchestrator) CancelAdForm() {
	o.update(func(s *State) { s.AdForm.Open = false })
}

// SetAdDraft replaces the ad form input.
func (o *Orchestrator) SetAdDraft(title, linkURL string) {
	o.update(func(s *State) { s.AdForm.Title, s.AdForm.LinkURL = title, linkURL })
}

// SubmitAd uploads file and creates an ad pointing at it. Both a title and an
// image are required before anything is sent.
func (o *Orchestrator) SubmitAd(ctx context.Context, file *storage.File) (model.Ad, error) {
	o.mu.Lock()
	form := o.state.AdForm
	fields := model.AdFields{
		Title:   strings.TrimSpace(form.Title),
		LinkURL: strings.TrimSpace(form.LinkURL),
	}
	if form.Saving {
		o.mu.Unlock()
		return model.Ad{}, ErrFormBusy
	}
	if fields.Title == "" || file == nil || file.Body == nil {
		o.mu.Unlock()
		return model.Ad{}, &ValidationError{Message: msgAdRequired}
	}
	o.state.AdForm.Saving = true
	o.mu.Unlock()
	defer o.update(func(s *State) { s.AdForm.Saving = false })

	if err := o.requireSession(); err != nil {
		return model.Ad{}, o.mutationFailed(DomainAds, err)
	}

	wctx, cancel := o.withTimeout(ctx)
	defer cancel()

	url, err := o.deps.Uploader.Upload(wctx, *file)
	if err != nil {
		return model.Ad{}, o.mutationFailed(DomainAds, err)
	}
	fields.ImageURL = url
	if err := validateAd(fields); err != nil {
		o.discard(wctx, url)
		return model.Ad{}, err
	}

	ad, err := o.deps.Ads.CreateAd(wctx, fields)
	if err != nil {
		o.discard(wctx, url)
		return model.Ad{}, o.mutationFailed(DomainAds, err)
	}
	o.log.Info("ad created", "id", ad.ID)

	o.update(func(s *State) { s.AdForm = AdForm{} })
	_ = o.Load(ctx, DomainAds)
	return ad, nil
}

// DeleteAd removes ad id after confirmation.
func (o *Orchestrator) DeleteAd(ctx context.Context, id string, confirm ConfirmFunc) (bool, error) {
	if confirm == nil || !confirm(PromptDeleteAd) {
		return false, nil
	}
	if err := o.requireSession(); err != nil {
		return false, o.mutationFailed(DomainAds, err)
	}
	wctx, cancel := o.withTimeout(ctx)
	defer cancel()
	if err := o.deps.Ads.DeleteAd(wctx, id); err != nil {
		return false, o.mutationFailed(DomainAds, err)
	}
	o.log.Info("ad deleted", "id", id)
	_ = o.Load(ctx, DomainAds)
	return true, nil
}

// ToggleFaqForm opens or closes the FAQ form and starts a fresh entry.
func (o *Orchestrator) ToggleFaqForm() {
	o.update(func(s *State) { s.FaqForm = FaqForm{Open: !s.FaqForm.Open} })
}

// CancelFaqForm closes the FAQ form and drops its input.
func (o *Orchestrator) CancelFaqForm() {
	o.update(func(s *State) { s.FaqForm = FaqForm{} })
}

// SetFaqDraft replaces the FAQ form input.
func (o *Orchestrator) SetFaqDraft(question, answer string) {
	o.update(func(s *State) { s.FaqForm.Question, s.FaqForm.Answer = question, answer })
}

// EditFaq opens the FAQ form prefilled with entry id.
func (o *Orchestrator) EditFaq(id string) error {
	o.mu.Lock()
	for _, f := range o.state.Faqs {
		if f.ID == id {
			o.state.FaqForm = FaqForm{Open: true, EditingID: f.ID, Question: f.Question, Answer: f.Answer}
			snap := o.state.clone()
			o.mu.Unlock()
			o.notify(snap)
			return nil
		}
	}
	o.mu.Unlock()
	return ErrUnknownRecord
}

// SaveFaq creates a new entry, or updates the one being edited.
func (o *Orchestrator) SaveFaq(ctx context.Context) (model.FaqEntry, error) {
	o.mu.Lock()
	form := o.state.FaqForm
	o.mu.Unlock()

	fields := model.FaqFields{
		Question: strings.TrimSpace(form.Question),
		Answer:   strings.TrimSpace(form.Answer),
	}
	if err := validateFaq(fields); err != nil {
		return model.FaqEntry{}, err
	}
	if err := o.requireSession(); err != nil {
		return model.FaqEntry{}, o.mutationFailed(DomainFAQ, err)
	}

	var (
		entry model.FaqEntry
		err   error
	)
	if form.EditingID != "" {
		entry, err = o.deps.Faqs.Update(form.EditingID, fields)
	} else {
		entry, err = o.deps.Faqs.Create(fields)
	}
	if err != nil {
		return model.FaqEntry{}, o.mutationFailed(DomainFAQ, err)
	}
	o.log.Info("faq saved", "id", entry.ID, "edit", form.EditingID != "")

	o.update(func(s *State) { s.FaqForm = FaqForm{} })
	_ = o.Load(ctx, DomainFAQ)
	return entry, nil
}

// DeleteFaq removes entry id after confirmation.
func (o *Orchestrator) DeleteFaq(ctx context.Context, id string, confirm ConfirmFunc) (bool, error) {
	if confirm == nil || !confirm(PromptDeleteFaq) {
		return false, nil
	}
	if err := o.requireSession(); err != nil {
		return false, o.mutationFailed(DomainFAQ, err)
	}
	if err := o.deps.Faqs.Delete(id); err != nil {
		return false, o.mutationFailed(DomainFAQ, err)
	}
	o.log.Info("faq deleted", "id", id)
	_ = o.Load(ctx, DomainFAQ)
	return true, nil
}

func (o *Orchestrator) requireSession() error {
	if _, ok := o.guard.Token(); !ok {
		return ErrNotAuthenticated
	}
	return nil
}

// mutationFailed sorts a write failure. Auth failures end the session.
func (o *Orchestrator) mutationFailed(d Domain, err error) error {
	switch Classify(err) {
	case KindAuth:
		o.log.Warn("session rejected, logging out", "domain", d.String(), "error", err)
		o.Logout()
		return &AuthError{Domain: d, Err: err}
	case KindUpload, KindValidation:
		o.log.Warn("mutation rejected", "domain", d.String(), "error", err)
		return err
	default:
		o.log.Error("mutation failed", "domain", d.String(), "error", err)
		return &DomainError{Domain: d, Err: err}
	}
}

// discard removes an uploaded image that no record ended up referencing.
func (o *Orchestrator) discard(ctx context.Context, url string) {
	if url == "" || o.deps.Uploader == nil {
		return
	}
	if err := o.deps.Uploader.Discard(context.WithoutCancel(ctx), url); err != nil {
		o.log.Warn("failed to discard orphaned image", "url", url, "error", err)
	}
}
