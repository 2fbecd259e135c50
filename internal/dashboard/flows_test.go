package dashboard

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romeoalpha/admin/internal/model"
	"github.com/romeoalpha/admin/internal/storage"
)

func imageFile() *storage.File {
	return &storage.File{Name: "boat.jpg", Body: bytes.NewReader([]byte("jpeg"))}
}

// ---------------------------------------------------------------------------
// Marketplace
// ---------------------------------------------------------------------------

func TestSubmitMarketplaceItem_ValidationShortCircuits(t *testing.T) {
	tests := []struct {
		name  string
		draft MarketplaceDraft
		want  string
	}{
		{"no title", MarketplaceDraft{Description: "d"}, "Title and Description are required"},
		{"no description", MarketplaceDraft{Title: "t"}, "Title and Description are required"},
		{"blank title", MarketplaceDraft{Title: "   ", Description: "d"}, "Title and Description are required"},
		{"bad category", MarketplaceDraft{Title: "t", Description: "d", Category: "lease"}, "Category must be one of sale, hire, repair, scrap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.o.SetMarketplaceDraft(tt.draft)

			_, err := f.o.SubmitMarketplaceItem(context.Background(), imageFile())

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.want, verr.Message)
			assert.Zero(t, f.uploader.count("upload"))
			assert.Zero(t, f.marketplace.count("create"))
			assert.Zero(t, f.marketplace.count("list"))
		})
	}
}

func TestSubmitMarketplaceItem_CreateWithImage(t *testing.T) {
	f := newFixture()
	var got model.MarketplaceItemFields
	f.marketplace.createFunc = func(_ context.Context, fields model.MarketplaceItemFields) (model.MarketplaceItem, error) {
		got = fields
		return model.MarketplaceItem{ID: "l1", Title: fields.Title}, nil
	}
	f.o.ToggleMarketplaceForm()
	f.o.SetMarketplaceDraft(MarketplaceDraft{Title: "Tug", Description: "Twin screw", Category: model.CategoryHire, Price: "£500/day"})

	item, err := f.o.SubmitMarketplaceItem(context.Background(), imageFile())

	require.NoError(t, err)
	assert.Equal(t, "l1", item.ID)
	assert.Equal(t, model.MarketplaceItemFields{
		Title: "Tug", Description: "Twin screw", Category: model.CategoryHire,
		Price: "£500/day", ImageURL: "https://cdn/x.jpg",
	}, got)
	assert.Equal(t, 1, f.marketplace.count("list"))

	s := f.o.Snapshot()
	assert.Equal(t, emptyMarketplaceForm(), s.MarketplaceForm)
}

func TestSubmitMarketplaceItem_WithoutImage(t *testing.T) {
	f := newFixture()
	var got model.MarketplaceItemFields
	f.marketplace.createFunc = func(_ context.Context, fields model.MarketplaceItemFields) (model.MarketplaceItem, error) {
		got = fields
		return model.MarketplaceItem{ID: "l1"}, nil
	}
	f.o.SetMarketplaceDraft(MarketplaceDraft{Title: "Barge", Description: "Flat top"})

	_, err := f.o.SubmitMarketplaceItem(context.Background(), nil)

	require.NoError(t, err)
	assert.Zero(t, f.uploader.count("upload"))
	assert.Empty(t, got.ImageURL)
	assert.Equal(t, model.CategorySale, got.Category)
}

func TestSubmitMarketplaceItem_UploadFailureCreatesNothing(t *testing.T) {
	f := newFixture()
	f.uploader.uploadFunc = func(context.Context, storage.File) (string, error) {
		return "", &storage.UploadError{Reason: "unsupported content type text/plain"}
	}
	f.o.ToggleMarketplaceForm()
	f.o.SetMarketplaceDraft(MarketplaceDraft{Title: "t", Description: "d"})

	_, err := f.o.SubmitMarketplaceItem(context.Background(), imageFile())

	var uerr *UploadError
	require.ErrorAs(t, err, &uerr)
	assert.Zero(t, f.marketplace.count("create"))
	s := f.o.Snapshot()
	assert.True(t, s.MarketplaceForm.Open)
	assert.Equal(t, "t", s.MarketplaceForm.Title)
	assert.False(t, s.MarketplaceForm.Saving)
}

func TestSubmitMarketplaceItem_CreateFailureKeepsFormAndDiscardsImage(t *testing.T) {
	f := newFixture()
	f.marketplace.createFunc = func(context.Context, model.MarketplaceItemFields) (model.MarketplaceItem, error) {
		return model.MarketplaceItem{}, errors.New("duplicate key")
	}
	f.o.ToggleMarketplaceForm()
	f.o.SetMarketplaceDraft(MarketplaceDraft{Title: "t", Description: "d"})

	_, err := f.o.SubmitMarketplaceItem(context.Background(), imageFile())

	var derr *DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "Listing Error: duplicate key", derr.Error())
	assert.Equal(t, []string{"https://cdn/x.jpg"}, f.uploader.discarded)
	assert.Zero(t, f.marketplace.count("list"))
	s := f.o.Snapshot()
	assert.True(t, s.MarketplaceForm.Open)
	assert.Equal(t, "d", s.MarketplaceForm.Description)
}

func TestSubmitMarketplaceItem_AuthFailureLogsOut(t *testing.T) {
	f := newFixture()
	f.marketplace.createFunc = func(context.Context, model.MarketplaceItemFields) (model.MarketplaceItem, error) {
		return model.MarketplaceItem{}, errors.New("JWT expired")
	}
	f.o.SetMarketplaceDraft(MarketplaceDraft{Title: "t", Description: "d"})

	_, err := f.o.SubmitMarketplaceItem(context.Background(), nil)

	var aerr *AuthError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, 1, f.guard.logoutCount())
}

func TestSubmitMarketplaceItem_BusyWhileSaving(t *testing.T) {
	f := newFixture()
	started := make(chan struct{})
	release := make(chan struct{})
	f.marketplace.createFunc = func(context.Context, model.MarketplaceItemFields) (model.MarketplaceItem, error) {
		close(started)
		<-release
		return model.MarketplaceItem{ID: "l1"}, nil
	}
	f.o.SetMarketplaceDraft(MarketplaceDraft{Title: "t", Description: "d"})

	done := make(chan error, 1)
	go func() {
		_, err := f.o.SubmitMarketplaceItem(context.Background(), nil)
		done <- err
	}()
	<-started

	assert.True(t, f.o.Snapshot().MarketplaceForm.Saving)
	_, err := f.o.SubmitMarketplaceItem(context.Background(), nil)
	require.ErrorIs(t, err, ErrFormBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, f.marketplace.count("create"))
}

func TestEditMarketplaceItem_UpdatesAndKeepsImage(t *testing.T) {
	f := newFixture()
	f.marketplace.listFunc = func(context.Context) ([]model.MarketplaceItem, error) {
		return []model.MarketplaceItem{{ID: "l1", Title: "Old", Description: "d", Category: model.CategoryScrap, ImageURL: "https://cdn/old.jpg"}}, nil
	}
	require.NoError(t, f.o.Load(context.Background(), DomainMarketplace))

	require.NoError(t, f.o.EditMarketplaceItem("l1"))
	s := f.o.Snapshot()
	assert.True(t, s.MarketplaceForm.Open)
	assert.Equal(t, "Old", s.MarketplaceForm.Title)
	assert.Equal(t, model.CategoryScrap, s.MarketplaceForm.Category)

	var gotID string
	var got model.MarketplaceItemFields
	f.marketplace.updateFunc = func(_ context.Context, id string, fields model.MarketplaceItemFields) (model.MarketplaceItem, error) {
		gotID, got = id, fields
		return model.MarketplaceItem{ID: id}, nil
	}
	f.o.SetMarketplaceDraft(MarketplaceDraft{Title: "New", Description: "d", Category: model.CategoryScrap})

	_, err := f.o.SubmitMarketplaceItem(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, "l1", gotID)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, "https://cdn/old.jpg", got.ImageURL)
	assert.Zero(t, f.marketplace.count("create"))
	assert.Empty(t, f.o.Snapshot().MarketplaceForm.EditingID)
}

func TestEditMarketplaceItem_Unknown(t *testing.T) {
	f := newFixture()
	require.ErrorIs(t, f.o.EditMarketplaceItem("missing"), ErrUnknownRecord)
}

func TestCancelMarketplaceForm(t *testing.T) {
	f := newFixture()
	f.o.ToggleMarketplaceForm()
	f.o.SetMarketplaceDraft(MarketplaceDraft{Title: "kept"})

	f.o.CancelMarketplaceForm()

	s := f.o.Snapshot()
	assert.False(t, s.MarketplaceForm.Open)
	assert.Equal(t, "kept", s.MarketplaceForm.Title)
}

func TestDeleteMarketplaceItem(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		f := newFixture()
		var prompt string
		done, err := f.o.DeleteMarketplaceItem(context.Background(), "l1", func(p string) bool {
			prompt = p
			return false
		})
		require.NoError(t, err)
		assert.False(t, done)
		assert.Equal(t, "Are you sure you want to delete this item?", prompt)
		assert.Zero(t, f.marketplace.count("delete"))
		assert.Zero(t, f.marketplace.count("list"))
	})
	t.Run("confirmed", func(t *testing.T) {
		f := newFixture()
		var gotID string
		f.marketplace.deleteFunc = func(_ context.Context, id string) error {
			gotID = id
			return nil
		}
		done, err := f.o.DeleteMarketplaceItem(context.Background(), "l1", yes)
		require.NoError(t, err)
		assert.True(t, done)
		assert.Equal(t, "l1", gotID)
		assert.Equal(t, 1, f.marketplace.count("list"))
	})
	t.Run("failure", func(t *testing.T) {
		f := newFixture()
		f.marketplace.deleteFunc = func(context.Context, string) error { return errors.New("foreign key") }
		done, err := f.o.DeleteMarketplaceItem(context.Background(), "l1", yes)
		require.EqualError(t, err, "Listing Error: foreign key")
		assert.False(t, done)
		assert.Zero(t, f.marketplace.count("list"))
	})
}

// ---------------------------------------------------------------------------
// Ads
// ---------------------------------------------------------------------------

func TestSubmitAd_RequiresTitleAndImage(t *testing.T) {
	tests := []struct {
		name  string
		title string
		file  *storage.File
	}{
		{"no file", "Spring Promo", nil},
		{"no title", "", imageFile()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.o.SetAdDraft(tt.title, "")

			_, err := f.o.SubmitAd(context.Background(), tt.file)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "Title and Image are required", verr.Message)
			assert.Zero(t, f.uploader.count("upload"))
			assert.Zero(t, f.ads.count("create"))
		})
	}
}

func TestSubmitAd_UploadsThenCreates(t *testing.T) {
	f := newFixture()
	var got model.AdFields
	f.ads.createFunc = func(_ context.Context, fields model.AdFields) (model.Ad, error) {
		got = fields
		return model.Ad{ID: "ad-1", Title: fields.Title, ImageURL: fields.ImageURL}, nil
	}
	f.o.ToggleAdForm()
	f.o.SetAdDraft("Spring Promo", "")

	ad, err := f.o.SubmitAd(context.Background(), imageFile())

	require.NoError(t, err)
	assert.Equal(t, "ad-1", ad.ID)
	assert.Equal(t, model.AdFields{Title: "Spring Promo", LinkURL: "", ImageURL: "https://cdn/x.jpg"}, got)
	assert.Equal(t, 1, f.uploader.count("upload"))
	assert.Equal(t, 1, f.ads.count("list"))
	assert.Equal(t, AdForm{}, f.o.Snapshot().AdForm)
}

func TestSubmitAd_UploadFailure(t *testing.T) {
	f := newFixture()
	f.uploader.uploadFunc = func(context.Context, storage.File) (string, error) {
		return "", &storage.UploadError{Reason: "file is empty"}
	}
	f.o.SetAdDraft("Promo", "https://example.com")

	_, err := f.o.SubmitAd(context.Background(), imageFile())

	var uerr *UploadError
	require.ErrorAs(t, err, &uerr)
	assert.Zero(t, f.ads.count("create"))
	assert.Equal(t, "Promo", f.o.Snapshot().AdForm.Title)
}

func TestSubmitAd_StorageCredentialFailureKeepsSession(t *testing.T) {
	f := newFixture()
	f.uploader.uploadFunc = func(context.Context, storage.File) (string, error) {
		return "", &storage.UploadError{
			Reason: "store image",
			Err:    errors.New("api error InvalidToken: The provided token is malformed or otherwise invalid"),
		}
	}
	f.o.ToggleAdForm()
	f.o.SetAdDraft("Spring Promo", "")

	_, err := f.o.SubmitAd(context.Background(), imageFile())

	var uerr *UploadError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, KindUpload, Classify(err))
	assert.Zero(t, f.guard.logoutCount())
	form := f.o.Snapshot().AdForm
	assert.True(t, form.Open)
	assert.Equal(t, "Spring Promo", form.Title)
	assert.False(t, form.Saving)
}

func TestSubmitAd_ReloadGetsItsOwnDeadline(t *testing.T) {
	f := newFixture(WithRequestTimeout(30 * time.Millisecond))
	f.ads.createFunc = func(ctx context.Context, fields model.AdFields) (model.Ad, error) {
		<-ctx.Done()
		return model.Ad{ID: "ad-1", Title: fields.Title, ImageURL: fields.ImageURL}, nil
	}
	f.ads.listFunc = func(ctx context.Context) ([]model.Ad, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []model.Ad{{ID: "ad-1"}}, nil
	}
	f.o.SetAdDraft("Spring Promo", "")

	_, err := f.o.SubmitAd(context.Background(), imageFile())

	require.NoError(t, err)
	s := f.o.Snapshot()
	assert.Empty(t, s.Errors[DomainAds])
	require.Len(t, s.Ads, 1)
}

func TestSubmitAd_CreateFailureDiscardsImage(t *testing.T) {
	f := newFixture()
	f.ads.createFunc = func(context.Context, model.AdFields) (model.Ad, error) {
		return model.Ad{}, errors.New("quota exceeded")
	}
	f.o.SetAdDraft("Promo", "")

	_, err := f.o.SubmitAd(context.Background(), imageFile())

	require.EqualError(t, err, "Ads Error: quota exceeded")
	assert.Equal(t, []string{"https://cdn/x.jpg"}, f.uploader.discarded)
	assert.Zero(t, f.ads.count("list"))
}

func TestDeleteAd(t *testing.T) {
	f := newFixture()

	done, err := f.o.DeleteAd(context.Background(), "ad-1", no)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Zero(t, f.ads.count("delete"))

	done, err = f.o.DeleteAd(context.Background(), "ad-1", yes)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 1, f.ads.count("delete"))
	assert.Equal(t, 1, f.ads.count("list"))
}

func TestDeleteAd_NilConfirmIsDeclined(t *testing.T) {
	f := newFixture()
	done, err := f.o.DeleteAd(context.Background(), "ad-1", nil)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Zero(t, f.ads.count("delete"))
}

// ---------------------------------------------------------------------------
// FAQ
// ---------------------------------------------------------------------------

func TestSaveFaq_Validation(t *testing.T) {
	f := newFixture()
	f.o.SetFaqDraft("Do you tow?", "")

	_, err := f.o.SaveFaq(context.Background())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Question and Answer are required", verr.Message)
	assert.Zero(t, f.faqs.count("create"))
	assert.Zero(t, f.faqs.count("update"))
}

func TestSaveFaq_CreateResetsForm(t *testing.T) {
	f := newFixture()
	f.o.ToggleFaqForm()
	f.o.SetFaqDraft("Do you tow?", "Yes, up to 500t.")

	entry, err := f.o.SaveFaq(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Do you tow?", entry.Question)
	assert.Equal(t, 1, f.faqs.count("create"))
	assert.Equal(t, 1, f.faqs.count("list"))
	assert.Equal(t, FaqForm{}, f.o.Snapshot().FaqForm)
}

func TestSaveFaq_EditCallsUpdate(t *testing.T) {
	f := newFixture()
	f.faqs.listFunc = func() ([]model.FaqEntry, error) {
		return []model.FaqEntry{{ID: "q1", Question: "Q", Answer: "A"}}, nil
	}
	require.NoError(t, f.o.SelectTab(context.Background(), TabFAQ))

	require.NoError(t, f.o.EditFaq("q1"))
	s := f.o.Snapshot()
	assert.Equal(t, FaqForm{Open: true, EditingID: "q1", Question: "Q", Answer: "A"}, s.FaqForm)

	var gotID string
	f.faqs.updateFunc = func(id string, fields model.FaqFields) (model.FaqEntry, error) {
		gotID = id
		return model.FaqEntry{ID: id, Question: fields.Question, Answer: fields.Answer}, nil
	}
	f.o.SetFaqDraft("Q", "A2")

	_, err := f.o.SaveFaq(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "q1", gotID)
	assert.Zero(t, f.faqs.count("create"))
	assert.Equal(t, FaqForm{}, f.o.Snapshot().FaqForm)
}

func TestSaveFaq_StoreFailure(t *testing.T) {
	f := newFixture()
	f.faqs.createFunc = func(model.FaqFields) (model.FaqEntry, error) {
		return model.FaqEntry{}, errors.New("disk full")
	}
	f.o.SetFaqDraft("Q", "A")

	_, err := f.o.SaveFaq(context.Background())

	require.EqualError(t, err, "FAQ Error: disk full")
	assert.Equal(t, "Q", f.o.Snapshot().FaqForm.Question)
}

func TestFaqForm_ToggleAndCancel(t *testing.T) {
	f := newFixture()
	f.o.ToggleFaqForm()
	f.o.SetFaqDraft("Q", "A")
	assert.True(t, f.o.Snapshot().FaqForm.Open)

	f.o.CancelFaqForm()
	assert.Equal(t, FaqForm{}, f.o.Snapshot().FaqForm)
}

func TestDeleteFaq(t *testing.T) {
	f := newFixture()
	var prompt string
	done, err := f.o.DeleteFaq(context.Background(), "q1", func(p string) bool {
		prompt = p
		return true
	})
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, "Are you sure you want to delete this FAQ?", prompt)
	assert.Equal(t, 1, f.faqs.count("delete"))
	assert.Equal(t, 1, f.faqs.count("list"))
}
