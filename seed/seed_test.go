package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/soundstage-events/backoffice/models"
	"github.com/soundstage-events/backoffice/store/storetest"
	"github.com/soundstage-events/backoffice/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const siteYAML = `
company:
  name: Soundstage Events
  email: hello@soundstage-events.com
  phone: "+63 917 000 0000"
  socials:
    facebook: https://facebook.com/soundstage
about:
  title: About us
  description: Sound and lights for every celebration.
  years_experience: 12
  highlights:
    - Line array systems
    - Moving heads
faqs:
  - question: Do you travel outside Metro Manila?
    answer: Yes, with a transport fee.
    display_order: 1
  - question: How much is the reservation fee?
    answer: 30% of the package price.
    display_order: 2
packages:
  - name: Basic Sound
    price: 8000
    inclusions: [2 speakers, 2 mics]
equipment:
  - name: JBL VRX932
    category: speakers
    quantity: 8
    available: true
`

func TestParse(t *testing.T) {
	site, err := Parse(strings.NewReader(siteYAML))
	require.NoError(t, err)

	require.NotNil(t, site.Company)
	assert.Equal(t, "Soundstage Events", site.Company.Name)
	assert.Equal(t, "https://facebook.com/soundstage", site.Company.Socials.Facebook)
	require.NotNil(t, site.About)
	assert.Equal(t, 12, site.About.YearsExperience)
	assert.Equal(t, []string{"Line array systems", "Moving heads"}, site.About.Highlights)
	require.Len(t, site.FAQs, 2)
	assert.Equal(t, 2, site.FAQs[1].DisplayOrder)
	require.Len(t, site.Packages, 1)
	assert.Equal(t, 8000.0, site.Packages[0].Price)
	require.Len(t, site.Equipment, 1)
	assert.True(t, site.Equipment[0].Available)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: "empty"},
		{name: "bad yaml", input: "company: [", want: "decode yaml"},
		{name: "unknown key", input: "pricing: []", want: "unknown field"},
		{name: "invalid faq", input: "faqs:\n  - question: Why?\n", want: "faqs[0]"},
		{name: "invalid company email", input: "company:\n  name: X\n  email: nope\n", want: "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := Parse(strings.NewReader("about:\n  title: About\n"))
	var ve *utils.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "description")
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	st := storetest.New()
	require.NoError(t, st.Company.Create(ctx, &models.Company{Name: "Old name"}))
	require.NoError(t, st.FAQs.Create(ctx, &models.FAQ{Question: "Do you travel outside Metro Manila?", Answer: "No"}))
	original := st.Company.All()[0]

	site, err := Parse(strings.NewReader(siteYAML))
	require.NoError(t, err)

	summary, err := Apply(ctx, st.Store, site)
	require.NoError(t, err)
	assert.Equal(t, &Summary{
		Company:   "updated",
		About:     "created",
		FAQs:      1,
		Packages:  1,
		Equipment: 1,
		Skipped:   1,
	}, summary)

	companies := st.Company.All()
	require.Len(t, companies, 1)
	assert.Equal(t, "Soundstage Events", companies[0].Name)
	assert.Equal(t, original.ID, companies[0].ID)
	assert.Equal(t, original.CreatedAt, companies[0].CreatedAt)

	faqs := st.FAQs.All()
	require.Len(t, faqs, 2)
	assert.Equal(t, "No", faqs[0].Answer)
	assert.Len(t, st.About.All(), 1)
	assert.Len(t, st.Packages.All(), 1)
	assert.Len(t, st.Equipment.All(), 1)

	again, err := Parse(strings.NewReader(siteYAML))
	require.NoError(t, err)
	summary, err = Apply(ctx, st.Store, again)
	require.NoError(t, err)
	assert.Equal(t, "updated", summary.About)
	assert.Equal(t, 4, summary.Skipped)
	assert.Len(t, st.FAQs.All(), 2)
}
