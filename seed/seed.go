// Package seed loads initial site content from a YAML file.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/soundstage-events/backoffice/models"
	"github.com/soundstage-events/backoffice/store"
	"github.com/soundstage-events/backoffice/utils"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Site is the content of a seed file. Keys follow the JSON field names of the API.
type Site struct {
	Company   *models.Company    `json:"company"`
	About     *models.About      `json:"about"`
	FAQs      []models.FAQ       `json:"faqs"`
	Packages  []models.Package   `json:"packages"`
	Equipment []models.Equipment `json:"equipment"`
}

// Summary counts what Apply changed.
type Summary struct {
	Company   string `json:"company,omitempty"`
	About     string `json:"about,omitempty"`
	FAQs      int    `json:"faqs_inserted"`
	Packages  int    `json:"packages_inserted"`
	Equipment int    `json:"equipment_inserted"`
	Skipped   int    `json:"skipped"`
}

// Parse decodes and validates a seed file.
func Parse(r io.Reader) (*Site, error) {
	var raw map[string]interface{}
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("seed file is empty")
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	// The models carry json tags only, so YAML goes through JSON to reach them.
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("convert yaml: %w", err)
	}
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.DisallowUnknownFields()
	var site Site
	if err := dec.Decode(&site); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	if site.Company != nil {
		if err := utils.ValidateStruct(site.Company); err != nil {
			return nil, fmt.Errorf("company: %w", err)
		}
	}
	if site.About != nil {
		if err := utils.ValidateStruct(site.About); err != nil {
			return nil, fmt.Errorf("about: %w", err)
		}
	}
	for i := range site.FAQs {
		if err := utils.ValidateStruct(&site.FAQs[i]); err != nil {
			return nil, fmt.Errorf("faqs[%d]: %w", i, err)
		}
	}
	for i := range site.Packages {
		if err := utils.ValidateStruct(&site.Packages[i]); err != nil {
			return nil, fmt.Errorf("packages[%d]: %w", i, err)
		}
	}
	for i := range site.Equipment {
		if err := utils.ValidateStruct(&site.Equipment[i]); err != nil {
			return nil, fmt.Errorf("equipment[%d]: %w", i, err)
		}
	}
	return &site, nil
}

// Apply writes site into st. Company and about replace the first stored document,
// list entries are inserted unless one with the same name (or question) exists.
func Apply(ctx context.Context, st *store.Store, site *Site) (*Summary, error) {
	summary := &Summary{}
	var err error

	if site.Company != nil {
		if summary.Company, err = upsertSingleton(ctx, st.Company, site.Company); err != nil {
			return nil, fmt.Errorf("company: %w", err)
		}
	}
	if site.About != nil {
		if summary.About, err = upsertSingleton(ctx, st.About, site.About); err != nil {
			return nil, fmt.Errorf("about: %w", err)
		}
	}

	inserted, skipped, err := insertMissing(ctx, st.FAQs, site.FAQs, func(f *models.FAQ) (string, string) { return "question", f.Question })
	if err != nil {
		return nil, fmt.Errorf("faqs: %w", err)
	}
	summary.FAQs, summary.Skipped = inserted, summary.Skipped+skipped

	inserted, skipped, err = insertMissing(ctx, st.Packages, site.Packages, func(p *models.Package) (string, string) { return "name", p.Name })
	if err != nil {
		return nil, fmt.Errorf("packages: %w", err)
	}
	summary.Packages, summary.Skipped = inserted, summary.Skipped+skipped

	inserted, skipped, err = insertMissing(ctx, st.Equipment, site.Equipment, func(e *models.Equipment) (string, string) { return "name", e.Name })
	if err != nil {
		return nil, fmt.Errorf("equipment: %w", err)
	}
	summary.Equipment, summary.Skipped = inserted, summary.Skipped+skipped

	utils.Logger.Info("seed applied",
		zap.String("company", summary.Company),
		zap.String("about", summary.About),
		zap.Int("faqs", summary.FAQs),
		zap.Int("packages", summary.Packages),
		zap.Int("equipment", summary.Equipment),
		zap.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

func upsertSingleton[T any, PT models.Doc[T]](ctx context.Context, repo store.Repository[T], doc *T) (string, error) {
	existing, _, err := repo.List(ctx, store.ListOptions{
		Sort:  []store.SortField{{Key: "created_at"}},
		Limit: 1,
	})
	if err != nil {
		return "", err
	}
	if len(existing) == 0 {
		if err := repo.Create(ctx, doc); err != nil {
			return "", err
		}
		return "created", nil
	}

	current := PT(&existing[0]).Meta()
	PT(doc).Meta().CreatedAt = current.CreatedAt
	if err := repo.Update(ctx, current.ID, doc); err != nil {
		return "", err
	}
	return "updated", nil
}

func insertMissing[T any, PT models.Doc[T]](ctx context.Context, repo store.Repository[T], docs []T, key func(*T) (string, string)) (inserted, skipped int, err error) {
	for i := range docs {
		field, value := key(&docs[i])
		_, total, err := repo.List(ctx, store.ListOptions{
			Filter: map[string]interface{}{field: value},
			Limit:  1,
		})
		if err != nil {
			return inserted, skipped, err
		}
		if total > 0 {
			skipped++
			continue
		}
		if err := repo.Create(ctx, &docs[i]); err != nil {
			return inserted, skipped, err
		}
		inserted++
	}
	return inserted, skipped, nil
}
