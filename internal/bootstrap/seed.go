package bootstrap

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"lentera.id/elearning/internal/model"
	"lentera.id/elearning/internal/repository"
	pkgvalidator "lentera.id/elearning/pkg/validator"
)

// badgeFeedEntry is one record of the external badge catalog feed.
type badgeFeedEntry struct {
	Slug            string `json:"slug" validate:"required,min=3,max=100"`
	Name            string `json:"name" validate:"required,max=100"`
	Description     string `json:"description"`
	Icon            string `json:"icon"`
	Category        string `json:"category" validate:"required,oneof=MILESTONE STREAK MASTERY SPECIAL"`
	RequirementType string `json:"requirement_type" validate:"required,oneof=lessons_completed streak_days level total_xp special"`
	Threshold       int    `json:"threshold" validate:"min=0"`
	XPReward        int    `json:"xp_reward" validate:"min=0"`
	IsSecret        bool   `json:"is_secret"`
}

// SeedBadgeCatalog loads the badge feed file and upserts every valid entry
// by slug. A malformed entry is skipped and logged; the rest of the batch
// continues.
func SeedBadgeCatalog(badgeRepo repository.BadgeRepository, path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("⚠️ Badge catalog feed %s not found, skipping seed", path)
			return nil
		}
		return fmt.Errorf("failed to read badge catalog %s: %w", path, err)
	}

	var entries []badgeFeedEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return fmt.Errorf("failed to parse badge catalog %s: %w", path, err)
	}

	validate := validator.New()
	upserted, skipped := 0, 0

	for _, entry := range entries {
		if err := validate.Struct(entry); err != nil {
			skipped++
			log.Printf("⚠️ Skipping invalid badge %q: %s", entry.Slug, pkgvalidator.FormatValidationError(err))
			continue
		}

		badge := &model.Badge{
			Slug:            entry.Slug,
			Name:            entry.Name,
			Description:     entry.Description,
			Icon:            entry.Icon,
			Category:        model.BadgeCategory(entry.Category),
			RequirementType: model.RequirementType(entry.RequirementType),
			Threshold:       entry.Threshold,
			XPReward:        entry.XPReward,
			IsSecret:        entry.IsSecret,
		}
		if err := badgeRepo.UpsertBySlug(badge); err != nil {
			return fmt.Errorf("failed to upsert badge %q: %w", entry.Slug, err)
		}
		upserted++
	}

	log.Printf("✅ Badge catalog seeded: %d upserted, %d skipped", upserted, skipped)
	return nil
}
