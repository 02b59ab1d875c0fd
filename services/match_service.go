// services/match_service.go
package services

import (
	"strings"
	"time"

	"fanfi-engagement-service/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

type MatchService struct {
	DB *gorm.DB
}

func NewMatchService(db *gorm.DB) *MatchService {
	return &MatchService{DB: db}
}

var countryTitle = cases.Title(language.English)

// NormalizeCountry folds "brazil", "BRAZIL" and " Brazil " to "Brazil" so the
// country filter matches however the client spells it.
func NormalizeCountry(country string) string {
	return countryTitle.String(strings.ToLower(strings.TrimSpace(country)))
}

// List returns fixtures, optionally filtered by country and demo mode
func (s *MatchService) List(country string, demoOnly bool) ([]models.Match, error) {
	query := s.DB.Order("kickoff_at ASC")
	if country != "" {
		query = query.Where("country = ?", NormalizeCountry(country))
	}
	if demoOnly {
		query = query.Where("demo = ?", true)
	}

	var matches []models.Match
	if err := query.Find(&matches).Error; err != nil {
		return nil, err
	}
	return matches, nil
}

// Create adds a fixture (admin). Slug is derived from the teams and kickoff date.
func (s *MatchService) Create(homeTeam, awayTeam, country, league string, kickoffAt time.Time, bannerURL string, demo bool) (*models.Match, error) {
	match := &models.Match{
		ID:        uuid.NewString(),
		Slug:      slug.Make(homeTeam + "-vs-" + awayTeam + "-" + kickoffAt.Format("2006-01-02")),
		HomeTeam:  homeTeam,
		AwayTeam:  awayTeam,
		Country:   NormalizeCountry(country),
		League:    league,
		KickoffAt: kickoffAt,
		BannerURL: bannerURL,
		Demo:      demo,
	}
	if err := s.DB.Create(match).Error; err != nil {
		return nil, err
	}
	return match, nil
}
