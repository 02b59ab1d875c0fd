package models

import "time"

// Match is a football fixture fans can watch, predict and duel on.
// Demo fixtures are seeded for environments without a live data feed.
type Match struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Slug     string `gorm:"uniqueIndex;not null" json:"slug"`
	HomeTeam string `gorm:"not null" json:"home_team"`
	AwayTeam string `gorm:"not null" json:"away_team"`
	Country  string `gorm:"index" json:"country"`
	League   string `json:"league,omitempty"`

	KickoffAt time.Time `json:"kickoff_at"`
	Status    string    `gorm:"type:varchar(16);default:'scheduled'" json:"status"` // scheduled/live/finished

	BannerURL string `gorm:"type:text" json:"banner_url,omitempty"`
	Demo      bool   `gorm:"default:false;index" json:"demo"`

	Timestamps
}
