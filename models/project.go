package models

import "time"

type ProjectStatus string

const (
	StatusInProgress     ProjectStatus = "in_progress"
	StatusAwaitingReview ProjectStatus = "awaiting_review"
	StatusApproved       ProjectStatus = "approved"
)

// Terminal reports whether no transition may leave this status.
func (s ProjectStatus) Terminal() bool {
	return s == StatusApproved
}

type Project struct {
	ID        uint   `gorm:"AUTO_INCREMENT"`
	OwnerID   string `gorm:"not null"`
	ChannelID string `gorm:"not null"`
	Title     string `gorm:"not null"`
	RepoURL   string
	Status    ProjectStatus `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
