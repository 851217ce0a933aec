package models

// RepoMapping routes push events for a repository to a channel. The first
// registration for a repository wins; later ones are ignored.
type RepoMapping struct {
	ID           uint   `gorm:"AUTO_INCREMENT"`
	RepoFullName string `gorm:"not null;unique"`
	ChannelID    string `gorm:"not null"`
}
