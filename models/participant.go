package models

// Participant is a community member. IsActive marks accepted students;
// applicants exist as rows before they are accepted.
type Participant struct {
	ID             string `gorm:"primary_key"`
	GithubUsername string
	IsActive       bool `gorm:"not null"`
}
