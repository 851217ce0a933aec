package store

import (
	"fmt"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"

	"github.com/DevForge-BG/discord-bot/models"
)

// Store is the single source of truth for participants, projects and
// repository mappings. Every mutation touches one row; failures propagate to
// the caller.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the sqlite database backing the store.
func Open(path string) (*gorm.DB, error) {
	return gorm.Open("sqlite3", path)
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// UpsertParticipant records or updates a member's GitHub handle, preserving
// the active flag on re-application.
func (s *Store) UpsertParticipant(id, githubUsername string) error {
	var p models.Participant
	if err := s.db.FirstOrCreate(&p, models.Participant{ID: id}).Error; err != nil {
		return err
	}
	return s.db.Model(&p).Update("github_username", githubUsername).Error
}

// ActivateParticipant marks a member as an active student, creating the row
// if they never applied.
func (s *Store) ActivateParticipant(id string) error {
	var p models.Participant
	if err := s.db.FirstOrCreate(&p, models.Participant{ID: id}).Error; err != nil {
		return err
	}
	return s.db.Model(&p).Update("is_active", true).Error
}

// FindParticipant returns nil, nil when the member has no row.
func (s *Store) FindParticipant(id string) (*models.Participant, error) {
	var p models.Participant
	err := s.db.Where("id = ?", id).First(&p).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// RecordProject creates a project row in its initial status.
func (s *Store) RecordProject(ownerID, channelID, title, repoURL string) (uint, error) {
	p := models.Project{
		OwnerID:   ownerID,
		ChannelID: channelID,
		Title:     title,
		RepoURL:   repoURL,
		Status:    models.StatusInProgress,
	}
	if err := s.db.Create(&p).Error; err != nil {
		return 0, err
	}
	return p.ID, nil
}

// FindLatestProjectByChannel resolves "the project for this channel" as the
// most recently created row. A second project assigned into the same channel
// shadows the first for future transitions. Returns nil, nil when the
// channel has no project.
func (s *Store) FindLatestProjectByChannel(channelID string) (*models.Project, error) {
	var p models.Project
	err := s.db.Where("channel_id = ?", channelID).Order("id desc").First(&p).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SetProjectStatus fails when the project row does not exist, so a stale id
// never reports a transition that went nowhere.
func (s *Store) SetProjectStatus(projectID uint, status models.ProjectStatus) error {
	res := s.db.Model(&models.Project{ID: projectID}).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("no project with id %d", projectID)
	}
	return nil
}

// RegisterRepoMapping routes a repository to a channel. First write wins: if
// the repository is already mapped, the existing destination is kept.
func (s *Store) RegisterRepoMapping(repoFullName, channelID string) error {
	var m models.RepoMapping
	return s.db.Where(models.RepoMapping{RepoFullName: repoFullName}).
		Attrs(models.RepoMapping{ChannelID: channelID}).
		FirstOrCreate(&m).Error
}

// LookupChannelForRepo returns "" when the repository has no mapping.
func (s *Store) LookupChannelForRepo(repoFullName string) (string, error) {
	var m models.RepoMapping
	err := s.db.Where("repo_full_name = ?", repoFullName).First(&m).Error
	if gorm.IsRecordNotFoundError(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return m.ChannelID, nil
}
