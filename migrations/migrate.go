package migrations

import (
	"github.com/DevForge-BG/discord-bot/models"
	"github.com/jinzhu/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Participant{}, &models.Project{}, &models.RepoMapping{}).Error
}
