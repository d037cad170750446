package db

import (
	types "github.com/yungbote/wrongbook-backend/internal/domain"
)

func (s *Service) AutoMigrateAll() error {
	return s.db.AutoMigrate(
		// Identity + auth
		&types.User{},
		&types.UserToken{},

		// Taxonomy
		&types.Tag{},

		// Content
		&types.MistakeItem{},
	)
}
