package domain

import (
	"github.com/yungbote/wrongbook-backend/internal/domain/auth"
	"github.com/yungbote/wrongbook-backend/internal/domain/content"
	"github.com/yungbote/wrongbook-backend/internal/domain/taxonomy"
	"github.com/yungbote/wrongbook-backend/internal/domain/user"
)

type User = user.User
type UserToken = auth.UserToken

type Subject = taxonomy.Subject
type Tag = taxonomy.Tag

type MistakeItem = content.MistakeItem

const (
	RoleStudent = user.RoleStudent
	RoleAdmin   = user.RoleAdmin

	SubjectMath    = taxonomy.SubjectMath
	SubjectPhysics = taxonomy.SubjectPhysics
)
