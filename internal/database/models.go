package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type ResumeUpload struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	OriginalFilename string
	Mime             string
	SizeBytes        int64
	ObjectKey        string
	Status           string
	SkillsAdded      int32
	Error            sql.NullString
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type UserCompetency struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	CompetencyName string
	Rating         int32
	UpdatedAt      time.Time
}

type UserSkill struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Skill     string
	CreatedAt time.Time
}
