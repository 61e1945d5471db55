package models

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// User mirrors an identity-provider account. Authentication itself is
// delegated; we only persist the verified subject.
type User struct {
	BaseModel

	GUID     uuid.UUID `gorm:"size:36" json:"guid"`
	Subject  string    `gorm:"uniqueIndex;size:64" json:"-"`
	Email    string    `gorm:"size:64" json:"-"`
	Username string    `gorm:"size:32" json:"username"`
}

func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	user.GUID = uuid.New()
	return
}

// GetOrCreateUser resolves the caller from verified token claims,
// creating the row on first sight.
func GetOrCreateUser(ctx context.Context, db *gorm.DB, subject, email, username string) (*User, error) {
	ctx, sp := Tracer.Start(ctx, "get-or-create-user")
	defer sp.End()

	if subject == "" {
		return nil, GameError("missing-subject")
	}

	var user User
	err := db.WithContext(ctx).Where("subject = ?", subject).First(&user).Error
	if err == nil {
		return &user, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if username == "" {
		if at := strings.Index(email, "@"); at > 0 {
			username = email[:at]
		} else {
			username = subject
		}
	}

	user = User{Subject: subject, Email: email, Username: username}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	log.Info().Msg("Created user " + user.Username)
	return &user, nil
}

func LoadUser(ctx context.Context, db *gorm.DB, id uint) (*User, error) {
	var user User
	err := db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}
