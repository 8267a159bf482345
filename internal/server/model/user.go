package model

import (
	"crypto/sha256"
	"encoding/hex"

	"gorm.io/gorm"
)

// user roles
const (
	RoleViewer   = "viewer"
	RoleExecutor = "executor"
)

type User struct {
	gorm.Model
	Username string `gorm:"type:varchar(255);uniqueIndex;not null"`
	Password string `gorm:"type:varchar(255);not null"` // sha256 hex
	Role     string `gorm:"type:varchar(20);not null;default:'viewer'"`
}

func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (u *User) CheckPassword(password string) bool {
	return u.Password == HashPassword(password)
}
