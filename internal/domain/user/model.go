package user

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const RoleAdmin = "admin"

type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Roles        []string
}

func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

type Repository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
