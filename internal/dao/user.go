package dao

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/tokencrypt-go/internal/storage"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrUserExists      = errors.New("user already exists")
)

const (
	pbkdf2Iterations = 100000
	pbkdf2KeyLen     = 32
	saltLen          = 16

	DefaultUsername = "admin"
	DefaultPassword = "admin"
)

// User represents a service account
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Salt         string `json:"salt"`
	Iterations   int    `json:"iterations"`
}

// UserDAO handles user data access
type UserDAO struct {
	store *storage.Store
}

// NewUserDAO creates a new user DAO
func NewUserDAO(store *storage.Store) *UserDAO {
	return &UserDAO{store: store}
}

func hashPassword(password string, salt []byte, iterations int) string {
	return hex.EncodeToString(pbkdf2.Key([]byte(password), salt, iterations, pbkdf2KeyLen, sha256.New))
}

func newUser(username, password string) (*User, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return &User{
		Username:     username,
		PasswordHash: hashPassword(password, salt, pbkdf2Iterations),
		Salt:         hex.EncodeToString(salt),
		Iterations:   pbkdf2Iterations,
	}, nil
}

func (u *User) checkPassword(password string) bool {
	salt, err := hex.DecodeString(u.Salt)
	if err != nil {
		return false
	}
	got := hashPassword(password, salt, u.Iterations)
	return subtle.ConstantTimeCompare([]byte(got), []byte(u.PasswordHash)) == 1
}

// Create creates a new user
func (d *UserDAO) Create(username, password string) error {
	var existing User
	if err := d.store.GetJSON(storage.BucketUsers, username, &existing); err != nil {
		return err
	}
	if existing.Username != "" {
		return ErrUserExists
	}

	user, err := newUser(username, password)
	if err != nil {
		return err
	}
	return d.store.SetJSON(storage.BucketUsers, username, user)
}

// Validate validates user credentials
func (d *UserDAO) Validate(username, password string) error {
	user, err := d.Get(username)
	if err != nil {
		return err
	}
	if !user.checkPassword(password) {
		return ErrInvalidPassword
	}
	return nil
}

// Get retrieves a user
func (d *UserDAO) Get(username string) (*User, error) {
	var user User
	if err := d.store.GetJSON(storage.BucketUsers, username, &user); err != nil {
		return nil, err
	}
	if user.Username == "" {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// UpdatePassword updates a user's password with a fresh salt
func (d *UserDAO) UpdatePassword(username, newPassword string) error {
	if _, err := d.Get(username); err != nil {
		return err
	}
	user, err := newUser(username, newPassword)
	if err != nil {
		return err
	}
	return d.store.SetJSON(storage.BucketUsers, username, user)
}

// Delete deletes a user
func (d *UserDAO) Delete(username string) error {
	return d.store.Delete(storage.BucketUsers, username)
}

// EnsureDefaultUser ensures default admin user exists
func (d *UserDAO) EnsureDefaultUser() error {
	err := d.Create(DefaultUsername, DefaultPassword)
	if errors.Is(err, ErrUserExists) {
		return nil
	}
	return err
}
