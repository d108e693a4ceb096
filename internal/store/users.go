package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials 用户名或密码错误
var ErrInvalidCredentials = errors.New("invalid username or password")

// User 后台用户
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// CreateUser 创建后台用户，密码以 bcrypt 哈希保存
func (s *Store) CreateUser(ctx context.Context, username, password string) (*User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	query, returnsID := s.dialect.InsertQuery("users", []string{"username", "password_hash", "created_at"})
	args := []any{username, string(hash), time.Now()}

	var id int64
	if returnsID {
		err = s.db.QueryRowContext(ctx, query, args...).Scan(&id)
	} else {
		var res sql.Result
		if res, err = s.db.ExecContext(ctx, query, args...); err == nil {
			id, err = res.LastInsertId()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", username, err)
	}
	return &User{ID: id, Username: username}, nil
}

// Authenticate 校验用户名密码
func (s *Store) Authenticate(ctx context.Context, username, password string) (*User, error) {
	b := NewBuilder(s.dialect).Raw("SELECT id, password_hash FROM users").Where(Eq("username", username))

	var u User
	var hash string
	err := s.db.QueryRowContext(ctx, b.String(), b.Args()...).Scan(&u.ID, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	u.Username = username
	return &u, nil
}
