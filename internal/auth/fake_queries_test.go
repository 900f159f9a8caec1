package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	db "github.com/noah-isme/backend-presupuesto/internal/db/gen"
)

type fakeQueries struct {
	mu       sync.Mutex
	users    map[string]db.User
	sessions map[string]db.Session
}

func newFakeQueries() *fakeQueries {
	return &fakeQueries{
		users:    make(map[string]db.User),
		sessions: make(map[string]db.Session),
	}
}

func newPgUUID() pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.New(), Valid: true}
}

func (f *fakeQueries) CreateUser(_ context.Context, arg db.CreateUserParams) (db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Username, arg.Username) {
			return db.User{}, &pgconn.PgError{Code: "23505"}
		}
	}
	now := pgtype.Timestamptz{Time: time.Now(), Valid: true}
	user := db.User{
		ID:           newPgUUID(),
		Username:     arg.Username,
		Email:        arg.Email,
		PasswordHash: arg.PasswordHash,
		FirstName:    arg.FirstName,
		LastName:     arg.LastName,
		Role:         arg.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.users[uuidString(user.ID)] = user
	return user, nil
}

func (f *fakeQueries) GetUserByUsername(_ context.Context, username string) (db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return db.User{}, pgx.ErrNoRows
}

func (f *fakeQueries) GetUserByID(_ context.Context, id pgtype.UUID) (db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[uuidString(id)]
	if !ok {
		return db.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (f *fakeQueries) CreateSession(_ context.Context, arg db.CreateSessionParams) (db.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session := db.Session{
		ID:           newPgUUID(),
		UserID:       arg.UserID,
		RefreshToken: arg.RefreshToken,
		UserAgent:    arg.UserAgent,
		Ip:           arg.Ip,
		ExpiresAt:    arg.ExpiresAt,
		CreatedAt:    pgtype.Timestamptz{Time: time.Now(), Valid: true},
	}
	f.sessions[arg.RefreshToken] = session
	return session, nil
}

func (f *fakeQueries) GetSessionByToken(_ context.Context, refreshToken string) (db.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[refreshToken]
	if !ok {
		return db.Session{}, pgx.ErrNoRows
	}
	return s, nil
}

func (f *fakeQueries) RotateSessionToken(_ context.Context, arg db.RotateSessionTokenParams) (db.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, s := range f.sessions {
		if s.ID == arg.ID {
			delete(f.sessions, key)
			s.RefreshToken = arg.RefreshToken
			s.ExpiresAt = arg.ExpiresAt
			f.sessions[arg.RefreshToken] = s
			return s, nil
		}
	}
	return db.Session{}, pgx.ErrNoRows
}

func (f *fakeQueries) DeleteSessionByToken(_ context.Context, refreshToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, refreshToken)
	return nil
}

func (f *fakeQueries) sessionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}
