package devserver

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/campusconnect/loginflow/internal/pkg/clock"
)

var (
	errDuplicateEmail   = errors.New("email already registered")
	errUserNotFound     = errors.New("user not found")
	errNoChallenge      = errors.New("no pending challenge")
	errChallengeExpired = errors.New("challenge expired")
	errCodeMismatch     = errors.New("code mismatch")
)

// maxChallengeAttempts is how many wrong codes are tolerated before the
// challenge is discarded and a fresh one must be requested.
const maxChallengeAttempts = 5

type user struct {
	ID           int64
	Email        string
	PasswordHash []byte
	FirstName    string
	LastName     string
	Phone        string
	Bio          string
	Verified     bool
	CreatedAt    time.Time
}

type challenge struct {
	Code      string
	Purpose   string
	ExpiresAt time.Time
	Attempts  int
}

// Store is the in-memory backing state of the development identity server.
// Everything is lost on restart, which is the point.
type Store struct {
	mu         sync.Mutex
	users      map[string]*user
	challenges map[string]*challenge
	node       *snowflake.Node
	clock      clock.Clocker
}

func NewStore(nodeID int64, clk clock.Clocker) (*Store, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}

	return &Store{
		users:      map[string]*user{},
		challenges: map[string]*challenge{},
		node:       node,
		clock:      clk,
	}, nil
}

func (s *Store) CreateUser(u user) (*user, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, ok := s.users[key]; ok {
		return nil, errDuplicateEmail
	}

	u.ID = s.node.Generate().Int64()
	u.Email = key
	u.CreatedAt = s.clock.Now()
	s.users[key] = &u

	return &u, nil
}

func (s *Store) GetUser(email string) (*user, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		return nil, errUserNotFound
	}

	cp := *u
	return &cp, nil
}

func (s *Store) MarkVerified(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[strings.ToLower(email)]; ok {
		u.Verified = true
	}
}

func (s *Store) SetPassword(email string, hash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		return errUserNotFound
	}
	u.PasswordHash = hash

	return nil
}

// PutChallenge replaces any pending challenge for the email and purpose pair.
// A resend always invalidates the previous code.
func (s *Store) PutChallenge(email, purpose, code string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.challenges[challengeKey(email, purpose)] = &challenge{
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: s.clock.Now().Add(ttl),
	}
}

// ConsumeChallenge checks the submitted code against the pending challenge.
// A correct code consumes the challenge; a wrong one burns an attempt and
// discards the challenge once the attempt budget is spent.
func (s *Store) ConsumeChallenge(email, purpose, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := challengeKey(email, purpose)
	ch, ok := s.challenges[key]
	if !ok {
		return errNoChallenge
	}

	if s.clock.Now().After(ch.ExpiresAt) {
		delete(s.challenges, key)
		return errChallengeExpired
	}

	if ch.Code != code {
		ch.Attempts++
		if ch.Attempts >= maxChallengeAttempts {
			delete(s.challenges, key)
		}
		return errCodeMismatch
	}

	delete(s.challenges, key)
	return nil
}

func challengeKey(email, purpose string) string {
	return strings.ToLower(email) + "|" + purpose
}
