// Package players implements the token-authenticated player registry
// (C5): join/leave, the token<->player map, and the retirement sweep
// that retires idle dogs into the record repository.
package players

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"

	"github.com/wannabeanything/dogwalker/internal/gamesession"
	"github.com/wannabeanything/dogwalker/internal/model"
)

// Token is an opaque 32 lowercase-hex-character player credential.
type Token string

var tokenPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// Sentinel errors surfaced to the API layer (internal/apierr translates
// these into wire error kinds).
var (
	ErrEmptyName    = errors.New("players: user name must not be empty")
	ErrMapNotFound  = errors.New("players: unknown map id")
	ErrInvalidToken = errors.New("players: malformed token")
	ErrUnknownToken = errors.New("players: unknown token")
)

// Player is the authentication wrapper around a (session, dog) pair.
type Player struct {
	Token   Token
	MapID   model.MapID
	Session *gamesession.GameSession
	Dog     *gamesession.Dog
}

// Registry is the set of players keyed by token. It keeps no secondary
// index by (dog id, map id); the retirement sweep walks every player.
type Registry struct {
	byToken map[Token]*Player
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byToken: make(map[Token]*Player)}
}

// Add registers a new player for the given session/dog pair, generating
// a fresh unique token. Every mutation here must already be serialized
// by the caller (the single-writer executor, C6) — Registry holds no
// lock of its own.
func (r *Registry) Add(mapID model.MapID, session *gamesession.GameSession, dog *gamesession.Dog) (*Player, error) {
	token, err := r.generateUniqueToken()
	if err != nil {
		return nil, err
	}
	p := &Player{Token: token, MapID: mapID, Session: session, Dog: dog}
	r.byToken[token] = p
	return p, nil
}

// Restore re-inserts a player loaded from a snapshot, bypassing Add's
// fresh-token generation since the token already exists on disk.
func (r *Registry) Restore(tok Token, mapID model.MapID, session *gamesession.GameSession, dog *gamesession.Dog) {
	r.byToken[tok] = &Player{Token: tok, MapID: mapID, Session: session, Dog: dog}
}

// FindByToken validates and looks up tok, returning ErrInvalidToken for
// a malformed token and ErrUnknownToken for a well-formed but absent
// one.
func (r *Registry) FindByToken(raw string) (*Player, error) {
	if !tokenPattern.MatchString(raw) {
		return nil, ErrInvalidToken
	}
	p, ok := r.byToken[Token(raw)]
	if !ok {
		return nil, ErrUnknownToken
	}
	return p, nil
}

// Remove deletes the player owning tok from the registry and removes
// its dog from its session.
func (r *Registry) Remove(tok Token) {
	p, ok := r.byToken[tok]
	if !ok {
		return
	}
	p.Session.RemoveDog(p.Dog.ID)
	delete(r.byToken, tok)
}

// All returns every registered player; order is unspecified.
func (r *Registry) All() []*Player {
	out := make([]*Player, 0, len(r.byToken))
	for _, p := range r.byToken {
		out = append(out, p)
	}
	return out
}

// Recorder is the narrow interface the retirement sweep needs from the
// record repository; satisfied by records.Repository.
type Recorder interface {
	SaveRecord(name string, score int, playTimeSeconds float64) error
}

// SweepRetirements appends a record for every retired, not-yet-recorded
// dog exactly once, then removes its player from the registry. Errors
// from the recorder are collected, not fatal to the sweep: a failed
// save is retried on the next sweep since the recorded flag is only set
// on success. It returns the number of dogs successfully retired, for
// the caller's retirement counter.
func (r *Registry) SweepRetirements(rec Recorder) (int, []error) {
	var errs []error
	retired := 0
	for _, p := range r.All() {
		d := p.Dog
		if !d.Retired() || d.Recorded() {
			continue
		}
		if err := rec.SaveRecord(d.Name, d.Score(), d.LifeTime()); err != nil {
			errs = append(errs, fmt.Errorf("players: save record for dog %d: %w", d.ID, err))
			continue
		}
		d.MarkRecorded()
		r.Remove(p.Token)
		retired++
	}
	return retired, errs
}

func (r *Registry) generateUniqueToken() (Token, error) {
	for attempts := 0; attempts < 64; attempts++ {
		tok, err := GenerateToken()
		if err != nil {
			return "", err
		}
		if _, exists := r.byToken[tok]; !exists {
			return tok, nil
		}
	}
	return "", errors.New("players: could not generate a unique token")
}

// GenerateToken assembles a 32-hex-character token from two
// independently drawn 64-bit halves, per spec.md §4.5/§9 and
// original_source's Player id generation.
func GenerateToken() (Token, error) {
	high, err := randomUint64()
	if err != nil {
		return "", fmt.Errorf("players: generate token: %w", err)
	}
	low, err := randomUint64()
	if err != nil {
		return "", fmt.Errorf("players: generate token: %w", err)
	}
	var raw [16]byte
	binary.BigEndian.PutUint64(raw[0:8], high)
	binary.BigEndian.PutUint64(raw[8:16], low)
	return Token(hex.EncodeToString(raw[:])), nil
}

func randomUint64() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}
