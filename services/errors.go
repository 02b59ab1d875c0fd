package services

import "errors"

// Sentinel errors mapped to HTTP statuses at the handler layer
var (
	ErrCooldownActive    = errors.New("cooldown active")
	ErrDuelNotOpen       = errors.New("duel not found or not open")
	ErrDuelTaken         = errors.New("duel already taken by another opponent")
	ErrSelfJoin          = errors.New("cannot join your own duel")
	ErrNoActiveSession   = errors.New("no active watch session")
	ErrQuestNotFound     = errors.New("quest not found")
	ErrNotClaimable      = errors.New("quest not completed or reward already claimed")
	ErrMintNotConfigured = errors.New("minter service not configured")
)
