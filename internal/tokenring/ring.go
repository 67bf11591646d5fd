package tokenring

import (
	"fmt"
	"sync"
)

// Ring is a fixed, ordered set of tokens with a cursor marking the active
// one. The set never grows or shrinks after construction; only the cursor
// moves. All cursor mutation is serialized so concurrent rotations can never
// leave it between positions.
type Ring struct {
	mu     sync.Mutex
	tokens []Token
	cursor int
}

// New builds a ring over tokens in the given order. Duplicates are allowed;
// an empty list is a construction error.
func New(tokens []Token) (*Ring, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("token ring requires at least one token")
	}
	owned := make([]Token, len(tokens))
	copy(owned, tokens)
	return &Ring{tokens: owned}, nil
}

// Len returns the fixed ring size.
func (r *Ring) Len() int { return len(r.tokens) }

// Current returns the active token.
func (r *Ring) Current() Token {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tokens[r.cursor]
}

// Advance moves the cursor forward one position, wrapping at the end, and
// returns the new active token. Advancing Len() times returns to the start.
func (r *Ring) Advance() Token {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cursor = (r.cursor + 1) % len(r.tokens)
	return r.tokens[r.cursor]
}

// All returns the tokens in ring order starting one past the cursor, so a
// probing pass visits every candidate exactly once before coming back to the
// active token.
func (r *Ring) All() []Token {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Token, 0, len(r.tokens))
	for i := 1; i <= len(r.tokens); i++ {
		out = append(out, r.tokens[(r.cursor+i)%len(r.tokens)])
	}
	return out
}

// SetCurrent moves the cursor to the first position holding token. It is the
// rotation path's way of committing a probe result. Unknown tokens leave the
// cursor unchanged.
func (r *Ring) SetCurrent(token Token) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.tokens {
		if t == token {
			r.cursor = i
			return true
		}
	}
	return false
}
