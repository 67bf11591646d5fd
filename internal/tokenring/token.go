package tokenring

import (
	"fmt"
	"os"
	"strings"
)

// Token is an opaque API secret. Identity is the string value; tokens are
// never persisted beyond process memory.
type Token string

// AuthorizationHeader renders the outgoing Authorization value.
func (t Token) AuthorizationHeader() string {
	return "token " + string(t)
}

// Masked returns a loggable form that keeps only a short prefix.
func (t Token) Masked() string {
	s := string(t)
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

// LoadTokenFile parses a plaintext token file: one token per line, blank
// lines and lines starting with # skipped.
func LoadTokenFile(path string) ([]Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	var tokens []Token
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tokens = append(tokens, Token(line))
	}
	return tokens, nil
}
