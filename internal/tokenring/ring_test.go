package tokenring

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsEmpty(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestAdvanceWrapsAround(t *testing.T) {
	for _, size := range []int{1, 2, 3, 7} {
		tokens := make([]Token, size)
		for i := range tokens {
			tokens[i] = Token(string(rune('A' + i)))
		}
		ring, err := New(tokens)
		require.NoError(t, err)

		start := ring.Current()
		for i := 0; i < size; i++ {
			ring.Advance()
		}
		assert.Equal(t, start, ring.Current(), "ring of size %d", size)
	}
}

func TestAllStartsAfterCursor(t *testing.T) {
	ring, err := New([]Token{"A", "B", "C"})
	require.NoError(t, err)

	assert.Equal(t, []Token{"B", "C", "A"}, ring.All())

	ring.Advance() // cursor on B
	assert.Equal(t, []Token{"C", "A", "B"}, ring.All())
}

func TestSetCurrent(t *testing.T) {
	ring, err := New([]Token{"A", "B", "C"})
	require.NoError(t, err)

	assert.True(t, ring.SetCurrent("C"))
	assert.Equal(t, Token("C"), ring.Current())

	assert.False(t, ring.SetCurrent("Z"))
	assert.Equal(t, Token("C"), ring.Current())
}

func TestConcurrentAdvanceStaysConsistent(t *testing.T) {
	ring, err := New([]Token{"A", "B", "C", "D", "E"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				ring.Advance()
			}
		}()
	}
	wg.Wait()

	// 5000 advances over a ring of 5 land back on the start.
	assert.Equal(t, Token("A"), ring.Current())
}

func TestTokenMasked(t *testing.T) {
	assert.Equal(t, "ghp_****6789", Token("ghp_0123456789").Masked())
	assert.Equal(t, "****", Token("short").Masked())
}

func TestAuthorizationHeader(t *testing.T) {
	assert.Equal(t, "token ghp_abc", Token("ghp_abc").AuthorizationHeader())
}

func TestLoadTokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.txt")
	content := "# primary\nghp_one\n\n  ghp_two  \n# spare\nghp_three\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	tokens, err := LoadTokenFile(path)
	require.NoError(t, err)
	assert.Equal(t, []Token{"ghp_one", "ghp_two", "ghp_three"}, tokens)
}

func TestLoadTokenFileMissing(t *testing.T) {
	_, err := LoadTokenFile(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}
