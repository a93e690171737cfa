// Package ops implements the cache operations shared by the MCP tools,
// the CLI, and the web UI.
package ops

import (
	cryptorand "crypto/rand"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/litesuggar/omikuji/internal/errors"
	"github.com/litesuggar/omikuji/internal/fortune"
)

// MaxThemeChars bounds theme length so a typo cannot become a megabyte key.
const MaxThemeChars = 64

// ValidateKey normalizes a corpus key. An empty level is allowed where the
// caller draws one; a non-empty level must be a known grade.
func ValidateKey(level, theme string) (string, string, error) {
	level = strings.TrimSpace(level)
	theme = strings.TrimSpace(theme)

	if level != "" && !fortune.IsLevel(level) {
		return "", "", errors.NewInvalidRequest("level must be one of: " + strings.Join(fortune.Levels, ", "))
	}
	if theme == "" {
		return "", "", errors.NewInvalidRequest("theme must not be empty")
	}
	if len([]rune(theme)) > MaxThemeChars {
		return "", "", errors.NewInvalidRequest("theme is too long")
	}

	return level, theme, nil
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(cryptorand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// The weighted level pick and variant synthesis share one seeded source;
// math/rand sources are not safe for concurrent use.
var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

func pickLevel() string {
	rngMu.Lock()
	defer rngMu.Unlock()
	return fortune.PickLevel(rng)
}

func synthesize(entry *fortune.CorpusEntry) *fortune.Fortune {
	rngMu.Lock()
	defer rngMu.Unlock()
	return entry.Synthesize(rng)
}
