package fortune

import (
	"math/rand"
	"strings"
)

// Levels lists the seven fortune grades from best to worst.
var Levels = []string{"大吉", "吉", "中吉", "小吉", "末吉", "凶", "大凶"}

// levelWeights biases random draws toward the favorable grades.
var levelWeights = []int{10, 30, 20, 15, 10, 5, 2}

// Section count bounds for a valid fortune.
const (
	MinSections = 4
	MaxSections = 8
)

// Section is one named block of fortune text.
type Section struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Fortune is a single drawn fortune. Immutable once built; the caches
// store copies or serialized forms, never retained pointers.
type Fortune struct {
	Level       string    `json:"level"`
	Theme       string    `json:"theme"`
	SignNumber  string    `json:"sign_number"`
	DivineTitle string    `json:"divine_title"`
	Sections    []Section `json:"sections"`
	Maxim       string    `json:"maxim"`
	Intro       string    `json:"intro"`
	End         string    `json:"end"`
}

// IsLevel reports whether s is one of the known fortune grades.
func IsLevel(s string) bool {
	for _, l := range Levels {
		if l == s {
			return true
		}
	}
	return false
}

// PickLevel draws a random grade using the configured weights.
func PickLevel(rng *rand.Rand) string {
	total := 0
	for _, w := range levelWeights {
		total += w
	}
	n := rng.Intn(total)
	for i, w := range levelWeights {
		if n < w {
			return Levels[i]
		}
		n -= w
	}
	return Levels[len(Levels)-1]
}

// ValidationResult describes why a fortune failed validation.
type ValidationResult struct {
	Valid    bool
	Problems []string
}

// Validate checks the structural invariants of a fortune: a known level,
// a non-empty theme, 4-8 sections, and section names unique and non-empty.
func Validate(f *Fortune) *ValidationResult {
	result := &ValidationResult{Valid: true}

	fail := func(msg string) {
		result.Valid = false
		result.Problems = append(result.Problems, msg)
	}

	if !IsLevel(f.Level) {
		fail("level must be one of the known grades")
	}
	if strings.TrimSpace(f.Theme) == "" {
		fail("theme must not be empty")
	}
	if len(f.Sections) < MinSections || len(f.Sections) > MaxSections {
		fail("sections must contain between 4 and 8 entries")
	}

	seen := make(map[string]bool, len(f.Sections))
	for _, s := range f.Sections {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			fail("section names must not be empty")
			continue
		}
		if seen[name] {
			fail("section names must be unique")
		}
		seen[name] = true
	}

	return result
}
