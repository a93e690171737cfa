package fortune

import "math/rand"

// SectionVariants holds the deduplicated content variants observed for one
// section name. Entries keep sections as an ordered list so synthesized
// fortunes present sections in the order the entry's first contribution
// used.
type SectionVariants struct {
	Name     string   `json:"name"`
	Variants []string `json:"variants"`
}

// CorpusEntry accumulates deduplicated text variants for one (level, theme)
// key. The section-name set is fixed by the first contribution; later
// merges add content only for recognized names and never remove variants.
type CorpusEntry struct {
	Level       string            `json:"level"`
	Theme       string            `json:"theme"`
	Sections    []SectionVariants `json:"sections"`
	Intro       []string          `json:"intro"`
	Maxim       []string          `json:"maxim"`
	End         []string          `json:"end"`
	DivineTitle []string          `json:"divine_title"`
	SignNumber  []string          `json:"sign_number"`
	CreatedDate Date              `json:"created_date"`
	UpdatedDate Date              `json:"updated_date"`
}

// NewEntry seeds a corpus entry from the first fortune observed for its
// key. The fortune's section names become the entry's recognized set for
// the entry's whole lifetime.
func NewEntry(f *Fortune, today Date) *CorpusEntry {
	e := &CorpusEntry{
		Level:       f.Level,
		Theme:       f.Theme,
		Sections:    make([]SectionVariants, 0, len(f.Sections)),
		CreatedDate: today,
		UpdatedDate: today,
	}
	for _, s := range f.Sections {
		e.Sections = append(e.Sections, SectionVariants{
			Name:     s.Name,
			Variants: []string{s.Content},
		})
	}
	e.Intro = appendUnique(nil, f.Intro)
	e.Maxim = appendUnique(nil, f.Maxim)
	e.End = appendUnique(nil, f.End)
	e.DivineTitle = appendUnique(nil, f.DivineTitle)
	e.SignNumber = appendUnique(nil, f.SignNumber)
	return e
}

// MergeRecord folds a fortune's text into the entry's variant lists.
// Content for section names the entry does not recognize is dropped;
// all appends deduplicate by exact value equality. UpdatedDate moves to
// today.
func (e *CorpusEntry) MergeRecord(f *Fortune, today Date) {
	for i := range e.Sections {
		for _, s := range f.Sections {
			if s.Name == e.Sections[i].Name {
				e.Sections[i].Variants = appendUnique(e.Sections[i].Variants, s.Content)
			}
		}
	}

	e.Intro = appendUnique(e.Intro, f.Intro)
	e.Maxim = appendUnique(e.Maxim, f.Maxim)
	e.End = appendUnique(e.End, f.End)
	e.DivineTitle = appendUnique(e.DivineTitle, f.DivineTitle)
	e.SignNumber = appendUnique(e.SignNumber, f.SignNumber)
	e.UpdatedDate = today
}

// Synthesize reconstructs a displayable fortune by picking one variant at
// random from each list. This is a read-side concern: it never mutates the
// entry.
func (e *CorpusEntry) Synthesize(rng *rand.Rand) *Fortune {
	f := &Fortune{
		Level:       e.Level,
		Theme:       e.Theme,
		SignNumber:  pickVariant(rng, e.SignNumber),
		DivineTitle: pickVariant(rng, e.DivineTitle),
		Maxim:       pickVariant(rng, e.Maxim),
		Intro:       pickVariant(rng, e.Intro),
		End:         pickVariant(rng, e.End),
		Sections:    make([]Section, 0, len(e.Sections)),
	}
	for _, sv := range e.Sections {
		f.Sections = append(f.Sections, Section{
			Name:    sv.Name,
			Content: pickVariant(rng, sv.Variants),
		})
	}
	return f
}

// SectionNames returns the entry's recognized section names in order.
func (e *CorpusEntry) SectionNames() []string {
	names := make([]string, len(e.Sections))
	for i, sv := range e.Sections {
		names[i] = sv.Name
	}
	return names
}

// appendUnique appends v to list unless an equal value is already present.
// Empty values are not stored.
func appendUnique(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

func pickVariant(rng *rand.Rand, variants []string) string {
	if len(variants) == 0 {
		return ""
	}
	return variants[rng.Intn(len(variants))]
}
