package intake

import (
	"github.com/google/uuid"
)

// Section is one wizard step: its registry definition plus the accumulated
// form data and persistence state. PersistedID is the sole signal separating
// create from update; once assigned it never changes. Completed is the
// server-side completion flag, not a client-side guess.
type Section struct {
	Key         string         `json:"key"`
	Required    bool           `json:"required"`
	Label       string         `json:"label"`
	Data        map[string]any `json:"data"`
	PersistedID uuid.UUID      `json:"persisted_id,omitempty"`
	Completed   bool           `json:"completed"`
}

// Persisted reports whether the section has ever been successfully written.
func (s Section) Persisted() bool { return s.PersistedID != uuid.Nil }

// FormSet is the wizard state for one incident: the ordered sections for its
// classified type plus a cursor. It is a value; transition methods return a
// new FormSet and never mutate the receiver, so a failed operation can be
// discarded by dropping the returned value.
type FormSet struct {
	IncidentID uuid.UUID    `json:"incident_id"`
	Type       IncidentType `json:"-"`
	Sections   []Section    `json:"sections"`
	Cursor     int          `json:"cursor"`
}

// NewFormSet builds an empty form set for an incident from the registry list
// of its type.
func NewFormSet(incidentID uuid.UUID, t IncidentType) FormSet {
	defs := SectionsFor(t)
	sections := make([]Section, len(defs))
	for i, d := range defs {
		sections[i] = Section{Key: d.Key, Required: d.Required, Label: d.Label, Data: map[string]any{}}
	}
	return FormSet{IncidentID: incidentID, Type: t, Sections: sections}
}

// CurrentSection returns the section under the cursor.
func (f FormSet) CurrentSection() Section {
	return f.Sections[f.Cursor]
}

// OnLastSection reports whether the cursor sits on the final section, where a
// successful submit completes the wizard instead of advancing.
func (f FormSet) OnLastSection() bool {
	return f.Cursor == len(f.Sections)-1
}

// GoBack moves the cursor one section back. At the first section it is a
// no-op, not an error.
func (f FormSet) GoBack() FormSet {
	if f.Cursor > 0 {
		f = f.copy()
		f.Cursor--
	}
	return f
}

// SectionIndex returns the position of the section with the given key, or -1.
func (f FormSet) SectionIndex(key string) int {
	for i, s := range f.Sections {
		if s.Key == key {
			return i
		}
	}
	return -1
}

// WithSection returns a copy with the section at idx replaced.
func (f FormSet) WithSection(idx int, s Section) FormSet {
	f = f.copy()
	f.Sections[idx] = s
	return f
}

func (f FormSet) copy() FormSet {
	sections := make([]Section, len(f.Sections))
	copy(sections, f.Sections)
	f.Sections = sections
	return f
}

// mergeData shallow-merges src into a copy of dst; keys in src overwrite.
func mergeData(dst, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		out[k] = v
	}
	return out
}
