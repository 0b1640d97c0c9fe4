package domain

// Preference is the per (user, room) notification setting. Written by the
// CRUD layer only; the coordinator just reads it.
type Preference string

const (
	PreferenceAll      Preference = "all"
	PreferenceMentions Preference = "mentions"
	PreferenceNone     Preference = "none"
)

func (p Preference) Valid() bool {
	switch p {
	case PreferenceAll, PreferenceMentions, PreferenceNone:
		return true
	}
	return false
}
