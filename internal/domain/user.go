package domain

type User struct {
	ID    string  `db:"id" json:"id"`
	Name  string  `db:"name" json:"name"`
	Email string  `db:"email" json:"-"`
	Image *string `db:"image" json:"image,omitempty"`

	// Account-wide switch; per-room preference is NotificationPreference.
	NotificationsMuted bool `db:"notifications_muted" json:"-"`
}
