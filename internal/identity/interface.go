package identity

// Resolver looks up user display names. Profile management itself lives
// outside this system; the engine only ever needs a name for a seat.
type Resolver interface {
	GetDisplayName(userID string) (string, error)
	UpsertUser(userID, displayName string) error
}
