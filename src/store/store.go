package store

// Settings represents the per-guild settings database
type Settings interface {
	SetPrefix(guildID, prefix string) error
	GetPrefix(guildID string) (string, error)

	SetName(guildID, name string) error
	GetName(guildID string) (string, error)

	Close() error
}
