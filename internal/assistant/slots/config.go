package slots

// Config bounds what the model may put into a context.
type Config struct {
	MaxPreferencesLength int
}

func DefaultConfig() *Config {
	return &Config{MaxPreferencesLength: 200}
}
