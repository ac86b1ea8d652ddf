package chat

type Config struct {
	// PlacesPerDay is the stop density of generated routes.
	PlacesPerDay int
	// ContextDocuments is how many documents ground a general answer or a
	// route search narrative.
	ContextDocuments int
	MaxPlaces        int
	MaxRoutes        int
}

func DefaultConfig() *Config {
	return &Config{
		PlacesPerDay:     4,
		ContextDocuments: 3,
		MaxPlaces:        5,
		MaxRoutes:        5,
	}
}
