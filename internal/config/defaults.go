package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "/usr/local/var/ateliernoir/search.db"
	}
	if cfg.Search.MaxQueryLength == 0 {
		cfg.Search.MaxQueryLength = 100
	}
	if cfg.Search.MaxTokens == 0 {
		cfg.Search.MaxTokens = 6
	}
	if cfg.Search.MinFuzzyQueryLength == 0 {
		cfg.Search.MinFuzzyQueryLength = 3
	}
	if cfg.Search.MinQuickSearchLength == 0 {
		cfg.Search.MinQuickSearchLength = 2
	}
	if cfg.Search.MinSuggestTokenLength == 0 {
		cfg.Search.MinSuggestTokenLength = 4
	}
	if cfg.Search.SimilarityThreshold == 0 {
		cfg.Search.SimilarityThreshold = 0.30
	}
	if cfg.Search.SuggestionThreshold == 0 {
		cfg.Search.SuggestionThreshold = 0.20
	}
	if cfg.Search.MatchTimeoutMS == 0 {
		cfg.Search.MatchTimeoutMS = 300
	}
	if cfg.Search.SuggestionTimeoutMS == 0 {
		cfg.Search.SuggestionTimeoutMS = 150
	}
	if cfg.Search.MatchLimit == 0 {
		cfg.Search.MatchLimit = 50
	}
	if cfg.Search.QuickSearchLimit == 0 {
		cfg.Search.QuickSearchLimit = 8
	}
	if cfg.Search.SuggestionMinResults == 0 {
		cfg.Search.SuggestionMinResults = 3
	}
	if cfg.Synonyms.Groups == nil {
		cfg.Synonyms.Groups = DefaultSynonymGroups()
	}
	if cfg.Synonyms.Exclusions == nil {
		cfg.Synonyms.Exclusions = DefaultSynonymExclusions()
	}
}

// DefaultSynonymGroups returns the built-in jewelry-domain synonym groups.
// Each group is a set of mutually interchangeable single-word terms.
func DefaultSynonymGroups() [][]string {
	return [][]string{
		{"necklace", "pendant", "chain"},
		{"ring", "band", "signet"},
		{"bracelet", "bangle", "cuff"},
		{"earring", "stud", "hoop"},
		{"gold", "golden", "gilt", "or"},
		{"silver", "sterling", "argent"},
		{"gemstone", "gem", "stone"},
	}
}

// DefaultSynonymExclusions returns terms dropped from synonym groups because
// they collide with function words of the catalog language. For an English
// catalog "or" (the French metal name) would swallow the conjunction.
func DefaultSynonymExclusions() []string {
	return []string{"or"}
}
