package standings

// Config contains tracked-team and league configuration for normalization
type Config struct {
	// TrackedTeamCode is matched exactly against team codes (e.g., "TEL")
	TrackedTeamCode string

	// TrackedTeamName is matched as a case-sensitive substring of team names.
	// Partial matches on other clubs sharing the substring are accepted.
	TrackedTeamName string

	// PlayoffCutoff is the last position that qualifies for the playoffs
	PlayoffCutoff int
}

// DefaultConfig returns the Euroleague / Maccabi Tel Aviv configuration
func DefaultConfig() *Config {
	return &Config{
		TrackedTeamCode: "TEL",
		TrackedTeamName: "Maccabi",
		PlayoffCutoff:   8,
	}
}
