package models

import "time"

// UnknownPosition is reported when neither the standings nor the probabilities
// document carries a rank for the tracked team. It is never 0, which would read as rank 1.
const UnknownPosition = "-"

// TeamRecord is a team's win/loss record after alias resolution
type TeamRecord struct {
	TeamCode string  `json:"team_code"`
	TeamName string  `json:"team_name"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	WinPct   float64 `json:"win_pct"` // 0..100, one decimal
}

// StandingEntry is one row of the standings table
type StandingEntry struct {
	TeamRecord
	Position      int  `json:"position"` // 1-based input index
	IsTracked     bool `json:"is_tracked"`
	InPlayoffZone bool `json:"in_playoff_zone"`
}

// CurrentStanding is the tracked team's headline numbers
type CurrentStanding struct {
	Position       string  `json:"position"` // rank or UnknownPosition
	Wins           int     `json:"wins"`
	Losses         int     `json:"losses"`
	WinPct         float64 `json:"win_pct"`
	GamesRemaining *int    `json:"games_remaining,omitempty"`
}

// ProbabilitySnapshot holds the simulated season-outcome probabilities.
// The raw percentages are kept as published; the bar widths are clamped to [0,100].
type ProbabilitySnapshot struct {
	PlayoffPct        float64    `json:"playoff_pct"`
	FinalFourPct      float64    `json:"final_four_pct"`
	PlayoffBarWidth   float64    `json:"playoff_bar_width"`
	FinalFourBarWidth float64    `json:"final_four_bar_width"`
	AsOf              *time.Time `json:"as_of,omitempty"`
}

// GameResult is one recent game involving (usually) the tracked team
type GameResult struct {
	Round     string `json:"round"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`

	// TrackedTeamWon is nil when the tracked team appears in neither slot
	TrackedTeamWon *bool `json:"tracked_team_won"`
}

// TeamStats is the tracked team's season stats, passed through mostly untouched
type TeamStats struct {
	TeamName string                 `json:"team_name"`
	TeamCode string                 `json:"team_code"`
	Season   string                 `json:"season,omitempty"`
	Stats    map[string]interface{} `json:"stats"`
}

// DataQualityWarning flags source data that is rendered but looks wrong
type DataQualityWarning struct {
	Field   string  `json:"field"`
	Value   float64 `json:"value"`
	Message string  `json:"message"`
}

// NormalizedView is what the presentation layer renders.
// A nil section means the backing document was missing or malformed.
type NormalizedView struct {
	LastUpdated   *time.Time           `json:"last_updated,omitempty"`
	Current       *CurrentStanding     `json:"current,omitempty"`
	Probabilities *ProbabilitySnapshot `json:"probabilities,omitempty"`
	Games         []GameResult         `json:"games,omitempty"`
	Standings     []StandingEntry      `json:"standings,omitempty"`
	TeamStats     *TeamStats           `json:"team_stats,omitempty"`
	Warnings      []DataQualityWarning `json:"warnings,omitempty"`
}
