package standings

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/fields"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/pkg/models"
)

// timestampLayouts are tried in order when parsing last_updated values.
// The data scripts write Python isoformat() without a zone, read as local time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Normalizer turns raw dashboard documents into a NormalizedView.
// It never fails: a missing or malformed document leaves its section nil.
type Normalizer struct {
	config *Config
}

// NewNormalizer creates a normalizer; a nil config selects DefaultConfig
func NewNormalizer(config *Config) *Normalizer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Normalizer{config: config}
}

// Config returns the normalizer's configuration
func (n *Normalizer) Config() *Config {
	return n.config
}

// Normalize builds the standing, probability and standings-table sections from
// the standings and probabilities documents. Either may be nil.
func (n *Normalizer) Normalize(raw, rawProb map[string]interface{}) models.NormalizedView {
	view := models.NormalizedView{
		LastUpdated: lastUpdated(raw, rawProb),
		Current:     n.currentStanding(raw, rawProb),
		Standings:   n.StandingsTable(raw),
	}
	view.Probabilities, view.Warnings = n.probabilities(rawProb)
	return view
}

// NormalizeAll normalizes a full snapshot, adding recent games and team stats
func (n *Normalizer) NormalizeAll(docs models.RawDocuments) models.NormalizedView {
	view := n.Normalize(docs.Standings, docs.Probabilities)
	view.Games = n.Games(docs.RecentGames)
	view.TeamStats = teamStats(docs.TeamStats)
	return view
}

// IsTrackedTeam reports whether a team slot refers to the tracked team: the name
// contains the tracked display name, or the code (or a bare-code name) equals the tracked code
func (n *Normalizer) IsTrackedTeam(name, code string) bool {
	if n.config.TrackedTeamName != "" && strings.Contains(name, n.config.TrackedTeamName) {
		return true
	}
	if n.config.TrackedTeamCode == "" {
		return false
	}
	return code == n.config.TrackedTeamCode || name == n.config.TrackedTeamCode
}

// TeamRecord resolves a raw team row into a TeamRecord
func (n *Normalizer) TeamRecord(team map[string]interface{}) models.TeamRecord {
	wins := max(fields.Int(team, WinsAliases...), 0)
	losses := max(fields.Int(team, LossesAliases...), 0)

	return models.TeamRecord{
		TeamCode: fields.String(team, TeamCodeAliases...),
		TeamName: fields.String(team, TeamNameAliases...),
		Wins:     wins,
		Losses:   losses,
		WinPct:   RoundPct(WinPercentage(wins, losses)),
	}
}

// StandingsTable returns the standings rows in input order with 1-based positions.
// Rows are never re-sorted; the source order is authoritative.
func (n *Normalizer) StandingsTable(raw map[string]interface{}) []models.StandingEntry {
	teams := fields.Array(raw, AllTeamsKeys...)
	if len(teams) == 0 {
		return nil
	}

	entries := make([]models.StandingEntry, 0, len(teams))
	for i, t := range teams {
		team, _ := t.(map[string]interface{})
		record := n.TeamRecord(team)
		position := i + 1

		entries = append(entries, models.StandingEntry{
			TeamRecord:    record,
			Position:      position,
			IsTracked:     n.IsTrackedTeam(record.TeamName, record.TeamCode),
			InPlayoffZone: position <= n.config.PlayoffCutoff,
		})
	}
	return entries
}

// Games returns recent games in input order. Non-object rows are skipped.
func (n *Normalizer) Games(raw map[string]interface{}) []models.GameResult {
	games := fields.Array(raw, GamesKeys...)
	if len(games) == 0 {
		return nil
	}

	results := make([]models.GameResult, 0, len(games))
	for _, g := range games {
		game, ok := g.(map[string]interface{})
		if !ok {
			continue
		}
		results = append(results, n.GameResult(game))
	}

	if len(results) == 0 {
		return nil
	}
	return results
}

// GameResult resolves one raw game and decides the tracked team's outcome
func (n *Normalizer) GameResult(game map[string]interface{}) models.GameResult {
	result := models.GameResult{
		Round:     fields.String(game, RoundAliases...),
		HomeTeam:  fields.String(game, HomeTeamAliases...),
		AwayTeam:  fields.String(game, AwayTeamAliases...),
		HomeScore: fields.Int(game, HomeScoreAliases...),
		AwayScore: fields.Int(game, AwayScoreAliases...),
	}

	homeCode := fields.String(game, HomeCodeAliases...)
	awayCode := fields.String(game, AwayCodeAliases...)

	switch {
	case n.IsTrackedTeam(result.HomeTeam, homeCode):
		won := result.HomeScore > result.AwayScore
		result.TrackedTeamWon = &won
	case n.IsTrackedTeam(result.AwayTeam, awayCode):
		won := result.AwayScore > result.HomeScore
		result.TrackedTeamWon = &won
	}

	return result
}

// currentStanding builds the headline section; nil without a tracked-team standing
func (n *Normalizer) currentStanding(raw, rawProb map[string]interface{}) *models.CurrentStanding {
	standing := fields.Map(raw, TrackedStandingKeys...)
	if standing == nil {
		return nil
	}
	stats := fields.Map(rawProb, CurrentStatsKeys...)

	wins := max(fields.Int(standing, WinsAliases...), 0)
	losses := max(fields.Int(standing, LossesAliases...), 0)

	current := &models.CurrentStanding{
		Position: positionOf(standing, stats),
		Wins:     wins,
		Losses:   losses,
	}

	if pct, ok := fields.FloatOK(stats, WinPercentageAliases...); ok {
		current.WinPct = RoundPct(pct)
	} else {
		current.WinPct = RoundPct(WinPercentage(wins, losses))
	}

	if remaining, ok := fields.IntOK(stats, GamesRemainingAliases...); ok {
		current.GamesRemaining = &remaining
	}

	return current
}

// positionOf resolves standing.position, then current_stats.position, then "-"
func positionOf(standing, stats map[string]interface{}) string {
	for _, doc := range []map[string]interface{}{standing, stats} {
		if p, ok := fields.IntOK(doc, PositionAliases...); ok && p > 0 {
			return strconv.Itoa(p)
		}
	}
	return models.UnknownPosition
}

// probabilities builds the probability bars and reports out-of-range values
func (n *Normalizer) probabilities(rawProb map[string]interface{}) (*models.ProbabilitySnapshot, []models.DataQualityWarning) {
	probs := fields.Map(rawProb, ProbabilitiesKeys...)
	if probs == nil {
		return nil, nil
	}

	var warnings []models.DataQualityWarning
	value := func(field string, aliases []string) float64 {
		v, ok := fields.FloatOK(probs, aliases...)
		if !ok {
			if raw, present := fields.Lookup(probs, aliases...); present {
				log.Warn().Str("field", field).Interface("raw", raw).Msg("probability is not a finite number")
				warnings = append(warnings, models.DataQualityWarning{
					Field:   field,
					Message: fmt.Sprintf("%s probability %v is not a finite number", field, raw),
				})
			}
			return 0
		}
		if v < 0 || v > 100 {
			log.Warn().Str("field", field).Float64("value", v).Msg("probability out of range")
			warnings = append(warnings, models.DataQualityWarning{
				Field:   field,
				Value:   v,
				Message: fmt.Sprintf("%s probability %.1f is outside [0,100]", field, v),
			})
		}
		return v
	}

	playoff := value("playoff", PlayoffPctAliases)
	finalFour := value("final_four", FinalFourPctAliases)

	return &models.ProbabilitySnapshot{
		PlayoffPct:        playoff,
		FinalFourPct:      finalFour,
		PlayoffBarWidth:   clampPct(playoff),
		FinalFourBarWidth: clampPct(finalFour),
		AsOf:              parseTimestamp(fields.String(rawProb, LastUpdatedAliases...)),
	}, warnings
}

// teamStats passes the team stats document through; nil when absent
func teamStats(raw map[string]interface{}) *models.TeamStats {
	if raw == nil {
		return nil
	}

	stats := fields.Map(raw, StatsKeys...)
	if stats == nil {
		stats = map[string]interface{}{}
	}

	return &models.TeamStats{
		TeamName: fields.String(raw, TeamNameAliases...),
		TeamCode: fields.String(raw, TeamCodeAliases...),
		Season:   fields.String(raw, SeasonAliases...),
		Stats:    stats,
	}
}

// lastUpdated prefers the probabilities timestamp over the standings one
func lastUpdated(raw, rawProb map[string]interface{}) *time.Time {
	if t := parseTimestamp(fields.String(rawProb, LastUpdatedAliases...)); t != nil {
		return t
	}
	return parseTimestamp(fields.String(raw, LastUpdatedAliases...))
}

// parseTimestamp parses a last_updated value; nil if empty or unparsable
func parseTimestamp(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return &t
		}
	}
	return nil
}
