// Package simulation estimates playoff and Final Four odds by simulating the
// rest of the regular season many times.
package simulation

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/fields"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/standings"
)

// ErrNoTrackedStanding is returned when the standings document has no row for the tracked team
var ErrNoTrackedStanding = errors.New("standings have no tracked team row")

const (
	homeAdvantage = 1.05
	awayAdvantage = 0.95
	recentGames   = 5
)

// Config holds the season shape and simulation size
type Config struct {
	TeamCode        string
	TeamName        string
	TeamMatch       string // substring matched against team names in game rows
	SeasonGames     int
	PlayoffCutoff   int
	FinalFourCutoff int
	Simulations     int
}

// DefaultConfig returns the Euroleague regular season settings
func DefaultConfig() Config {
	return Config{
		TeamCode:        "TEL",
		TeamName:        "Maccabi Tel Aviv",
		TeamMatch:       "Maccabi",
		SeasonGames:     34,
		PlayoffCutoff:   8,
		FinalFourCutoff: 4,
		Simulations:     10000,
	}
}

// CurrentStats is the tracked team's record going into the simulation
type CurrentStats struct {
	Position       interface{} `json:"position"`
	Wins           int         `json:"wins"`
	Losses         int         `json:"losses"`
	GamesPlayed    int         `json:"games_played"`
	GamesRemaining int         `json:"games_remaining"`
	WinPercentage  float64     `json:"win_percentage"`
}

// Probabilities are percentages rounded to one decimal
type Probabilities struct {
	Playoff   float64 `json:"playoff"`
	FinalFour float64 `json:"final_four"`
}

// Factors are the inputs that shaped the tracked team's odds
type Factors struct {
	TeamStrength     float64 `json:"team_strength"`
	RecentFormFactor float64 `json:"recent_form_factor"`
	SimulationsRun   int     `json:"simulations_run"`
}

// Methodology describes the model for readers of the document
type Methodology struct {
	Description       string   `json:"description"`
	Simulations       int      `json:"simulations"`
	FactorsConsidered []string `json:"factors_considered"`
	PlayoffCutoff     int      `json:"playoff_cutoff"`
	FinalFourCutoff   int      `json:"final_four_cutoff"`
}

// Result is the probabilities document
type Result struct {
	LastUpdated   string        `json:"last_updated"`
	Team          string        `json:"team"`
	TeamCode      string        `json:"team_code"`
	CurrentStats  CurrentStats  `json:"current_stats"`
	Probabilities Probabilities `json:"probabilities"`
	Factors       Factors       `json:"factors"`
	Methodology   Methodology   `json:"methodology"`
}

// Simulator runs Monte Carlo seasons. It is not safe for concurrent use
// because it owns its random source.
type Simulator struct {
	cfg        Config
	rng        *rand.Rand
	normalizer *standings.Normalizer
	now        func() time.Time
}

// New creates a simulator. A nil rng is seeded from the clock.
func New(cfg Config, rng *rand.Rand) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Simulations <= 0 {
		cfg.Simulations = DefaultConfig().Simulations
	}

	nc := &standings.Config{
		TrackedTeamCode: cfg.TeamCode,
		TrackedTeamName: cfg.TeamMatch,
		PlayoffCutoff:   cfg.PlayoffCutoff,
	}

	return &Simulator{
		cfg:        cfg,
		rng:        rng,
		normalizer: standings.NewNormalizer(nc),
		now:        time.Now,
	}
}

type team struct {
	code      string
	wins      int
	remaining int
	strength  float64
}

// Run simulates the remaining season from the standings and recent games
// documents. recentGamesDoc may be nil, which gives a neutral form factor.
func (s *Simulator) Run(standingsDoc, recentGamesDoc map[string]interface{}) (*Result, error) {
	tracked := fields.Map(standingsDoc, standings.TrackedStandingKeys...)
	if tracked == nil {
		return nil, ErrNoTrackedStanding
	}

	wins := fields.Int(tracked, standings.WinsAliases...)
	losses := fields.Int(tracked, standings.LossesAliases...)
	played := wins + losses
	remaining := max(s.cfg.SeasonGames-played, 0)

	teams, trackedIdx := s.league(fields.Array(standingsDoc, standings.AllTeamsKeys...))
	if trackedIdx < 0 {
		teams = append(teams, team{
			code:     s.cfg.TeamCode,
			wins:     wins,
			strength: TeamStrength(tracked),
		})
		trackedIdx = len(teams) - 1
	}

	avgStrength := 0.0
	for _, t := range teams {
		avgStrength += t.strength
	}
	avgStrength /= float64(len(teams))

	strength := teams[trackedIdx].strength
	momentum := s.RecentForm(recentGamesDoc)

	playoff, finalFour := 0, 0
	for i := 0; i < s.cfg.Simulations; i++ {
		pos := s.season(teams, trackedIdx, wins, remaining, strength*momentum, avgStrength)
		if pos <= s.cfg.PlayoffCutoff {
			playoff++
		}
		if pos <= s.cfg.FinalFourCutoff {
			finalFour++
		}
	}

	winPct := 0.0
	if played > 0 {
		winPct = float64(wins) / float64(played) * 100
	}
	position, _ := fields.Lookup(tracked, standings.PositionAliases...)

	return &Result{
		LastUpdated: s.now().Format("2006-01-02T15:04:05.000000"),
		Team:        s.cfg.TeamName,
		TeamCode:    s.cfg.TeamCode,
		CurrentStats: CurrentStats{
			Position:       position,
			Wins:           wins,
			Losses:         losses,
			GamesPlayed:    played,
			GamesRemaining: remaining,
			WinPercentage:  winPct,
		},
		Probabilities: Probabilities{
			Playoff:   round(float64(playoff)/float64(s.cfg.Simulations)*100, 1),
			FinalFour: round(float64(finalFour)/float64(s.cfg.Simulations)*100, 1),
		},
		Factors: Factors{
			TeamStrength:     round(strength, 3),
			RecentFormFactor: round(momentum, 3),
			SimulationsRun:   s.cfg.Simulations,
		},
		Methodology: Methodology{
			Description: "Monte Carlo simulation of remaining season",
			Simulations: s.cfg.Simulations,
			FactorsConsidered: []string{
				"Current standings (40% weight)",
				"Team strength from win rate and point differential (25% weight)",
				"Recent form - last 5 games (20% weight)",
				"Point differential (15% weight)",
			},
			PlayoffCutoff:   s.cfg.PlayoffCutoff,
			FinalFourCutoff: s.cfg.FinalFourCutoff,
		},
	}, nil
}

// league builds the per-team state and returns the tracked team's index, or -1
func (s *Simulator) league(rows []interface{}) ([]team, int) {
	teams := make([]team, 0, len(rows))
	trackedIdx := -1

	for _, row := range rows {
		m, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		w := fields.Int(m, standings.WinsAliases...)
		l := fields.Int(m, standings.LossesAliases...)
		code := fields.String(m, standings.TeamCodeAliases...)

		if code == s.cfg.TeamCode && trackedIdx < 0 {
			trackedIdx = len(teams)
		}
		teams = append(teams, team{
			code:      code,
			wins:      w,
			remaining: max(s.cfg.SeasonGames-(w+l), 0),
			strength:  TeamStrength(m),
		})
	}

	return teams, trackedIdx
}

// season plays out one season and returns the tracked team's final position
func (s *Simulator) season(teams []team, trackedIdx, trackedWins, remaining int, trackedStrength, avgStrength float64) int {
	final := make([]int, len(teams))

	for i, t := range teams {
		if i == trackedIdx {
			continue
		}
		expected := float64(t.remaining) * t.strength
		won := int(s.rng.NormFloat64()*float64(t.remaining)*0.15 + expected)
		final[i] = t.wins + min(max(won, 0), t.remaining)
	}

	won := 0
	for g := 0; g < remaining; g++ {
		adv := awayAdvantage
		if s.rng.Float64() < 0.5 {
			adv = homeAdvantage
		}
		if s.rng.Float64() < winProbability(trackedStrength, avgStrength, adv) {
			won++
		}
	}
	final[trackedIdx] = trackedWins + won

	order := make([]int, len(teams))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return final[order[a]] > final[order[b]]
	})

	for pos, idx := range order {
		if idx == trackedIdx {
			return pos + 1
		}
	}
	return len(teams)
}

// RecentForm converts the last five results into a momentum factor in [0.8, 1.2].
// No games gives 1.0.
func (s *Simulator) RecentForm(recentGamesDoc map[string]interface{}) float64 {
	games := s.normalizer.Games(recentGamesDoc)
	if len(games) == 0 {
		return 1.0
	}
	if len(games) > recentGames {
		games = games[:recentGames]
	}

	wins := 0
	for _, g := range games {
		if g.TrackedTeamWon != nil && *g.TrackedTeamWon {
			wins++
		}
	}
	return 0.8 + float64(wins)/float64(len(games))*0.4
}

// TeamStrength rates a standings row in [0.1, 0.9]. With points data it blends
// 70% win rate with 30% per-game point differential mapped from [-20, 20].
// A team with no games rates 0.5.
func TeamStrength(row map[string]interface{}) float64 {
	w := fields.Int(row, standings.WinsAliases...)
	l := fields.Int(row, standings.LossesAliases...)
	games := w + l
	if games == 0 {
		return 0.5
	}

	winPct := float64(w) / float64(games)
	strength := winPct

	pf := fields.Float(row, standings.PointsForAliases...)
	pa := fields.Float(row, standings.PointsAgainstAliases...)
	if pf > 0 {
		diff := (pf - pa) / float64(games)
		factor := math.Max(0, math.Min(1, (diff+20)/40))
		strength = 0.7*winPct + 0.3*factor
	}

	return math.Max(0.1, math.Min(0.9, strength))
}

func winProbability(strength, opponent, advantage float64) float64 {
	s := strength * advantage
	if s+opponent == 0 {
		return 0.5
	}
	return s / (s + opponent)
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
