package standings

// Field aliases, in probe order. Source documents have drifted between the
// Euroleague API's PascalCase columns, snake_case exports and short stat codes.
var (
	WinsAliases     = []string{"W", "Wins", "wins"}
	LossesAliases   = []string{"L", "Losses", "losses"}
	TeamCodeAliases = []string{"TeamCode", "team_code"}
	TeamNameAliases = []string{"Team", "team", "TeamName", "team_name"}

	PointsForAliases     = []string{"PointsFor", "points_for"}
	PointsAgainstAliases = []string{"PointsAgainst", "points_against"}

	HomeTeamAliases  = []string{"Home", "home"}
	AwayTeamAliases  = []string{"Away", "away"}
	HomeCodeAliases  = []string{"HomeTeamCode", "home_team_code"}
	AwayCodeAliases  = []string{"AwayTeamCode", "away_team_code"}
	HomeScoreAliases = []string{"HomePoints", "home_points", "PointsHome"}
	AwayScoreAliases = []string{"AwayPoints", "away_points", "PointsAway"}
	RoundAliases     = []string{"Round", "round"}

	PositionAliases       = []string{"position", "Position"}
	WinPercentageAliases  = []string{"win_percentage", "WinPercentage"}
	GamesRemainingAliases = []string{"games_remaining", "GamesRemaining"}
	PlayoffPctAliases     = []string{"playoff", "playoff_pct"}
	FinalFourPctAliases   = []string{"final_four", "finalFour", "final_four_pct"}
	LastUpdatedAliases    = []string{"last_updated", "lastUpdated"}
	SeasonAliases         = []string{"season", "Season"}
)

// Document-level keys
var (
	TrackedStandingKeys = []string{"maccabi_standing", "team_standing"}
	AllTeamsKeys        = []string{"all_teams", "teams"}
	CurrentStatsKeys    = []string{"current_stats"}
	ProbabilitiesKeys   = []string{"probabilities"}
	GamesKeys           = []string{"games"}
	StatsKeys           = []string{"stats"}
)
