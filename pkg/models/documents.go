package models

// Data file names served under the data path
const (
	DocStandings     = "standings.json"
	DocProbabilities = "probabilities.json"
	DocRecentGames   = "recent_games.json"
	DocTeamStats     = "team_stats.json"
)

// DocumentNames lists the four documents a dashboard load gathers
var DocumentNames = []string{DocStandings, DocProbabilities, DocRecentGames, DocTeamStats}

// RawDocuments is an immutable snapshot of one load. A nil field means that
// document failed to fetch or parse.
type RawDocuments struct {
	Standings     map[string]interface{}
	Probabilities map[string]interface{}
	RecentGames   map[string]interface{}
	TeamStats     map[string]interface{}
}

// Get returns the document stored under a data file name
func (d RawDocuments) Get(name string) map[string]interface{} {
	switch name {
	case DocStandings:
		return d.Standings
	case DocProbabilities:
		return d.Probabilities
	case DocRecentGames:
		return d.RecentGames
	case DocTeamStats:
		return d.TeamStats
	default:
		return nil
	}
}

// With returns a copy with the named document replaced
func (d RawDocuments) With(name string, doc map[string]interface{}) RawDocuments {
	switch name {
	case DocStandings:
		d.Standings = doc
	case DocProbabilities:
		d.Probabilities = doc
	case DocRecentGames:
		d.RecentGames = doc
	case DocTeamStats:
		d.TeamStats = doc
	}
	return d
}
