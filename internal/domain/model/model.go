// Package model contains domain models passed between layers.
package model

import "time"

// Grid dimensions for a dungeon layout.
const (
	GridSize     = 10
	LayoutLength = GridSize * GridSize
)

// SystemAuthor is the attribution sentinel for built-in dungeons.
const SystemAuthor = "system"

// Default identifiers substituted when a submission omits a field.
const (
	DefaultMonster  = "Goblin"
	DefaultModifier = "Normal"
)

// DungeonConfig is the active daily puzzle.
type DungeonConfig struct {
	Layout      string `json:"layout"` // 100 chars over {0,1}: 0 = wall, 1 = floor
	Monster     string `json:"monster"`
	Modifier    string `json:"modifier"`
	CreatedAt   int64  `json:"createdAt"` // unix milliseconds at persistence
	SubmittedBy string `json:"submittedBy,omitempty"`
}

// CommentSubmission is a dungeon candidate parsed from a single comment.
type CommentSubmission struct {
	Layout    string `json:"layout"`
	Monster   string `json:"monster"`
	Modifier  string `json:"modifier"`
	Upvotes   int    `json:"upvotes"`
	CommentID string `json:"commentId"`
	Author    string `json:"author"`
}

// PlayerScoreEntry is one leaderboard record. Entries are append-only:
// a user may appear multiple times within a day.
type PlayerScoreEntry struct {
	EntryID   string `json:"entryId"` // unique per submission event
	Username  string `json:"username"`
	Score     int    `json:"score"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds, tie-break key
	Survived  bool   `json:"survived"`
}

// LeaderboardEntry is a ranked leaderboard row returned by queries.
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	Username  string `json:"username"`
	Score     int    `json:"score"`
	Timestamp int64  `json:"timestamp"`
}

// GhostMarker records a death location. (X, Y, Username) is the dedupe key.
type GhostMarker struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Username string `json:"username"`
}

// InBounds reports whether the marker lies within the grid.
func (g GhostMarker) InBounds() bool {
	return g.X >= 0 && g.X < GridSize && g.Y >= 0 && g.Y < GridSize
}

// Comment is a raw comment as returned by the comment source.
type Comment struct {
	ID     string `json:"id"`
	Body   string `json:"body"`
	Author string `json:"author"`
	Score  int    `json:"score"` // community approval score
}

// ValidLayout reports whether s is a well-formed layout: exactly
// LayoutLength characters, each '0' or '1'.
func ValidLayout(s string) bool {
	if len(s) != LayoutLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '0' && s[i] != '1' {
			return false
		}
	}
	return true
}

// DayKey derives the UTC calendar day key (YYYY-MM-DD) scoping all
// leaderboard, ghost and dungeon state.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// defaultLayout is a simple cross pattern used when no dungeon has been
// written for the day.
const defaultLayout = "1111111111" +
	"1000000001" +
	"1000000001" +
	"1000000001" +
	"0000000000" +
	"0000000000" +
	"1000000001" +
	"1000000001" +
	"1000000001" +
	"1111111111"

// DefaultDungeon returns the deterministic built-in dungeon used whenever
// no config has been persisted for the current day.
func DefaultDungeon(now time.Time) DungeonConfig {
	return DungeonConfig{
		Layout:      defaultLayout,
		Monster:     DefaultMonster,
		Modifier:    DefaultModifier,
		CreatedAt:   now.UnixMilli(),
		SubmittedBy: SystemAuthor,
	}
}
