package game

import "strings"

// EntryKind categorizes a log entry.
type EntryKind string

const (
	KindStatement EntryKind = "statement"
	KindVote      EntryKind = "vote"
	KindExecution EntryKind = "execution"
	KindNight     EntryKind = "night"
	KindSystem    EntryKind = "system"
)

// Visibility is the disclosure scope of a log entry.
type Visibility string

const (
	VisPublic Visibility = "public"
	VisTeam   Visibility = "team"  // visible to every member of Entry.Team
	VisActor  Visibility = "actor" // visible to the actor only
)

// LogEntry is one immutable record of game history. Insertion order is the
// canonical ordering.
type LogEntry struct {
	Day        int         `json:"day"`
	Phase      Phase       `json:"phase"`
	Kind       EntryKind   `json:"kind"`
	Actor      string      `json:"actor,omitempty"`
	Target     string      `json:"target,omitempty"`
	Action     NightAction `json:"action,omitempty"`
	Visibility Visibility  `json:"visibility"`
	Team       Team        `json:"team,omitempty"`
	Text       string      `json:"text"`
}

func (e LogEntry) visibleTo(viewer Player) bool {
	switch e.Visibility {
	case VisPublic:
		return true
	case VisTeam:
		return viewer.Role.Team() == e.Team
	case VisActor:
		return e.Actor == viewer.Name
	}
	return false
}

// Project returns the log entries the viewer is allowed to see, in insertion
// order. An unknown viewer (or the empty name) sees the public log only.
func Project(g GameState, viewer string) []LogEntry {
	p, known := g.Find(viewer)
	out := make([]LogEntry, 0, len(g.Log))
	for _, e := range g.Log {
		if e.Visibility == VisPublic || (known && e.visibleTo(p)) {
			out = append(out, e)
		}
	}
	return out
}

// ProjectPublic returns the log every player sees.
func ProjectPublic(g GameState) []LogEntry {
	return Project(g, "")
}

// ProjectRecent is Project bounded to the most recent maxStatements statement
// entries. Votes, eliminations and night results are never truncated, so the
// context stays small without losing game-critical facts. A negative bound
// keeps everything.
func ProjectRecent(g GameState, viewer string, maxStatements int) []LogEntry {
	visible := Project(g, viewer)
	if maxStatements < 0 {
		return visible
	}
	statements := 0
	for _, e := range visible {
		if e.Kind == KindStatement {
			statements++
		}
	}
	drop := statements - maxStatements
	if drop <= 0 {
		return visible
	}
	out := make([]LogEntry, 0, len(visible)-drop)
	for _, e := range visible {
		if e.Kind == KindStatement && drop > 0 {
			drop--
			continue
		}
		out = append(out, e)
	}
	return out
}

// FormatLog renders entries one per line, for model context and transcripts.
func FormatLog(entries []LogEntry) string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.Text
	}
	return strings.Join(lines, "\n")
}
