package agent

import (
	"fmt"
	"strings"

	"github.com/moonlit-games/werewolf/internal/game"
)

// systemPrompt frames the model as one player with a hidden role.
func systemPrompt(self game.Player) string {
	return fmt.Sprintf(
		"You are %s, a player in a game of werewolf. Your secret role is %s (team %s). "+
			"Stay in character, never reveal your role directly, and keep replies short.",
		self.Name, self.Role, self.Role.Team())
}

func candidateNames(candidates []game.Player) []string {
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}
	return names
}

// decisionPrompt assembles the model context: the viewer-scoped history, the
// current table, and the instruction for this decision kind.
func decisionPrompt(d Decision) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Day %d, %s phase.\n\n", d.Day, d.Phase)
	if len(d.View) > 0 {
		b.WriteString("Game history visible to you:\n")
		b.WriteString(game.FormatLog(d.View))
		b.WriteString("\n\n")
	}
	switch d.Kind {
	case game.DecideDiscuss:
		b.WriteString("It is your turn to speak. Reply with one or two sentences of table talk.")
	case game.DecideVote:
		fmt.Fprintf(&b, "Vote to execute one player. Reply with exactly one name from: %s",
			strings.Join(candidateNames(d.Candidates), ", "))
	case game.DecideDivine:
		fmt.Fprintf(&b, "Choose one player to divine tonight. Reply with exactly one name from: %s",
			strings.Join(candidateNames(d.Candidates), ", "))
	case game.DecideGuard:
		fmt.Fprintf(&b, "Choose one player to guard tonight. Reply with exactly one name from: %s",
			strings.Join(candidateNames(d.Candidates), ", "))
	case game.DecideAttack:
		fmt.Fprintf(&b, "Choose one player to attack tonight. Reply with exactly one name from: %s",
			strings.Join(candidateNames(d.Candidates), ", "))
	}
	return b.String()
}
