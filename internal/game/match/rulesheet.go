package match

import (
	"fmt"
	"strings"
)

// RuleSheet is the player-facing summary of the active rules.
type RuleSheet struct {
	Shots        []string            `json:"shots"`
	Beats        map[string][]string `json:"beats"`
	WinningScore int                 `json:"winningScore"`
	WinMargin    int                 `json:"winMargin"`
}

func (r *Registry) RuleSheet() RuleSheet {
	shots := r.rules.Shots()
	names := make([]string, len(shots))
	for i, s := range shots {
		names[i] = s.String()
	}
	return RuleSheet{
		Shots:        names,
		Beats:        r.rules.Table(),
		WinningScore: r.settings.WinningScore,
		WinMargin:    r.settings.WinMargin,
	}
}

// String renders one line per shot followed by the win condition.
func (rs RuleSheet) String() string {
	var sb strings.Builder
	sb.WriteString("Shots and what they beat:\n")
	for _, s := range rs.Shots {
		fmt.Fprintf(&sb, "  %-6s beats %s\n", s, strings.Join(rs.Beats[s], ", "))
	}
	fmt.Fprintf(&sb, "First to %d points with a %d point lead wins.", rs.WinningScore, rs.WinMargin)
	return sb.String()
}
