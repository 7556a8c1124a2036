package engine

import (
	"fmt"
	"time"
)

// Mention formats a user mention for the chat platform.
func Mention(memberID string) string {
	return "<@" + memberID + ">"
}

// RoleMention formats a role mention for the chat platform.
func RoleMention(roleID string) string {
	return "<@&" + roleID + ">"
}

// directionJoin is the notice direction line for a player joining a team.
func directionJoin(teamName string) string {
	return "Free →→→ " + teamName
}

// directionLeave is the notice direction line for a player leaving a team.
func directionLeave(teamName string) string {
	return teamName + " →→→ Free"
}

// formatNotice renders the transfer announcement. The roster count is a fresh
// count of current role holders so it reflects the just-applied mutation.
func formatNotice(teamName, direction, playerMention string, count, capacity int, pingRoleID string, now time.Time) string {
	return fmt.Sprintf(
		"## Transfer | %s\n"+
			"### %s\n"+
			"### Player: %s\n"+
			"- Position: unknown\n"+
			"- Market value: Free\n"+
			"- %s\n"+
			"- %d/%d\n"+
			"### Ping: %s",
		teamName,
		direction,
		playerMention,
		now.UTC().Format("02/01"),
		count,
		capacity,
		RoleMention(pingRoleID),
	)
}
