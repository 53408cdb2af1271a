package graph

import (
	"regexp"
	"strings"
)

var (
	proposalRe = regexp.MustCompile(`FINAL TRANSACTION PROPOSAL:\s*\*{0,2}(BUY|SELL|HOLD)\*{0,2}`)
	// Whole words only, so BUYBACK or SHAREHOLDERS never read as actions.
	mentionRe = regexp.MustCompile(`\b(BUY|SELL|HOLD)\b`)
)

// ExtractSignal pulls the trade action out of a judge's free-form decision.
// The explicit proposal line wins; failing that the last whole-word mention
// of an action is taken; an unreadable decision defaults to HOLD rather than
// failing the run.
func ExtractSignal(decision string) Action {
	upper := strings.ToUpper(decision)

	if m := proposalRe.FindStringSubmatch(upper); m != nil {
		return Action(m[1])
	}

	mentions := mentionRe.FindAllStringSubmatch(upper, -1)
	if len(mentions) == 0 {
		return ActionHold
	}
	return Action(mentions[len(mentions)-1][1])
}
