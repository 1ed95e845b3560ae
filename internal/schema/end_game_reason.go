package schema

import "fmt"

// EndGameReason is the hanab.live "endCondition" carried by an EndGameAction.
type EndGameReason int

const (
	EndInProgress           EndGameReason = 0
	EndNormal               EndGameReason = 1
	EndStrikeout            EndGameReason = 2
	EndTimeout              EndGameReason = 3
	EndTerminatedByPlayer   EndGameReason = 4
	EndSpeedrunFail         EndGameReason = 5
	EndIdleTimeout          EndGameReason = 6
	EndCharacterSoftlock    EndGameReason = 7
	EndAllOrNothingFail     EndGameReason = 8
	EndAllOrNothingSoftlock EndGameReason = 9
	EndTerminatedByVote     EndGameReason = 10
)

var endGameReasonNames = [...]string{
	EndInProgress:           "in progress",
	EndNormal:               "normal",
	EndStrikeout:            "strikeout",
	EndTimeout:              "timeout",
	EndTerminatedByPlayer:   "terminated by player",
	EndSpeedrunFail:         "speedrun fail",
	EndIdleTimeout:          "idle timeout",
	EndCharacterSoftlock:    "character softlock",
	EndAllOrNothingFail:     "all or nothing fail",
	EndAllOrNothingSoftlock: "all or nothing softlock",
	EndTerminatedByVote:     "terminated by vote",
}

// Valid reports whether r is one of the eleven defined reasons.
func (r EndGameReason) Valid() bool {
	return r >= EndInProgress && r <= EndTerminatedByVote
}

// String returns the human-readable name of the EndGameReason.
func (r EndGameReason) String() string {
	if !r.Valid() {
		return fmt.Sprintf("EndGameReason(%d)", int(r))
	}
	return endGameReasonNames[r]
}
