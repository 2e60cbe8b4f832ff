package domain

type Verdict string

const (
	VerdictNoMatch     Verdict = "no_match"
	VerdictAccepted    Verdict = "game_accepted"
	VerdictSearchAgain Verdict = "search_again"
	VerdictOK          Verdict = "ok"
)
