package dates

type Bracket string

const (
	BracketChild  Bracket = "0-12"
	BracketTeen   Bracket = "13-17"
	BracketAdult  Bracket = "18-59"
	BracketSenior Bracket = "60+"
)

// Brackets lists the age brackets in display order.
var Brackets = []Bracket{BracketChild, BracketTeen, BracketAdult, BracketSenior}

func BracketOf(age int) Bracket {
	switch {
	case age <= 12:
		return BracketChild
	case age <= 17:
		return BracketTeen
	case age <= 59:
		return BracketAdult
	default:
		return BracketSenior
	}
}
