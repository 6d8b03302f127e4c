package models

// GapType — дневной гэп относительно сессионной EMA.
// Ровно одно значение на торговый день, выставляется один раз.
type GapType int

const (
	GapNone GapType = iota
	GapUp
	GapDown
)

func (g GapType) String() string {
	switch g {
	case GapUp:
		return "up"
	case GapDown:
		return "down"
	default:
		return "none"
	}
}
