package service

import (
	"math"

	"gap_bot/internal/models"
)

// IdentifyGap классифицирует дневной гэп по первому бару сессии
// относительно сессионной EMA.
//
// returns:
//
//	gap, determined=true  -> тип гэпа зафиксирован на день
//	determined=false      -> EMA не определена, повторить на следующем баре
func IdentifyGap(firstBarHigh, firstBarLow, emaValue float64) (models.GapType, bool) {
	if math.IsNaN(emaValue) {
		return models.GapNone, false
	}
	switch {
	case firstBarLow > emaValue:
		return models.GapUp, true
	case firstBarHigh < emaValue:
		return models.GapDown, true
	default:
		return models.GapNone, true
	}
}
