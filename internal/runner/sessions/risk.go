package sessions

import "math"

// riskEpsilon — порог вырожденной дистанции до стопа.
const riskEpsilon = 1e-9

// CalcSizeByRisk считает размер позиции под фиксированный денежный риск.
// Чистая функция, всегда возвращает рабочий размер:
//   - вырожденный стоп (|entry-sl| < eps) -> minSize,
//   - иначе riskBudget / (dist * pipValue), округление до одного знака
//     half-away-from-zero, затем кламп в [minSize, maxSize].
func CalcSizeByRisk(entry, sl, riskBudget, pipValue, minSize, maxSize float64) float64 {
	dist := math.Abs(entry - sl)
	if dist < riskEpsilon || pipValue <= 0 {
		return minSize
	}

	raw := riskBudget / (dist * pipValue)
	sz := roundHalfAway(raw, 1)

	if sz < minSize {
		sz = minSize
	}
	if maxSize > 0 && sz > maxSize {
		sz = maxSize
	}
	return sz
}

func roundHalfAway(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Trunc(v*p+math.Copysign(0.5, v)) / p
}
