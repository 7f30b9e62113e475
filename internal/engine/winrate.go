package engine

import "math"

// wdlScale sets how quickly win/loss probability saturates with score; a
// larger value means more centipawns are needed to move the needle. With 240
// and the draw spread below, the win probability is 50% at a lead of 90 cp
// and about 65% at a lead of 240 cp.
const wdlScale = 240.0

// wdlDrawSpread widens the gap between the "win-or-draw" and "win" logistic
// curves, producing the draw probability mass around an even score.
const wdlDrawSpread = 90.0

// WDL estimates win/draw/loss permille from a centipawn score using a pair
// of logistic curves separated by a fixed draw spread, the same two-curve
// shape more precisely fit Elo-based models use, simplified to constant
// coefficients since no game database is available to calibrate against
// material count or game phase.
func WDL(score int) (win, draw, loss int) {
	x := float64(score)
	pWinOrDraw := 1.0 / (1.0 + math.Exp(-(x+wdlDrawSpread)/wdlScale))
	pWin := 1.0 / (1.0 + math.Exp(-(x-wdlDrawSpread)/wdlScale))

	win = int(pWin * 1000)
	loss = int((1 - pWinOrDraw) * 1000)
	draw = 1000 - win - loss
	if draw < 0 {
		draw = 0
	}
	return win, draw, loss
}

// NormalizeScore rescales a raw centipawn score so that a score of 100
// corresponds to roughly a 50%-plus-half-the-draw-mass win probability
// under the WDL model above, the convention UCI_ShowWDL-aware GUIs expect
// from the "cp" field when NormalizeScore is enabled.
func NormalizeScore(score int) int {
	if score > MateScore-MaxPly || score < -MateScore+MaxPly {
		return score
	}
	const normalizeAt = 100.0
	win, _, loss := WDL(int(normalizeAt))
	pAtNorm := float64(win-loss) / 1000.0
	if pAtNorm <= 0 {
		return score
	}
	win, _, loss = WDL(score)
	p := float64(win-loss) / 1000.0
	return int(p / pAtNorm * normalizeAt)
}
