package strategy

import "SignalWatch/internal/model"

// buyScores ranks buy reasons for the screener.
var buyScores = map[model.ReasonCode]int{
	model.ReasonGoldenCross: 3,
	model.ReasonRebound:     2,
	model.ReasonVolumeSurge: 1,
}

// BuyScore converts a buy evaluation to a screener score; no signal scores 0.
func BuyScore(r model.SignalResult) int {
	if !r.IsSignal {
		return 0
	}
	return buyScores[r.Code]
}
