package engine

import "priceActionBot/internal/domain"

// trendMinBars is the minimum window for a slope-based trend estimate.
const trendMinBars = 20

// TrendEstimate combines a least-squares slope with the fraction of
// up/down closes over the window.
type TrendEstimate struct {
	BullStrength float64
	BearStrength float64
	Direction    domain.Direction
	Ready        bool
}

// EstimateTrend returns the slope-based trend direction for the window.
// Fewer than 20 bars yields a not-ready estimate with Neutral direction.
func EstimateTrend(window []domain.Bar) TrendEstimate {
	if len(window) < trendMinBars {
		return TrendEstimate{Direction: domain.Neutral}
	}

	n := float64(len(window))
	var sumX, sumY, sumXY, sumXX, meanClose float64
	for i, b := range window {
		x := float64(i)
		sumX += x
		sumY += b.Close
		sumXY += x * b.Close
		sumXX += x * x
	}
	meanClose = sumY / n

	// Least-squares slope of close against bar index.
	denom := n*sumXX - sumX*sumX
	var slope float64
	if denom != 0 {
		slope = (n*sumXY - sumX*sumY) / denom
	}
	slopeStrength := 0.0
	if meanClose != 0 {
		slopeStrength = slope / meanClose
		if slopeStrength < 0 {
			slopeStrength = -slopeStrength
		}
	}

	var up, down float64
	for i := 1; i < len(window); i++ {
		d := window[i].Close - window[i-1].Close
		if d > 0 {
			up++
		} else if d < 0 {
			down++
		}
	}
	diffs := n - 1
	upFrac := up / diffs
	downFrac := down / diffs

	est := TrendEstimate{Ready: true}
	if slope > 0 {
		est.BullStrength = (slopeStrength + upFrac) / 2
		est.BearStrength = downFrac / 2
	} else if slope < 0 {
		est.BullStrength = upFrac / 2
		est.BearStrength = (slopeStrength + downFrac) / 2
	} else {
		est.BullStrength = upFrac / 2
		est.BearStrength = downFrac / 2
	}

	switch {
	case est.BullStrength > est.BearStrength:
		est.Direction = domain.Bullish
	case est.BearStrength > est.BullStrength:
		est.Direction = domain.Bearish
	default:
		est.Direction = domain.Neutral
	}
	return est
}
