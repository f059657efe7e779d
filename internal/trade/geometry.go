// Package trade turns confirmed signals into stop/target geometry and
// resolves open positions, either by forward-scanning historical bars or
// by running the live management state machine bar by bar.
package trade

import (
	"time"

	"priceActionBot/internal/domain"
)

const (
	atrStopFactor = 1.3
	stopBufferATR = 0.1
	maxStopATR    = 1.5 // wider stops are rejected, never widened silently
	swingRR       = 3.0
	minRewardRisk = 1.0
)

// Plan computes entry, stop and target for a confirmed signal. Entry is a
// stop order at the signal bar's extreme in the trade direction. Returns
// nil with a reject reason when the geometry does not justify the trade.
func Plan(sig *domain.Signal, rec *domain.FeatureRecord, signalBar domain.Bar, atr float64, asset domain.AssetConfig, now time.Time) (*domain.Position, string) {
	if atr <= 0 {
		return nil, "atr_unavailable"
	}

	var entry, extreme float64
	if sig.Direction == domain.Bullish {
		entry = signalBar.High
		extreme = signalBar.Low
	} else {
		entry = signalBar.Low
		extreme = signalBar.High
	}

	extremeDist := entry - extreme
	if sig.Direction == domain.Bearish {
		extremeDist = extreme - entry
	}

	stopDist := atrStopFactor * atr
	if d := extremeDist + stopBufferATR*atr; d > stopDist {
		stopDist = d
	}
	if stopDist > maxStopATR*atr {
		return nil, "stop_too_wide"
	}

	targetDist := stopDist * (1 + sig.RegimeProb)
	if asset.TargetMode == domain.TargetModeMeasuredMove && rec != nil {
		impulse := rec.ImpulseSizeATR * atr
		if limit := stopDist * swingRR; impulse > limit {
			impulse = limit
		}
		if impulse > targetDist {
			targetDist = impulse
		}
	}
	if sig.ForceScalp && targetDist > stopDist {
		targetDist = stopDist
	}
	if targetDist/stopDist < minRewardRisk {
		return nil, "reward_risk_below_one"
	}

	pos := &domain.Position{
		Symbol:     asset.Symbol,
		Setup:      sig.Setup,
		Direction:  sig.Direction,
		Entry:      entry,
		StopDist:   stopDist,
		TargetDist: targetDist,
		EntryTime:  now,
		HighWater:  entry,
		LowWater:   entry,
		Asset:      asset,
	}
	if sig.Direction == domain.Bullish {
		pos.Stop = entry - stopDist
		pos.Target = entry + targetDist
	} else {
		pos.Stop = entry + stopDist
		pos.Target = entry - targetDist
	}
	pos.InitialStop = pos.Stop
	return pos, ""
}
