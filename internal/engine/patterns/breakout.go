package patterns

import "priceActionBot/internal/domain"

const (
	breakoutLookback = 20

	failedBreakoutMinBodyRatio = 0.4
)

// DetectBreakout fires when the last bar closes beyond the extreme of the
// prior lookback bars with a range exceeding their average. The trend
// direction only vetoes a breakout straight into an established opposite
// trend; the close-position/body-ratio quality gate is applied by the
// orchestrator, not here.
func DetectBreakout(memory []domain.Bar, trendDirection domain.Direction) *domain.Signal {
	if len(memory) < breakoutLookback+1 {
		return nil
	}
	prev := memory[len(memory)-breakoutLookback-1 : len(memory)-1]
	last := memory[len(memory)-1]

	recentHigh := maxHigh(prev)
	recentLow := minLow(prev)
	avgRange := meanRange(prev)
	barRange := last.Range()

	if last.Close > recentHigh && barRange > avgRange && trendDirection != domain.Bearish {
		return &domain.Signal{
			Setup:         domain.SetupBreakout,
			Direction:     domain.Bullish,
			Time:          last.Time,
			Price:         last.Close,
			PullbackDepth: last.Close - recentHigh,
			PullbackBars:  0,
		}
	}
	if last.Close < recentLow && barRange > avgRange && trendDirection != domain.Bullish {
		return &domain.Signal{
			Setup:         domain.SetupBreakout,
			Direction:     domain.Bearish,
			Time:          last.Time,
			Price:         last.Close,
			PullbackDepth: recentLow - last.Close,
			PullbackBars:  0,
		}
	}
	return nil
}

// DetectFailedBreakout checks whether the current bar immediately negates a
// breakout bar registered on the prior bar: price closes back through the
// breakout bar's close with body ratio above 0.4 and an opposite
// close-position. The failure itself is the confirmation, so the emitted
// signal needs no follow-through.
func DetectFailedBreakout(current domain.Bar, breakoutDir domain.Direction, breakoutBar domain.Bar) *domain.Signal {
	rng := current.Range()
	if rng == 0 {
		return nil
	}
	closePos := current.ClosePos()
	bodyRatio := current.BodyRatio()
	if bodyRatio <= failedBreakoutMinBodyRatio {
		return nil
	}

	if breakoutDir == domain.Bullish {
		if current.Close < breakoutBar.Close && closePos < signalClosePosBear {
			return &domain.Signal{
				Setup:         domain.SetupFailedBreakout,
				Direction:     domain.Bearish,
				Time:          current.Time,
				Price:         current.Close,
				PullbackDepth: breakoutBar.High - current.Close,
				PullbackBars:  1,
			}
		}
		return nil
	}
	if breakoutDir == domain.Bearish {
		if current.Close > breakoutBar.Close && closePos > signalClosePosBull {
			return &domain.Signal{
				Setup:         domain.SetupFailedBreakout,
				Direction:     domain.Bullish,
				Time:          current.Time,
				Price:         current.Close,
				PullbackDepth: current.Close - breakoutBar.Low,
				PullbackBars:  1,
			}
		}
	}
	return nil
}
