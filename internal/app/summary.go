package app

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"priceActionBot/internal/domain"
)

// SetupStats aggregates outcomes for one setup type.
type SetupStats struct {
	Trades     int
	Wins       int
	TotalR     float64
	Expectancy float64
}

// Summary is the performance report for a series of closed trades.
type Summary struct {
	Trades        int
	Wins          int
	Losses        int
	Winrate       float64
	TotalR        float64
	Expectancy    float64
	ProfitFactor  float64
	VolatilityR   float64
	SharpeProxy   float64
	MaxDrawdownR  float64
	MaxWinStreak  int
	MaxLossStreak int
	BySetup       map[domain.SetupType]SetupStats
}

// Summarize computes the performance report from closed trades, in order.
func Summarize(trades []domain.Trade) Summary {
	s := Summary{BySetup: make(map[domain.SetupType]SetupStats)}
	grossWin, grossLoss := 0.0, 0.0
	equity, peak := 0.0, 0.0
	winStreak, lossStreak := 0, 0

	for _, t := range trades {
		s.Trades++
		s.TotalR += t.RMultiple
		if t.RMultiple > 0 {
			s.Wins++
			grossWin += t.RMultiple
			winStreak++
			lossStreak = 0
		} else {
			s.Losses++
			grossLoss += -t.RMultiple
			lossStreak++
			winStreak = 0
		}
		if winStreak > s.MaxWinStreak {
			s.MaxWinStreak = winStreak
		}
		if lossStreak > s.MaxLossStreak {
			s.MaxLossStreak = lossStreak
		}

		equity += t.RMultiple
		if equity > peak {
			peak = equity
		}
		if dd := peak - equity; dd > s.MaxDrawdownR {
			s.MaxDrawdownR = dd
		}

		st := s.BySetup[t.Setup]
		st.Trades++
		st.TotalR += t.RMultiple
		if t.RMultiple > 0 {
			st.Wins++
		}
		s.BySetup[t.Setup] = st
	}

	if s.Trades > 0 {
		s.Winrate = float64(s.Wins) / float64(s.Trades)
		s.Expectancy = s.TotalR / float64(s.Trades)

		variance := 0.0
		for _, t := range trades {
			d := t.RMultiple - s.Expectancy
			variance += d * d
		}
		s.VolatilityR = math.Sqrt(variance / float64(s.Trades))
		if s.VolatilityR > 0 {
			s.SharpeProxy = s.Expectancy / s.VolatilityR
		}
	}
	if grossLoss > 0 {
		s.ProfitFactor = grossWin / grossLoss
	}
	for setup, st := range s.BySetup {
		if st.Trades > 0 {
			st.Expectancy = st.TotalR / float64(st.Trades)
		}
		s.BySetup[setup] = st
	}
	return s
}

// String renders the report for console output.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "trades=%d winrate=%.1f%% expectancy=%.2fR total=%.1fR profit_factor=%.2f sharpe=%.2f max_dd=%.1fR streaks=%dW/%dL\n",
		s.Trades, s.Winrate*100, s.Expectancy, s.TotalR, s.ProfitFactor, s.SharpeProxy, s.MaxDrawdownR,
		s.MaxWinStreak, s.MaxLossStreak)

	setups := make([]string, 0, len(s.BySetup))
	for setup := range s.BySetup {
		setups = append(setups, string(setup))
	}
	sort.Strings(setups)
	for _, setup := range setups {
		st := s.BySetup[domain.SetupType(setup)]
		winrate := 0.0
		if st.Trades > 0 {
			winrate = float64(st.Wins) / float64(st.Trades)
		}
		fmt.Fprintf(&b, "  %-18s trades=%-4d winrate=%.1f%% expectancy=%.2fR\n",
			setup, st.Trades, winrate*100, st.Expectancy)
	}
	return b.String()
}
