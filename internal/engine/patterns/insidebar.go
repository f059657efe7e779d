package patterns

import "priceActionBot/internal/domain"

const (
	insideBarMinBars      = 3
	motherBarClosePosBull = 0.75
	motherBarClosePosBear = 0.25
	motherBarMinBodyRatio = 0.5
)

// DetectInsideBar fires when the current bar is fully contained by the
// prior ("mother") bar and the mother bar itself is a strong trend bar in
// the bias direction. Compression after strength; entry is on a break of
// the mother bar.
func DetectInsideBar(memory []domain.Bar, bias domain.Direction) *domain.Signal {
	if bias != domain.Bullish && bias != domain.Bearish {
		return nil
	}
	if len(memory) < insideBarMinBars {
		return nil
	}

	current := memory[len(memory)-1]
	mother := memory[len(memory)-2]

	if !current.Inside(mother) {
		return nil
	}
	mRng := mother.Range()
	if mRng == 0 {
		return nil
	}
	mClosePos := mother.ClosePos()
	mBodyRatio := mother.BodyRatio()

	if bias == domain.Bullish {
		if !(mClosePos > motherBarClosePosBull && mBodyRatio > motherBarMinBodyRatio) {
			return nil
		}
	} else {
		if !(mClosePos < motherBarClosePosBear && mBodyRatio > motherBarMinBodyRatio) {
			return nil
		}
	}

	return &domain.Signal{
		Setup:         domain.SetupInsideBar,
		Direction:     bias,
		Time:          current.Time,
		Price:         current.Close,
		PullbackDepth: mRng, // mother bar range as the reference move
		PullbackBars:  1,
		MotherHigh:    mother.High,
		MotherLow:     mother.Low,
	}
}
