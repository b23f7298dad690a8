package application

import "qrplay/internal/domain"

// SignalFor maps a dispatch outcome to the indicator animation to show.
func SignalFor(ok bool) domain.IndicatorKind {
	if ok {
		return domain.IndicatorPulseGreen
	}
	return domain.IndicatorPulseRed
}
