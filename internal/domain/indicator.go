package domain

type IndicatorKind string

const (
	IndicatorPulseGreen IndicatorKind = "pulse-green"
	IndicatorPulseRed   IndicatorKind = "pulse-red"
	IndicatorRainbow    IndicatorKind = "rainbow"
)
