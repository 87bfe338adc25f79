package contracts

import "time"

// PriceBar is one trading day of price data for a ticker. Dates are trading
// days only; there are no synthetic calendar rows. AdjClose is the
// dividend/split-adjusted close used for return calculations. Dividend is the
// per-share amount that went ex on that date, zero on ordinary days.
type PriceBar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adjusted_close"`
	Volume   int64     `json:"volume"`
	Dividend float64   `json:"dividend"`
}

// Horizon identifies a trailing lookback window expressed in trading days.
type Horizon string

const (
	Horizon1Day   Horizon = "1day"
	Horizon1Month Horizon = "1month"
	Horizon3Month Horizon = "3month"
	Horizon6Month Horizon = "6month"
)

// Horizons lists all horizons in display order.
var Horizons = []Horizon{Horizon1Day, Horizon1Month, Horizon3Month, Horizon6Month}

// HorizonTradingDays maps each horizon to its trading-day count. Calendar
// periods are approximated by trading days (21 per month).
var HorizonTradingDays = map[Horizon]int{
	Horizon1Day:   1,
	Horizon1Month: 21,
	Horizon3Month: 63,
	Horizon6Month: 126,
}

// HorizonMomentum holds the trailing return and the dividend-blended momentum
// score for one horizon. Both are nil when the ticker's history is shorter
// than the horizon needs.
type HorizonMomentum struct {
	Return *float64 `json:"return"`
	Score  *float64 `json:"momentum_score"`
}

// MomentumRecord is the per-ticker momentum row across all horizons.
type MomentumRecord struct {
	Ticker   string                      `json:"ticker"`
	Horizons map[Horizon]HorizonMomentum `json:"horizons"`
}
