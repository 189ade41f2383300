package domain

// Bar is one OHLCV candle of the external reference market.
type Bar struct {
	Timestamp int64 // Unix seconds
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}
