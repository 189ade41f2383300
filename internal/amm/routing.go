package amm

// RouteQuote is one pool's answer in a routing call. A failed quote is
// captured in Err rather than propagated, since partial failure across a
// pool set is an expected operating condition.
type RouteQuote struct {
	PoolID    string
	AmountOut float64
	Fee       float64
	Err       error
}

// GetAllQuotes quotes the same trade against every pool and returns the
// results keyed by pool ID. It never fails; per-pool errors are recorded
// in the corresponding RouteQuote.
func GetAllQuotes(pools []*Pool, tradeSize float64, dir Direction) map[string]RouteQuote {
	quotes := make(map[string]RouteQuote, len(pools))
	for _, p := range pools {
		out, err := p.quoteChecked(tradeSize, dir)
		quotes[p.ID()] = RouteQuote{
			PoolID:    p.ID(),
			AmountOut: out,
			Fee:       p.Fee(),
			Err:       err,
		}
	}
	return quotes
}

// GetBestExecution returns the pool with the maximum output for the trade.
// Ties are broken by lower fee, then by position in the pools slice.
// Returns ErrNoViableRoute when every pool failed to quote.
func GetBestExecution(pools []*Pool, tradeSize float64, dir Direction) (*Pool, RouteQuote, error) {
	var best *Pool
	var bestQuote RouteQuote
	for _, p := range pools {
		out, err := p.quoteChecked(tradeSize, dir)
		if err != nil {
			continue
		}
		q := RouteQuote{PoolID: p.ID(), AmountOut: out, Fee: p.Fee()}
		if best == nil || q.AmountOut > bestQuote.AmountOut ||
			(q.AmountOut == bestQuote.AmountOut && q.Fee < bestQuote.Fee) {
			best = p
			bestQuote = q
		}
	}
	if best == nil {
		return nil, RouteQuote{}, ErrNoViableRoute
	}
	return best, bestQuote, nil
}
