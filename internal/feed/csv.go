package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"amm-fee-lab/internal/domain"
)

var csvHeader = []string{"timestamp", "open", "high", "low", "close", "volume"}

// CSVBarSource reads OHLCV bars from a CSV file. The file must start
// with the header "timestamp,open,high,low,close,volume"; rows must be
// in non-decreasing timestamp order.
type CSVBarSource struct {
	r        *csv.Reader
	closer   io.Closer
	lastTS   int64
	row      int
	closed   bool
	havePrev bool
}

// OpenCSVBarSource opens path and validates the header.
func OpenCSVBarSource(path string) (*CSVBarSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bars file: %w", err)
	}
	src, err := NewCSVBarSource(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	src.closer = f
	return src, nil
}

// NewCSVBarSource reads bars from r. The caller keeps ownership of r
// unless the source was opened via OpenCSVBarSource.
func NewCSVBarSource(r io.Reader) (*CSVBarSource, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", ErrMalformedData)
	}
	for i, want := range csvHeader {
		if header[i] != want {
			return nil, fmt.Errorf("header column %d is %q, want %q: %w", i, header[i], want, ErrMalformedData)
		}
	}
	return &CSVBarSource{r: cr, row: 1}, nil
}

// Next returns the next bar in file order.
func (s *CSVBarSource) Next(ctx context.Context) (domain.Bar, error) {
	if err := ctx.Err(); err != nil {
		return domain.Bar{}, err
	}
	if s.closed {
		return domain.Bar{}, ErrClosed
	}

	rec, err := s.r.Read()
	if err == io.EOF {
		return domain.Bar{}, ErrExhausted
	}
	if err != nil {
		return domain.Bar{}, fmt.Errorf("row %d: %v: %w", s.row+1, err, ErrMalformedData)
	}
	s.row++

	bar, err := parseBar(rec)
	if err != nil {
		return domain.Bar{}, fmt.Errorf("row %d: %w", s.row, err)
	}
	if s.havePrev && bar.Timestamp < s.lastTS {
		return domain.Bar{}, fmt.Errorf("row %d: timestamp %d before previous %d: %w", s.row, bar.Timestamp, s.lastTS, ErrMalformedData)
	}
	s.lastTS = bar.Timestamp
	s.havePrev = true
	return bar, nil
}

// Close releases the underlying file, if the source owns one.
func (s *CSVBarSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func parseBar(rec []string) (domain.Bar, error) {
	ts, err := strconv.ParseInt(rec[0], 10, 64)
	if err != nil {
		return domain.Bar{}, fmt.Errorf("timestamp %q: %w", rec[0], ErrMalformedData)
	}
	vals := make([]float64, 5)
	names := []string{"open", "high", "low", "close", "volume"}
	for i := 0; i < 5; i++ {
		v, err := strconv.ParseFloat(rec[i+1], 64)
		if err != nil {
			return domain.Bar{}, fmt.Errorf("%s %q: %w", names[i], rec[i+1], ErrMalformedData)
		}
		if v < 0 {
			return domain.Bar{}, fmt.Errorf("%s is negative: %w", names[i], ErrMalformedData)
		}
		vals[i] = v
	}
	return domain.Bar{
		Timestamp: ts,
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, nil
}

// ClosePriceSource adapts a BarSource into a PriceSource by taking each
// bar's close.
type ClosePriceSource struct {
	bars BarSource
}

// NewClosePriceSource wraps bars.
func NewClosePriceSource(bars BarSource) *ClosePriceSource {
	return &ClosePriceSource{bars: bars}
}

// Next returns the close price of the next bar.
func (s *ClosePriceSource) Next(ctx context.Context) (float64, error) {
	bar, err := s.bars.Next(ctx)
	if err != nil {
		return 0, err
	}
	return bar.Close, nil
}

var (
	_ BarSource   = (*CSVBarSource)(nil)
	_ PriceSource = (*ClosePriceSource)(nil)
)
