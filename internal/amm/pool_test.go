package amm

import (
	"errors"
	"math"
	"testing"
)

func newTestPool(t *testing.T) *Pool {
	t.Helper()
	p, err := New("eth-usd", 100, 300000, 0.003)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

func TestQuote_SellA(t *testing.T) {
	p := newTestPool(t)

	// out = 300000 * 1*0.997 / (100 + 0.997)
	out, err := p.Quote(1, SellA)
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}
	want := 2961.474103191184
	if math.Abs(out-want) > 1e-9 {
		t.Errorf("Quote mismatch: got %v, want %v", out, want)
	}
}

func TestQuote_OutputBelowReserve(t *testing.T) {
	p := newTestPool(t)

	// Even an absurdly large trade can only approach the output reserve.
	out, err := p.Quote(1e12, SellA)
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}
	if out <= 0 || out >= p.ReserveB() {
		t.Errorf("expected 0 < out < reserveB, got out=%v reserveB=%v", out, p.ReserveB())
	}
}

func TestQuote_InvalidInput(t *testing.T) {
	p := newTestPool(t)

	for _, amountIn := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := p.Quote(amountIn, SellA); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Quote(%v) error = %v, want ErrInvalidInput", amountIn, err)
		}
	}
}

func TestQuote_NoMutation(t *testing.T) {
	p := newTestPool(t)

	if _, err := p.Quote(10, BuyA); err != nil {
		t.Fatalf("Quote failed: %v", err)
	}
	if p.ReserveA() != 100 || p.ReserveB() != 300000 {
		t.Errorf("Quote mutated reserves: A=%v B=%v", p.ReserveA(), p.ReserveB())
	}
}

func TestExecuteTrade_MatchesQuote(t *testing.T) {
	p := newTestPool(t)

	quoted, err := p.Quote(5, BuyA)
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}
	result, err := p.ExecuteTrade(5, BuyA)
	if err != nil {
		t.Fatalf("ExecuteTrade failed: %v", err)
	}
	if result.AmountOut != quoted {
		t.Errorf("execution disagrees with quote: got %v, want %v", result.AmountOut, quoted)
	}
}

func TestExecuteTrade_ReservesAndInvariant(t *testing.T) {
	p := newTestPool(t)
	kBefore := p.K()

	result, err := p.ExecuteTrade(1, SellA)
	if err != nil {
		t.Fatalf("ExecuteTrade failed: %v", err)
	}

	if got, want := p.ReserveA(), 101.0; got != want {
		t.Errorf("reserveA: got %v, want %v", got, want)
	}
	if got, want := p.ReserveB(), 300000-result.AmountOut; got != want {
		t.Errorf("reserveB: got %v, want %v", got, want)
	}
	// Fee retained in the pool never decreases the invariant product.
	if p.K() < kBefore {
		t.Errorf("invariant decreased: %v -> %v", kBefore, p.K())
	}
}

func TestExecuteTrade_Slippage(t *testing.T) {
	p := newTestPool(t)

	result, err := p.ExecuteTrade(1, SellA)
	if err != nil {
		t.Fatalf("ExecuteTrade failed: %v", err)
	}

	// spot before = 3000; effective = 2961.4741...
	wantSlippage := -0.012841965602938672
	if math.Abs(result.Slippage-wantSlippage) > 1e-12 {
		t.Errorf("slippage: got %v, want %v", result.Slippage, wantSlippage)
	}
	if math.Abs(result.FeePaid-0.003) > 1e-15 {
		t.Errorf("feePaid: got %v, want 0.003", result.FeePaid)
	}
}

func TestExecuteTrade_ReserveExhausted(t *testing.T) {
	p, err := New("thin", 1, 1e-7, 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Drives the B reserve below the viable floor.
	if _, err := p.ExecuteTrade(1e6, SellA); !errors.Is(err, ErrReserveExhausted) {
		t.Fatalf("error = %v, want ErrReserveExhausted", err)
	}
	// Reserves untouched after a rejected trade.
	if p.ReserveA() != 1 || p.ReserveB() != 1e-7 {
		t.Errorf("rejected trade mutated reserves: A=%v B=%v", p.ReserveA(), p.ReserveB())
	}
}

func TestAddRemoveLiquidity_RoundTrip(t *testing.T) {
	p := newTestPool(t)

	addedA, addedB, err := p.AddLiquidity(50, 150000)
	if err != nil {
		t.Fatalf("AddLiquidity failed: %v", err)
	}
	if addedA != 50 || addedB != 150000 {
		t.Errorf("added: got (%v, %v), want (50, 150000)", addedA, addedB)
	}
	if p.ReserveA() != 150 || p.ReserveB() != 450000 {
		t.Errorf("reserves: got (%v, %v), want (150, 450000)", p.ReserveA(), p.ReserveB())
	}

	outA, outB, err := p.RemoveLiquidity(1.0 / 3.0)
	if err != nil {
		t.Fatalf("RemoveLiquidity failed: %v", err)
	}
	if math.Abs(outA-50) > 1e-9 || math.Abs(outB-150000) > 1e-9 {
		t.Errorf("removed: got (%v, %v), want (50, 150000)", outA, outB)
	}
	if math.Abs(p.ReserveA()-100) > 1e-9 || math.Abs(p.ReserveB()-300000) > 1e-6 {
		t.Errorf("reserves after round trip: got (%v, %v), want (100, 300000)", p.ReserveA(), p.ReserveB())
	}
}

func TestAddLiquidity_LimitingSide(t *testing.T) {
	p := newTestPool(t)

	// Ratio is 1:3000, so 100000 of B only supports 33.33 of A.
	addedA, addedB, err := p.AddLiquidity(50, 100000)
	if err != nil {
		t.Fatalf("AddLiquidity failed: %v", err)
	}
	if math.Abs(addedA-100000.0/3000.0) > 1e-9 {
		t.Errorf("addedA: got %v, want %v", addedA, 100000.0/3000.0)
	}
	if addedB != 100000 {
		t.Errorf("addedB: got %v, want 100000", addedB)
	}
	// Ratio preserved.
	if math.Abs(p.ReserveB()/p.ReserveA()-3000) > 1e-9 {
		t.Errorf("ratio drifted: %v", p.ReserveB()/p.ReserveA())
	}
}

func TestRemoveLiquidity_InvalidFraction(t *testing.T) {
	p := newTestPool(t)

	for _, fraction := range []float64{0, -0.5, 1.0000001, math.NaN()} {
		if _, _, err := p.RemoveLiquidity(fraction); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("RemoveLiquidity(%v) error = %v, want ErrInvalidInput", fraction, err)
		}
	}
}

func TestSetFee(t *testing.T) {
	p := newTestPool(t)

	if err := p.SetFee(0.01); err != nil {
		t.Fatalf("SetFee failed: %v", err)
	}
	if p.Fee() != 0.01 {
		t.Errorf("fee: got %v, want 0.01", p.Fee())
	}

	for _, fee := range []float64{-0.001, 1, 1.5, math.NaN()} {
		if err := p.SetFee(fee); !errors.Is(err, ErrConfigOutOfRange) {
			t.Errorf("SetFee(%v) error = %v, want ErrConfigOutOfRange", fee, err)
		}
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New("p", 0, 100, 0.003); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero reserve: error = %v, want ErrInvalidInput", err)
	}
	if _, err := New("p", 100, 100, 1.0); !errors.Is(err, ErrConfigOutOfRange) {
		t.Errorf("fee 1.0: error = %v, want ErrConfigOutOfRange", err)
	}
}
