package market

import (
	"math"
	"testing"

	"llm-event-predictor/internal/interfaces"
)

// The pipeline consumes EPSSource through the FundamentalSource interface.
var _ interfaces.FundamentalSource = (*EPSSource)(nil)

const screenerPage = `
<html><body>
<ul id="top-ratios">
  <li><span class="name">Market Cap</span><span class="value">₹ 1,234 Cr.</span></li>
  <li><span class="name">Stock P/E</span><span class="value">24.3</span></li>
  <li><span class="name">EPS</span><span class="value">₹ 1,045.20</span></li>
</ul>
</body></html>`

func TestEPSFromScreenerPage(t *testing.T) {
	eps, err := epsFromScreenerPage("ACME", screenerPage)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if math.Abs(eps-1045.20) > 1e-9 {
		t.Errorf("Expected EPS 1045.20, got %f", eps)
	}
}

func TestEPSFromScreenerPageNoRatio(t *testing.T) {
	page := `<ul id="top-ratios"><li><span class="name">Stock P/E</span><span class="value">24.3</span></li></ul>`
	if _, err := epsFromScreenerPage("ACME", page); err == nil {
		t.Fatal("Expected error when the page carries no EPS ratio")
	}
}

func TestEPSFromScreenerPageNegativeValue(t *testing.T) {
	page := `<ul id="top-ratios"><li><span class="name">EPS</span><span class="value">-3.75</span></li></ul>`
	eps, err := epsFromScreenerPage("ACME", page)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if eps != -3.75 {
		t.Errorf("Expected EPS -3.75, got %f", eps)
	}
}
