package market

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/piquette/finance-go/equity"

	"llm-event-predictor/internal/api"
	"llm-event-predictor/internal/logger"
)

// EPSSource fetches a single forward-earnings estimate per symbol. Yahoo
// Finance is the primary source; screener.in is a best-effort HTML
// fallback for NSE symbols Yahoo has no estimate for.
type EPSSource struct {
	suffix      string
	client      *api.Client
	useScreener bool
}

// NewEPSSource creates a source appending suffix to every Yahoo symbol.
func NewEPSSource(suffix string) *EPSSource {
	return &EPSSource{
		suffix:      suffix,
		client:      api.NewClient(api.WithLogging(true)),
		useScreener: true,
	}
}

// ForwardEPS returns the forward-earnings estimate for symbol. Missing
// data is an error so the retry layer treats it as transient; after
// retries are exhausted the feature is simply absent.
func (e *EPSSource) ForwardEPS(ctx context.Context, symbol string) (float64, error) {
	eq, err := equity.Get(symbol + e.suffix)
	if err == nil && eq != nil && eq.EpsForward != 0 {
		return eq.EpsForward, nil
	}

	if e.useScreener {
		eps, serr := e.fetchFromScreener(ctx, symbol)
		if serr == nil {
			logger.Debug(ctx, "EPS served by screener fallback", "symbol", symbol, "eps", eps)
			return eps, nil
		}
		logger.Debug(ctx, "Screener fallback failed", "symbol", symbol, "error", serr)
	}

	if err != nil {
		return 0, fmt.Errorf("equity fetch for %s%s: %w", symbol, e.suffix, err)
	}
	return 0, fmt.Errorf("missing EPS data for %s%s", symbol, e.suffix)
}

var numberRe = regexp.MustCompile(`-?[\d,]+(?:\.\d+)?`)

// fetchFromScreener scrapes the EPS ratio from the screener.in company
// page. Screener lists NSE companies under their bare symbol.
func (e *EPSSource) fetchFromScreener(ctx context.Context, symbol string) (float64, error) {
	url := fmt.Sprintf("https://www.screener.in/company/%s/", symbol)
	resp, err := e.client.GET(ctx, url, api.ScreenerHeaders())
	if err != nil {
		return 0, fmt.Errorf("screener fetch failed: %w", err)
	}
	return epsFromScreenerPage(symbol, resp.String())
}

// epsFromScreenerPage pulls the EPS value out of the top-ratios list of a
// screener.in company page.
func epsFromScreenerPage(symbol, html string) (float64, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, fmt.Errorf("screener parse failed: %w", err)
	}

	var eps float64
	found := false
	doc.Find("#top-ratios li").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		name := strings.TrimSpace(sel.Find(".name").Text())
		if !strings.Contains(strings.ToUpper(name), "EPS") {
			return true
		}
		raw := numberRe.FindString(sel.Find(".value, .number").Text())
		if raw == "" {
			return true
		}
		v, perr := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if perr != nil {
			return true
		}
		eps = v
		found = true
		return false
	})
	if !found {
		return 0, fmt.Errorf("no EPS ratio on screener page for %s", symbol)
	}
	return eps, nil
}
