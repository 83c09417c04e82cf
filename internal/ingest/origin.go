package ingest

import "github.com/dmoraes/aportebtc-backend/internal/domain"

// Origin classification: free-text cells to the closed Origin enumeration.
// Implemented as an ordered rule table rather than nested conditionals so
// the rules can be tested and audited one by one. Misclassifying an
// adjustment as a purchase corrupts average-cost exclusion downstream,
// which is why there is no fuzzy matching here.

// p2pPlatforms are matched as exact phrases (after folding).
var p2pPlatforms = map[string]bool{
	"p2p":           true,
	"binance p2p":   true,
	"paxful":        true,
	"hodl hodl":     true,
	"localbitcoins": true,
	"bisq":          true,
	"peach":         true,
	"robosats":      true,
}

// knownExchanges is the maintained list of brokerage/exchange names.
var knownExchanges = map[string]bool{
	"binance":         true,
	"mercado bitcoin": true,
	"foxbit":          true,
	"novadax":         true,
	"bitso":           true,
	"coinbase":        true,
	"kraken":          true,
	"okx":             true,
	"bitstamp":        true,
	"bitget":          true,
	"bybit":           true,
	"brasil bitcoin":  true,
	"bitypreco":       true,
	"coinext":         true,
}

// canonicalOrigins passes already-canonical tokens through unchanged.
var canonicalOrigins = map[string]domain.Origin{
	"exchange":    domain.OriginExchange,
	"p2p":         domain.OriginP2P,
	"spreadsheet": domain.OriginSpreadsheet,
	"adjustment":  domain.OriginAdjustment,
}

type originRule struct {
	name  string
	apply func(key string) (domain.Origin, bool)
}

// originRules is evaluated in order; the first rule that matches decides.
var originRules = []originRule{
	{
		name: "p2p platform",
		apply: func(key string) (domain.Origin, bool) {
			if p2pPlatforms[key] {
				return domain.OriginP2P, true
			}
			return "", false
		},
	},
	{
		name: "known exchange",
		apply: func(key string) (domain.Origin, bool) {
			if knownExchanges[key] {
				return domain.OriginExchange, true
			}
			return "", false
		},
	},
	{
		name: "canonical token",
		apply: func(key string) (domain.Origin, bool) {
			origin, ok := canonicalOrigins[key]
			return origin, ok
		},
	},
}

// ClassifyOrigin maps a raw origin cell to the closed enumeration.
// Anything no rule recognizes, including the empty cell, defaults to
// EXCHANGE, the safe choice for purchase rows.
func ClassifyOrigin(raw string) domain.Origin {
	key := foldKey(raw)
	for _, rule := range originRules {
		if origin, ok := rule.apply(key); ok {
			return origin
		}
	}
	return domain.OriginExchange
}
