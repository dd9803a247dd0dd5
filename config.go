package folio

// Config carries the engine-wide settings. It is built by the caller and
// passed in at construction; there is no process-wide default state.
type Config struct {
	// QuantityTolerance is the epsilon under which two share counts are
	// considered equal.
	QuantityTolerance float64
	// CashTolerance is the epsilon under which two currency amounts are
	// considered equal. Looser than quantities: brokers round cents.
	CashTolerance float64
	// LotMethod is the default sale consumption order.
	LotMethod LotMethod
	// Currency is the reporting currency assumed for amounts whose source
	// records carry none.
	Currency string
}

// DefaultConfig returns the settings used when the caller has no opinion.
func DefaultConfig() Config {
	return Config{
		QuantityTolerance: 0.001,
		CashTolerance:     0.01,
		LotMethod:         FIFO,
		Currency:          "USD",
	}
}

// normalized fills zero fields with their defaults so a partially
// populated Config behaves sanely.
func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.QuantityTolerance == 0 {
		c.QuantityTolerance = def.QuantityTolerance
	}
	if c.CashTolerance == 0 {
		c.CashTolerance = def.CashTolerance
	}
	if c.Currency == "" {
		c.Currency = def.Currency
	}
	return c
}
