package aggregation

import (
	"github.com/MikeSquared-Agency/Scorecard/internal/strategy"
)

// Family is the catalogue family name for aggregation functions.
const Family = "aggregation"

// Catalogue is the registry of aggregation functions.
type Catalogue = strategy.Catalogue[Function]

func register[T Function](c *Catalogue, key string, ctor func(map[string]any) (T, error)) {
	c.MustRegister(key, func(params map[string]any) (Function, error) {
		f, err := ctor(params)
		if err != nil {
			return nil, err
		}
		return f, nil
	})
}

// NewCatalogue returns a catalogue holding every built-in aggregation.
func NewCatalogue() *Catalogue {
	c := strategy.NewCatalogue[Function](Family)
	register(c, "arithmetic_mean", NewArithmeticMean)
	register(c, "geometric_mean", NewGeometricMean)
	register(c, "harmonic_mean", NewHarmonicMean)
	register(c, "summation", NewSummation)
	register(c, "product", NewProduct)
	register(c, "deviation_index", NewDeviationIndex)
	return c
}
