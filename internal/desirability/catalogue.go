package desirability

import (
	"github.com/MikeSquared-Agency/Scorecard/internal/strategy"
)

// Family is the catalogue family name for desirability functions.
const Family = "desirability"

// Catalogue is the registry of desirability functions.
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

// NewCatalogue returns a catalogue holding every built-in desirability function.
func NewCatalogue() *Catalogue {
	c := strategy.NewCatalogue[Function](Family)
	register(c, "sigmoid", NewSigmoid)
	register(c, "double_sigmoid", NewDoubleSigmoid)
	register(c, "bell", NewBell)
	register(c, "sigmoid_bell", NewSigmoidBell)
	register(c, "step", NewStep)
	register(c, "leftstep", NewLeftStep)
	register(c, "rightstep", NewRightStep)
	register(c, "multistep", NewMultistep)
	register(c, "value_mapping", NewValueMapping)
	register(c, "category", NewCategory)
	return c
}
