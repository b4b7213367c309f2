package desirability

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/MikeSquared-Agency/Scorecard/internal/strategy"
)

// Point is one (x, desirability) coordinate of a multistep curve. It
// encodes as an [x, y] pair.
type Point struct {
	X float64
	Y float64
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

var multistepSpecs = []strategy.Spec{
	{Name: "coordinates", Kind: strategy.KindSequence, Check: checkCoordinates,
		Description: "at least two [x, y] points, y in [0, 1], one y per x"},
	shiftSpec,
}

// Multistep interpolates linearly between coordinates and is flat beyond
// the outermost points.
type Multistep struct {
	params *strategy.Params
}

func NewMultistep(params map[string]any) (*Multistep, error) {
	m := &Multistep{params: strategy.NewParams("multistep", multistepSpecs)}
	if err := m.params.SetValues(params); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Multistep) Name() string              { return "multistep" }
func (m *Multistep) Params() *strategy.Params { return m.params }

func (m *Multistep) Compute(x any) (float64, error) {
	v, err := numeric(m.Name(), x)
	if err != nil {
		return 0, err
	}
	if err := strategy.Verify(m); err != nil {
		return 0, err
	}
	if math.IsNaN(v) {
		return math.NaN(), nil
	}
	points := m.params.Get("coordinates").([]Point)
	return shifted(interpolate(points, v), m.params.Float("shift")), nil
}

func interpolate(points []Point, x float64) float64 {
	first, last := points[0], points[len(points)-1]
	if x <= first.X {
		return first.Y
	}
	if x >= last.X {
		return last.Y
	}
	i := sort.Search(len(points), func(i int) bool { return points[i].X >= x })
	lo, hi := points[i-1], points[i]
	return lo.Y + (x-lo.X)*(hi.Y-lo.Y)/(hi.X-lo.X)
}

// checkCoordinates accepts []Point, [][2]float64 or decoded [][]any pairs and
// returns the points sorted by x.
func checkCoordinates(v any) (any, error) {
	var points []Point
	switch c := v.(type) {
	case []Point:
		points = append(points, c...)
	case [][2]float64:
		for _, p := range c {
			points = append(points, Point{X: p[0], Y: p[1]})
		}
	case [][]float64:
		for i, p := range c {
			if len(p) != 2 {
				return nil, fmt.Errorf("%w: coordinate %d has %d elements", strategy.ErrInvalidInputShape, i, len(p))
			}
			points = append(points, Point{X: p[0], Y: p[1]})
		}
	case []any:
		for i, raw := range c {
			p, err := decodePoint(raw)
			if err != nil {
				return nil, fmt.Errorf("coordinate %d: %w", i, err)
			}
			points = append(points, p)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported coordinates type %T", strategy.ErrTypeMismatch, v)
	}

	if len(points) < 2 {
		return nil, fmt.Errorf("%w: at least two coordinates are required", strategy.ErrInvalidInputShape)
	}
	seen := make(map[float64]float64, len(points))
	unique := points[:0]
	for _, p := range points {
		if math.IsNaN(p.X) || math.IsInf(p.X, 0) || math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			return nil, fmt.Errorf("%w: coordinates must be finite", strategy.ErrOutOfRange)
		}
		if p.Y < 0 || p.Y > 1 {
			return nil, fmt.Errorf("%w: y=%v is outside [0, 1]", strategy.ErrOutOfRange, p.Y)
		}
		// repeated points collapse; one x with two y values is ambiguous
		if y, ok := seen[p.X]; ok {
			if y != p.Y {
				return nil, fmt.Errorf("%w: x=%v has conflicting y values %v and %v", strategy.ErrOutOfRange, p.X, y, p.Y)
			}
			continue
		}
		seen[p.X] = p.Y
		unique = append(unique, p)
	}
	if len(unique) < 2 {
		return nil, fmt.Errorf("%w: at least two distinct coordinates are required", strategy.ErrInvalidInputShape)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i].X < unique[j].X })
	return unique, nil
}

func decodePoint(raw any) (Point, error) {
	var pair []any
	switch r := raw.(type) {
	case []any:
		pair = r
	case []float64:
		for _, f := range r {
			pair = append(pair, f)
		}
	case Point:
		return r, nil
	default:
		return Point{}, fmt.Errorf("%w: expected [x, y] pair, got %T", strategy.ErrTypeMismatch, raw)
	}
	if len(pair) != 2 {
		return Point{}, fmt.Errorf("%w: expected [x, y] pair, got %d elements", strategy.ErrInvalidInputShape, len(pair))
	}
	x, okX := strategy.ToFloat(pair[0])
	y, okY := strategy.ToFloat(pair[1])
	if !okX || !okY {
		return Point{}, fmt.Errorf("%w: coordinate elements must be numbers", strategy.ErrTypeMismatch)
	}
	return Point{X: x, Y: y}, nil
}
