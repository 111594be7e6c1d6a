package routing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/application/dto"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

const improvementEpsilon = 1e-9

// maxImprovementPasses bounds local search on adversarial matrices
const maxImprovementPasses = 1000

// ImproveMode selects the local-search passes applied after construction
type ImproveMode string

const (
	ImproveNone     ImproveMode = "none"
	ImproveTwoOpt   ImproveMode = "2opt"
	ImproveRelocate ImproveMode = "relocate"
	ImproveAll      ImproveMode = "all"
)

// ParseImproveMode parses an improve mode name, empty meaning none
func ParseImproveMode(s string) (ImproveMode, error) {
	switch ImproveMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ImproveNone:
		return ImproveNone, nil
	case ImproveTwoOpt:
		return ImproveTwoOpt, nil
	case ImproveRelocate:
		return ImproveRelocate, nil
	case ImproveAll:
		return ImproveAll, nil
	default:
		return "", entities.NewConfigurationError("improve", "unknown improve mode %q", s)
	}
}

// Improver runs distance-reducing local search over built routes. It never
// increases total distance and never violates vehicle capacity.
type Improver struct {
	points   []entities.GeoPoint
	matrix   *DistanceMatrix
	capacity decimal.Decimal
	index    map[string]int
}

// NewImprover indexes the points the routes refer to
func NewImprover(points []entities.GeoPoint, matrix *DistanceMatrix, capacity decimal.Decimal) (*Improver, error) {
	if err := matrix.Validate(len(points)); err != nil {
		return nil, entities.NewConfigurationError("matrix", "%v", err)
	}
	index := make(map[string]int, len(points))
	for i := range points {
		index[points[i].ID] = i
	}
	return &Improver{points: points, matrix: matrix, capacity: capacity, index: index}, nil
}

// TwoOpt reverses stop segments of one route while doing so shortens it
func (im *Improver) TwoOpt(route entities.Route) (entities.Route, error) {
	depot, sequence, err := im.resolve(route)
	if err != nil {
		return entities.Route{}, err
	}
	if len(sequence) < 3 {
		return route.Clone(), nil
	}

	best := sequenceDistance(depot, sequence, im.matrix)
	for pass := 0; pass < maxImprovementPasses; pass++ {
		improved := false
		for i := 0; i < len(sequence)-1 && !improved; i++ {
			for k := i + 1; k < len(sequence); k++ {
				candidate := reverseSegment(sequence, i, k)
				if d := sequenceDistance(depot, candidate, im.matrix); d < best-improvementEpsilon {
					sequence = candidate
					best = d
					improved = true
					break
				}
			}
		}
		if !improved {
			break
		}
	}

	return makeRoute(route.VehicleIndex, depot, sequence, im.points, im.matrix, im.capacity), nil
}

// Relocate moves single stops between routes while the move shortens the pair
// of routes involved and fits the receiving vehicle. Routes left empty are dropped.
func (im *Improver) Relocate(routes []entities.Route) ([]entities.Route, error) {
	type working struct {
		vehicle  int
		depot    int
		sequence []int
		load     decimal.Decimal
	}

	work := make([]*working, len(routes))
	for i, route := range routes {
		depot, sequence, err := im.resolve(route)
		if err != nil {
			return nil, err
		}
		load := decimal.Zero
		for _, idx := range sequence {
			load = load.Add(im.points[idx].DemandWeight)
		}
		work[i] = &working{vehicle: route.VehicleIndex, depot: depot, sequence: sequence, load: load}
	}

	for pass := 0; pass < maxImprovementPasses; pass++ {
		improved := false
	search:
		for _, from := range work {
			for pos, stop := range from.sequence {
				weight := im.points[stop].DemandWeight
				shortened := removeAt(from.sequence, pos)
				saving := sequenceDistance(from.depot, from.sequence, im.matrix) -
					sequenceDistance(from.depot, shortened, im.matrix)

				for _, to := range work {
					if to == from || to.load.Add(weight).GreaterThan(im.capacity) {
						continue
					}
					current := sequenceDistance(to.depot, to.sequence, im.matrix)
					for at := 0; at <= len(to.sequence); at++ {
						extended := insertAt(to.sequence, at, stop)
						added := sequenceDistance(to.depot, extended, im.matrix) - current
						if added < saving-improvementEpsilon {
							from.sequence = shortened
							from.load = from.load.Sub(weight)
							to.sequence = extended
							to.load = to.load.Add(weight)
							improved = true
							break search
						}
					}
				}
			}
		}
		if !improved {
			break
		}
	}

	out := make([]entities.Route, 0, len(work))
	for _, w := range work {
		if len(w.sequence) == 0 {
			continue
		}
		out = append(out, makeRoute(w.vehicle, w.depot, w.sequence, im.points, im.matrix, im.capacity))
	}
	return out, nil
}

// Improve applies the passes selected by mode and returns a new result with recomputed metrics
func (im *Improver) Improve(result *dto.RoutingResult, mode ImproveMode) (*dto.RoutingResult, error) {
	mode, err := ParseImproveMode(string(mode))
	if err != nil {
		return nil, err
	}

	routes := make([]entities.Route, len(result.Routes))
	for i, route := range result.Routes {
		routes[i] = route.Clone()
	}

	if mode == ImproveRelocate || mode == ImproveAll {
		if routes, err = im.Relocate(routes); err != nil {
			return nil, err
		}
	}
	if mode == ImproveTwoOpt || mode == ImproveAll {
		for i := range routes {
			if routes[i], err = im.TwoOpt(routes[i]); err != nil {
				return nil, err
			}
		}
	}

	unrouted := make([]entities.UnroutedPoint, len(result.Unrouted))
	copy(unrouted, result.Unrouted)

	return &dto.RoutingResult{
		RunID:        result.RunID,
		Routes:       routes,
		Unrouted:     unrouted,
		Metrics:      ComputeMetrics(routes, len(unrouted), im.capacity),
		MatrixSource: result.MatrixSource,
	}, nil
}

func (im *Improver) resolve(route entities.Route) (int, []int, error) {
	depot, ok := im.index[route.DepotID]
	if !ok {
		return 0, nil, fmt.Errorf("route %d: unknown depot %s: %w", route.VehicleIndex, route.DepotID, entities.ErrNotFound)
	}
	sequence := make([]int, len(route.Stops))
	for i, id := range route.Stops {
		idx, ok := im.index[id]
		if !ok {
			return 0, nil, fmt.Errorf("route %d: unknown stop %s: %w", route.VehicleIndex, id, entities.ErrNotFound)
		}
		sequence[i] = idx
	}
	return depot, sequence, nil
}

func reverseSegment(sequence []int, i, k int) []int {
	out := make([]int, len(sequence))
	copy(out, sequence)
	for i < k {
		out[i], out[k] = out[k], out[i]
		i++
		k--
	}
	return out
}

func removeAt(sequence []int, pos int) []int {
	out := make([]int, 0, len(sequence)-1)
	out = append(out, sequence[:pos]...)
	return append(out, sequence[pos+1:]...)
}

func insertAt(sequence []int, at, value int) []int {
	out := make([]int, 0, len(sequence)+1)
	out = append(out, sequence[:at]...)
	out = append(out, value)
	return append(out, sequence[at:]...)
}
