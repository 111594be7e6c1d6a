package commands

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/infrastructure/repositories/scenario"
)

// GenerateConfig holds configuration for scenario generation
type GenerateConfig struct {
	Items     int     // Total number of articles to generate
	MaxDepth  int     // Maximum depth of the BOM tree
	Demands   int     // Number of demand lines on root assemblies
	Inventory float64 // Stock multiplier (0.5 = thin coverage, 4.0 = ample)
	Stops     int     // Number of delivery stops, 0 disables routing data
	Vehicles  int
	Capacity  int64
	Output    string // Output file, empty writes to the command writer
	Seed      int64  // Random seed for reproducible generation
}

// GenerateCommand writes a random but acyclic scenario
type GenerateCommand struct {
	config  GenerateConfig
	rand    *rand.Rand
	runtime *Runtime
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig, runtime *Runtime) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	config.Seed = seed

	return &GenerateCommand{
		config:  config,
		rand:    rand.New(rand.NewSource(seed)),
		runtime: runtime,
	}
}

// bomNode represents an article in the generated BOM tree
type bomNode struct {
	code     entities.ArticleCode
	level    int
	children []bomEdge
	parents  []*bomNode
	root     bool
}

type bomEdge struct {
	child    *bomNode
	quantity decimal.Decimal
}

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(ctx context.Context, w io.Writer) error {
	if cmd.config.Items < 1 {
		return entities.NewConfigurationError("items", "at least one item is required, got %d", cmd.config.Items)
	}
	if cmd.config.MaxDepth < 1 {
		return entities.NewConfigurationError("depth", "depth must be positive, got %d", cmd.config.MaxDepth)
	}
	if cmd.config.Inventory < 0 {
		return entities.NewConfigurationError("inventory", "inventory multiplier cannot be negative")
	}
	if cmd.config.Stops < 0 || cmd.config.Vehicles < 0 || cmd.config.Capacity < 0 {
		return entities.NewConfigurationError("stops", "routing sizes cannot be negative")
	}

	cmd.runtime.Log.Debug().
		Int("items", cmd.config.Items).
		Int("max_depth", cmd.config.MaxDepth).
		Int("demands", cmd.config.Demands).
		Float64("inventory", cmd.config.Inventory).
		Int64("seed", cmd.config.Seed).
		Msg("generating scenario")

	nodes := cmd.generateBOMTree()
	s := &scenario.Scenario{Name: fmt.Sprintf("generated-%d", cmd.config.Seed)}

	if err := cmd.generateCatalog(s, nodes); err != nil {
		return fmt.Errorf("failed to generate catalog: %w", err)
	}
	if err := cmd.generateDemands(s, nodes); err != nil {
		return fmt.Errorf("failed to generate demands: %w", err)
	}
	if err := cmd.generateStops(s); err != nil {
		return fmt.Errorf("failed to generate stops: %w", err)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if cmd.config.Output == "" {
		return scenario.Write(w, s)
	}

	file, err := os.Create(cmd.config.Output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := scenario.Write(file, s); err != nil {
		return err
	}
	fmt.Fprintf(w, "Scenario written to %s (%d articles, %d BOM lines, %d demands, %d points)\n",
		cmd.config.Output, len(s.Articles), len(s.BOM), len(s.Demands), len(s.Points))
	return nil
}

// generateBOMTree builds a level-by-level tree where some components are shared
// between parents. Sharing never creates a cycle.
func (cmd *GenerateCommand) generateBOMTree() []*bomNode {
	var nodes []*bomNode

	numRoots := max(1, cmd.config.Items/50+cmd.rand.Intn(3))
	numRoots = min(numRoots, cmd.config.Items)

	var roots []*bomNode
	for i := 0; i < numRoots; i++ {
		node := &bomNode{code: entities.ArticleCode(fmt.Sprintf("ASM%03d", i+1)), root: true}
		nodes = append(nodes, node)
		roots = append(roots, node)
	}

	generated := numRoots
	currentLevel := roots
	level := 0

	for level < cmd.config.MaxDepth && generated < cmd.config.Items {
		level++
		var nextLevel []*bomNode

		for _, parent := range currentLevel {
			numChildren := 2 + cmd.rand.Intn(5)

			for child := 0; child < numChildren && generated < cmd.config.Items; child++ {
				var childNode *bomNode
				if level > 1 && cmd.rand.Float64() < 0.2 {
					candidates := cmd.shareableParts(nodes, level, parent)
					if len(candidates) > 0 {
						childNode = candidates[cmd.rand.Intn(len(candidates))]
					}
				}

				if childNode == nil {
					childNode = &bomNode{
						code:  entities.ArticleCode(fmt.Sprintf("P%d%04d", level, generated)),
						level: level,
					}
					nodes = append(nodes, childNode)
					nextLevel = append(nextLevel, childNode)
					generated++
				}
				if parent.hasChild(childNode) {
					continue
				}

				qty := decimal.NewFromInt(int64(1 + cmd.rand.Intn(4)))
				parent.children = append(parent.children, bomEdge{child: childNode, quantity: qty})
				childNode.parents = append(childNode.parents, parent)
			}
		}

		if len(nextLevel) == 0 {
			break
		}
		currentLevel = nextLevel
	}

	// Remaining items hang under the deepest level as raw components
	for generated < cmd.config.Items {
		node := &bomNode{code: entities.ArticleCode(fmt.Sprintf("C%04d", generated)), level: level + 1}
		parent := currentLevel[cmd.rand.Intn(len(currentLevel))]
		qty := decimal.NewFromInt(int64(1 + cmd.rand.Intn(10)))
		parent.children = append(parent.children, bomEdge{child: node, quantity: qty})
		node.parents = append(node.parents, parent)
		nodes = append(nodes, node)
		generated++
	}

	return nodes
}

func (n *bomNode) hasChild(child *bomNode) bool {
	for _, edge := range n.children {
		if edge.child == child {
			return true
		}
	}
	return false
}

// shareableParts lists existing parts that can also become children of parent
func (cmd *GenerateCommand) shareableParts(nodes []*bomNode, maxLevel int, parent *bomNode) []*bomNode {
	var candidates []*bomNode
	for _, node := range nodes {
		if node.root || node == parent || node.level < maxLevel-1 || len(node.parents) >= 3 {
			continue
		}
		if !isAncestor(node, parent, make(map[*bomNode]bool)) {
			candidates = append(candidates, node)
		}
	}
	return candidates
}

// isAncestor reports whether candidate is reachable upwards from node
func isAncestor(candidate, node *bomNode, visited map[*bomNode]bool) bool {
	if visited[node] {
		return false
	}
	visited[node] = true

	for _, parent := range node.parents {
		if parent == candidate || isAncestor(candidate, parent, visited) {
			return true
		}
	}
	return false
}

func (cmd *GenerateCommand) generateCatalog(s *scenario.Scenario, nodes []*bomNode) error {
	suppliers := []struct {
		id   string
		lead int
	}{{"SUP001", 5}, {"SUP002", 7}, {"SUP003", 12}}
	for _, sup := range suppliers {
		supplier, err := entities.NewSupplier(sup.id, "Supplier "+sup.id, sup.lead)
		if err != nil {
			return err
		}
		s.Suppliers = append(s.Suppliers, supplier)
	}

	for _, node := range nodes {
		kind := entities.Raw
		lead := 2 + cmd.rand.Intn(10)
		cost := decimal.NewFromInt(int64(1 + cmd.rand.Intn(200))).Div(decimal.NewFromInt(4))
		if len(node.children) > 0 {
			kind = entities.Assembled
			lead = 5 + cmd.rand.Intn(10) + 2*(cmd.config.MaxDepth-node.level)
			cost = cost.Mul(decimal.NewFromInt(10))
		}

		supplierRef := ""
		if cmd.rand.Float64() < 0.6 {
			supplierRef = suppliers[cmd.rand.Intn(len(suppliers))].id
		}

		article, err := entities.NewArticle(node.code, fmt.Sprintf("Article %s", node.code), kind, lead, cost, supplierRef)
		if err != nil {
			return err
		}
		s.Articles = append(s.Articles, article)

		for _, edge := range node.children {
			line, err := entities.NewBOMLine(node.code, edge.child.code, edge.quantity)
			if err != nil {
				return err
			}
			s.BOM = append(s.BOM, line)
		}

		if node.root || cmd.config.Inventory == 0 {
			continue
		}
		onHand := decimal.NewFromFloat(float64(5+cmd.rand.Intn(20)) * cmd.config.Inventory).Round(0)
		safety := decimal.NewFromInt(int64(cmd.rand.Intn(5)))
		stock, err := entities.NewStock(node.code, onHand, safety)
		if err != nil {
			return err
		}
		s.Stock = append(s.Stock, stock)
	}
	return nil
}

func (cmd *GenerateCommand) generateDemands(s *scenario.Scenario, nodes []*bomNode) error {
	var roots []*bomNode
	for _, node := range nodes {
		if node.root {
			roots = append(roots, node)
		}
	}

	base := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < cmd.config.Demands; i++ {
		root := roots[cmd.rand.Intn(len(roots))]
		client := fmt.Sprintf("CLI%03d", 1+cmd.rand.Intn(max(1, cmd.config.Demands/2)))
		due := base.AddDate(0, 0, 30+cmd.rand.Intn(150))

		demand, err := entities.NewDemand(client, root.code, decimal.NewFromInt(int64(1+cmd.rand.Intn(20))), due)
		if err != nil {
			return err
		}
		s.Demands = append(s.Demands, demand)
	}

	clients := make(map[string]bool)
	for _, d := range s.Demands {
		if !clients[d.Client] {
			clients[d.Client] = true
			s.Clients = append(s.Clients, entities.Client{ID: d.Client, Name: "Client " + d.Client})
		}
	}
	sort.Slice(s.Clients, func(i, j int) bool { return s.Clients[i].ID < s.Clients[j].ID })
	return nil
}

// generateStops scatters stops within roughly 30 km of a depot in Lyon
func (cmd *GenerateCommand) generateStops(s *scenario.Scenario) error {
	if cmd.config.Stops == 0 {
		return nil
	}

	depot, err := entities.NewGeoPoint("DEPOT", 45.7640, 4.8357, decimal.Zero, entities.Depot)
	if err != nil {
		return err
	}
	s.Points = append(s.Points, *depot)

	for i := 0; i < cmd.config.Stops; i++ {
		lat := depot.Lat + (cmd.rand.Float64()-0.5)*0.5
		lon := depot.Lon + (cmd.rand.Float64()-0.5)*0.7
		weight := decimal.NewFromInt(int64(5 + cmd.rand.Intn(50)))

		stop, err := entities.NewGeoPoint(fmt.Sprintf("STOP%03d", i+1), lat, lon, weight, entities.Stop)
		if err != nil {
			return err
		}
		s.Points = append(s.Points, *stop)
	}

	s.Fleet = scenario.Fleet{
		VehicleCount:    cmd.config.Vehicles,
		VehicleCapacity: decimal.NewFromInt(cmd.config.Capacity),
	}
	return nil
}
