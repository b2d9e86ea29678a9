package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/cohort/internal/dto"
	"github.com/aretw0/cohort/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format selects the document syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks the format from a file extension, defaulting to YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// LoadFile reads and parses the model at path.
func LoadFile(path string) (*domain.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	m, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a model document.
func Parse(data []byte, format Format) (*domain.Model, error) {
	var raw map[string]any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse model json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse model yaml: %w", err)
		}
	}
	if raw == nil {
		return nil, fmt.Errorf("empty model document")
	}

	var doc dto.ModelDocument
	if err := Decode(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	return toModel(&doc)
}

// Decode maps a generic document onto a mapstructure-tagged struct, accepting
// numbers for strings and single values for lists.
func Decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func toModel(doc *dto.ModelDocument) (*domain.Model, error) {
	if doc.Chain.Name == "" {
		doc.Chain.Name = "Markov"
	}
	m := &domain.Model{
		Name:       doc.Name,
		Dimensions: doc.Dimensions,
		Settings: domain.Settings{
			CohortSize:          doc.Settings.CohortSize,
			MaxCycles:           doc.Settings.MaxCycles,
			HalfCycleCorrection: doc.Settings.HalfCycleCorrection,
		},
	}
	if d := doc.Settings.Discount; d != nil {
		m.Settings.DiscountRewards = true
		m.Settings.DiscountRates = d.Rates
		m.Settings.DiscountStartCycle = d.StartCycle
		m.Settings.CyclesPerYear = d.CyclesPerYear
	}

	for _, p := range doc.Parameters {
		param := domain.Parameter{Name: p.Name, Expr: p.Value}
		if p.Dist != nil {
			spec, err := distSpec(p.Name, p.Dist)
			if err != nil {
				return nil, err
			}
			param.Dist = spec
			if param.Expr == "" {
				param.Expr = "0"
			}
		}
		m.Parameters = append(m.Parameters, param)
	}
	for _, v := range doc.Variables {
		m.Variables = append(m.Variables, domain.Variable{Name: v.Name, Expr: v.Value})
	}

	chain := &domain.Node{
		Name:        doc.Chain.Name,
		Type:        domain.NodeTypeChain,
		Termination: doc.Chain.Termination,
		Costs:       doc.Chain.TerminalCost,
	}
	var err error
	if chain.UpdatesT0, err = parseUpdates(chain.Name, doc.Chain.UpdatesT0); err != nil {
		return nil, err
	}
	if chain.Updates, err = parseUpdates(chain.Name, doc.Chain.Updates); err != nil {
		return nil, err
	}
	for i := range doc.Chain.States {
		s := doc.Chain.States[i]
		s.Type = string(domain.NodeTypeState)
		n, err := toNode(&s)
		if err != nil {
			return nil, err
		}
		chain.Children = append(chain.Children, n)
	}
	m.Chain = chain
	return m, nil
}

func toNode(doc *dto.NodeDoc) (*domain.Node, error) {
	kind := domain.NodeType(strings.ToLower(doc.Type))
	switch {
	case doc.To != "":
		if kind != "" && kind != domain.NodeTypeTransition {
			return nil, fmt.Errorf("node %q: %s nodes cannot have a target", doc.Name, kind)
		}
		kind = domain.NodeTypeTransition
	case kind == "":
		kind = domain.NodeTypeChance
	}

	name := doc.Name
	if name == "" && kind == domain.NodeTypeTransition {
		name = "to " + doc.To
	}
	n := &domain.Node{
		Name:       name,
		Type:       kind,
		Prob:       doc.Prob,
		Costs:      doc.Cost,
		Rewards:    doc.Reward,
		Transition: doc.To,
	}
	var err error
	if n.Updates, err = parseUpdates(name, doc.Updates); err != nil {
		return nil, err
	}
	for i := range doc.Children {
		c, err := toNode(&doc.Children[i])
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, c)
	}
	return n, nil
}

// parseUpdates splits "variable = formula" rules.
func parseUpdates(node string, rules []string) ([]domain.Update, error) {
	out := make([]domain.Update, 0, len(rules))
	for _, rule := range rules {
		name, expr, ok := strings.Cut(rule, "=")
		name, expr = strings.TrimSpace(name), strings.TrimSpace(expr)
		if !ok || name == "" || expr == "" || strings.HasPrefix(expr, "=") || strings.ContainsAny(name, " <>!") {
			return nil, fmt.Errorf("node %q: invalid update rule %q, expected \"variable = formula\"", node, rule)
		}
		out = append(out, domain.Update{Variable: name, Expr: expr})
	}
	return out, nil
}

func distSpec(param string, doc *dto.DistDoc) (*domain.DistSpec, error) {
	spec := &domain.DistSpec{Type: doc.Type, Params: make(map[string]float64, len(doc.Params))}
	for k, v := range doc.Params {
		var f float64
		if err := Decode(v, &f); err != nil {
			return nil, fmt.Errorf("parameter %q: distribution parameter %q: %w", param, k, err)
		}
		spec.Params[k] = f
	}
	return spec, nil
}
