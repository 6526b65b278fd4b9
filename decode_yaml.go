package shape

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DecodeYAML decodes a single YAML document into a Value tree. An empty
// input decodes to Null.
func DecodeYAML(data []byte) (Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Value{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if root.Kind == 0 {
		return Null(), nil
	}
	return fromYAMLNode(&root)
}

func fromYAMLNode(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null(), nil
		}
		return fromYAMLNode(node.Content[0])

	case yaml.AliasNode:
		return fromYAMLNode(node.Alias)

	case yaml.SequenceNode:
		items := make([]Value, len(node.Content))
		for i, child := range node.Content {
			item, err := fromYAMLNode(child)
			if err != nil {
				return Value{}, err
			}
			items[i] = item
		}
		return Array(items...), nil

	case yaml.MappingNode:
		entries := make(map[string]Value, len(node.Content)/2)
		var merged []Value
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]
			if key.Kind == yaml.ScalarNode && key.ShortTag() == "!!merge" {
				srcs, err := yamlMergeSources(val)
				if err != nil {
					return Value{}, err
				}
				merged = append(merged, srcs...)
				continue
			}
			if key.Kind != yaml.ScalarNode || (key.ShortTag() != "!!str" && key.ShortTag() != "!!int") {
				return Value{}, fmt.Errorf(
					"%w: line %d: mapping key must be a string",
					ErrInvalidDocument, key.Line,
				)
			}
			item, err := fromYAMLNode(val)
			if err != nil {
				return Value{}, err
			}
			entries[key.Value] = item
		}
		// Explicit keys win over merged ones; earlier merge sources win over later.
		for _, src := range merged {
			for k, item := range src.m {
				if _, ok := entries[k]; !ok {
					entries[k] = item
				}
			}
		}
		return Map(entries), nil

	case yaml.ScalarNode:
		return fromYAMLScalar(node)
	}

	return Value{}, fmt.Errorf("%w: line %d: unsupported YAML node", ErrInvalidDocument, node.Line)
}

// yamlMergeSources resolves the value of a "<<" key: a mapping or a
// sequence of mappings, usually aliases.
func yamlMergeSources(node *yaml.Node) ([]Value, error) {
	node = yamlResolveAlias(node)
	var nodes []*yaml.Node
	switch node.Kind {
	case yaml.MappingNode:
		nodes = []*yaml.Node{node}
	case yaml.SequenceNode:
		for _, child := range node.Content {
			nodes = append(nodes, yamlResolveAlias(child))
		}
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: line %d: merge value must be a mapping", ErrInvalidDocument, node.Line)
	}

	srcs := make([]Value, 0, len(nodes))
	for _, n := range nodes {
		if n.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: line %d: merge value must be a mapping", ErrInvalidDocument, n.Line)
		}
		src, err := fromYAMLNode(n)
		if err != nil {
			return nil, err
		}
		srcs = append(srcs, src)
	}
	return srcs, nil
}

func yamlResolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func fromYAMLScalar(node *yaml.Node) (Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return Value{}, fmt.Errorf("%w: line %d: %w", ErrInvalidDocument, node.Line, err)
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err == nil {
			return NumberText(strconv.FormatInt(i, 10)), nil
		}
		// Past int64; keep the exact digits.
		b, ok := new(big.Int).SetString(node.Value, 0)
		if !ok {
			return Value{}, fmt.Errorf("%w: line %d: invalid integer %q", ErrInvalidDocument, node.Line, node.Value)
		}
		return NumberText(b.String()), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return Value{}, fmt.Errorf("%w: line %d: %w", ErrInvalidDocument, node.Line, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{}, fmt.Errorf("%w: line %d: non-finite number %s", ErrInvalidDocument, node.Line, node.Value)
		}
		return Number(f), nil
	default:
		return String(node.Value), nil
	}
}
