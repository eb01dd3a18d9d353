package config

import (
	"fmt"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"gopkg.in/yaml.v3"
)

// rawYAML is a koanf.Parser that keeps every scalar's source text, so a
// YAML file reaches the accessor in the same shape a process environment
// does.  `0x1538`, `0123` and `5_432` stay strings and go through the
// accessor's own parsing rules instead of yaml.v3's resolver.
//
// Marshal is the stock koanf YAML encoder.
type rawYAML struct {
	*kyaml.YAML
}

func rawYAMLParser() rawYAML { return rawYAML{YAML: kyaml.Parser()} }

// Unmarshal decodes a flat mapping of scalars.  A null value (`KEY:` or
// `KEY: ~`) is a present empty string.
func (rawYAML) Unmarshal(b []byte) (map[string]any, error) {
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}

	out := make(map[string]any, len(doc))
	for key, n := range doc {
		if n.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%s (line %d): expected a scalar value", key, n.Line)
		}
		if n.ShortTag() == "!!null" {
			out[key] = ""
			continue
		}
		out[key] = n.Value
	}
	return out, nil
}
