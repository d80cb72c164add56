package catalog

import "strings"

// Classifier maps a color name to the design bucket searched first.
type Classifier struct {
	designs map[string]Design
}

func NewClassifier(mapping map[string]Design) *Classifier {
	designs := make(map[string]Design, len(mapping))
	for color, d := range mapping {
		designs[normalizeColor(color)] = d
	}
	return &Classifier{designs: designs}
}

// ClassifierFor builds the mapping from a garment catalog's color list.
func ClassifierFor(c *Catalog[Design]) *Classifier {
	mapping := make(map[string]Design, len(c.swatches))
	for _, s := range c.swatches {
		mapping[s.Name] = s.Design
	}
	return NewClassifier(mapping)
}

// DesignFor returns the mapped bucket and whether the color was known.
func (c *Classifier) DesignFor(color string) (Design, bool) {
	d, ok := c.designs[normalizeColor(color)]
	return d, ok
}

// Classify is DesignFor with unmapped colors sent to DefaultDesign.
func (c *Classifier) Classify(color string) Design {
	if d, ok := c.DesignFor(color); ok {
		return d
	}
	return DefaultDesign
}

func normalizeColor(color string) string {
	return strings.ToLower(strings.TrimSpace(color))
}
