package shipping

import (
	"math"
	"sort"

	"github.com/loganlanou/merch-storefront/internal/catalog"
)

// ItemProfile is the packed size and weight of one unit of a category.
type ItemProfile struct {
	AvgOz float64 `json:"avg_oz"`
	L     float64 `json:"l"`
	W     float64 `json:"w"`
	H     float64 `json:"h"`
}

func (p ItemProfile) volume() float64 {
	return p.L * p.W * p.H
}

type Box struct {
	SKU         string  `json:"sku"`
	L           float64 `json:"l"`
	W           float64 `json:"w"`
	H           float64 `json:"h"`
	BoxWeightOz float64 `json:"box_weight_oz"`
}

func (b Box) volume() float64 {
	return b.L * b.W * b.H
}

type PackingMaterials struct {
	BubbleWrapPerItemOz   float64 `json:"bubble_wrap_per_item_oz"`
	PackingPaperPerBoxOz  float64 `json:"packing_paper_per_box_oz"`
	TapeAndLabelsPerBoxOz float64 `json:"tape_and_labels_per_box_oz"`
}

type PackingConfig struct {
	Items     map[catalog.Category]ItemProfile
	Default   ItemProfile
	Boxes     []Box
	FillRatio float64
	Materials PackingMaterials
}

// DefaultPackingConfig holds mailer sizes and folded garment weights.
func DefaultPackingConfig() PackingConfig {
	return PackingConfig{
		Items: map[catalog.Category]ItemProfile{
			catalog.CategoryHoodie:      {AvgOz: 20, L: 12, W: 10, H: 3},
			catalog.CategoryTShirt:      {AvgOz: 6, L: 10, W: 8, H: 1},
			catalog.CategoryCap:         {AvgOz: 4, L: 8, W: 7, H: 5},
			catalog.CategoryTote:        {AvgOz: 5, L: 10, W: 8, H: 1},
			catalog.CategoryMug:         {AvgOz: 14, L: 5, W: 5, H: 5},
			catalog.CategoryWaterBottle: {AvgOz: 10, L: 10, W: 3.5, H: 3.5},
			catalog.CategoryMousePad:    {AvgOz: 4, L: 9, W: 8, H: 0.5},
		},
		Default: ItemProfile{AvgOz: 8, L: 10, W: 8, H: 2},
		Boxes: []Box{
			{SKU: "mailer-small", L: 10, W: 8, H: 2, BoxWeightOz: 1.5},
			{SKU: "mailer-large", L: 14, W: 11, H: 4, BoxWeightOz: 3},
			{SKU: "box-medium", L: 14, W: 12, H: 8, BoxWeightOz: 7},
			{SKU: "box-large", L: 18, W: 14, H: 12, BoxWeightOz: 12},
		},
		FillRatio: 0.8,
		Materials: PackingMaterials{
			BubbleWrapPerItemOz:   0.2,
			PackingPaperPerBoxOz:  0.5,
			TapeAndLabelsPerBoxOz: 0.3,
		},
	}
}

// Parcel is the single package a quote is priced for.
type Parcel struct {
	Box      Box     `json:"box"`
	Items    int     `json:"items"`
	WeightOz float64 `json:"weight_oz"`
}

func (p Parcel) WeightLbs() float64 {
	return p.WeightOz / 16.0
}

type Packer struct {
	config PackingConfig
}

func NewPacker(config PackingConfig) *Packer {
	boxes := append([]Box(nil), config.Boxes...)
	sort.SliceStable(boxes, func(i, j int) bool {
		return boxes[i].volume() < boxes[j].volume()
	})
	config.Boxes = boxes
	if config.FillRatio <= 0 {
		config.FillRatio = 1
	}
	return &Packer{config: config}
}

func (p *Packer) profile(category catalog.Category) ItemProfile {
	if profile, ok := p.config.Items[category]; ok {
		return profile
	}
	return p.config.Default
}

// Pack picks the smallest box whose usable volume and dimensions fit every
// line. Orders that fit no box ship in the largest one.
func (p *Packer) Pack(lines []Line) Parcel {
	var need float64
	var count int
	var itemsOz float64
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		profile := p.profile(line.Category)
		need += profile.volume() * float64(line.Quantity)
		itemsOz += profile.AvgOz * float64(line.Quantity)
		count += line.Quantity
	}

	box := p.chooseBox(lines, need)
	materials := p.config.Materials
	weight := box.BoxWeightOz + itemsOz +
		materials.BubbleWrapPerItemOz*float64(count) +
		materials.PackingPaperPerBoxOz +
		materials.TapeAndLabelsPerBoxOz

	return Parcel{Box: box, Items: count, WeightOz: math.Round(weight*100) / 100}
}

func (p *Packer) chooseBox(lines []Line, need float64) Box {
	if len(p.config.Boxes) == 0 {
		return Box{SKU: "custom", L: 10, W: 8, H: 4}
	}
	for _, box := range p.config.Boxes {
		if box.volume()*p.config.FillRatio >= need && p.dimensionsOK(box, lines) {
			return box
		}
	}
	return p.config.Boxes[len(p.config.Boxes)-1]
}

func (p *Packer) dimensionsOK(box Box, lines []Line) bool {
	boxDims := []float64{box.L, box.W, box.H}
	sort.Float64s(boxDims)

	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		profile := p.profile(line.Category)
		itemDims := []float64{profile.L, profile.W, profile.H}
		sort.Float64s(itemDims)
		for i := 0; i < 3; i++ {
			if itemDims[i] > boxDims[i] {
				return false
			}
		}
	}
	return true
}
