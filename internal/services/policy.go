package services

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tasbeha/deaconschool-backend/internal/domain"
)

// Policy holds the tunable scoring knobs. Category point values feed
// RequestedPoints at submission time; MaxAdjustFactor caps how far a
// reviewer may raise an award above the requested amount.
type Policy struct {
	CategoryPoints  map[domain.RecordCategory]int `yaml:"category_points"`
	MaxAdjustFactor float64                       `yaml:"max_adjust_factor"`
}

// DefaultPolicy mirrors the values the school has used on paper for years.
func DefaultPolicy() *Policy {
	return &Policy{
		CategoryPoints: map[domain.RecordCategory]int{
			domain.CategoryLiturgy:          10,
			domain.CategoryPrayer:           5,
			domain.CategoryPersonalStudy:    5,
			domain.CategoryCommunityService: 8,
		},
		MaxAdjustFactor: 2.0,
	}
}

// LoadPolicy reads a YAML policy file, filling gaps from the defaults.
func LoadPolicy(path string) (*Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file %s: %w", path, err)
	}
	var loaded Policy
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		return nil, fmt.Errorf("parse policy file %s: %w", path, err)
	}
	for c, v := range loaded.CategoryPoints {
		if !c.Valid() {
			return nil, fmt.Errorf("policy file %s: unknown category %q", path, c)
		}
		if v <= 0 {
			return nil, fmt.Errorf("policy file %s: category %q must be positive", path, c)
		}
		p.CategoryPoints[c] = v
	}
	if loaded.MaxAdjustFactor > 0 {
		p.MaxAdjustFactor = loaded.MaxAdjustFactor
	}
	return p, nil
}

// PointsFor returns the point value submissions in the category earn.
func (p *Policy) PointsFor(c domain.RecordCategory) (int, bool) {
	v, ok := p.CategoryPoints[c]
	return v, ok
}

// MaxAward is the largest award a reviewer may grant for the requested
// amount.
func (p *Policy) MaxAward(requested int) int {
	return int(p.MaxAdjustFactor * float64(requested))
}
