package x86features

// Requirement describes a gate condition consumable by [Check].
//
// Built-in implementations are [Feature] and [FeatureGroup].
type Requirement interface {
	isRequirement()
}

// FeatureGroup is a reusable set of [Requirement] items.
//
// Groups may nest; [Check] flattens them.
type FeatureGroup []Requirement

func (Feature) isRequirement()      {}
func (FeatureGroup) isRequirement() {}

// normalizeRequirements flattens groups and drops duplicates,
// keeping the order of first occurrence.
func normalizeRequirements(required []Requirement) []Feature {
	var out []Feature
	seen := make(map[Feature]struct{})

	var walk func([]Requirement)
	walk = func(reqs []Requirement) {
		for _, r := range reqs {
			switch v := r.(type) {
			case Feature:
				if _, ok := seen[v]; ok {
					continue
				}
				seen[v] = struct{}{}
				out = append(out, v)
			case FeatureGroup:
				walk(v)
			}
		}
	}
	walk(required)

	return out
}
