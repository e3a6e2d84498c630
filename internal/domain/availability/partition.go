package availability

import "github.com/okian/tally/internal/domain/model"

// partitionByZone groups the requested variant IDs by shipping zone.
// A typical batch touches a handful of zones but may reference thousands
// of variants, so one store query per zone is the cheap shape.
//
// Within a zone, variant IDs are deduplicated while keeping first-seen
// order; every (variant, zone) pair of the input lands in exactly one
// group. An empty input yields an empty map.
func partitionByZone(keys []model.Key) map[string][]int64 {
	variantsByZone := make(map[string][]int64)
	seen := make(map[model.Key]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		variantsByZone[k.Zone] = append(variantsByZone[k.Zone], k.VariantID)
	}
	return variantsByZone
}
