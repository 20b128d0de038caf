package application

import (
	"sort"

	"github.com/wms-platform/picklist-service/internal/domain"
)

// SequenceLines produces the Earliest-Deadline-First total order over all
// lines: cutoff ascending, then priority ascending (more urgent first), then
// order ID ascending. Stable, so lines with identical keys keep their input
// order. The input slice is not modified.
func SequenceLines(lines []domain.OrderLine) []domain.OrderLine {
	sorted := make([]domain.OrderLine, len(lines))
	copy(sorted, lines)

	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Cutoff.Equal(sorted[j].Cutoff) {
			return sorted[i].Cutoff.Before(sorted[j].Cutoff)
		}
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		return sorted[i].OrderID < sorted[j].OrderID
	})

	return sorted
}

// RouteByZone partitions a sequenced stream by zone in a single stable pass,
// preserving intra-zone relative order.
func RouteByZone(lines []domain.OrderLine) map[string][]domain.OrderLine {
	byZone := make(map[string][]domain.OrderLine)
	for _, line := range lines {
		byZone[line.Zone] = append(byZone[line.Zone], line)
	}
	return byZone
}

// ZoneOrder returns the zones of a routed stream in deterministic order
func ZoneOrder(byZone map[string][]domain.OrderLine) []string {
	zones := make([]string, 0, len(byZone))
	for zone := range byZone {
		zones = append(zones, zone)
	}
	sort.Strings(zones)
	return zones
}

// SplitByFragility separates an ordered stream into order-preserving
// non-fragile and fragile sub-streams.
func SplitByFragility(lines []domain.OrderLine) (normal, fragile []domain.OrderLine) {
	for _, line := range lines {
		if line.Fragile {
			fragile = append(fragile, line)
		} else {
			normal = append(normal, line)
		}
	}
	return normal, fragile
}

// StreamKey identifies one independent (zone, type) packing stream
type StreamKey struct {
	Zone string
	Type domain.PicklistType
}

// Stream is one ordered (zone, type) sub-stream ready for packing
type Stream struct {
	Key   StreamKey
	Lines []domain.OrderLine
}

// BuildStreams routes a sequenced stream into its (zone, type) packing
// streams: zones in sorted order, normal before fragile within a zone.
// Empty streams are omitted.
func BuildStreams(lines []domain.OrderLine) []Stream {
	byZone := RouteByZone(lines)

	var streams []Stream
	for _, zone := range ZoneOrder(byZone) {
		normal, fragile := SplitByFragility(byZone[zone])
		if len(normal) > 0 {
			streams = append(streams, Stream{
				Key:   StreamKey{Zone: zone, Type: domain.PicklistTypeNormal},
				Lines: normal,
			})
		}
		if len(fragile) > 0 {
			streams = append(streams, Stream{
				Key:   StreamKey{Zone: zone, Type: domain.PicklistTypeFragile},
				Lines: fragile,
			})
		}
	}
	return streams
}
