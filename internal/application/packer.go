package application

import (
	"fmt"

	"github.com/wms-platform/picklist-service/internal/domain"
)

// PackResult holds the sealed picklists and excluded lines of one
// (zone, type) stream
type PackResult struct {
	Zone       string
	Type       domain.PicklistType
	Picklists  []*domain.Picklist
	Unpackable []domain.ExcludedLine
}

// Packer fills capacity-bounded picklists from an ordered line stream. One
// open picklist at a time: lines are consumed greedily, split across
// picklists when they do not fit whole, and the open picklist is sealed the
// moment it cannot accept another unit of the current line.
type Packer struct {
	policy domain.CapacityPolicy
}

// NewPacker creates a packer for one capacity policy
func NewPacker(policy domain.CapacityPolicy) *Packer {
	return &Packer{policy: policy}
}

// Pack consumes an ordered (zone, type) stream. Sequence numbers start at 1
// per stream. A line whose single unit exceeds the weight cap is excluded as
// unpackable rather than looping forever against an empty picklist. Any cap
// breach that slips past MaxTake is returned as a fatal error.
func (pk *Packer) Pack(zone string, picklistType domain.PicklistType, lines []domain.OrderLine) (*PackResult, error) {
	result := &PackResult{
		Zone:      zone,
		Type:      picklistType,
		Picklists: make([]*domain.Picklist, 0),
	}

	var current *domain.Picklist
	seal := func() error {
		if current == nil {
			return nil
		}
		if err := current.Seal(); err != nil {
			return fmt.Errorf("sealing picklist %s/%s #%d: %w", zone, picklistType, current.SequenceNumber, err)
		}
		result.Picklists = append(result.Picklists, current)
		current = nil
		return nil
	}

	for _, line := range lines {
		if line.Qty <= 0 {
			continue
		}
		if pk.policy.UnitCap < 1 || line.UnitWeight > pk.policy.WeightCap+domain.WeightTolerance {
			result.Unpackable = append(result.Unpackable, domain.ExcludedLine{
				OrderID: line.OrderID,
				SKU:     line.SKU,
				Zone:    line.Zone,
				Kind:    domain.ExclusionUnpackable,
				Reason: fmt.Sprintf("unit weight %.3fkg exceeds %.1fkg cap for %s picklists",
					line.UnitWeight, pk.policy.WeightCap, picklistType),
			})
			continue
		}

		remaining := line.Qty
		for remaining > 0 {
			if current == nil {
				current = domain.NewPicklist(zone, picklistType, len(result.Picklists)+1, pk.policy)
			}

			take := current.MaxTake(line)
			if take > remaining {
				take = remaining
			}
			if take < 1 {
				if current.TotalUnits == 0 {
					// Guarded by the pre-check above; reaching here means the
					// policy itself cannot hold a single unit of this line.
					return nil, fmt.Errorf("%w: line %s/%s does not fit an empty %s picklist in zone %s",
						domain.ErrCapacityExceeded, line.OrderID, line.SKU, picklistType, zone)
				}
				if err := seal(); err != nil {
					return nil, err
				}
				continue
			}

			if err := current.Add(line, take); err != nil {
				return nil, fmt.Errorf("packing %d units of %s/%s into %s/%s #%d: %w",
					take, line.OrderID, line.SKU, zone, picklistType, current.SequenceNumber, err)
			}
			remaining -= take
		}
	}

	if err := seal(); err != nil {
		return nil, err
	}
	return result, nil
}
