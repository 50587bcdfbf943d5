package notify

import (
	"strconv"

	"github.com/danmuck/evlctl/internal/tpi"
)

// Labels resolves the human-facing names and priorities configured for a
// panel. Missing entries fall back to the raw code.
type Labels struct {
	Commands   map[tpi.Command]string
	Zones      map[string]string
	Partitions map[int]string
	Priorities map[tpi.Command]Priority
}

// CommandName prefers a configured name, then the built-in table, then cmd.
func (l Labels) CommandName(cmd tpi.Command) string {
	if name, ok := l.Commands[cmd]; ok {
		return name
	}
	if name, ok := tpi.DefaultCommandName(cmd); ok {
		return name
	}
	return string(cmd)
}

func (l Labels) ZoneName(zone string) string {
	if name, ok := l.Zones[zone]; ok {
		return name
	}
	return zone
}

func (l Labels) PartitionName(partition int) string {
	if name, ok := l.Partitions[partition]; ok {
		return name
	}
	return strconv.Itoa(partition)
}

// CommandPriority defaults to PriorityLow for unconfigured commands.
func (l Labels) CommandPriority(cmd tpi.Command) Priority {
	if p, ok := l.Priorities[cmd]; ok {
		return p
	}
	return PriorityLow
}

// Describe renders p by its command class, e.g.
// "Zone Open, Zone: Front Door" or "Partition Armed, Partition: 1".
func (l Labels) Describe(p tpi.Payload) string {
	name := l.CommandName(p.Command)
	switch tpi.Classify(p.Command) {
	case tpi.ClassZone:
		return name + ", Zone: " + l.ZoneName(p.Data.Zone)
	case tpi.ClassPartitionZone:
		return name + ", Partition: " + l.PartitionName(p.Data.Partition) + ", Zone: " + l.ZoneName(p.Data.Zone)
	case tpi.ClassPartition:
		return name + ", Partition: " + l.PartitionName(p.Data.Partition)
	default:
		return name
	}
}
