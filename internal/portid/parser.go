package portid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// segmentRegex is used to parse a single segment of an owner path, e.g. `name` or `name[1]`.
var segmentRegex = regexp.MustCompile(`^([a-zA-Z0-9_-]+)(?:\[(\d+)\])?$`)

// portRegex matches the trailing `type[index]` part of a port identifier.
var portRegex = regexp.MustCompile(`^([a-z]+)\[(\d+)\]$`)

// isValidSegmentName checks for undesirable but technically valid names.
func isValidSegmentName(name string) bool {
	return name != "-" && name != "_"
}

func errNegativeIndex(index int) error {
	return fmt.Errorf("port index cannot be negative: %d", index)
}

// validateOwner checks that an owner address is a well-formed dotted path.
func validateOwner(owner string) error {
	if owner == "" {
		return fmt.Errorf("owner address cannot be empty")
	}
	for _, segment := range strings.Split(owner, ".") {
		if segment == "" {
			return fmt.Errorf("owner address %q contains empty segment", owner)
		}
		matches := segmentRegex.FindStringSubmatch(segment)
		if matches == nil {
			return fmt.Errorf("invalid owner segment format: %q", segment)
		}
		if !isValidSegmentName(matches[1]) {
			return fmt.Errorf("invalid owner segment name: %q", matches[1])
		}
	}
	return nil
}

// Parse creates an ID from its canonical string representation.
func Parse(raw string) (ID, error) {
	parts := strings.Split(raw, "/")
	if len(parts) != 3 {
		return ID{}, fmt.Errorf("port identifier %q must have the form owner/direction/type[index]", raw)
	}

	if err := validateOwner(parts[0]); err != nil {
		return ID{}, err
	}

	var dir Direction
	switch parts[1] {
	case "in":
		dir = In
	case "out":
		dir = Out
	default:
		return ID{}, fmt.Errorf("invalid port direction %q", parts[1])
	}

	matches := portRegex.FindStringSubmatch(parts[2])
	if matches == nil {
		return ID{}, fmt.Errorf("invalid port type segment %q", parts[2])
	}
	typ, err := ParseSignalType(matches[1])
	if err != nil {
		return ID{}, err
	}
	index, err := strconv.Atoi(matches[2])
	if err != nil {
		// Unreachable due to regex `\d+`
		return ID{}, fmt.Errorf("internal error parsing index: %w", err)
	}

	return ID{Owner: parts[0], Dir: dir, Type: typ, Index: index}, nil
}

// ParseSignalType converts a signal type name into a SignalType.
func ParseSignalType(name string) (SignalType, error) {
	switch name {
	case "audio":
		return Audio, nil
	case "event", "midi":
		return Event, nil
	case "control":
		return Control, nil
	case "cv":
		return CV, nil
	}
	return 0, fmt.Errorf("unknown signal type %q", name)
}

// String serializes the ID into its canonical representation.
func (id ID) String() string {
	var sb strings.Builder
	sb.WriteString(id.Owner)
	sb.WriteByte('/')
	sb.WriteString(id.Dir.String())
	sb.WriteByte('/')
	sb.WriteString(id.Type.String())
	sb.WriteByte('[')
	sb.WriteString(strconv.Itoa(id.Index))
	sb.WriteByte(']')
	return sb.String()
}

// Less orders IDs by owner, direction, type and index.
func (id ID) Less(other ID) bool {
	if id.Owner != other.Owner {
		return id.Owner < other.Owner
	}
	if id.Dir != other.Dir {
		return id.Dir < other.Dir
	}
	if id.Type != other.Type {
		return id.Type < other.Type
	}
	return id.Index < other.Index
}
