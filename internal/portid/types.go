package portid

// Direction is the flow direction of a port relative to its owner.
type Direction uint8

const (
	// In ports receive signal from connections and feed their owner.
	In Direction = iota
	// Out ports are filled by their owner and feed connections.
	Out
)

func (d Direction) String() string {
	switch d {
	case In:
		return "in"
	case Out:
		return "out"
	default:
		return "unknown"
	}
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == In {
		return Out
	}
	return In
}

// SignalType is the kind of data a port carries.
type SignalType uint8

const (
	// Audio ports carry a block of samples.
	Audio SignalType = iota
	// Event ports carry timestamped MIDI events.
	Event
	// Control ports carry one scalar value per cycle.
	Control
	// CV ports carry audio-rate control signals.
	CV
)

func (t SignalType) String() string {
	switch t {
	case Audio:
		return "audio"
	case Event:
		return "event"
	case Control:
		return "control"
	case CV:
		return "cv"
	default:
		return "unknown"
	}
}

// IsBlock reports whether the type is carried as a sample block.
func (t SignalType) IsBlock() bool {
	return t == Audio || t == CV
}

// ID uniquely names a port: its owner, direction, signal type and index.
type ID struct {
	Owner string
	Dir   Direction
	Type  SignalType
	Index int
}

// New builds an ID after validating the owner address.
func New(owner string, dir Direction, typ SignalType, index int) (ID, error) {
	if err := validateOwner(owner); err != nil {
		return ID{}, err
	}
	if index < 0 {
		return ID{}, errNegativeIndex(index)
	}
	return ID{Owner: owner, Dir: dir, Type: typ, Index: index}, nil
}

// MustNew is like New but panics on an invalid owner. Intended for tests and
// static tables.
func MustNew(owner string, dir Direction, typ SignalType, index int) ID {
	id, err := New(owner, dir, typ, index)
	if err != nil {
		panic(err)
	}
	return id
}

// IsZero reports whether the ID is the zero value.
func (id ID) IsZero() bool {
	return id == ID{}
}
