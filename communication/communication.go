// Package communication carries what the model and the search announce:
// variable declarations, the end of modeling, and the instances of reported
// states. A Bus fans every message out to its receivers.
package communication

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Quantifier tags a declared variable.
type Quantifier int

const (
	Exists Quantifier = iota
	ForAll
)

func (q Quantifier) String() string {
	if q == ForAll {
		return "FORALL"
	}
	return "EXISTS"
}

func (q Quantifier) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

func (q *Quantifier) UnmarshalText(b []byte) error {
	switch string(b) {
	case "EXISTS":
		*q = Exists
	case "FORALL":
		*q = ForAll
	default:
		return fmt.Errorf("unknown quantifier %q", b)
	}
	return nil
}

// VarBinder announces one declared variable.
type VarBinder struct {
	Quantifier Quantifier `json:"quantifier"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Lo         int        `json:"lo"`
	Hi         int        `json:"hi"`
}

func (v VarBinder) String() string {
	return fmt.Sprintf("%s %s %s [%d, %d]", v.Quantifier, v.Name, v.Type, v.Lo, v.Hi)
}

// Value is one entry of an instance: a value, or unassigned.
type Value struct {
	V     int
	Known bool
}

// Unassigned marks a variable that is not fixed in the reported state.
var Unassigned = Value{}

func Known(v int) Value { return Value{V: v, Known: true} }

func (v Value) String() string {
	if !v.Known {
		return "_"
	}
	return strconv.Itoa(v.V)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Known {
		return []byte("null"), nil
	}
	return json.Marshal(v.V)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Unassigned
		return nil
	}
	if err := json.Unmarshal(b, &v.V); err != nil {
		return err
	}
	v.Known = true
	return nil
}

// Instance lists the values of all move variables in declaration order.
type Instance []Value

func (in Instance) String() string {
	parts := make([]string, len(in))
	for i, v := range in {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Receiver consumes bus messages. Calls are serialized by the bus.
type Receiver interface {
	Var(v VarBinder)
	CloseModeling()
	Instance(in Instance)
}

// Bus fans messages out to its receivers. It is safe for concurrent use.
type Bus struct {
	mu        sync.Mutex
	receivers []Receiver
}

func NewBus(receivers ...Receiver) *Bus {
	return &Bus{receivers: receivers}
}

func (b *Bus) AddReceiver(r Receiver) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.receivers = append(b.receivers, r)
}

func (b *Bus) SendVar(v VarBinder) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.receivers {
		r.Var(v)
	}
}

func (b *Bus) SendCloseModeling() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.receivers {
		r.CloseModeling()
	}
}

func (b *Bus) SendInstance(in Instance) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.receivers {
		r.Instance(in)
	}
}
