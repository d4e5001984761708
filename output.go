// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package ennio

import (
	"encoding/json"
	"fmt"
	"iter"
	"maps"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Status describes the effect an action had
type Status int

// Action statuses
const (
	StatusUnchanged Status = iota
	StatusChanged
	StatusFailed
	StatusSkipped
)

// String implements fmt.Stringer
func (s Status) String() string {
	switch s {
	case StatusUnchanged:
		return "unchanged"
	case StatusChanged:
		return "changed"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	switch s {
	case StatusUnchanged, StatusChanged, StatusFailed, StatusSkipped:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("invalid status: %d", int(s))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "unchanged":
		*s = StatusUnchanged
	case "changed":
		*s = StatusChanged
	case "failed":
		*s = StatusFailed
	case "skipped":
		*s = StatusSkipped
	default:
		return fmt.Errorf("invalid status: %q", text)
	}
	return nil
}

// Output is the result of a single action execution: a status plus named values.
//
// Output is a value type, AddVar and WithVars return updated copies and never modify the receiver.
type Output struct {
	status Status
	vars   map[string]Value
}

// NewOutput returns an output with the given status and no variables
func NewOutput(status Status) Output {
	return Output{status: status, vars: map[string]Value{}}
}

// AddVar returns a copy of the output with name bound to val, replacing any previous binding
func (o Output) AddVar(name string, val Value) Output {
	vars := make(map[string]Value, len(o.vars)+1)
	maps.Copy(vars, o.vars)
	vars[name] = val
	o.vars = vars
	return o
}

// WithVars returns a copy of the output with its variables replaced by vars
func (o Output) WithVars(vars map[string]Value) Output {
	o.vars = maps.Clone(vars)
	if o.vars == nil {
		o.vars = map[string]Value{}
	}
	return o
}

// Status returns the output's status
func (o Output) Status() Status {
	return o.status
}

// Value returns the value bound to name
func (o Output) Value(name string) (Value, bool) {
	v, ok := o.vars[name]
	return v, ok
}

// Vars returns a copy of every bound variable
func (o Output) Vars() map[string]Value {
	if o.vars == nil {
		return map[string]Value{}
	}
	return maps.Clone(o.vars)
}

// Equal reports whether two outputs have the same status and structurally equal variables
func (o Output) Equal(other Output) bool {
	return o.status == other.status && maps.EqualFunc(o.vars, other.vars, Equal)
}

type outputJSON struct {
	Status Status                     `json:"status"`
	Vars   map[string]json.RawMessage `json:"vars"`
}

// MarshalJSON implements json.Marshaler
func (o Output) MarshalJSON() ([]byte, error) {
	vars := make(map[string]json.RawMessage, len(o.vars))
	for name, v := range o.vars {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		vars[name] = b
	}
	return json.Marshal(outputJSON{Status: o.status, Vars: vars})
}

// UnmarshalJSON implements json.Unmarshaler
func (o *Output) UnmarshalJSON(data []byte) error {
	var raw outputJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	vars := make(map[string]Value, len(raw.Vars))
	for name, r := range raw.Vars {
		v, err := UnmarshalValue(r)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		vars[name] = v
	}
	o.status = raw.Status
	o.vars = vars
	return nil
}

// Outputs maps action names to their outputs in execution order
//
// Recording an output under an existing name replaces it but keeps the original position.
type Outputs struct {
	m *orderedmap.OrderedMap[string, Output]
}

// NewOutputs returns an empty Outputs
func NewOutputs() *Outputs {
	return &Outputs{m: orderedmap.New[string, Output]()}
}

func (o *Outputs) set(name string, out Output) {
	if o.m == nil {
		o.m = orderedmap.New[string, Output]()
	}
	o.m.Set(name, out)
}

// Get returns the output recorded for the named action
func (o *Outputs) Get(name string) (Output, bool) {
	if o.Len() == 0 {
		return Output{}, false
	}
	return o.m.Get(name)
}

// Len returns the number of recorded outputs, a nil or zero Outputs is empty
func (o *Outputs) Len() int {
	if o == nil || o.m == nil {
		return 0
	}
	return o.m.Len()
}

// Names returns the recorded action names in execution order
func (o *Outputs) Names() []string {
	names := make([]string, 0, o.Len())
	if o.Len() == 0 {
		return names
	}
	for pair := o.m.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// All iterates over the recorded outputs in execution order
func (o *Outputs) All() iter.Seq2[string, Output] {
	return func(yield func(string, Output) bool) {
		if o.Len() == 0 {
			return
		}
		for pair := o.m.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// Equal reports whether both hold equal outputs under the same names in the same order
func (o *Outputs) Equal(other *Outputs) bool {
	if o.Len() != other.Len() {
		return false
	}
	if o.Len() == 0 {
		return true
	}
	a, b := o.m.Oldest(), other.m.Oldest()
	for ; a != nil && b != nil; a, b = a.Next(), b.Next() {
		if a.Key != b.Key || !a.Value.Equal(b.Value) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the outputs as a JSON object keyed in execution order
func (o *Outputs) MarshalJSON() ([]byte, error) {
	if o.Len() == 0 {
		return []byte("{}"), nil
	}
	return o.m.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler
func (o *Outputs) UnmarshalJSON(data []byte) error {
	m := orderedmap.New[string, Output]()
	if err := m.UnmarshalJSON(data); err != nil {
		return err
	}
	o.m = m
	return nil
}
