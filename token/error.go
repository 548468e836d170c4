// Copyright 2021 Torben Schinke
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package token

// PosError is a positional error: a message anchored at a Node, with an
// optional wrapped cause. The lexer and parser both report failures this
// way so callers can recover position, message and the underlying
// sentinel error (via errors.Is on Unwrap) uniformly.
type PosError struct {
	Node Node
	Msg  string

	Cause error
}

// NewPosError creates a PosError at node with the given message.
func NewPosError(node Node, msg string) *PosError {
	return &PosError{Node: node, Msg: msg}
}

// SetCause attaches a wrapped sentinel error and returns p for chaining.
func (p *PosError) SetCause(err error) *PosError {
	p.Cause = err
	return p
}

func (p *PosError) Error() string {
	pos := ""
	if p.Node != nil {
		pos = p.Node.Begin().String() + ": "
	}

	if p.Cause == nil {
		return pos + p.Msg
	}

	return pos + p.Msg + ": " + p.Cause.Error()
}

// Unwrap exposes the wrapped cause to errors.Is / errors.As.
func (p *PosError) Unwrap() error {
	return p.Cause
}
