// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package rc

import "fmt"

// Model selects a probability entry using the bits previously coded with
// the model. The state is a shift register of the last bits masked to the
// number of states.
type Model struct {
	probs []Prob
	state uint32
}

// Init initializes the model with n states. The number n must be a power
// of two.
func (m *Model) Init(n int) {
	if n <= 0 || n&(n-1) != 0 {
		panic(fmt.Errorf("rc: number of states %d is not a power of two",
			n))
	}
	if cap(m.probs) >= n {
		m.probs = m.probs[:n]
	} else {
		m.probs = make([]Prob, n)
	}
	m.Reset()
}

// Reset sets the state to zero and all probability entries to their
// initial values.
func (m *Model) Reset() {
	m.state = 0
	for i := range m.probs {
		m.probs[i] = NewProb()
	}
}

// States returns the number of states.
func (m *Model) States() int { return len(m.probs) }

// State returns the current state.
func (m *Model) State() uint32 { return m.state }

// prob returns the entry for the current state.
func (m *Model) prob() *Prob { return &m.probs[m.state] }
