package decicalc

import "strings"

// tracer records the steps of an evaluation. It records nothing unless on.
type tracer struct {
	on    bool
	steps []string
}

// reset discards recorded steps and turns recording on or off.
func (t *tracer) reset(on bool) {
	t.on = on
	t.steps = t.steps[:0]
}

// add records a step formed by concatenating parts.
func (t *tracer) add(parts ...string) {
	if !t.on {
		return
	}
	t.steps = append(t.steps, strings.Join(parts, ""))
}

// take returns a copy of the recorded steps.
func (t *tracer) take() []string {
	if !t.on || len(t.steps) == 0 {
		return nil
	}
	return append([]string(nil), t.steps...)
}
