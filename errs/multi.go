package errs

import "strings"

// Multi collects independent failures, typically one per datacenter during a
// fan-out list. It formats as the first failure so single-error CLI messages
// stay readable, with the rest reachable via Errors.
type Multi struct {
	errors []error
}

// Add appends err if non-nil.
func (m *Multi) Add(err error) {
	if err != nil {
		m.errors = append(m.errors, err)
	}
}

// Len returns the number of collected failures.
func (m *Multi) Len() int { return len(m.errors) }

// Errors returns the collected failures in arrival order.
func (m *Multi) Errors() []error { return m.errors }

// Resolve returns nil when empty, the sole error when one was collected,
// and a classified KindMulti error otherwise.
func (m *Multi) Resolve() error {
	switch len(m.errors) {
	case 0:
		return nil
	case 1:
		return m.errors[0]
	default:
		return &Error{
			Kind:    KindMulti,
			Message: m.message(),
			cause:   m.errors[0],
		}
	}
}

func (m *Multi) message() string {
	parts := make([]string, 0, len(m.errors))
	for _, err := range m.errors {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "; ")
}
