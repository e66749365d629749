package unlock

import "fmt"

type State int

const (
	StateIdle State = iota
	StateConfirming
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConfirming:
		return "confirming"
	case StateSubmitting:
		return "submitting"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// UIState is what the confirmation surface renders. Unlocking implies
// ModalVisible.
type UIState struct {
	ModalVisible bool
	Unlocking    bool
}

func (s UIState) State() State {
	switch {
	case s.Unlocking:
		return StateSubmitting
	case s.ModalVisible:
		return StateConfirming
	}
	return StateIdle
}

// View is the confirmation surface. When Visible is false nothing is rendered.
type View struct {
	Visible        bool
	ModalVisible   bool
	Unlocking      bool
	Destination    string
	ConfirmEnabled bool
	Tip            string
}
