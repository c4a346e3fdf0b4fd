package configstore

import "context"

// UIKind names the widget a management UI should render for an entry.
type UIKind string

const (
	UIKindText     UIKind = "text"
	UIKindPassword UIKind = "password"
	UIKindNumber   UIKind = "number"
	UIKindChoice   UIKind = "choice"
	UIKindAction   UIKind = "action"
)

// UINode is a rendering hint attached to an entry.
type UINode interface {
	Kind() UIKind
}

// TextBox is a free-form text field.
type TextBox struct{}

func (TextBox) Kind() UIKind { return UIKindText }

// PasswordBox is a text field whose value must not be displayed.
type PasswordBox struct{}

func (PasswordBox) Kind() UIKind { return UIKindPassword }

// NumberBox is a bounded integer field.
type NumberBox struct {
	Min int
	Max int
}

func (NumberBox) Kind() UIKind { return UIKindNumber }

// ChoiceBox offers values loaded on demand, e.g. the devices of an account.
type ChoiceBox[T any] struct {
	// Label renders one option.
	Label func(T) string
	// Load fetches the current options.
	Load func(ctx context.Context) ([]T, error)
	// Lazy options are only loaded when the user opens the box.
	Lazy bool
}

func (ChoiceBox[T]) Kind() UIKind { return UIKindChoice }

// ActionButton shows the entry value through Describe and runs Action on click.
// Action reports success; it must not panic or propagate failures.
type ActionButton[T any] struct {
	Label    string
	Describe func(T) string
	Action   func(ctx context.Context) bool
}

func (ActionButton[T]) Kind() UIKind { return UIKindAction }
