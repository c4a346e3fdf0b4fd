package configstore

import (
	"context"
	"fmt"

	apperrors "github.com/target/spotify-auth/internal/errors"
	"github.com/target/spotify-auth/internal/ports"
)

// Choice is one option offered by a ChoiceBox, in stored form.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// View is a type-agnostic snapshot of an entry for management surfaces.
// Values of password boxes are never included.
type View struct {
	Scope       Scope  `json:"scope"`
	ID          string `json:"id"`
	Description string `json:"description"`
	UI          UIKind `json:"ui"`
	ActionLabel string `json:"action_label,omitempty"`
	Value       string `json:"value,omitempty"`
	Set         bool   `json:"set"`
	Problem     string `json:"problem,omitempty"`
	Min         *int   `json:"min,omitempty"`
	Max         *int   `json:"max,omitempty"`
}

// Entry is the type-agnostic view of a config entry used by the management API.
type Entry interface {
	Key() string
	ID() string
	Scope() Scope
	Description() string
	UI() UINode
	View(ctx context.Context) (View, error)
	SetRaw(ctx context.Context, raw string) error
	Choices(ctx context.Context) ([]Choice, error)
	RunAction(ctx context.Context) (bool, error)
}

// EntryOptions describes a typed entry.
type EntryOptions[T any] struct {
	Key         string
	Description string
	Serializer  Serializer[T]
	Checker     Checker[T] // defaults to NoCheck
	UI          UINode     // defaults to TextBox
	Default     *T
}

// SerializedEntry is a typed config entry stored in serialized form.
type SerializedEntry[T any] struct {
	cfg  *Config
	opts EntryOptions[T]
}

var _ Entry = (*SerializedEntry[int])(nil)

// NewSerializedEntry creates a typed entry in cfg. It panics without a serializer.
func NewSerializedEntry[T any](cfg *Config, opts EntryOptions[T]) *SerializedEntry[T] {
	if opts.Serializer == nil {
		panic(fmt.Sprintf("configstore: entry %q has no serializer", opts.Key))
	}
	if opts.Checker == nil {
		opts.Checker = NoCheck[T]()
	}
	if opts.UI == nil {
		opts.UI = TextBox{}
	}
	return &SerializedEntry[T]{cfg: cfg, opts: opts}
}

// NewStringEntry creates a string entry; the serializer defaults to StringSerializer.
func NewStringEntry(cfg *Config, opts EntryOptions[string]) *SerializedEntry[string] {
	if opts.Serializer == nil {
		opts.Serializer = StringSerializer{}
	}
	return NewSerializedEntry(cfg, opts)
}

func (e *SerializedEntry[T]) Key() string         { return e.opts.Key }
func (e *SerializedEntry[T]) ID() string          { return e.cfg.storageKey(e.opts.Key) }
func (e *SerializedEntry[T]) Scope() Scope        { return e.cfg.scope }
func (e *SerializedEntry[T]) Description() string { return e.opts.Description }
func (e *SerializedEntry[T]) UI() UINode          { return e.opts.UI }

// Get returns the stored value, or the default when nothing is stored.
// ok is false when neither exists. A stored value that cannot be decoded yields a
// serialization error.
func (e *SerializedEntry[T]) Get(ctx context.Context) (T, bool, error) {
	var zero T
	raw, ok, err := e.cfg.getRaw(ctx, e.opts.Key)
	if err != nil {
		return zero, false, err
	}
	if !ok {
		if e.opts.Default != nil {
			return *e.opts.Default, true, nil
		}
		return zero, false, nil
	}
	v, err := e.opts.Serializer.Deserialize(raw)
	if err != nil {
		return zero, false, apperrors.Serialization(e.opts.Key, err)
	}
	return v, true, nil
}

// Set stores v.
func (e *SerializedEntry[T]) Set(ctx context.Context, v T) error {
	return e.cfg.Apply(ctx, e.Assign(v))
}

// Clear removes the stored value; Get falls back to the default afterwards.
func (e *SerializedEntry[T]) Clear(ctx context.Context) error {
	return e.cfg.Apply(ctx, e.Unassign())
}

// Assign prepares a write of v for Config.Apply.
func (e *SerializedEntry[T]) Assign(v T) Assignment {
	return Assignment{cfg: e.cfg, mutation: ports.Mutation{Key: e.ID(), Value: e.opts.Serializer.Serialize(v)}}
}

// Unassign prepares a removal for Config.Apply.
func (e *SerializedEntry[T]) Unassign() Assignment {
	return Assignment{cfg: e.cfg, mutation: ports.Mutation{Key: e.ID(), Delete: true}}
}

// Problem runs the checker against the current value.
func (e *SerializedEntry[T]) Problem(ctx context.Context) (string, error) {
	v, ok, err := e.Get(ctx)
	if err != nil {
		if apperrors.IsSerialization(err) {
			return "Invalid stored value", nil
		}
		return "", err
	}
	return e.opts.Checker(v, ok), nil
}

// SetRaw decodes, checks and stores a value given in stored form.
func (e *SerializedEntry[T]) SetRaw(ctx context.Context, raw string) error {
	v, err := e.opts.Serializer.Deserialize(raw)
	if err != nil {
		return apperrors.ValidationField(e.opts.Key, err.Error())
	}
	if problem := e.opts.Checker(v, true); problem != "" {
		return apperrors.ValidationField(e.opts.Key, problem)
	}
	return e.Set(ctx, v)
}

// Choices loads the options of a ChoiceBox entry.
func (e *SerializedEntry[T]) Choices(ctx context.Context) ([]Choice, error) {
	box, ok := e.opts.UI.(ChoiceBox[T])
	if !ok || box.Load == nil {
		return nil, apperrors.ValidationField(e.opts.Key, "entry has no choices")
	}
	items, err := box.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load choices for %s: %w", e.opts.Key, err)
	}
	choices := make([]Choice, 0, len(items))
	for _, item := range items {
		c := Choice{Value: e.opts.Serializer.Serialize(item)}
		if box.Label != nil {
			c.Label = box.Label(item)
		} else {
			c.Label = c.Value
		}
		choices = append(choices, c)
	}
	return choices, nil
}

// RunAction triggers the action of an ActionButton entry.
func (e *SerializedEntry[T]) RunAction(ctx context.Context) (bool, error) {
	btn, ok := e.opts.UI.(ActionButton[T])
	if !ok || btn.Action == nil {
		return false, apperrors.ValidationField(e.opts.Key, "entry has no action")
	}
	return btn.Action(ctx), nil
}

// View renders the entry for a management surface.
func (e *SerializedEntry[T]) View(ctx context.Context) (View, error) {
	v := View{
		Scope:       e.cfg.scope,
		ID:          e.ID(),
		Description: e.opts.Description,
		UI:          e.opts.UI.Kind(),
	}
	if btn, isAction := e.opts.UI.(ActionButton[T]); isAction {
		v.ActionLabel = btn.Label
	}

	val, ok, err := e.Get(ctx)
	switch {
	case apperrors.IsSerialization(err):
		v.Set = true
		v.Problem = "Invalid stored value"
		return v, nil
	case err != nil:
		return View{}, err
	}
	v.Set = ok
	v.Problem = e.opts.Checker(val, ok)
	if !ok {
		return v, nil
	}

	switch ui := e.opts.UI.(type) {
	case PasswordBox:
	case ActionButton[T]:
		if ui.Describe != nil {
			v.Value = ui.Describe(val)
		}
	case ChoiceBox[T]:
		if ui.Label != nil {
			v.Value = ui.Label(val)
		} else {
			v.Value = e.opts.Serializer.Serialize(val)
		}
	case NumberBox:
		minVal, maxVal := ui.Min, ui.Max
		v.Min, v.Max = &minVal, &maxVal
		v.Value = e.opts.Serializer.Serialize(val)
	default:
		if e.cfg.scope != ScopeSecrets {
			v.Value = e.opts.Serializer.Serialize(val)
		}
	}
	return v, nil
}
