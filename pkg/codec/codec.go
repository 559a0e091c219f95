package codec

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"time"

	"github.com/aretw0/typomata/pkg/domain"
	"github.com/aretw0/typomata/pkg/types"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ValueKey holds the payload of non-struct types inside Envelope.Data.
const ValueKey = "value"

// Envelope is the wire form of a state or action value.
type Envelope struct {
	Type string         `json:"type" yaml:"type"`
	Data map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// Registry maps type names to the Go types of a machine.
// It is immutable once created.
type Registry struct {
	byName map[string]reflect.Type
	names  []string
}

// NewRegistry registers every type under its short name.
// Two different types with the same short name are rejected.
func NewRegistry(ts ...reflect.Type) (*Registry, error) {
	r := &Registry{byName: make(map[string]reflect.Type, len(ts))}
	for _, t := range ts {
		name := types.Name(t)
		if existing, ok := r.byName[name]; ok {
			if existing == t {
				continue
			}
			return nil, fmt.Errorf("type name %q is shared by %s and %s", name, existing, t)
		}
		r.byName[name] = t
		r.names = append(r.names, name)
	}
	return r, nil
}

// Lookup returns the type registered under name.
func (r *Registry) Lookup(name string) (reflect.Type, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Decode builds the value described by env.
// Struct types read their fields from Data using json tags; other types read Data["value"].
func (r *Registry) Decode(env Envelope) (any, error) {
	t, ok := r.byName[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownType, env.Type)
	}

	base := t
	if t.Kind() == reflect.Pointer {
		base = t.Elem()
	}
	target := reflect.New(base)

	var input any
	if base.Kind() == reflect.Struct {
		if len(env.Data) > 0 {
			input = env.Data
		}
	} else {
		input = env.Data[ValueKey]
	}

	if input != nil {
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           target.Interface(),
			TagName:          "json",
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create decoder: %w", err)
		}
		if err := decoder.Decode(input); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", env.Type, err)
		}
	}

	if t.Kind() == reflect.Pointer {
		return target.Interface(), nil
	}
	return target.Elem().Interface(), nil
}

// Encode is the inverse of Decode. v must be of a registered type.
func (r *Registry) Encode(v any) (Envelope, error) {
	t := reflect.TypeOf(v)
	name := types.Name(t)
	if registered, ok := r.byName[name]; !ok || registered != t {
		return Envelope{}, fmt.Errorf("%w: %s", domain.ErrUnknownType, name)
	}

	env := Envelope{Type: name}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return env, nil
		}
		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Struct {
		env.Data = map[string]any{ValueKey: rv.Interface()}
		return env, nil
	}

	data := map[string]any{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &data,
		TagName: "json",
	})
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to create encoder: %w", err)
	}
	if err := decoder.Decode(rv.Interface()); err != nil {
		return Envelope{}, fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if len(data) > 0 {
		env.Data = data
	}
	return env, nil
}

// DecodeJSON parses a JSON envelope and decodes it.
func (r *Registry) DecodeJSON(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}
	return r.Decode(env)
}

// DecodeYAML parses a YAML envelope and decodes it.
func (r *Registry) DecodeYAML(raw []byte) (any, error) {
	var env Envelope
	if err := yaml.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}
	return r.Decode(env)
}
