package codec

import (
	"reflect"
	"testing"

	"github.com/aretw0/typomata/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Idle struct {
	Stock int `json:"stock"`
}

type OutOfCoffee struct{}

type Refill struct {
	Amount int `json:"amount"`
}

type Word string

type Pending struct {
	Note string `json:"note"`
}

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(
		reflect.TypeFor[Idle](),
		reflect.TypeFor[OutOfCoffee](),
		reflect.TypeFor[Refill](),
		reflect.TypeFor[Word](),
		reflect.TypeFor[*Pending](),
		reflect.TypeFor[Idle](),
	)
	require.NoError(t, err)
	return r
}

func TestNewRegistry(t *testing.T) {
	r := newRegistry(t)

	assert.Equal(t, []string{"Idle", "OutOfCoffee", "Refill", "Word", "*Pending"}, r.Names())

	got, ok := r.Lookup("Refill")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[Refill](), got)
}

func TestNewRegistry_NameClash(t *testing.T) {
	type Idle struct{}

	_, err := NewRegistry(reflect.TypeFor[Idle](), reflect.TypeFor[OutOfCoffee](), reflect.TypeOf(newIdle()))
	assert.Error(t, err)
}

func newIdle() any { return Idle{} }

func TestDecode(t *testing.T) {
	r := newRegistry(t)

	tests := []struct {
		name string
		env  Envelope
		want any
	}{
		{"struct", Envelope{Type: "Idle", Data: map[string]any{"stock": 2}}, Idle{Stock: 2}},
		{"weakly typed", Envelope{Type: "Refill", Data: map[string]any{"amount": "5"}}, Refill{Amount: 5}},
		{"json number", Envelope{Type: "Refill", Data: map[string]any{"amount": float64(3)}}, Refill{Amount: 3}},
		{"empty struct", Envelope{Type: "OutOfCoffee"}, OutOfCoffee{}},
		{"named scalar", Envelope{Type: "Word", Data: map[string]any{"value": "hello"}}, Word("hello")},
		{"pointer", Envelope{Type: "*Pending", Data: map[string]any{"note": "soon"}}, &Pending{Note: "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Decode(tt.env)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	r := newRegistry(t)

	_, err := r.Decode(Envelope{Type: "Espresso"})
	assert.ErrorIs(t, err, domain.ErrUnknownType)

	_, err = r.Decode(Envelope{Type: "Idle", Data: map[string]any{"stok": 1}})
	assert.Error(t, err, "unknown fields are rejected")
}

func TestEncode(t *testing.T) {
	r := newRegistry(t)

	env, err := r.Encode(Idle{Stock: 4})
	require.NoError(t, err)
	assert.Equal(t, Envelope{Type: "Idle", Data: map[string]any{"stock": 4}}, env)

	env, err = r.Encode(OutOfCoffee{})
	require.NoError(t, err)
	assert.Equal(t, Envelope{Type: "OutOfCoffee"}, env)

	env, err = r.Encode(Word("abc"))
	require.NoError(t, err)
	assert.Equal(t, Envelope{Type: "Word", Data: map[string]any{"value": Word("abc")}}, env)

	_, err = r.Encode(&Idle{})
	assert.ErrorIs(t, err, domain.ErrUnknownType)
}

func TestDecodeJSON(t *testing.T) {
	r := newRegistry(t)

	got, err := r.DecodeJSON([]byte(`{"type": "Refill", "data": {"amount": 10}}`))
	require.NoError(t, err)
	assert.Equal(t, Refill{Amount: 10}, got)

	_, err = r.DecodeJSON([]byte(`{`))
	assert.Error(t, err)
}

func TestDecodeYAML(t *testing.T) {
	r := newRegistry(t)

	got, err := r.DecodeYAML([]byte("type: Idle\ndata:\n  stock: 7\n"))
	require.NoError(t, err)
	assert.Equal(t, Idle{Stock: 7}, got)
}

func TestRoundTrip(t *testing.T) {
	r := newRegistry(t)

	env, err := r.Encode(Refill{Amount: 9})
	require.NoError(t, err)
	got, err := r.Decode(env)
	require.NoError(t, err)
	assert.Equal(t, Refill{Amount: 9}, got)
}
