// Package machines registers the built-in example machines.
package machines

import (
	"github.com/aretw0/typomata/internal/machines/coffee"
	"github.com/aretw0/typomata/internal/machines/textcase"
	"github.com/aretw0/typomata/pkg/registry"
)

// Default returns a registry holding every built-in machine.
func Default() *registry.Registry {
	r := registry.NewRegistry()
	r.Register(coffee.Name, coffee.New)
	r.Register(textcase.Name, textcase.New)
	return r
}
