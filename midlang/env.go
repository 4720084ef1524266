package midlang

import (
	"maps"
	"slices"
)

// Env holds the variable and function bindings of one interpreter. The two
// namespaces are independent: a name may be both a variable and a function.
type Env struct {
	values    map[string]Value
	functions map[string]string
}

func newEnv() *Env {
	return &Env{values: make(map[string]Value), functions: make(map[string]string)}
}

func (e *Env) Get(name string) (Value, bool) {
	val, ok := e.values[name]
	return val, ok
}

func (e *Env) Assign(name string, val Value) {
	e.values[name] = val
}

func (e *Env) DefineFunction(name, body string) {
	e.functions[name] = body
}

func (e *Env) Function(name string) (string, bool) {
	body, ok := e.functions[name]
	return body, ok
}

// Variables returns the bound variable names in sorted order.
func (e *Env) Variables() []string {
	return slices.Sorted(maps.Keys(e.values))
}

// Functions returns the defined function names in sorted order.
func (e *Env) Functions() []string {
	return slices.Sorted(maps.Keys(e.functions))
}
