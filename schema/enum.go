package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// EnumType is an explicitly registered enumeration: names to integer values.
type EnumType struct {
	Name   string
	values map[string]int
	names  map[int]string
	folded map[string]int
}

// EnumRegistry resolves enumeration types by name.
type EnumRegistry struct {
	mu    sync.RWMutex
	types map[string]*EnumType
}

// Enums is the process-wide enumeration registry. NewEnum registers into it.
var Enums = &EnumRegistry{types: make(map[string]*EnumType)}

// NewEnum builds an enumeration type and registers it in Enums. It panics when
// two member names are equal ignoring case.
func NewEnum(name string, values map[string]int) *EnumType {
	et, err := BuildEnum(name, values)
	if err != nil {
		panic(err)
	}
	Enums.Register(et)
	return et
}

// BuildEnum builds an unregistered enumeration type.
func BuildEnum(name string, values map[string]int) (*EnumType, error) {
	et := &EnumType{
		Name:   name,
		values: make(map[string]int, len(values)),
		names:  make(map[int]string, len(values)),
		folded: make(map[string]int, len(values)),
	}
	for n, v := range values {
		key := strings.ToLower(n)
		if _, ok := et.folded[key]; ok {
			return nil, fmt.Errorf("%s: member names collide ignoring case: %q", name, n)
		}
		et.folded[key] = v
		et.values[n] = v
		et.names[v] = n
	}
	return et, nil
}

func (r *EnumRegistry) Register(et *EnumType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[et.Name] = et
}

func (r *EnumRegistry) Lookup(name string) (*EnumType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	et, ok := r.types[name]
	return et, ok
}

// Parse resolves a name (case-insensitive) or a decimal value to a member value.
func (et *EnumType) Parse(s string) (int, error) {
	s = strings.TrimSpace(s)
	if v, ok := et.values[s]; ok {
		return v, nil
	}
	if v, ok := et.folded[strings.ToLower(s)]; ok {
		return v, nil
	}
	if i, err := strconv.Atoi(s); err == nil {
		if _, ok := et.names[i]; ok {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%q is not a member of %s", s, et.Name)
}

// NameOf returns the member name for v, or its decimal form when v is not a member.
func (et *EnumType) NameOf(v int) string {
	if n, ok := et.names[v]; ok {
		return n
	}
	return strconv.Itoa(v)
}

// Valid reports whether v is a member value.
func (et *EnumType) Valid(v int) bool {
	_, ok := et.names[v]
	return ok
}

// Names lists member names ordered by value.
func (et *EnumType) Names() []string {
	vals := make([]int, 0, len(et.names))
	for v := range et.names {
		vals = append(vals, v)
	}
	sort.Ints(vals)
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = et.names[v]
	}
	return out
}
