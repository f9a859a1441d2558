package easyexpr

import (
	"reflect"
	"sort"
	"strings"
)

// References is the set of types a compile request depends on. Dynamic is set when
// any participant is dynamic: the unit then gets runtime support for dynamic values
type References struct {
	Types   []reflect.Type
	Dynamic bool
}

func computeReferences(variables []Variable, methods []*Method) References {
	set := map[reflect.Type]struct{}{anyType: {}}
	var ret References
	for _, v := range variables {
		set[v.Type()] = struct{}{}
		ret.Dynamic = ret.Dynamic || v.IsDynamic()
	}
	for _, m := range methods {
		for _, p := range m.params {
			set[p.Type] = struct{}{}
		}
		if m.sig.out != nil {
			set[m.sig.out] = struct{}{}
		}
		ret.Dynamic = ret.Dynamic || m.isDynamic()
	}
	ret.Types = make([]reflect.Type, 0, len(set))
	for t := range set {
		ret.Types = append(ret.Types, t)
	}
	sort.Slice(ret.Types, func(i, j int) bool {
		return ret.Types[i].String() < ret.Types[j].String()
	})
	return ret
}

func (r References) Contains(t reflect.Type) bool {
	for _, t1 := range r.Types {
		if t1 == t {
			return true
		}
	}
	return false
}

func (r References) String() string {
	names := make([]string, len(r.Types))
	for i, t := range r.Types {
		names[i] = t.String()
	}
	ret := strings.Join(names, ", ")
	if r.Dynamic {
		ret += " +dynamic"
	}
	return ret
}
