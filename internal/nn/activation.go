package nn

import (
	"fmt"
	"sort"
	"strings"
)

// ActivationKind selects the membrane transition run by Neuron.forward.
type ActivationKind int

const (
	ActivationStep ActivationKind = iota + 1
)

var activationNames = map[ActivationKind]string{
	ActivationStep: "step",
}

// transitions binds every supported kind to its transition function. Kinds
// that are named but not bound here are rejected by Build.
var transitions = map[ActivationKind]func(n *Neuron, net *Network, total float64){
	ActivationStep: stepTransition,
}

func (k ActivationKind) String() string {
	if name, ok := activationNames[k]; ok {
		return name
	}
	return fmt.Sprintf("activation(%d)", int(k))
}

// ParseActivationKind resolves an activation name. The empty name selects
// the step function.
func ParseActivationKind(name string) (ActivationKind, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return ActivationStep, nil
	}
	for kind, n := range activationNames {
		if n == normalized {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedActivationKind, name)
}

func validateActivationKind(kind ActivationKind) error {
	if _, ok := transitions[kind]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedActivationKind, kind)
	}
	return nil
}

// ListActivationKinds returns the names of all supported kinds, sorted.
func ListActivationKinds() []string {
	names := make([]string, 0, len(transitions))
	for kind := range transitions {
		names = append(names, kind.String())
	}
	sort.Strings(names)
	return names
}
