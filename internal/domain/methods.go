package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Method is a cash payment channel.
type Method string

const (
	MethodCashApp Method = "cashapp"
	MethodPayPal  Method = "paypal"
	MethodChime   Method = "chime"
)

// MethodSet is the closed, ordered set of accepted payment channels.
type MethodSet struct {
	list  []Method
	index map[Method]struct{}
}

// DefaultMethods returns the three channels the operator started with.
func DefaultMethods() MethodSet {
	set, _ := NewMethodSet(string(MethodCashApp), string(MethodPayPal), string(MethodChime))

	return set
}

// NewMethodSet builds a set from channel names, keeping their order.
func NewMethodSet(names ...string) (MethodSet, error) {
	set := MethodSet{index: make(map[Method]struct{}, len(names))}

	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}

		m := Method(n)
		if _, dup := set.index[m]; dup {
			return MethodSet{}, fmt.Errorf("duplicate payment method %q", n)
		}

		set.index[m] = struct{}{}
		set.list = append(set.list, m)
	}

	if len(set.list) == 0 {
		return MethodSet{}, errors.New("at least one payment method is required")
	}

	return set, nil
}

// Contains reports whether m is an accepted channel.
func (s MethodSet) Contains(m Method) bool {
	_, ok := s.index[m]

	return ok
}

// Methods returns the channels in configuration order.
func (s MethodSet) Methods() []Method {
	return append([]Method(nil), s.list...)
}

// ZeroTotals returns a totals mapping with every channel at zero.
func (s MethodSet) ZeroTotals() Totals {
	t := make(Totals, len(s.list))
	for _, m := range s.list {
		t[m] = 0
	}

	return t
}

func (s MethodSet) String() string {
	parts := make([]string, len(s.list))
	for i, m := range s.list {
		parts[i] = string(m)
	}

	return strings.Join(parts, ", ")
}
