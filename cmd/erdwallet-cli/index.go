package main

import (
	"flag"
	"fmt"
	"strconv"
)

// accountIndex is a flag.Value holding a 32-bit account index. Values that
// do not fit are rejected at parse time.
type accountIndex struct {
	v   uint32
	set bool
}

func (a *accountIndex) String() string {
	if a == nil {
		return "0"
	}
	return strconv.FormatUint(uint64(a.v), 10)
}

func (a *accountIndex) Set(s string) error {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return fmt.Errorf("account index must be 0..%d", uint32(1<<32-1))
	}
	a.v, a.set = uint32(n), true
	return nil
}

// indexFlag registers --<name> as an account index defaulting to 0.
func indexFlag(fs *flag.FlagSet, name, usage string) *accountIndex {
	a := &accountIndex{}
	fs.Var(a, name, usage)
	return a
}
