package main

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type input struct {
	name  string
	value int64
}

// parseInputs parses a comma separated list of name=value pairs. Values are
// Go integer literals (decimal, 0x, 0b or 0o prefixed).
func parseInputs(s string) ([]input, error) {
	var ins []input
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	for _, kv := range strings.Split(s, ",") {
		i := strings.IndexByte(kv, '=')
		if i < 0 {
			return nil, errors.Errorf("missing value in %q", kv)
		}
		name, val := strings.TrimSpace(kv[:i]), strings.TrimSpace(kv[i+1:])
		if name == "" {
			return nil, errors.Errorf("missing name in %q", kv)
		}
		v, err := strconv.ParseInt(val, 0, 64)
		if err != nil {
			u, uerr := strconv.ParseUint(val, 0, 64)
			if uerr != nil {
				return nil, errors.Wrapf(err, "bad value for %s", name)
			}
			v = int64(u)
		}
		ins = append(ins, input{name, v})
	}
	return ins, nil
}
