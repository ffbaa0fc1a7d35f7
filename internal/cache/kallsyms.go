package cache

import (
	"fmt"
	"strconv"
	"strings"
)

// sscanKallsymsLine parses one /proc/kallsyms line of the form
// "ffffffff81000000 T startup_64" (an optional fourth "[module]" field is
// ignored). Returns an error for malformed or symbol-less (kind 'U') lines.
func sscanKallsymsLine(line string, addr *uint64, kind, name *string) (int, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return 0, fmt.Errorf("cache: short kallsyms line %q", line)
	}
	if fields[1] == "U" {
		return 0, fmt.Errorf("cache: undefined kallsyms symbol %q", fields[2])
	}

	a, err := strconv.ParseUint(fields[0], 16, 64)
	if err != nil {
		return 0, fmt.Errorf("cache: bad kallsyms address %q: %w", fields[0], err)
	}

	*addr = a
	*kind = fields[1]
	*name = fields[2]
	return 3, nil
}
