package cache

import (
	"bufio"
	"os"
	"sort"
	"sync"
)

// kallsymsEntry is one parsed line of /proc/kallsyms: an address and the
// symbol name starting at it.
type kallsymsEntry struct {
	addr uint64
	name string
}

// KernelSymbols resolves kernel addresses to symbol names by loading
// /proc/kallsyms once and binary-searching it thereafter (spec.md §5
// "Stack output": kernel stack frames are written symbolized, not as raw
// addresses).
type KernelSymbols struct {
	mu      sync.Mutex
	entries []kallsymsEntry
	loaded  bool
}

// NewKernelSymbols creates an unloaded symbol table; the first Resolve
// call triggers a lazy load from /proc/kallsyms.
func NewKernelSymbols() *KernelSymbols {
	return &KernelSymbols{}
}

func (k *KernelSymbols) ensureLoaded() {
	if k.loaded {
		return
	}
	k.loaded = true

	f, err := os.Open("/proc/kallsyms")
	if err != nil {
		return
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var addr uint64
		var kind, name string
		if _, err := sscanKallsymsLine(sc.Text(), &addr, &kind, &name); err != nil {
			continue
		}
		k.entries = append(k.entries, kallsymsEntry{addr: addr, name: name})
	}
	sort.Slice(k.entries, func(i, j int) bool { return k.entries[i].addr < k.entries[j].addr })
}

// Resolve returns the nearest symbol at or below addr, plus the byte
// offset into it, or ("", 0, false) if the table is empty or addr lies
// below the lowest symbol. Symbol sizes are not tracked, so any higher
// address resolves to the nearest preceding symbol.
func (k *KernelSymbols) Resolve(addr uint64) (name string, offset uint64, ok bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.ensureLoaded()

	if len(k.entries) == 0 {
		return "", 0, false
	}

	idx := sort.Search(len(k.entries), func(i int) bool { return k.entries[i].addr > addr }) - 1
	if idx < 0 {
		return "", 0, false
	}
	e := k.entries[idx]
	return e.name, addr - e.addr, true
}
