package main

import (
	"fmt"
	"sort"
	"strings"
)

// sizePresets are the named canvas sizes as landscape width x height.
var sizePresets = map[string][2]int{
	"hd": {1920, 1080},
	"2k": {2048, 1080},
	"4k": {3840, 2160},
}

// parsePreset resolves "<size>_<aspect>" into canvas dimensions.
// Aspect h keeps landscape, v swaps to portrait and s squares the first component.
func parsePreset(s string) (width, height int, err error) {
	size, aspect, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "_")
	if !ok {
		return 0, 0, fmt.Errorf("invalid preset %q: want <size>_<aspect>, e.g. 4k_v", s)
	}

	dims, ok := sizePresets[size]
	if !ok {
		return 0, 0, fmt.Errorf("unknown size %q (available: %s)", size, strings.Join(presetSizes(), ", "))
	}

	switch aspect {
	case "h":
		return dims[0], dims[1], nil
	case "v":
		return dims[1], dims[0], nil
	case "s":
		return dims[0], dims[0], nil
	default:
		return 0, 0, fmt.Errorf("unknown aspect %q (available: h, v, s)", aspect)
	}
}

func presetSizes() []string {
	names := make([]string, 0, len(sizePresets))
	for name := range sizePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
