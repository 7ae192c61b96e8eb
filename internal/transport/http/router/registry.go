package router

import (
	"sort"

	"taskhub/internal/transport/http/ez"
)

// APIModule mounts its routes on the shared /api groups.
type APIModule interface{ MountAPI(ez.Groups) }

// Modules implementing prioritizer mount in ascending order; others use 100.
type prioritizer interface{ Priority() int }

func MountAll(g ez.Groups, mods ...APIModule) {
	mods = append([]APIModule(nil), mods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountAPI(g)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
