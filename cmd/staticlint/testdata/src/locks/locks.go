package locks

import (
	"sync"
)

type table struct {
	mu     sync.RWMutex
	routes map[string]string
}

func snapshot(t *table) map[string]string {
	copied := *t // want "assignment copies lock value to copied"
	return copied.routes
}
