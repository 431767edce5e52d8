package gorm

import (
	"fmt"
	"sort"
	"sync"

	"gorm.io/gorm"
)

// DialectorFactory builds a gorm.Dialector for a DSN. Driver subpackages
// register one in their init function, so importing a driver subpackage is
// what enables its registry backend.
type DialectorFactory func(dsn string) gorm.Dialector

var (
	dialectorMu sync.RWMutex
	dialectors  = make(map[string]DialectorFactory)
)

// RegisterDialector registers a dialector factory under a driver name
// ("sqlite", "postgres", "mysql").
func RegisterDialector(driver string, factory DialectorFactory) {
	dialectorMu.Lock()
	defer dialectorMu.Unlock()
	if driver == "" {
		panic("dialector driver name cannot be empty")
	}
	if factory == nil {
		panic(fmt.Sprintf("cannot register nil dialector factory for driver: %s", driver))
	}
	dialectors[driver] = factory
}

// OpenDialector builds the dialector for the given driver, or an error naming
// the drivers that are compiled in.
func OpenDialector(driver, dsn string) (gorm.Dialector, error) {
	dialectorMu.RLock()
	factory, ok := dialectors[driver]
	dialectorMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no dialector registered for driver %q (available: %v)", driver, registeredDrivers())
	}
	return factory(dsn), nil
}

func registeredDrivers() []string {
	names := make([]string, 0, len(dialectors))
	for name := range dialectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
