package inputs

import (
	"fmt"
	"sync"

	"telegramdebtlog/pkg/state"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[state.Stage]InputStrategy)

	builtinsOnce sync.Once
)

// RegisterBuiltins registers one strategy for every stage that accepts text.
func RegisterBuiltins() {
	builtinsOnce.Do(func() {
		MustRegister(NewTextStrategy(state.StageWaitingFullName, FieldFullName, FullNameMinLen, FullNameMaxLen,
			func(d *state.Draft, v string) { d.FullName = v }))
		MustRegister(NewTextStrategy(state.StageWaitingGroup, FieldGroup, 0, 0,
			func(d *state.Draft, v string) { d.Group = v }))
		MustRegister(NewTextStrategy(state.StageWaitingSubject, FieldSubject, 0, 0,
			func(d *state.Draft, v string) { d.Subject = v }))
		MustRegister(NewTextStrategy(state.StageWaitingTask, FieldTask, 0, 0,
			func(d *state.Draft, v string) { d.TaskDescription = v }))
		MustRegister(NewDueDateStrategy())
		MustRegister(NewConfirmStrategy())
		MustRegister(NewUserIDStrategy(state.StageAddingAdmin))
		MustRegister(NewUserIDStrategy(state.StageRemovingAdmin))
	})
}

// MustRegister adds a strategy to the registry, panicking when its stage is taken.
func MustRegister(strategy InputStrategy) {
	if strategy == nil {
		panic("cannot register nil input strategy")
	}

	key := strategy.Stage()
	registryMu.Lock()
	defer registryMu.Unlock()

	if existing, exists := registry[key]; exists {
		panic(fmt.Sprintf("stage '%s' already handled by '%s'", key, existing.Name()))
	}

	registry[key] = strategy
}

// Get returns the strategy for stage, or nil when absent.
func Get(stage state.Stage) InputStrategy {
	registryMu.RLock()
	defer registryMu.RUnlock()

	return registry[stage]
}

// resetRegistryForTests wipes registration state. Only used inside unit tests.
func resetRegistryForTests() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[state.Stage]InputStrategy)
	builtinsOnce = sync.Once{}
}
