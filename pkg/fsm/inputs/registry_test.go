package inputs

import (
	"testing"

	"telegramdebtlog/pkg/state"
)

func TestMustRegisterPanicsOnDuplicateStage(t *testing.T) {
	resetRegistryForTests()
	defer resetRegistryForTests()

	MustRegister(NewDueDateStrategy())

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic when registering a second strategy for the same stage")
		}
	}()

	MustRegister(NewDueDateStrategy())
}

func TestRegisterBuiltinsCoversTextStages(t *testing.T) {
	resetRegistryForTests()
	defer resetRegistryForTests()

	RegisterBuiltins()
	RegisterBuiltins()

	for _, stage := range state.Stages {
		got := Get(stage)
		if stage == state.StageNone {
			if got != nil {
				t.Fatalf("expected no strategy for %s", stage)
			}
			continue
		}
		if got == nil || got.Stage() != stage {
			t.Fatalf("expected strategy for %s, got %v", stage, got)
		}
	}
}
