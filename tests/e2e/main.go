package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/grovetools/tend/pkg/app"
	"github.com/grovetools/tend/pkg/harness"
)

func main() {
	scenarios := []*harness.Scenario{
		TodoLifecycleScenario(),
		TimeTrackingScenario(),
		PathsScenario(),
		CorruptStoreScenario(),
	}

	if err := app.Execute(context.Background(), scenarios); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// FindProjectBinary returns $DEVDASH_BINARY if set, else bin/devdash in the
// working tree or a parent, else devdash from PATH.
func FindProjectBinary() (string, error) {
	if env := os.Getenv("DEVDASH_BINARY"); env != "" {
		return env, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for dir := wd; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, "bin", "devdash")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		if filepath.Dir(dir) == dir {
			break
		}
	}

	if path, err := exec.LookPath("devdash"); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("devdash binary not found; build it with 'go build -o bin/devdash .' or set DEVDASH_BINARY")
}
