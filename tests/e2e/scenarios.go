package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/grovetools/tend/pkg/assert"
	"github.com/grovetools/tend/pkg/command"
	"github.com/grovetools/tend/pkg/fs"
	"github.com/grovetools/tend/pkg/harness"
)

// setupWorkspace creates an isolated home and data directory.
func setupWorkspace(ctx *harness.Context) error {
	homeDir := ctx.NewDir("home")
	dataDir := filepath.Join(ctx.NewDir("data"), "devdash")
	if err := fs.CreateDir(dataDir); err != nil {
		return err
	}
	ctx.Set("mock_home", homeDir)
	ctx.Set("data_dir", dataDir)
	return nil
}

type runResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// devdash runs the binary against the scenario's data directory.
func devdash(ctx *harness.Context, args ...string) (*runResult, error) {
	binary, err := FindProjectBinary()
	if err != nil {
		return nil, err
	}
	args = append(args, "--data-dir", ctx.GetString("data_dir"))
	cmd := command.New(binary, args...).Env("HOME=" + ctx.GetString("mock_home"))
	result := cmd.Run()
	ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)
	return &runResult{Stdout: result.Stdout, Stderr: result.Stderr, ExitCode: result.ExitCode}, nil
}

func runOK(ctx *harness.Context, args ...string) (*runResult, error) {
	result, err := devdash(ctx, args...)
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return nil, fmt.Errorf("devdash %v failed: %s", args, result.Stderr)
	}
	return result, nil
}

// TodoLifecycleScenario adds, completes and removes tasks.
func TodoLifecycleScenario() *harness.Scenario {
	return &harness.Scenario{
		Name: "devdash-todo-lifecycle",
		Steps: []harness.Step{
			harness.NewStep("Setup workspace", setupWorkspace),
			harness.NewStep("Add two tasks", func(ctx *harness.Context) error {
				if _, err := runOK(ctx, "todo", "add", "buy", "milk"); err != nil {
					return err
				}
				_, err := runOK(ctx, "todo", "add", "call mom")
				return err
			}),
			harness.NewStep("Complete task 0", func(ctx *harness.Context) error {
				_, err := runOK(ctx, "todo", "complete", "0")
				return err
			}),
			harness.NewStep("List tasks", func(ctx *harness.Context) error {
				result, err := runOK(ctx, "todo", "list")
				if err != nil {
					return err
				}
				if err := assert.Contains(result.Stdout, "buy milk", "Should list first task"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stdout, "Done", "First task should be done"); err != nil {
					return err
				}
				return assert.Contains(result.Stdout, "Pending", "Second task should be pending")
			}),
			harness.NewStep("Remove task 0 and check JSON", func(ctx *harness.Context) error {
				if _, err := runOK(ctx, "todo", "remove", "0"); err != nil {
					return err
				}
				result, err := runOK(ctx, "todo", "list", "--json")
				if err != nil {
					return err
				}

				var todos []map[string]interface{}
				if err := json.Unmarshal([]byte(result.Stdout), &todos); err != nil {
					return fmt.Errorf("failed to parse JSON output: %w", err)
				}
				if err := assert.Equal(1, len(todos), "One task should remain"); err != nil {
					return err
				}
				return assert.Equal("call mom", todos[0]["task"], "Remaining task should shift to ID 0")
			}),
			harness.NewStep("Reject a non-numeric ID", func(ctx *harness.Context) error {
				result, err := devdash(ctx, "todo", "complete", "abc")
				if err != nil {
					return err
				}
				if result.ExitCode == 0 {
					return fmt.Errorf("expected non-zero exit for invalid index")
				}
				return assert.Contains(result.Stderr, "invalid index", "Should report the bad index")
			}),
		},
	}
}

// TimeTrackingScenario starts and stops an entry.
func TimeTrackingScenario() *harness.Scenario {
	return &harness.Scenario{
		Name: "devdash-time-tracking",
		Steps: []harness.Step{
			harness.NewStep("Setup workspace", setupWorkspace),
			harness.NewStep("Stop with nothing running", func(ctx *harness.Context) error {
				result, err := runOK(ctx, "time", "stop")
				if err != nil {
					return err
				}
				return assert.Contains(result.Stdout, "No running time entry", "Stop should be a no-op")
			}),
			harness.NewStep("Start and stop an entry", func(ctx *harness.Context) error {
				if _, err := runOK(ctx, "time", "start", "code", "review"); err != nil {
					return err
				}
				result, err := runOK(ctx, "time", "stop")
				if err != nil {
					return err
				}
				return assert.Contains(result.Stdout, "Stopped: code review", "Should report the stopped entry")
			}),
			harness.NewStep("List entries as JSON", func(ctx *harness.Context) error {
				result, err := runOK(ctx, "time", "list", "--json")
				if err != nil {
					return err
				}

				var entries []map[string]interface{}
				if err := json.Unmarshal([]byte(result.Stdout), &entries); err != nil {
					return fmt.Errorf("failed to parse JSON output: %w", err)
				}
				if err := assert.Equal(1, len(entries), "Should have one entry"); err != nil {
					return err
				}
				if _, ok := entries[0]["start"].(float64); !ok {
					return fmt.Errorf("start should be epoch seconds, got %v", entries[0]["start"])
				}
				if _, ok := entries[0]["end"].(float64); !ok {
					return fmt.Errorf("end should be set after stop, got %v", entries[0]["end"])
				}
				return nil
			}),
		},
	}
}

// PathsScenario checks where the ledgers are stored.
func PathsScenario() *harness.Scenario {
	return &harness.Scenario{
		Name: "devdash-paths",
		Steps: []harness.Step{
			harness.NewStep("Setup workspace", setupWorkspace),
			harness.NewStep("Run 'devdash paths --json'", func(ctx *harness.Context) error {
				result, err := runOK(ctx, "paths", "--json")
				if err != nil {
					return err
				}

				var paths map[string]string
				if err := json.Unmarshal([]byte(result.Stdout), &paths); err != nil {
					return fmt.Errorf("failed to parse JSON output: %w", err)
				}
				dataDir := ctx.GetString("data_dir")
				if err := assert.Equal(filepath.Join(dataDir, "todos.json"), paths["todos"], "todos path"); err != nil {
					return err
				}
				return assert.Equal(filepath.Join(dataDir, "time_entries.json"), paths["time_entries"], "time entries path")
			}),
		},
	}
}

// CorruptStoreScenario refuses to start on an unreadable ledger.
func CorruptStoreScenario() *harness.Scenario {
	return &harness.Scenario{
		Name: "devdash-corrupt-store",
		Steps: []harness.Step{
			harness.NewStep("Setup workspace", setupWorkspace),
			harness.NewStep("Write a corrupt todos.json", func(ctx *harness.Context) error {
				return fs.WriteString(filepath.Join(ctx.GetString("data_dir"), "todos.json"), "{not json")
			}),
			harness.NewStep("Run 'devdash todo list'", func(ctx *harness.Context) error {
				result, err := devdash(ctx, "todo", "list")
				if err != nil {
					return err
				}
				if result.ExitCode == 0 {
					return fmt.Errorf("expected non-zero exit for corrupt store")
				}
				if err := assert.Contains(result.Stderr, "failed to load todos", "Should name the failing ledger"); err != nil {
					return err
				}
				return assert.NotContains(result.Stdout, "No tasks.", "Should not treat corrupt data as empty")
			}),
		},
	}
}
