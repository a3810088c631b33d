package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lumen/internal/daemon"
	"lumen/internal/ipc"
	"lumen/internal/logging"
	"lumen/internal/testsupport"
)

type cliTestEnv struct {
	daemon     *daemon.Daemon
	server     *ipc.Server
	socketPath string
	configPath string
	scriptPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)

	configPath := filepath.Join(base, "config.toml")
	body := fmt.Sprintf(`
[paths]
log_dir = %q
socket_path = %q
lock_path = %q

[tracking]
server_url = "ws://127.0.0.1:0"

[script]
path = %q
`, cfg.Paths.LogDir, cfg.Paths.SocketPath, cfg.Paths.LockPath, cfg.Script.Path)
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}

	logger := logging.NewNop()
	d, err := daemon.New(cfg, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Start(ctx); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}

	srv, err := ipc.NewServer(ctx, cfg.Paths.SocketPath, d, logger)
	if err != nil {
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	t.Cleanup(func() {
		cancel()
		srv.Close()
		d.Close()
	})

	return &cliTestEnv{
		daemon:     d,
		server:     srv,
		socketPath: cfg.Paths.SocketPath,
		configPath: configPath,
		scriptPath: cfg.Script.Path,
	}
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--socket", socket}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("output %q missing %q", haystack, needle)
	}
}

func TestCLIStatusAndSceneCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	script := `
registerCandidate("intro", "Intro", {
	balls = { ["0"] = { url = "clip-a" } },
})
registerCandidate("drop", "Drop", {
	balls = { ["0"] = { url = "clip-b" } },
})
`
	if err := os.WriteFile(env.scriptPath, []byte(script), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	out, _, err := runCLI(t, []string{"run"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "2 scenes")

	out, _, err = runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Intro")

	out, _, err = runCLI(t, []string{"scenes"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("scenes: %v", err)
	}
	requireContains(t, out, "Drop")
	requireContains(t, out, "ball-0")

	out, _, err = runCLI(t, []string{"next"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	requireContains(t, out, "Now on scene 1")

	out, _, err = runCLI(t, []string{"prev"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("prev: %v", err)
	}
	requireContains(t, out, "Now on scene 0")

	if _, _, err = runCLI(t, []string{"load", "7"}, env.socketPath, env.configPath); err == nil {
		t.Fatal("expected error loading out-of-range scene")
	}
}

func TestCLIRunInline(t *testing.T) {
	env := setupCLITestEnv(t)

	script := filepath.Join(t.TempDir(), "solo.lua")
	body := `registerCandidate("solo", "Solo", { balls = { ["0"] = { url = "clip-a" } } })`
	if err := os.WriteFile(script, []byte(body), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	out, _, err := runCLI(t, []string{"run", "--inline", script}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("run --inline: %v", err)
	}
	requireContains(t, out, "1 scenes")
}
