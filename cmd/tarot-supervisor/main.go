// Supervisor keeps the API process alive, restarting it with exponential
// backoff when it exits and forwarding termination signals to the child
package main

import (
	"context"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/NightBlad/Tarotbot/internal/platform/config"
	"github.com/NightBlad/Tarotbot/internal/platform/logger"
)

const (
	backoffInitial = time.Second
	backoffMax     = 30 * time.Second
	// a child that survives this long resets the backoff
	stableAfter = 30 * time.Second
	// grace period between SIGTERM and SIGKILL
	killAfter = 5 * time.Second
)

func main() {
	_ = godotenv.Load()

	logger.Init(logger.FromEnv())
	l := logger.Named("supervisor")

	cfg := config.New().Prefix("SUPERVISOR_")
	command := cfg.MayString("CMD", "./tarot-api")
	args := os.Args[1:]
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	delay := backoffInitial
	for {
		started := time.Now()
		code, err := runChild(ctx, l, command, args)
		if ctx.Err() != nil {
			l.Info().Msg("supervisor stopping")
			return
		}
		if err != nil {
			l.Error().Err(err).Str("cmd", command).Msg("child failed to start")
		} else {
			l.Warn().Int("exit_code", code).Msg("child exited")
		}

		if time.Since(started) >= stableAfter {
			delay = backoffInitial
		}
		l.Info().Dur("delay", delay).Msg("restarting child")
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		if delay *= 2; delay > backoffMax {
			delay = backoffMax
		}
	}
}

// runChild starts the command and waits for it to exit
// on ctx cancellation the child gets SIGTERM, then SIGKILL after the grace period
func runChild(ctx context.Context, l *logger.Logger, command string, args []string) (int, error) {
	cmd := exec.Command(command, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()

	if err := cmd.Start(); err != nil {
		return -1, err
	}
	l.Info().Int("pid", cmd.Process.Pid).Str("cmd", command).Msg("child started")

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return exitCode(cmd, err), nil
	case <-ctx.Done():
		_ = cmd.Process.Signal(syscall.SIGTERM)
		select {
		case <-done:
		case <-time.After(killAfter):
			l.Warn().Msg("child ignored SIGTERM, killing")
			_ = cmd.Process.Kill()
			<-done
		}
		return exitCode(cmd, nil), nil
	}
}

func exitCode(cmd *exec.Cmd, err error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	if err != nil {
		return -1
	}
	return 0
}
