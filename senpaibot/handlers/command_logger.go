package handlers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/handler"
)

const (
	commandTimeout = 30 * time.Second
	slowThreshold  = 2 * time.Second
)

// WrapWithLogging runs a command handler in its own goroutine with a hard
// timeout and logs start, completion and failures uniformly.
func WrapWithLogging(name string, h handler.CommandHandler) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		start := time.Now()

		slog.Info("Command started",
			slog.String("type", "cmd"),
			slog.String("name", name),
			slog.String("user_id", e.User().ID.String()),
			slog.String("user_name", e.User().Username),
			slog.String("channel_id", e.ChannelID().String()),
		)

		done := make(chan error, 1)
		go func() {
			done <- h(e)
		}()

		select {
		case err := <-done:
			duration := time.Since(start)
			attrs := []any{
				slog.String("type", "cmd"),
				slog.String("name", name),
				slog.String("user_id", e.User().ID.String()),
				slog.Duration("took", duration),
			}

			switch {
			case err != nil:
				slog.Error("Command failed", append(attrs,
					slog.Any("error", err),
					slog.String("status", "failed"))...)
			case duration > slowThreshold:
				slog.Warn("Command executed slowly", append(attrs,
					slog.String("status", "slow"))...)
			default:
				slog.Info("Command completed", append(attrs,
					slog.String("status", "success"))...)
			}
			return err

		case <-time.After(commandTimeout):
			slog.Error("Command timed out",
				slog.String("type", "cmd"),
				slog.String("name", name),
				slog.String("user_id", e.User().ID.String()),
				slog.String("status", "timeout"))
			return fmt.Errorf("command %s timed out after %s", name, commandTimeout)
		}
	}
}

// WrapComponentWithLogging is WrapWithLogging for component interactions.
func WrapComponentWithLogging(name string, h handler.ComponentHandler) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		start := time.Now()

		done := make(chan error, 1)
		go func() {
			done <- h(e)
		}()

		select {
		case err := <-done:
			duration := time.Since(start)
			attrs := []any{
				slog.String("type", "component"),
				slog.String("name", name),
				slog.String("user_id", e.User().ID.String()),
				slog.Duration("took", duration),
			}

			if err != nil {
				slog.Error("Component interaction failed", append(attrs,
					slog.Any("error", err),
					slog.String("status", "failed"))...)
			} else if duration > slowThreshold {
				slog.Warn("Component interaction executed slowly", append(attrs,
					slog.String("status", "slow"))...)
			}
			return err

		case <-time.After(commandTimeout):
			slog.Error("Component interaction timed out",
				slog.String("type", "component"),
				slog.String("name", name),
				slog.String("user_id", e.User().ID.String()),
				slog.String("status", "timeout"))
			return fmt.Errorf("component %s timed out after %s", name, commandTimeout)
		}
	}
}
