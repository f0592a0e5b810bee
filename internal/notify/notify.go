// Package notify displays the messages the session client raises.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/dtroode/painel-admin/internal/logger"
	"github.com/dtroode/painel-admin/internal/model"
)

var (
	_ model.Notifier = (*Console)(nil)
	_ model.Notifier = (*Log)(nil)
)

// Console prints success messages in green and errors in red.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	success *color.Color
	failure *color.Color
}

// NewConsole writes to out. Colors are dropped when noColor is set or the
// output is not a terminal.
func NewConsole(out io.Writer, noColor bool) *Console {
	success := color.New(color.FgGreen, color.Bold)
	failure := color.New(color.FgRed, color.Bold)
	if noColor {
		success.DisableColor()
		failure.DisableColor()
	}
	return &Console{
		out:     out,
		success: success,
		failure: failure,
	}
}

func (c *Console) Success(message string) {
	c.print(c.success, "✓", message)
}

func (c *Console) Error(message string) {
	c.print(c.failure, "✗", message)
}

func (c *Console) print(style *color.Color, mark, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Notifiers cannot report write failures.
	_, _ = fmt.Fprintf(c.out, "%s %s\n", style.Sprint(mark), message)
}

// Log routes messages to the structured logger.
type Log struct {
	logger *logger.Logger
}

func NewLog(logger *logger.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Success(message string) {
	l.logger.Info("Notifier: success", "message", message)
}

func (l *Log) Error(message string) {
	l.logger.Warn("Notifier: error", "message", message)
}

// Multi fans a message out to several notifiers.
type Multi []model.Notifier

func (m Multi) Success(message string) {
	for _, n := range m {
		n.Success(message)
	}
}

func (m Multi) Error(message string) {
	for _, n := range m {
		n.Error(message)
	}
}
