package options

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tableflip.dev/tradelog/pkg/controller"
)

// ConfirmOptions
type ConfirmOptions struct {
	Yes bool
}

func AddConfirmArgs(cmd *cobra.Command, o *ConfirmOptions) {
	cmd.Flags().BoolVarP(&o.Yes, "yes", "y", false,
		"Do not ask for confirmation.")
}

// Confirmer returns the gate deletes pass through: always yes with --yes,
// otherwise a terminal prompt.
func (o *ConfirmOptions) Confirmer() controller.Confirmer {
	if o.Yes {
		return controller.AlwaysConfirm
	}
	return controller.ConfirmFunc(promptConfirm)
}

// ErrNotInteractive is returned when a confirmation is needed but stdin is
// not a terminal.
var ErrNotInteractive = errors.New("options: stdin is not a terminal, pass --yes to confirm")

func promptConfirm(ctx context.Context, prompt string) (bool, error) {
	if !interactive() {
		return false, ErrNotInteractive
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt + " [y/N] ",
		InterruptPrompt: "^C",
	})
	if err != nil {
		return false, err
	}
	defer rl.Close()

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := rl.Readline()
		ch <- answer{line, err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-ch:
		if errors.Is(a.err, readline.ErrInterrupt) || errors.Is(a.err, io.EOF) {
			return false, nil
		}
		if a.err != nil {
			return false, a.err
		}
		return IsYes(a.line), nil
	}
}

func interactive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// IsYes reports whether answer accepts a yes/no question.
func IsYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
