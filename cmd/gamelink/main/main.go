package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/gamelink/cmd/gamelink"
	"github.com/arthur-debert/gamelink/pkg/errors"
	"github.com/arthur-debert/gamelink/pkg/style"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := gamelink.NewRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err))
}

// exitCode prints err and maps it to the process exit status.
// Incomplete runs already printed their report.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	style.SetColor(style.ColorEnabled(os.Stderr))
	fmt.Fprintln(os.Stderr, style.ErrorStyle.Render(fmt.Sprintf("Error: %v", err)))

	switch errors.GetErrorCode(err) {
	case errors.ErrIncomplete:
		return 2
	case errors.ErrCanceled:
		return 130
	}
	return 1
}
