package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"bedrock-converse/internal/awsenv"
	"bedrock-converse/internal/llm"
)

const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Services builds the remote clients the commands talk to. Each constructor
// runs only once a command has passed argument validation.
type Services struct {
	Identity  func(ctx context.Context, opts awsenv.Options) (awsenv.Identity, error)
	Converser func(ctx context.Context, opts awsenv.Options) (llm.Client, error)
	Models    func(ctx context.Context, opts awsenv.Options) (llm.ModelLister, error)
}

func DefaultServices() Services {
	return Services{
		Identity: awsenv.LookupIdentity,
		Converser: func(ctx context.Context, opts awsenv.Options) (llm.Client, error) {
			cfg, err := awsenv.Load(ctx, opts)
			if err != nil {
				return nil, err
			}
			return llm.NewBedrockClient(cfg), nil
		},
		Models: func(ctx context.Context, opts awsenv.Options) (llm.ModelLister, error) {
			cfg, err := awsenv.Load(ctx, opts)
			if err != nil {
				return nil, err
			}
			return llm.NewModelLister(cfg), nil
		},
	}
}

// ExitError carries a specific exit code whose message was already printed.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

type usageError struct {
	err error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

func usageErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// Execute runs the command line and returns the process exit code. Errors
// are printed to errOut; stdout only carries command output.
func Execute(args []string, in io.Reader, out io.Writer, errOut io.Writer, services Services) int {
	// cobra reads os.Args when args is nil.
	if args == nil {
		args = []string{}
	}
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	root := NewRootCmd(services)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	cmd, err := root.ExecuteContextC(context.Background())
	return reportError(errOut, cmd, err)
}

func reportError(errOut io.Writer, cmd *cobra.Command, err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(errOut, "Error: %v\n", usageErr)
		if cmd != nil {
			fmt.Fprint(errOut, cmd.UsageString())
		}
		return ExitUsage
	}
	fmt.Fprintln(errOut, err.Error())
	return ExitFailure
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageErrorf("unexpected argument %q for %q", args[0], cmd.CommandPath())
	}
	return nil
}
