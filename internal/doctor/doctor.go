// Package doctor runs the environment checks behind --doctor.
package doctor

import (
	"context"
	"fmt"
	"io"
	"time"

	"bedrock-converse/internal/awsenv"
	"bedrock-converse/internal/llm"
)

const (
	ExitOK          = 0
	ExitSetupFailed = 2
	ExitSmokeFailed = 3

	smokePrompt = "Respond with the word OK."
)

// SmokeInference keeps the smoke test to a handful of deterministic tokens.
var SmokeInference = llm.InferenceConfig{MaxTokens: 5, Temperature: 0.0, TopP: 1.0}

// Converser is the synchronous half of llm.Client.
type Converser interface {
	Converse(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error)
}

type Doctor struct {
	Out io.Writer
	// ModelID gates the smoke test; empty skips it.
	ModelID  string
	Identity func(ctx context.Context) (awsenv.Identity, error)
	Runtime  func(ctx context.Context) (Converser, error)
	Now      func() time.Time
}

// Run executes the checks top to bottom and returns the process exit code.
// A failed identity or client check ends the run.
func (d *Doctor) Run(ctx context.Context) int {
	now := d.Now
	if now == nil {
		now = time.Now
	}

	fmt.Fprintln(d.Out, "Bedrock Doctor")
	fmt.Fprintln(d.Out, "--------------")

	identity, err := d.Identity(ctx)
	if err != nil {
		fmt.Fprintf(d.Out, "STS check failed: %v\n", err)
		return ExitSetupFailed
	}
	fmt.Fprintf(d.Out, "AWS identity ok: %s / %s\n", identity.Account, identity.ARN)

	client, err := d.Runtime(ctx)
	if err != nil {
		fmt.Fprintf(d.Out, "Runtime init failed: %v\n", err)
		return ExitSetupFailed
	}
	fmt.Fprintln(d.Out, "Runtime client constructed.")

	if d.ModelID == "" {
		fmt.Fprintln(d.Out, "Set BEDROCK_MODEL_ID to run a one-token smoke test.")
	} else {
		start := now()
		resp, err := client.Converse(ctx, llm.ChatRequest{
			ModelID:   d.ModelID,
			Messages:  llm.BuildMessages(smokePrompt),
			Inference: SmokeInference,
		})
		if err != nil {
			fmt.Fprintf(d.Out, "Smoke test failed: %v\n", err)
			return ExitSmokeFailed
		}
		elapsed := now().Sub(start)
		fmt.Fprintf(d.Out, "Smoke test ok (%d ms): %q\n", elapsed.Milliseconds(), resp.Content)
	}

	fmt.Fprintln(d.Out, "Doctor finished: looks good.")
	return ExitOK
}
