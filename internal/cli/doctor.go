package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"bedrock-converse/internal/awsenv"
	"bedrock-converse/internal/doctor"
)

func runDoctor(cmd *cobra.Command, state *app) error {
	opts := state.awsOptions()
	d := &doctor.Doctor{
		Out:     cmd.OutOrStdout(),
		ModelID: strings.TrimSpace(state.cfg.Doctor.ModelID),
		Identity: func(ctx context.Context) (awsenv.Identity, error) {
			return state.services.Identity(ctx, opts)
		},
		Runtime: func(ctx context.Context) (doctor.Converser, error) {
			client, err := state.services.Converser(ctx, opts)
			if err != nil {
				return nil, err
			}
			return client, nil
		},
	}
	if code := d.Run(cmd.Context()); code != doctor.ExitOK {
		return &ExitError{Code: code}
	}
	return nil
}
