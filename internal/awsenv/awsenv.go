// Package awsenv resolves the AWS configuration the commands run against and
// answers who the resolved credentials belong to.
package awsenv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// ErrNoRegion is returned when neither an explicit region nor the shared
// configuration names one.
var ErrNoRegion = errors.New("no AWS region configured: pass --region or set AWS_REGION")

// Options are the explicit overrides threaded into SDK configuration. Empty
// fields fall back to the SDK's default chain.
type Options struct {
	Region  string
	Profile string
}

func Load(ctx context.Context, opts Options) (aws.Config, error) {
	loadOpts := make([]func(*awsconfig.LoadOptions) error, 0, 2)
	if region := strings.TrimSpace(opts.Region); region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	if profile := strings.TrimSpace(opts.Profile); profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	if cfg.Region == "" {
		return aws.Config{}, ErrNoRegion
	}
	return cfg, nil
}

type Identity struct {
	Account string
	ARN     string
	UserID  string
}

// STSAPI is the part of the STS client used for identity checks.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

func CallerIdentity(ctx context.Context, client STSAPI) (Identity, error) {
	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		Account: aws.ToString(out.Account),
		ARN:     aws.ToString(out.Arn),
		UserID:  aws.ToString(out.UserId),
	}, nil
}

// LookupIdentity loads configuration for opts and asks STS who the
// credentials belong to.
func LookupIdentity(ctx context.Context, opts Options) (Identity, error) {
	cfg, err := Load(ctx, opts)
	if err != nil {
		return Identity{}, err
	}
	return CallerIdentity(ctx, sts.NewFromConfig(cfg))
}
