package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"bedrock-converse/internal/awsenv"
	"bedrock-converse/internal/config"
	"bedrock-converse/internal/observability"
)

const (
	appName   = "bedrock-converse"
	envPrefix = "BEDROCK_CONVERSE"
)

type Options struct {
	Config  string
	Verbose bool
	Region  string
	Profile string
}

// app is the state shared by the root command and its subcommands once the
// configuration has been loaded.
type app struct {
	viper    *viper.Viper
	cfg      config.Config
	services Services
}

func (a *app) awsOptions() awsenv.Options {
	return awsenv.Options{
		Region:  a.cfg.AWS.Region,
		Profile: a.cfg.AWS.Profile,
	}
}

func NewRootCmd(services Services) *cobra.Command {
	opts := &Options{}
	state := &app{viper: viper.New(), services: services}
	converse := &converseOptions{}

	root := &cobra.Command{
		Use:   appName,
		Short: "Send a prompt to Amazon Bedrock through the Converse API",
		Long: "bedrock-converse sends one prompt to a Bedrock model using the provider-agnostic\n" +
			"Converse API and prints the reply, optionally streaming it as it arrives.\n" +
			"Use --doctor to check credentials, client setup and a one-token round trip.",
		Example: "  bedrock-converse --model-id anthropic.claude-3-5-sonnet-20241022-v2:0 --prompt \"Say hi\" --region us-east-1\n" +
			"  bedrock-converse --model-id meta.llama3-70b-instruct-v1:0 --prompt \"Explain DNS.\" --max-tokens 400\n" +
			"  bedrock-converse --model-id anthropic.claude-3-5-sonnet-20241022-v2:0 --prompt \"Stream this reply.\" --stream\n" +
			"  bedrock-converse --doctor",
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return state.load(opts.Config, cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if converse.Doctor {
				return runDoctor(cmd, state)
			}
			return runConverse(cmd, state, converse)
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	persistent := root.PersistentFlags()
	persistent.StringVar(&opts.Config, "config", "", "config file (default: ./bedrock-converse.yaml)")
	persistent.StringVar(&opts.Region, "region", "", "AWS region, e.g. us-east-1 (default: SDK configuration)")
	persistent.StringVar(&opts.Profile, "profile", "", "AWS shared config profile")
	persistent.BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging on stderr")
	_ = state.viper.BindPFlag("aws.region", persistent.Lookup("region"))
	_ = state.viper.BindPFlag("aws.profile", persistent.Lookup("profile"))
	_ = state.viper.BindPFlag("log.verbose", persistent.Lookup("verbose"))

	flags := root.Flags()
	flags.StringVar(&converse.ModelID, "model-id", "", "e.g. anthropic.claude-3-5-sonnet-20241022-v2:0")
	flags.StringVar(&converse.Prompt, "prompt", "", "user prompt text")
	flags.StringVarP(&converse.PromptFile, "prompt-file", "F", "", "read the prompt from a file, use -F- for stdin")
	flags.StringVar(&converse.System, "system", "", "system prompt")
	flags.Int("max-tokens", config.DefaultMaxTokens, "maximum tokens to generate")
	flags.Float64("temperature", config.DefaultTemperature, "sampling temperature")
	flags.Float64("top-p", config.DefaultTopP, "nucleus sampling probability")
	flags.BoolVar(&converse.Stream, "stream", false, "use streaming output")
	flags.BoolVar(&converse.Doctor, "doctor", false, "run environment checks")
	_ = state.viper.BindPFlag("model_id", flags.Lookup("model-id"))
	_ = state.viper.BindPFlag("inference.max_tokens", flags.Lookup("max-tokens"))
	_ = state.viper.BindPFlag("inference.temperature", flags.Lookup("temperature"))
	_ = state.viper.BindPFlag("inference.top_p", flags.Lookup("top-p"))
	_ = state.viper.BindEnv("doctor.model_id", "BEDROCK_MODEL_ID")

	root.AddCommand(newModelsCmd(state))
	root.AddCommand(newVersionCmd())
	return root
}

func (a *app) load(configFile string, cmd *cobra.Command) error {
	if err := initConfig(a.viper, configFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.viper)
	if err != nil {
		return usageErrorf("%v", err)
	}
	a.cfg = cfg

	if _, err := observability.InitLogger(cfg.LogLevel(), cmd.ErrOrStderr()); err != nil {
		return err
	}
	if used := a.viper.ConfigFileUsed(); used != "" {
		observability.FromContext(cmd.Context()).Debug("loaded config file", zap.String("path", used))
	}
	return nil
}

func initConfig(v *viper.Viper, configFile string) error {
	_ = godotenv.Load(".env")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(appName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/" + appName)
	}

	config.SetDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}
