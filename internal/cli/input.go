package cli

import (
	"io"
	"os"
	"strings"
)

// readPrompt resolves the prompt from --prompt or --prompt-file, where "-"
// means stdin. An empty result is reported by the caller as missing.
func readPrompt(prompt, promptFile string, stdin io.Reader) (string, error) {
	if promptFile != "" && prompt != "" {
		return "", usageErrorf("--prompt and --prompt-file are mutually exclusive")
	}
	if promptFile == "" {
		return prompt, nil
	}
	if promptFile == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", usageErrorf("read stdin: %w", err)
		}
		return trimTrailingNewline(string(data)), nil
	}
	data, err := os.ReadFile(promptFile)
	if err != nil {
		return "", usageErrorf("read prompt file: %w", err)
	}
	return trimTrailingNewline(string(data)), nil
}

func trimTrailingNewline(value string) string {
	return strings.TrimRight(value, "\r\n")
}
