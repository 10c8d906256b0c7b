package version

// Version is overridden at build time with -ldflags "-X bedrock-converse/internal/version.Version=...".
var Version = "dev"
