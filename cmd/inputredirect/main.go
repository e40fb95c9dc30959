package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Alia5/InputRedirect/internal/config"
	"github.com/Alia5/InputRedirect/internal/configpaths"
	"github.com/Alia5/InputRedirect/internal/log"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
)

func main() {
	userCfg := findUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	var cli config.CLI
	ctx := kong.Parse(&cli,
		kong.Name("inputredirect"),
		kong.Description("Redirect a PC game controller to a 3DS running InputRedirection"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		// flags and env win over files; files are tried in priority order
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log.Level, cli.Log.File)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	rawLogger, rawFile := openRawLogger(cli.Log, os.Stdout, logger)
	if rawFile != nil {
		closeFiles = append(closeFiles, rawFile)
	}

	ctx.Bind(logger)
	ctx.BindTo(rawLogger, (*log.RawLogger)(nil))

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

// openRawLogger picks the frame dump destination: the raw log file if set,
// stdout at trace level, nowhere otherwise. The returned closer may be nil.
func openRawLogger(opts config.LogConfig, stdout io.Writer, logger *slog.Logger) (log.RawLogger, io.Closer) {
	if opts.RawFile != "" {
		f, err := os.OpenFile(opts.RawFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Error("Failed to open raw log file, frame dump disabled", "file", opts.RawFile, "error", err)
			return log.NewRaw(nil), nil
		}
		return log.NewRaw(f), f
	}
	if log.ParseLevel(opts.Level) == log.LevelTrace {
		return log.NewRaw(stdout), nil
	}
	return log.NewRaw(nil), nil
}

func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("INPUTREDIRECT_CONFIG")
}
