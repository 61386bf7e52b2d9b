package main

import (
	"FileContents/internal"
	"FileContents/internal/pipeline"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "filecontents",
		Usage: "Fail a pipeline run when files are empty or miss required lines",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML file with the stage properties (sourceFilePath, fileRegex, fileContentsRegex, failOnEmptyFile)",
			},
			&cli.StringFlag{
				Name:  "source-path",
				Usage: "File, directory or glob to check, e.g. /data/in/*.dat or archive:/data/in.zip!/logs",
			},
			&cli.StringFlag{
				Name:  "file-regex",
				Usage: "Only check files whose whole base name matches this regex (ignored for a single file)",
			},
			&cli.StringFlag{
				Name:  "contents-regex",
				Usage: "Patterns separated by '~'; each must fully match at least one line of every file",
			},
			&cli.BoolFlag{
				Name:  "fail-on-empty",
				Usage: "Fail when a checked file is empty (in the config file it may also be a ${name} macro)",
			},
			&cli.StringSliceFlag{
				Name:  "arg",
				Usage: "Runtime argument name=value used to expand ${name} macros (repeatable)",
			},
			&cli.StringFlag{
				Name:  "logfile",
				Usage: "Write logs into file instead of stdout",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
				Value: "info",
			},
		},
		Action: func(c *cli.Context) error {
			log := internal.NewLogger(c.String("logfile"), c.String("log-level"))

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			overrides := map[string]interface{}{}
			for flag, field := range map[string]string{
				"source-path":    internal.FieldSourcePath,
				"file-regex":     internal.FieldFileRegex,
				"contents-regex": internal.FieldFileContentsRegex,
			} {
				if c.IsSet(flag) {
					overrides[field] = c.String(flag)
				}
			}
			if c.IsSet("fail-on-empty") {
				overrides[internal.FieldFailOnEmptyFile] = strconv.FormatBool(c.Bool("fail-on-empty"))
			}

			cfg, err := internal.LoadConfig(c.String("config"), overrides)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			args, err := parseArguments(c.StringSlice("arg"))
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			var stats internal.RunStats
			action := internal.NewFileContentsAction(cfg,
				internal.WithLogger(log),
				internal.WithArguments(args),
				internal.WithStats(&stats),
			)
			if err := pipeline.Run(ctx, log, action); err != nil {
				for _, ce := range internal.ConfigErrors(err) {
					log.WithField("property", ce.Field).Error(ce.Error())
				}
				return cli.Exit(err.Error(), 1)
			}

			fmt.Printf("\n======= Check finished in %s =======\nFiles checked: %d\nEmpty files: %d\n",
				stats.Elapsed(), stats.Checked.Load(), stats.Empty.Load())
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func parseArguments(pairs []string) (map[string]string, error) {
	args := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --arg %q, expected name=value", p)
		}
		args[name] = value
	}
	return args, nil
}
