package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/wippyai/foreign/abi/ppc64/sysv"
	"github.com/wippyai/foreign/config"
	"github.com/wippyai/foreign/scope"
)

var (
	verboseFlag = &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Log scope and builder activity to stderr",
	}
	fileFlag = &cli.StringFlag{
		Name:    "file",
		Aliases: []string{"f"},
		Usage:   "Call file (YAML) describing the arguments",
	}
	argFlag = &cli.StringSliceFlag{
		Name:    "arg",
		Aliases: []string{"a"},
		Usage:   "Argument as type=value, hex for aggregates (repeatable)",
	}
	backendFlag = &cli.StringFlag{
		Name:  "backend",
		Usage: "Memory backend: arena, native or wasm",
	}
	arenaFlag = &cli.StringFlag{
		Name:  "arena",
		Usage: "Memory size, e.g. 64KiB",
	}
)

func main() {
	app := &cli.App{
		Name:  "vadump",
		Usage: "build and inspect ppc64le SysV variadic argument lists",
		Flags: []cli.Flag{verboseFlag},
		Before: func(cliCtx *cli.Context) error {
			if !cliCtx.Bool(verboseFlag.Name) {
				return nil
			}
			log, err := zap.NewDevelopment()
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			scope.SetLogger(log.Named("scope"))
			sysv.SetLogger(log.Named("sysv"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "classify",
				Usage:     "show the argument class of each type",
				ArgsUsage: "<type>...",
				Action:    classify,
			},
			{
				Name:   "build",
				Usage:  "build a list and dump its slots",
				Flags:  []cli.Flag{fileFlag, argFlag, backendFlag, arenaFlag},
				Action: build,
			},
			{
				Name:   "interactive",
				Usage:  "compose a list in a terminal UI",
				Flags:  []cli.Flag{backendFlag, arenaFlag},
				Action: interactive,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func classify(cliCtx *cli.Context) error {
	types := cliCtx.Args().Slice()
	if len(types) == 0 {
		return fmt.Errorf("classify needs at least one type")
	}
	rows := make([]classRow, 0, len(types))
	for _, t := range types {
		row, err := classifyType(t)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	fmt.Print(newRenderer(os.Stdout).classTable(rows))
	return nil
}

// callFromFlags merges the call file with command line overrides.
func callFromFlags(cliCtx *cli.Context) (*config.CallFile, error) {
	cf := &config.CallFile{}
	if path := cliCtx.String(fileFlag.Name); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		cf = loaded
	}
	for _, s := range cliCtx.StringSlice(argFlag.Name) {
		arg, err := config.ParseArgFlag(s)
		if err != nil {
			return nil, err
		}
		cf.Args = append(cf.Args, arg)
	}
	if cliCtx.IsSet(backendFlag.Name) {
		cf.Backend = cliCtx.String(backendFlag.Name)
	}
	if cliCtx.IsSet(arenaFlag.Name) {
		cf.Arena = cliCtx.String(arenaFlag.Name)
	}
	if err := cf.Validate(); err != nil {
		return nil, err
	}
	return cf, nil
}

func build(cliCtx *cli.Context) error {
	cf, err := callFromFlags(cliCtx)
	if err != nil {
		return err
	}

	ctx := context.Background()
	size, _ := cf.ArenaSize()
	be, err := openBackend(ctx, cf.BackendName(), size)
	if err != nil {
		return err
	}
	defer be.Close()

	s := scope.New(be.mem, be.alloc)
	defer s.Close()

	d, err := buildDump(s, cf.Args)
	if err != nil {
		return err
	}
	d.name = cf.Name
	d.backend = be.name
	d.capacity = size

	fmt.Print(newRenderer(os.Stdout).dump(d))
	return nil
}

func interactive(cliCtx *cli.Context) error {
	cf, err := callFromFlags(cliCtx)
	if err != nil {
		return err
	}
	size, _ := cf.ArenaSize()
	return runInteractive(cf.BackendName(), size)
}
