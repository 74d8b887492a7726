package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/andrews05/rleduce"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func main() {
	app := cli.NewApp()

	app.Name = "rleduce"
	app.Usage = "Optimize the size of rlëD and PICT resources in resource files"
	app.ArgsUsage = "FILE ..."
	app.Version = "1.0.0"
	app.HideHelpCommand = true

	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "picts",
			Aliases: []string{"p"},
			Usage:   "normalize PICTs by rewriting them in a standard format",
		},
		&cli.BoolFlag{
			Name:    "reduce",
			Aliases: []string{"r"},
			Usage:   "reduce PICT depth to 16-bit (smaller output)",
		},
		&cli.BoolFlag{
			Name:    "encode",
			Aliases: []string{"e"},
			Usage:   "encode rlëDs from spïns/shäns with PICTs",
		},
		&cli.BoolFlag{
			Name:    "no-dither",
			Aliases: []string{"n"},
			Usage:   "don't dither when reducing to 16-bit (applies to -r and -e)",
		},
		&cli.BoolFlag{
			Name:    "trim",
			Aliases: []string{"t"},
			Usage:   "allow rlëD frame height trimming (not recommended)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "set output file/directory",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "enable verbose output",
		},
	}

	app.Action = func(c *cli.Context) error {
		if c.NArg() < 1 {
			cli.ShowAppHelp(c)
			return cli.Exit("no files provided", 1)
		}

		outPath := c.String("output")
		outDir := false
		if outPath != "" {
			if isDirectory(outPath) {
				outDir = true
			} else if parent := filepath.Dir(outPath); !isDirectory(parent) {
				return cli.Exit(fmt.Sprintf("output directory %s does not exist", parent), 1)
			}
		}

		opts := rleduce.Options{
			Trim:    c.Bool("trim"),
			Picts:   c.Bool("picts") || c.Bool("reduce"),
			Reduce:  c.Bool("reduce"),
			Encode:  c.Bool("encode"),
			Dither:  !c.Bool("no-dither"),
			Verbose: c.Bool("verbose"),
		}
		o := rleduce.New(opts, log.New(os.Stdout, "", 0))

		for _, path := range c.Args().Slice() {
			out := outPath
			if outDir {
				out = filepath.Join(outPath, filepath.Base(path))
			}
			if _, err := o.ProcessFile(path, out); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", filepath.Base(path), err)
			}
		}
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
