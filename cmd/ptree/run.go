package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/dshills/piecetree/internal/script"
)

func runScript(e *env, args []string) error {
	var (
		out     string
		inPlace bool
		timeout time.Duration
	)
	fs, err := subcommand(e, "run", "[-o OUT] [-w] [-timeout D] SCRIPT FILE", 2, args, func(fs *flag.FlagSet) {
		fs.StringVar(&out, "o", "", "Write the result to `OUT` instead of stdout")
		fs.BoolVar(&inPlace, "w", false, "Write the result back to FILE")
		fs.DurationVar(&timeout, "timeout", script.DefaultTimeout, "Abort the script after this long")
	})
	if err != nil {
		return err
	}
	if out != "" && inPlace {
		fs.Usage()
		return errUsage
	}
	scriptPath, path := fs.Arg(0), fs.Arg(1)

	d, err := openDocument(e, path)
	if err != nil {
		return err
	}
	defer d.Close()

	L := script.NewState(d,
		script.WithOutput(e.stderr),
		script.WithLogger(e.log),
		script.WithTimeout(timeout),
	)
	defer L.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	start := time.Now()
	if err := L.RunFile(ctx, scriptPath); err != nil {
		return errors.Wrapf(err, "script %s", scriptPath)
	}
	e.log.Info("ran %s on %s in %v (revision %d)", scriptPath, path, time.Since(start), d.Revision())

	switch {
	case inPlace:
		if !d.Modified() {
			return nil
		}
		return d.SaveSource()
	case out != "":
		return d.SaveFile(out)
	default:
		_, err := d.Save(e.stdout)
		return err
	}
}
