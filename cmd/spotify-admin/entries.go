package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/target/spotify-auth/internal/configstore"
)

type configSetOptions struct {
	Scope string
	ID    string
	Value string
}

func runConfigList(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("config-list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var scope string
	fs.StringVar(&scope, "scope", "", "Only list entries of this scope (config or secrets)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withServices(cmdCtx, func(svc *appServices) error {
		tw := newTable(cmdCtx.Out)
		if err := writef(tw, "SCOPE\tID\tVALUE\tPROBLEM\n"); err != nil {
			return err
		}
		for _, e := range svc.Host.Registry().Entries() {
			if scope != "" && string(e.Scope()) != scope {
				continue
			}
			view, err := e.View(cmdCtx.Ctx)
			if err != nil {
				return err
			}
			if err := writef(tw, "%s\t%s\t%s\t%s\n", view.Scope, view.ID, displayValue(view), view.Problem); err != nil {
				return err
			}
		}
		return tw.Flush()
	})
}

func displayValue(v configstore.View) string {
	switch {
	case v.UI == configstore.UIKindPassword && v.Set:
		return "********"
	case !v.Set:
		return "-"
	default:
		return v.Value
	}
}

func parseConfigSetFlags(args []string) (configSetOptions, error) {
	var opts configSetOptions
	fs := flag.NewFlagSet("config-set", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.StringVar(&opts.Scope, "scope", string(configstore.ScopeConfig), "Scope of the entry (config or secrets)")
	fs.StringVar(&opts.ID, "id", "", "ID of the entry, e.g. auth.port")
	fs.StringVar(&opts.Value, "value", "", "Stored form of the new value")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.Scope = strings.TrimSpace(opts.Scope)
	opts.ID = strings.TrimSpace(opts.ID)
	if opts.ID == "" {
		return opts, errors.New("--id is required")
	}
	return opts, nil
}

func runConfigSet(cmdCtx *commandContext, args []string) error {
	opts, err := parseConfigSetFlags(args)
	if err != nil {
		return err
	}

	return withServices(cmdCtx, func(svc *appServices) error {
		entry, ok := svc.Host.Registry().Find(configstore.Scope(opts.Scope), opts.ID)
		if !ok {
			return fmt.Errorf("unknown entry %s/%s", opts.Scope, opts.ID)
		}
		if err := entry.SetRaw(cmdCtx.Ctx, opts.Value); err != nil {
			return err
		}
		view, err := entry.View(cmdCtx.Ctx)
		if err != nil {
			return err
		}
		if err := writef(cmdCtx.Out, "%s/%s = %s\n", view.Scope, view.ID, displayValue(view)); err != nil {
			return err
		}
		if view.Problem != "" {
			return writef(cmdCtx.Out, "Problem: %s\n", view.Problem)
		}
		return nil
	})
}
