package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	domainauth "github.com/target/spotify-auth/internal/domain/auth"
	"github.com/target/spotify-auth/internal/domain/playback"
)

const timeLayout = "2006-01-02 15:04:05 MST"

type tokenOptions struct {
	Stored bool
}

type clearTokenOptions struct {
	Yes bool
}

func interruptible(cmdCtx *commandContext) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
}

func runStatus(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withServices(cmdCtx, func(svc *appServices) error {
		ctx := cmdCtx.Ctx
		tok, err := svc.Auth.Current(ctx)
		if err != nil {
			return err
		}
		device, selected, err := svc.Playback.Device.Get(ctx)
		if err != nil {
			return err
		}
		market, err := svc.Provider.MarketCode(ctx)
		if err != nil {
			return err
		}

		tw := newTable(cmdCtx.Out)
		if err := writef(tw, "Token:\t%s\n", describeToken(tok, time.Now(), svc.Auth.ExpiryMargin())); err != nil {
			return err
		}
		if err := writef(tw, "Device:\t%s\n", describeDevice(device, selected)); err != nil {
			return err
		}
		if err := writef(tw, "Market:\t%s\n", market); err != nil {
			return err
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		for _, e := range svc.Host.Registry().Entries() {
			view, err := e.View(ctx)
			if err != nil {
				return err
			}
			if view.Problem == "" {
				continue
			}
			if err := writef(cmdCtx.Out, "Problem: %s/%s: %s\n", view.Scope, view.ID, view.Problem); err != nil {
				return err
			}
		}
		return nil
	})
}

func describeToken(tok *domainauth.Token, now time.Time, margin time.Duration) string {
	switch {
	case tok == nil:
		return "none"
	case tok.IsExpired(now):
		return "expired at " + tok.Expiration.Local().Format(timeLayout)
	case tok.ExpiresWithin(now, margin):
		return "expiring at " + tok.Expiration.Local().Format(timeLayout)
	default:
		left := tok.Expiration.Sub(now).Round(time.Minute)
		return "valid until " + tok.Expiration.Local().Format(timeLayout) + " (in " + left.String() + ")"
	}
}

func describeDevice(d playback.DeviceRef, selected bool) string {
	if !selected {
		return "none"
	}
	return d.Name + " (" + d.ID + ")"
}

func parseTokenFlags(args []string) (tokenOptions, error) {
	var opts tokenOptions
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.BoolVar(&opts.Stored, "stored", false, "Print the stored token without authorizing; fails when it is missing or expiring")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

func runToken(cmdCtx *commandContext, args []string) error {
	opts, err := parseTokenFlags(args)
	if err != nil {
		return err
	}

	return withServices(cmdCtx, func(svc *appServices) error {
		if opts.Stored {
			tok, err := svc.Auth.Current(cmdCtx.Ctx)
			if err != nil {
				return err
			}
			if tok == nil || !tok.Valid(time.Now(), svc.Auth.ExpiryMargin()) {
				return errors.New("no valid token stored; run refresh")
			}
			return writeln(cmdCtx.Out, tok.Value)
		}

		ctx, stop := interruptible(cmdCtx)
		defer stop()
		value, err := svc.Auth.Token(ctx)
		if err != nil {
			return err
		}
		return writeln(cmdCtx.Out, value)
	})
}

func runRefresh(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("refresh", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withServices(cmdCtx, func(svc *appServices) error {
		ctx, stop := interruptible(cmdCtx)
		defer stop()
		tok, err := svc.Auth.Refresh(ctx)
		if err != nil {
			return err
		}
		return writef(cmdCtx.Out, "Authorized; token valid until %s\n", tok.Expiration.Local().Format(timeLayout))
	})
}

func parseClearTokenFlags(args []string) (clearTokenOptions, error) {
	var opts clearTokenOptions
	fs := flag.NewFlagSet("clear-token", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.BoolVar(&opts.Yes, "yes", false, "Skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

func runClearToken(cmdCtx *commandContext, args []string) error {
	opts, err := parseClearTokenFlags(args)
	if err != nil {
		return err
	}

	if !opts.Yes {
		ok, err := confirmAction(cmdCtx, "The stored access token will be removed; the next request opens the browser.")
		if err != nil {
			return err
		}
		if !ok {
			return writeln(cmdCtx.Out, "Aborted.")
		}
	}

	return withServices(cmdCtx, func(svc *appServices) error {
		if err := svc.Auth.Clear(cmdCtx.Ctx); err != nil {
			return err
		}
		return writeln(cmdCtx.Out, "Token cleared.")
	})
}
