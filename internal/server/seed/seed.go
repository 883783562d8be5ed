// Package seed creates the initial superuser account.
package seed

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/flagx"
	"golang.org/x/term"
)

const DefaultIdentity = "admin@example.com"

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var errEmptyPassword = errors.New("password must not be empty")

// ErrNoDatabase is returned when no database DSN is configured. The
// in-memory store is private to the server process.
var ErrNoDatabase = errors.New("seed requires a database DSN; for the in-memory store set SuperuserIdentity and SuperuserPassword in the server config")

// SuperuserCreator is satisfied by services.Authenticator.
type SuperuserCreator interface {
	EnsureSuperuser(ctx context.Context, identity, password string) (bool, error)
}

// Options are the seed command line settings. DatabaseDSN is taken from the
// server configuration.
type Options struct {
	Identity    string
	Password    string
	DatabaseDSN string
}

// Validate rejects options seed cannot act on.
func (o Options) Validate() error {
	if o.DatabaseDSN == "" {
		return ErrNoDatabase
	}
	if o.Identity == "" {
		return errors.New("identity must not be empty")
	}
	return nil
}

// ParseFlags reads -u (identity) and -p (password) from args, ignoring the
// server configuration flags that may share the command line.
func ParseFlags(args []string) (Options, error) {
	opts := Options{Identity: DefaultIdentity}

	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.Identity, "u", opts.Identity, "superuser identity")
	fs.StringVar(&opts.Password, "p", "", "superuser password, prompted for when empty")

	if err := fs.Parse(flagx.FilterArgs(args, []string{"-u", "-p"})); err != nil {
		return Options{}, err
	}
	opts.Identity = strings.TrimSpace(opts.Identity)
	return opts, nil
}

// Run creates the superuser described by opts. An empty password is read
// from the terminal without echo.
func Run(ctx context.Context, c SuperuserCreator, opts Options, w io.Writer) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	password := opts.Password
	if password == "" {
		if _, err := fmt.Fprintf(w, "Enter password for %s\n> ", opts.Identity); err != nil {
			return err
		}
		b, err := readPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		password = string(b)
	}
	if password == "" {
		return errEmptyPassword
	}

	created, err := c.EnsureSuperuser(ctx, opts.Identity, password)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(w, "superuser %s created\n", opts.Identity)
	} else {
		fmt.Fprintf(w, "account %s already exists\n", opts.Identity)
	}
	return nil
}
