// Command contacts-admin performs operator tasks directly against the
// contacts database. It reads the same environment as the service.
//
//	contacts-admin bootstrap -email root@example.com -username root [-generate]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/aussiebroadwan/contacts/internal/contacts/app"
	"github.com/aussiebroadwan/contacts/internal/contacts/domain"
	"github.com/aussiebroadwan/contacts/internal/contacts/service"
	"github.com/aussiebroadwan/contacts/pkg/cryptox"
)

const usage = `usage: contacts-admin <command> [flags]

commands:
  bootstrap   create the first admin account on an empty database
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "contacts-admin:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("missing command")
	}

	switch args[0] {
	case "bootstrap":
		return bootstrap(ctx, args[1:], stdout, stderr)
	case "-h", "--help", "help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func bootstrap(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("bootstrap", flag.ContinueOnError)
	fs.SetOutput(stderr)
	email := fs.String("email", "", "admin email address")
	username := fs.String("username", "admin", "admin username")
	generate := fs.Bool("generate", false, "generate a password and print it instead of prompting")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("-email is required")
	}

	var password string
	if *generate {
		pw, err := cryptox.GeneratePassword()
		if err != nil {
			return err
		}
		password = pw
	} else {
		pw, err := promptNewPassword(stderr)
		if err != nil {
			return err
		}
		password = pw
	}

	cfg := app.LoadConfig()
	cryptox.SetPepperPath(cfg.PepperFile)

	db, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	// Shell access to the database stands in for the bootstrap token; the
	// empty-table rule still applies.
	token, err := cryptox.NewOpaqueToken()
	if err != nil {
		return err
	}
	svc := &service.BootstrapService{Store: db, Token: token}

	id, err := svc.Bootstrap(ctx, token, domain.BootstrapData{
		Email:    *email,
		Username: *username,
		Password: password,
	})
	if err != nil {
		if errors.Is(err, service.ErrBootstrapAlready) {
			return errors.New("the database already has accounts")
		}
		return err
	}

	fmt.Fprintf(stdout, "created admin %s (%s)\n", *email, id)
	if *generate {
		fmt.Fprintf(stdout, "password: %s\n", password)
	}
	return nil
}
