// Command focoshopctl runs operator tasks against the FocoShop database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/focoshop/focoshop-be/internal/admin"
	"github.com/focoshop/focoshop-be/internal/auth"
	"github.com/focoshop/focoshop-be/internal/config"
	"github.com/focoshop/focoshop-be/internal/database"
	"github.com/focoshop/focoshop-be/internal/logger"
	"github.com/focoshop/focoshop-be/internal/services"
	"github.com/focoshop/focoshop-be/internal/store"
	"github.com/rs/zerolog/log"
)

const usage = `usage: focoshopctl <command> [flags]

commands:
  create-admin -email EMAIL -nombre NOMBRE [-apellido APELLIDO]
  rehash-passwords
`

var errUsage = errors.New("invalid usage")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		log.Fatal().Err(err).Msg("focoshopctl failed")
	}
}

type createAdminArgs struct {
	email    string
	nombre   string
	apellido string
}

func parseCreateAdmin(args []string, stderr io.Writer) (createAdminArgs, error) {
	var a createAdminArgs
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&a.email, "email", "", "admin email (required)")
	fs.StringVar(&a.nombre, "nombre", "", "admin first name (required)")
	fs.StringVar(&a.apellido, "apellido", "", "admin last name")
	if err := fs.Parse(args); err != nil {
		return a, fmt.Errorf("%w: %v", errUsage, err)
	}
	if a.email == "" || a.nombre == "" {
		return a, fmt.Errorf("%w: -email and -nombre are required", errUsage)
	}
	return a, nil
}

func run(ctx context.Context, args []string, stdin *os.File, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	var createArgs createAdminArgs
	switch args[0] {
	case "create-admin":
		parsed, err := parseCreateAdmin(args[1:], os.Stderr)
		if err != nil {
			return err
		}
		createArgs = parsed
	case "rehash-passwords":
		if len(args) > 1 {
			return fmt.Errorf("%w: rehash-passwords takes no arguments", errUsage)
		}
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel, cfg.IsProduction())

	a, closeDB, err := setup(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	switch args[0] {
	case "create-admin":
		password, err := admin.PromptPassword(stdin, stdout)
		if err != nil {
			return err
		}
		in := services.RegisterInput{Nombre: createArgs.nombre, Email: createArgs.email, Password: password}
		if createArgs.apellido != "" {
			in.Apellido = &createArgs.apellido
		}
		u, err := a.CreateAdmin(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "created admin %s (id %d)\n", u.Email, u.ID)
	case "rehash-passwords":
		updated, skipped, err := a.RehashPasswords(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "rehashed %d password(s), skipped %d\n", updated, skipped)
	}
	return nil
}

func setup(cfg *config.Config) (*admin.Admin, func(), error) {
	if err := database.Migrate(cfg.Database); err != nil {
		return nil, nil, err
	}
	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	hasher, err := auth.NewHasher(cfg.JWT.BcryptCost)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	users := store.NewUserStore(db)
	svc := services.NewUserService(users, hasher, nil)
	return admin.New(svc, users, hasher), func() { db.Close() }, nil
}
