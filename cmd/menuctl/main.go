// Command menuctl manages users without going through the HTTP API.
//
//	menuctl [-config path] create-user -username alice [-role admin]
//	menuctl [-config path] list-users
//
// The password is prompted for without echo, or read as one line from a pipe.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/domain/models"
	ur "github.com/SoundFoodPhygital/menu-server-demo/internal/menus/repository/userrepo/postgres"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/services/authservice"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/pkg/config"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/pkg/pgtools"
	"github.com/joho/godotenv"
)

func main() {
	var configPath string

	flag.StringVar(&configPath, "config", "configs/config.yaml", "path to configuration file")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2) //nolint:gomnd
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal(err)
	}

	cfg, err := config.New(configPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := run(ctx, cfg, flag.Arg(0), flag.Args()[1:]); err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(),
		"usage: %s [-config path] create-user -username NAME [-role user|manager|admin]\n"+
			"       %s [-config path] list-users\n", os.Args[0], os.Args[0])
	flag.PrintDefaults()
}

func run(ctx context.Context, cfg config.Config, cmd string, args []string) error {
	db, err := pgtools.Connect(ctx, cfg.PostgresDB.ConnString())
	if err != nil {
		return fmt.Errorf("postgres initializing error: %w", err)
	}
	defer db.Close()

	repo := ur.New(db)

	switch cmd {
	case "create-user":
		return createUser(ctx, repo, cfg.Auth, args)
	case "list-users":
		return listUsers(ctx, repo)
	default:
		usage()

		return fmt.Errorf("unknown command %q", cmd)
	}
}

func createUser(ctx context.Context, repo ur.UsersPostgresRepo, cfg config.Auth, args []string) error {
	set := flag.NewFlagSet("create-user", flag.ContinueOnError)
	username := set.String("username", "", "user name")
	role := set.String("role", string(models.RoleUser), "user, manager or admin")

	if err := set.Parse(args); err != nil {
		return fmt.Errorf("parse flags error: %w", err)
	}

	r, err := models.ParseRole(*role)
	if err != nil {
		return err //nolint:wrapcheck
	}

	password, err := promptPassword(int(os.Stdin.Fd()), os.Stdin, os.Stderr)
	if err != nil {
		return err
	}

	// revocation is never touched when creating users
	as := authservice.New(repo, nil, cfg)

	id, err := as.CreateUser(ctx, *username, password, r)
	if err != nil {
		return fmt.Errorf("create user error: %w", err)
	}

	fmt.Printf("created %s %q with id %d\n", r, *username, id) //nolint:forbidigo

	return nil
}

func listUsers(ctx context.Context, repo ur.UsersPostgresRepo) error {
	users, err := repo.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users error: %w", err)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0) //nolint:gomnd
	fmt.Fprintln(tw, "ID\tUSERNAME\tROLE\tCREATED")

	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.Role, u.CreatedAt.Format(time.DateTime))
	}

	return tw.Flush() //nolint:wrapcheck
}
