// Command ops bundles the operational chores that run outside the
// server process: applying the schema and sweeping expired auth rows.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"planner/internal/auth"
	"planner/internal/config"
	"planner/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "migrate":
		if err := cmdMigrate(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "migrate failed:", err)
			os.Exit(1)
		}
	case "purge":
		if err := cmdPurge(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "purge failed:", err)
			os.Exit(1)
		}
	case "ping":
		if err := cmdPing(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "ping failed:", err)
			os.Exit(1)
		}
	default:
		printUsage()
		os.Exit(2)
	}
}

func openStore(dsnFlag string) (*store.Store, error) {
	dsn := dsnFlag
	if dsn == "" {
		cfg, err := config.LoadOrDefault("planner_config.yml")
		if err != nil {
			return nil, err
		}
		dsn = config.FromEnv(cfg).Database.DSN
	}
	if dsn == "" {
		return nil, fmt.Errorf("no database DSN: pass -dsn or set database.dsn")
	}
	return store.Open(dsn, log.Default())
}

func cmdMigrate(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	dsn := fs.String("dsn", "", "postgres DSN (defaults to config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := openStore(*dsn)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(); err != nil {
		return err
	}
	fmt.Println("schema up to date")
	return nil
}

func cmdPurge(args []string) error {
	fs := flag.NewFlagSet("purge", flag.ContinueOnError)
	dsn := fs.String("dsn", "", "postgres DSN (defaults to config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := openStore(*dsn)
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := auth.NewPGRepo(st.DB).PurgeExpired(context.Background(), time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("purged %d expired auth rows\n", n)
	return nil
}

func cmdPing(args []string) error {
	fs := flag.NewFlagSet("ping", flag.ContinueOnError)
	dsn := fs.String("dsn", "", "postgres DSN (defaults to config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := openStore(*dsn)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := st.Ping(ctx); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: ops <command> [flags]

commands:
  migrate   apply the database schema
  purge     delete expired login tokens and sessions
  ping      check database connectivity`)
}
