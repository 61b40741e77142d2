// Command migrate manages the promptchan schema using the embedded migrations.
//
//	migrate [-dsn url] up|down|version
//	migrate [-dsn url] steps N
//	migrate [-dsn url] force VERSION
//
// Without -dsn the connection comes from config.toml and PROMPTCHAN_DB_*.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"

	"github.com/JaimeStill/promptchan/internal/config"
	"github.com/JaimeStill/promptchan/migrations"
)

func main() {
	dsn := flag.String("dsn", "", "postgres:// connection URL (overrides configuration)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal("env file load failed: ", err)
	}

	url := *dsn
	if url == "" {
		db, err := config.LoadDatabase()
		if err != nil {
			log.Fatal("database config: ", err)
		}
		url = db.URL()
	}

	m, err := migrations.New(url)
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	if err := run(m, flag.Arg(0), flag.Args()[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(m *migrate.Migrate, cmd string, args []string) error {
	switch cmd {
	case "up":
		return report(m.Up(), "schema up to date")
	case "down":
		return report(m.Down(), "schema reverted")
	case "steps":
		n, err := intArg(args)
		if err != nil {
			return err
		}
		return report(m.Steps(n), fmt.Sprintf("applied %d steps", n))
	case "force":
		v, err := intArg(args)
		if err != nil {
			return err
		}
		if err := m.Force(v); err != nil {
			return fmt.Errorf("force version %d: %w", v, err)
		}
		fmt.Printf("forced to version %d\n", v)
		return nil
	case "version":
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("no migrations applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		fmt.Printf("version %d (dirty: %t)\n", v, dirty)
		return nil
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func report(err error, done string) error {
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	fmt.Println(done)
	return nil
}

func intArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected one integer argument")
	}
	return strconv.Atoi(args[0])
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: migrate [-dsn url] up|down|version|steps N|force VERSION")
	flag.PrintDefaults()
}
