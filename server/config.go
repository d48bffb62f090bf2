package main

import (
	"errors"
	"flag"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Options holds the server settings. Flags win over environment variables,
// which in turn may come from a .env file.
type Options struct {
	Addr      string
	ClientDir string
	DBPath    string
	PublicURL string
	JWTSecret string
}

// loadDotEnv reads .env from the working directory if present. Variables
// already set in the environment are kept.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// parseOptions registers the server flags on flags and parses args
func parseOptions(flags *flag.FlagSet, args []string, getenv func(string) string) (Options, error) {
	env := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	var o Options
	flags.StringVar(&o.Addr, "addr", env("AIRHOCKEY_ADDR", ":8080"), "HTTP listen address")
	flags.StringVar(&o.ClientDir, "client", env("AIRHOCKEY_CLIENT", ""), "Path to client directory (default: ../client)")
	flags.StringVar(&o.DBPath, "db", env("AIRHOCKEY_DB", "airhockey.db"), "SQLite database path, empty to run without storage")
	flags.StringVar(&o.PublicURL, "public-url", env("AIRHOCKEY_PUBLIC_URL", ""), "Base URL encoded in controller QR codes (default: request host)")
	if err := flags.Parse(args); err != nil {
		return Options{}, err
	}
	o.JWTSecret = getenv("AIRHOCKEY_JWT_SECRET")

	if o.ClientDir == "" {
		exe, _ := os.Executable()
		o.ClientDir = filepath.Join(filepath.Dir(exe), "..", "client")
		// Fallback for development
		if _, err := os.Stat(o.ClientDir); os.IsNotExist(err) {
			o.ClientDir = "../client"
		}
	}
	return o, nil
}
