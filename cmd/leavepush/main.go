package main

import (
	"fmt"
	"os"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
)

var (
	app     = kingpin.New("leavepush", "Web Push relay for leave request notifications")
	envFile = app.Flag("env-file", "Optional dotenv file loaded before reading the environment").Default(".env").String()

	serveCmd = app.Command("serve", "Run the HTTP server").Default()

	vapidKeysCmd = app.Command("vapid-keys", "Generate a VAPID key pair")

	seedUsersCmd  = app.Command("seed-users", "Write the users table if it does not exist yet")
	seedUsersFile = seedUsersCmd.Flag("file", "YAML seed file; the built-in users are used when empty").String()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))
	loadDotEnv(*envFile)

	var err error
	switch command {
	case serveCmd.FullCommand():
		err = runServe()
	case vapidKeysCmd.FullCommand():
		err = runVAPIDKeys()
	case seedUsersCmd.FullCommand():
		err = runSeedUsers(*seedUsersFile)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "leavepush: %v\n", err)
		os.Exit(1)
	}
}

// loadDotEnv never overrides variables already present in the environment.
func loadDotEnv(path string) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		fmt.Fprintf(os.Stderr, "leavepush: failed to load %s: %v\n", path, err)
	}
}

func runVAPIDKeys() error {
	privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		return fmt.Errorf("generate VAPID keys: %w", err)
	}
	fmt.Printf("LEAVEPUSH_VAPID_PUBLIC_KEY=%s\n", publicKey)
	fmt.Printf("LEAVEPUSH_VAPID_PRIVATE_KEY=%s\n", privateKey)
	return nil
}
