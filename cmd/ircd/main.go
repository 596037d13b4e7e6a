// Command ircd starts the IRC server.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"ircd/internal/config"
	"ircd/internal/ircnet"
	"ircd/internal/server"
)

// Process startup and argument parsing are out of scope for the core
// (§1): this is the "trivial" glue the core asks an external caller to
// supply — positional argv only, no environment inputs (§6).
func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "ircd:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: ircd <port> <password> [tuning-file]")
	}

	port, err := strconv.Atoi(args[0])
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port %q", args[0])
	}
	password := args[1]
	if password == "" {
		return fmt.Errorf("password must not be empty")
	}

	var tuningPath string
	if len(args) >= 3 {
		tuningPath = args[2]
	}
	tuning, err := config.LoadTuning(tuningPath)
	if err != nil {
		return err
	}

	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}
	identity := config.Identity{Port: port, Password: password, Host: host}

	logger := server.NewLogger()

	sock, err := ircnet.Listen(port)
	if err != nil {
		return err
	}

	srv := server.New(identity, tuning, logger)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGQUIT)
	go func() {
		<-sigs
		logger.Info().Msg("termination signal received, shutting down")
		srv.Shutdown()
	}()

	logger.Info().Int("port", port).Str("host", host).Msg("ircd listening")
	return srv.Serve(sock)
}
