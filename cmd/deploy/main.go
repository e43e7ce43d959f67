// deploy - Platform entry point for hosted deployments
// Usage: deploy [install]
//
//	install  download modules and build the server binary
//	(none)   run the server bound to $PORT
package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

const (
	defaultPort = "8501"
	serverPkg   = "./cmd/server"
)

var serverBinary = filepath.Join("bin", "server")

func main() {
	var err error
	if len(os.Args) > 1 && os.Args[1] == "install" {
		err = install()
	} else {
		err = serve()
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		os.Exit(exitErr.ExitCode())
	default:
		fmt.Fprintf(os.Stderr, "deploy: %v\n", err)
		os.Exit(1)
	}
}

// install fetches dependencies and builds the server binary.
func install() error {
	if err := runCommand("go", "mod", "download"); err != nil {
		return err
	}
	return runCommand("go", "build", "-o", serverBinary, serverPkg)
}

// serve starts the server for a headless container.
func serve() error {
	return runCommand(serverBinary, serverArgs(os.Getenv("PORT"))...)
}

// serverArgs are the flags the hosted server runs with.
func serverArgs(port string) []string {
	if port == "" {
		port = defaultPort
	}
	return []string{
		"--port", port,
		"--address", "0.0.0.0",
		"--headless=true",
		"--cors=false",
		"--xsrf=false",
	}
}

func runCommand(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	return cmd.Run()
}
