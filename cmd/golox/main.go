package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/loxlang/golox/pkg/interpreter"
	"github.com/loxlang/golox/pkg/parser"
	"github.com/loxlang/golox/pkg/validator"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := &cli.Command{
		Name:  "golox",
		Usage: "The Lox interpreter",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Validate and execute a Lox script",
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 1 {
						return fmt.Errorf("must provide a lox file as argument")
					}

					source, err := os.ReadFile(c.Args().First())
					if err != nil {
						return fmt.Errorf("failed to read file: %w", err)
					}

					logger := slog.Default()

					prog, err := parser.Parse(string(source))
					if err != nil {
						return err
					}

					err = validator.Validate(prog)
					if err != nil {
						return err
					}

					interp, err := interpreter.New(logger, interpreter.Config{})
					if err != nil {
						return fmt.Errorf("failed to initialize interpreter: %w", err)
					}

					return interp.Execute(prog)
				},
			},
			{
				Name:  "check",
				Usage: "Validate a Lox script without executing it",
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 1 {
						return fmt.Errorf("must provide a lox file as argument")
					}

					source, err := os.ReadFile(c.Args().First())
					if err != nil {
						return fmt.Errorf("failed to read file: %w", err)
					}

					prog, err := parser.Parse(string(source))
					if err != nil {
						return err
					}

					return validator.Validate(prog)
				},
			},
			{
				Name:  "repl",
				Usage: "Evaluate statements interactively",
				Action: func(ctx context.Context, c *cli.Command) error {
					logger := slog.Default()

					interp, err := interpreter.New(logger, interpreter.Config{})
					if err != nil {
						return fmt.Errorf("failed to initialize interpreter: %w", err)
					}

					// Errors are reported per line; the session and its
					// environment survive them.
					scanner := bufio.NewScanner(os.Stdin)
					fmt.Print("> ")
					for scanner.Scan() {
						line := scanner.Text()
						if line != "" {
							err := runLine(interp, line)
							if err != nil {
								fmt.Fprintln(os.Stderr, err)
							}
						}

						fmt.Print("> ")
					}

					return scanner.Err()
				},
			},
		},
	}

	err := cmd.Run(ctx, os.Args)
	if err != nil {
		log.Fatalln(err)
	}
}

func runLine(interp *interpreter.Interpreter, line string) error {
	prog, err := parser.Parse(line)
	if err != nil {
		return err
	}

	err = validator.Validate(prog)
	if err != nil {
		return err
	}

	return interp.Execute(prog)
}
