package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dvhalloran/cartload/internal/config"
	"github.com/dvhalloran/cartload/internal/database"
	"github.com/dvhalloran/cartload/internal/model"
	"github.com/dvhalloran/cartload/internal/repository"
)

var composeFile string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "cartload: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "cartload",
		Short:        "cartload development CLI",
		Long:         "cartload CLI wraps the local Postgres/Redis stack, the api and worker binaries, tests, and seed data.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&composeFile, "compose-file", "f", "docker-compose.yml", "Compose file to use for stack commands")
	cmd.AddCommand(
		newUpCmd(),
		newDownCmd(),
		newLogsCmd(),
		newTestCmd(),
		newRunCmd("server"),
		newRunCmd("worker"),
		newSeedCmd(),
	)
	return cmd
}

func compose(ctx context.Context, args ...string) error {
	return runCommand(ctx, "docker", append([]string{"compose", "-f", composeFile}, args...)...)
}

func newUpCmd() *cobra.Command {
	var foreground bool
	cmd := &cobra.Command{
		Use:   "up [service...]",
		Short: "Build and start the docker-compose stack",
		RunE: func(cmd *cobra.Command, args []string) error {
			composeArgs := []string{"up", "--build"}
			if !foreground {
				composeArgs = append(composeArgs, "-d")
			}
			return compose(cmd.Context(), append(composeArgs, args...)...)
		},
	}
	cmd.Flags().BoolVar(&foreground, "foreground", false, "Stay attached instead of detaching")
	return cmd
}

func newDownCmd() *cobra.Command {
	var wipe bool
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Stop the docker-compose stack",
		RunE: func(cmd *cobra.Command, args []string) error {
			composeArgs := []string{"down"}
			if wipe {
				// Also drops the pgdata and uploads volumes.
				composeArgs = append(composeArgs, "-v")
			}
			return compose(cmd.Context(), composeArgs...)
		},
	}
	cmd.Flags().BoolVar(&wipe, "wipe", false, "Remove data volumes as well")
	return cmd
}

func newLogsCmd() *cobra.Command {
	var tail int
	cmd := &cobra.Command{
		Use:   "logs [service...]",
		Short: "Follow logs from docker-compose services",
		RunE: func(cmd *cobra.Command, args []string) error {
			composeArgs := []string{"logs", "-f", "--tail", strconv.Itoa(tail)}
			return compose(cmd.Context(), append(composeArgs, args...)...)
		},
	}
	cmd.Flags().IntVar(&tail, "tail", 100, "Number of lines to show from the end of each log")
	return cmd
}

func newTestCmd() *cobra.Command {
	var run string
	cmd := &cobra.Command{
		Use:   "test [packages]",
		Short: "Run Go tests with the race detector (defaults to ./...)",
		RunE: func(cmd *cobra.Command, args []string) error {
			goArgs := []string{"test", "-race"}
			if run != "" {
				goArgs = append(goArgs, "-run", run)
			}
			if len(args) == 0 {
				args = []string{"./..."}
			}
			return runCommand(cmd.Context(), "go", append(goArgs, args...)...)
		},
	}
	cmd.Flags().StringVar(&run, "run", "", "Regexp passed to go test -run")
	return cmd
}

func newRunCmd(service string) *cobra.Command {
	return &cobra.Command{
		Use:   service,
		Short: fmt.Sprintf("Run the %s binary directly (go run ./cmd/%s)", service, service),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd.Context(), "go", append([]string{"run", "./cmd/" + service}, args...)...)
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert a sample product catalog into the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			pool, err := database.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := database.EnsureSchema(ctx, pool); err != nil {
				return err
			}
			products := repository.NewProductRepository(pool)
			for _, p := range sampleProducts() {
				p := p
				err := products.CreateProduct(ctx, &p)
				if errors.Is(err, repository.ErrDuplicateProduct) {
					fmt.Printf("skip %s (already seeded)\n", p.Name)
					continue
				}
				if err != nil {
					return err
				}
				fmt.Printf("seeded %s (id %d)\n", p.Name, p.ID)
			}
			return nil
		},
	}
}

func sampleProducts() []model.Product {
	return []model.Product{
		{Name: "Claw Hammer", Description: "16oz steel claw hammer", Status: model.ProductActive, Category: "tools"},
		{Name: "Adjustable Wrench", Description: "8in chrome adjustable wrench", Status: model.ProductActive, Category: "tools"},
		{Name: "Cordless Drill", Description: "18V cordless drill with charger", Status: model.ProductActive, Category: "power-tools"},
		{Name: "Paint Roller Set", Description: "", Status: model.ProductInactive, Category: "painting"},
		{Name: "Safety Goggles", Description: "Anti-fog safety goggles", Status: model.ProductActive, Category: "safety"},
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	execCmd := exec.CommandContext(ctx, name, args...)
	execCmd.Stdout = os.Stdout
	execCmd.Stderr = os.Stderr
	execCmd.Stdin = os.Stdin
	return execCmd.Run()
}
