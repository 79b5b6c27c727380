// Command toppingctl manages pizza toppings against a running pizza backend.
//
// It builds the topping list from GET /api/pizzas and propagates renames and
// deletes with one PUT /api/pizzas/{id} per affected pizza.
package main

import (
	"fmt"
	"os"

	"github.com/franciscosanchezn/pizza-admin/internal/client"
	"github.com/franciscosanchezn/pizza-admin/internal/config"
	"github.com/franciscosanchezn/pizza-admin/internal/topping"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app carries the state shared by every subcommand
type app struct {
	// Global flags
	apiURL      string
	verbose     bool
	maxParallel int

	conf   *config.ClientConfig
	logger *logrus.Logger
	api    *client.Client
}

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "toppingctl",
		Short: "Manage the toppings used across all pizzas",
		Long: `toppingctl lists the distinct toppings of the pizza catalogue and renames or
deletes them everywhere at once.

Every pizza that references a topping is updated independently. When some
updates fail the successful ones are kept and the failed pizza IDs are reported.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "pizza backend URL (default $PIZZA_API_URL)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&a.maxParallel, "max-parallel", -1, "cap on concurrent pizza updates, 0 for no cap (default $TOPPING_MAX_PARALLEL)")

	rootCmd.AddCommand(
		a.newListCmd(),
		a.newRenameCmd(),
		a.newDeleteCmd(),
		a.newAddCmd(),
		a.newBasesCmd(),
	)
	return rootCmd
}

// init loads the client configuration and builds the logger and API client
func (a *app) init(cmd *cobra.Command) error {
	a.logger = logrus.New()
	a.logger.SetOutput(cmd.ErrOrStderr())
	a.logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	a.logger.SetLevel(logrus.WarnLevel)
	if a.verbose {
		a.logger.SetLevel(logrus.DebugLevel)
	}

	conf, err := config.LoadClientConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if a.apiURL != "" {
		conf.APIURL = a.apiURL
	}
	if a.maxParallel >= 0 {
		conf.MaxParallel = a.maxParallel
	}
	a.conf = conf
	a.logger.Debugf("Configuration loaded: %s", conf.String())

	a.api = client.New(conf.APIURL,
		client.WithReadTimeout(conf.ReadTimeout),
		client.WithCredentials(conf.ClientID, conf.ClientSecret),
		client.WithLogger(a.logger),
	)
	return nil
}

func (a *app) coordinator() *topping.Coordinator {
	return topping.NewCoordinator(a.api, a.conf.MaxParallel).WithLogger(a.logger)
}
