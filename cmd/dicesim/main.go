package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/xtding233/dicesim/internal/config"
	"github.com/xtding233/dicesim/internal/transport/grpcapi"
)

// app carries what every subcommand needs.
type app struct {
	v       *viper.Viper
	cfgFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "dicesim",
		Short: "Roll weighted dice and analyze the outcomes",
		Long: `dicesim plays games of weighted dice defined in YAML files and reports
jackpots, face totals, combinations and permutations.

Games are read from <config_dir>/games/<name>.yaml. With --remote, play and
trials are sent to a running dicesim server over gRPC instead.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.dicesim.yaml)")
	pf.String("config_dir", "config", "directory holding games/*.yaml")
	pf.String("remote", "", "host:port of a dicesim gRPC server; empty runs locally")
	_ = a.v.BindPFlag("config_dir", pf.Lookup("config_dir"))
	_ = a.v.BindPFlag("remote", pf.Lookup("remote"))

	root.AddCommand(
		newPlayCmd(a),
		newTrialsCmd(a),
		newRollCmd(),
		newGamesCmd(a),
		newVersionCmd(),
	)
	return root
}

// initConfig reads the optional config file and DICESIM_* variables.
func (a *app) initConfig(cmd *cobra.Command) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(home)
		}
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(".dicesim")
	}
	a.v.SetEnvPrefix("dicesim")
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", a.v.ConfigFileUsed())
	return nil
}

func (a *app) loader() *config.Loader {
	return config.NewLoader(a.v.GetString("config_dir"))
}

func (a *app) remote() string {
	return a.v.GetString("remote")
}

// dial connects to a remote simulator. The caller closes the returned func.
func dial(addr string) (*grpcapi.Client, func() error, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return grpcapi.NewClient(conn), conn.Close, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
