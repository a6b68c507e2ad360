package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/msomdec/task-board/internal/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "taskctl",
	Short: "Manage your task-board tasks from the terminal",
	Long: `taskctl talks to a task-board server. Sign in once with "taskctl login";
the session is kept in a local state file until it expires or you log out.

Configuration is read from $HOME/.config/taskctl/config.yaml and from
TASKCTL_* environment variables (TASKCTL_SERVER, TASKCTL_STATE).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var errNotSignedIn = errors.New(`not signed in, run "taskctl login" first`)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/taskctl/config.yaml)")
	rootCmd.PersistentFlags().String("server", "", "server base URL (default http://localhost:8080)")
	rootCmd.PersistentFlags().String("state", "", "path of the local session database")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("state", rootCmd.PersistentFlags().Lookup("state"))
}

func configDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "taskctl")
	}
	return filepath.Join(".", ".taskctl")
}

func initConfig() {
	viper.SetDefault("server", "http://localhost:8080")
	viper.SetDefault("state", filepath.Join(configDir(), "state.db"))

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(configDir())
		viper.AddConfigPath("$HOME/.config/taskctl")
	}

	viper.SetEnvPrefix("TASKCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine.
	_ = viper.ReadInConfig()
}

// app holds the client pieces a command works with.
type app struct {
	api     *client.HTTPClient
	storage *client.SQLiteStorage
	session *client.Session
}

func openApp(ctx context.Context) (*app, error) {
	statePath := viper.GetString("state")
	if err := os.MkdirAll(filepath.Dir(statePath), 0o700); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	storage, err := client.OpenSQLiteStorage(ctx, statePath)
	if err != nil {
		return nil, err
	}

	api := client.NewHTTPClient(viper.GetString("server"), nil)
	session, err := client.NewSession(ctx, api, storage)
	if err != nil {
		storage.Close()
		return nil, err
	}
	return &app{api: api, storage: storage, session: session}, nil
}

func (a *app) Close() error {
	return a.storage.Close()
}

// tasks returns a store fed by the server. It fails when the session is
// signed out or the first fetch did not succeed.
func (a *app) tasks(ctx context.Context) (*client.TaskStore, error) {
	if !a.session.State().IsAuthenticated {
		return nil, errNotSignedIn
	}
	store := client.NewTaskStore(ctx, a.api, a.session)
	if msg := store.State().Error; msg != "" {
		return nil, errors.New(msg)
	}
	return store, nil
}

// withApp opens the app for the duration of fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
