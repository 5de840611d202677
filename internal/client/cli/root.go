package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/client/config"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// App holds what the commands share: configuration, terminal streams and a
// client factory.
type App struct {
	config    *config.Config
	reader    *bufio.Reader
	out       io.Writer
	newClient func(addr string) (client.Client, error)
}

func NewApp(in io.Reader, out io.Writer) *App {
	return &App{
		config: config.NewDefault(),
		reader: bufio.NewReader(in),
		out:    out,
		newClient: func(addr string) (client.Client, error) {
			return client.NewAuthKeeperClient(addr)
		},
	}
}

// NewRootCmd creates the root command bound to the process streams.
func NewRootCmd() *cobra.Command {
	return NewApp(os.Stdin, os.Stdout).RootCmd()
}

// RootCmd builds the command tree for a.
func (a *App) RootCmd() *cobra.Command {
	var (
		configFile string
		addr       string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:           "authkeeper",
		Short:         "AuthKeeper command-line client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.config.LoadDefaults()
			if configFile != "" {
				if err := a.config.LoadJSON(configFile); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("addr") {
				a.config.ServerEndpointAddr = addr
			}
			if cmd.Flags().Changed("timeout") {
				a.config.RequestTimeout = timeout
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "JSON config file path")
	cmd.PersistentFlags().StringVarP(&addr, "addr", "a", a.config.ServerEndpointAddr, "address and port of the AuthKeeper server")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", a.config.RequestTimeout, "per-request timeout")

	cmd.AddCommand(a.newRegisterCmd())
	cmd.AddCommand(a.newLoginCmd())
	cmd.AddCommand(a.newRefreshCmd())
	cmd.AddCommand(a.newProfileCmd())

	return cmd
}

// withClient dials the server, runs fn under the request timeout and closes
// the connection.
func (a *App) withClient(ctx context.Context, fn func(ctx context.Context, c client.Client) error) error {
	c, err := a.newClient(a.config.ServerEndpointAddr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	return fn(ctx, c)
}

// credentials fills in whatever the flags left empty from the terminal.
func (a *App) credentials(email, password string) (string, string, error) {
	var err error
	if email == "" {
		email, err = getSimpleText(a.reader, "Enter email", a.out)
		if err != nil {
			return "", "", err
		}
	}
	if password == "" {
		pw, err := getPassword(a.out)
		if err != nil {
			return "", "", err
		}
		password = string(pw)
		common.WipeByteArray(pw)
	}
	return email, password, nil
}

var printOptions = protojson.MarshalOptions{Multiline: true, Indent: "  ", EmitUnpopulated: true}

// printJSON writes m using the envelope's JSON field names.
func (a *App) printJSON(m proto.Message) error {
	b, err := printOptions.Marshal(m)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(b))
	return err
}
