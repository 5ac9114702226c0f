package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iyunix/go-chatarchive/internal/changefeed"
	"github.com/iyunix/go-chatarchive/internal/services"
	"github.com/iyunix/go-chatarchive/internal/services/telegram"
	"github.com/iyunix/go-chatarchive/internal/storage"
)

type rootOptions struct {
	endpoint string
	timeout  time.Duration
	verbose  bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "diagnostic",
		Short:         "Chat archive diagnostics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&opts.endpoint, "endpoint", telegram.DefaultEndpoint, "Bot API endpoint format (two %s verbs: token, method)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 15*time.Second, "gateway request timeout")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newGetMeCmd(opts), newForwardCmd(opts), newWatchCmd(opts))
	return root
}

func (o *rootOptions) logger() *services.ProductionLogger {
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	return services.NewProductionLogger("diagnostic", services.LogOptions{Level: level})
}

func (o *rootOptions) gateway() (*telegram.BotAPIProvider, error) {
	return telegram.NewBotAPIProvider(&telegram.Config{Endpoint: o.endpoint, Timeout: o.timeout, Debug: o.verbose}, o.logger())
}

func newGetMeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "getme <bot-token>",
		Short: "Resolve the bot name for a credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := opts.gateway()
			if err != nil {
				return err
			}
			identity, err := gw.GetMe(cmd.Context(), args[0])
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "@%s (id %d)\n", identity.Username, identity.ID)
			return nil
		},
	}
}

func newForwardCmd(opts *rootOptions) *cobra.Command {
	var req telegram.ForwardRequest
	cmd := &cobra.Command{
		Use:   "forward",
		Short: "Forward one message between chats",
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := opts.gateway()
			if err != nil {
				return err
			}
			if err := gw.ForwardMessage(cmd.Context(), req); err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "forwarded message %d from %s to %s\n", req.MessageID, req.FromChatID, req.ToChatID)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Token, "token", "", "bot token")
	cmd.Flags().StringVar(&req.FromChatID, "from", "", "source chat id")
	cmd.Flags().StringVar(&req.ToChatID, "to", "", "destination chat id")
	cmd.Flags().Int64Var(&req.MessageID, "message", 0, "message id in the source chat")
	for _, name := range []string{"token", "from", "to", "message"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var redisURL, channel string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print archive change events relayed through redis",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client, err := storage.OpenRedis(ctx, redisURL)
			if err != nil {
				return err
			}
			defer client.Close()

			logger := opts.logger()
			hub := changefeed.NewHub(logger)
			sub := hub.Subscribe(changefeed.TableArchives)
			defer sub.Close()

			relay := changefeed.NewRedisRelay(client, channel, hub, logger)
			errc := make(chan error, 1)
			go func() { errc <- relay.Run(ctx) }()

			return printEvents(ctx, cmd.OutOrStdout(), sub.C, errc)
		},
	}
	cmd.Flags().StringVar(&redisURL, "redis", "redis://localhost:6379/0", "redis URL")
	cmd.Flags().StringVar(&channel, "channel", "archive-changes", "pub/sub channel")
	return cmd
}

// printEvents writes one JSON line per event until ctx ends or the relay fails.
func printEvents(ctx context.Context, out io.Writer, events <-chan changefeed.Event, errc <-chan error) error {
	enc := json.NewEncoder(out)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := enc.Encode(ev); err != nil {
				return err
			}
		}
	}
}

func describe(err error) error {
	var gwErr *telegram.GatewayError
	if errors.As(err, &gwErr) {
		return fmt.Errorf("%s: %s", gwErr.Method, gwErr.Description())
	}
	return err
}
