package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cbodonnell/tabletop/pkg/client"
	"github.com/cbodonnell/tabletop/pkg/game/types"
	"github.com/cbodonnell/tabletop/pkg/log"
	"github.com/cbodonnell/tabletop/pkg/version"
)

const usage = `usage: client [flags] <command> [args]

commands:
  create                                   issue a new game ID
  state                                    print the game state
  join <userId> <name>                     join the game
  start                                    start the game
  next-phase <userId>                      end the current phase
  perform-action <playerId> <action> [json] play an action
  leave <userId>                           leave the game
  watch                                    poll the game and print changes
  subscribe                                stream pushed changes

flags:
`

func main() {
	serverURL := flag.String("server", envOr("TABLETOP_SERVER_URL", client.DefaultServerURL), "server URL")
	gameID := flag.String("game", os.Getenv("TABLETOP_GAME_ID"), "game ID")
	token := flag.String("token", os.Getenv("TABLETOP_TOKEN"), "bearer token")
	interval := flag.Duration("interval", 2*time.Second, "poll interval for watch")
	logLevel := flag.String("log-level", "warn", "Log level")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}
	log.SetDefaultLogger(log.New(os.Stderr, "", log.DefaultLoggerFlag, parsedLogLevel))
	log.Debug("Client version %s", version.Get())

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.NewClient(client.NewClientOptions{
		BaseURL: *serverURL,
		Token:   *token,
	})
	if err := run(ctx, c, *gameID, *interval, args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, c *client.Client, gameID string, interval time.Duration, command string, args []string) error {
	if command == "create" {
		id, err := c.CreateGame(ctx)
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	}

	if gameID == "" {
		return fmt.Errorf("-game is required for %s", command)
	}

	switch command {
	case "state":
		return printResult(c.GetState(ctx, gameID))
	case "join":
		if len(args) != 2 {
			return fmt.Errorf("usage: join <userId> <name>")
		}
		return printResult(c.Join(ctx, gameID, args[0], args[1]))
	case "start":
		return printResult(c.Start(ctx, gameID))
	case "next-phase":
		if len(args) != 1 {
			return fmt.Errorf("usage: next-phase <userId>")
		}
		return printResult(c.NextPhase(ctx, gameID, args[0]))
	case "perform-action":
		if len(args) < 2 || len(args) > 3 {
			return fmt.Errorf("usage: perform-action <playerId> <action> [json]")
		}
		var data json.RawMessage
		if len(args) == 3 {
			if !json.Valid([]byte(args[2])) {
				return fmt.Errorf("action data is not valid JSON")
			}
			data = json.RawMessage(args[2])
		}
		return printResult(c.PerformAction(ctx, gameID, args[0], args[1], data))
	case "leave":
		if len(args) != 1 {
			return fmt.Errorf("usage: leave <userId>")
		}
		return c.Leave(ctx, gameID, args[0])
	case "watch":
		return ignoreCancel(c.Watch(ctx, gameID, interval, printSummary))
	case "subscribe":
		return ignoreCancel(c.Subscribe(ctx, gameID, printSummary))
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func printResult[T any](v T, err error) error {
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

// printSummary prints one line per observed state
func printSummary(state *types.GameState) error {
	names := make([]string, 0, len(state.Players))
	for _, p := range state.ActivePlayers() {
		names = append(names, p.Name)
	}
	current := "-"
	if p := state.CurrentPlayer(); p != nil && state.GameStarted {
		current = p.Name
	}
	line := fmt.Sprintf("%s turn=%d phase=%s current=%s players=[%s]",
		time.UnixMilli(state.LastUpdated).Format(time.TimeOnly),
		state.CurrentTurn, state.CurrentPhase, current, strings.Join(names, ","))
	if state.GameOver && state.Winner != nil {
		winner := *state.Winner
		if p := state.FindPlayer(winner); p != nil {
			winner = p.Name
		}
		line += " winner=" + winner
	}
	fmt.Println(line)
	return nil
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func envOr(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
