// Command display is a terminal guest display: it loads an event's
// check-in backlog over HTTP, follows live check-ins over websocket and
// reveals queued arrivals one at a time.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/opencampus-id/guestbook-api/internal/display"
	"github.com/opencampus-id/guestbook-api/internal/logger"
)

func main() {
	apiURL := flag.String("api", "http://localhost:8080", "guestbook API base URL")
	slug := flag.String("slug", "", "event slug to display")
	interval := flag.Duration("reveal", display.DefaultRevealInterval, "delay between reveals")
	flag.Parse()

	if *slug == "" {
		fmt.Fprintln(os.Stderr, "usage: display -slug <event-slug> [-api <url>] [-reveal <duration>]")
		os.Exit(2)
	}

	if err := run(*apiURL, *slug, *interval); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(apiURL, slug string, interval time.Duration) error {
	if err := logger.Init("production"); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	wsURL, err := socketURL(apiURL)
	if err != nil {
		return fmt.Errorf("invalid api URL -> %w", err)
	}

	consumer := display.NewConsumer(
		&display.APIBootstrap{BaseURL: strings.TrimRight(apiURL, "/")},
		&display.SocketStream{URL: wsURL},
		display.NewTickerScheduler(),
		display.Options{RevealInterval: interval},
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err = consumer.Start(ctx, slug); err != nil {
		return fmt.Errorf("failed to start display -> %w", err)
	}
	defer consumer.Close()

	zap.L().Info("display started",
		zap.String("event", consumer.Event().Name),
		zap.String("slug", slug),
	)

	render := time.NewTicker(time.Second)
	defer render.Stop()

	for {
		select {
		case <-render.C:
			draw(consumer)
		case <-ctx.Done():
			return nil
		}
	}
}

func draw(c *display.Consumer) {
	event := c.Event()

	fmt.Print("\033[H\033[2J")
	fmt.Printf("%v  [%v]\n", event.Name, c.State())
	fmt.Printf("%v guests waiting to be revealed\n\n", c.Pending())

	for i, n := range c.Presented() {
		if i >= 20 {
			break
		}
		fmt.Printf("%v  %v (%v)  %v\n",
			n.ArrivalTime.Local().Format("15:04"), n.GuestName, n.Institution, n.Category)
	}
}

func socketURL(apiURL string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", err
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws/display"

	return u.String(), nil
}
