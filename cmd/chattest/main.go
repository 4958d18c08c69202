// Package main is a load and smoke client for the messaging API. Each client
// listens on the inbox websocket and sends messages through the optimistic outbox.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"rizq/internal/client"
	"rizq/internal/notifications"
)

// Metrics tracks the test results
type Metrics struct {
	ConnectionsAttempted int64
	ConnectionsSuccess   int64
	ConnectionsFailed    int64
	MessagesSent         int64
	MessagesRolledBack   int64
	InboxEvents          int64
	Errors               int64
}

var metrics Metrics

func main() {
	baseURL := flag.String("url", "http://localhost:8375", "API base URL")
	token := flag.String("token", os.Getenv("RIZQ_TOKEN"), "Bearer access token (defaults to $RIZQ_TOKEN)")
	recipient := flag.Uint("to", 0, "Recipient user ID")
	clients := flag.Int("clients", 10, "Number of concurrent clients")
	duration := flag.Duration("duration", 30*time.Second, "Test duration")
	interval := flag.Duration("interval", 5*time.Second, "Delay between messages per client")
	flag.Parse()

	if *token == "" || *recipient == 0 {
		log.Fatal("both -token and -to are required")
	}

	log.Printf("Starting chat load test against %s with %d clients for %v", *baseURL, *clients, *duration)

	api, err := client.New(*baseURL, *token)
	if err != nil {
		log.Fatalf("Invalid client configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go runClient(ctx, api, *recipient, i, *interval, &wg)
		time.Sleep(50 * time.Millisecond) // stagger ticket issuance
	}

	<-ctx.Done()
	log.Println("Waiting for clients to disconnect...")
	wg.Wait()

	printMetrics()
}

func runClient(ctx context.Context, api *client.Client, recipient uint, id int, interval time.Duration, wg *sync.WaitGroup) {
	defer wg.Done()
	atomic.AddInt64(&metrics.ConnectionsAttempted, 1)

	stream, err := api.DialInbox(ctx)
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		atomic.AddInt64(&metrics.Errors, 1)
		return
	}
	atomic.AddInt64(&metrics.ConnectionsSuccess, 1)

	go func() {
		<-ctx.Done()
		_ = stream.Close()
	}()

	go func() {
		for {
			ev, err := stream.Next()
			if err != nil {
				return
			}
			if ev.Type == notifications.EventInbox {
				atomic.AddInt64(&metrics.InboxEvents, 1)
			}
		}
	}()

	outbox := client.NewOutbox()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for seq := 0; ; seq++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			content := fmt.Sprintf("load test message %d from client %d", seq, id)
			if _, err := outbox.Send(ctx, api, recipient, content); err != nil {
				var sendErr *client.SendError
				if errors.As(err, &sendErr) {
					atomic.AddInt64(&metrics.MessagesRolledBack, 1)
				}
				atomic.AddInt64(&metrics.Errors, 1)
				continue
			}
			atomic.AddInt64(&metrics.MessagesSent, 1)
		}
	}
}

func printMetrics() {
	log.Println("Test Results")
	log.Println("============")
	log.Printf("Connections Attempted: %d", atomic.LoadInt64(&metrics.ConnectionsAttempted))
	log.Printf("Connections Successful: %d", atomic.LoadInt64(&metrics.ConnectionsSuccess))
	log.Printf("Connections Failed: %d", atomic.LoadInt64(&metrics.ConnectionsFailed))
	log.Printf("Messages Sent: %d", atomic.LoadInt64(&metrics.MessagesSent))
	log.Printf("Messages Rolled Back: %d", atomic.LoadInt64(&metrics.MessagesRolledBack))
	log.Printf("Inbox Events: %d", atomic.LoadInt64(&metrics.InboxEvents))
	log.Printf("Total Errors: %d", atomic.LoadInt64(&metrics.Errors))
}
