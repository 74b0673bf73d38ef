package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"commerce.GO/config"
	"commerce.GO/event"
)

var eventsChannel string

var eventsListenCmd = &cobra.Command{
	Use:   "events:listen",
	Short: "Consume the Redis event channel and log every domain event",
	Run: func(cmd *cobra.Command, args []string) {
		config.LoadEnv()
		config.InitRedis()
		if config.RedisClient == nil {
			fmt.Println("REDIS_ADDR is not configured")
			os.Exit(1)
		}

		relay := event.NewRedisRelay(config.RedisClient, eventsChannel)
		fmt.Printf("Listening on %s. Press Ctrl+C to exit.\n", eventsChannel)
		if err := relay.Listen(context.Background(), event.LogNotifier{}); err != nil {
			fmt.Printf("Event listener stopped: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	eventsListenCmd.Flags().StringVarP(&eventsChannel, "channel", "c", event.DefaultChannel, "Redis channel to subscribe to")
	rootCmd.AddCommand(eventsListenCmd)
}
