package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var (
	hostID   string
	userID   string
	actorID  string
	team     int
	delta    int
	slot     int
	limit    int
	sink     int
	winByTwo bool
	title    string
	interval string
)

func init() {
	createCmd.Flags().StringVar(&hostID, "host-id", "", "User id of the match host (empty for guest-hosted)")
	createCmd.Flags().StringVar(&title, "title", "", "Match title")
	createCmd.Flags().IntVar(&limit, "limit", 11, "Score limit")
	createCmd.Flags().IntVar(&sink, "sink", 3, "Points per sink")
	createCmd.Flags().BoolVar(&winByTwo, "win-by-two", true, "Require a two point lead to win")
	claimCmd.Flags().StringVar(&userID, "user", "", "User id claiming the seat")
	claimCmd.Flags().IntVar(&slot, "slot", 0, "Slot to claim (1-4)")
	adjustCmd.Flags().StringVar(&actorID, "actor", "", "User id performing the adjustment")
	adjustCmd.Flags().IntVar(&team, "team", 0, "Team to adjust (1 or 2)")
	adjustCmd.Flags().IntVar(&delta, "delta", 0, "Points to add (negative to subtract)")
	watchCmd.Flags().StringVar(&interval, "interval", "2s", "Minimum time between streamed updates")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(claimCmd)
	rootCmd.AddCommand(throwCmd)
	rootCmd.AddCommand(adjustCmd)
	rootCmd.AddCommand(finishCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new match session",
	RunE: func(cmd *cobra.Command, args []string) error {
		body := fmt.Sprintf(`{"host_id":%q,"setup":{"title":%q,"game_score_limit":%d,"sink_points":%d,"win_by_two":%t}}`,
			hostID, title, limit, sink, winByTwo)
		return performPostRequest("/match/create", body)
	},
}

var getCmd = &cobra.Command{
	Use:   "get <session-id-or-room-code>",
	Short: "Fetch a live session by id or 6-letter room code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		param := "id"
		if len(args[0]) == 6 && args[0] == strings.ToUpper(args[0]) {
			param = "code"
		}
		return performGetRequest("/match?" + param + "=" + args[0])
	},
}

var claimCmd = &cobra.Command{
	Use:   "claim <session-id>",
	Short: "Claim a seat in a match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := fmt.Sprintf(`{"session_id":%q,"slot":%d,"user_id":%q}`, args[0], slot, userID)
		return performPostRequest("/match/claim", body)
	},
}

var throwCmd = &cobra.Command{
	Use:   "throw <session-id> <play-json>",
	Short: "Submit a play event, e.g. '{\"thrower_slot\":1,\"throw\":\"hit\"}'",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := fmt.Sprintf(`{"session_id":%q,"play":%s}`, args[0], args[1])
		return performPostRequest("/match/throw", body)
	},
}

var adjustCmd = &cobra.Command{
	Use:   "adjust <session-id>",
	Short: "Apply a manual team score adjustment (host only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := fmt.Sprintf(`{"session_id":%q,"actor_id":%q,"team":%d,"delta":%d}`, args[0], actorID, team, delta)
		return performPostRequest("/match/adjust", body)
	},
}

var finishCmd = &cobra.Command{
	Use:   "finish <session-id>",
	Short: "Finish a match and flatten it into a summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := fmt.Sprintf(`{"session_id":%q}`, args[0])
		return performPostRequest("/match/finish", body)
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Get the career leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/leaderboard")
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List recently finished matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/matches")
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch <session-id>",
	Short: "Stream live session updates until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wsHost := strings.Replace(host, "http", "ws", 1)
		url := wsHost + "/match/watch?id=" + args[0] + "&interval=" + interval
		fmt.Printf("Connecting to %s\n", url)

		conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		if resp != nil {
			defer resp.Body.Close()
		}
		defer conn.Close()

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		done := make(chan struct{})

		go func() {
			defer close(done)
			for {
				_, message, err := conn.ReadMessage()
				if err != nil {
					return
				}
				fmt.Println(string(message))
			}
		}()

		select {
		case <-done:
			return nil
		case <-interrupt:
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			<-done
			return nil
		}
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}

func performPostRequest(endpoint, body string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	return nil
}
