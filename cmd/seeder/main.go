package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/tursodatabase/libsql-client-go/libsql"

	"github.com/beerdie/engine/internal/game"
	"github.com/beerdie/engine/internal/identity"
	"github.com/beerdie/engine/internal/session"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := make(map[string]string)
	required := []string{"TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"}

	for _, key := range required {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		} else {
			log.Fatalf("Error: Required environment variable %s is not set.", key)
		}
	}
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	// Connect directly to the primary database
	dbURL := fmt.Sprintf("%s?authToken=%s", cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	db, err := sql.Open("libsql", dbURL)
	if err != nil {
		log.Fatalf("Failed to open primary database: %s", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to primary database: %s", err)
	}

	log.Info("Successfully connected to the primary database.")

	// Create 4 dummy users to seat in every seeded match
	dummyUsers := []struct {
		ID   string
		Name string
	}{
		{"seed-user-1", "Seeder Player A"},
		{"seed-user-2", "Seeder Player B"},
		{"seed-user-3", "Seeder Player C"},
		{"seed-user-4", "Seeder Player D"},
	}

	resolver := identity.New(db)
	for _, u := range dummyUsers {
		if err := resolver.UpsertUser(u.ID, u.Name); err != nil {
			log.Fatalf("Failed to upsert dummy user %s: %s", u.Name, err)
		}
	}
	log.Info("Ensured dummy users exist.")

	const batchSize = 100 // Insert 100 summaries at a time
	const numSummaries = 10000

	log.Info("Preparing to insert dummy match summaries...", "total", numSummaries, "batch_size", batchSize)
	startTime := time.Now()

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("Failed to begin transaction: %s", err)
	}

	summaryStrings := make([]string, 0, batchSize)
	summaryArgs := make([]interface{}, 0, batchSize*13)
	playerStrings := make([]string, 0, batchSize*4)
	playerArgs := make([]interface{}, 0, batchSize*4*15)

	for i := 0; i < numSummaries; i++ {
		finishedAt := time.Now().Add(-time.Duration(rand.Intn(365*24)) * time.Hour)
		winner := rand.Intn(3) // 0 tie, 1 or 2
		score1, score2 := 11, rand.Intn(10)
		if winner == 2 {
			score1, score2 = score2, score1
		} else if winner == 0 {
			score2 = score1
		}

		summaryID := uuid.NewString()
		var players []session.SummaryPlayer
		for slot := 1; slot <= 4; slot++ {
			team := game.TeamForSlot(slot)
			u := dummyUsers[slot-1]
			st := game.PlayerStats{
				Name:    u.Name,
				Throws:  10 + rand.Intn(15),
				Hits:    rand.Intn(10),
				Catches: rand.Intn(8),
				Score:   rand.Intn(8),
			}
			players = append(players, session.SummaryPlayer{
				Slot:   slot,
				UserID: u.ID,
				Name:   u.Name,
				Team:   team,
				Won:    winner == team,
				Tied:   winner == 0,
				Stats:  st,
				Rating: 40 + rand.Float64()*60,
			})
		}
		playersJSON, _ := json.Marshal(players)

		summaryStrings = append(summaryStrings, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		summaryArgs = append(summaryArgs,
			summaryID,
			uuid.NewString(),
			"SEEDED",
			fmt.Sprintf("Seeded Match %d", i+1),
			"Seeder Arena",
			"Team One",
			"Team Two",
			score1,
			score2,
			winner,
			finishedAt.Add(-45*time.Minute).Unix(),
			finishedAt.Unix(),
			string(playersJSON),
		)
		for _, p := range players {
			playerStrings = append(playerStrings, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			playerArgs = append(playerArgs,
				summaryID, p.Slot, p.UserID, p.Name, p.Team, p.Won, p.Tied,
				p.Stats.Score, p.Stats.Throws, p.Stats.Hits, p.Stats.Catches,
				p.Stats.Blunders, p.Stats.FifaAttempts, p.Stats.FifaSuccess, p.Rating,
			)
		}

		if (i+1)%batchSize == 0 || (i+1) == numSummaries {
			stmt := fmt.Sprintf(`
				INSERT INTO match_summaries (id, session_id, room_code, title, arena, team1_name, team2_name,
					team1_score, team2_score, winner, started_at, finished_at, players_json)
				VALUES %s;`, strings.Join(summaryStrings, ","))
			if _, err := tx.Exec(stmt, summaryArgs...); err != nil {
				tx.Rollback()
				log.Fatalf("Failed to execute summary batch insert: %s", err)
			}

			stmt = fmt.Sprintf(`
				INSERT INTO summary_players (summary_id, slot, user_id, name, team, won, tied,
					score, throws, hits, catches, blunders, fifa_attempts, fifa_success, rating)
				VALUES %s;`, strings.Join(playerStrings, ","))
			if _, err := tx.Exec(stmt, playerArgs...); err != nil {
				tx.Rollback()
				log.Fatalf("Failed to execute player batch insert: %s", err)
			}

			// Reset for the next batch
			summaryStrings = make([]string, 0, batchSize)
			summaryArgs = make([]interface{}, 0, batchSize*13)
			playerStrings = make([]string, 0, batchSize*4)
			playerArgs = make([]interface{}, 0, batchSize*4*15)
			log.Info("Inserted batch", "completed", i+1, "total", numSummaries)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit transaction: %s", err)
	}

	duration := time.Since(startTime)
	log.Info("Successfully inserted all dummy match summaries.", "duration", duration)
}
