// Command solver plays a Light 'Em All session through the REST API. It reads
// the scrambled board, searches for an orientation that powers every tile,
// and submits the needed rotations as bulk actions.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/lightem/game/engine"
)

const sessionFile = ".session"

// Result summarizes a solving run
type Result struct {
	Rotations int
	Batches   int
	Steps     int
	State     *engine.GameState
}

// solveSession resets the session, plans a solution, and submits it in batches
func solveSession(client *Client, budget int, delay time.Duration) (*Result, error) {
	state, err := client.Reset()
	if err != nil {
		return nil, err
	}
	if state == nil || state.Grid == nil {
		return nil, errors.New("session returned no board")
	}

	solver := NewSolver(state.Grid, budget)
	plan, err := solver.Solve()
	if err != nil {
		return nil, fmt.Errorf("after %d placements: %w", solver.Steps(), err)
	}

	actions := PlanActions(state.Grid.Width, state.Grid.Height, plan)
	result := &Result{Rotations: len(actions), Steps: solver.Steps(), State: state}

	log.WithFields(log.Fields{
		"board":      fmt.Sprintf("%dx%d", state.Grid.Width, state.Grid.Height),
		"placements": solver.Steps(),
		"rotations":  len(actions),
	}).Info("solution planned")

	for _, batch := range Chunk(actions, engine.MaxBulkActions) {
		if result.State.Solved {
			break
		}
		bulk, err := client.Bulk(batch)
		if err != nil {
			return result, err
		}
		result.Batches++
		result.State = bulk.GameState

		log.WithFields(log.Fields{
			"exec":    fmt.Sprintf("%d/%d", bulk.ActionsExecuted, bulk.RequestedActions),
			"powered": fmt.Sprintf("%d->%d", bulk.StartPowered, bulk.EndPowered),
		}).Debug("batch applied")

		if delay > 0 {
			time.Sleep(delay)
		}
	}

	// A board that starts solved needs no request
	if len(actions) == 0 {
		if result.State, err = client.GetState(); err != nil {
			return result, err
		}
	}
	return result, nil
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Game server URL")
	configID := flag.String("config", "", "Board configuration id (classic, easy, medium, hard, tutorial)")
	seed := flag.Int64("seed", 0, "Generation seed for a new session")
	continueSession := flag.String("continue", "", "Solve an existing session by ID")
	budget := flag.Int("budget", 2000000, "Maximum placements tried before giving up (0 = no cap)")
	verbose := flag.Bool("v", false, "Verbose output")
	delayMs := flag.Int("delay", 0, "Delay between batches in milliseconds (0 = no delay)")
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	var seedOverride *int64
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seedOverride = seed
		}
	})

	log.WithField("url", *serverURL).Info("connecting to game server")
	client := NewClient(*serverURL)

	savedSessionID := *continueSession
	if savedSessionID == "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedSessionID = string(bytes.TrimSpace(data))
		}
	}

	resumed := false
	if savedSessionID != "" && seedOverride == nil && *configID == "" {
		client.UseSession(savedSessionID)
		if _, err := client.GetState(); err != nil {
			log.WithError(err).Warn("failed to resume session (may be expired), creating a new one")
		} else {
			log.WithField("session", savedSessionID).Info("resuming session")
			resumed = true
		}
	}

	if !resumed {
		if _, err := client.CreateSession(*configID, seedOverride); err != nil {
			log.WithError(err).Fatal("failed to create session")
		}
		log.WithField("session", client.SessionID()).Info("session created")

		if err := os.WriteFile(sessionFile, []byte(client.SessionID()), 0644); err != nil {
			log.WithError(err).Warn("failed to save session ID")
		}
	}

	result, err := solveSession(client, *budget, time.Duration(*delayMs)*time.Millisecond)
	if err != nil {
		log.WithError(err).WithField("session", client.SessionID()).Fatal("failed to solve board")
	}

	fields := log.Fields{
		"session":   client.SessionID(),
		"rotations": result.Rotations,
		"batches":   result.Batches,
		"powered":   fmt.Sprintf("%d/%d", result.State.PoweredCount, result.State.TotalTiles),
	}
	if !result.State.Solved {
		log.WithFields(fields).Error("board not solved after applying the plan")
		os.Exit(1)
	}
	log.WithFields(fields).Info("🎉 board solved")
}
