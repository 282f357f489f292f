// Package test holds integration scenarios run against a live server by
// cmd/testrunner.
package test

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lawnchairsociety/nightmareinsilver/internal/game"
	"github.com/lawnchairsociety/nightmareinsilver/internal/geom"
	"github.com/lawnchairsociety/nightmareinsilver/internal/server"
	"github.com/lawnchairsociety/nightmareinsilver/internal/testclient"
)

// uniqueCounter provides unique IDs for test profiles within a single run
var uniqueCounter uint64

// runTag keeps names from colliding with profiles saved by earlier runs.
var runTag = counterToLetters(uint64(time.Now().Unix() % (26 * 26 * 26 * 26)))

// uniqueName appends a letter suffix to base.
func uniqueName(base string) string {
	counter := atomic.AddUint64(&uniqueCounter, 1)
	return base + runTag + counterToLetters(counter)
}

// counterToLetters converts a number to a letter sequence (1=a, 2=b, ..., 26=z, 27=aa, ...)
func counterToLetters(n uint64) string {
	if n == 0 {
		return "a"
	}
	result := ""
	for n > 0 {
		n--
		result = string(rune('a'+(n%26))) + result
		n /= 26
	}
	return result
}

// Verbose controls whether detailed logging is shown during tests
var Verbose = false

// waitTime bounds every wait for a server reply.
const waitTime = 5 * time.Second

// TestResult represents the result of a test
type TestResult struct {
	Name    string
	Passed  bool
	Message string
}

func pass(name, msg string) TestResult { return TestResult{Name: name, Passed: true, Message: msg} }

func fail(name, format string, args ...any) TestResult {
	return TestResult{Name: name, Passed: false, Message: fmt.Sprintf(format, args...)}
}

// logAction logs a test action when verbose mode is enabled
func logAction(testName, action string) {
	if Verbose {
		fmt.Printf("  [%s] %s\n", testName, action)
	}
}

// logResult logs an expected vs actual result when verbose mode is enabled
func logResult(testName string, success bool, detail string) {
	if Verbose {
		status := "OK"
		if !success {
			status = "FAIL"
		}
		fmt.Printf("  [%s] %s: %s\n", testName, status, detail)
	}
}

// startRun logs in a fresh profile and starts a run, returning the level
// tiles and the first frame.
func startRun(testName, serverAddr string) (*testclient.TestClient, server.ServerMessage, *game.Snapshot, error) {
	name := uniqueName("run")
	logAction(testName, fmt.Sprintf("Connecting as '%s' and starting a run...", name))
	client, err := testclient.NewTestClient(name, serverAddr)
	if err != nil {
		return nil, server.ServerMessage{}, nil, err
	}
	if err := client.Send(server.ClientMessage{Type: server.MsgStart}); err != nil {
		client.Close()
		return nil, server.ServerMessage{}, nil, err
	}
	tiles, ok := client.WaitFor(server.MsgTiles, waitTime)
	if !ok {
		client.Close()
		return nil, server.ServerMessage{}, nil, fmt.Errorf("no tiles after start")
	}
	frame, ok := client.WaitFor(server.MsgFrame, waitTime)
	if !ok || frame.Frame == nil {
		client.Close()
		return nil, server.ServerMessage{}, nil, fmt.Errorf("no frame after start")
	}
	return client, tiles, frame.Frame, nil
}

// openNeighbour finds a ground or path tile next to pos.
func openNeighbour(tiles []game.TileView, pos geom.Vec) (geom.Direction, bool) {
	kinds := make(map[geom.Vec]string, len(tiles))
	for _, t := range tiles {
		kinds[t.Pos] = t.Kind
	}
	for _, d := range geom.AllDirections() {
		switch kinds[pos.Add(d.Delta())] {
		case "ground", "path":
			return d, true
		}
	}
	return geom.North, false
}

// waitForPlayerAt waits for a frame with the player on pos.
func waitForPlayerAt(client *testclient.TestClient, pos geom.Vec) bool {
	end := time.Now().Add(waitTime)
	for time.Now().Before(end) {
		msg, ok := client.WaitFor(server.MsgFrame, time.Until(end))
		if !ok {
			return false
		}
		if msg.Frame != nil && msg.Frame.Player.Pos == pos {
			return true
		}
	}
	return false
}

// RunAllTests runs all integration tests
func RunAllTests(serverAddr string) []TestResult {
	results := make([]TestResult, 0)

	// Connection & login
	results = append(results, TestBasicConnection(serverAddr))
	results = append(results, TestDuplicateLogin(serverAddr))
	results = append(results, TestReservedName(serverAddr))
	results = append(results, TestLoginRequired(serverAddr))

	// Shop
	results = append(results, TestBuyWithoutMoney(serverAddr))
	results = append(results, TestUnknownUpgrade(serverAddr))
	results = append(results, TestScores(serverAddr))

	// Play
	results = append(results, TestStartRun(serverAddr))
	results = append(results, TestAttackCycle(serverAddr))
	results = append(results, TestPauseRequest(serverAddr))
	results = append(results, TestReturnToShop(serverAddr))
	results = append(results, TestFloodWarning(serverAddr))

	return results
}

// PrintResults prints a summary of test results
func PrintResults(results []TestResult) {
	passed := 0
	failed := 0

	fmt.Println("============================================================")
	fmt.Println("Integration Test Results")
	fmt.Println("============================================================")
	fmt.Println()

	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
			failed++
		} else {
			passed++
		}
		fmt.Printf("[%s] %s: %s\n", status, r.Name, r.Message)
	}

	fmt.Println()
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Total: %d | Passed: %d | Failed: %d\n", len(results), passed, failed)
	fmt.Println("------------------------------------------------------------")
}
