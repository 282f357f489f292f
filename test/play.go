package test

import (
	"fmt"

	"github.com/lawnchairsociety/nightmareinsilver/internal/server"
)

// TestStartRun tests that a run starts on the up ladder of level 0
func TestStartRun(serverAddr string) TestResult {
	const testName = "Start Run"

	client, tiles, frame, err := startRun(testName, serverAddr)
	if err != nil {
		return fail(testName, "%v", err)
	}
	defer client.Close()

	if tiles.Depth != 0 || frame.HUD.Depth != 0 {
		return fail(testName, "Run started at depth %d", tiles.Depth)
	}
	ups := 0
	onLadder := false
	for _, t := range tiles.Tiles {
		if t.Kind == "ladder_up" {
			ups++
			onLadder = onLadder || t.Pos == frame.Player.Pos
		}
	}
	logResult(testName, ups == 1 && onLadder, fmt.Sprintf("%d up ladders, player on one: %v", ups, onLadder))
	if ups != 1 || !onLadder {
		return fail(testName, "Player not on the single up ladder")
	}
	return pass(testName, fmt.Sprintf("Level 0 with %d tiles", len(tiles.Tiles)))
}

// TestAttackCycle tests that next_attack changes the selected element
func TestAttackCycle(serverAddr string) TestResult {
	const testName = "Attack Cycle"

	client, _, frame, err := startRun(testName, serverAddr)
	if err != nil {
		return fail(testName, "%v", err)
	}
	defer client.Close()

	before := frame.HUD.Selected
	logAction(testName, "Selecting the next attack from "+before)
	client.Action("next_attack")
	for {
		msg, ok := client.WaitFor(server.MsgFrame, waitTime)
		if !ok {
			return fail(testName, "Selection never changed from %s", before)
		}
		if msg.Frame != nil && msg.Frame.HUD.Selected != before {
			return pass(testName, fmt.Sprintf("%s -> %s", before, msg.Frame.HUD.Selected))
		}
	}
}

// TestPauseRequest tests that the pause action is reported as a state
func TestPauseRequest(serverAddr string) TestResult {
	const testName = "Pause Request"

	client, _, _, err := startRun(testName, serverAddr)
	if err != nil {
		return fail(testName, "%v", err)
	}
	defer client.Close()

	client.Action("pause")
	msg, ok := client.WaitFor(server.MsgState, waitTime)
	if !ok || msg.State != "pause" {
		return fail(testName, "No pause state: %+v", msg)
	}
	return pass(testName, "Pause reported")
}

// TestReturnToShop steps off the up ladder and back on, then confirms the
// trip to the shop
func TestReturnToShop(serverAddr string) TestResult {
	const testName = "Return To Shop"

	client, tiles, frame, err := startRun(testName, serverAddr)
	if err != nil {
		return fail(testName, "%v", err)
	}
	defer client.Close()

	start := frame.Player.Pos
	dir, ok := openNeighbour(tiles.Tiles, start)
	if !ok {
		return fail(testName, "No open tile next to the ladder")
	}

	logAction(testName, "Stepping "+dir.String())
	client.Move(dir.String())
	if !waitForPlayerAt(client, start.Add(dir.Delta())) {
		return fail(testName, "Player did not step %s", dir)
	}

	logAction(testName, "Stepping back onto the ladder")
	client.Move(dir.Opposite().String())
	msg, ok := client.WaitFor(server.MsgState, waitTime)
	if !ok || msg.State != "shop" {
		return fail(testName, "No shop request: %+v", msg)
	}

	client.Send(server.ClientMessage{Type: server.MsgConfirm})
	if _, ok := client.WaitFor(server.MsgShop, waitTime); !ok {
		return fail(testName, "Confirm did not return to the shop")
	}
	return pass(testName, "Back in the shop")
}

// TestFloodWarning tests that a burst of actions is throttled without
// dropping the connection
func TestFloodWarning(serverAddr string) TestResult {
	const testName = "Flood Warning"

	client, _, _, err := startRun(testName, serverAddr)
	if err != nil {
		return fail(testName, "%v", err)
	}
	defer client.Close()

	logAction(testName, "Sending 100 actions at once...")
	for i := 0; i < 100; i++ {
		client.Action("next_attack")
	}
	if !client.WaitForError("slow down", waitTime) {
		return fail(testName, "Burst was not throttled")
	}
	if client.Closed(0) {
		return fail(testName, "Connection dropped")
	}
	return pass(testName, "Burst throttled")
}
