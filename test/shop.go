package test

import (
	"github.com/lawnchairsociety/nightmareinsilver/internal/server"
	"github.com/lawnchairsociety/nightmareinsilver/internal/testclient"
)

// TestBuyWithoutMoney tests that a fresh profile cannot afford upgrades
func TestBuyWithoutMoney(serverAddr string) TestResult {
	const testName = "Buy Without Money"

	client, err := testclient.NewTestClient(uniqueName("buy"), serverAddr)
	if err != nil {
		return fail(testName, "Login failed: %v", err)
	}
	defer client.Close()

	logAction(testName, "Buying a battery upgrade with no money...")
	client.Send(server.ClientMessage{Type: server.MsgBuy, Upgrade: "battery"})
	if !client.WaitForError("money", waitTime) {
		return fail(testName, "Purchase was not refused")
	}
	return pass(testName, "Purchase refused")
}

// TestUnknownUpgrade tests that unknown upgrades are rejected
func TestUnknownUpgrade(serverAddr string) TestResult {
	const testName = "Unknown Upgrade"

	client, err := testclient.NewTestClient(uniqueName("upg"), serverAddr)
	if err != nil {
		return fail(testName, "Login failed: %v", err)
	}
	defer client.Close()

	client.Send(server.ClientMessage{Type: server.MsgRefund, Upgrade: "wings"})
	if !client.WaitForError("unknown upgrade", waitTime) {
		return fail(testName, "Unknown upgrade accepted")
	}
	return pass(testName, "Unknown upgrade refused")
}

// TestScores tests the score board request. Servers without a database
// answer with an error, which also passes.
func TestScores(serverAddr string) TestResult {
	const testName = "Scores"

	client, err := testclient.NewTestClient(uniqueName("score"), serverAddr)
	if err != nil {
		return fail(testName, "Login failed: %v", err)
	}
	defer client.Close()

	client.Send(server.ClientMessage{Type: server.MsgScores, Limit: 5})
	msg, ok := client.WaitForAny([]string{server.MsgScores, server.MsgError}, waitTime)
	if !ok {
		return fail(testName, "No reply to scores")
	}
	if msg.Type == server.MsgError {
		return pass(testName, "Scores unavailable: "+msg.Message)
	}
	if len(msg.Scores) > 5 {
		return fail(testName, "Limit ignored: %d scores", len(msg.Scores))
	}
	return pass(testName, "Score board received")
}
