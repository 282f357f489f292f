package test

import (
	"fmt"
	"strings"

	"github.com/lawnchairsociety/nightmareinsilver/internal/server"
	"github.com/lawnchairsociety/nightmareinsilver/internal/testclient"
)

// TestBasicConnection tests that a login is answered with the shop
func TestBasicConnection(serverAddr string) TestResult {
	const testName = "Basic Connection"

	name := uniqueName("conn")
	logAction(testName, fmt.Sprintf("Connecting as '%s'...", name))
	client, err := testclient.Dial(serverAddr)
	if err != nil {
		return fail(testName, "Failed to connect: %v", err)
	}
	defer client.Close()

	client.Send(server.ClientMessage{Type: server.MsgLogin, Profile: name})
	shop, ok := client.WaitFor(server.MsgShop, waitTime)
	logResult(testName, ok, "Received shop")
	if !ok {
		return fail(testName, "No shop message after login")
	}
	if shop.Profile != name || shop.HUD == nil || len(shop.Shop) == 0 {
		return fail(testName, "Shop message incomplete: %+v", shop)
	}
	return pass(testName, fmt.Sprintf("Logged in, %d upgrades on offer", len(shop.Shop)))
}

// TestDuplicateLogin tests that a profile can only be played once at a time
func TestDuplicateLogin(serverAddr string) TestResult {
	const testName = "Duplicate Login"

	name := uniqueName("dupe")
	first, err := testclient.NewTestClient(name, serverAddr)
	if err != nil {
		return fail(testName, "First login failed: %v", err)
	}
	defer first.Close()

	logAction(testName, "Logging in again with different case...")
	second, err := testclient.NewTestClient(strings.ToUpper(name), serverAddr)
	if err == nil {
		second.Close()
		return fail(testName, "Second login was accepted")
	}
	logResult(testName, strings.Contains(err.Error(), "already playing"), err.Error())
	if !strings.Contains(err.Error(), "already playing") {
		return fail(testName, "Unexpected rejection: %v", err)
	}
	return pass(testName, "Second connection refused")
}

// TestReservedName tests the profile name filter
func TestReservedName(serverAddr string) TestResult {
	const testName = "Reserved Name"

	_, err := testclient.NewTestClient("admin", serverAddr)
	if err == nil {
		return fail(testName, "Reserved name was accepted")
	}
	if !strings.Contains(err.Error(), "reserved") {
		return fail(testName, "Unexpected rejection: %v", err)
	}
	return pass(testName, "Reserved name refused")
}

// TestLoginRequired tests that the first message must be a login
func TestLoginRequired(serverAddr string) TestResult {
	const testName = "Login Required"

	client, err := testclient.Dial(serverAddr)
	if err != nil {
		return fail(testName, "Failed to connect: %v", err)
	}
	defer client.Close()

	client.Send(server.ClientMessage{Type: server.MsgStart})
	if !client.WaitForError("expected a login", waitTime) {
		return fail(testName, "No login error")
	}
	if !client.Closed(waitTime) {
		return fail(testName, "Connection left open")
	}
	return pass(testName, "Connection closed after a non-login message")
}
