/*
Package courier is a session-scoped assistant for package tracking and lost-package claims.

A user talks to it over stateless request/response calls. Every conversational request is first
checked by the session manager (resume or create a token) and then handled by the conversation
engine, a small state machine that walks the user from a tracking lookup to a claim
confirmation, an e-mail prompt and finally a claim record.

# Architecture

The core lives in pkg/session and pkg/conversation and only depends on the interfaces in
pkg/ports. Stores and transports are adapters:

  - pkg/adapters/memory: process-local stores (the default).
  - pkg/adapters/redis: sessions, dialogue state, claims and the package directory on Redis.
  - pkg/adapters/dynamodb: claim records on DynamoDB.
  - pkg/adapters/sqs: claim-filed notifications.
  - pkg/adapters/http: the JSON API.
  - pkg/adapters/mcp: the same operations as MCP tools.

# Usage

	cfg := courier.DefaultConfig()
	a, err := courier.New(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close()

	greeting, _ := a.Engine.Start(ctx, "")
	reply, _ := a.Engine.Message(ctx, greeting.Session.Token, "CD555666777")
	fmt.Println(reply.Message)

See cmd/courier for the server, the chat REPL and the MCP entry points.
*/
package courier
