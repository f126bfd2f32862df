package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/courier/internal/logging"
	"github.com/aretw0/courier/internal/presentation/tui"
	"github.com/aretw0/courier/pkg/conversation"
	"github.com/aretw0/courier/pkg/domain"
)

// ChatEngine is the part of the conversation engine the REPL drives.
type ChatEngine interface {
	Start(ctx context.Context, candidate string) (conversation.Greeting, error)
	Message(ctx context.Context, sessionID, text string) (conversation.Reply, error)
}

// ChatOptions configures the REPL.
type ChatOptions struct {
	// SessionID resumes an existing session when still live.
	SessionID string
	// JSON emits one JSON object per reply instead of rendered text.
	JSON bool
	// Render formats assistant messages. Defaults to tui.Plain.
	Render tui.Renderer
	Logger *slog.Logger
}

// chatLine is the JSON shape of a reply in --json mode.
type chatLine struct {
	SessionID string                 `json:"session_id"`
	Message   string                 `json:"message"`
	Step      domain.Step            `json:"step,omitempty"`
	Error     conversation.ErrorTag  `json:"error,omitempty"`
	Metadata  *conversation.Metadata `json:"metadata,omitempty"`
}

const chatHelp = "Commands: /new starts over, /session prints the session id, /quit exits."

type chat struct {
	engine ChatEngine
	out    io.Writer
	opts   ChatOptions
	sid    string
}

// RunChat reads messages line by line from in and writes the assistant replies to out
// until in is exhausted, ctx is cancelled or the user types /quit.
func RunChat(ctx context.Context, engine ChatEngine, in io.Reader, out io.Writer, opts ChatOptions) error {
	if opts.Render == nil {
		opts.Render = tui.Plain
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	c := &chat{engine: engine, out: out, opts: opts}

	if err := c.start(ctx, opts.SessionID); err != nil {
		return err
	}

	scanner := bufio.NewScanner(NewInterruptibleReader(in, ctx.Done()))
	for {
		c.prompt()
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return io.EOF
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/help":
			c.system(chatHelp)
			continue
		case "/session":
			c.system("Session '%s' active.", c.sid)
			continue
		case "/new":
			if err := c.start(ctx, ""); err != nil {
				return err
			}
			continue
		}

		if err := c.send(ctx, line); err != nil {
			return err
		}
	}
}

func (c *chat) start(ctx context.Context, candidate string) error {
	g, err := c.engine.Start(ctx, candidate)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	c.sid = g.Session.Token
	c.opts.Logger.Info("Session started", "session_id", c.sid, "resumed", !g.Created)
	if candidate != "" && !g.Created {
		c.system("Resumed session '%s'.", c.sid)
	}
	return c.emit(conversation.Reply{Message: g.Message, Step: domain.StepAwaitingTracking})
}

func (c *chat) send(ctx context.Context, text string) error {
	reply, err := c.engine.Message(ctx, c.sid, text)
	switch {
	case conversation.IsUnauthorized(err):
		c.system("Session expired. Starting a new one.")
		return c.start(ctx, "")
	case err != nil:
		return err
	}
	return c.emit(reply)
}

func (c *chat) emit(reply conversation.Reply) error {
	if c.opts.JSON {
		return json.NewEncoder(c.out).Encode(chatLine{
			SessionID: c.sid,
			Message:   reply.Message,
			Step:      reply.Step,
			Error:     reply.Error,
			Metadata:  reply.Metadata,
		})
	}
	rendered, err := c.opts.Render(reply.Message)
	if err != nil {
		rendered = reply.Message + "\n"
	}
	_, err = io.WriteString(c.out, rendered)
	return err
}

func (c *chat) prompt() {
	if !c.opts.JSON {
		fmt.Fprint(c.out, "> ")
	}
}

func (c *chat) system(format string, args ...any) {
	if c.opts.JSON {
		return
	}
	printSystemMessage(c.out, format, args...)
}
