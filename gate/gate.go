// Package gate implements the yes/no checkpoint shown to a submitter before
// their topic is posted. A session resolves exactly once: to Confirmed or
// Cancelled by the submitter's button press, or to TimedOut when the timer
// runs out first.
package gate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/state"
	"github.com/diamondburned/arikawa/v3/utils/json/option"
	"github.com/google/uuid"
)

type Outcome int

const (
	Confirmed Outcome = iota
	Cancelled
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case Confirmed:
		return "confirmed"
	case Cancelled:
		return "cancelled"
	case TimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// DefaultTimeout bounds how long a session waits for the submitter's press.
const DefaultTimeout = 60 * time.Second

const customIDPrefix = "topic_confirm"

// Responder is the part of the Discord API the gate talks to.
type Responder interface {
	EditInteractionResponse(appID discord.AppID, token string, data api.EditInteractionResponseData) (*discord.Message, error)
	RespondInteraction(id discord.InteractionID, token string, resp api.InteractionResponse) error
}

// Request describes one confirmation prompt. AppID and Token identify the
// deferred interaction response the buttons are rendered on.
type Request struct {
	AppID   discord.AppID
	Token   string
	UserID  discord.UserID
	Prompt  string
	Preview discord.Embed
	Timeout time.Duration
}

type session struct {
	user discord.UserID
	done chan Outcome
}

type Gate struct {
	resp Responder

	mu       sync.Mutex
	sessions map[string]*session
}

func New(resp Responder) *Gate {
	return &Gate{
		resp:     resp,
		sessions: make(map[string]*session),
	}
}

// Attach subscribes the gate to component interactions. Call once, before
// connecting.
func (g *Gate) Attach(s *state.State) {
	s.AddHandler(g.onInteraction)
}

// Request renders the prompt with Yes/No buttons and blocks until the
// submitter picks one, the timeout elapses, or ctx is cancelled. A timeout is
// not an error; it resolves the session as declined.
func (g *Gate) Request(ctx context.Context, req Request) (Outcome, error) {
	if req.Timeout <= 0 {
		req.Timeout = DefaultTimeout
	}

	nonce := uuid.NewString()
	sess := &session{
		user: req.UserID,
		done: make(chan Outcome, 1),
	}

	g.mu.Lock()
	g.sessions[nonce] = sess
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.sessions, nonce)
		g.mu.Unlock()
	}()

	components := discord.ContainerComponents{
		&discord.ActionRowComponent{
			&discord.ButtonComponent{
				CustomID: buttonID(nonce, true),
				Label:    "Yes",
				Style:    discord.SuccessButtonStyle(),
			},
			&discord.ButtonComponent{
				CustomID: buttonID(nonce, false),
				Label:    "No",
				Style:    discord.DangerButtonStyle(),
			},
		},
	}

	_, err := g.resp.EditInteractionResponse(req.AppID, req.Token, api.EditInteractionResponseData{
		Content:    option.NewNullableString(req.Prompt),
		Embeds:     &[]discord.Embed{req.Preview},
		Components: &components,
	})
	if err != nil {
		return Cancelled, fmt.Errorf("failed to present a confirmation prompt: %w", err)
	}

	timeout := time.NewTimer(req.Timeout)
	defer timeout.Stop()

	select {
	case outcome := <-sess.done:
		return outcome, nil
	case <-timeout.C:
		return TimedOut, nil
	case <-ctx.Done():
		return Cancelled, ctx.Err()
	}
}

func (g *Gate) onInteraction(e *gateway.InteractionCreateEvent) {
	btn, ok := e.Data.(*discord.ButtonInteraction)
	if !ok {
		return
	}

	nonce, confirmed, ok := parseButtonID(string(btn.CustomID))
	if !ok {
		return
	}

	g.mu.Lock()
	sess := g.sessions[nonce]
	g.mu.Unlock()

	if sess == nil {
		return
	}

	// Acknowledge the press so the client doesn't report a failed
	// interaction. Presses from anyone but the submitter get nothing else.
	g.resp.RespondInteraction(e.ID, e.Token, api.InteractionResponse{
		Type: api.DeferredMessageUpdate,
	})

	if e.SenderID() != sess.user {
		return
	}

	g.mu.Lock()
	_, live := g.sessions[nonce]
	delete(g.sessions, nonce)
	g.mu.Unlock()

	if !live {
		return
	}

	outcome := Cancelled
	if confirmed {
		outcome = Confirmed
	}

	sess.done <- outcome
}

func buttonID(nonce string, confirmed bool) discord.ComponentID {
	choice := "no"
	if confirmed {
		choice = "yes"
	}

	return discord.ComponentID(fmt.Sprintf("%s:%s:%s", customIDPrefix, nonce, choice))
}

func parseButtonID(id string) (nonce string, confirmed bool, ok bool) {
	parts := strings.Split(id, ":")
	if len(parts) != 3 || parts[0] != customIDPrefix {
		return "", false, false
	}

	return parts[1], parts[2] == "yes", true
}
