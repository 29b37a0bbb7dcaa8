// Package session keeps one interaction controller per map client.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/interaction"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/models"
)

// MaxPendingCommands bounds the render command queue of a session.
// The oldest commands are dropped once the browser stops polling.
const MaxPendingCommands = 32

// CommandType identifies a render command
type CommandType string

const (
	CommandFocus       CommandType = "focus"
	CommandCloseDetail CommandType = "close_detail"
)

// Command is a render instruction queued for the browser
type Command struct {
	Seq    uint64                    `json:"seq"`
	Type   CommandType               `json:"type"`
	Focus  *interaction.FocusRequest `json:"focus,omitempty"`
	Detail *interaction.DetailView   `json:"detail,omitempty"`
}

// Session is a single client's selection state. All methods are safe for
// concurrent use; events are applied one at a time.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu         sync.Mutex
	controller *interaction.Controller
	commands   []Command
	seq        uint64
	dropped    int
}

func newSession(neighbors interaction.NeighborFinder, opts ...interaction.Option) *Session {
	s := &Session{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
	}
	s.controller = interaction.NewController(neighbors, (*sessionRenderer)(s), opts...)
	return s
}

// Select runs the selection flow for station
func (s *Session) Select(station models.Station) (*interaction.DetailView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.Select(station)
}

// Next selects the station after the current one
func (s *Session) Next() (*interaction.DetailView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.Next()
}

// Previous selects the station before the current one
func (s *Session) Previous() (*interaction.DetailView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.Previous()
}

// Close closes the open detail view
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controller.Close()
}

// Current returns the open detail view, or nil
func (s *Session) Current() *interaction.DetailView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.Current()
}

// DrainCommands returns and clears the pending render commands along with
// the number of commands dropped since the last drain
func (s *Session) DrainCommands() ([]Command, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.commands
	dropped := s.dropped
	s.commands = nil
	s.dropped = 0
	if out == nil {
		out = []Command{}
	}
	return out, dropped
}

// push is called by the controller with s.mu held
func (s *Session) push(cmd Command) {
	s.seq++
	cmd.Seq = s.seq
	if len(s.commands) >= MaxPendingCommands {
		s.commands = s.commands[1:]
		s.dropped++
	}
	s.commands = append(s.commands, cmd)
}

// sessionRenderer queues the controller's render requests on the session
type sessionRenderer Session

func (r *sessionRenderer) Focus(req interaction.FocusRequest) {
	(*Session)(r).push(Command{Type: CommandFocus, Focus: &req})
}

func (r *sessionRenderer) CloseDetail(view *interaction.DetailView) {
	(*Session)(r).push(Command{Type: CommandCloseDetail, Detail: view})
}
