// Package interview drives one mock-interview session end to end: the
// transcript, the countdown, resume upload, narration and the closing
// report, with a single outstanding backend call per user action.
package interview

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mockmate/webapp/internal/model/interview"
	"github.com/mockmate/webapp/internal/narrator"
)

var (
	// ErrEmptyMessage rejects empty or whitespace-only submissions.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrBusy rejects an action while another one is still in flight.
	ErrBusy = errors.New("another action is in flight")
)

// Backend is the slice of the interview backend the controller drives.
type Backend interface {
	Upload(ctx context.Context, filename string, file io.Reader) (interview.ATSReport, error)
	Chat(ctx context.Context, question string) (string, error)
	GenerateReport(ctx context.Context) (interview.ReportCard, error)
}

// Options tune a controller.
type Options struct {
	// TurnBudget is the countdown reset value for each exchange.
	TurnBudget time.Duration
	// TickInterval is how often the countdown decrements one second of
	// budget. One second in production; tests shorten it.
	TickInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.TurnBudget <= 0 {
		o.TurnBudget = 120 * time.Second
	}
	if o.TickInterval <= 0 {
		o.TickInterval = time.Second
	}
	return o
}

// Controller owns all state for one user's interview session. All methods
// are safe for the interleaved handler/timer callbacks that drive it.
type Controller struct {
	backend  Backend
	narrator narrator.Narrator
	opts     Options

	mu         sync.Mutex
	phase      interview.Phase
	busy       bool
	transcript []interview.Message
	remaining  int
	atsReport  *interview.ATSReport
	reportCard *interview.ReportCard
	narration  bool

	stopTicker context.CancelFunc
}

// NewController builds a controller and starts its countdown ticker. Callers
// must Close it when the session ends.
func NewController(backend Backend, n narrator.Narrator, opts Options) *Controller {
	opts = opts.withDefaults()
	if n == nil {
		n = narrator.Noop{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		backend:    backend,
		narrator:   n,
		opts:       opts,
		phase:      interview.PhaseIdle,
		remaining:  int(opts.TurnBudget / time.Second),
		narration:  true,
		stopTicker: cancel,
	}
	go c.runTicker(ctx)
	return c
}

// Close tears down the countdown ticker and silences narration.
func (c *Controller) Close() {
	c.stopTicker()
	c.narrator.Cancel()
}

// runTicker decrements the countdown once per interval while a conversation
// is active. The countdown is a visual pressure indicator only: hitting
// zero sends nothing and ends nothing.
func (c *Controller) runTicker(ctx context.Context) {
	ticker := time.NewTicker(c.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			if len(c.transcript) > 0 && c.remaining > 0 {
				c.remaining--
			}
			c.mu.Unlock()
		}
	}
}

// Upload sends a resume to the backend and stores the resulting ATS report.
// A failed upload appends one system failure message, leaves any previous
// report untouched, and may simply be retried.
func (c *Controller) Upload(ctx context.Context, filename string, file io.Reader) error {
	c.mu.Lock()
	if c.busy || c.phase == interview.PhaseReporting {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	c.phase = interview.PhaseUploading
	c.append(interview.RoleSystem, "Analyzing resume, this can take a moment...")
	c.mu.Unlock()

	report, err := c.backend.Upload(ctx, filename, file)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	c.phase = c.settledPhase()

	if err != nil {
		log.Printf("[interview] resume upload failed: %v", err)
		c.append(interview.RoleSystem, "Upload failed. Please try again.")
		return nil
	}

	c.atsReport = &report
	c.append(interview.RoleSystem, "Resume parsed! Check your ATS score, then type 'start' to begin.")
	return nil
}

// Submit sends the user's text as the next conversation turn. Only the
// latest question goes to the backend; it holds the session context.
func (c *Controller) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	if c.busy || c.phase == interview.PhaseReporting {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	c.phase = interview.PhaseChatting
	c.append(interview.RoleUser, text)
	c.remaining = int(c.opts.TurnBudget / time.Second)
	c.mu.Unlock()

	c.narrator.Cancel()

	response, err := c.backend.Chat(ctx, text)

	c.mu.Lock()
	if err != nil {
		log.Printf("[interview] chat turn failed: %v", err)
		c.append(interview.RoleSystem, "Error: the interviewer is unreachable. Try again.")
		c.busy = false
		c.mu.Unlock()
		return nil
	}
	c.append(interview.RoleAI, response)
	speak := c.narration
	c.busy = false
	c.mu.Unlock()

	if speak {
		c.narrator.Speak(response)
	}
	return nil
}

// EndInterview fetches the closing report card. On failure the report stays
// absent, the conversation remains usable and ending may be retried.
func (c *Controller) EndInterview(ctx context.Context) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	prev := c.phase
	c.phase = interview.PhaseReporting
	c.mu.Unlock()

	card, err := c.backend.GenerateReport(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false

	if err != nil {
		log.Printf("[interview] report generation failed: %v", err)
		c.phase = prev
		return err
	}
	c.reportCard = &card
	return nil
}

// CloseReport dismisses the report overlay and returns to the conversation.
func (c *Controller) CloseReport() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == interview.PhaseReporting && !c.busy {
		c.phase = c.settledPhase()
	}
}

// SetNarration toggles speech narration. Disabling it silences the current
// utterance immediately.
func (c *Controller) SetNarration(enabled bool) {
	c.mu.Lock()
	c.narration = enabled
	c.mu.Unlock()

	if !enabled {
		c.narrator.Cancel()
	}
}

// Reset starts a new session: the transcript, reports and countdown are
// cleared. The equivalent of reloading the interview view.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}

	c.phase = interview.PhaseIdle
	c.transcript = nil
	c.atsReport = nil
	c.reportCard = nil
	c.remaining = int(c.opts.TurnBudget / time.Second)
	return nil
}

// Snapshot is a consistent copy of everything the interview view renders.
type Snapshot struct {
	Phase      interview.Phase      `json:"phase"`
	Busy       bool                 `json:"busy"`
	Transcript []interview.Message  `json:"transcript"`
	Remaining  int                  `json:"timeLeft"`
	ATSReport  *interview.ATSReport `json:"atsReport,omitempty"`
	ReportCard *interview.ReportCard `json:"report,omitempty"`
	Narration  bool                 `json:"narration"`
}

// State returns a snapshot of the session.
func (c *Controller) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	transcript := make([]interview.Message, len(c.transcript))
	copy(transcript, c.transcript)

	snap := Snapshot{
		Phase:      c.phase,
		Busy:       c.busy,
		Transcript: transcript,
		Remaining:  c.remaining,
		Narration:  c.narration,
	}
	if c.atsReport != nil {
		report := *c.atsReport
		snap.ATSReport = &report
	}
	if c.reportCard != nil {
		card := *c.reportCard
		snap.ReportCard = &card
	}
	return snap
}

// append adds a message to the transcript. Caller holds c.mu.
func (c *Controller) append(role interview.Role, text string) {
	c.transcript = append(c.transcript, interview.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	})
}

// settledPhase is the resting phase between actions: chatting once any
// question has been asked, idle otherwise. Caller holds c.mu.
func (c *Controller) settledPhase() interview.Phase {
	for _, msg := range c.transcript {
		if msg.Role == interview.RoleUser {
			return interview.PhaseChatting
		}
	}
	return interview.PhaseIdle
}
