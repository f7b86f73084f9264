package render

import (
	"context"
	"log/slog"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Visibility is the display state of a code block.
type Visibility int

const (
	Visible Visibility = iota
	Hidden
)

func (v Visibility) String() string {
	if v == Hidden {
		return "hidden"
	}
	return "visible"
}

// Controller holds one show/hide flag. The zero value is not used directly;
// NewController starts Visible.
type Controller struct {
	state Visibility
}

func NewController() *Controller {
	return &Controller{state: Visible}
}

func (c *Controller) State() Visibility {
	return c.state
}

func (c *Controller) Toggle() {
	if c.state == Visible {
		c.state = Hidden
		return
	}
	c.state = Visible
}

// Mode picks how controllers are shared among the blocks of one page.
type Mode string

const (
	// ModeGlobal shares one controller across every block.
	ModeGlobal Mode = "global"
	// ModeBlock gives each block index its own controller.
	ModeBlock Mode = "block"
)

func ParseMode(s string) Mode {
	if Mode(s) == ModeBlock {
		return ModeBlock
	}
	return ModeGlobal
}

// Scope owns the controllers of a single page render.
type Scope struct {
	mode   Mode
	global *Controller
	blocks map[int]*Controller
}

func NewScope(mode Mode) *Scope {
	s := &Scope{mode: ParseMode(string(mode))}
	if s.mode == ModeGlobal {
		s.global = NewController()
	} else {
		s.blocks = make(map[int]*Controller)
	}
	return s
}

func (s *Scope) Mode() Mode { return s.mode }

// For returns the controller governing block i.
func (s *Scope) For(i int) *Controller {
	if s.mode == ModeGlobal {
		return s.global
	}
	c, ok := s.blocks[i]
	if !ok {
		c = NewController()
		s.blocks[i] = c
	}
	return c
}

// HiddenBlocks lists block indexes currently hidden in block mode.
func (s *Scope) HiddenBlocks() []int {
	var out []int
	for i, c := range s.blocks {
		if c.State() == Hidden {
			out = append(out, i)
		}
	}
	slices.Sort(out)
	return out
}

// Action is one user toggle request: All flips the global flag, otherwise
// Block names the block index to flip.
type Action struct {
	All   bool
	Block int
}

func (a Action) String() string {
	if a.All {
		return "all"
	}
	return strconv.Itoa(a.Block)
}

// ParseAction reads "all" or a non-negative block index.
func ParseAction(s string) (Action, bool) {
	s = strings.TrimSpace(s)
	if s == "all" {
		return Action{All: true}, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return Action{}, false
	}
	return Action{Block: n}, true
}

// Apply replays actions in order. Actions that do not fit the scope's mode
// are skipped.
func (s *Scope) Apply(actions []Action, logger *slog.Logger) {
	for _, a := range actions {
		switch {
		case a.All && s.mode == ModeGlobal:
			s.global.Toggle()
		case !a.All && s.mode == ModeBlock:
			s.For(a.Block).Toggle()
		default:
			if logger != nil {
				logger.Debug("toggle ignored", slog.String("action", a.String()), slog.String("mode", string(s.mode)))
			}
		}
	}
}

func (s *Scope) actionFor(i int) Action {
	if s.mode == ModeGlobal {
		return Action{All: true}
	}
	return Action{Block: i}
}

// ToggleHref returns a relative link whose toggle parameters describe the
// page state after flipping block i. The link carries the whole state, so
// following it from a fresh scope reproduces it.
func (s *Scope) ToggleHref(i int) string {
	var toggles []string
	if s.mode == ModeGlobal {
		if s.global.State() == Visible {
			toggles = append(toggles, "all")
		}
	} else {
		hidden := s.HiddenBlocks()
		if j := slices.Index(hidden, i); j >= 0 {
			hidden = slices.Delete(hidden, j, j+1)
		} else {
			hidden = append(hidden, i)
			slices.Sort(hidden)
		}
		for _, h := range hidden {
			toggles = append(toggles, strconv.Itoa(h))
		}
	}
	if len(toggles) == 0 {
		return "?"
	}
	return "?" + url.Values{"toggle": toggles}.Encode()
}

type scopeKey struct{}

func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

func LookupScope(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(*Scope)
	return s, ok && s != nil
}

// ScopeFrom returns the scope stored in ctx, or a fresh global scope.
func ScopeFrom(ctx context.Context) *Scope {
	if s, ok := LookupScope(ctx); ok {
		return s
	}
	return NewScope(ModeGlobal)
}
