// Package choice models operator prompts as a Provider the engine calls
// through. The interactive implementation draws pterm menus on a terminal;
// the fail-closed one answers every question with "nothing" so automated
// runs never block waiting for input.
package choice

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/arthur-debert/gamelink/pkg/logging"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// Skip is returned by Choose when the operator declines every option
const Skip = -1

// Provider asks the operator to pick from a list
type Provider interface {
	// Choose returns the index of one option or Skip
	Choose(prompt string, options []string) (int, error)
	// ChooseMany returns the indexes of the picked options in list order
	ChooseMany(prompt string, options []string) ([]int, error)
}

// Auto returns the interactive provider when stdin and stdout are terminals
// and nonInteractive is false, and the fail-closed provider otherwise
func Auto(nonInteractive bool) Provider {
	if nonInteractive || !IsTerminal() {
		return FailClosed{}
	}
	return NewInteractive()
}

// IsTerminal reports whether both stdin and stdout are terminals
func IsTerminal() bool {
	in, out := os.Stdin.Fd(), os.Stdout.Fd()
	return (isatty.IsTerminal(in) || isatty.IsCygwinTerminal(in)) &&
		(isatty.IsTerminal(out) || isatty.IsCygwinTerminal(out))
}

// FailClosed never selects anything
type FailClosed struct{}

func (FailClosed) Choose(prompt string, options []string) (int, error) {
	logger := logging.GetLogger("choice")
	logger.Debug().Str("prompt", prompt).Int("options", len(options)).Msg("Non-interactive, skipping prompt")
	return Skip, nil
}

func (FailClosed) ChooseMany(prompt string, options []string) ([]int, error) {
	logger := logging.GetLogger("choice")
	logger.Debug().Str("prompt", prompt).Int("options", len(options)).Msg("Non-interactive, skipping prompt")
	return nil, nil
}

// Scripted replays canned answers in order. Once the answers run out it
// behaves like FailClosed.
type Scripted struct {
	mu      sync.Mutex
	single  []int
	many    [][]int
	Prompts []string
}

// NewScripted returns a provider answering Choose from single and
// ChooseMany from many
func NewScripted(single []int, many ...[]int) *Scripted {
	return &Scripted{single: single, many: many}
}

func (s *Scripted) Choose(prompt string, options []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompts = append(s.Prompts, prompt)
	if len(s.single) == 0 {
		return Skip, nil
	}
	answer := s.single[0]
	s.single = s.single[1:]
	if answer != Skip && (answer < 0 || answer >= len(options)) {
		return Skip, fmt.Errorf("scripted answer %d out of range for %d options", answer, len(options))
	}
	return answer, nil
}

func (s *Scripted) ChooseMany(prompt string, options []string) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompts = append(s.Prompts, prompt)
	if len(s.many) == 0 {
		return nil, nil
	}
	answer := s.many[0]
	s.many = s.many[1:]
	for _, i := range answer {
		if i < 0 || i >= len(options) {
			return nil, fmt.Errorf("scripted answer %d out of range for %d options", i, len(options))
		}
	}
	return answer, nil
}

// Interactive draws pterm select menus
type Interactive struct {
	MaxHeight int
}

// NewInteractive returns a terminal provider
func NewInteractive() *Interactive {
	return &Interactive{MaxHeight: 15}
}

const skipLabel = "(skip)"

// labels makes every option unique by prefixing its position
func labels(options []string) []string {
	out := make([]string, len(options))
	for i, o := range options {
		out[i] = fmt.Sprintf("%d) %s", i+1, o)
	}
	return out
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return Skip
}

func (p *Interactive) Choose(prompt string, options []string) (int, error) {
	if len(options) == 0 {
		return Skip, nil
	}
	opts := append(labels(options), skipLabel)
	picked, err := pterm.DefaultInteractiveSelect.
		WithOptions(opts).
		WithDefaultText(prompt).
		WithMaxHeight(p.MaxHeight).
		Show()
	if err != nil {
		return Skip, err
	}
	return indexOf(opts[:len(options)], picked), nil
}

func (p *Interactive) ChooseMany(prompt string, options []string) ([]int, error) {
	if len(options) == 0 {
		return nil, nil
	}
	opts := labels(options)
	picked, err := pterm.DefaultInteractiveMultiselect.
		WithOptions(opts).
		WithDefaultText(prompt).
		WithMaxHeight(p.MaxHeight).
		Show()
	if err != nil {
		return nil, err
	}

	chosen := make(map[string]bool, len(picked))
	for _, s := range picked {
		chosen[strings.TrimSpace(s)] = true
	}
	var indexes []int
	for i, o := range opts {
		if chosen[o] {
			indexes = append(indexes, i)
		}
	}
	return indexes, nil
}
