package chat

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/adamavenir/tern/internal/platform"
	"github.com/adamavenir/tern/internal/platform/memory"
	"github.com/adamavenir/tern/internal/types"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	keyGeneral = "mem:general"
	keyRandom  = "mem:random"
)

type fixture struct {
	model   *Model
	adapter *memory.Adapter
	cache   *memory.Cache
}

// newFixture builds a model over an in-memory platform with eight messages
// in #general and two in #random.
func newFixture(t *testing.T, ctx context.Context) fixture {
	t.Helper()
	adapter := memory.New("mem", "sam")
	adapter.AddChannel(types.Channel{ID: "general", Name: "general", Following: true})
	adapter.AddChannel(types.Channel{ID: "random", Name: "random", Following: true})
	for i := 0; i < 8; i++ {
		adapter.Seed("general", types.Message{Author: "kim", Body: fmt.Sprintf("general %d", i), TS: int64(100 + i)})
	}
	for i := 0; i < 2; i++ {
		adapter.Seed("random", types.Message{Author: "ola", Body: fmt.Sprintf("random %d", i), TS: int64(100 + i)})
	}

	dir, err := platform.NewDirectory(nil, nil)
	if err != nil {
		t.Fatalf("directory: %v", err)
	}
	mux, err := platform.NewMux(dir, adapter)
	if err != nil {
		t.Fatalf("mux: %v", err)
	}
	cache := memory.NewCache()
	m, err := NewModel(ctx, Options{
		Providers:    mux,
		Cache:        cache,
		Username:     "sam",
		VisibleCount: 5,
		LoadLimit:    6,
		Mouse:        true,
	})
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	t.Cleanup(m.Close)
	return fixture{model: m, adapter: adapter, cache: cache}
}

// run executes cmd and feeds every message it produces back into the model
// until nothing is left. Spinner ticks are dropped so nothing sleeps.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 1000 {
			t.Fatalf("run: command loop did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil, spinner.TickMsg, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			_, more := m.Update(msg)
			queue = append(queue, more)
		}
	}
}

func press(t *testing.T, m *Model, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, cmd := m.Update(keyMsg(k))
		run(t, m, cmd)
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func typeText(t *testing.T, m *Model, text string) {
	t.Helper()
	for _, r := range text {
		press(t, m, string(r))
	}
}

// spawn runs cmd in the background, flattening batches, and delivers each
// resulting message on out. Blocking commands such as event waiters stay
// parked until their subscription closes.
func spawn(cmd tea.Cmd, out chan<- tea.Msg, wg *sync.WaitGroup) {
	if cmd == nil {
		return
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		msg := cmd()
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, c := range batch {
				spawn(c, out, wg)
			}
			return
		}
		if msg != nil {
			out <- msg
		}
	}()
}

func await[T any](t *testing.T, in <-chan tea.Msg) T {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case msg := <-in:
			if v, ok := msg.(T); ok {
				return v
			}
		case <-deadline:
			var zero T
			t.Fatalf("timed out waiting for %T", zero)
			return zero
		}
	}
}

func bodies(msgs []types.Message) []string {
	out := make([]string, len(msgs))
	for i, msg := range msgs {
		out[i] = msg.Body
	}
	return out
}
