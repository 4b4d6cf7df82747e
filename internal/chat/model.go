package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/adamavenir/tern/internal/logging"
	"github.com/adamavenir/tern/internal/nav"
	"github.com/adamavenir/tern/internal/platform"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

const (
	defaultLoadLimit = 50
	opTimeout        = 15 * time.Second
)

// Options configure chat.
type Options struct {
	Providers    *platform.Mux
	Cache        platform.Cache
	Username     string
	Title        string
	VisibleCount int
	LoadLimit    int
	Notify       bool
	Mouse        bool
}

// Run starts the chat UI and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model, err := NewModel(ctx, opts)
	if err != nil {
		return err
	}
	fmt.Printf("\033]0;%s\007", model.title)

	programOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if opts.Mouse {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}
	_, err = tea.NewProgram(model, programOpts...).Run()
	model.Close()
	return err
}

// Model is the bubbletea host of the navigation engine. All UI state lives
// in state and changes only through nav.Transition.
type Model struct {
	ctx       context.Context
	cancel    context.CancelFunc
	providers *platform.Mux
	bridge    *Bridge
	username  string
	title     string
	loadLimit int
	mouse     bool

	state   nav.AppState
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	zones   *zone.Manager

	sub        platform.Subscription
	subscribed bool

	helpCache      string
	helpCacheWidth int
	lastClickIndex int
	lastClickAt    time.Time

	closeOnce sync.Once
}

// NewModel lists channels and builds the initial state.
func NewModel(ctx context.Context, opts Options) (*Model, error) {
	if opts.Providers == nil {
		return nil, fmt.Errorf("chat: no providers")
	}
	if opts.LoadLimit <= 0 {
		opts.LoadLimit = defaultLoadLimit
	}
	title := "tern"
	if opts.Title != "" {
		title = "tern · " + opts.Title
	}

	listing, err := opts.Providers.ListChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	rows, cols := terminalSize()

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot
	spin.Style = lipgloss.NewStyle().Foreground(accentColor)

	ctx, cancel := context.WithCancel(ctx)
	m := &Model{
		ctx:       ctx,
		cancel:    cancel,
		providers: opts.Providers,
		bridge:    NewBridge(opts.Cache, opts.Username, opts.Notify),
		username:  opts.Username,
		title:     title,
		loadLimit: opts.LoadLimit,
		mouse:     opts.Mouse,
		state: nav.New(listing.Channels, listing.DisplayItems, nav.Options{
			Rows:         rows,
			Cols:         cols,
			VisibleCount: opts.VisibleCount,
		}),
		keys:           newKeyMap(),
		help:           help.New(),
		spinner:        spin,
		zones:          zone.New(),
		lastClickIndex: -1,
	}
	logging.Info("chat", "started with %d channels", len(listing.Channels))
	return m, nil
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(subscribeCmd(m.ctx, m.providers), m.spinner.Tick)
}

// Close ends the subscription and every in-flight command context.
func (m *Model) Close() {
	m.closeOnce.Do(func() {
		m.cancel()
		m.zones.Close()
	})
}

// State returns the current snapshot.
func (m *Model) State() nav.AppState {
	return m.state
}

func (m *Model) dispatch(actions ...nav.Action) {
	for _, action := range actions {
		m.state = nav.Transition(m.state, action)
	}
}

func (m *Model) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(m.ctx, opTimeout)
}
