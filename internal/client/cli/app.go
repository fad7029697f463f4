package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/suitenumerique/drive-sub001/internal/client/config"
	"github.com/suitenumerique/drive-sub001/internal/client/driver"
	"github.com/suitenumerique/drive-sub001/internal/client/models"
	"github.com/suitenumerique/drive-sub001/internal/client/phase"
	"github.com/suitenumerique/drive-sub001/internal/client/runtimecfg"
	"github.com/suitenumerique/drive-sub001/internal/client/timebounds"
	"github.com/suitenumerique/drive-sub001/internal/client/transport"
	"github.com/suitenumerique/drive-sub001/internal/common"
	"github.com/suitenumerique/drive-sub001/internal/logging"
)

// folder is one level of the current path.
type folder struct {
	ID    string
	Title string
}

type App struct {
	config *config.Config
	driver driver.Driver
	store  *runtimecfg.Store
	logger logging.Logger
	nav    *terminalNavigator

	out     io.Writer
	scanner *bufio.Scanner

	// path is the stack of folders entered with cd; empty means the root.
	path []folder
	me   *models.User
}

// NewApp builds the transport and driver described by c.
func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	nav := &terminalNavigator{out: os.Stdout, appOrigin: strings.TrimRight(c.EffectiveAppOrigin(), "/")}

	api, err := transport.New(c.APIOrigin,
		transport.WithAPIVersion(c.APIVersion),
		transport.WithAppOrigin(c.EffectiveAppOrigin()),
		transport.WithCSRFBootstrapPath(c.CSRFBootstrapPath),
		transport.WithRateLimit(c.RequestsPerSecond, c.Burst),
		transport.WithNavigator(nav),
		transport.WithRedirectStore(nav),
		transport.WithLogger(logger.With("component", "transport")),
	)
	if err != nil {
		return nil, err
	}
	if c.SessionCookie != "" {
		api.SetCookie(common.SessionCookieName, c.SessionCookie)
	}

	store := runtimecfg.NewStore()
	var d driver.Driver = driver.NewStandardDriver(api, store,
		driver.WithRequestTimeout(c.RequestTimeout),
		driver.WithLogger(logger.With("component", "driver")),
	)
	if c.CacheTTL > 0 {
		d = driver.NewCachedDriver(d, c.CacheTTL)
	}

	return &App{
		config:  c,
		driver:  d,
		store:   store,
		logger:  logger,
		nav:     nav,
		out:     os.Stdout,
		scanner: bufio.NewScanner(os.Stdin),
	}, nil
}

// Run loads the server configuration and starts the REPL on stdin. It
// returns when the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	printlnFn("Welcome to the drive CLI (type 'help' for commands)")

	if err := a.LoadConfig(ctx); err != nil {
		if msg := describeError(err); msg != "" {
			printlnFn(msg)
		}
	}

	runREPL(ctx, a, a.status, a.scanner)
}

// status renders the prompt: the current user, if known, and the path.
func (a *App) status() string {
	var b strings.Builder
	b.WriteString("/")
	for _, f := range a.path {
		b.WriteString(f.Title)
		b.WriteString("/")
	}
	if a.me != nil {
		return a.me.Email + " " + b.String()
	}
	return b.String()
}

func (a *App) currentFolderID() string {
	if len(a.path) == 0 {
		return ""
	}
	return a.path[len(a.path)-1].ID
}

// LoadConfig fetches the server configuration and publishes it to the
// runtime store, printing "still working" and "failed" feedback while the
// request is in flight.
func (a *App) LoadConfig(ctx context.Context) error {
	tracker := phase.NewTracker(a.store.Bounds(timebounds.ConfigLoad), phase.WithOnChange(func(p phase.Phase) {
		switch p {
		case phase.StillWorking:
			printlnFn("Still loading the configuration...")
		case phase.Failed:
			printlnFn("Loading the configuration is taking too long; type 'config' to retry.")
		}
	}))
	defer tracker.Stop()

	tracker.SetActive(true)
	cfg, err := a.driver.GetConfig(ctx)
	tracker.SetActive(false)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// A cached driver may answer without touching the store.
	a.store.Set(cfg)
	a.logger.Debug(ctx, "configuration loaded", "environment", cfg.Environment, "elapsed", tracker.Elapsed())
	return nil
}

// terminalNavigator stands in for the browser location: it prints where the
// user has to go instead of navigating, and remembers the page to return to.
type terminalNavigator struct {
	mu        sync.Mutex
	out       io.Writer
	appOrigin string
	current   string
	returnTo  string
}

func (n *terminalNavigator) CurrentURL() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *terminalNavigator) Navigate(target string) {
	fmt.Fprintf(n.out, "Authentication required: open %s in a browser, then restart with -session.\n", target)
}

func (n *terminalNavigator) SaveRedirectAfterLogin(url string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.returnTo = url
}

// visit records the front-end page matching folderID as the current URL.
func (n *terminalNavigator) visit(folderID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if folderID == "" {
		n.current = n.appOrigin + "/explorer/items/my-files"
		return
	}
	n.current = n.appOrigin + "/explorer/items/" + folderID
}

func (n *terminalNavigator) savedRedirect() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.returnTo
}
