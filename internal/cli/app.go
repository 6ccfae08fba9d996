package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mesh-intelligence/rentals/internal/config"
	"github.com/mesh-intelligence/rentals/internal/lifecycle"
	"github.com/mesh-intelligence/rentals/internal/paths"
	"github.com/mesh-intelligence/rentals/internal/session"
	"github.com/mesh-intelligence/rentals/internal/store"
	"github.com/mesh-intelligence/rentals/internal/transport"
	"github.com/mesh-intelligence/rentals/pkg/types"
)

// app is the state shared by all subcommands of one invocation.
type app struct {
	flags  rootFlags
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
	errOut io.Writer

	configDir  string
	cfg        config.Config
	logger     *slog.Logger
	session    *session.Manager
	client     *transport.Client
	apartments *lifecycle.Apartments
	contracts  *lifecycle.Contracts
	cancels    []func()
}

// setup loads configuration and wires the session, transport and
// lifecycles.
func (a *app) setup() error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}
	a.configDir = configDir
	a.cfg = cfg
	a.logger = cfg.NewLogger(a.errOut)

	a.client = transport.New(cfg.APIURL,
		transport.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		transport.WithLogger(a.logger.With("component", "transport")),
	)
	a.session, err = session.Open(paths.SessionFile(configDir), a.client,
		session.WithLogger(a.logger.With("component", "session")))
	if err != nil {
		return err
	}
	a.client.Session = a.session

	opts := []store.Option{
		store.WithMarkerWindow(cfg.UI.MarkerWindow),
		store.WithBannerWindow(cfg.UI.BannerWindow),
	}
	a.apartments = lifecycle.NewApartments(a.client, a.session,
		lifecycle.NewApartmentStore(opts...), a.logger.With("component", "apartments"))
	a.contracts = lifecycle.NewContracts(a.client, a.session,
		lifecycle.NewContractStore(opts...), a.apartments, a.logger.With("component", "contracts"))
	a.watch()
	return nil
}

// watch logs store changes at debug level and clears banners left by the
// previous session when the user logs out or the credential expires.
func (a *app) watch() {
	apartments, contracts := a.apartments.Store(), a.contracts.Store()
	a.cancels = append(a.cancels,
		apartments.OnChange(func(snap store.Snapshot[types.Apartment]) {
			a.logger.Debug("apartments changed", "items", len(snap.Items), "loading", snap.Loading)
		}),
		contracts.OnChange(func(snap store.Snapshot[types.Contract]) {
			a.logger.Debug("contracts changed", "items", len(snap.Items), "loading", snap.Loading)
		}),
		a.session.OnLogout(func() {
			apartments.DismissBanner()
			contracts.DismissBanner()
			a.logger.Info("session ended")
		}),
	)
}

func (a *app) close() {
	for _, cancel := range a.cancels {
		cancel()
	}
	a.cancels = nil
	if a.apartments != nil {
		a.apartments.Store().Close()
	}
	if a.contracts != nil {
		a.contracts.Store().Close()
	}
}

// readLine prompts on out and reads one line from in.
func (a *app) readLine(prompt string) (string, error) {
	if a.reader == nil {
		a.reader = bufio.NewReader(a.in)
	}
	fmt.Fprint(a.out, prompt)
	line, err := a.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// confirm shows plan's prompt and reports whether the user accepted. yes
// skips the question.
func (a *app) confirm(plan lifecycle.RemovalPlan, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	answer, err := a.readLine(plan.Prompt + " [s/N] ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "s", "si", "sí", "y", "yes":
		return true, nil
	}
	return false, nil
}

// failure attaches the store's error banner, when there is one, to err so
// the user sees the console message.
func failure(err error, banner *store.Banner) error {
	if err == nil {
		return nil
	}
	var fe *types.FieldError
	if errors.As(err, &fe) {
		return &messageError{msg: fe.Reason, err: err}
	}
	if banner != nil && banner.Kind == store.BannerError {
		return &messageError{msg: banner.Message, err: err}
	}
	if msg := types.RemoteMessage(err, ""); msg != "" {
		return &messageError{msg: msg, err: err}
	}
	if errors.Is(err, types.ErrAuthRequired) {
		return &messageError{msg: "Debes iniciar sesión (rentals login)", err: err}
	}
	return err
}

// messageError shows msg to the user and unwraps to the underlying error.
type messageError struct {
	msg string
	err error
}

func (e *messageError) Error() string { return e.msg }
func (e *messageError) Unwrap() error { return e.err }
