package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/healthart/internal/art"
	"github.com/desertthunder/healthart/internal/auth"
	"github.com/desertthunder/healthart/internal/repositories"
	"github.com/desertthunder/healthart/internal/services"
	"github.com/desertthunder/healthart/internal/shared"
	"github.com/desertthunder/healthart/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	openBrowser func(string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client // optional; replaces the per-service clients built from config timeouts
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		openBrowser: shared.OpenBrowser,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serveCommand, loginCommand, promptCommand, galleryCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// client returns the injected HTTP client or one bounded by timeout.
func (r *Runner) client(timeout func() time.Duration) *http.Client {
	if r.httpClient != nil {
		return r.httpClient
	}
	return &http.Client{Timeout: timeout()}
}

// newManager builds the OAuth manager from the WHOOP section of the config.
func (r *Runner) newManager() (*auth.Manager, error) {
	w := r.config.Whoop
	return auth.NewManager(auth.ManagerOpts{
		ClientID:     w.ClientID,
		ClientSecret: w.ClientSecret,
		RedirectURI:  w.RedirectURI,
		AuthURL:      w.AuthURL,
		TokenURL:     w.TokenURL,
		RevokeURL:    w.RevokeURL,
		Scopes:       w.Scopes,
		HTTPClient:   r.client(w.Timeout),
		Logger:       r.logger,
	})
}

// newBridge builds the metrics-to-image bridge. recorder may be nil.
func (r *Runner) newBridge(recorder art.Recorder) (*art.Bridge, error) {
	o := r.config.OpenAI
	images, err := services.NewOpenAIImageService(services.OpenAIConfig{
		APIKey:     o.APIKey,
		BaseURL:    o.BaseURL,
		Model:      o.Model,
		Size:       o.Size,
		Quality:    o.Quality,
		HTTPClient: r.client(o.Timeout),
	})
	if err != nil {
		return nil, err
	}

	metrics := services.NewWhoopService(r.config.Whoop.APIBaseURL, r.client(r.config.Whoop.Timeout))
	return art.NewBridge(metrics, images, recorder, r.logger), nil
}

// openGallery opens the configured database and returns its artwork repository.
func (r *Runner) openGallery() (*sql.DB, *repositories.ArtworkRepository, error) {
	db, err := shared.OpenGallery(r.config.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open gallery: %w", err)
	}
	return db, repositories.NewArtworkRepository(db), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", ui.Styles.Title(title))
	r.writePlain("═══════════════════════════════════════\n")
}
