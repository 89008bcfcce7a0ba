package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/healthart/internal/models"
	"github.com/desertthunder/healthart/internal/repositories"
	"github.com/desertthunder/healthart/internal/shared"
	tu "github.com/desertthunder/healthart/internal/testing"
	"github.com/urfave/cli/v3"
)

// runCLI executes args against the runner's command tree.
func runCLI(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{
		Name:      "healthart",
		Commands:  r.register(),
		Writer:    io.Discard,
		ErrWriter: io.Discard,
	}
	return app.Run(context.Background(), append([]string{"healthart"}, args...))
}

// clearEnv keeps the developer's environment out of config overrides.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		shared.EnvWhoopClientID, shared.EnvWhoopClientSecret, shared.EnvWhoopRedirectURI,
		shared.EnvOpenAIKey, shared.EnvDatabasePath,
	} {
		t.Setenv(k, "")
	}
}

func testConfig(t *testing.T) *shared.Config {
	t.Helper()
	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "gallery.db")
	return config
}

func seedGallery(t *testing.T, config *shared.Config, scores ...float64) []*models.Artwork {
	t.Helper()
	db, err := shared.OpenGallery(config.Database)
	if err != nil {
		t.Fatalf("failed to open gallery: %v", err)
	}
	defer db.Close()

	repo := repositories.NewArtworkRepository(db)
	var artworks []*models.Artwork
	for _, score := range scores {
		art := models.NewArtwork(models.MetricSnapshot{RecoveryScore: score}, "prompt", "image/png", tu.PNG)
		if err := repo.Create(art); err != nil {
			t.Fatalf("failed to seed artwork: %v", err)
		}
		artworks = append(artworks, art)
	}
	return artworks
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.openBrowser == nil {
				t.Error("expected browser opener to be set")
			}
		})

		t.Run("client prefers injected client", func(t *testing.T) {
			injected := &http.Client{}
			runner := NewRunner(RunnerOpts{HTTPClient: injected})
			if runner.client(func() time.Duration { return time.Second }) != injected {
				t.Error("expected injected client")
			}

			runner = NewRunner(RunnerOpts{})
			if c := runner.client(func() time.Duration { return 7 * time.Second }); c.Timeout != 7*time.Second {
				t.Errorf("expected 7s timeout, got %s", c.Timeout)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("writePlainln wraps in newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlainln("done"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "\ndone\n" {
				t.Errorf("expected %q, got %q", "\ndone\n", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writePlain("test"); err == nil {
				t.Fatal("expected error from failing writer")
			}
			if err := runner.writePlainln("test"); err == nil {
				t.Fatal("expected error from failing writer")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		commands := NewRunner(RunnerOpts{}).register()

		want := []string{"setup", "serve", "login", "prompt", "gallery"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			if cmd.Name != want[i] {
				t.Errorf("expected command %q at index %d, got %q", want[i], i, cmd.Name)
			}
		}
	})
}

func TestPromptCommand(t *testing.T) {
	t.Run("prints the prompt", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Logger: shared.NewLogger(io.Discard)})

		if err := runCLI(t, runner, "prompt", "--score", "85"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.HasPrefix(result, "Create an abstract digital artwork representing health data") {
			t.Errorf("unexpected prompt: %s", result)
		}
		if !strings.Contains(result, "vibrant greens and blues, representing high recovery (85% recovery score).") {
			t.Errorf("expected high recovery clause, got %s", result)
		}
		if strings.Contains(result, "Strain") || strings.Contains(result, "HRV") {
			t.Errorf("unset metrics must not appear, got %s", result)
		}
	})

	t.Run("includes zero-valued optional metrics when set", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Logger: shared.NewLogger(io.Discard)})

		if err := runCLI(t, runner, "prompt", "-s", "40", "--strain", "0"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "0/21") {
			t.Errorf("expected strain clause, got %s", output.String())
		}
	})

	t.Run("outputs JSON", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Logger: shared.NewLogger(io.Discard)})

		if err := runCLI(t, runner, "prompt", "--score", "72", "--hrv", "61", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var got struct {
			Snapshot models.MetricSnapshot `json:"snapshot"`
			Prompt   string                `json:"prompt"`
		}
		if err := json.Unmarshal(output.Bytes(), &got); err != nil {
			t.Fatalf("expected valid JSON, got %v: %s", err, output.String())
		}
		if got.Snapshot.RecoveryScore != 72 || got.Snapshot.HRV == nil || *got.Snapshot.HRV != 61 {
			t.Errorf("unexpected snapshot %+v", got.Snapshot)
		}
		if !strings.Contains(got.Prompt, "moderate recovery") {
			t.Errorf("unexpected prompt %s", got.Prompt)
		}
	})

	t.Run("rejects out of range score", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: shared.NewLogger(io.Discard)})

		err := runCLI(t, runner, "prompt", "--score", "101")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("requires score", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: shared.NewLogger(io.Discard)})

		if err := runCLI(t, runner, "prompt"); err == nil {
			t.Error("expected error without --score")
		}
	})
}

func TestSetupCommand(t *testing.T) {
	t.Run("creates config and database", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		configPath := filepath.Join(dir, "config.toml")
		dbPath := filepath.Join(dir, "gallery.db")
		t.Setenv(shared.EnvDatabasePath, dbPath)

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Logger: shared.NewLogger(io.Discard)})

		if err := runCLI(t, runner, "setup", "--config", configPath); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, configPath)
		tu.AssertFileExists(t, dbPath)
		if runner.configPath != configPath {
			t.Errorf("expected runner config path %s, got %s", configPath, runner.configPath)
		}

		result := output.String()
		if !strings.Contains(result, "Created "+configPath) {
			t.Errorf("expected creation message, got %s", result)
		}
		if !strings.Contains(result, "Gallery database ready") {
			t.Errorf("expected database message, got %s", result)
		}
		if !strings.Contains(result, "missing credentials") {
			t.Errorf("expected credentials warning, got %s", result)
		}
	})

	t.Run("keeps existing config", func(t *testing.T) {
		clearEnv(t)
		config := testConfig(t)
		config.Whoop.ClientID = "id"
		config.Whoop.ClientSecret = "secret"
		config.OpenAI.APIKey = "key"
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := shared.SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Logger: shared.NewLogger(io.Discard)})

		if err := runCLI(t, runner, "setup", "--config", configPath); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if strings.Contains(result, "Created") {
			t.Errorf("existing config must not be recreated, got %s", result)
		}
		if !strings.Contains(result, "Credentials configured") {
			t.Errorf("expected credentials message, got %s", result)
		}
		if runner.config.Whoop.ClientID != "id" {
			t.Errorf("expected loaded config, got %+v", runner.config.Whoop)
		}
	})

	t.Run("saves environment credentials", func(t *testing.T) {
		clearEnv(t)
		config := testConfig(t)
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := shared.SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}
		t.Setenv(shared.EnvWhoopClientID, "env-id")
		t.Setenv(shared.EnvWhoopClientSecret, "env-secret")
		t.Setenv(shared.EnvOpenAIKey, "env-key")

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Logger: shared.NewLogger(io.Discard)})
		if err := runCLI(t, runner, "setup", "--config", configPath, "--save-env"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		saved, err := shared.LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}
		if saved.Whoop.ClientID != "env-id" || saved.Whoop.ClientSecret != "env-secret" || saved.OpenAI.APIKey != "env-key" {
			t.Errorf("expected env credentials in file, got %+v %+v", saved.Whoop, saved.OpenAI)
		}
		if saved.Database.Path != config.Database.Path {
			t.Errorf("expected other settings to be kept, got %s", saved.Database.Path)
		}
		if !strings.Contains(output.String(), "Saved environment credentials") {
			t.Errorf("expected save message, got %s", output.String())
		}
	})

	t.Run("without save-env leaves file untouched", func(t *testing.T) {
		clearEnv(t)
		config := testConfig(t)
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := shared.SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}
		t.Setenv(shared.EnvOpenAIKey, "env-key")

		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: shared.NewLogger(io.Discard)})
		if err := runCLI(t, runner, "setup", "--config", configPath); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		saved, err := shared.LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}
		if saved.OpenAI.APIKey != "" {
			t.Errorf("expected file to keep its empty key, got %q", saved.OpenAI.APIKey)
		}
	})

	t.Run("fails on invalid config", func(t *testing.T) {
		clearEnv(t)
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("not = [valid"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: shared.NewLogger(io.Discard)})
		if err := runCLI(t, runner, "setup", "--config", configPath); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestGalleryCommands(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		config := testConfig(t)
		seeded := seedGallery(t, config, 85, 40)

		t.Run("plain", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Config: config, Output: output, Logger: shared.NewLogger(io.Discard)})

			if err := runCLI(t, runner, "gallery", "list"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, "Gallery (2 of 2)") {
				t.Errorf("expected header, got %s", result)
			}
			for _, art := range seeded {
				if !strings.Contains(result, art.ID()) {
					t.Errorf("expected %s in listing, got %s", art.ID(), result)
				}
			}
		})

		t.Run("json", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Config: config, Output: output, Logger: shared.NewLogger(io.Discard)})

			if err := runCLI(t, runner, "g", "list", "--json", "--limit", "1"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			var got []artworkSummary
			if err := json.Unmarshal(output.Bytes(), &got); err != nil {
				t.Fatalf("expected valid JSON, got %v: %s", err, output.String())
			}
			if len(got) != 1 {
				t.Fatalf("expected 1 artwork, got %d", len(got))
			}
			if got[0].Bytes != len(tu.PNG) || got[0].ContentType != "image/png" {
				t.Errorf("unexpected summary %+v", got[0])
			}
		})

		t.Run("csv", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Config: config, Output: output, Logger: shared.NewLogger(io.Discard)})

			if err := runCLI(t, runner, "gallery", "list", "--csv"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.HasPrefix(output.String(), "ID,Sequence,Recovery") {
				t.Errorf("expected CSV header, got %s", output.String())
			}
			if strings.Count(output.String(), "\n") != 3 {
				t.Errorf("expected header and 2 rows, got %s", output.String())
			}
		})

		t.Run("empty", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: output, Logger: shared.NewLogger(io.Discard)})

			if err := runCLI(t, runner, "gallery", "list"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), "No artworks yet") {
				t.Errorf("expected empty message, got %s", output.String())
			}
		})
	})

	t.Run("export", func(t *testing.T) {
		config := testConfig(t)
		seeded := seedGallery(t, config, 72)
		dir := filepath.Join(t.TempDir(), "out")

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: config, Output: output, Logger: shared.NewLogger(io.Discard)})

		if err := runCLI(t, runner, "gallery", "export", "--dir", dir, seeded[0].ID()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(dir, "artwork.png"))
		tu.AssertFileExists(t, filepath.Join(dir, "README.md"))
		if !strings.Contains(output.String(), "Exported to "+dir) {
			t.Errorf("expected export message, got %s", output.String())
		}
	})

	t.Run("export unknown", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: &bytes.Buffer{}, Logger: shared.NewLogger(io.Discard)})

		err := runCLI(t, runner, "gallery", "export", "--dir", t.TempDir(), "missing")
		if !errors.Is(err, shared.ErrArtworkNotFound) {
			t.Errorf("expected ErrArtworkNotFound, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		config := testConfig(t)
		seeded := seedGallery(t, config, 55)

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: config, Output: output, Logger: shared.NewLogger(io.Discard)})

		if err := runCLI(t, runner, "gallery", "delete", seeded[0].ID()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Deleted "+seeded[0].ID()) {
			t.Errorf("expected delete message, got %s", output.String())
		}

		err := runCLI(t, runner, "gallery", "delete", seeded[0].ID())
		if !errors.Is(err, shared.ErrArtworkNotFound) {
			t.Errorf("expected ErrArtworkNotFound on second delete, got %v", err)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: &bytes.Buffer{}, Logger: shared.NewLogger(io.Discard)})

		for _, sub := range []string{"export", "delete"} {
			if err := runCLI(t, runner, "gallery", sub); !errors.Is(err, shared.ErrMissingArgument) {
				t.Errorf("%s: expected ErrMissingArgument, got %v", sub, err)
			}
		}
	})
}

// loginProviders fakes the token endpoint, the recovery API and the image API.
func loginProviders(t *testing.T) *shared.Config {
	t.Helper()

	token := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"access","refresh_token":"refresh","token_type":"bearer","expires_in":3600}`))
	}))
	t.Cleanup(token.Close)

	whoop := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"records":[{"score_state":"SCORED","score":{"recovery_score":85}}]}`))
	}))
	t.Cleanup(whoop.Close)

	images := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"b64_json": base64.StdEncoding.EncodeToString(tu.PNG)}},
		})
	}))
	t.Cleanup(images.Close)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	addr := l.Addr().String()
	l.Close()

	config := testConfig(t)
	config.Whoop.ClientID = "client-id"
	config.Whoop.ClientSecret = "client-secret"
	config.Whoop.RedirectURI = "http://" + addr + "/callback"
	config.Whoop.AuthURL = "https://provider.test/oauth/auth"
	config.Whoop.TokenURL = token.URL
	config.Whoop.RevokeURL = ""
	config.Whoop.APIBaseURL = whoop.URL
	config.OpenAI.APIKey = "key"
	config.OpenAI.BaseURL = images.URL
	return config
}

// browserWith returns a browser opener that follows the authorization URL straight to the callback.
func browserWith(t *testing.T, redirectURI, code string) func(string) error {
	return func(authURL string) error {
		u, err := url.Parse(authURL)
		if err != nil {
			return err
		}
		callback := redirectURI + "?code=" + code + "&state=" + u.Query().Get("state")
		go func() {
			resp, err := http.Get(callback)
			if err != nil {
				t.Errorf("callback request failed: %v", err)
				return
			}
			resp.Body.Close()
		}()
		return nil
	}
}

func TestLoginCommand(t *testing.T) {
	t.Run("renders art to a file and records it", func(t *testing.T) {
		config := loginProviders(t)
		outPath := filepath.Join(t.TempDir(), "today")

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: config, Output: output, Logger: shared.NewLogger(io.Discard)})
		runner.openBrowser = browserWith(t, config.Whoop.RedirectURI, "good-code")

		if err := runCLI(t, runner, "login", "-o", outPath, "--timeout", "10s"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if tu.MustReadFile(t, outPath+".png") != string(tu.PNG) {
			t.Error("image bytes mismatch")
		}
		result := output.String()
		for _, want := range []string{"Authorized", "85%", "Image saved to " + outPath + ".png", "Gallery id:"} {
			if !strings.Contains(result, want) {
				t.Errorf("expected %q in output, got %s", want, result)
			}
		}

		db, repo, err := runner.openGallery()
		if err != nil {
			t.Fatalf("failed to open gallery: %v", err)
		}
		defer db.Close()
		if n, _ := repo.Count(); n != 1 {
			t.Errorf("expected 1 recorded artwork, got %d", n)
		}
	})

	t.Run("rejected code", func(t *testing.T) {
		config := loginProviders(t)

		runner := NewRunner(RunnerOpts{Config: config, Output: &bytes.Buffer{}, Logger: shared.NewLogger(io.Discard)})
		runner.openBrowser = browserWith(t, config.Whoop.RedirectURI, "bad-code")

		err := runCLI(t, runner, "login", "-o", filepath.Join(t.TempDir(), "x"), "--timeout", "10s", "--no-gallery")
		if !errors.Is(err, shared.ErrTokenExchangeFailed) {
			t.Errorf("expected ErrTokenExchangeFailed, got %v", err)
		}
	})

	t.Run("times out without callback", func(t *testing.T) {
		config := loginProviders(t)

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: config, Output: output, Logger: shared.NewLogger(io.Discard)})
		runner.openBrowser = func(string) error { return errors.New("no display") }

		err := runCLI(t, runner, "login", "--timeout", "50ms", "--no-gallery")
		if !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
		if !strings.Contains(output.String(), "Please open this URL in your browser") {
			t.Errorf("expected manual URL fallback, got %s", output.String())
		}
	})

	t.Run("requires credentials", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: &bytes.Buffer{}, Logger: shared.NewLogger(io.Discard)})

		if err := runCLI(t, runner, "login"); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}
