package main

import (
	"context"
	"encoding/base64"
	"log/slog"
	"os"
	"time"

	"github.com/cleansweep/litterwatch/internal/e2etest"
	"github.com/cleansweep/litterwatch/internal/errors"
	"github.com/cleansweep/litterwatch/internal/logging"
)

func TestAuth(client *e2etest.Client) error {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()
	var err error

	username := "smoketest-" + time.Now().UTC().Format("20060102150405")
	password := "smoketest password"

	if err = client.Signup(ctx, username, password, "citizen"); err != nil {
		return errors.Wrap(err, "signup user")
	}
	if err = client.Login(ctx, username, password); err != nil {
		return errors.Wrap(err, "login user")
	}
	if err = client.Logout(ctx); err != nil {
		return errors.Wrap(err, "logout user")
	}
	if err = client.Login(ctx, username, password); err != nil {
		return errors.Wrap(err, "login user again")
	}
	return nil
}

func TestReportSubmission(client *e2etest.Client) error {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second) //nolint:mnd // inference can be slow
	defer cancel()

	// The fake photo exercises the full submission path; whether it gets
	// accepted or rejected depends on the inference service behind the server.
	image := base64.StdEncoding.EncodeToString([]byte("smoketest image"))
	body, err := client.SubmitReport(ctx, image, 60.1699, 24.9384)
	if err != nil {
		return errors.Wrap(err, "submit report")
	}
	if body["message"] != "accepted" && body["message"] != "rejected" {
		return errors.New("unexpected submission outcome", slog.Any("body", body))
	}
	if _, err = client.PendingReports(ctx); err != nil {
		return errors.Wrap(err, "list pending reports")
	}
	return nil
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only the base URL to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <base-url>")
		os.Exit(1)
	}

	var (
		url    = os.Args[1]
		client *e2etest.Client
		err    error
	)
	ctx = logging.WithAttrs(ctx, slog.String("url", url))

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1)
	}
	if err = client.WaitForReady(ctx, "/api/health"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready", errors.SlogError(err))
		os.Exit(1)
	}
	if err = TestAuth(client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing auth", errors.SlogError(err))
		os.Exit(1)
	}
	if err = TestReportSubmission(client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing report submission", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}
