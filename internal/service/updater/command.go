package updater

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/alarm-node/internal/config"
	"github.com/oshokin/alarm-node/internal/logger"
	"github.com/oshokin/alarm-node/internal/version"
)

var (
	errNoURL         = errors.New("update url is not configured")
	errNoChecksum    = errors.New("update checksum is not configured")
	errBadHTTPStatus = errors.New("unexpected http status")
)

// Options are inputs accepted by the updater entry point.
type Options struct {
	// ConfigPath is the optional path to settings YAML file.
	ConfigPath string
	// URL overrides update.url.
	URL string
	// Checksum overrides update.checksum (base64 SHA-512).
	Checksum string
	// TargetPath is the binary to replace, the running executable if empty.
	TargetPath string
	// Restart stops the node recorded in node.pid_file after the update.
	Restart bool
}

// Run downloads the configured binary and applies it over the target.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "update")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	source := firstNonEmpty(opts.URL, settings.Update.URL)
	if source == "" {
		return errNoURL
	}

	encodedChecksum := firstNonEmpty(opts.Checksum, settings.Update.Checksum)
	if encodedChecksum == "" {
		return errNoChecksum
	}

	checksum, err := base64.StdEncoding.DecodeString(encodedChecksum)
	if err != nil {
		return fmt.Errorf("decode checksum: %w", err)
	}

	target := opts.TargetPath
	if target == "" {
		if target, err = os.Executable(); err != nil {
			return fmt.Errorf("locate executable: %w", err)
		}
	}

	logger.InfoKV(ctx, "Downloading update", "url", source, "target", target)

	if err = apply(ctx, source, target, checksum); err != nil {
		logger.ErrorKV(ctx, "Update failed", "error", err)
		return err
	}

	logger.InfoKV(ctx, "Update applied", "target", target)

	if !opts.Restart {
		return nil
	}

	stopped, err := terminateNode(settings.Node.PIDFile, filepath.Base(target))
	if err != nil {
		return fmt.Errorf("stop running node: %w", err)
	}

	if !stopped {
		logger.InfoKV(ctx, "No running node to stop", "pid_file", settings.Node.PIDFile)
		return nil
	}

	logger.InfoKV(ctx, "Stopped running node", "pid_file", settings.Node.PIDFile)

	return nil
}

// apply streams the download into go-update, which verifies the checksum before swapping files.
func apply(ctx context.Context, source, target string, checksum []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, http.NoBody)
	if err != nil {
		return err
	}

	req.Header.Set("User-Agent", version.UserAgent())

	response, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", source, err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("%s, %s: %w", source, response.Status, errBadHTTPStatus)
	}

	options := goupdate.Options{
		TargetPath: target,
		TargetMode: DefaultFileMode,
		Checksum:   checksum,
		Hash:       DefaultChecksumFunction,
	}

	if err = goupdate.Apply(response.Body, options); err != nil {
		return fmt.Errorf("apply update: %w", err)
	}

	oldFileName := filepath.Join(filepath.Dir(target), "."+filepath.Base(target)+".old")
	if _, err = os.Stat(oldFileName); err == nil {
		_ = os.Remove(oldFileName)
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
