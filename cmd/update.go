package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/shaharia-lab/oxo/internal/build"
)

const releaseSlug = "shaharia-lab/oxo"

// NewUpdateCmd returns the "update" subcommand that self-updates the binary.
func NewUpdateCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update oxo to the latest release",
		Long:  "Check GitHub releases for a newer version of oxo and update the binary in place.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUpdate(cmd.Context(), cmd.OutOrStdout(), cmd.InOrStdin(), yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation prompt")
	return cmd
}

func runUpdate(ctx context.Context, out io.Writer, in io.Reader, skipConfirm bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	current, err := releaseVersion(build.Version)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Current version: %s\n", current)
	fmt.Fprint(out, "Checking for updates... ")

	updater, err := selfupdate.NewUpdater(selfupdate.Config{})
	if err != nil {
		return fmt.Errorf("creating updater: %w", err)
	}

	release, found, err := updater.DetectLatest(ctx, selfupdate.ParseSlug(releaseSlug))
	if err != nil {
		return fmt.Errorf("checking for updates: %w", err)
	}
	if !found {
		fmt.Fprintln(out, "already up to date.")
		return nil
	}

	newer, err := isNewer(current, release.Version())
	if err != nil {
		return err
	}
	if !newer {
		fmt.Fprintln(out, "already up to date.")
		return nil
	}

	fmt.Fprintf(out, "found %s\n", release.Version())

	if !skipConfirm {
		fmt.Fprintf(out, "Update to %s? [y/N] ", release.Version())
		var input string
		fmt.Fscanln(in, &input) //nolint:errcheck
		if input != "y" && input != "Y" {
			fmt.Fprintln(out, "Update canceled.")
			return nil
		}
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("finding current executable: %w", err)
	}

	fmt.Fprintf(out, "Updating to %s...\n", release.Version())
	if err := updater.UpdateTo(ctx, release, exe); err != nil {
		return fmt.Errorf("updating: %w", err)
	}

	fmt.Fprintf(out, "Updated to %s. Restart oxo to use the new version.\n", release.Version())
	return nil
}

// releaseVersion parses the build version. Untagged builds ("dev", "unknown")
// cannot be updated.
func releaseVersion(v string) (*semver.Version, error) {
	parsed, err := semver.NewVersion(v)
	if err != nil {
		return nil, fmt.Errorf("cannot update a dev build (%q); install a tagged release first", v)
	}
	return parsed, nil
}

// isNewer reports whether candidate is a strictly greater semantic version than current.
func isNewer(current *semver.Version, candidate string) (bool, error) {
	c, err := semver.NewVersion(candidate)
	if err != nil {
		return false, fmt.Errorf("parsing release version %q: %w", candidate, err)
	}
	return c.GreaterThan(current), nil
}
