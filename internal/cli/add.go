package cli

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/changekit/changekit/internal/errors"
	"github.com/changekit/changekit/internal/output"
	"github.com/changekit/changekit/internal/record"
	"github.com/changekit/changekit/internal/store"
)

var (
	addIDFlag       string
	addKindFlag     string
	addPackagesFlag []string
	addMessageFlag  string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a change",
	Long: `Record a change for one or more packages.

With --kind, --package, and --message the record is created directly;
missing values are prompted for interactively. The record id defaults to
a slug derived from the message.

Examples:
  changekit add --kind fix --package sdk/core --message "Fixed retry loop"
  changekit add --kind feature --package sdk/core --package sdk/storage \
      --message "Added shared streaming client"
  changekit add          # interactive`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAdd(cmd)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVar(&addIDFlag, "id", "", "Record id (default: derived from the message)")
	addCmd.Flags().StringVar(&addKindFlag, "kind", "", "Change kind: "+strings.Join(record.KindNames(), ", "))
	addCmd.Flags().StringArrayVar(&addPackagesFlag, "package", nil, "Affected package path (repeatable)")
	addCmd.Flags().StringVar(&addMessageFlag, "message", "", "Changelog text for this change")
}

func runAdd(cmd *cobra.Command) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	kindStr := addKindFlag
	if kindStr == "" {
		kindStr, err = promptLine(reader, cmd.OutOrStdout(),
			fmt.Sprintf("Change kind (%s): ", strings.Join(record.KindNames(), ", ")))
		if err != nil {
			return errors.Wrap(err, errors.Runtime)
		}
	}

	kind, err := record.ParseKind(kindStr)
	if err != nil {
		return argumentError(err)
	}

	pkgs := addPackagesFlag
	if len(pkgs) == 0 {
		pkgs, err = promptPackages(reader, cmd.OutOrStdout(), ws.store)
		if err != nil {
			return err
		}
	}

	message := strings.TrimSpace(addMessageFlag)
	if message == "" {
		message, err = promptLine(reader, cmd.OutOrStdout(), "Describe the change: ")
		if err != nil {
			return errors.Wrap(err, errors.Runtime)
		}
		message = strings.TrimSpace(message)
	}
	if message == "" {
		return errors.NewArgumentError("a change description is required",
			"pass --message or enter a description at the prompt")
	}

	id := addIDFlag
	if id == "" {
		id = generateID(message)
	}

	rec := record.ChangeRecord{
		ID:          id,
		Kind:        kind,
		Packages:    pkgs,
		Description: message,
		Created:     time.Now().UTC(),
	}

	if err := ws.store.Add(rec); err != nil {
		return argumentError(err)
	}

	output.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("recorded %s (%s) for %s", rec.ID, rec.Kind, strings.Join(pkgs, ", ")))
	return nil
}

// argumentError maps store validation failures to structured argument
// errors with remediation, leaving other errors untouched.
func argumentError(err error) error {
	var invalidKind *record.InvalidKindError
	if stderrors.As(err, &invalidKind) {
		return errors.NewArgumentError(err.Error(),
			"use one of: "+strings.Join(record.KindNames(), ", "))
	}

	var emptySet *record.EmptyPackageSetError
	if stderrors.As(err, &emptySet) {
		return errors.NewArgumentError(err.Error(),
			"pass --package at least once, or select a package at the prompt")
	}

	var dup *store.DuplicateIDError
	if stderrors.As(err, &dup) {
		return errors.NewArgumentError(err.Error(),
			"pass a different --id, or omit --id to derive one from the message")
	}

	return err
}

// promptLine reads one line of input after printing a prompt.
func promptLine(reader *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPackages asks for affected packages, listing the registered ones.
func promptPackages(reader *bufio.Reader, out io.Writer, s *store.Store) ([]string, error) {
	registered, err := s.ListPackages()
	if err != nil {
		return nil, errors.Wrap(err, errors.Runtime)
	}
	if len(registered) > 0 {
		fmt.Fprintln(out, "Registered packages:")
		for _, pkg := range registered {
			fmt.Fprintf(out, "  %s\n", pkg)
		}
	}

	line, err := promptLine(reader, out, "Affected packages (comma-separated): ")
	if err != nil {
		return nil, errors.Wrap(err, errors.Runtime)
	}

	var pkgs []string
	for _, part := range strings.Split(line, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			pkgs = append(pkgs, trimmed)
		}
	}
	if len(pkgs) == 0 {
		return nil, errors.NewArgumentError("at least one affected package is required",
			"pass --package at least once, or enter package paths at the prompt")
	}
	return pkgs, nil
}

// generateID derives a record id from the change description plus a
// timestamp suffix to keep ids unique across similar messages.
func generateID(message string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(message) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}

	slug := strings.Trim(b.String(), "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	if len(slug) > 40 {
		slug = strings.Trim(slug[:40], "-")
	}
	if slug == "" {
		slug = "change"
	}

	return fmt.Sprintf("%s-%d", slug, time.Now().Unix()%1000000)
}
