package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mmrzaf/empgen/internal/app"
	"github.com/mmrzaf/empgen/internal/config"
	"github.com/mmrzaf/empgen/internal/domain"
	"github.com/mmrzaf/empgen/internal/hashing"
	"github.com/mmrzaf/empgen/internal/infra/repos/exports"
	"github.com/mmrzaf/empgen/internal/infra/repos/profiles"
	"github.com/mmrzaf/empgen/internal/logging"
	"github.com/mmrzaf/empgen/internal/registry"
	"github.com/mmrzaf/empgen/internal/validation"
)

var (
	cfg         *config.Config
	historyDB   string
	profilesDir string
	logLevel    string
)

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(run(newRootCmd()))
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "empgen",
		Short:         "Synthetic employee records and spreadsheet export",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&historyDB, "history-db", cfg.HistoryDB, "Export history DSN (SQLite path or postgres:// URL, empty disables)")
	rootCmd.PersistentFlags().StringVar(&profilesDir, "profiles-dir", cfg.ProfilesDir, "Profiles directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "Log level")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(profileCmd())
	return rootCmd
}

// reportedError marks an error a command has already shown to the user.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// run executes root and returns the process exit code.
func run(root *cobra.Command) int {
	err := root.Execute()
	if err == nil {
		return 0
	}
	var reported *reportedError
	if !errors.As(err, &reported) {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	}
	return 1
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

type generateFlags struct {
	count    string
	provider string
	profile  string
	seed     int64
}

func (f *generateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.count, "count", "n", "", "Number of employee records")
	cmd.Flags().StringVar(&f.provider, "provider", "", "Name provider (static|faker)")
	cmd.Flags().StringVar(&f.profile, "profile", "", "Generation profile ID or file")
	cmd.Flags().Int64VarP(&f.seed, "seed", "s", 0, "Seed for RNG")
}

func (f *generateFlags) session(cmd *cobra.Command, svc *app.ExportService) *app.Session {
	s := app.NewSession(svc)
	s.SetProvider(f.provider)
	s.SetProfile(f.profile)
	if cmd.Flags().Changed("seed") {
		seed := f.seed
		s.SetSeed(&seed)
	}
	return s
}

func newService(logger *logging.Logger) (*app.ExportService, exports.Repository, error) {
	history, err := exports.Open(historyDB)
	if err != nil {
		return nil, nil, err
	}
	svc := app.NewExportService(
		profiles.NewFileRepository(profilesDir),
		history,
		registry.DefaultProviderRegistry(),
		logger,
		app.ServiceOptions{MaxCount: cfg.MaxCount, DefaultProvider: cfg.NameProvider},
	)
	return svc, history, nil
}

func generateCmd() *cobra.Command {
	var flags generateFlags
	var format string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a batch of employee records",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewLogger(logLevel)
			svc, history, err := newService(logger)
			if err != nil {
				return err
			}
			defer history.Close()

			batch, err := flags.session(cmd, svc).Generate(flags.count)
			if err != nil {
				return err
			}

			switch format {
			case "json":
				data, _ := json.MarshalIndent(batch, "", "  ")
				fmt.Println(string(data))
			case "yaml":
				data, _ := yaml.Marshal(batch)
				fmt.Println(string(data))
			default:
				printRecords(batch.Records)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", "table", "Output format (table|json|yaml)")
	return cmd
}

func printRecords(records []domain.EmployeeRecord) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(domain.Columns, "\t")))
	for _, r := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", r.EmployeeID, r.FullName, r.Department, r.Salary, r.HireDate)
	}
	w.Flush()
}

func exportCmd() *cobra.Command {
	var flags generateFlags
	var folder string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Generate records and save them as employees.xlsx",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewLogger(logLevel)
			svc, history, err := newService(logger)
			if err != nil {
				return err
			}
			defer history.Close()

			s := flags.session(cmd, svc)
			if folder != "" {
				if err := s.SelectFolder(folder); err != nil {
					return err
				}
			}
			if _, err := s.Generate(flags.count); err != nil {
				return err
			}

			exp, err := s.Export()
			if err != nil {
				if exp == nil {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), app.FailureMessage(err))
				return &reportedError{err: err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), app.SuccessMessage(exp.Path))
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&folder, "folder", "", "Destination folder (must exist)")
	return cmd
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect export history",
	}

	var limit int
	var status string
	var format string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := exports.Open(historyDB)
			if err != nil {
				return err
			}
			defer repo.Close()

			list, err := repo.List(limit, status)
			if err != nil {
				return err
			}

			if format == "json" {
				data, _ := json.MarshalIndent(list, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tROWS\tSTARTED\tPATH")
			for _, r := range list {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
					shortID(r.ID), r.Status, r.Rows, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Path)
			}
			w.Flush()
			return nil
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Limit results")
	listCmd.Flags().StringVar(&status, "status", "", "Filter by status")
	listCmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")

	showCmd := &cobra.Command{
		Use:   "show <export_id>",
		Short: "Show export details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := exports.Open(historyDB)
			if err != nil {
				return err
			}
			defer repo.Close()

			run, err := repo.Get(args[0])
			if err != nil {
				return err
			}

			data, _ := yaml.Marshal(run)
			fmt.Println(string(data))
			return nil
		},
	}

	cmd.AddCommand(listCmd, showCmd)
	return cmd
}

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage generation profiles",
	}

	var format string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := profiles.NewFileRepository(profilesDir).List()
			if err != nil {
				return err
			}

			if format == "json" {
				data, _ := json.MarshalIndent(list, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPROVIDER\tDEPARTMENTS")
			for _, p := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Provider, len(p.Departments))
			}
			w.Flush()
			return nil
		},
	}
	listCmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")

	showCmd := &cobra.Command{
		Use:   "show [id|path]",
		Short: "Show a profile with defaults applied",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := domain.DefaultProfileID
			if len(args) == 1 {
				ref = args[0]
			}
			profile, err := loadProfile(ref)
			if err != nil {
				return err
			}

			data, _ := yaml.Marshal(profile.WithDefaults())
			fmt.Println(string(data))
			return nil
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate <id|path>",
		Short: "Validate a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile(args[0])
			if err != nil {
				return err
			}

			validator := validation.NewValidator(registry.DefaultProviderRegistry())
			if err := validator.ValidateProfile(profile); err != nil {
				fmt.Printf("Validation failed: %v\n", err)
				return err
			}

			hash, err := hashing.HashProfile(profile)
			if err != nil {
				return err
			}
			fmt.Printf("Profile '%s' is valid (hash %s)\n", profile.WithDefaults().Name, hash[:12])
			return nil
		},
	}

	cmd.AddCommand(listCmd, showCmd, validateCmd)
	return cmd
}

func loadProfile(ref string) (*domain.Profile, error) {
	repo := profiles.NewFileRepository(profilesDir)
	if strings.Contains(ref, "/") || strings.HasSuffix(ref, ".yaml") || strings.HasSuffix(ref, ".yml") || strings.HasSuffix(ref, ".json") {
		return repo.GetByPath(ref)
	}
	return repo.Get(ref)
}
