package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"resume-redactor/internal/config"
	"resume-redactor/internal/domain"
	"resume-redactor/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const maskedPrefix = "masked_"

// serviceFactory builds the resume service and a cleanup func.
type serviceFactory func(ctx context.Context) (domain.ResumeService, func() error, error)

type options struct {
	output  string
	summary bool
	jsonOut bool
	roles   []string
	fields  map[string]*string
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand(containerServices, os.Stdout)
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func containerServices(ctx context.Context) (domain.ResumeService, func() error, error) {
	cfg := config.NewConfig()
	container, err := config.NewContainerWithLogger(ctx, cfg, logger.NewLoggerWithWriter(cfg.GetLogLevel(), os.Stderr))
	if err != nil {
		return nil, nil, err
	}
	return container.ResumeService, container.Close, nil
}

func newRootCommand(newService serviceFactory, stdout io.Writer) *cobra.Command {
	opts := &options{fields: map[string]*string{}}

	cmd := &cobra.Command{
		Use:   "redact <resume.pdf>",
		Short: "Black out contact details in a resume PDF",
		Long: `Redact emails, phone numbers and profile links from a resume PDF and
write the result next to the input as masked_<name>.pdf.

With --summary the candidate details given as flags are combined with the
resume text into a structured summary.

Example:
  redact cv.pdf
  redact cv.pdf --out /tmp/clean.pdf --json
  redact cv.pdf --summary --name "Jane Doe" --companies "Acme, Globex" --role "Led platform team"`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), newService, opts, args[0], stdout)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "out", "o", "", "output path (default masked_<name> beside the input)")
	flags.BoolVar(&opts.summary, "summary", false, "also generate the candidate summary")
	flags.BoolVar(&opts.jsonOut, "json", false, "print the redaction report as JSON")
	flags.StringArrayVar(&opts.roles, "role", nil, "role or responsibility handled (repeatable)")

	for _, f := range []struct{ key, usage string }{
		{domain.FormName, "candidate name"},
		{domain.FormEducation, "education"},
		{domain.FormTotalExperience, "total work experience"},
		{domain.FormRelevantExperience, "relevant work experience"},
		{domain.FormCompanies, "comma-separated companies worked for"},
		{domain.FormCurrentCTC, "current CTC"},
		{domain.FormExpectedCTC, "expected CTC"},
		{domain.FormNoticePeriod, "notice period"},
		{domain.FormCurrentLocation, "current location"},
		{domain.FormReasonForSwitch, "reason for switch"},
	} {
		opts.fields[f.key] = flags.String(flagName(f.key), "", f.usage)
	}

	return cmd
}

func flagName(formKey string) string {
	return strings.ReplaceAll(formKey, "_", "-")
}

func run(ctx context.Context, newService serviceFactory, opts *options, input string, stdout io.Writer) error {
	output := opts.output
	if output == "" {
		output = defaultOutputPath(input)
	}

	svc, closeFn, err := newService(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	var (
		report  *domain.RedactionReport
		summary string
	)
	if opts.summary {
		result, err := svc.Process(ctx, input, output, opts.candidate())
		if err != nil {
			return err
		}
		report, summary = result.Report, result.Summary
	} else {
		if report, err = svc.Redact(ctx, input, output); err != nil {
			return err
		}
	}

	if opts.jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(stdout, "Redacted %d region(s) across %d page(s) -> %s\n", len(report.Marks), report.PageCount, output)
		if n := report.ExcludedCount(); n > 0 {
			fmt.Fprintf(stdout, "Skipped %d date-like match(es)\n", n)
		}
	}
	if summary != "" {
		fmt.Fprintf(stdout, "\n%s\n", strings.TrimSpace(summary))
	}
	return nil
}

func (o *options) candidate() domain.CandidateInfo {
	return domain.ParseCandidateForm(func(key string) string {
		if key == domain.FormRoles {
			return strings.Join(o.roles, "\n")
		}
		if v, ok := o.fields[key]; ok {
			return *v
		}
		return ""
	})
}

func defaultOutputPath(input string) string {
	return filepath.Join(filepath.Dir(input), maskedPrefix+filepath.Base(input))
}
