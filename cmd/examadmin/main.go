// Command examadmin is the operator console for the registration portal:
// daily summary, record listing, bulk exam number import, grid edits from CSV,
// lookup seeding and development tokens.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
)

const usage = `usage: examadmin [-server URL] [-token TOKEN] <command> [args]

commands:
  summary                      print the daily registration summary
  records [-type CODE] [-name TEXT] [-church TEXT]
                               list examinee records
  import-exam-numbers FILE     apply registration_no,exam_number rows from CSV
  patch-records FILE           apply registration_no,<field>... edits from CSV
  seed-lookups                 load the default lookup codes into Postgres
  token -account ID -email E   issue an applicant bearer token for testing
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	global := flag.NewFlagSet("examadmin", flag.ContinueOnError)
	global.SetOutput(out)
	global.Usage = func() { fmt.Fprint(out, usage) }
	server := global.String("server", envOr("EXAMREG_SERVER_URL", "http://localhost:8080"), "portal base URL")
	token := global.String("token", os.Getenv("EXAMREG_ADMIN_TOKEN"), "admin token")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return fmt.Errorf("missing command")
	}

	client := newAdminClient(*server, *token)
	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "summary":
		return runSummary(ctx, client, out)
	case "records":
		return runRecords(ctx, client, rest, out)
	case "import-exam-numbers":
		return runImportExamNumbers(ctx, client, rest, out)
	case "patch-records":
		return runPatchRecords(ctx, client, rest, out)
	case "seed-lookups":
		return runSeedLookups(ctx, out)
	case "token":
		return runToken(rest, out)
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
