// Command curricore operates a curriculum store from the command line:
// catalog CSV import/export, syllabus document export, and course
// translation against the configured collaborator service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"curricore/internal/blob"
	"curricore/internal/core"
	"curricore/internal/export"
	"curricore/internal/translate"
	"curricore/pkg/domain"
)

const usage = `usage: curricore [-trace] <command> [flags]

commands:
  export-syllabus   render one course syllabus into the blob store
  export-catalog    write the course catalog CSV into the blob store
  import-catalog    import a catalog CSV file
  translate-course  fill English fields of a course via the translation service

CURRICORE_METRICS selects a metrics recorder (prometheus|expvar).
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "curricore:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("curricore", flag.ExitOnError)
	trace := global.Bool("trace", false, "emit JSON trace spans to stderr")
	if err := global.Parse(args); err != nil {
		return err
	}
	args = global.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("command required")
	}

	logger, err := core.NewZapLogger(nil)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	opts := []core.ServiceOption{core.WithLogger(logger)}
	metrics, err := core.MetricsFromEnv()
	if err != nil {
		return err
	}
	if metrics != nil {
		opts = append(opts, core.WithMetrics(metrics))
	}
	if *trace {
		opts = append(opts, core.WithTracer(core.NewJSONTracer(os.Stderr)))
	}

	store, err := core.OpenPersistentStore(core.NewDefaultRulesEngine())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	svc := core.NewService(store, opts...)
	ctx := context.Background()

	switch args[0] {
	case "export-syllabus":
		fs := flag.NewFlagSet("export-syllabus", flag.ExitOnError)
		courseID := fs.String("course", "", "course id to export")
		lang := fs.String("lang", "vi", "output language (vi|en)")
		dialect := fs.String("dialect", "ABET", "accreditation dialect (ABET|MOET)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *courseID == "" {
			return fmt.Errorf("-course required")
		}
		blobs, err := blob.Open(ctx)
		if err != nil {
			return fmt.Errorf("open blob store: %w", err)
		}
		exporter := export.NewService(store, blobs, export.WithLogger(logger))
		info, err := exporter.ExportSyllabus(ctx, *courseID, domain.Language(*lang), domain.Dialect(*dialect))
		if err != nil {
			return err
		}
		fmt.Printf("exported %s (%d bytes)\n", info.Key, info.Size)
		return nil

	case "export-catalog":
		blobs, err := blob.Open(ctx)
		if err != nil {
			return fmt.Errorf("open blob store: %w", err)
		}
		exporter := export.NewService(store, blobs, export.WithLogger(logger))
		info, err := exporter.ExportCatalogCSV(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("exported %s (%d bytes)\n", info.Key, info.Size)
		return nil

	case "import-catalog":
		fs := flag.NewFlagSet("import-catalog", flag.ExitOnError)
		file := fs.String("file", "", "catalog CSV file to import")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *file == "" {
			return fmt.Errorf("-file required")
		}
		data, err := os.ReadFile(*file)
		if err != nil {
			return err
		}
		blobs := blob.NewMemory() // import has no artifact output
		exporter := export.NewService(store, blobs, export.WithLogger(logger))
		count, err := exporter.ImportCatalogCSV(ctx, data)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d courses\n", count)
		return nil

	case "translate-course":
		fs := flag.NewFlagSet("translate-course", flag.ExitOnError)
		courseID := fs.String("course", "", "course id to translate")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *courseID == "" {
			return fmt.Errorf("-course required")
		}
		client, err := translate.NewClientFromEnv()
		if err != nil {
			return err
		}
		report, _, err := svc.TranslateCourse(ctx, *courseID, client)
		if err != nil {
			return err
		}
		fmt.Printf("translated %d of %d fields (%d declined)\n", report.Applied, report.Requested, report.Declined)
		return nil

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}
