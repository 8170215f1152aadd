package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/soyunomas/dupehash/internal/config"
	"github.com/soyunomas/dupehash/internal/engine"
	"github.com/soyunomas/dupehash/internal/hasher"
	"github.com/soyunomas/dupehash/internal/logger"
	"github.com/soyunomas/dupehash/internal/scanner"
)

// Códigos de salida
const (
	exitOK          = 0
	exitFatal       = 1
	exitInterrupted = 130
)

type flags struct {
	dir        string
	delete     bool
	trash      string
	name       string
	workers    int
	algorithm  string
	keep       string
	symlinks   string
	jsonOut    bool
	output     string
	configPath string
	logLevel   string
	quiet      bool
	saveConfig bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute corre el comando y traduce el resultado a código de salida.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	start := time.Now()
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, engine.ErrInterrupted):
		fmt.Fprintf(stderr, "\n⛔ Interrumpido. Tiempo transcurrido: %s\n", time.Since(start).Round(time.Millisecond))
		return exitInterrupted
	default:
		fmt.Fprintf(stderr, "❌ Error fatal: %v\n", err)
		return exitFatal
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "dupehash [dir]",
		Short: "Encuentra (y opcionalmente borra) archivos duplicados por contenido",
		Long: `dupehash recorre un directorio, calcula el hash de contenido de cada archivo
regular en paralelo y agrupa los que son idénticos byte a byte.

En cada grupo se conserva un original (el primero encontrado, o según --keep);
el resto se listan como duplicados y, con --delete o --trash, se eliminan.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if cmd.Flags().Changed("dir") {
					return fmt.Errorf("%w: usa --dir o el argumento posicional, no ambos", engine.ErrInvalidArgument)
				}
				f.dir = args[0]
			}
			return runScan(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.dir, "dir", "d", ".", "Directorio a escanear")
	fl.BoolVar(&f.delete, "delete", false, "⚠️  BORRADO NUCLEAR: Elimina los duplicados inmediatamente")
	fl.StringVar(&f.trash, "trash", "", "♻️  SOFT DELETE: Mueve los duplicados a esta carpeta")
	fl.StringVarP(&f.name, "name", "n", "", "Expresión regular sobre el nombre del archivo")
	fl.IntVarP(&f.workers, "workers", "w", 0, "Workers de hashing (0 = número de CPUs)")
	fl.StringVarP(&f.algorithm, "algorithm", "a", hasher.DefaultAlgorithm, fmt.Sprintf("Algoritmo de hash %v", hasher.Names()))
	fl.StringVarP(&f.keep, "keep", "k", "first", "Criterio del original: first, shortest, longest, oldest, newest")
	fl.StringVar(&f.symlinks, "symlinks", "none", "Symlinks: none (ignorar) o files (hashear los que apuntan a archivos)")
	fl.BoolVar(&f.jsonOut, "json", false, "Salida en formato JSON a stdout")
	fl.StringVarP(&f.output, "output", "o", "", "Genera un script .sh con los borrados")
	fl.StringVar(&f.configPath, "config", "", "Archivo de configuración INI (por defecto "+config.DefaultPath()+")")
	fl.StringVar(&f.logLevel, "log-level", "", "Nivel de log: debug, info, warn, error")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "Sin progreso en stderr")
	fl.BoolVar(&f.saveConfig, "save-config", false, "Guarda la configuración efectiva (archivo + flags) en --config o la ruta por defecto y sale")

	cmd.MarkFlagsMutuallyExclusive("delete", "trash", "output")
	cmd.MarkFlagsMutuallyExclusive("json", "output")

	return cmd
}

func runScan(cmd *cobra.Command, f *flags) error {
	cfg, err := config.Load(f.configPath)
	switch {
	case err == nil:
	case f.saveConfig && errors.Is(err, fs.ErrNotExist):
		// --save-config puede crear el archivo indicado en --config
		cfg = config.Default()
	default:
		return err
	}
	mergeFlags(cmd, f, cfg)

	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	if f.saveConfig {
		path := f.configPath
		if path == "" {
			path = config.DefaultPath()
		}
		if path == "" {
			return fmt.Errorf("%w: no hay ruta de configuración; usa --config", engine.ErrInvalidArgument)
		}
		if err := cfg.Save(path); err != nil {
			return fmt.Errorf("guardando configuración: %w", err)
		}
		fmt.Fprintf(stdout, "💾 Configuración guardada en %s\n", path)
		return nil
	}

	log, err := logger.New(stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("%w: %w", engine.ErrInvalidArgument, err)
	}

	strategy, err := engine.ParseKeepStrategy(cfg.Scan.Keep)
	if err != nil {
		return err
	}
	symlinks, err := scanner.ParseSymlinkMode(cfg.Scan.Symlinks)
	if err != nil {
		return err
	}

	opts := engine.Options{
		Algorithm: cfg.Scan.Algorithm,
		BlockSize: cfg.Scan.BlockSize,
		Workers:   cfg.Scan.Workers,
		Strategy:  strategy,
		Symlinks:  symlinks,
		Excludes:  cfg.Scan.Excludes,
		Logger:    log,
	}

	// La compilación del patrón es responsabilidad del llamador
	if f.name != "" {
		re, err := regexp.Compile(f.name)
		if err != nil {
			return fmt.Errorf("%w: patrón --name: %w", engine.ErrInvalidArgument, err)
		}
		opts.Matcher = re
	}

	switch {
	case f.delete:
		opts.Delete = true
		opts.Remover = engine.OSRemover
	case f.trash != "":
		opts.Delete = true
		opts.Remover = engine.TrashRemover{Dir: f.trash}
		// Nunca escanear nuestra propia papelera (solo esa ruta, no otras homónimas)
		opts.ExcludePaths = []string{f.trash}
	}

	jsonMode := cfg.Output.Format == "json"
	if !jsonMode && !f.quiet {
		p := newProgress(stderr)
		opts.OnFound = p.found
		opts.Progress = p.hashed
	}

	runner, err := engine.New(opts)
	if err != nil {
		return err
	}

	if !jsonMode {
		fmt.Fprintf(stdout, "🚀 dupehash - Escaneando: %s\n", f.dir)
		fmt.Fprintf(stdout, "⚖️  Algoritmo: %s | Original: %s\n", cfg.Scan.Algorithm, strategy)
		fmt.Fprintln(stdout, "------------------------------------------------")
	}

	rep, err := runner.Run(cmd.Context(), f.dir)
	if err != nil {
		return err
	}

	out := generateReport(rep, cfg.Scan.Algorithm, strategy.String())

	if jsonMode {
		return printJSON(stdout, out)
	}
	if f.output != "" {
		if err := generateShellScript(out, f.output); err != nil {
			return fmt.Errorf("generando script: %w", err)
		}
		printText(stdout, out, opts.Delete)
		fmt.Fprintf(stdout, "\n📄 Script generado: %s\n", f.output)
		return nil
	}
	printText(stdout, out, opts.Delete)
	return nil
}

// mergeFlags: los flags explícitos pisan al archivo de configuración.
func mergeFlags(cmd *cobra.Command, f *flags, cfg *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("algorithm") {
		cfg.Scan.Algorithm = f.algorithm
	}
	if fl.Changed("workers") {
		cfg.Scan.Workers = f.workers
	}
	if fl.Changed("keep") {
		cfg.Scan.Keep = f.keep
	}
	if fl.Changed("symlinks") {
		cfg.Scan.Symlinks = f.symlinks
	}
	if fl.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if f.jsonOut {
		cfg.Output.Format = "json"
	}
}

// progress imprime el avance en stderr sobre una sola línea.
type progress struct {
	w    io.Writer
	last time.Time
}

func newProgress(w io.Writer) *progress {
	return &progress{w: w}
}

func (p *progress) found(n int) {
	if n%500 == 0 {
		fmt.Fprintf(p.w, "\r🔍 Archivos encontrados: %s   ", humanize.Comma(int64(n)))
	}
}

func (p *progress) hashed(done, total int) {
	if done != total && time.Since(p.last) < 100*time.Millisecond {
		return
	}
	p.last = time.Now()
	fmt.Fprintf(p.w, "\r#️⃣  Progreso: %s/%s   ", humanize.Comma(int64(done)), humanize.Comma(int64(total)))
	if done == total {
		fmt.Fprintln(p.w)
	}
}
