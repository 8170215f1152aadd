// Package config carga la configuración de dupehash desde un archivo INI.
//
// Ejemplo:
//
//	[scan]
//	algorithm  = xxhash
//	workers    = 0
//	block_size = 4096
//	symlinks   = none
//	keep       = first
//	excludes   = .git, node_modules
//
//	[output]
//	format = text
//
//	[log]
//	level  = warn
//	format = text
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
)

// FileName es el nombre del archivo dentro del directorio de configuración del usuario.
const FileName = "config.ini"

// ScanConfig son las opciones del motor.
type ScanConfig struct {
	Algorithm string
	Workers   int
	BlockSize int
	Symlinks  string
	Keep      string
	Excludes  []string
}

// OutputConfig define el formato de salida: text o json.
type OutputConfig struct {
	Format string
}

// LogConfig define nivel (debug, info, warn, error) y formato (text, json) del log.
type LogConfig struct {
	Level  string
	Format string
}

// Config agrupa todas las secciones.
type Config struct {
	Path   string // Archivo del que se cargó; vacío si son defaults
	Scan   ScanConfig
	Output OutputConfig
	Log    LogConfig
}

// Default devuelve la configuración sin archivo.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			Algorithm: "xxhash",
			Workers:   0,
			BlockSize: 4096,
			Symlinks:  "none",
			Keep:      "first",
			Excludes:  []string{".git", "node_modules", "TRASH_BIN"},
		},
		Output: OutputConfig{Format: "text"},
		Log:    LogConfig{Level: "warn", Format: "text"},
	}
}

// DefaultPath es $XDG_CONFIG_HOME/dupehash/config.ini (o el equivalente del SO).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "dupehash", FileName)
}

// Load lee path sobre los valores por defecto. Si path es vacío se usa
// DefaultPath y su ausencia no es un error; un path explícito debe existir.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("no se pudo acceder al archivo de configuración: %w", err)
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("no se pudo cargar el archivo de configuración: %w", err)
	}
	if err := cfg.apply(file); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

func (c *Config) apply(f *ini.File) error {
	scan := f.Section("scan")
	c.Scan.Algorithm = scan.Key("algorithm").MustString(c.Scan.Algorithm)
	c.Scan.Symlinks = scan.Key("symlinks").MustString(c.Scan.Symlinks)
	c.Scan.Keep = scan.Key("keep").MustString(c.Scan.Keep)

	if scan.HasKey("workers") {
		n, err := scan.Key("workers").Int()
		if err != nil || n < 0 {
			return fmt.Errorf("valor de workers inválido %q", scan.Key("workers").String())
		}
		c.Scan.Workers = n
	}
	if scan.HasKey("block_size") {
		n, err := scan.Key("block_size").Int()
		if err != nil || n <= 0 {
			return fmt.Errorf("valor de block_size inválido %q", scan.Key("block_size").String())
		}
		c.Scan.BlockSize = n
	}
	if scan.HasKey("excludes") {
		c.Scan.Excludes = nil
		for _, e := range scan.Key("excludes").Strings(",") {
			if e = strings.TrimSpace(e); e != "" {
				c.Scan.Excludes = append(c.Scan.Excludes, e)
			}
		}
	}

	output := f.Section("output")
	c.Output.Format = oneOf(output.Key("format"), c.Output.Format, "text", "json")

	log := f.Section("log")
	c.Log.Level = strings.ToLower(log.Key("level").MustString(c.Log.Level))
	c.Log.Format = oneOf(log.Key("format"), c.Log.Format, "text", "json")

	return nil
}

// oneOf devuelve el valor en minúsculas si es uno de los candidatos, o def.
func oneOf(k *ini.Key, def string, candidates ...string) string {
	v := strings.ToLower(strings.TrimSpace(k.String()))
	for _, c := range candidates {
		if v == c {
			return v
		}
	}
	return def
}

// Save escribe la configuración en path, creando el directorio si hace falta.
func (c *Config) Save(path string) error {
	f := ini.Empty()

	scan, err := f.NewSection("scan")
	if err != nil {
		return fmt.Errorf("no se pudo crear la sección scan: %w", err)
	}
	for _, kv := range [][2]string{
		{"algorithm", c.Scan.Algorithm},
		{"workers", fmt.Sprint(c.Scan.Workers)},
		{"block_size", fmt.Sprint(c.Scan.BlockSize)},
		{"symlinks", c.Scan.Symlinks},
		{"keep", c.Scan.Keep},
		{"excludes", strings.Join(c.Scan.Excludes, ",")},
	} {
		if _, err := scan.NewKey(kv[0], kv[1]); err != nil {
			return fmt.Errorf("no se pudo asignar scan.%s: %w", kv[0], err)
		}
	}

	output, err := f.NewSection("output")
	if err != nil {
		return fmt.Errorf("no se pudo crear la sección output: %w", err)
	}
	if _, err := output.NewKey("format", c.Output.Format); err != nil {
		return fmt.Errorf("no se pudo asignar output.format: %w", err)
	}

	log, err := f.NewSection("log")
	if err != nil {
		return fmt.Errorf("no se pudo crear la sección log: %w", err)
	}
	if _, err := log.NewKey("level", c.Log.Level); err != nil {
		return fmt.Errorf("no se pudo asignar log.level: %w", err)
	}
	if _, err := log.NewKey("format", c.Log.Format); err != nil {
		return fmt.Errorf("no se pudo asignar log.format: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("no se pudo crear el directorio de configuración: %w", err)
	}
	return f.SaveTo(path)
}
