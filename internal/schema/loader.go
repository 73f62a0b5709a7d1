package schema

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// mappingFile is the on-disk layout of one mapping document.
type mappingFile struct {
	Tables []*Table `yaml:"tables"`
}

// Configuration is the schema configuration passed with --config. Mapping
// paths are relative to the configuration file.
type Configuration struct {
	Mappings      []string `yaml:"mappings"`
	Naming        string   `yaml:"naming"`
	ExcludeTables []string `yaml:"exclude_tables"`
}

// LoadConfiguration reads a schema configuration file.
func LoadConfiguration(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema configuration: %w", err)
	}
	var cfg Configuration
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse schema configuration %s: %w", path, err)
	}
	base := filepath.Dir(path)
	for i, m := range cfg.Mappings {
		if !filepath.IsAbs(m) {
			cfg.Mappings[i] = filepath.Join(base, m)
		}
	}
	return &cfg, nil
}

// Load reads every mapping input. A path may be a YAML file, a directory
// (all YAML files below it) or a .zip archive of YAML files.
func Load(paths []string, logger *slog.Logger) ([]*Table, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var tables []*Table
	for _, p := range paths {
		var (
			loaded []*Table
			err    error
		)
		info, statErr := os.Stat(p)
		switch {
		case statErr != nil:
			return nil, fmt.Errorf("failed to open mapping %s: %w", p, statErr)
		case info.IsDir():
			loaded, err = loadDir(p)
		case strings.EqualFold(filepath.Ext(p), ".zip"):
			loaded, err = loadArchive(p)
		default:
			loaded, err = loadFile(p)
		}
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded mapping", "path", p, "tables", len(loaded))
		tables = append(tables, loaded...)
	}
	return tables, nil
}

func isMappingFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

func loadFile(path string) ([]*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping %s: %w", path, err)
	}
	defer f.Close()
	return decodeMapping(path, f)
}

func loadDir(root string) ([]*Table, error) {
	var tables []*Table
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isMappingFile(path) {
			return nil
		}
		loaded, err := loadFile(path)
		if err != nil {
			return err
		}
		tables = append(tables, loaded...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tables, nil
}

func loadArchive(path string) ([]*Table, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping archive %s: %w", path, err)
	}
	defer zr.Close()

	var tables []*Table
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !isMappingFile(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s in %s: %w", f.Name, path, err)
		}
		loaded, err := decodeMapping(path+"!"+f.Name, rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		tables = append(tables, loaded...)
	}
	return tables, nil
}

func decodeMapping(name string, r io.Reader) ([]*Table, error) {
	var mf mappingFile
	if err := yaml.NewDecoder(r).Decode(&mf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse mapping %s: %w", name, err)
	}
	return mf.Tables, nil
}

// Resolve validates the combined mapping, derives dependencies from the
// foreign keys and returns the tables in dependency order.
func Resolve(tables []*Table, logger *slog.Logger) ([]*Table, error) {
	byName := make(map[string]*Table, len(tables))
	for i, t := range tables {
		if t == nil {
			return nil, fmt.Errorf("mapping contains an empty table entry (#%d)", i+1)
		}
		if t.Name == "" {
			return nil, fmt.Errorf("mapping contains a table without a name")
		}
		key := strings.ToUpper(t.Name)
		if _, dup := byName[key]; dup {
			return nil, fmt.Errorf("table %s is mapped more than once", t.Name)
		}
		byName[key] = t

		if len(t.Columns) == 0 {
			return nil, fmt.Errorf("table %s has no columns", t.Name)
		}
		seen := make(map[string]bool, len(t.Columns))
		for _, c := range t.Columns {
			if c == nil {
				return nil, fmt.Errorf("table %s has an empty column entry", t.Name)
			}
			if c.Name == "" || c.DataType == "" {
				return nil, fmt.Errorf("table %s: every column needs a name and a type", t.Name)
			}
			if seen[strings.ToUpper(c.Name)] {
				return nil, fmt.Errorf("table %s: column %s is declared twice", t.Name, c.Name)
			}
			seen[strings.ToUpper(c.Name)] = true
		}
		for _, fk := range t.ForeignKeys {
			if fk == nil {
				return nil, fmt.Errorf("table %s has an empty foreign key entry", t.Name)
			}
		}
	}

	for _, t := range tables {
		t.Dependencies = []string{}
		for _, fk := range t.ForeignKeys {
			if t.Column(fk.Column) == nil {
				return nil, fmt.Errorf("table %s: foreign key column %s does not exist", t.Name, fk.Column)
			}
			ref, ok := byName[strings.ToUpper(fk.RefTable)]
			if !ok {
				return nil, fmt.Errorf("table %s: foreign key %s references unknown table %s", t.Name, fk.Column, fk.RefTable)
			}
			fk.RefTable = ref.Name
			if fk.RefColumn == "" {
				pk := ref.PrimaryKey()
				if len(pk) != 1 {
					return nil, fmt.Errorf("table %s: foreign key %s needs ref_column (%s has %d primary key columns)", t.Name, fk.Column, ref.Name, len(pk))
				}
				fk.RefColumn = pk[0]
			}
			if ref.Name != t.Name {
				t.Dependencies = append(t.Dependencies, ref.Name)
			}
		}
	}

	return SortTablesByFKCount(tables, logger), nil
}
