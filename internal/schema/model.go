package schema

// Table is one mapped table. Dependencies is derived from ForeignKeys and
// drives the create/drop ordering.
type Table struct {
	Name         string        `yaml:"name"`
	Columns      []*Column     `yaml:"columns"`
	ForeignKeys  []*ForeignKey `yaml:"foreign_keys"`
	Dependencies []string      `yaml:"-"`
}

type Column struct {
	Name       string   `yaml:"name"`
	DataType   string   `yaml:"type"`
	Length     int      `yaml:"length"`
	Precision  int      `yaml:"precision"`
	Scale      int      `yaml:"scale"`
	IsNullable bool     `yaml:"nullable"`
	IsPK       bool     `yaml:"primary_key"`
	IsAutoInc  bool     `yaml:"auto_increment"`
	IsUnique   bool     `yaml:"unique"`
	Default    *string  `yaml:"default"`
	EnumValues []string `yaml:"values"`
}

type ForeignKey struct {
	Name      string `yaml:"name"`
	Column    string `yaml:"column"`
	RefTable  string `yaml:"ref_table"`
	RefColumn string `yaml:"ref_column"`
}

// PrimaryKey returns the primary key column names in declaration order.
func (t *Table) PrimaryKey() []string {
	var pk []string
	for _, c := range t.Columns {
		if c.IsPK {
			pk = append(pk, c.Name)
		}
	}
	return pk
}

// Column looks a column up by exact name.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}
