package dialect

import (
	"strconv"
	"strings"
)

// typeAliases folds vendor spellings and introspected names onto the
// generic type names used by mapping files.
var typeAliases = map[string]string{
	"string":                      "varchar",
	"character varying":           "varchar",
	"nvarchar":                    "varchar",
	"varchar2":                    "varchar",
	"character":                   "char",
	"bpchar":                      "char",
	"nchar":                       "char",
	"clob":                        "text",
	"longtext":                    "text",
	"integer":                     "int",
	"int4":                        "int",
	"int8":                        "bigint",
	"int2":                        "smallint",
	"bool":                        "boolean",
	"bit":                         "boolean",
	"numeric":                     "decimal",
	"number":                      "decimal",
	"money":                       "decimal",
	"real":                        "float",
	"float4":                      "float",
	"float8":                      "double",
	"double precision":            "double",
	"datetime":                    "timestamp",
	"datetime2":                   "timestamp",
	"timestamp without time zone": "timestamp",
	"timestamp with time zone":    "timestamp",
	"binary":                      "blob",
	"varbinary":                   "blob",
	"bytea":                       "blob",
	"longblob":                    "blob",
	"image":                       "blob",
	"uniqueidentifier":            "uuid",
}

// GenericType returns the generic name for typ, or typ lowercased when it
// is not a known generic type.
func GenericType(typ string) string {
	key := DefaultNormalizeType(strings.TrimSpace(typ))
	if alias, ok := typeAliases[key]; ok {
		return alias
	}
	return key
}

// renderType looks the generic type up in templates and substitutes
// $l (length), $p (precision) and $s (scale). Unknown types pass through
// unchanged so vendor specific types can be written in mapping files.
func renderType(templates map[string]string, typ string, length, precision, scale int) string {
	tmpl, ok := templates[GenericType(typ)]
	if !ok {
		return typ
	}
	if length <= 0 {
		length = 255
	}
	if precision <= 0 {
		precision = 19
		if scale <= 0 {
			scale = 2
		}
	}
	if scale < 0 {
		scale = 0
	}
	r := strings.NewReplacer(
		"$l", strconv.Itoa(length),
		"$p", strconv.Itoa(precision),
		"$s", strconv.Itoa(scale),
	)
	return r.Replace(tmpl)
}

// quoteTimestamp renders a timestamp as a plain string literal.
func quoteTimestamp(ts string) string {
	return "'" + strings.ReplaceAll(ts, "'", "''") + "'"
}

// DefaultNormalizeType is a default implementation for type normalization (lowercase).
func DefaultNormalizeType(sqlType string) string {
	return strings.ToLower(sqlType)
}

// DefaultGetSchemaName is a default implementation for Getting Schema Name (identity).
func DefaultGetSchemaName(input string) string {
	return input
}
