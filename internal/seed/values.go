package seed

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"schema-export/internal/dialect"
	"schema-export/internal/schema"
)

// Generated timestamps fall in a fixed window so a seed always yields the
// same script.
var (
	rangeStart = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	rangeEnd   = time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)
)

// dateValue and timeValue keep the column's granularity when rendered.
type (
	dateValue string
	timeValue string
)

// valueGenerator picks a fake value for one column from its type and,
// for text columns, from hints in the column name.
type valueGenerator struct {
	faker *gofakeit.Faker
}

func (g *valueGenerator) value(col *schema.Column) any {
	if len(col.EnumValues) > 0 {
		return g.faker.RandomString(col.EnumValues)
	}

	name := strings.ToLower(col.Name)
	switch dialect.GenericType(col.DataType) {
	case "varchar", "char", "text":
		return truncate(g.text(name, col.Length), col.Length)
	case "uuid":
		return g.faker.UUID()
	case "date":
		return dateValue(g.faker.DateRange(rangeStart, rangeEnd).Format("2006-01-02"))
	case "time":
		return timeValue(g.faker.DateRange(rangeStart, rangeEnd).Format("15:04:05"))
	case "timestamp":
		return g.faker.DateRange(rangeStart, rangeEnd)
	case "tinyint":
		return g.faker.Number(0, 127)
	case "smallint":
		return g.faker.Number(1, 30000)
	case "int", "bigint":
		if strings.Contains(name, "year") {
			return g.faker.Number(2000, 2025)
		}
		return g.faker.Number(1, maxForDigits(col.Length, 50000))
	case "decimal", "float", "double":
		return g.faker.Price(0.99, 99.99)
	case "boolean":
		return g.faker.Bool()
	case "blob":
		return []byte("dummy")
	}
	return nil
}

// text follows the column name: the first matching hint wins, everything
// else gets a short sentence.
func (g *valueGenerator) text(name string, length int) string {
	isID := strings.HasSuffix(name, "id")

	switch {
	case strings.Contains(name, "year"):
		return strconv.Itoa(g.faker.Number(2000, 2025))
	case isID:
		return g.faker.LetterN(uint(min(max(length, 1), 12)))
	case strings.Contains(name, "email"):
		return g.faker.Email()
	case strings.Contains(name, "phone"):
		return g.faker.Phone()
	case strings.Contains(name, "first"):
		return g.faker.FirstName()
	case strings.Contains(name, "last"):
		return g.faker.LastName()
	case strings.Contains(name, "name"):
		if length > 0 && length < 3 {
			return g.faker.LetterN(uint(length))
		}
		return g.faker.Name()
	case strings.Contains(name, "address"), strings.Contains(name, "street"):
		return g.faker.Street()
	case strings.Contains(name, "city"):
		return g.faker.City()
	case strings.Contains(name, "country"):
		return g.faker.Country()
	case strings.Contains(name, "zip"), strings.Contains(name, "postal"):
		return g.faker.Zip()
	case strings.Contains(name, "url"), strings.Contains(name, "website"):
		return g.faker.URL()
	case strings.Contains(name, "title"), strings.Contains(name, "subject"):
		return g.faker.Sentence(3)
	}
	if length > 0 && length < 20 {
		return g.faker.Word()
	}
	return g.faker.Sentence(8)
}

// literal renders v as SQL text for d.
func literal(d dialect.Dialect, v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return quote(v)
	case dateValue:
		return quote(string(v))
	case timeValue:
		return quote(string(v))
	case []byte:
		return quote(string(v))
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', 2, 64)
	case bool:
		return d.BoolLiteral(v)
	case time.Time:
		return d.TimestampLiteral(v.Format("2006-01-02 15:04:05"))
	default:
		return quote(fmt.Sprint(v))
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) > limit {
		return string(runes[:limit])
	}
	return s
}

// maxForDigits returns the largest number with the given digit count, or
// fallback when digits is unset or large.
func maxForDigits(digits, fallback int) int {
	if digits <= 0 || digits >= 10 {
		return fallback
	}
	limit := 1
	for range digits {
		limit *= 10
	}
	return min(limit-1, fallback)
}

// maxRows caps the requested row count by the range of narrow identity
// columns.
func maxRows(t *schema.Table, requested int) int {
	limit := requested
	for _, c := range t.Columns {
		if !c.IsAutoInc {
			continue
		}
		switch dialect.GenericType(c.DataType) {
		case "tinyint":
			limit = min(limit, 127)
		case "smallint":
			limit = min(limit, 32767)
		}
	}
	return limit
}
