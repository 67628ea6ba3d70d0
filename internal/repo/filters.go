// ComplaintFilters is the structured query spec the aggregator passes
// down. Each family repository translates it once into parametrized GORM
// clauses; user-controlled values only ever appear as bind parameters,
// never in the SQL text.

package repo

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// ComplaintFilters narrows a family listing. Zero values mean "no filter".
// Status and Priority are matched case-insensitively against the stored
// value with the family's read-time default applied to NULL/empty rows.
type ComplaintFilters struct {
	Status        string
	Priority      string
	Search        string
	From          *time.Time
	To            *time.Time
	IncludeHidden bool
}

// Normalize trims and upper-cases the equality filters, mapping the
// dashboard's "All …" placeholders to no-filter.
func (f ComplaintFilters) Normalize() ComplaintFilters {
	f.Status = normalizeChoice(f.Status, "All Status")
	f.Priority = normalizeChoice(f.Priority, "All Priorities")
	f.Search = strings.TrimSpace(f.Search)
	return f
}

func normalizeChoice(v, placeholder string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, placeholder) {
		return ""
	}
	return strings.ToUpper(v)
}

// apply adds the family-independent clauses: hidden exclusion, equality
// filters with read-time defaults, and the inclusive date range.
// searchCols are the family's searchable columns, OR-combined with a
// case-insensitive substring match.
func (f ComplaintFilters) apply(q *gorm.DB, defaultPriority string, searchCols []string) *gorm.DB {
	if !f.IncludeHidden {
		q = q.Where("hidden = ?", false)
	}
	if f.Status != "" {
		q = q.Where("UPPER(COALESCE(NULLIF(status, ''), 'NEW')) = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("UPPER(COALESCE(NULLIF(priority, ''), ?)) = ?", defaultPriority, f.Priority)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		var sb strings.Builder
		args := make([]interface{}, 0, len(searchCols))
		for i, col := range searchCols {
			if i > 0 {
				sb.WriteString(" OR ")
			}
			sb.WriteString("LOWER(" + col + ") LIKE ?")
			args = append(args, pattern)
		}
		q = q.Where(sb.String(), args...)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}
	return q
}
