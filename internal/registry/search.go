package registry

import (
	"context"
	"fmt"

	"github.com/yukyu/ledger/internal/database"
	"github.com/yukyu/ledger/internal/models"
)

// Search implements the full-text index over (name, location) across all
// three register tables (§3.3's "Indexes" requirement), via a raw SQL UNION
// over each table's generated tsvector column rather than GORM, which has no
// portable to_tsquery binding.
type Search struct {
	pool *database.Pool
}

func NewSearch(pool *database.Pool) *Search {
	return &Search{pool: pool}
}

const searchQuery = `
SELECT employee_num, name, category, work_location, hourly_wage, status
FROM (
	SELECT employee_num, name, 'dispatch' AS category, department AS work_location, hourly_wage, status,
	       to_tsvector('simple', coalesce(name, '') || ' ' || coalesce(department, '')) AS doc
	FROM dispatch_employees
	UNION ALL
	SELECT employee_num, name, 'contract' AS category, business AS work_location, hourly_wage, status,
	       to_tsvector('simple', coalesce(name, '') || ' ' || coalesce(business, '')) AS doc
	FROM contract_employees
	UNION ALL
	SELECT employee_num, name, 'staff' AS category, office AS work_location, hourly_wage, status,
	       to_tsvector('simple', coalesce(name, '') || ' ' || coalesce(office, '')) AS doc
	FROM staff_employees
) registers
WHERE doc @@ plainto_tsquery('simple', $1)
ORDER BY name
LIMIT $2 OFFSET $3
`

// Query runs a full-text search across all three registers, page-bounded
// per ApiPlane's pagination rules.
func (s *Search) Query(ctx context.Context, term string, limit, offset int) ([]models.EmployeeDirectoryEntry, error) {
	rows, err := s.pool.Query(ctx, searchQuery, term, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("search registers: %w", err)
	}
	defer rows.Close()

	var out []models.EmployeeDirectoryEntry
	for rows.Next() {
		var e models.EmployeeDirectoryEntry
		if err := rows.Scan(&e.EmployeeNum, &e.Name, &e.Category, &e.WorkLocation, &e.HourlyWage, &e.Status); err != nil {
			return nil, fmt.Errorf("scan register search row: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate register search rows: %w", err)
	}
	return out, nil
}
