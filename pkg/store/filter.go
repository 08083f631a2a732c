package store

import (
	"strings"

	"gorm.io/gorm"
)

// CustomerFilter narrows customer queries. Address and Active apply to every
// filtered operation; Name, Search and Ordering only to List.
type CustomerFilter struct {
	Address  string `form:"address"`
	Active   string `form:"active"`
	Name     string `form:"name"`
	Search   string `form:"search"`
	Ordering string `form:"ordering"`
}

// ActiveValue is false only for the exact string "False"; anything else,
// including an empty value, selects active customers.
func (f CustomerFilter) ActiveValue() bool {
	return f.Active != "False"
}

// StatusFromBody reports whether a change_status payload value is the literal
// string "True". JSON booleans do not count.
func StatusFromBody(v any) bool {
	s, ok := v.(string)
	return ok && s == "True"
}

const likeEscape = `ESCAPE '\'`

// base applies the address/active conditions.
func (f CustomerFilter) base(db *gorm.DB) *gorm.DB {
	db = db.Where("customers.active = ?", f.ActiveValue())
	if f.Address != "" {
		db = db.Where("LOWER(customers.address) LIKE ? "+likeEscape, containsPattern(f.Address))
	}
	return db
}

// listing adds the list-only name, search and ordering parameters.
func (f CustomerFilter) listing(db *gorm.DB) *gorm.DB {
	db = f.base(db)
	if f.Name != "" {
		db = db.Where("customers.name = ?", f.Name)
	}
	for _, term := range searchTerms(f.Search) {
		p := containsPattern(term)
		db = db.Where("(LOWER(customers.name) LIKE ? "+likeEscape+
			" OR LOWER(customers.address) LIKE ? "+likeEscape+
			" OR customers.data_sheet_id IN (SELECT id FROM data_sheets WHERE LOWER(description) LIKE ? "+likeEscape+"))",
			p, p, p)
	}
	for _, o := range orderClauses(f.Ordering) {
		db = db.Order(o)
	}
	return db
}

var orderable = map[string]string{
	"id":   "customers.id",
	"name": "customers.name",
}

// orderClauses turns "-id,name" into SQL order terms. Unknown fields are
// dropped; newest id first is the fallback.
func orderClauses(ordering string) []string {
	var out []string
	for _, raw := range strings.Split(ordering, ",") {
		field := strings.TrimSpace(raw)
		desc := strings.HasPrefix(field, "-")
		col, ok := orderable[strings.TrimPrefix(field, "-")]
		if !ok {
			continue
		}
		if desc {
			col += " DESC"
		}
		out = append(out, col)
	}
	if len(out) == 0 {
		return []string{"customers.id DESC"}
	}
	return out
}

func searchTerms(search string) []string {
	return strings.FieldsFunc(search, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

// containsPattern builds a lower-cased LIKE pattern with wildcards escaped.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}
