package ingest

// Column resolution: decide once per file which header supplies each
// canonical field role. Matching is an exact lookup against per-role alias
// lists after case and accent folding. No fuzzy matching: a header either
// is a known alias or it is not, so the rule set stays auditable.

// Role is a canonical field role a spreadsheet column can play.
type Role string

const (
	RoleDate     Role = "date"
	RoleAmount   Role = "amountInvested"
	RoleBTC      Role = "btcAmount"
	RoleRate     Role = "exchangeRate"
	RoleCurrency Role = "currency"
	RoleOrigin   Role = "origin"
)

// requiredRoles must all resolve or the whole file is rejected.
var requiredRoles = []Role{RoleDate, RoleAmount, RoleBTC}

// columnAliases maps each role to the header spellings seen in the wild.
// First alias match wins. Lookup keys are pre-folded (see foldKey).
var columnAliases = map[Role][]string{
	RoleDate: {
		"data", "date", "data do aporte", "data da compra", "dia",
	},
	RoleAmount: {
		"valor", "valor investido", "valor aportado", "valor (r$)",
		"amount", "amount invested", "investimento", "aporte", "total",
	},
	RoleBTC: {
		"btc", "quantidade", "quantidade btc", "quantidade de btc",
		"qtd btc", "btc amount", "bitcoin", "quantidade bitcoin", "qtde",
	},
	RoleRate: {
		"cotacao", "preco", "preco btc", "preco medio", "taxa",
		"rate", "exchange rate", "price", "preco unitario",
	},
	RoleCurrency: {
		"moeda", "currency", "divisa",
	},
	RoleOrigin: {
		"origem", "origin", "fonte", "source", "corretora", "local",
		"local da compra", "plataforma",
	},
}

// ColumnMap is the resolved header-to-role assignment for one file.
// Optional roles that resolved to no header are empty strings; their
// defaults are applied downstream (currency -> BRL, origin -> EXCHANGE,
// rate -> derived).
type ColumnMap struct {
	headers map[Role]string
}

// Header returns the raw header assigned to the role and whether one was
// resolved.
func (m *ColumnMap) Header(role Role) (string, bool) {
	h, ok := m.headers[role]
	return h, ok
}

// ResolveColumns maps the file's header set to field roles. It fails with
// *MissingRequiredColumnError naming every absent required role; optional
// roles may be missing.
func ResolveColumns(headers []string) (*ColumnMap, error) {
	byKey := make(map[string]string, len(headers))
	for _, h := range headers {
		key := foldKey(h)
		if _, taken := byKey[key]; !taken {
			byKey[key] = h
		}
	}

	m := &ColumnMap{headers: make(map[Role]string)}
	for role, aliases := range columnAliases {
		for _, alias := range aliases {
			if h, ok := byKey[alias]; ok {
				m.headers[role] = h
				break
			}
		}
	}

	var missing []Role
	for _, role := range requiredRoles {
		if _, ok := m.headers[role]; !ok {
			missing = append(missing, role)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingRequiredColumnError{Roles: missing}
	}
	return m, nil
}
