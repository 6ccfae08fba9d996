package sqlite

// Table DDL. Dates are stored as YYYY-MM-DD text so they compare in
// calendar order; timestamps are RFC 3339 text.
const (
	createApartments = `CREATE TABLE apartments (
    apartment_id TEXT PRIMARY KEY,
    number TEXT NOT NULL,
    level TEXT NOT NULL,
    status TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createContracts = `CREATE TABLE contracts (
    contract_id TEXT PRIMARY KEY,
    apartment_id TEXT,
    start_date TEXT NOT NULL,
    end_date TEXT NOT NULL,
    active INTEGER NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (apartment_id) REFERENCES apartments(apartment_id)
);`

	createUsers = `CREATE TABLE users (
    user_id TEXT PRIMARY KEY,
    full_name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TEXT NOT NULL
);`

	createTokens = `CREATE TABLE tokens (
    token TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    expires_at TEXT NOT NULL,
    created_at TEXT NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(user_id)
);`
)

// Index DDL.
const (
	idxContractsApartment = `CREATE INDEX idx_contracts_apartment ON contracts(apartment_id, active);`
	idxContractsEnd       = `CREATE INDEX idx_contracts_end ON contracts(active, end_date);`
	idxTokensUser         = `CREATE INDEX idx_tokens_user ON tokens(user_id);`
)

// schemaDDL lists the CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createApartments,
	createContracts,
	createUsers,
	createTokens,
}

var indexDDL = []string{
	idxContractsApartment,
	idxContractsEnd,
	idxTokensUser,
}
