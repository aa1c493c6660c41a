package expect

const UsersTable = "users"

// UsersBaseline is the expected shape of the users table, matching the
// bootstrap migration shipped in internal/migrations.
var UsersBaseline = MustNew(UsersTable,
	FieldExpectation{Name: "id", Type: "integer"},
	FieldExpectation{Name: "email", Type: "character varying"},
	FieldExpectation{Name: "username", Type: "character varying"},
	FieldExpectation{Name: "birthdate", Type: "date"},
	FieldExpectation{Name: "city", Type: "character varying"},
	FieldExpectation{Name: "password", Type: "character varying"},
	FieldExpectation{Name: "enabled", Type: "boolean"},
	FieldExpectation{Name: "created_at", Type: "timestamp without time zone"},
	FieldExpectation{Name: "updated_at", Type: "timestamp without time zone"},
)
