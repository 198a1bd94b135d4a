package directory

// Source schema, owned by the HR system.
const (
	staffTable     = "user_staff"
	staffNumberCol = "tabel_number"
	userTable      = "user"
)

type dialect struct {
	staffQuery string
	userQuery  string
}

// dialectFor builds the two lookup statements with the placeholder and
// identifier quoting rules of the driver. "user" is reserved in Postgres.
func dialectFor(driver string) dialect {
	quote, arg := "`", "?"
	if driver == "pgx" || driver == "postgres" {
		quote, arg = `"`, "$1"
	}
	return dialect{
		staffQuery: "SELECT user_id FROM " + staffTable + " WHERE " + staffNumberCol + " = " + arg,
		userQuery:  "SELECT first_name, last_name, middle_name FROM " + quote + userTable + quote + " WHERE id = " + arg,
	}
}
