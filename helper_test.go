package folio

// day is a test shorthand for MustParseDate.
func day(s string) Date { return MustParseDate(s) }

// NO creates money with no currency set, as normalized broker rows carry it.
func NO(v float64) Money { return M(v, "") }
